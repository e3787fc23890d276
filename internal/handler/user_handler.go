package handler

import (
	"net/http"

	"account_api/internal/apperror"
	"account_api/internal/middleware"
	"account_api/internal/model"
	"account_api/internal/service"

	"github.com/gin-gonic/gin"
)

// UserHandler handles self-service account routes and wires the generic CRUD
// handlers for the admin surface.
type UserHandler struct {
	service service.UserService
	crud    *CRUD[model.User]
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(s service.UserService, store ResourceStore[model.User]) *UserHandler {
	return &UserHandler{
		service: s,
		crud:    NewCRUD(store, "user", "users"),
	}
}

// Me responds with the authenticated user.
func (h *UserHandler) Me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		abortWith(c, apperror.Unauthorized("you are not signed in"))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   gin.H{"user": user},
	})
}

// UpdateMe updates name and email of the authenticated user. Password fields
// are rejected so credential rotation stays on the auth flows.
func (h *UserHandler) UpdateMe(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		abortWith(c, apperror.Unauthorized("you are not signed in"))
		return
	}

	var raw map[string]any
	if err := c.ShouldBindJSON(&raw); err != nil {
		abortWith(c, apperror.BadRequest("invalid request: "+err.Error()))
		return
	}
	if _, found := raw["password"]; found {
		abortWith(c, apperror.BadRequest("this route is not for password updates, use /users/update-password"))
		return
	}

	req := model.UpdateMeRequest{}
	if v, ok := raw["fullname"].(string); ok {
		req.FullName = &v
	}
	if v, ok := raw["email"].(string); ok {
		req.Email = &v
	}

	updated, err := h.service.UpdateMe(c.Request.Context(), user.ID, req)
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   gin.H{"user": updated},
	})
}

// DeleteMe soft-deletes the authenticated user's account.
func (h *UserHandler) DeleteMe(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		abortWith(c, apperror.Unauthorized("you are not signed in"))
		return
	}
	if err := h.service.DeactivateMe(c.Request.Context(), user.ID); err != nil {
		abortWith(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RegisterRoutes registers the account routes on the users group. Self-service
// routes need authentication; the collection CRUD additionally needs the
// admin role.
func (h *UserHandler) RegisterRoutes(users *gin.RouterGroup, protect, adminOnly gin.HandlerFunc) {
	users.GET("/me", protect, h.Me)
	users.PATCH("/update-me", protect, h.UpdateMe)
	users.DELETE("/delete-me", protect, h.DeleteMe)

	admin := users.Group("")
	admin.Use(protect, adminOnly)
	{
		admin.GET("", h.crud.GetAll)
		admin.POST("", h.crud.CreateOne)
		admin.GET("/:id", h.crud.GetOne())
		admin.PATCH("/:id", h.crud.UpdateOne)
		admin.DELETE("/:id", h.crud.DeleteOne)
	}
}
