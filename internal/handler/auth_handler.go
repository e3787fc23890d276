package handler

import (
	"net/http"
	"time"

	"account_api/internal/apperror"
	"account_api/internal/middleware"
	"account_api/internal/model"
	"account_api/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler handles the credential lifecycle routes.
type AuthHandler struct {
	service   service.AuthService
	cookieTTL time.Duration
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(s service.AuthService, cookieTTL time.Duration) *AuthHandler {
	return &AuthHandler{service: s, cookieTTL: cookieTTL}
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req model.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWith(c, apperror.BadRequest("invalid request: "+err.Error()))
		return
	}

	user, token, err := h.service.Signup(c.Request.Context(), req)
	if err != nil {
		abortWith(c, err)
		return
	}
	h.sendToken(c, http.StatusCreated, token, user)
}

func (h *AuthHandler) Signin(c *gin.Context) {
	var req model.SigninRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWith(c, apperror.BadRequest("please provide email and password"))
		return
	}

	user, token, err := h.service.Signin(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		abortWith(c, err)
		return
	}
	h.sendToken(c, http.StatusOK, token, user)
}

// Signout overwrites the session cookie with a short-lived dummy value. The
// token itself stays valid until expiry; there is no server-side revocation.
func (h *AuthHandler) Signout(c *gin.Context) {
	c.SetCookie(middleware.SessionCookieName, "signed-out", 10, "/", "", secureRequest(c), true)
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req model.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWith(c, apperror.BadRequest("please provide an email address"))
		return
	}

	if err := h.service.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "reset token sent to email",
	})
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req model.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWith(c, apperror.BadRequest("invalid request: "+err.Error()))
		return
	}

	user, token, err := h.service.ResetPassword(c.Request.Context(), c.Param("token"), req)
	if err != nil {
		abortWith(c, err)
		return
	}
	h.sendToken(c, http.StatusOK, token, user)
}

func (h *AuthHandler) UpdatePassword(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		abortWith(c, apperror.Unauthorized("you are not signed in"))
		return
	}

	var req model.UpdatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWith(c, apperror.BadRequest("invalid request: "+err.Error()))
		return
	}

	token, err := h.service.UpdatePassword(c.Request.Context(), user, req)
	if err != nil {
		abortWith(c, err)
		return
	}
	h.sendToken(c, http.StatusOK, token, user)
}

func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	user, err := h.service.VerifyEmail(c.Request.Context(), c.Param("token"))
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   gin.H{"user": user},
	})
}

// RegisterRoutes registers the credential routes on the users group.
func (h *AuthHandler) RegisterRoutes(users *gin.RouterGroup, protect gin.HandlerFunc) {
	users.POST("/signup", h.Signup)
	users.POST("/signin", h.Signin)
	users.GET("/signout", h.Signout)
	users.POST("/forgot-password", h.ForgotPassword)
	users.PATCH("/reset-password/:token", h.ResetPassword)
	users.PATCH("/verify-email/:token", h.VerifyEmail)

	users.PATCH("/update-password", protect, h.UpdatePassword)
}

// sendToken writes the session cookie and the success envelope.
func (h *AuthHandler) sendToken(c *gin.Context, status int, token string, user *model.User) {
	c.SetCookie(middleware.SessionCookieName, token, int(h.cookieTTL.Seconds()), "/", "", secureRequest(c), true)
	c.JSON(status, gin.H{
		"status": "success",
		"token":  token,
		"data":   gin.H{"user": user},
	})
}

// secureRequest reports whether the request arrived over TLS, directly or via
// a forwarding proxy.
func secureRequest(c *gin.Context) bool {
	return c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https"
}
