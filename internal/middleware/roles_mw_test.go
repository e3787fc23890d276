package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"account_api/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newRoleRouter(user *model.User, allowed ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(ErrorHandler(false, zap.NewNop()))
	router.GET("/admin",
		func(c *gin.Context) {
			if user != nil {
				c.Set(CurrentUserKey, user)
			}
			c.Next()
		},
		RestrictTo(allowed...),
		func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "success"})
		},
	)
	return router
}

func doGet(router *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestRestrictTo_AllowedRole(t *testing.T) {
	router := newRoleRouter(&model.User{Role: model.RoleAdmin}, model.RoleAdmin)

	w := doGet(router, "/admin")

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRestrictTo_MultipleRoles(t *testing.T) {
	router := newRoleRouter(&model.User{Role: model.RoleLeadGuide}, model.RoleAdmin, model.RoleLeadGuide)

	w := doGet(router, "/admin")

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRestrictTo_ForbiddenRole(t *testing.T) {
	router := newRoleRouter(&model.User{Role: model.RoleUser}, model.RoleAdmin)

	w := doGet(router, "/admin")

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "permission")
}

func TestRestrictTo_NoResolvedIdentity(t *testing.T) {
	router := newRoleRouter(nil, model.RoleAdmin)

	w := doGet(router, "/admin")

	assert.Equal(t, http.StatusForbidden, w.Code)
}
