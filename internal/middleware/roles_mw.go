package middleware

import (
	"account_api/internal/apperror"
	"account_api/internal/model"

	"github.com/gin-gonic/gin"
)

// RestrictTo allows only the given roles past. Protect must run first so the
// identity is already attached.
func RestrictTo(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			abortWith(c, apperror.Forbidden("identity not resolved, ensure Protect runs first"))
			return
		}
		if !user.HasRole(allowedRoles...) {
			abortWith(c, apperror.Forbidden("you do not have permission to perform this action"))
			return
		}
		c.Next()
	}
}

// AdminOnly restricts a route to administrators.
func AdminOnly() gin.HandlerFunc {
	return RestrictTo(model.RoleAdmin)
}
