package middleware

import (
	"context"
	"errors"
	"strings"

	"account_api/internal/apperror"
	"account_api/internal/model"
	"account_api/internal/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CurrentUserKey is the context key the resolved user is attached under.
const CurrentUserKey = "currentUser"

// SessionCookieName is the cookie the session token may travel in, as an
// alternative to the Authorization header.
const SessionCookieName = "jwt"

// UserLoader resolves the account a verified token refers to.
// Satisfied by repository.UserRepository.
type UserLoader interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.User, error)
}

// CurrentUser returns the user attached by Protect.
func CurrentUser(c *gin.Context) (*model.User, bool) {
	val, exists := c.Get(CurrentUserKey)
	if !exists {
		return nil, false
	}
	user, ok := val.(*model.User)
	return user, ok
}

// Protect verifies the bearer token, resolves its user and attaches it to the
// request context. Handlers behind it may assume identity is resolved.
func Protect(jwtUtil *utils.JWTUtil, users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			abortWith(c, apperror.Unauthorized("you are not signed in, please sign in to get access"))
			return
		}

		claims, err := jwtUtil.ValidateToken(tokenString)
		if err != nil {
			if errors.Is(err, utils.ErrTokenExpired) {
				abortWith(c, apperror.Unauthorized("your session has expired, please sign in again"))
				return
			}
			abortWith(c, apperror.Unauthorized("invalid token, please sign in again"))
			return
		}

		// Tokens we issue always carry iat; one without it cannot be
		// checked against passwordChangedAt.
		if claims.IssuedAt == nil {
			abortWith(c, apperror.Unauthorized("invalid token, please sign in again"))
			return
		}

		userID, err := primitive.ObjectIDFromHex(claims.Subject)
		if err != nil {
			abortWith(c, apperror.Unauthorized("invalid token, please sign in again"))
			return
		}

		user, err := users.FindByID(c.Request.Context(), userID)
		if err != nil {
			abortWith(c, err)
			return
		}
		if user == nil {
			abortWith(c, apperror.Unauthorized("the user belonging to this token no longer exists"))
			return
		}
		if user.PasswordChangedAfter(claims.IssuedAt.Time) {
			abortWith(c, apperror.Unauthorized("password was changed recently, please sign in again"))
			return
		}

		c.Set(CurrentUserKey, user)
		c.Next()
	}
}

// extractToken reads the session token from the Authorization header or,
// failing that, from the session cookie.
func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
		return ""
	}
	if cookie, err := c.Cookie(SessionCookieName); err == nil {
		return cookie
	}
	return ""
}

func abortWith(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
