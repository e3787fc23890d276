package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"account_api/internal/apperror"
)

// ErrorHandler is the single point deciding the wire representation of
// failures. Handlers attach errors with c.Error and abort; this middleware
// translates the last one into the response envelope. Internal detail is
// surfaced only in development mode.
func ErrorHandler(devMode bool, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		appErr := apperror.Translate(err)

		if !appErr.Operational() {
			logger.Error("unhandled request error",
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.Error(err),
			)
		}

		body := gin.H{
			"status":  "error",
			"message": appErr.Message,
		}
		if devMode {
			body["error"] = err.Error()
		}
		c.JSON(appErr.Status, body)
	}
}
