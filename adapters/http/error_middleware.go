package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/anhtran/folio-api/pkg/apperror"
	"github.com/anhtran/folio-api/pkg/logger"
)

// ErrorMiddleware converts errors attached to the gin context into JSON
// responses. Internal details never reach the client; they are logged here.
func ErrorMiddleware(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			status := apperror.ToHTTPStatus(appErr)
			if status >= http.StatusInternalServerError {
				log.Error("Request failed", appErr)
			}
			c.JSON(status, appErr.ToJSON())
			return
		}

		log.Error("Unhandled request error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal server error",
			"message": "An unexpected error occurred. Please try again later.",
		})
	}
}
