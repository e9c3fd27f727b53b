package middlewares

import (
	"log/slog"
	"net/http"

	"MediChain/apperror"

	"github.com/gin-gonic/gin"
)

// HttpError writes err as {"error": message} with the status of its kind.
// Server-side failures are logged with their cause; the client only sees
// the safe message.
func HttpError(c *gin.Context, err error) {
	kind := apperror.KindOf(err)
	status := kind.Status()
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), "request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", status,
			"error", err,
		)
	}
	c.JSON(status, gin.H{"error": apperror.Message(err)})
}

// BadRequest writes a 400 with message.
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}
