package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/timmy/jokegen/internal/domain"
	"github.com/timmy/jokegen/internal/logger"
)

// statusFor maps a domain error to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrTopicBlocked):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrRetryable):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrDependency):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes {"error": ...}. Client errors carry the detail line of
// err; server errors only say what failed and are logged in full.
func respondError(c *gin.Context, err error, action string) {
	status := statusFor(err)
	if status < http.StatusInternalServerError {
		c.JSON(status, gin.H{
			"error": detail(err),
		})
		return
	}

	logger.FromContext(c.Request.Context()).
		WithError(err).
		WithField(logger.FieldStatus, status).
		Error(action + " failed")
	c.JSON(status, gin.H{
		"error": action + " failed",
	})
}

// detail returns the last line of a joined error, which holds the message
// below the sentinel.
func detail(err error) string {
	msg := err.Error()
	if i := strings.LastIndexByte(msg, '\n'); i >= 0 {
		return msg[i+1:]
	}
	return msg
}
