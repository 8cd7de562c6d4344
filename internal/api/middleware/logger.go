package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/timmy/jokegen/internal/logger"
)

const requestIDHeader = "X-Request-ID"

// Logger returns a Gin middleware that injects a request-scoped logger and
// logs each request's completion.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		// Keep an upstream request ID if a proxy set one
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		ctx := logger.SetComponent(logger.SetRequestID(c.Request.Context(), requestID), "api")
		c.Request = c.Request.WithContext(ctx)
		c.Header(requestIDHeader, requestID)

		c.Next()

		status := c.Writer.Status()
		fullPath := path
		if query != "" {
			fullPath = path + "?" + query
		}

		// Request context may have gained visitor fields downstream
		entry := logger.With(logger.Fields{
			logger.FieldStatus: status,
		}).Since(start)
		switch {
		case status >= 500:
			entry.Error(c.Request.Context(), "Request completed: method=%s, path=%s", c.Request.Method, fullPath)
		case path == "/health" || path == "/api/v1/health":
			entry.Debug(c.Request.Context(), "Request completed: method=%s, path=%s", c.Request.Method, fullPath)
		default:
			entry.Info(c.Request.Context(), "Request completed: method=%s, path=%s", c.Request.Method, fullPath)
		}
	}
}
