package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/timmy/jokegen/internal/logger"
	"github.com/timmy/jokegen/internal/service"
)

// RateLimit rejects requests once the caller's window is spent. Callers are
// keyed by visitor ID, falling back to client IP. A limiter error lets the
// request through.
func RateLimit(limiter service.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := VisitorID(c)
		if key == "" {
			key = "ip:" + c.ClientIP()
		}

		allowed, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			logger.CtxWarn(c.Request.Context(), "Rate limiter unavailable, allowing request: %v", err)
			c.Next()
			return
		}
		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many jokes requested, please slow down",
			})
			return
		}
		c.Next()
	}
}
