package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/timmy/jokegen/internal/logger"
)

const (
	// VisitorCookie names the anonymous visitor cookie.
	VisitorCookie = "visitor_id"

	visitorContextKey = "visitor_id"
	visitorIDLength   = 32
	visitorCookieAge  = 365 * 24 * 60 * 60
)

// Visitor makes sure every request carries a visitor ID, issuing a fresh
// cookie when the request has none or a malformed one.
func Visitor(secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(VisitorCookie)
		if err != nil || !validVisitorID(id) {
			id = newVisitorID()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(VisitorCookie, id, visitorCookieAge, "/", "", secure, true)
		}

		c.Set(visitorContextKey, id)
		c.Request = c.Request.WithContext(logger.SetVisitorID(c.Request.Context(), id))
		c.Next()
	}
}

// VisitorID returns the visitor ID set by Visitor, or "" outside it.
func VisitorID(c *gin.Context) string {
	return c.GetString(visitorContextKey)
}

func newVisitorID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

func validVisitorID(id string) bool {
	if len(id) != visitorIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		ch := id[i]
		if (ch < '0' || ch > '9') && (ch < 'a' || ch > 'f') {
			return false
		}
	}
	return true
}
