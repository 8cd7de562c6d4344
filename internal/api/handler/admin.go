package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/timmy/jokegen/internal/service"
)

// AdminHandler handles blocked-topic administration.
type AdminHandler struct {
	jokeService *service.JokeService
}

// NewAdminHandler creates a new admin handler.
// Parameters:
//   - jokeService: joke service owning the topic registry.
// Returns:
//   - *AdminHandler: initialized handler.
func NewAdminHandler(jokeService *service.JokeService) *AdminHandler {
	return &AdminHandler{
		jokeService: jokeService,
	}
}

// ListBlocked handles GET /api/v1/admin/blocked.
func (h *AdminHandler) ListBlocked(c *gin.Context) {
	topics, err := h.jokeService.BlockedTopics(c.Request.Context())
	if err != nil {
		respondError(c, err, "Listing blocked topics")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"topics": topics,
		"total":  len(topics),
	})
}

// ClearBlocked handles POST /api/v1/admin/blocked/clear.
func (h *AdminHandler) ClearBlocked(c *gin.Context) {
	removed, err := h.jokeService.ClearBlockedTopics(c.Request.Context())
	if err != nil {
		respondError(c, err, "Clearing blocked topics")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"removed": removed,
	})
}
