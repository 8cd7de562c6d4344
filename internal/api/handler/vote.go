package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/timmy/jokegen/internal/api/middleware"
	"github.com/timmy/jokegen/internal/service"
)

// VoteHandler handles vote casting.
type VoteHandler struct {
	voteService *service.VoteService
}

// NewVoteHandler creates a new vote handler.
func NewVoteHandler(voteService *service.VoteService) *VoteHandler {
	return &VoteHandler{
		voteService: voteService,
	}
}

// VoteRequest is the body of POST /api/v1/votes.
type VoteRequest struct {
	JokeID uint   `json:"joke_id" binding:"required"`
	Rating string `json:"rating" binding:"required"`
}

// Cast handles POST /api/v1/votes.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes the vote transition as JSON).
func (h *VoteHandler) Cast(c *gin.Context) {
	var req VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}

	res, err := h.voteService.CastVote(c.Request.Context(), req.JokeID, middleware.VisitorID(c), req.Rating)
	if err != nil {
		respondError(c, err, "Voting")
		return
	}

	c.JSON(http.StatusOK, res)
}
