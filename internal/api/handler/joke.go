package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/timmy/jokegen/internal/api/middleware"
	"github.com/timmy/jokegen/internal/service"
)

// JokeHandler handles joke generation and reads.
type JokeHandler struct {
	jokeService *service.JokeService
}

// NewJokeHandler creates a new joke handler.
// Parameters:
//   - jokeService: joke service instance.
// Returns:
//   - *JokeHandler: initialized handler.
func NewJokeHandler(jokeService *service.JokeService) *JokeHandler {
	return &JokeHandler{
		jokeService: jokeService,
	}
}

// GenerateRequest is the body of POST /api/v1/jokes.
type GenerateRequest struct {
	Topic string `json:"topic" binding:"required"`
	Type  string `json:"type"`
}

// Generate handles POST /api/v1/jokes.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *JokeHandler) Generate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}

	joke, err := h.jokeService.Generate(c.Request.Context(), req.Topic, req.Type)
	if err != nil {
		respondError(c, err, "Joke generation")
		return
	}

	c.JSON(http.StatusCreated, joke)
}

// List handles GET /api/v1/jokes.
func (h *JokeHandler) List(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Query parameter 'limit' must be an integer",
			})
			return
		}
		limit = n
	}

	jokes, err := h.jokeService.Recent(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err, "Listing jokes")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"jokes": jokes,
		"total": len(jokes),
	})
}

// Highest handles GET /api/v1/jokes/highest. joke is null until someone votes.
func (h *JokeHandler) Highest(c *gin.Context) {
	joke, err := h.jokeService.Highest(c.Request.Context())
	if err != nil {
		respondError(c, err, "Loading highest voted joke")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"joke": joke,
	})
}

// Get handles GET /api/v1/jokes/:id.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response with the caller's vote for today).
func (h *JokeHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Joke ID must be a positive integer",
		})
		return
	}

	joke, err := h.jokeService.GetJoke(c.Request.Context(), uint(id), middleware.VisitorID(c))
	if err != nil {
		respondError(c, err, "Loading joke")
		return
	}

	c.JSON(http.StatusOK, joke)
}

// Home handles GET /api/v1/home.
func (h *JokeHandler) Home(c *gin.Context) {
	c.JSON(http.StatusOK, h.jokeService.Home(c.Request.Context()))
}
