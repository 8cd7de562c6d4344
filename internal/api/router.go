package api

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/timmy/jokegen/internal/api/handler"
	"github.com/timmy/jokegen/internal/api/middleware"
	"github.com/timmy/jokegen/internal/config"
	"github.com/timmy/jokegen/internal/service"
)

// Services bundles what the HTTP layer calls into.
type Services struct {
	Jokes   *service.JokeService
	Votes   *service.VoteService
	Limiter service.RateLimiter
	// Ping checks the database for /health; nil skips the check.
	Ping func(ctx context.Context) error
}

// SetupRouter configures the Gin router with all routes
func SetupRouter(svc *Services, cfg *config.ServerConfig) *gin.Engine {
	switch cfg.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	limiter := svc.Limiter
	if limiter == nil {
		limiter = service.NoopRateLimiter{}
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.Visitor(cfg.CookieSecure))

	healthHandler := handler.NewHealthHandler(svc.Ping)
	jokeHandler := handler.NewJokeHandler(svc.Jokes)
	voteHandler := handler.NewVoteHandler(svc.Votes)
	adminHandler := handler.NewAdminHandler(svc.Jokes)

	r.GET("/health", healthHandler.Health)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", healthHandler.Health)
		v1.GET("/home", jokeHandler.Home)

		// Jokes
		v1.POST("/jokes", middleware.RateLimit(limiter), jokeHandler.Generate)
		v1.GET("/jokes", jokeHandler.List)
		v1.GET("/jokes/highest", jokeHandler.Highest)
		v1.GET("/jokes/:id", jokeHandler.Get)

		// Votes
		v1.POST("/votes", voteHandler.Cast)

		admin := v1.Group("/admin", middleware.AdminAuth(cfg.AdminToken))
		{
			admin.GET("/blocked", adminHandler.ListBlocked)
			admin.POST("/blocked/clear", adminHandler.ClearBlocked)
		}
	}

	return r
}
