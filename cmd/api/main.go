package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/timmy/jokegen/internal/api"
	"github.com/timmy/jokegen/internal/config"
	"github.com/timmy/jokegen/internal/logger"
	"github.com/timmy/jokegen/internal/repository"
	"github.com/timmy/jokegen/internal/service"
)

func main() {
	appLogger := logger.NewFromEnv(logger.LoadFromEnv())
	logger.SetDefaultLogger(appLogger)
	defer logger.Sync()

	// Support CONFIG_PATH environment variable for production deployments
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}

	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}
	defer repository.Close(db)

	loc, err := cfg.Voting.Location()
	if err != nil {
		appLogger.WithError(err).Fatal("Invalid voting configuration")
	}
	calendar := service.NewCalendar(loc)

	llm, err := service.NewLLMService(&cfg.LLM)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize LLM client")
	}
	appLogger.WithField("model", llm.ModelName()).Info("LLM client ready")

	jokeService := service.NewJokeService(
		repository.NewTopicRepository(db),
		repository.NewJokeRepository(db),
		service.NewModerationService(llm),
		llm,
		calendar,
		service.JokeServiceConfig{
			TopicMaxLength:   cfg.Generation.TopicMaxLength,
			JokeLimit:        cfg.Generation.JokeLimit,
			ExplanationLimit: cfg.Generation.ExplanationLimit,
			SystemPrompt:     cfg.Generation.SystemPrompt,
		},
	)
	voteService := service.NewVoteService(repository.NewVoteLedger(db), calendar, cfg.Voting.MaxRetries)

	limiter, err := service.NewRateLimiter(&cfg.RateLimit)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize rate limiter")
	}
	defer limiter.Close()

	router := api.SetupRouter(&api.Services{
		Jokes:   jokeService,
		Votes:   voteService,
		Limiter: limiter,
		Ping:    func(ctx context.Context) error { return repository.Ping(ctx, db) },
	}, &cfg.Server)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.WithFields(logger.Fields{
			"port": cfg.Server.Port,
			"mode": cfg.Server.Mode,
		}).Info("Starting API server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	// LLM calls can take a while; give in-flight generations time to finish
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.LLM.Timeout+5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Error("Server forced to shutdown")
	}

	appLogger.Info("Server exited")
}
