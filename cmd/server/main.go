package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/yukikurage/taskaza-api/internal/auth"
	"github.com/yukikurage/taskaza-api/internal/config"
	"github.com/yukikurage/taskaza-api/internal/database"
	"github.com/yukikurage/taskaza-api/internal/logger"
	"github.com/yukikurage/taskaza-api/internal/repository"
	"github.com/yukikurage/taskaza-api/internal/router"
	"github.com/yukikurage/taskaza-api/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	logger.Init(cfg.LogLevel, cfg.GinMode != gin.ReleaseMode)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	// Run migrations
	if err := database.MigrateDatabase(db); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	hasher := auth.NewHasher(cfg.BcryptCost)
	tokens := auth.NewTokenManager([]byte(cfg.JWTSecret), cfg.AccessTokenTTL, cfg.JWTIssuer)

	userRepo := repository.NewUserRepository(db)
	apiKeyRepo := repository.NewAPIKeyRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	// Initialize AI service
	var generator services.TaskGenerator
	if cfg.OpenAIAPIKey != "" {
		generator = services.NewAIService(cfg.OpenAIAPIKey)
	} else {
		log.Warn().Msg("OPENAI_API_KEY not set, task generation disabled")
	}

	r := router.New(router.Dependencies{
		Tokens:                  tokens,
		Auth:                    services.NewAuthService(userRepo, hasher),
		APIKeys:                 services.NewAPIKeyService(apiKeyRepo, hasher),
		Verification:            services.NewVerificationService(userRepo, services.LogNotifier{}, cfg.VerificationTokenTTL),
		Tasks:                   services.NewTaskService(taskRepo, generator),
		CORSOrigins:             cfg.CORSOrigins,
		ExposeVerificationToken: cfg.ExposeVerificationToken,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shut down")
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	log.Info().Msg("server exited")
}
