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

	"github.com/timmy/picprompt/internal/api"
	"github.com/timmy/picprompt/internal/config"
	"github.com/timmy/picprompt/internal/logger"
	"github.com/timmy/picprompt/internal/matcher"
	"github.com/timmy/picprompt/internal/repository"
	"github.com/timmy/picprompt/internal/service"
	"github.com/timmy/picprompt/internal/storage"
	"github.com/timmy/picprompt/internal/vocabulary"
)

func main() {
	// Support CONFIG_PATH environment variable for production deployments
	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		logger.GetDefault().WithError(err).Fatal("Failed to load config")
	}

	appLogger := logger.NewFromEnv(logger.LoadFromEnv().WithLevel(cfg.Log.Level, cfg.Log.Format))
	logger.SetDefaultLogger(appLogger)
	defer logger.Sync()

	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}
	presetRepo := repository.NewPresetRepository(db)

	ctx := context.Background()
	if err := presetRepo.EnsureDefault(ctx); err != nil {
		appLogger.WithError(err).Fatal("Failed to seed default preset")
	}

	// Object storage is only needed when the vocabulary lives in a bucket
	var objectStorage storage.ObjectStorage
	if cfg.Vocabulary.Source == "object" {
		objectStorage, err = storage.NewFromConfig(cfg.Storage)
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to initialize storage")
		}
	}

	source, err := vocabulary.NewSource(cfg.Vocabulary, objectStorage)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to configure vocabulary source")
	}
	store := vocabulary.NewStore(source, appLogger)
	resolver := matcher.NewResolver(store, matcher.ConfigFrom(cfg.Matcher, appLogger))

	promptService, err := service.NewPromptService(resolver, presetRepo, cfg.Matcher, cfg.Extraction, appLogger)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize prompt service")
	}

	// A failed load leaves the server up with tags passing through unmatched
	go func() {
		if _, err := promptService.Initialize(ctx); err != nil {
			appLogger.WithError(err).Warn("Vocabulary not loaded; tag matching degraded")
		}
	}()

	router := api.SetupRouter(cfg.Server, promptService, presetRepo, appLogger)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Error("Server forced to shutdown")
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	appLogger.Info("Server exited")
}
