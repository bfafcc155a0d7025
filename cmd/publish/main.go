package main

import (
	"bytes"
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/timmy/picprompt/internal/config"
	"github.com/timmy/picprompt/internal/logger"
	"github.com/timmy/picprompt/internal/storage"
	"github.com/timmy/picprompt/internal/vocabulary"
)

func main() {
	appLogger := logger.New(&logger.Config{
		Level:       "info",
		Format:      "json",
		ServiceName: "picprompt-publish",
	})
	logger.SetDefaultLogger(appLogger)

	configPath := flag.String("config", "", "Path to config file")
	file := flag.String("file", "", "Vocabulary JSON file to publish")
	key := flag.String("key", "", "Object key, defaults to vocabulary.object_key")
	force := flag.Bool("force", false, "Overwrite an existing object")
	flag.Parse()

	if *file == "" {
		appLogger.Fatal("-file is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}
	objectKey := *key
	if objectKey == "" {
		objectKey = cfg.Vocabulary.ObjectKey
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		appLogger.Info("Received shutdown signal, canceling...")
		cancel()
	}()

	data, err := os.ReadFile(*file)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to read vocabulary file")
	}

	// Refuse to publish a document the server could not load
	check := vocabulary.NewStore(vocabulary.NewRawSource(data), appLogger)
	if err := check.Load(ctx); err != nil {
		appLogger.WithError(err).Fatal("Vocabulary file is not valid")
	}

	objectStorage, err := storage.NewFromConfig(cfg.Storage)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize storage")
	}
	if err := objectStorage.EnsureBucket(ctx); err != nil {
		appLogger.WithError(err).Fatal("Failed to ensure storage bucket")
	}

	exists, err := objectStorage.Exists(ctx, objectKey)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to check existing object")
	}
	if exists && !*force {
		appLogger.WithField("key", objectKey).Fatal("Object already exists, use -force to overwrite")
	}

	if err := objectStorage.Upload(ctx, objectKey, bytes.NewReader(data), int64(len(data)), "application/json"); err != nil {
		appLogger.WithError(err).Fatal("Failed to upload vocabulary")
	}

	appLogger.WithFields(logger.Fields{
		"key":     objectKey,
		"entries": check.Len(),
		"size":    len(data),
		"url":     objectStorage.GetURL(objectKey),
	}).Info("Vocabulary published")
}
