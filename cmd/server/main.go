package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/procare-io/srportal/internal/config"
	"github.com/procare-io/srportal/internal/logging"
	"github.com/procare-io/srportal/internal/server"
	"github.com/procare-io/srportal/internal/version"
)

func main() {
	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "."
	}
	if err := config.Load(configPath); err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	cfg := config.Get()

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	validator := config.NewSecretValidator(cfg)
	if err := validator.Validate(); err != nil {
		logger.Fatal("refusing to start", zap.Error(err))
	}
	for _, w := range validator.Warnings() {
		logger.Warn(w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize server", zap.Error(err))
	}
	defer srv.Close()

	logger.Info("starting service request portal",
		zap.String("version", version.Full()),
		zap.String("env", cfg.App.Env),
		zap.String("database", cfg.Database.Driver),
	)
	if err := srv.Run(ctx); err != nil {
		logger.Error("server stopped with error", zap.Error(err))
		srv.Close()
		os.Exit(1)
	}
	logger.Info("server stopped")
}
