// Package main is the entry point for the AIZA platform HTTP service.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aiza-ai/platform/internal/app/runtime"
	"github.com/aiza-ai/platform/internal/config"
	"github.com/aiza-ai/platform/pkg/logger"
)

func main() {
	log := logger.NewDefault("aiza")
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load settings: %v", err)
	}

	log = logger.New(logger.LoggingConfig{Name: "aiza", Level: "info"})

	app, err := runtime.NewApplication(cfg, log)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runErr := app.Run(ctx)
	if runErr != nil {
		log.WithError(runErr).Error("application stopped with error")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := app.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("shutdown error")
	}
	log.Info("Service stopped")

	if runErr != nil {
		os.Exit(1)
	}
}
