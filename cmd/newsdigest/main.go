package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"NewsDigest/internal/app"
	"NewsDigest/internal/config"
	"NewsDigest/internal/logging"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}

	if err := a.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("digest service stopped", "error", err)
		os.Exit(1)
	}
}
