package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/andresuchdata/restock-engine/internal/api"
	"github.com/andresuchdata/restock-engine/internal/config"
	"github.com/andresuchdata/restock-engine/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger.Init(cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := api.NewServer(cfg).Run(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server stopped with error")
	}
}
