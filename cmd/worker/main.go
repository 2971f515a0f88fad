// Package main runs the RFQ desk's Temporal worker: it hosts the workflow
// and all six lifecycle activities, the booking ledger, the market data
// stream and the metrics endpoint.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/openderiv/rfqdesk/internal/config"
	"github.com/openderiv/rfqdesk/internal/worker"
	"github.com/openderiv/rfqdesk/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:   cfg.LogLevel,
		Pretty:  cfg.DevMode,
		Service: "worker",
	})

	log.Info().Msg("Starting RFQ desk worker")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := worker.Run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("Worker stopped with error")
	}
	log.Info().Msg("Worker stopped")
}
