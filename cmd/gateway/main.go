// Package main runs the HTTP gateway that fronts the RFQ desk: submission,
// client responses, status queries and result retrieval.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.temporal.io/sdk/client"

	"github.com/openderiv/rfqdesk/internal/codec"
	"github.com/openderiv/rfqdesk/internal/config"
	"github.com/openderiv/rfqdesk/internal/gateway"
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
		Service: "gateway",
	})

	log.Info().Msg("Starting RFQ desk gateway")

	temporal, err := client.Dial(client.Options{
		HostPort:      cfg.TemporalHostPort,
		Namespace:     cfg.TemporalNamespace,
		DataConverter: codec.DataConverter(),
	})
	if err != nil {
		log.Fatal().Err(err).Str("host", cfg.TemporalHostPort).Msg("Failed to connect to Temporal")
	}
	defer temporal.Close()

	srv := gateway.New(gateway.Config{
		Log:      log,
		Temporal: temporal,
		Port:     cfg.GatewayPort,
		DevMode:  cfg.DevMode,
	})

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Fatal().Err(err).Msg("HTTP server stopped unexpectedly")
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("Shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}
}
