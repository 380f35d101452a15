// Command gate-server runs the fleet gate backend: REST API over
// Postgres with realtime publishing to Redis.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fleetyard/gate-ops/internal/bootstrap"
)

func main() {
	logger := bootstrap.InitLogger()
	if err := run(logger); err != nil {
		logger.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server, err := bootstrap.NewServer(cfg, logger)
	if err != nil {
		return err
	}
	return server.Run(ctx)
}
