// Command server runs the signatures HTTP API with configuration taken from
// SIGNATURES_CONFIG and the environment.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/matthewbaird/signatures/internal/app"
	"github.com/matthewbaird/signatures/internal/config"
	"github.com/matthewbaird/signatures/internal/logging"
	"github.com/matthewbaird/signatures/internal/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(os.Getenv("SIGNATURES_CONFIG"))
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("building logger: %v", err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("wiring app", zap.Error(err))
	}
	defer a.Close()

	if err := server.Run(ctx, a); err != nil {
		logger.Error("server error", zap.Error(err))
		os.Exit(1)
	}
}
