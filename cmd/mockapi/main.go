package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"addressbook/internal/mockapi"
	"addressbook/internal/platform/config"
	"addressbook/internal/platform/logger"
)

// main runs the in-memory contacts backend until interrupted.
func main() {
	cfg := config.MockAPIFromEnv()
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := mockapi.Run(ctx, cfg, log); err != nil {
		log.Error("mock backend stopped", "error", err)
		os.Exit(1)
	}
	log.Info("mock backend stopped")
}
