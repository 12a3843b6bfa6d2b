package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

// @title SACCO Core API
// @version 1.0
// @description General ledger, guarantor and credit committee services for SACCOs.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(logger).ExecuteContext(ctx); err != nil {
		logger.Error("Command failed", slog.String("error", err.Error()))
		stop()
		os.Exit(1)
	}
}
