package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ikymasie/KIKA-MONOREPO-sub003/internal/platform/config"
	"github.com/ikymasie/KIKA-MONOREPO-sub003/migrations"
	"github.com/ikymasie/KIKA-MONOREPO-sub003/pkg/database"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

func newRootCmd(logger *slog.Logger) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "sacco_core",
		Short:         "SACCO general ledger, guarantor and committee service",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	rootCmd.AddCommand(newServeCmd(logger))
	rootCmd.AddCommand(newMigrateCmd(logger))
	rootCmd.AddCommand(newChartCmd(logger))

	return rootCmd
}

// loadConfig loads configuration and validates what every command needs.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("PGSQL_URL must be set")
	}
	return cfg, nil
}

func openPool(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*pgxpool.Pool, error) {
	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database pool: %w", err)
	}
	logger.Info("Database connection pool established.")
	return dbPool, nil
}

func migrationSource(cfg *config.Config) database.MigrationSource {
	return database.MigrationSource{URL: cfg.MigrationsPath, FS: migrations.FS}
}
