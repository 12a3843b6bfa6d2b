package main

import (
	"log/slog"

	"github.com/ikymasie/KIKA-MONOREPO-sub003/pkg/database"
	"github.com/spf13/cobra"
)

func newMigrateCmd(logger *slog.Logger) *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database schema migrations",
	}

	run := func(direction database.MigrationDirection) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger.Info("Running database migrations...", slog.String("direction", string(direction)))
			return database.RunMigrations(cfg.DatabaseURL, migrationSource(cfg), direction, logger)
		}
	}

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE:  run(database.MigrateUp),
	})
	migrateCmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		Args:  cobra.NoArgs,
		RunE:  run(database.MigrateDown),
	})

	return migrateCmd
}
