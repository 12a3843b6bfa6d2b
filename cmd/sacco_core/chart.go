package main

import (
	"errors"
	"log/slog"

	"github.com/ikymasie/KIKA-MONOREPO-sub003/internal/adapters/notifier"
	"github.com/ikymasie/KIKA-MONOREPO-sub003/internal/core/services"
	"github.com/ikymasie/KIKA-MONOREPO-sub003/internal/repositories/database/pgsql"
	"github.com/spf13/cobra"
)

const systemUserID = "system"

func newChartCmd(logger *slog.Logger) *cobra.Command {
	chartCmd := &cobra.Command{
		Use:   "chart",
		Short: "Manage a SACCO's chart of accounts",
	}

	var tenantID, userID string
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create any missing standard accounts for a SACCO",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if tenantID == "" {
				return errors.New("--tenant is required")
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			dbPool, err := openPool(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer dbPool.Close()

			container := services.NewServiceContainer(cfg, pgsql.NewRepositoryProvider(dbPool), notifier.NewLogNotifier())
			accounts, err := container.Ledger.ForTenant(tenantID).InitializeChartOfAccounts(cmd.Context(), userID)
			if err != nil {
				return err
			}

			logger.Info("Chart of accounts initialized",
				slog.String("tenant_id", tenantID),
				slog.Int("account_count", len(accounts)))
			return nil
		},
	}
	initCmd.Flags().StringVar(&tenantID, "tenant", "", "SACCO (tenant) ID")
	initCmd.Flags().StringVar(&userID, "user", systemUserID, "user recorded as the creator of new accounts")

	chartCmd.AddCommand(initCmd)
	return chartCmd
}
