package services

import (
	"context"
	"time"

	"github.com/ikymasie/KIKA-MONOREPO-sub003/internal/core/domain"
	"github.com/ikymasie/KIKA-MONOREPO-sub003/internal/dto"
)

// LedgerPostingSvc defines operations that write to a tenant's ledger
type LedgerPostingSvc interface {
	// PostTransaction validates and atomically posts a balanced transaction.
	PostTransaction(ctx context.Context, req dto.PostTransactionRequest, userID string) (*domain.Transaction, error)

	// PostBusinessEvent posts the standard double entry for a business event.
	PostBusinessEvent(ctx context.Context, req dto.BusinessEventRequest, userID string) (*domain.Transaction, error)

	// InitializeChartOfAccounts creates any missing standard accounts and returns the chart.
	InitializeChartOfAccounts(ctx context.Context, userID string) ([]domain.Account, error)
}

// LedgerReaderSvc defines read operations on a tenant's ledger
type LedgerReaderSvc interface {
	// ListAccounts returns the chart of accounts ordered by code.
	ListAccounts(ctx context.Context) ([]domain.Account, error)

	// ListGeneralLedger returns a page of journal lines with their transaction headers.
	ListGeneralLedger(ctx context.Context, params dto.ListGeneralLedgerParams) (*dto.ListGeneralLedgerResponse, error)
}

// LedgerReportingSvc defines the financial statements produced from a tenant's ledger
type LedgerReportingSvc interface {
	// GetTrialBalance lists every account with its balance on the debit or credit side.
	GetTrialBalance(ctx context.Context, asOf *time.Time) ([]domain.TrialBalanceRow, error)

	// GetBalanceSheet groups asset, liability and equity balances.
	GetBalanceSheet(ctx context.Context, asOf time.Time) (*domain.BalanceSheetReport, error)

	// GetProfitAndLoss groups revenue and expense balances.
	GetProfitAndLoss(ctx context.Context, start, end time.Time) (*domain.ProfitAndLossReport, error)

	// GetPeriodProfitAndLoss sums revenue and expense postings dated within [start, end].
	GetPeriodProfitAndLoss(ctx context.Context, start, end time.Time) (*domain.ProfitAndLossReport, error)
}

// GeneralLedgerSvcFacade combines all ledger service interfaces for one tenant
type GeneralLedgerSvcFacade interface {
	LedgerPostingSvc
	LedgerReaderSvc
	LedgerReportingSvc

	// TenantID identifies the SACCO this ledger belongs to.
	TenantID() string
}

// GeneralLedgerFactory builds tenant-scoped ledgers.
type GeneralLedgerFactory interface {
	ForTenant(tenantID string) GeneralLedgerSvcFacade
}
