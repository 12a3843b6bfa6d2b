package repositories

import (
	"context"

	"github.com/ikymasie/KIKA-MONOREPO-sub003/internal/core/domain"
)

// LedgerReader defines read operations for posted transactions
type LedgerReader interface {
	// FindTransactionByID retrieves a tenant's transaction with its journal entries.
	FindTransactionByID(ctx context.Context, tenantID, transactionID string) (*domain.Transaction, error)

	// ListLedgerLines retrieves journal lines joined with their transaction headers using token-based pagination.
	// It returns the lines, a token for the next page, and an error.
	ListLedgerLines(ctx context.Context, tenantID string, filter domain.LedgerFilter, limit int, nextToken *string) ([]domain.LedgerLine, *string, error)
}

// LedgerWriter defines write operations for posted transactions
type LedgerWriter interface {
	// PostTransaction allocates the tenant's next transaction number, locks every referenced account,
	// inserts the transaction and its entries and applies the balance deltas in one database transaction.
	// It returns the stored transaction.
	PostTransaction(ctx context.Context, txn domain.Transaction) (*domain.Transaction, error)
}

// LedgerRepositoryFacade combines all ledger-related repository interfaces
type LedgerRepositoryFacade interface {
	LedgerReader
	LedgerWriter
}
