package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// TransactionManager scopes multi-statement work such as a posting and its balance updates
// to one pgx transaction.
type TransactionManager interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Commit(ctx context.Context, tx pgx.Tx) error
	// Rollback is a no-op once the transaction has committed.
	Rollback(ctx context.Context, tx pgx.Tx) error
}
