package repositories

import (
	"context"

	"github.com/ikymasie/KIKA-MONOREPO-sub003/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// LoanReader defines read operations for loan data
type LoanReader interface {
	// FindLoanByID retrieves a loan without relations.
	FindLoanByID(ctx context.Context, loanID string) (*domain.Loan, error)

	// FindLoanWithRelations retrieves a loan together with its member and product.
	FindLoanWithRelations(ctx context.Context, loanID string) (*domain.Loan, error)
}

// LoanTransactionSupport defines loan operations that run inside a caller's transaction
type LoanTransactionSupport interface {
	// FindLoanByIDForUpdate retrieves a loan and locks its row.
	FindLoanByIDForUpdate(ctx context.Context, tx pgx.Tx, loanID string) (*domain.Loan, error)

	// UpdateLoanStatusInTx applies change only if the loan is still in change.ExpectedStatus.
	// It reports whether the row was updated.
	UpdateLoanStatusInTx(ctx context.Context, tx pgx.Tx, change domain.LoanStatusChange) (bool, error)

	// AppendWorkflowLogInTx records an audit entry for a vote or status change.
	AppendWorkflowLogInTx(ctx context.Context, tx pgx.Tx, entry domain.LoanWorkflowLog) error
}

// LoanRepositoryFacade combines all loan-related repository interfaces
type LoanRepositoryFacade interface {
	LoanReader
	LoanTransactionSupport
}

// LoanRepositoryWithTx extends LoanRepositoryFacade with transaction capabilities
type LoanRepositoryWithTx interface {
	LoanRepositoryFacade
	TransactionManager
}
