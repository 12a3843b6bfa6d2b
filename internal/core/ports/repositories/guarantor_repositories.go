package repositories

import (
	"context"

	"github.com/ikymasie/KIKA-MONOREPO-sub003/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// GuarantorReader defines read operations for guarantee records
type GuarantorReader interface {
	// FindGuarantor retrieves the record for a (loan, guarantor) pair.
	FindGuarantor(ctx context.Context, loanID, guarantorID string) (*domain.LoanGuarantor, error)

	// ListPendingGuarantorsByLoan retrieves the loan's guarantors that have not yet responded.
	ListPendingGuarantorsByLoan(ctx context.Context, loanID string) ([]domain.LoanGuarantor, error)

	// ListGuarantorsByMember retrieves every guarantee record of a member, newest first, with its loan.
	ListGuarantorsByMember(ctx context.Context, guarantorID string) ([]domain.LoanGuarantor, error)

	// GetGuaranteeExposure sums the member's savings and the guarantees still locking them.
	GetGuaranteeExposure(ctx context.Context, guarantorID string) (domain.GuaranteeExposure, error)
}

// GuarantorWriter defines write operations for guarantee records
type GuarantorWriter interface {
	// UpdateGuarantor persists the mutable fields of a guarantee record.
	UpdateGuarantor(ctx context.Context, guarantor domain.LoanGuarantor) error
}

// GuarantorTransactionSupport defines guarantee operations that run inside a caller's transaction
type GuarantorTransactionSupport interface {
	// LockGuaranteesForUpdate locks every guarantee record of the member so that concurrent
	// pledges by the same guarantor serialise.
	LockGuaranteesForUpdate(ctx context.Context, tx pgx.Tx, guarantorID string) error

	// FindGuarantorInTx retrieves the record for a (loan, guarantor) pair inside tx.
	FindGuarantorInTx(ctx context.Context, tx pgx.Tx, loanID, guarantorID string) (*domain.LoanGuarantor, error)

	// GetGuaranteeExposureInTx is GetGuaranteeExposure evaluated inside tx.
	GetGuaranteeExposureInTx(ctx context.Context, tx pgx.Tx, guarantorID string) (domain.GuaranteeExposure, error)

	// UpdateGuarantorInTx is UpdateGuarantor executed inside tx.
	UpdateGuarantorInTx(ctx context.Context, tx pgx.Tx, guarantor domain.LoanGuarantor) error
}

// GuarantorRepositoryFacade combines all guarantor-related repository interfaces
type GuarantorRepositoryFacade interface {
	GuarantorReader
	GuarantorWriter
	GuarantorTransactionSupport
}

// GuarantorRepositoryWithTx extends GuarantorRepositoryFacade with transaction capabilities
type GuarantorRepositoryWithTx interface {
	GuarantorRepositoryFacade
	TransactionManager
}
