package repositories

import (
	"context"

	"github.com/ikymasie/KIKA-MONOREPO-sub003/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// CommitteeVoteRepository defines persistence operations for committee votes
type CommitteeVoteRepository interface {
	// UpsertVoteInTx stores the vote, replacing any earlier vote by the same user on the same loan.
	UpsertVoteInTx(ctx context.Context, tx pgx.Tx, vote domain.CommitteeVote) error

	// ListVotesByLoan retrieves the current votes on a loan ordered by first vote time.
	ListVotesByLoan(ctx context.Context, loanID string) ([]domain.CommitteeVote, error)

	// ListVotesByLoanInTx is ListVotesByLoan evaluated inside tx.
	ListVotesByLoanInTx(ctx context.Context, tx pgx.Tx, loanID string) ([]domain.CommitteeVote, error)
}
