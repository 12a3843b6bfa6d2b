package pgsql

import (
	"context"
	"fmt"

	"github.com/ikymasie/KIKA-MONOREPO-sub003/internal/apperrors"
	"github.com/ikymasie/KIKA-MONOREPO-sub003/internal/core/domain"
	portsrepo "github.com/ikymasie/KIKA-MONOREPO-sub003/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxCommitteeRepository struct {
	BaseRepository
}

// newPgxCommitteeRepository creates a new repository for committee votes.
func newPgxCommitteeRepository(pool *pgxpool.Pool) *PgxCommitteeRepository {
	return &PgxCommitteeRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.CommitteeVoteRepository = (*PgxCommitteeRepository)(nil)

// UpsertVoteInTx stores a vote. A repeat vote by the same user replaces the choice and notes
// but keeps the original vote time, so ordering stays by first vote.
func (r *PgxCommitteeRepository) UpsertVoteInTx(ctx context.Context, tx pgx.Tx, vote domain.CommitteeVote) error {
	query := `
		INSERT INTO loan_committee_votes (loan_id, user_id, vote, notes, voted_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (loan_id, user_id)
		DO UPDATE SET vote = EXCLUDED.vote, notes = EXCLUDED.notes, updated_at = EXCLUDED.updated_at;
	`
	if _, err := tx.Exec(ctx, query, vote.LoanID, vote.UserID, vote.Vote, vote.Notes, vote.Timestamp); err != nil {
		return apperrors.NewAppError(500, "failed to record vote on loan "+vote.LoanID, err)
	}
	return nil
}

func listVotes(ctx context.Context, q querier, loanID string) ([]domain.CommitteeVote, error) {
	query := `
		SELECT loan_id, user_id, vote, notes, updated_at
		FROM loan_committee_votes
		WHERE loan_id = $1
		ORDER BY voted_at, user_id;
	`
	rows, err := q.Query(ctx, query, loanID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query votes for loan "+loanID, err)
	}
	defer rows.Close()

	votes := []domain.CommitteeVote{}
	for rows.Next() {
		var v domain.CommitteeVote
		if err := rows.Scan(&v.LoanID, &v.UserID, &v.Vote, &v.Notes, &v.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan vote row: %w", err)
		}
		votes = append(votes, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating vote rows: %w", err)
	}
	return votes, nil
}

// ListVotesByLoan retrieves the loan's current votes ordered by first vote time.
func (r *PgxCommitteeRepository) ListVotesByLoan(ctx context.Context, loanID string) ([]domain.CommitteeVote, error) {
	return listVotes(ctx, r.Pool, loanID)
}

// ListVotesByLoanInTx is ListVotesByLoan evaluated inside tx.
func (r *PgxCommitteeRepository) ListVotesByLoanInTx(ctx context.Context, tx pgx.Tx, loanID string) ([]domain.CommitteeVote, error) {
	return listVotes(ctx, tx, loanID)
}
