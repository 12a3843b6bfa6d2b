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

const guarantorColumns = `g.id, g.loan_id, g.guarantor_member_id, g.status, g.pledge_amount, g.guaranteed_amount,
		g.notification_sent_at, g.response_deadline, g.notification_attempts, g.notification_method,
		g.accepted_at, g.rejected_at, g.rejection_reason, g.created_at, g.created_by, g.last_updated_at, g.last_updated_by`

type PgxGuarantorRepository struct {
	BaseRepository
}

// newPgxGuarantorRepository creates a new repository for loan guarantee records.
func newPgxGuarantorRepository(pool *pgxpool.Pool) *PgxGuarantorRepository {
	return &PgxGuarantorRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxGuarantorRepository implements portsrepo.GuarantorRepositoryWithTx
var _ portsrepo.GuarantorRepositoryWithTx = (*PgxGuarantorRepository)(nil)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func guarantorScanTargets(g *domain.LoanGuarantor) []any {
	return []any{
		&g.GuarantorRecordID,
		&g.LoanID,
		&g.GuarantorMemberID,
		&g.Status,
		&g.PledgeAmount,
		&g.GuaranteedAmount,
		&g.NotificationSentAt,
		&g.ResponseDeadline,
		&g.NotificationAttempts,
		&g.NotificationMethod,
		&g.AcceptedAt,
		&g.RejectedAt,
		&g.RejectionReason,
		&g.CreatedAt,
		&g.CreatedBy,
		&g.LastUpdatedAt,
		&g.LastUpdatedBy,
	}
}

func obligationStatuses() []string {
	statuses := make([]string, len(domain.ObligationStatuses))
	for i, s := range domain.ObligationStatuses {
		statuses[i] = string(s)
	}
	return statuses
}

func findGuarantor(ctx context.Context, q querier, loanID, guarantorID string) (*domain.LoanGuarantor, error) {
	query := `SELECT ` + guarantorColumns + ` FROM loan_guarantors g WHERE g.loan_id = $1 AND g.guarantor_member_id = $2;`

	var g domain.LoanGuarantor
	if err := q.QueryRow(ctx, query, loanID, guarantorID).Scan(guarantorScanTargets(&g)...); err != nil {
		return nil, mapQueryError(err, "find guarantor %s for loan %s", guarantorID, loanID)
	}
	return &g, nil
}

func guaranteeExposure(ctx context.Context, q querier, guarantorID string) (domain.GuaranteeExposure, error) {
	query := `
		SELECT
			(SELECT COALESCE(SUM(s.current_balance), 0) FROM member_savings s WHERE s.member_id = $1),
			(SELECT COALESCE(SUM(g.guaranteed_amount), 0)
			   FROM loan_guarantors g
			   JOIN loans l ON l.loan_id = g.loan_id
			  WHERE g.guarantor_member_id = $1
			    AND g.status = 'accepted'
			    AND l.status = ANY($2));
	`
	var exposure domain.GuaranteeExposure
	if err := q.QueryRow(ctx, query, guarantorID, obligationStatuses()).Scan(&exposure.TotalSavings, &exposure.LockedSavings); err != nil {
		return domain.GuaranteeExposure{}, apperrors.NewAppError(500, "failed to compute guarantee exposure for member "+guarantorID, err)
	}
	return exposure, nil
}

// FindGuarantor retrieves the guarantee record for a (loan, guarantor) pair.
func (r *PgxGuarantorRepository) FindGuarantor(ctx context.Context, loanID, guarantorID string) (*domain.LoanGuarantor, error) {
	return findGuarantor(ctx, r.Pool, loanID, guarantorID)
}

// FindGuarantorInTx retrieves the guarantee record inside tx.
func (r *PgxGuarantorRepository) FindGuarantorInTx(ctx context.Context, tx pgx.Tx, loanID, guarantorID string) (*domain.LoanGuarantor, error) {
	return findGuarantor(ctx, tx, loanID, guarantorID)
}

// GetGuaranteeExposure sums the member's savings and the accepted guarantees on live loans.
func (r *PgxGuarantorRepository) GetGuaranteeExposure(ctx context.Context, guarantorID string) (domain.GuaranteeExposure, error) {
	return guaranteeExposure(ctx, r.Pool, guarantorID)
}

// GetGuaranteeExposureInTx is GetGuaranteeExposure evaluated inside tx.
func (r *PgxGuarantorRepository) GetGuaranteeExposureInTx(ctx context.Context, tx pgx.Tx, guarantorID string) (domain.GuaranteeExposure, error) {
	return guaranteeExposure(ctx, tx, guarantorID)
}

// LockGuaranteesForUpdate row-locks every guarantee record of the member.
func (r *PgxGuarantorRepository) LockGuaranteesForUpdate(ctx context.Context, tx pgx.Tx, guarantorID string) error {
	query := `SELECT id FROM loan_guarantors WHERE guarantor_member_id = $1 ORDER BY id FOR UPDATE;`
	if _, err := tx.Exec(ctx, query, guarantorID); err != nil {
		return apperrors.NewAppError(500, "failed to lock guarantees of member "+guarantorID, err)
	}
	return nil
}

// ListPendingGuarantorsByLoan retrieves the loan's guarantors still awaiting a response.
func (r *PgxGuarantorRepository) ListPendingGuarantorsByLoan(ctx context.Context, loanID string) ([]domain.LoanGuarantor, error) {
	query := `SELECT ` + guarantorColumns + `
		FROM loan_guarantors g
		WHERE g.loan_id = $1 AND g.status = 'pending'
		ORDER BY g.created_at;`

	rows, err := r.Pool.Query(ctx, query, loanID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query pending guarantors for loan "+loanID, err)
	}
	defer rows.Close()

	guarantors := []domain.LoanGuarantor{}
	for rows.Next() {
		var g domain.LoanGuarantor
		if err := rows.Scan(guarantorScanTargets(&g)...); err != nil {
			return nil, fmt.Errorf("failed to scan guarantor row: %w", err)
		}
		guarantors = append(guarantors, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating guarantor rows: %w", err)
	}
	return guarantors, nil
}

// ListGuarantorsByMember retrieves the member's guarantee records with a summary of each loan.
func (r *PgxGuarantorRepository) ListGuarantorsByMember(ctx context.Context, guarantorID string) ([]domain.LoanGuarantor, error) {
	query := `SELECT ` + guarantorColumns + `,
		       l.loan_id, l.loan_number, l.member_id, l.principal_amount, l.status
		FROM loan_guarantors g
		JOIN loans l ON l.loan_id = g.loan_id
		WHERE g.guarantor_member_id = $1
		ORDER BY g.created_at DESC;`

	rows, err := r.Pool.Query(ctx, query, guarantorID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query guarantee records for member "+guarantorID, err)
	}
	defer rows.Close()

	guarantors := []domain.LoanGuarantor{}
	for rows.Next() {
		var g domain.LoanGuarantor
		var loan domain.Loan
		targets := append(guarantorScanTargets(&g), &loan.LoanID, &loan.LoanNumber, &loan.MemberID, &loan.PrincipalAmount, &loan.Status)
		if err := rows.Scan(targets...); err != nil {
			return nil, fmt.Errorf("failed to scan guarantee record row: %w", err)
		}
		g.Loan = &loan
		guarantors = append(guarantors, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating guarantee record rows: %w", err)
	}
	return guarantors, nil
}

const updateGuarantorQuery = `
	UPDATE loan_guarantors
	SET status = $2,
	    pledge_amount = $3,
	    guaranteed_amount = $4,
	    notification_sent_at = $5,
	    response_deadline = $6,
	    notification_attempts = $7,
	    notification_method = $8,
	    accepted_at = $9,
	    rejected_at = $10,
	    rejection_reason = $11,
	    last_updated_at = $12,
	    last_updated_by = $13
	WHERE id = $1;
`

func guarantorUpdateArgs(g domain.LoanGuarantor) []any {
	return []any{
		g.GuarantorRecordID,
		g.Status,
		g.PledgeAmount,
		g.GuaranteedAmount,
		g.NotificationSentAt,
		g.ResponseDeadline,
		g.NotificationAttempts,
		g.NotificationMethod,
		g.AcceptedAt,
		g.RejectedAt,
		g.RejectionReason,
		g.LastUpdatedAt,
		g.LastUpdatedBy,
	}
}

// UpdateGuarantor persists the mutable fields of a guarantee record.
func (r *PgxGuarantorRepository) UpdateGuarantor(ctx context.Context, g domain.LoanGuarantor) error {
	ct, err := r.Pool.Exec(ctx, updateGuarantorQuery, guarantorUpdateArgs(g)...)
	if err != nil {
		return fmt.Errorf("failed to update guarantor record %s: %w", g.GuarantorRecordID, err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// UpdateGuarantorInTx is UpdateGuarantor executed inside tx.
func (r *PgxGuarantorRepository) UpdateGuarantorInTx(ctx context.Context, tx pgx.Tx, g domain.LoanGuarantor) error {
	ct, err := tx.Exec(ctx, updateGuarantorQuery, guarantorUpdateArgs(g)...)
	if err != nil {
		return fmt.Errorf("failed to update guarantor record %s: %w", g.GuarantorRecordID, err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
