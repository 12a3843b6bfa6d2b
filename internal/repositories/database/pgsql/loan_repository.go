package pgsql

import (
	"context"
	"fmt"

	"github.com/ikymasie/KIKA-MONOREPO-sub003/internal/core/domain"
	portsrepo "github.com/ikymasie/KIKA-MONOREPO-sub003/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const loanColumns = `l.loan_id, l.tenant_id, l.loan_number, l.member_id, l.product_id, l.principal_amount, l.interest_rate,
		l.term_months, l.status, l.workflow_stage, l.committee_approval_date, l.committee_quorum, l.rejection_reason,
		l.created_at, l.created_by, l.last_updated_at, l.last_updated_by`

type PgxLoanRepository struct {
	BaseRepository
}

// newPgxLoanRepository creates a new repository for loan workflow data.
func newPgxLoanRepository(pool *pgxpool.Pool) *PgxLoanRepository {
	return &PgxLoanRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxLoanRepository implements portsrepo.LoanRepositoryWithTx
var _ portsrepo.LoanRepositoryWithTx = (*PgxLoanRepository)(nil)

func loanScanTargets(l *domain.Loan) []any {
	return []any{
		&l.LoanID,
		&l.TenantID,
		&l.LoanNumber,
		&l.MemberID,
		&l.ProductID,
		&l.PrincipalAmount,
		&l.InterestRate,
		&l.TermMonths,
		&l.Status,
		&l.WorkflowStage,
		&l.CommitteeApprovalDate,
		&l.CommitteeQuorum,
		&l.RejectionReason,
		&l.CreatedAt,
		&l.CreatedBy,
		&l.LastUpdatedAt,
		&l.LastUpdatedBy,
	}
}

// FindLoanByID retrieves a loan by its ID.
func (r *PgxLoanRepository) FindLoanByID(ctx context.Context, loanID string) (*domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans l WHERE l.loan_id = $1;`

	var loan domain.Loan
	if err := r.Pool.QueryRow(ctx, query, loanID).Scan(loanScanTargets(&loan)...); err != nil {
		return nil, mapQueryError(err, "find loan %s", loanID)
	}
	return &loan, nil
}

// FindLoanWithRelations retrieves a loan joined with its member and product.
func (r *PgxLoanRepository) FindLoanWithRelations(ctx context.Context, loanID string) (*domain.Loan, error) {
	query := `
		SELECT ` + loanColumns + `,
		       m.member_id, m.tenant_id, m.member_number, m.full_name, m.phone,
		       p.product_id, p.name
		FROM loans l
		JOIN members m ON m.member_id = l.member_id
		JOIN loan_products p ON p.product_id = l.product_id
		WHERE l.loan_id = $1;
	`
	var loan domain.Loan
	var member domain.Member
	var product domain.LoanProduct
	targets := append(loanScanTargets(&loan),
		&member.MemberID, &member.TenantID, &member.MemberNumber, &member.FullName, &member.Phone,
		&product.ProductID, &product.Name,
	)
	if err := r.Pool.QueryRow(ctx, query, loanID).Scan(targets...); err != nil {
		return nil, mapQueryError(err, "find loan %s with relations", loanID)
	}
	loan.Member = &member
	loan.Product = &product
	return &loan, nil
}

// FindLoanByIDForUpdate retrieves a loan and locks its row. Must be called within a transaction.
func (r *PgxLoanRepository) FindLoanByIDForUpdate(ctx context.Context, tx pgx.Tx, loanID string) (*domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans l WHERE l.loan_id = $1 FOR UPDATE;`

	var loan domain.Loan
	if err := tx.QueryRow(ctx, query, loanID).Scan(loanScanTargets(&loan)...); err != nil {
		return nil, mapQueryError(err, "lock loan %s", loanID)
	}
	return &loan, nil
}

// UpdateLoanStatusInTx moves a loan to a new status only if it is still in the expected status.
func (r *PgxLoanRepository) UpdateLoanStatusInTx(ctx context.Context, tx pgx.Tx, change domain.LoanStatusChange) (bool, error) {
	query := `
		UPDATE loans
		SET status = $3,
		    workflow_stage = COALESCE(NULLIF($4, ''), workflow_stage),
		    committee_approval_date = COALESCE($5, committee_approval_date),
		    rejection_reason = COALESCE($6, rejection_reason),
		    last_updated_at = $7,
		    last_updated_by = $8,
		    committee_quorum = COALESCE($9, committee_quorum)
		WHERE loan_id = $1 AND status = $2;
	`
	ct, err := tx.Exec(ctx, query,
		change.LoanID,
		change.ExpectedStatus,
		change.Status,
		string(change.WorkflowStage),
		change.CommitteeApprovalDate,
		change.RejectionReason,
		change.UpdatedAt,
		change.UpdatedBy,
		change.CommitteeQuorum,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update status of loan %s: %w", change.LoanID, err)
	}
	return ct.RowsAffected() == 1, nil
}

// AppendWorkflowLogInTx inserts an audit entry for a loan.
func (r *PgxLoanRepository) AppendWorkflowLogInTx(ctx context.Context, tx pgx.Tx, entry domain.LoanWorkflowLog) error {
	query := `
		INSERT INTO loan_workflow_logs (log_id, loan_id, action_type, action_by, from_status, to_status, notes, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := tx.Exec(ctx, query,
		entry.LogID,
		entry.LoanID,
		entry.ActionType,
		entry.ActionBy,
		entry.FromStatus,
		entry.ToStatus,
		entry.Notes,
		entry.Metadata,
		entry.CreatedAt,
	)
	if err != nil {
		return mapQueryError(err, "append workflow log for loan %s", entry.LoanID)
	}
	return nil
}
