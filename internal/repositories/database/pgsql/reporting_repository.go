package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/ikymasie/KIKA-MONOREPO-sub003/internal/core/domain"
	portsrepo "github.com/ikymasie/KIKA-MONOREPO-sub003/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// reportingRepository implements the ReportingRepository interface
type reportingRepository struct {
	BaseRepository
}

// newReportingRepository creates a new reporting repository
func newReportingRepository(db *pgxpool.Pool) portsrepo.ReportingRepository {
	return &reportingRepository{
		BaseRepository: BaseRepository{Pool: db},
	}
}

// GetPeriodProfitAndLossData sums revenue and expense postings dated within [from, to].
// Revenue is credit-positive and expenses are debit-positive.
func (r *reportingRepository) GetPeriodProfitAndLossData(ctx context.Context, tenantID string, from, to time.Time) ([]domain.AccountAmount, []domain.AccountAmount, error) {
	query := `
		SELECT
			a.account_type,
			a.account_id,
			a.code,
			a.name,
			SUM(CASE
				WHEN a.account_type = 'EXPENSE' AND je.entry_type = 'DEBIT' THEN je.amount
				WHEN a.account_type = 'EXPENSE' THEN -je.amount
				WHEN je.entry_type = 'CREDIT' THEN je.amount
				ELSE -je.amount
			END) AS net
		FROM journal_entries je
		JOIN accounts a ON je.account_id = a.account_id
		JOIN transactions t ON je.transaction_id = t.transaction_id
		WHERE t.transaction_date BETWEEN $1 AND $2
			AND t.tenant_id = $3
			AND t.status = 'completed'
			AND a.account_type IN ('REVENUE', 'EXPENSE')
		GROUP BY a.account_type, a.account_id, a.code, a.name
		ORDER BY a.code
	`

	rows, err := r.Pool.Query(ctx, query, from, to, tenantID)
	if err != nil {
		return nil, nil, fmt.Errorf("error querying profit and loss data: %w", err)
	}
	defer rows.Close()

	revenue := []domain.AccountAmount{}
	expenses := []domain.AccountAmount{}

	for rows.Next() {
		var accountType domain.AccountType
		var row domain.AccountAmount
		var net decimal.Decimal

		if err := rows.Scan(&accountType, &row.AccountID, &row.Code, &row.Name, &net); err != nil {
			return nil, nil, fmt.Errorf("error scanning profit and loss row: %w", err)
		}
		row.Amount = net

		if accountType == domain.Revenue {
			revenue = append(revenue, row)
		} else {
			expenses = append(expenses, row)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating profit and loss rows: %w", err)
	}

	return revenue, expenses, nil
}
