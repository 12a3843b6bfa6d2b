package repositories

import (
	"context"
	"time"

	"github.com/ikymasie/KIKA-MONOREPO-sub003/internal/core/domain"
)

// ReportingRepository defines operations for retrieving financial report data
type ReportingRepository interface {
	// GetPeriodProfitAndLossData sums revenue and expense journal entries dated within [from, to],
	// signed by account type.
	GetPeriodProfitAndLossData(ctx context.Context, tenantID string, from, to time.Time) ([]domain.AccountAmount, []domain.AccountAmount, error)
}
