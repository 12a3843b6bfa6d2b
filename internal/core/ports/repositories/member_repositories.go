package repositories

import (
	"context"

	"github.com/ikymasie/KIKA-MONOREPO-sub003/internal/core/domain"
)

// MemberReader defines read operations for member data
type MemberReader interface {
	// FindMemberByID retrieves a member's contact details.
	FindMemberByID(ctx context.Context, memberID string) (*domain.Member, error)
}
