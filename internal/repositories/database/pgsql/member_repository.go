package pgsql

import (
	"context"

	"github.com/ikymasie/KIKA-MONOREPO-sub003/internal/core/domain"
	portsrepo "github.com/ikymasie/KIKA-MONOREPO-sub003/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxMemberRepository struct {
	BaseRepository
}

// newPgxMemberRepository creates a new read-only repository for members.
func newPgxMemberRepository(pool *pgxpool.Pool) *PgxMemberRepository {
	return &PgxMemberRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.MemberReader = (*PgxMemberRepository)(nil)

// FindMemberByID retrieves a member's contact details.
func (r *PgxMemberRepository) FindMemberByID(ctx context.Context, memberID string) (*domain.Member, error) {
	query := `
		SELECT member_id, tenant_id, member_number, full_name, phone
		FROM members
		WHERE member_id = $1;
	`
	var m domain.Member
	err := r.Pool.QueryRow(ctx, query, memberID).Scan(&m.MemberID, &m.TenantID, &m.MemberNumber, &m.FullName, &m.Phone)
	if err != nil {
		return nil, mapQueryError(err, "find member %s", memberID)
	}
	return &m, nil
}
