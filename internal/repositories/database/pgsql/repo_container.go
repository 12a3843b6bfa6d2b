package pgsql

import (
	portsrepo "github.com/ikymasie/KIKA-MONOREPO-sub003/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	accountRepo := newPgxAccountRepository(dbPool)
	ledgerRepo := newPgxLedgerRepository(dbPool, accountRepo)
	reportingRepo := newReportingRepository(dbPool)
	loanRepo := newPgxLoanRepository(dbPool)
	memberRepo := newPgxMemberRepository(dbPool)
	guarantorRepo := newPgxGuarantorRepository(dbPool)
	committeeRepo := newPgxCommitteeRepository(dbPool)

	return portsrepo.RepositoryProvider{
		AccountRepo:   accountRepo,
		LedgerRepo:    ledgerRepo,
		ReportingRepo: reportingRepo,
		LoanRepo:      loanRepo,
		MemberRepo:    memberRepo,
		GuarantorRepo: guarantorRepo,
		CommitteeRepo: committeeRepo,
	}
}
