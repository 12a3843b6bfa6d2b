package services

import (
	"time"

	portsrepo "github.com/ikymasie/KIKA-MONOREPO-sub003/internal/core/ports/repositories"
	portssvc "github.com/ikymasie/KIKA-MONOREPO-sub003/internal/core/ports/services"
	"github.com/ikymasie/KIKA-MONOREPO-sub003/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(
	cfg *config.Config,
	repos portsrepo.RepositoryProvider,
	notifier portssvc.GuarantorNotifier,
	options ...Option,
) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Ledgers are built per request for the caller's tenant
	container.Ledger = NewGeneralLedgerFactory(repos.AccountRepo, repos.LedgerRepo, repos.ReportingRepo, options...)

	container.Guarantor = NewGuarantorService(
		repos.GuarantorRepo,
		repos.LoanRepo,
		repos.MemberRepo,
		notifier,
		time.Duration(cfg.GuarantorResponseDays)*24*time.Hour,
		options...,
	)

	container.Committee = NewCommitteeService(repos.LoanRepo, repos.CommitteeRepo, cfg.CommitteeQuorum, options...)

	return container
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.GeneralLedgerFactory = (*generalLedgerFactory)(nil)
	_ portssvc.GuarantorSvcFacade   = (*guarantorService)(nil)
	_ portssvc.CommitteeSvcFacade   = (*committeeService)(nil)
)
