package services

import (
	"context"

	"github.com/ikymasie/KIKA-MONOREPO-sub003/internal/core/domain"
	"github.com/shopspring/decimal"
)

// GuarantorCapacitySvc defines operations on a guarantor's lockable savings
type GuarantorCapacitySvc interface {
	// CheckGuarantorCapacity reports whether the member's unlocked savings cover pledgeAmount.
	CheckGuarantorCapacity(ctx context.Context, guarantorID string, pledgeAmount decimal.Decimal) (*domain.CapacityCheck, error)

	// LockGuarantorSavings accepts the guarantee and locks amount of the guarantor's savings.
	LockGuarantorSavings(ctx context.Context, guarantorID, loanID string, amount decimal.Decimal) (*domain.PledgeOutcome, error)

	// ReleaseGuarantorSavings releases a guarantee's pledge.
	ReleaseGuarantorSavings(ctx context.Context, guarantorID, loanID string) (*domain.ReleaseOutcome, error)
}

// GuarantorNotificationSvc defines operations that ask members to guarantee a loan
type GuarantorNotificationSvc interface {
	// SendGuarantorNotification notifies one guarantor and records the attempt.
	SendGuarantorNotification(ctx context.Context, guarantorID, loanID string) (*domain.Outcome, error)

	// RequestGuarantorPledges notifies every pending guarantor of the loan.
	RequestGuarantorPledges(ctx context.Context, loanID string) (*domain.PledgeRequestOutcome, error)
}

// GuarantorWorkflowSvc defines the guarantor stage of the loan workflow
type GuarantorWorkflowSvc interface {
	// RequestGuarantors moves a draft loan into guarantor staking and notifies its guarantors.
	RequestGuarantors(ctx context.Context, loanID, actorID string) (*domain.PledgeRequestOutcome, error)

	// RespondToGuarantorRequest records a guarantor's acceptance or rejection.
	RespondToGuarantorRequest(ctx context.Context, guarantorID, loanID string, accept bool, reason *string) (*domain.PledgeOutcome, error)

	// ListGuarantorRequests returns the member's guarantee records.
	ListGuarantorRequests(ctx context.Context, guarantorID string) ([]domain.LoanGuarantor, error)
}

// GuarantorSvcFacade combines all guarantor service interfaces
type GuarantorSvcFacade interface {
	GuarantorCapacitySvc
	GuarantorNotificationSvc
	GuarantorWorkflowSvc
}

// GuarantorNotifier delivers guarantor requests to members.
type GuarantorNotifier interface {
	NotifyGuarantor(ctx context.Context, notification domain.GuarantorNotification) error
}
