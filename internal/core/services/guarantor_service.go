package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/ikymasie/KIKA-MONOREPO-sub003/internal/apperrors"
	"github.com/ikymasie/KIKA-MONOREPO-sub003/internal/core/domain"
	portsrepo "github.com/ikymasie/KIKA-MONOREPO-sub003/internal/core/ports/repositories"
	portssvc "github.com/ikymasie/KIKA-MONOREPO-sub003/internal/core/ports/services"
	"github.com/ikymasie/KIKA-MONOREPO-sub003/internal/metrics"
	"github.com/ikymasie/KIKA-MONOREPO-sub003/internal/utils"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
)

// DefaultGuarantorResponseWindow is how long a guarantor has to answer a request.
const DefaultGuarantorResponseWindow = 7 * 24 * time.Hour

const (
	msgGuarantorNotFound        = "Guarantor record not found"
	msgMemberOrLoanNotFound     = "Member or loan not found"
	msgLoanNotFound             = "Loan not found"
	msgNoPendingGuarantors      = "No pending guarantors found"
	msgLoanNotDraft             = "Loan must be in draft status to request guarantors"
	msgGuarantorAlreadyAnswered = "Guarantor request already responded to"
)

// guarantorService implements the guarantor capacity engine and the guarantor stage of the loan workflow.
type guarantorService struct {
	BaseService
	guarantorRepo  portsrepo.GuarantorRepositoryWithTx
	loanRepo       portsrepo.LoanRepositoryWithTx
	memberRepo     portsrepo.MemberReader
	notifier       portssvc.GuarantorNotifier
	responseWindow time.Duration
}

// NewGuarantorService creates a guarantor service. A non-positive responseWindow uses
// DefaultGuarantorResponseWindow.
func NewGuarantorService(
	guarantorRepo portsrepo.GuarantorRepositoryWithTx,
	loanRepo portsrepo.LoanRepositoryWithTx,
	memberRepo portsrepo.MemberReader,
	notifier portssvc.GuarantorNotifier,
	responseWindow time.Duration,
	options ...Option,
) portssvc.GuarantorSvcFacade {
	if responseWindow <= 0 {
		responseWindow = DefaultGuarantorResponseWindow
	}
	svc := &guarantorService{
		guarantorRepo:  guarantorRepo,
		loanRepo:       loanRepo,
		memberRepo:     memberRepo,
		notifier:       notifier,
		responseWindow: responseWindow,
	}
	for _, option := range options {
		option(&svc.BaseService)
	}
	return svc
}

// Ensure guarantorService implements the portssvc.GuarantorSvcFacade interface
var _ portssvc.GuarantorSvcFacade = (*guarantorService)(nil)

// evaluateCapacity decides whether the exposure leaves room for pledgeAmount.
func evaluateCapacity(exposure domain.GuaranteeExposure, pledgeAmount decimal.Decimal) domain.CapacityCheck {
	available := exposure.TotalSavings.Sub(exposure.LockedSavings)
	check := domain.CapacityCheck{
		CanGuarantee:     available.GreaterThanOrEqual(pledgeAmount),
		AvailableSavings: available,
		LockedSavings:    exposure.LockedSavings,
		TotalSavings:     exposure.TotalSavings,
	}
	if check.CanGuarantee {
		check.Details = fmt.Sprintf("Guarantor has %s available (%s total, %s locked)",
			utils.FormatPula(available), utils.FormatPula(exposure.TotalSavings), utils.FormatPula(exposure.LockedSavings))
	} else {
		check.Details = fmt.Sprintf("Insufficient available savings. Has %s available but needs %s",
			utils.FormatPula(available), utils.FormatPula(pledgeAmount))
	}
	return check
}

// CheckGuarantorCapacity implements portssvc.GuarantorCapacitySvc.
func (s *guarantorService) CheckGuarantorCapacity(ctx context.Context, guarantorID string, pledgeAmount decimal.Decimal) (*domain.CapacityCheck, error) {
	if pledgeAmount.IsNegative() {
		return nil, fmt.Errorf("%w: pledge amount must not be negative", apperrors.ErrValidation)
	}
	exposure, err := s.guarantorRepo.GetGuaranteeExposure(ctx, guarantorID)
	if err != nil {
		s.LogError(ctx, err, "Failed to read guarantee exposure", slog.String("guarantor_id", guarantorID))
		return nil, fmt.Errorf("failed to check guarantor capacity: %w", err)
	}
	check := evaluateCapacity(exposure, pledgeAmount)
	return &check, nil
}

// LockGuarantorSavings implements portssvc.GuarantorCapacitySvc. Capacity is checked before the
// (loan, guarantor) record is looked up; both run in one transaction holding row locks on all
// of the guarantor's records.
func (s *guarantorService) LockGuarantorSavings(ctx context.Context, guarantorID, loanID string, amount decimal.Decimal) (*domain.PledgeOutcome, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", apperrors.ErrValidation)
	}

	tx, err := s.guarantorRepo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.guarantorRepo.Rollback(ctx, tx)

	if err := s.guarantorRepo.LockGuaranteesForUpdate(ctx, tx, guarantorID); err != nil {
		s.LogError(ctx, err, "Failed to lock guarantee records", slog.String("guarantor_id", guarantorID))
		return nil, err
	}

	exposure, err := s.guarantorRepo.GetGuaranteeExposureInTx(ctx, tx, guarantorID)
	if err != nil {
		return nil, err
	}
	check := evaluateCapacity(exposure, amount)
	if !check.CanGuarantee {
		s.Metrics.IncPledge(metrics.ResultRejected)
		s.LogInfo(ctx, "Guarantor capacity insufficient",
			slog.String("guarantor_id", guarantorID),
			slog.String("loan_id", loanID),
			slog.String("requested", amount.String()),
			slog.String("available", check.AvailableSavings.String()))
		return &domain.PledgeOutcome{
			Outcome:  domain.Failed(domain.ReasonInsufficientCapacity, "%s", check.Details),
			Capacity: &check,
		}, nil
	}

	guarantor, err := s.guarantorRepo.FindGuarantorInTx(ctx, tx, loanID, guarantorID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return &domain.PledgeOutcome{Outcome: domain.Failed(domain.ReasonNotFound, msgGuarantorNotFound)}, nil
		}
		return nil, err
	}

	now := s.Now()
	guarantor.PledgeAmount = amount
	guarantor.GuaranteedAmount = amount
	guarantor.Status = domain.GuarantorAccepted
	guarantor.AcceptedAt = &now
	guarantor.LastUpdatedAt = now
	if err := s.guarantorRepo.UpdateGuarantorInTx(ctx, tx, *guarantor); err != nil {
		s.LogError(ctx, err, "Failed to accept guarantee", slog.String("guarantor_record_id", guarantor.GuarantorRecordID))
		return nil, err
	}
	if err := s.guarantorRepo.Commit(ctx, tx); err != nil {
		return nil, err
	}

	s.Metrics.IncPledge(metrics.ResultSuccess)
	return &domain.PledgeOutcome{
		Outcome:  domain.Succeeded("Successfully locked %s from guarantor's savings", utils.FormatPula(amount)),
		Capacity: &check,
	}, nil
}

// ReleaseGuarantorSavings implements portssvc.GuarantorCapacitySvc.
func (s *guarantorService) ReleaseGuarantorSavings(ctx context.Context, guarantorID, loanID string) (*domain.ReleaseOutcome, error) {
	guarantor, err := s.guarantorRepo.FindGuarantor(ctx, loanID, guarantorID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return &domain.ReleaseOutcome{Outcome: domain.Failed(domain.ReasonNotFound, msgGuarantorNotFound)}, nil
		}
		return nil, err
	}

	released := guarantor.PledgeAmount
	guarantor.Status = domain.GuarantorReleased
	guarantor.PledgeAmount = decimal.Zero
	guarantor.LastUpdatedAt = s.Now()
	if err := s.guarantorRepo.UpdateGuarantor(ctx, *guarantor); err != nil {
		s.LogError(ctx, err, "Failed to release guarantee", slog.String("guarantor_record_id", guarantor.GuarantorRecordID))
		return nil, err
	}

	return &domain.ReleaseOutcome{
		Outcome:        domain.Succeeded("Released %s from guarantor's savings", utils.FormatPula(released)),
		ReleasedAmount: released,
	}, nil
}

// SendGuarantorNotification implements portssvc.GuarantorNotificationSvc. The attempt is
// recorded before the notifier is called.
func (s *guarantorService) SendGuarantorNotification(ctx context.Context, guarantorID, loanID string) (*domain.Outcome, error) {
	guarantor, err := s.guarantorRepo.FindGuarantor(ctx, loanID, guarantorID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			out := domain.Failed(domain.ReasonNotFound, msgGuarantorNotFound)
			return &out, nil
		}
		return nil, err
	}

	member, err := s.memberRepo.FindMemberByID(ctx, guarantorID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}
	loan, loanErr := s.loanRepo.FindLoanWithRelations(ctx, loanID)
	if loanErr != nil && !errors.Is(loanErr, apperrors.ErrNotFound) {
		return nil, loanErr
	}
	if member == nil || loan == nil {
		out := domain.Failed(domain.ReasonNotFound, msgMemberOrLoanNotFound)
		return &out, nil
	}

	now := s.Now()
	deadline := now.Add(s.responseWindow)
	method := domain.NotificationMethodSMS
	guarantor.NotificationSentAt = &now
	guarantor.ResponseDeadline = &deadline
	guarantor.NotificationAttempts++
	guarantor.NotificationMethod = &method
	guarantor.LastUpdatedAt = now
	if err := s.guarantorRepo.UpdateGuarantor(ctx, *guarantor); err != nil {
		s.LogError(ctx, err, "Failed to record guarantor notification", slog.String("guarantor_record_id", guarantor.GuarantorRecordID))
		return nil, err
	}

	notification := domain.GuarantorNotification{
		GuarantorRecordID: guarantor.GuarantorRecordID,
		LoanID:            loan.LoanID,
		LoanNumber:        loan.LoanNumber,
		LoanAmount:        loan.PrincipalAmount,
		GuarantorMemberID: member.MemberID,
		FullName:          member.FullName,
		Phone:             member.Phone,
		PledgeAmount:      guarantor.GuaranteedAmount,
		ResponseDeadline:  deadline,
		Method:            method,
	}
	if loan.Member != nil {
		notification.ApplicantName = loan.Member.FullName
	}
	if err := s.notifier.NotifyGuarantor(ctx, notification); err != nil {
		s.Metrics.IncNotification(metrics.ResultError)
		s.LogError(ctx, err, "Failed to deliver guarantor notification",
			slog.String("guarantor_id", guarantorID),
			slog.String("loan_id", loanID))
		return nil, fmt.Errorf("failed to notify guarantor %s: %w", guarantorID, err)
	}

	s.Metrics.IncNotification(metrics.ResultSuccess)
	out := domain.Succeeded("Notification sent to %s (%s)", member.FullName, member.Phone)
	return &out, nil
}

// RequestGuarantorPledges implements portssvc.GuarantorNotificationSvc. A failed send does
// not stop the remaining guarantors from being notified.
func (s *guarantorService) RequestGuarantorPledges(ctx context.Context, loanID string) (*domain.PledgeRequestOutcome, error) {
	pending, err := s.guarantorRepo.ListPendingGuarantorsByLoan(ctx, loanID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list pending guarantors", slog.String("loan_id", loanID))
		return nil, err
	}
	if len(pending) == 0 {
		return &domain.PledgeRequestOutcome{Outcome: domain.Failed(domain.ReasonNothingPending, msgNoPendingGuarantors)}, nil
	}

	sent := 0
	var errs error
	for _, g := range pending {
		out, err := s.SendGuarantorNotification(ctx, g.GuarantorMemberID, loanID)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("guarantor %s: %w", g.GuarantorMemberID, err))
			continue
		}
		if out.Success {
			sent++
		}
	}
	if errs != nil {
		s.LogError(ctx, errs, "Some guarantor notifications failed",
			slog.String("loan_id", loanID),
			slog.Int("failures", len(multierr.Errors(errs))))
	}

	return &domain.PledgeRequestOutcome{
		Outcome:           domain.Succeeded("Sent notifications to %d out of %d guarantors", sent, len(pending)),
		GuarantorsSent:    sent,
		GuarantorsPending: len(pending),
	}, nil
}

// RequestGuarantors implements portssvc.GuarantorWorkflowSvc.
func (s *guarantorService) RequestGuarantors(ctx context.Context, loanID, actorID string) (*domain.PledgeRequestOutcome, error) {
	tx, err := s.loanRepo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.loanRepo.Rollback(ctx, tx)

	loan, err := s.loanRepo.FindLoanByIDForUpdate(ctx, tx, loanID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return &domain.PledgeRequestOutcome{Outcome: domain.Failed(domain.ReasonNotFound, msgLoanNotFound)}, nil
		}
		return nil, err
	}
	if loan.Status != domain.LoanDraft {
		return &domain.PledgeRequestOutcome{Outcome: domain.Failed(domain.ReasonInvalidState, msgLoanNotDraft)}, nil
	}

	now := s.Now()
	updated, err := s.loanRepo.UpdateLoanStatusInTx(ctx, tx, domain.LoanStatusChange{
		LoanID:         loanID,
		ExpectedStatus: domain.LoanDraft,
		Status:         domain.LoanPendingGuarantors,
		WorkflowStage:  domain.StageGuarantorStaking,
		UpdatedBy:      actorID,
		UpdatedAt:      now,
	})
	if err != nil {
		return nil, err
	}
	if !updated {
		return &domain.PledgeRequestOutcome{Outcome: domain.Failed(domain.ReasonInvalidState, msgLoanNotDraft)}, nil
	}

	from, to := domain.LoanDraft, domain.LoanPendingGuarantors
	if err := s.loanRepo.AppendWorkflowLogInTx(ctx, tx, domain.LoanWorkflowLog{
		LogID:      uuid.NewString(),
		LoanID:     loanID,
		ActionType: domain.ActionStatusChange,
		ActionBy:   actorID,
		FromStatus: &from,
		ToStatus:   &to,
		Notes:      "Guarantor requests sent",
		CreatedAt:  now,
	}); err != nil {
		return nil, err
	}
	if err := s.loanRepo.Commit(ctx, tx); err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Loan moved to guarantor staking", slog.String("loan_id", loanID))
	return s.RequestGuarantorPledges(ctx, loanID)
}

// RespondToGuarantorRequest implements portssvc.GuarantorWorkflowSvc.
func (s *guarantorService) RespondToGuarantorRequest(ctx context.Context, guarantorID, loanID string, accept bool, reason *string) (*domain.PledgeOutcome, error) {
	guarantor, err := s.guarantorRepo.FindGuarantor(ctx, loanID, guarantorID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return &domain.PledgeOutcome{Outcome: domain.Failed(domain.ReasonNotFound, msgGuarantorNotFound)}, nil
		}
		return nil, err
	}
	if guarantor.Status != domain.GuarantorPending {
		return &domain.PledgeOutcome{Outcome: domain.Failed(domain.ReasonInvalidState, msgGuarantorAlreadyAnswered)}, nil
	}

	if accept {
		return s.LockGuarantorSavings(ctx, guarantorID, loanID, guarantor.GuaranteedAmount)
	}

	now := s.Now()
	guarantor.Status = domain.GuarantorRejected
	guarantor.RejectedAt = &now
	guarantor.RejectionReason = reason
	guarantor.LastUpdatedAt = now
	if err := s.guarantorRepo.UpdateGuarantor(ctx, *guarantor); err != nil {
		return nil, err
	}
	return &domain.PledgeOutcome{Outcome: domain.Succeeded("Guarantor request rejected")}, nil
}

// ListGuarantorRequests implements portssvc.GuarantorWorkflowSvc.
func (s *guarantorService) ListGuarantorRequests(ctx context.Context, guarantorID string) ([]domain.LoanGuarantor, error) {
	requests, err := s.guarantorRepo.ListGuarantorsByMember(ctx, guarantorID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list guarantor requests", slog.String("guarantor_id", guarantorID))
		return nil, err
	}
	if requests == nil {
		requests = []domain.LoanGuarantor{}
	}
	return requests, nil
}
