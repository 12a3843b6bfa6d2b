package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/ikymasie/KIKA-MONOREPO-sub003/internal/apperrors"
	"github.com/ikymasie/KIKA-MONOREPO-sub003/internal/core/domain"
	portsrepo "github.com/ikymasie/KIKA-MONOREPO-sub003/internal/core/ports/repositories"
	portssvc "github.com/ikymasie/KIKA-MONOREPO-sub003/internal/core/ports/services"
)

// committeeService implements credit committee voting on loans awaiting committee.
type committeeService struct {
	BaseService
	loanRepo      portsrepo.LoanRepositoryWithTx
	committeeRepo portsrepo.CommitteeVoteRepository
	quorum        int
}

// NewCommitteeService creates a committee service. A non-positive quorum uses
// domain.DefaultCommitteeQuorum.
func NewCommitteeService(
	loanRepo portsrepo.LoanRepositoryWithTx,
	committeeRepo portsrepo.CommitteeVoteRepository,
	quorum int,
	options ...Option,
) portssvc.CommitteeSvcFacade {
	if quorum <= 0 {
		quorum = domain.DefaultCommitteeQuorum
	}
	svc := &committeeService{
		loanRepo:      loanRepo,
		committeeRepo: committeeRepo,
		quorum:        quorum,
	}
	for _, option := range options {
		option(&svc.BaseService)
	}
	return svc
}

// Ensure committeeService implements the portssvc.CommitteeSvcFacade interface
var _ portssvc.CommitteeSvcFacade = (*committeeService)(nil)

func voteLogNotes(vote domain.VoteChoice, notes *string) string {
	if notes != nil && *notes != "" {
		return fmt.Sprintf("Voted: %s - %s", vote, *notes)
	}
	return fmt.Sprintf("Voted: %s", vote)
}

// RecordVote implements portssvc.CommitteeVotingSvc. The status check, the vote upsert and
// the audit entry share one transaction with the loan row locked.
func (s *committeeService) RecordVote(ctx context.Context, loanID, userID string, vote domain.VoteChoice, notes *string) (*domain.Outcome, error) {
	if !vote.IsValid() {
		return nil, fmt.Errorf("%w: vote must be approve or reject", apperrors.ErrValidation)
	}
	if userID == "" {
		return nil, fmt.Errorf("%w: voter is required", apperrors.ErrValidation)
	}

	tx, err := s.loanRepo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.loanRepo.Rollback(ctx, tx)

	loan, err := s.loanRepo.FindLoanByIDForUpdate(ctx, tx, loanID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			out := domain.Failed(domain.ReasonNotFound, msgLoanNotFound)
			return &out, nil
		}
		return nil, err
	}
	if loan.Status != domain.LoanAwaitingCommittee {
		out := domain.Failed(domain.ReasonInvalidState, "Cannot vote on loan with status: %s", loan.Status)
		return &out, nil
	}

	now := s.Now()
	if err := s.committeeRepo.UpsertVoteInTx(ctx, tx, domain.CommitteeVote{
		LoanID:    loanID,
		UserID:    userID,
		Vote:      vote,
		Notes:     notes,
		Timestamp: now,
	}); err != nil {
		s.LogError(ctx, err, "Failed to record committee vote", slog.String("loan_id", loanID))
		return nil, err
	}

	var noteValue any
	if notes != nil {
		noteValue = *notes
	}
	if err := s.loanRepo.AppendWorkflowLogInTx(ctx, tx, domain.LoanWorkflowLog{
		LogID:      uuid.NewString(),
		LoanID:     loanID,
		ActionType: domain.ActionCommitteeVote,
		ActionBy:   userID,
		Notes:      voteLogNotes(vote, notes),
		Metadata:   map[string]any{"vote": vote, "notes": noteValue},
		CreatedAt:  now,
	}); err != nil {
		return nil, err
	}
	if err := s.loanRepo.Commit(ctx, tx); err != nil {
		return nil, err
	}

	s.Metrics.IncVote(string(vote))
	s.LogInfo(ctx, "Committee vote recorded",
		slog.String("loan_id", loanID),
		slog.String("voter", userID),
		slog.String("vote", string(vote)))
	out := domain.Succeeded("Vote recorded: %s", vote)
	return &out, nil
}

// ListVotes implements portssvc.CommitteeVotingSvc.
func (s *committeeService) ListVotes(ctx context.Context, loanID string) ([]domain.CommitteeVote, domain.VoteResult, error) {
	if _, err := s.loanRepo.FindLoanByID(ctx, loanID); err != nil {
		return nil, domain.VoteResult{}, err
	}
	votes, err := s.committeeRepo.ListVotesByLoan(ctx, loanID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list committee votes", slog.String("loan_id", loanID))
		return nil, domain.VoteResult{}, err
	}
	if votes == nil {
		votes = []domain.CommitteeVote{}
	}
	return votes, domain.CalculateVoteResult(votes, s.quorum), nil
}

// FinalizeCommitteeDecision implements portssvc.CommitteeVotingSvc. The status transition is
// conditional on the loan still awaiting committee, so of two concurrent finalisations
// only one takes effect.
func (s *committeeService) FinalizeCommitteeDecision(ctx context.Context, loanID string, requiredQuorum int, actorID string) (*domain.FinalizeOutcome, error) {
	if requiredQuorum <= 0 {
		requiredQuorum = s.quorum
	}

	tx, err := s.loanRepo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.loanRepo.Rollback(ctx, tx)

	loan, err := s.loanRepo.FindLoanByIDForUpdate(ctx, tx, loanID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return &domain.FinalizeOutcome{Outcome: domain.Failed(domain.ReasonNotFound, msgLoanNotFound)}, nil
		}
		return nil, err
	}

	votes, err := s.committeeRepo.ListVotesByLoanInTx(ctx, tx, loanID)
	if err != nil {
		return nil, err
	}
	result := domain.CalculateVoteResult(votes, requiredQuorum)

	if !result.QuorumMet {
		s.Metrics.IncDecision(string(domain.ReasonQuorumNotMet))
		return &domain.FinalizeOutcome{
			Outcome: domain.Failed(domain.ReasonQuorumNotMet, "Quorum not met. Need %d votes, have %d", result.RequiredQuorum, result.TotalVotes),
			Result:  result,
		}, nil
	}

	notMoved := func(status domain.LoanStatus) *domain.FinalizeOutcome {
		return &domain.FinalizeOutcome{
			Outcome: domain.Failed(domain.ReasonInvalidState, "Loan is no longer awaiting committee decision (status: %s)", status),
			Result:  result,
		}
	}
	if loan.Status != domain.LoanAwaitingCommittee {
		return notMoved(loan.Status), nil
	}

	now := s.Now()
	change := domain.LoanStatusChange{
		LoanID:          loanID,
		ExpectedStatus:  domain.LoanAwaitingCommittee,
		CommitteeQuorum: &result.RequiredQuorum,
		UpdatedBy:       actorID,
		UpdatedAt:       now,
	}
	var logNotes, message, decision string
	if result.Approved {
		change.Status = domain.LoanCommitteeApproved
		change.WorkflowStage = domain.StageDisbursement
		change.CommitteeApprovalDate = &now
		logNotes = fmt.Sprintf("Committee approved (%d/%d votes)", result.ApproveVotes, result.TotalVotes)
		message = "Loan approved by committee"
		decision = "approved"
	} else {
		reason := fmt.Sprintf("Rejected by credit committee (%d reject votes vs %d approve votes)", result.RejectVotes, result.ApproveVotes)
		change.Status = domain.LoanRejected
		change.RejectionReason = &reason
		logNotes = fmt.Sprintf("Committee rejected (%d/%d votes)", result.RejectVotes, result.TotalVotes)
		message = "Loan rejected by committee"
		decision = "rejected"
	}

	updated, err := s.loanRepo.UpdateLoanStatusInTx(ctx, tx, change)
	if err != nil {
		s.LogError(ctx, err, "Failed to apply committee decision", slog.String("loan_id", loanID))
		return nil, err
	}
	if !updated {
		current, err := s.loanRepo.FindLoanByIDForUpdate(ctx, tx, loanID)
		if err != nil {
			return nil, err
		}
		return notMoved(current.Status), nil
	}

	from, to := domain.LoanAwaitingCommittee, change.Status
	if err := s.loanRepo.AppendWorkflowLogInTx(ctx, tx, domain.LoanWorkflowLog{
		LogID:      uuid.NewString(),
		LoanID:     loanID,
		ActionType: domain.ActionStatusChange,
		ActionBy:   actorID,
		FromStatus: &from,
		ToStatus:   &to,
		Notes:      logNotes,
		Metadata:   map[string]any{"voteResult": result, "requiredQuorum": result.RequiredQuorum},
		CreatedAt:  now,
	}); err != nil {
		return nil, err
	}
	if err := s.loanRepo.Commit(ctx, tx); err != nil {
		return nil, err
	}

	loan.Status = change.Status
	if change.WorkflowStage != "" {
		loan.WorkflowStage = change.WorkflowStage
	}
	if change.CommitteeApprovalDate != nil {
		loan.CommitteeApprovalDate = change.CommitteeApprovalDate
	}
	if change.RejectionReason != nil {
		loan.RejectionReason = change.RejectionReason
	}
	loan.CommitteeQuorum = change.CommitteeQuorum
	loan.LastUpdatedAt = now
	loan.LastUpdatedBy = actorID

	s.Metrics.IncDecision(decision)
	s.LogInfo(ctx, "Committee decision applied",
		slog.String("loan_id", loanID),
		slog.String("decision", decision),
		slog.Int("approve_votes", result.ApproveVotes),
		slog.Int("reject_votes", result.RejectVotes))
	return &domain.FinalizeOutcome{
		Outcome: domain.Succeeded("%s", message),
		Result:  result,
		Loan:    loan,
	}, nil
}

// GenerateMinutes implements portssvc.CommitteeMinutesSvc.
func (s *committeeService) GenerateMinutes(ctx context.Context, loanID string) (*domain.MinutesOutcome, error) {
	loan, err := s.loanRepo.FindLoanWithRelations(ctx, loanID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return &domain.MinutesOutcome{Outcome: domain.Failed(domain.ReasonNotFound, msgLoanNotFound)}, nil
		}
		return nil, err
	}

	votes, err := s.committeeRepo.ListVotesByLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	quorum := s.quorum
	if loan.CommitteeQuorum != nil && *loan.CommitteeQuorum > 0 {
		quorum = *loan.CommitteeQuorum
	}
	result := domain.CalculateVoteResult(votes, quorum)

	now := s.Now()
	meetingDate := now
	if loan.CommitteeApprovalDate != nil {
		meetingDate = *loan.CommitteeApprovalDate
	}
	decision := minutesDecision(loan.Status, result)

	minutesVotes := make([]domain.MinutesVote, len(votes))
	for i, v := range votes {
		minutesVotes[i] = domain.MinutesVote{
			VoterID:   v.UserID,
			Vote:      v.Vote,
			Notes:     v.Notes,
			Timestamp: v.Timestamp,
		}
	}

	minutes := &domain.CommitteeMinutes{
		LoanNumber: loan.LoanNumber,
		LoanDetails: domain.MinutesLoanDetails{
			PrincipalAmount: loan.PrincipalAmount.InexactFloat64(),
			TermMonths:      loan.TermMonths,
			InterestRate:    loan.InterestRate.InexactFloat64(),
		},
		CommitteeVoting: domain.MinutesVoting{
			MeetingDate:  meetingDate,
			TotalVotes:   result.TotalVotes,
			ApproveVotes: result.ApproveVotes,
			RejectVotes:  result.RejectVotes,
			QuorumMet:    result.QuorumMet,
			Decision:     decision,
			Votes:        minutesVotes,
		},
		GeneratedAt: now,
	}
	if loan.Member != nil {
		minutes.Member = domain.MinutesMember{Name: loan.Member.FullName, MemberNumber: loan.Member.MemberNumber}
	}
	if loan.Product != nil {
		minutes.LoanDetails.Product = loan.Product.Name
	}

	return &domain.MinutesOutcome{Outcome: domain.Succeeded("Minutes generated"), Minutes: minutes}, nil
}

// minutesDecision reports a recorded committee decision as is. Loans still awaiting
// committee are reported by the current tally.
func minutesDecision(status domain.LoanStatus, result domain.VoteResult) string {
	switch status {
	case domain.LoanCommitteeApproved:
		return domain.DecisionApproved
	case domain.LoanRejected:
		return domain.DecisionRejected
	}
	if result.Approved {
		return domain.DecisionApproved
	}
	return domain.DecisionRejected
}
