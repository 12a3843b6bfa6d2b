package services

import (
	"context"

	"github.com/ikymasie/KIKA-MONOREPO-sub003/internal/core/domain"
)

// CommitteeVotingSvc defines credit committee voting operations
type CommitteeVotingSvc interface {
	// RecordVote stores or replaces a committee member's vote on a loan awaiting committee.
	RecordVote(ctx context.Context, loanID, userID string, vote domain.VoteChoice, notes *string) (*domain.Outcome, error)

	// ListVotes returns the loan's current votes and their tally against the configured quorum.
	ListVotes(ctx context.Context, loanID string) ([]domain.CommitteeVote, domain.VoteResult, error)

	// FinalizeCommitteeDecision moves the loan to committee_approved or rejected once quorum is met.
	FinalizeCommitteeDecision(ctx context.Context, loanID string, requiredQuorum int, actorID string) (*domain.FinalizeOutcome, error)
}

// CommitteeMinutesSvc defines the documentary output of a committee decision
type CommitteeMinutesSvc interface {
	// GenerateMinutes builds the minutes of the committee's deliberation on a loan.
	GenerateMinutes(ctx context.Context, loanID string) (*domain.MinutesOutcome, error)
}

// CommitteeSvcFacade combines all committee service interfaces
type CommitteeSvcFacade interface {
	CommitteeVotingSvc
	CommitteeMinutesSvc
}
