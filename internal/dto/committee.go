package dto

import (
	"github.com/ikymasie/KIKA-MONOREPO-sub003/internal/core/domain"
)

// CommitteeVoteRequest records a committee member's vote and optionally finalises the decision.
type CommitteeVoteRequest struct {
	Vote           domain.VoteChoice `json:"vote" binding:"required,vote_choice"`
	Notes          *string           `json:"notes"`
	Finalize       bool              `json:"finalize"`
	RequiredQuorum int               `json:"requiredQuorum" binding:"omitempty,min=1"`
}

// FinalizeCommitteeRequest closes voting on a loan.
type FinalizeCommitteeRequest struct {
	RequiredQuorum int `json:"requiredQuorum" binding:"omitempty,min=1"`
}

// CommitteeVoteResponse is returned after a vote. Decision and Minutes are set only when
// the vote also finalised the committee decision.
type CommitteeVoteResponse struct {
	domain.Outcome
	Decision *domain.FinalizeOutcome  `json:"decision,omitempty"`
	Minutes  *domain.CommitteeMinutes `json:"minutes,omitempty"`
}

// CommitteeVotesResponse lists a loan's current votes and their tally.
type CommitteeVotesResponse struct {
	Votes  []domain.CommitteeVote `json:"votes"`
	Result domain.VoteResult      `json:"result"`
}
