package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// FailureReason classifies an expected business failure so callers can react to it
// without parsing the message.
type FailureReason string

const (
	ReasonNotFound             FailureReason = "not_found"
	ReasonInvalidState         FailureReason = "invalid_state"
	ReasonInsufficientCapacity FailureReason = "insufficient_capacity"
	ReasonQuorumNotMet         FailureReason = "quorum_not_met"
	ReasonNothingPending       FailureReason = "nothing_pending"
)

// Outcome is the result of a workflow operation whose failure is part of normal business
// flow. Infrastructure failures are reported as errors, never as an Outcome.
type Outcome struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Reason  FailureReason `json:"reason,omitempty"`
}

// Succeeded builds a successful Outcome.
func Succeeded(format string, args ...any) Outcome {
	return Outcome{Success: true, Message: fmt.Sprintf(format, args...)}
}

// Failed builds a failed Outcome.
func Failed(reason FailureReason, format string, args ...any) Outcome {
	return Outcome{Success: false, Message: fmt.Sprintf(format, args...), Reason: reason}
}

// PledgeOutcome is returned by guarantor lock attempts and carries the capacity figures
// the decision was based on.
type PledgeOutcome struct {
	Outcome
	Capacity *CapacityCheck `json:"capacity,omitempty"`
}

// ReleaseOutcome is returned when a guarantor pledge is released.
type ReleaseOutcome struct {
	Outcome
	ReleasedAmount decimal.Decimal `json:"releasedAmount"`
}

// PledgeRequestOutcome reports the fan-out of guarantor notifications for a loan.
type PledgeRequestOutcome struct {
	Outcome
	GuarantorsSent    int `json:"guarantorsSent"`
	GuarantorsPending int `json:"guarantorsPending"`
}

// FinalizeOutcome is returned by a committee finalisation attempt.
type FinalizeOutcome struct {
	Outcome
	Result VoteResult `json:"result"`
	Loan   *Loan      `json:"loan,omitempty"`
}

// MinutesOutcome carries generated committee minutes.
type MinutesOutcome struct {
	Outcome
	Minutes *CommitteeMinutes `json:"minutes"`
}
