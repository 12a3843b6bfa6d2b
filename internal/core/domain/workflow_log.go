package domain

import "time"

// WorkflowActionType classifies a loan workflow audit entry.
type WorkflowActionType string

const (
	ActionCommitteeVote WorkflowActionType = "COMMITTEE_VOTE"
	ActionStatusChange  WorkflowActionType = "STATUS_CHANGE"
)

// LoanWorkflowLog is an append-only audit entry for a vote or status transition.
type LoanWorkflowLog struct {
	LogID      string             `json:"logID"`
	LoanID     string             `json:"loanID"`
	ActionType WorkflowActionType `json:"actionType"`
	ActionBy   string             `json:"actionBy,omitempty"`
	FromStatus *LoanStatus        `json:"fromStatus,omitempty"`
	ToStatus   *LoanStatus        `json:"toStatus,omitempty"`
	Notes      string             `json:"notes"`
	Metadata   map[string]any     `json:"metadata,omitempty"`
	CreatedAt  time.Time          `json:"createdAt"`
}
