package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LoanStatus is the fine-grained state of a loan application or facility.
type LoanStatus string

const (
	LoanDraft             LoanStatus = "draft"
	LoanPendingGuarantors LoanStatus = "pending_guarantors"
	LoanUnderAppraisal    LoanStatus = "under_appraisal"
	LoanAwaitingCommittee LoanStatus = "awaiting_committee"
	LoanCommitteeApproved LoanStatus = "committee_approved"
	LoanPending           LoanStatus = "pending"
	LoanApproved          LoanStatus = "approved"
	LoanDisbursed         LoanStatus = "disbursed"
	LoanActive            LoanStatus = "active"
	LoanPaidOff           LoanStatus = "paid_off"
	LoanDefaulted         LoanStatus = "defaulted"
	LoanWrittenOff        LoanStatus = "written_off"
	LoanRejected          LoanStatus = "rejected"
)

// ObligationStatuses are the loan statuses under which an accepted guarantee still
// locks the guarantor's savings.
var ObligationStatuses = []LoanStatus{LoanActive, LoanDisbursed, LoanApproved, LoanCommitteeApproved}

// WorkflowStage is the coarse-grained phase of a loan's lifecycle.
type WorkflowStage string

const (
	StageEligibilityCheck   WorkflowStage = "eligibility_check"
	StageGuarantorStaking   WorkflowStage = "guarantor_staking"
	StageTechnicalAppraisal WorkflowStage = "technical_appraisal"
	StageCommitteeApproval  WorkflowStage = "committee_approval"
	StageDisbursement       WorkflowStage = "disbursement"
	StageCompleted          WorkflowStage = "completed"
)

// Member is the subset of a SACCO member record read by the loan workflow.
type Member struct {
	MemberID     string `json:"memberID"`
	TenantID     string `json:"tenantID"`
	MemberNumber string `json:"memberNumber"`
	FullName     string `json:"fullName"`
	Phone        string `json:"phone"`
}

// LoanProduct is the subset of a loan product read by the loan workflow.
type LoanProduct struct {
	ProductID string `json:"productID"`
	Name      string `json:"name"`
}

// Loan is the loan aggregate as seen by the guarantor and committee engines.
type Loan struct {
	LoanID                string          `json:"loanID"`
	TenantID              string          `json:"tenantID"`
	LoanNumber            string          `json:"loanNumber"`
	MemberID              string          `json:"memberID"`
	ProductID             string          `json:"productID"`
	PrincipalAmount       decimal.Decimal `json:"principalAmount"`
	InterestRate          decimal.Decimal `json:"interestRate"`
	TermMonths            int             `json:"termMonths"`
	Status                LoanStatus      `json:"status"`
	WorkflowStage         WorkflowStage   `json:"workflowStage"`
	CommitteeApprovalDate *time.Time      `json:"committeeApprovalDate,omitempty"`
	CommitteeQuorum       *int            `json:"committeeQuorum,omitempty"` // Quorum the committee decision was taken with
	RejectionReason       *string         `json:"rejectionReason,omitempty"`
	Member                *Member         `json:"member,omitempty"`
	Product               *LoanProduct    `json:"product,omitempty"`
	AuditFields
}

// LoanStatusChange is a status transition guarded by the status the loan is expected to
// be in when the update lands.
type LoanStatusChange struct {
	LoanID                string
	ExpectedStatus        LoanStatus
	Status                LoanStatus
	WorkflowStage         WorkflowStage
	CommitteeApprovalDate *time.Time
	CommitteeQuorum       *int
	RejectionReason       *string
	UpdatedBy             string
	UpdatedAt             time.Time
}
