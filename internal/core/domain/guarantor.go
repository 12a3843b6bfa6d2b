package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// GuarantorStatus is the state of one member's pledge toward one loan.
type GuarantorStatus string

const (
	GuarantorPending  GuarantorStatus = "pending"
	GuarantorAccepted GuarantorStatus = "accepted"
	GuarantorRejected GuarantorStatus = "rejected"
	GuarantorReleased GuarantorStatus = "released"
)

// LoanGuarantor is a single (loan, guarantor) pledge record.
type LoanGuarantor struct {
	GuarantorRecordID    string          `json:"id"`
	LoanID               string          `json:"loanID"`
	GuarantorMemberID    string          `json:"guarantorMemberID"`
	Status               GuarantorStatus `json:"status"`
	PledgeAmount         decimal.Decimal `json:"pledgeAmount"`     // Zero unless accepted
	GuaranteedAmount     decimal.Decimal `json:"guaranteedAmount"` // Counted toward locked savings
	NotificationSentAt   *time.Time      `json:"notificationSentAt,omitempty"`
	ResponseDeadline     *time.Time      `json:"responseDeadline,omitempty"`
	NotificationAttempts int             `json:"notificationAttempts"`
	NotificationMethod   *string         `json:"notificationMethod,omitempty"`
	AcceptedAt           *time.Time      `json:"acceptedAt,omitempty"`
	RejectedAt           *time.Time      `json:"rejectedAt,omitempty"`
	RejectionReason      *string         `json:"rejectionReason,omitempty"`
	Loan                 *Loan           `json:"loan,omitempty"`
	AuditFields
}

// CapacityCheck is the outcome of evaluating whether a guarantor can pledge an amount.
type CapacityCheck struct {
	CanGuarantee     bool            `json:"canGuarantee"`
	AvailableSavings decimal.Decimal `json:"availableSavings"`
	LockedSavings    decimal.Decimal `json:"lockedSavings"`
	TotalSavings     decimal.Decimal `json:"totalSavings"`
	Details          string          `json:"details"`
}

// GuaranteeExposure is a guarantor's savings position before a new pledge is evaluated.
type GuaranteeExposure struct {
	TotalSavings  decimal.Decimal
	LockedSavings decimal.Decimal
}

// NotificationMethodSMS is the channel recorded on guarantor requests.
const NotificationMethodSMS = "sms"

// GuarantorNotification is handed to the notifier when a member is asked to guarantee a loan.
type GuarantorNotification struct {
	GuarantorRecordID string
	LoanID            string
	LoanNumber        string
	LoanAmount        decimal.Decimal
	ApplicantName     string
	GuarantorMemberID string
	FullName          string
	Phone             string
	PledgeAmount      decimal.Decimal
	ResponseDeadline  time.Time
	Method            string
}
