package dto

import (
	"github.com/ikymasie/KIKA-MONOREPO-sub003/internal/core/domain"
	"github.com/shopspring/decimal"
)

// Guarantor response actions.
const (
	GuarantorActionAccept = "accept"
	GuarantorActionReject = "reject"
)

// LockSavingsRequest defines the amount of a guarantor's savings to lock for a loan.
type LockSavingsRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// GuarantorResponseRequest is a guarantor's answer to a pledge request.
type GuarantorResponseRequest struct {
	Action string  `json:"action" binding:"required,oneof=accept reject"`
	Reason *string `json:"reason"`
}

// GuarantorRequestsResponse lists a member's guarantee records.
type GuarantorRequestsResponse struct {
	Requests []domain.LoanGuarantor `json:"requests"`
}
