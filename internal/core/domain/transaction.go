package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType enumerates the business events that produce ledger postings.
type TransactionType string

const (
	TxnDeposit             TransactionType = "deposit"
	TxnWithdrawal          TransactionType = "withdrawal"
	TxnLoanDisbursement    TransactionType = "loan_disbursement"
	TxnLoanRepayment       TransactionType = "loan_repayment"
	TxnInsurancePremium    TransactionType = "insurance_premium"
	TxnInsuranceClaim      TransactionType = "insurance_claim"
	TxnMerchandisePurchase TransactionType = "merchandise_purchase"
	TxnMerchandisePayment  TransactionType = "merchandise_payment"
	TxnDeduction           TransactionType = "deduction"
	TxnFee                 TransactionType = "fee"
	TxnInterest            TransactionType = "interest"
	TxnDividend            TransactionType = "dividend"
	TxnTransfer            TransactionType = "transfer"
	TxnAdjustment          TransactionType = "adjustment"
)

var transactionTypes = map[TransactionType]struct{}{
	TxnDeposit: {}, TxnWithdrawal: {}, TxnLoanDisbursement: {}, TxnLoanRepayment: {},
	TxnInsurancePremium: {}, TxnInsuranceClaim: {}, TxnMerchandisePurchase: {},
	TxnMerchandisePayment: {}, TxnDeduction: {}, TxnFee: {}, TxnInterest: {},
	TxnDividend: {}, TxnTransfer: {}, TxnAdjustment: {},
}

// IsValid reports whether t is a known transaction type.
func (t TransactionType) IsValid() bool {
	_, ok := transactionTypes[t]
	return ok
}

// TransactionStatus indicates the lifecycle state of a transaction.
type TransactionStatus string

const (
	TxnPending   TransactionStatus = "pending"
	TxnCompleted TransactionStatus = "completed"
	TxnReversed  TransactionStatus = "reversed"
	TxnFailed    TransactionStatus = "failed"
)

// Transaction is the immutable header of one economic event. Its legs are JournalEntries.
type Transaction struct {
	TransactionID     string            `json:"transactionID"`
	TenantID          string            `json:"tenantID"`
	TransactionNumber string            `json:"transactionNumber"`
	TransactionType   TransactionType   `json:"transactionType"`
	Amount            decimal.Decimal   `json:"amount"`
	TransactionDate   time.Time         `json:"transactionDate"`
	Description       string            `json:"description"`
	MemberID          *string           `json:"memberID,omitempty"`
	ReferenceID       *string           `json:"referenceID,omitempty"`
	ReferenceType     *string           `json:"referenceType,omitempty"`
	Status            TransactionStatus `json:"status"`
	Entries           []JournalEntry    `json:"entries,omitempty"`
	AuditFields
}

const transactionPrefixLen = 8

// FormatTransactionNumber renders TXN-<first 8 chars of tenant>-<sequence padded to 6>.
func FormatTransactionNumber(tenantID string, sequence int64) string {
	prefix := tenantID
	if len(prefix) > transactionPrefixLen {
		prefix = prefix[:transactionPrefixLen]
	}
	return fmt.Sprintf("TXN-%s-%06d", prefix, sequence)
}
