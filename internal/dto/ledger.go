package dto

import (
	"time"

	"github.com/ikymasie/KIKA-MONOREPO-sub003/internal/core/domain"
	"github.com/shopspring/decimal"
)

// JournalEntryRequest is one leg of a posting request.
type JournalEntryRequest struct {
	AccountID   string           `json:"accountId" binding:"required"`
	EntryType   domain.EntryType `json:"entryType" binding:"required,entry_type"`
	Amount      decimal.Decimal  `json:"amount"`
	Description *string          `json:"description"` // Defaults to the transaction description
}

// PostTransactionRequest defines the data needed to post a balanced transaction.
type PostTransactionRequest struct {
	TransactionType domain.TransactionType `json:"transactionType" binding:"required"`
	Amount          decimal.Decimal        `json:"amount"`
	Description     string                 `json:"description" binding:"required"`
	Entries         []JournalEntryRequest  `json:"entries" binding:"required,min=1,dive"`
	MemberID        *string                `json:"memberId"`
	ReferenceID     *string                `json:"referenceId"`
	ReferenceType   *string                `json:"referenceType"`
}

// BusinessEventRequest posts the standard double entry for a business event.
type BusinessEventRequest struct {
	EventType     domain.TransactionType `json:"eventType" binding:"required"`
	Amount        decimal.Decimal        `json:"amount"`
	Description   string                 `json:"description" binding:"required"`
	MemberID      *string                `json:"memberId"`
	ReferenceID   *string                `json:"referenceId"`
	ReferenceType *string                `json:"referenceType"`
}

// JournalEntryResponse defines the data returned for a journal entry.
type JournalEntryResponse struct {
	EntryID     string           `json:"entryId"`
	AccountID   string           `json:"accountId"`
	EntryType   domain.EntryType `json:"entryType"`
	Amount      decimal.Decimal  `json:"amount"`
	Description string           `json:"description"`
}

// TransactionResponse defines the data returned for a posted transaction.
type TransactionResponse struct {
	TransactionID     string                   `json:"transactionId"`
	TransactionNumber string                   `json:"transactionNumber"`
	TransactionType   domain.TransactionType   `json:"transactionType"`
	Amount            decimal.Decimal          `json:"amount"`
	TransactionDate   time.Time                `json:"transactionDate"`
	Description       string                   `json:"description"`
	Status            domain.TransactionStatus `json:"status"`
	MemberID          *string                  `json:"memberId,omitempty"`
	ReferenceID       *string                  `json:"referenceId,omitempty"`
	ReferenceType     *string                  `json:"referenceType,omitempty"`
	Entries           []JournalEntryResponse   `json:"entries"`
	CreatedBy         string                   `json:"createdBy"`
}

// ToTransactionResponse converts a domain.Transaction to TransactionResponse DTO.
func ToTransactionResponse(txn *domain.Transaction) TransactionResponse {
	entries := make([]JournalEntryResponse, len(txn.Entries))
	for i, e := range txn.Entries {
		entries[i] = JournalEntryResponse{
			EntryID:     e.EntryID,
			AccountID:   e.AccountID,
			EntryType:   e.EntryType,
			Amount:      e.Amount,
			Description: e.Description,
		}
	}
	return TransactionResponse{
		TransactionID:     txn.TransactionID,
		TransactionNumber: txn.TransactionNumber,
		TransactionType:   txn.TransactionType,
		Amount:            txn.Amount,
		TransactionDate:   txn.TransactionDate,
		Description:       txn.Description,
		Status:            txn.Status,
		MemberID:          txn.MemberID,
		ReferenceID:       txn.ReferenceID,
		ReferenceType:     txn.ReferenceType,
		Entries:           entries,
		CreatedBy:         txn.CreatedBy,
	}
}

// ListGeneralLedgerParams defines the parameters for listing general ledger lines.
type ListGeneralLedgerParams struct {
	AccountID *string
	StartDate *time.Time
	EndDate   *time.Time
	Limit     int
	NextToken *string
}

// ListGeneralLedgerResponse wraps a page of general ledger lines.
type ListGeneralLedgerResponse struct {
	Lines     []domain.LedgerLine `json:"lines"`
	NextToken *string             `json:"nextToken,omitempty"`
}
