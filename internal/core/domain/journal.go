package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryType indicates whether a journal line is a Debit or a Credit.
type EntryType string

const (
	Debit  EntryType = "DEBIT"
	Credit EntryType = "CREDIT"
)

// IsValid reports whether e is DEBIT or CREDIT.
func (e EntryType) IsValid() bool {
	return e == Debit || e == Credit
}

// JournalEntry is one leg of a Transaction against one Account.
type JournalEntry struct {
	EntryID       string          `json:"entryID"`
	TransactionID string          `json:"transactionID"`
	AccountID     string          `json:"accountID"`
	EntryType     EntryType       `json:"entryType"`
	Amount        decimal.Decimal `json:"amount"` // Never negative
	Description   string          `json:"description"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// EntryTotals returns the debit and credit sums of entries.
func EntryTotals(entries []JournalEntry) (debits, credits decimal.Decimal) {
	debits, credits = decimal.Zero, decimal.Zero
	for _, e := range entries {
		switch e.EntryType {
		case Debit:
			debits = debits.Add(e.Amount)
		case Credit:
			credits = credits.Add(e.Amount)
		}
	}
	return debits, credits
}

// LedgerLine is a journal entry joined with its transaction header and account, as listed
// by the general ledger view.
type LedgerLine struct {
	JournalEntry
	TransactionNumber string          `json:"transactionNumber"`
	TransactionType   TransactionType `json:"transactionType"`
	TransactionDate   time.Time       `json:"transactionDate"`
	AccountCode       string          `json:"accountCode"`
	AccountName       string          `json:"accountName"`
	MemberID          *string         `json:"memberID,omitempty"`
}

// LedgerFilter narrows a general ledger listing. Nil fields are not applied.
type LedgerFilter struct {
	AccountID *string
	StartDate *time.Time
	EndDate   *time.Time
}
