package accounting

import (
	"fmt"

	"github.com/ikymasie/KIKA-MONOREPO-sub003/internal/core/domain"
	"github.com/shopspring/decimal"
)

// BalanceTolerance is the largest debit/credit difference a posting may carry.
var BalanceTolerance = decimal.RequireFromString("0.01")

// CalculateSignedAmount applies the correct sign to an entry amount based on account type and entry type.
// This is used in both services and repositories to ensure consistent accounting logic.
func CalculateSignedAmount(entry domain.JournalEntry, accountType domain.AccountType) (decimal.Decimal, error) {
	signedAmount := entry.Amount
	isDebit := entry.EntryType == domain.Debit

	// DEBIT to ASSET/EXPENSE -> Positive (+)
	// CREDIT to ASSET/EXPENSE -> Negative (-)
	// DEBIT to LIABILITY/EQUITY/REVENUE -> Negative (-)
	// CREDIT to LIABILITY/EQUITY/REVENUE -> Positive (+)
	switch accountType {
	case domain.Asset, domain.Expense:
		if !isDebit {
			signedAmount = signedAmount.Neg()
		}
	case domain.Liability, domain.Equity, domain.Revenue:
		if isDebit {
			signedAmount = signedAmount.Neg()
		}
	default:
		return decimal.Zero, fmt.Errorf("unknown account type '%s' encountered for account ID %s", accountType, entry.AccountID)
	}
	return signedAmount, nil
}

// IsBalanced reports whether debits and credits agree within BalanceTolerance.
func IsBalanced(debits, credits decimal.Decimal) bool {
	return debits.Sub(credits).Abs().LessThanOrEqual(BalanceTolerance)
}

// NetBalanceChanges folds entries into one signed delta per account.
func NetBalanceChanges(entries []domain.JournalEntry, accountTypes map[string]domain.AccountType) (map[string]decimal.Decimal, error) {
	changes := make(map[string]decimal.Decimal, len(accountTypes))
	for _, entry := range entries {
		accountType, ok := accountTypes[entry.AccountID]
		if !ok {
			return nil, fmt.Errorf("account type not found for account ID %s", entry.AccountID)
		}
		signed, err := CalculateSignedAmount(entry, accountType)
		if err != nil {
			return nil, err
		}
		changes[entry.AccountID] = changes[entry.AccountID].Add(signed)
	}
	return changes, nil
}

// ReplayBalance recomputes an account balance from zero using every entry posted against it.
func ReplayBalance(entries []domain.JournalEntry, accountType domain.AccountType) (decimal.Decimal, error) {
	balance := decimal.Zero
	for _, entry := range entries {
		signed, err := CalculateSignedAmount(entry, accountType)
		if err != nil {
			return decimal.Zero, err
		}
		balance = balance.Add(signed)
	}
	return balance, nil
}
