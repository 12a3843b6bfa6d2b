package accounting_test

import (
	"testing"

	"github.com/ikymasie/KIKA-MONOREPO-sub003/internal/core/domain"
	"github.com/ikymasie/KIKA-MONOREPO-sub003/internal/utils/accounting"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(accountID string, t domain.EntryType, amount string) domain.JournalEntry {
	return domain.JournalEntry{AccountID: accountID, EntryType: t, Amount: decimal.RequireFromString(amount)}
}

func TestCalculateSignedAmount(t *testing.T) {
	tests := []struct {
		name        string
		entryType   domain.EntryType
		accountType domain.AccountType
		want        string
	}{
		{"debit asset", domain.Debit, domain.Asset, "100"},
		{"credit asset", domain.Credit, domain.Asset, "-100"},
		{"debit expense", domain.Debit, domain.Expense, "100"},
		{"credit expense", domain.Credit, domain.Expense, "-100"},
		{"debit liability", domain.Debit, domain.Liability, "-100"},
		{"credit liability", domain.Credit, domain.Liability, "100"},
		{"debit equity", domain.Debit, domain.Equity, "-100"},
		{"credit equity", domain.Credit, domain.Equity, "100"},
		{"debit revenue", domain.Debit, domain.Revenue, "-100"},
		{"credit revenue", domain.Credit, domain.Revenue, "100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := accounting.CalculateSignedAmount(entry("acc", tt.entryType, "100"), tt.accountType)
			require.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
		})
	}

	_, err := accounting.CalculateSignedAmount(entry("acc", domain.Debit, "1"), domain.AccountType("INCOME"))
	assert.Error(t, err)
}

func TestIsBalanced(t *testing.T) {
	tests := []struct {
		name    string
		debits  string
		credits string
		want    bool
	}{
		{"equal", "1000", "1000", true},
		{"off by exactly one cent", "1000.01", "1000", true},
		{"off by 0.011", "1000.011", "1000", false},
		{"credits heavier by a cent", "1000", "1000.01", true},
		{"credits heavier by 0.011", "1000", "1000.011", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, accounting.IsBalanced(decimal.RequireFromString(tt.debits), decimal.RequireFromString(tt.credits)))
		})
	}
}

func TestNetBalanceChanges(t *testing.T) {
	entries := []domain.JournalEntry{
		entry("cash", domain.Debit, "1000"),
		entry("income", domain.Credit, "1000"),
		entry("cash", domain.Credit, "250"),
		entry("expense", domain.Debit, "250"),
	}
	types := map[string]domain.AccountType{
		"cash":    domain.Asset,
		"income":  domain.Revenue,
		"expense": domain.Expense,
	}

	changes, err := accounting.NetBalanceChanges(entries, types)
	require.NoError(t, err)
	assert.True(t, changes["cash"].Equal(decimal.NewFromInt(750)))
	assert.True(t, changes["income"].Equal(decimal.NewFromInt(1000)))
	assert.True(t, changes["expense"].Equal(decimal.NewFromInt(250)))

	_, err = accounting.NetBalanceChanges([]domain.JournalEntry{entry("ghost", domain.Debit, "1")}, types)
	assert.Error(t, err)
}

func TestReplayBalance_MatchesIncrementalPosting(t *testing.T) {
	postings := [][]domain.JournalEntry{
		{entry("savings", domain.Credit, "500")},
		{entry("savings", domain.Credit, "120.75")},
		{entry("savings", domain.Debit, "80.25")},
	}

	running := decimal.Zero
	var all []domain.JournalEntry
	for _, p := range postings {
		changes, err := accounting.NetBalanceChanges(p, map[string]domain.AccountType{"savings": domain.Liability})
		require.NoError(t, err)
		running = running.Add(changes["savings"])
		all = append(all, p...)
	}

	replayed, err := accounting.ReplayBalance(all, domain.Liability)
	require.NoError(t, err)
	assert.True(t, replayed.Equal(running))
	assert.True(t, replayed.Equal(decimal.RequireFromString("540.5")))
}
