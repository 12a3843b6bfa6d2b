package services_test

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"testing"

	"github.com/ikymasie/KIKA-MONOREPO-sub003/internal/apperrors"
	"github.com/ikymasie/KIKA-MONOREPO-sub003/internal/core/domain"
	"github.com/ikymasie/KIKA-MONOREPO-sub003/internal/core/services"
	"github.com/ikymasie/KIKA-MONOREPO-sub003/internal/dto"
	"github.com/ikymasie/KIKA-MONOREPO-sub003/internal/utils/accounting"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// memoryLedger applies postings the way the pgsql repository does, without a database.
type memoryLedger struct {
	MockLedgerRepository
	mu       sync.Mutex
	accounts map[string]*domain.Account
	sequence map[string]int64
}

func newMemoryLedger(accounts ...domain.Account) *memoryLedger {
	l := &memoryLedger{accounts: map[string]*domain.Account{}, sequence: map[string]int64{}}
	for i := range accounts {
		acc := accounts[i]
		l.accounts[acc.AccountID] = &acc
	}
	return l
}

func (l *memoryLedger) PostTransaction(_ context.Context, txn domain.Transaction) (*domain.Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	types := map[string]domain.AccountType{}
	for _, e := range txn.Entries {
		acc, ok := l.accounts[e.AccountID]
		if !ok || acc.TenantID != txn.TenantID {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("account %s not found", e.AccountID))
		}
		types[e.AccountID] = acc.AccountType
	}
	changes, err := accounting.NetBalanceChanges(txn.Entries, types)
	if err != nil {
		return nil, err
	}
	for id, delta := range changes {
		l.accounts[id].Balance = l.accounts[id].Balance.Add(delta)
	}
	l.sequence[txn.TenantID]++
	txn.TransactionNumber = domain.FormatTransactionNumber(txn.TenantID, l.sequence[txn.TenantID])
	return &txn, nil
}

func TestScenario_PostingUpdatesBalancesAndNumbers(t *testing.T) {
	tenant := "a1b2c3d4-e5f6-7890-abcd-ef0123456789"
	ledgerRepo := newMemoryLedger(
		domain.Account{AccountID: "cash", TenantID: tenant, AccountType: domain.Asset, Balance: dec("0")},
		domain.Account{AccountID: "income", TenantID: tenant, AccountType: domain.Revenue, Balance: dec("0")},
	)
	ledger := services.NewGeneralLedgerService(tenant, new(MockAccountRepository), ledgerRepo, new(MockReportingRepository))

	txn, err := ledger.PostTransaction(context.Background(), dto.PostTransactionRequest{
		TransactionType: domain.TxnInterest,
		Amount:          dec("1000"),
		Description:     "Interest earned",
		Entries: []dto.JournalEntryRequest{
			{AccountID: "cash", EntryType: domain.Debit, Amount: dec("1000")},
			{AccountID: "income", EntryType: domain.Credit, Amount: dec("1000")},
		},
	}, "clerk-1")
	require.NoError(t, err)

	assert.True(t, ledgerRepo.accounts["cash"].Balance.Equal(dec("1000")))
	assert.True(t, ledgerRepo.accounts["income"].Balance.Equal(dec("1000")))
	assert.Regexp(t, regexp.MustCompile(`^TXN-[A-Za-z0-9-]{8}-000001$`), txn.TransactionNumber)
	assert.Equal(t, "TXN-a1b2c3d4-000001", txn.TransactionNumber)

	second, err := ledger.PostTransaction(context.Background(), dto.PostTransactionRequest{
		TransactionType: domain.TxnFee,
		Description:     "Fee",
		Entries: []dto.JournalEntryRequest{
			{AccountID: "cash", EntryType: domain.Debit, Amount: dec("10")},
			{AccountID: "income", EntryType: domain.Credit, Amount: dec("10")},
		},
	}, "clerk-1")
	require.NoError(t, err)
	assert.Equal(t, "TXN-a1b2c3d4-000002", second.TransactionNumber)
}

func TestScenario_RejectedPostingLeavesBalancesUntouched(t *testing.T) {
	tenant := "tenant-x"
	ledgerRepo := newMemoryLedger(
		domain.Account{AccountID: "cash", TenantID: tenant, AccountType: domain.Asset, Balance: dec("50")},
	)
	ledger := services.NewGeneralLedgerService(tenant, new(MockAccountRepository), ledgerRepo, new(MockReportingRepository))

	_, err := ledger.PostTransaction(context.Background(), dto.PostTransactionRequest{
		TransactionType: domain.TxnDeposit,
		Description:     "Deposit",
		Entries: []dto.JournalEntryRequest{
			{AccountID: "cash", EntryType: domain.Debit, Amount: dec("100")},
			{AccountID: "ghost", EntryType: domain.Credit, Amount: dec("100")},
		},
	}, "clerk-1")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.True(t, ledgerRepo.accounts["cash"].Balance.Equal(dec("50")))
	assert.Empty(t, ledgerRepo.sequence)
}

func TestScenario_GuarantorCapacity(t *testing.T) {
	ctx := context.Background()
	guarantorRepo := new(MockGuarantorRepository)
	guarantorRepo.On("GetGuaranteeExposure", ctx, "g1").Return(exposure("5000", "2000"), nil)
	svc := services.NewGuarantorService(guarantorRepo, new(MockLoanRepository), new(MockMemberRepository), new(MockNotifier), 0)

	check, err := svc.CheckGuarantorCapacity(ctx, "g1", dec("2500"))
	require.NoError(t, err)
	assert.True(t, check.CanGuarantee)
	assert.True(t, check.AvailableSavings.Equal(dec("3000")))

	check, err = svc.CheckGuarantorCapacity(ctx, "g1", dec("3500"))
	require.NoError(t, err)
	assert.False(t, check.CanGuarantee)
	assert.Contains(t, check.Details, "P 3,000")
	assert.Contains(t, check.Details, "P 3,500")
}

func finalizeWith(t *testing.T, choices ...domain.VoteChoice) (*domain.FinalizeOutcome, domain.LoanStatusChange) {
	t.Helper()
	ctx := context.Background()
	loanRepo := new(MockLoanRepository)
	committeeRepo := new(MockCommitteeRepository)
	expectTx(&loanRepo.Mock, true)
	loanRepo.On("FindLoanByIDForUpdate", ctx, mock.Anything, "loan-1").Return(awaitingLoan("loan-1"), nil).Once()
	committeeRepo.On("ListVotesByLoanInTx", ctx, mock.Anything, "loan-1").Return(votes("loan-1", choices...), nil).Once()
	var change domain.LoanStatusChange
	loanRepo.On("UpdateLoanStatusInTx", ctx, mock.Anything, mock.AnythingOfType("domain.LoanStatusChange")).
		Run(func(args mock.Arguments) { change = args.Get(2).(domain.LoanStatusChange) }).
		Return(true, nil).Once()
	loanRepo.On("AppendWorkflowLogInTx", ctx, mock.Anything, mock.Anything).Return(nil).Once()

	svc := services.NewCommitteeService(loanRepo, committeeRepo, 3)
	out, err := svc.FinalizeCommitteeDecision(ctx, "loan-1", 3, "chair")
	require.NoError(t, err)
	return out, change
}

func TestScenario_CommitteeApproves(t *testing.T) {
	out, change := finalizeWith(t, domain.VoteApprove, domain.VoteApprove, domain.VoteReject)

	assert.True(t, out.Result.QuorumMet)
	assert.Equal(t, 2, out.Result.ApproveVotes)
	assert.Equal(t, 1, out.Result.RejectVotes)
	assert.True(t, out.Result.Approved)
	assert.Equal(t, domain.LoanCommitteeApproved, change.Status)
	assert.Equal(t, domain.StageDisbursement, change.WorkflowStage)
}

func TestScenario_CommitteeRejects(t *testing.T) {
	out, change := finalizeWith(t, domain.VoteApprove, domain.VoteReject, domain.VoteReject)

	assert.False(t, out.Result.Approved)
	assert.Equal(t, domain.LoanRejected, change.Status)
	require.NotNil(t, change.RejectionReason)
	assert.Contains(t, *change.RejectionReason, "2 reject votes vs 1 approve votes")
}

func TestScenario_BalanceSheetTotals(t *testing.T) {
	ctx := context.Background()
	accountRepo := new(MockAccountRepository)
	accountRepo.On("ListAccountsByTenant", ctx, "tenant-x").Return([]domain.Account{
		{AccountID: "a1", AccountType: domain.Asset, Balance: dec("1000")},
		{AccountID: "a2", AccountType: domain.Asset, Balance: dec("500")},
		{AccountID: "l1", AccountType: domain.Liability, Balance: dec("300")},
		{AccountID: "e1", AccountType: domain.Equity, Balance: dec("1200")},
	}, nil)
	ledger := services.NewGeneralLedgerService("tenant-x", accountRepo, new(MockLedgerRepository), new(MockReportingRepository))

	report, err := ledger.GetBalanceSheet(ctx, fixedNow)
	require.NoError(t, err)
	assert.True(t, report.TotalAssets.Equal(dec("1500")))
	assert.True(t, report.TotalLiabilities.Equal(dec("300")))
	assert.True(t, report.TotalEquity.Equal(dec("1200")))
}

// memoryVotes keys votes by (loan, user) like the loan_committee_votes unique constraint.
type memoryVotes struct {
	votes map[string]domain.CommitteeVote
	order []string
}

func (m *memoryVotes) UpsertVoteInTx(_ context.Context, _ pgx.Tx, vote domain.CommitteeVote) error {
	key := vote.LoanID + "|" + vote.UserID
	if _, ok := m.votes[key]; !ok {
		m.order = append(m.order, key)
	}
	m.votes[key] = vote
	return nil
}

func (m *memoryVotes) ListVotesByLoan(_ context.Context, loanID string) ([]domain.CommitteeVote, error) {
	var out []domain.CommitteeVote
	for _, key := range m.order {
		if v := m.votes[key]; v.LoanID == loanID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (m *memoryVotes) ListVotesByLoanInTx(ctx context.Context, _ pgx.Tx, loanID string) ([]domain.CommitteeVote, error) {
	return m.ListVotesByLoan(ctx, loanID)
}

func TestScenario_RevoteReplacesPriorVote(t *testing.T) {
	ctx := context.Background()
	loanRepo := new(MockLoanRepository)
	loanRepo.On("Begin", mock.Anything).Return(nil, nil)
	loanRepo.On("Commit", mock.Anything, mock.Anything).Return(nil)
	loanRepo.On("Rollback", mock.Anything, mock.Anything).Return(nil)
	loanRepo.On("FindLoanByIDForUpdate", ctx, mock.Anything, "loan-1").Return(awaitingLoan("loan-1"), nil)
	loanRepo.On("FindLoanByID", ctx, "loan-1").Return(awaitingLoan("loan-1"), nil)
	loanRepo.On("AppendWorkflowLogInTx", ctx, mock.Anything, mock.Anything).Return(nil)
	store := &memoryVotes{votes: map[string]domain.CommitteeVote{}}
	svc := services.NewCommitteeService(loanRepo, store, 3)

	_, err := svc.RecordVote(ctx, "loan-1", "member-a", domain.VoteApprove, nil)
	require.NoError(t, err)
	_, err = svc.RecordVote(ctx, "loan-1", "member-b", domain.VoteApprove, nil)
	require.NoError(t, err)
	_, err = svc.RecordVote(ctx, "loan-1", "member-a", domain.VoteReject, nil)
	require.NoError(t, err)

	list, result, err := svc.ListVotes(ctx, "loan-1")
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Equal(t, domain.VoteReject, list[0].Vote)
	assert.Equal(t, 1, result.ApproveVotes)
	assert.Equal(t, 1, result.RejectVotes)
	assert.False(t, result.QuorumMet, "two distinct voters never meet a quorum of three")
}
