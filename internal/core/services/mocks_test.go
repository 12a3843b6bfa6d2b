package services_test

import (
	"context"
	"time"

	"github.com/ikymasie/KIKA-MONOREPO-sub003/internal/core/domain"
	portsrepo "github.com/ikymasie/KIKA-MONOREPO-sub003/internal/core/ports/repositories"
	portssvc "github.com/ikymasie/KIKA-MONOREPO-sub003/internal/core/ports/services"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// --- Mock TransactionManager ---
type MockTxManager struct {
	mock.Mock
}

func (m *MockTxManager) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockTxManager) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockTxManager) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

// expectTx sets up a transaction that is begun and always rolled back (a no-op after commit).
func expectTx(m *mock.Mock, commit bool) {
	m.On("Begin", mock.Anything).Return(nil, nil).Once()
	m.On("Rollback", mock.Anything, mock.Anything).Return(nil).Maybe()
	if commit {
		m.On("Commit", mock.Anything, mock.Anything).Return(nil).Once()
	}
}

// --- Mock AccountRepository ---
type MockAccountRepository struct {
	mock.Mock
}

var _ portsrepo.AccountRepositoryFacade = (*MockAccountRepository)(nil)

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, tenantID, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, tenantID, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountsByCodes(ctx context.Context, tenantID string, codes []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, tenantID, codes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListAccountsByTenant(ctx context.Context, tenantID string) ([]domain.Account, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) EnsureAccount(ctx context.Context, account domain.Account) (bool, error) {
	args := m.Called(ctx, account)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccountRepository) FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, tenantID string, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, tx, tenantID, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) UpdateAccountBalancesInTx(ctx context.Context, tx pgx.Tx, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error {
	args := m.Called(ctx, tx, balanceChanges, userID, now)
	return args.Error(0)
}

// --- Mock LedgerRepository ---
type MockLedgerRepository struct {
	mock.Mock
}

var _ portsrepo.LedgerRepositoryFacade = (*MockLedgerRepository)(nil)

func (m *MockLedgerRepository) FindTransactionByID(ctx context.Context, tenantID, transactionID string) (*domain.Transaction, error) {
	args := m.Called(ctx, tenantID, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockLedgerRepository) ListLedgerLines(ctx context.Context, tenantID string, filter domain.LedgerFilter, limit int, nextToken *string) ([]domain.LedgerLine, *string, error) {
	args := m.Called(ctx, tenantID, filter, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedNextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedNextToken = &tokenVal
	}
	return args.Get(0).([]domain.LedgerLine), returnedNextToken, args.Error(2)
}

func (m *MockLedgerRepository) PostTransaction(ctx context.Context, txn domain.Transaction) (*domain.Transaction, error) {
	args := m.Called(ctx, txn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

// --- Mock ReportingRepository ---
type MockReportingRepository struct {
	mock.Mock
}

var _ portsrepo.ReportingRepository = (*MockReportingRepository)(nil)

func (m *MockReportingRepository) GetPeriodProfitAndLossData(ctx context.Context, tenantID string, from, to time.Time) ([]domain.AccountAmount, []domain.AccountAmount, error) {
	args := m.Called(ctx, tenantID, from, to)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).([]domain.AccountAmount), args.Get(1).([]domain.AccountAmount), args.Error(2)
}

// --- Mock LoanRepository ---
type MockLoanRepository struct {
	MockTxManager
}

var _ portsrepo.LoanRepositoryWithTx = (*MockLoanRepository)(nil)

func (m *MockLoanRepository) FindLoanByID(ctx context.Context, loanID string) (*domain.Loan, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

func (m *MockLoanRepository) FindLoanWithRelations(ctx context.Context, loanID string) (*domain.Loan, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

func (m *MockLoanRepository) FindLoanByIDForUpdate(ctx context.Context, tx pgx.Tx, loanID string) (*domain.Loan, error) {
	args := m.Called(ctx, tx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

func (m *MockLoanRepository) UpdateLoanStatusInTx(ctx context.Context, tx pgx.Tx, change domain.LoanStatusChange) (bool, error) {
	args := m.Called(ctx, tx, change)
	return args.Bool(0), args.Error(1)
}

func (m *MockLoanRepository) AppendWorkflowLogInTx(ctx context.Context, tx pgx.Tx, entry domain.LoanWorkflowLog) error {
	args := m.Called(ctx, tx, entry)
	return args.Error(0)
}

// --- Mock MemberRepository ---
type MockMemberRepository struct {
	mock.Mock
}

var _ portsrepo.MemberReader = (*MockMemberRepository)(nil)

func (m *MockMemberRepository) FindMemberByID(ctx context.Context, memberID string) (*domain.Member, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Member), args.Error(1)
}

// --- Mock GuarantorRepository ---
type MockGuarantorRepository struct {
	MockTxManager
}

var _ portsrepo.GuarantorRepositoryWithTx = (*MockGuarantorRepository)(nil)

func (m *MockGuarantorRepository) FindGuarantor(ctx context.Context, loanID, guarantorID string) (*domain.LoanGuarantor, error) {
	args := m.Called(ctx, loanID, guarantorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LoanGuarantor), args.Error(1)
}

func (m *MockGuarantorRepository) ListPendingGuarantorsByLoan(ctx context.Context, loanID string) ([]domain.LoanGuarantor, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LoanGuarantor), args.Error(1)
}

func (m *MockGuarantorRepository) ListGuarantorsByMember(ctx context.Context, guarantorID string) ([]domain.LoanGuarantor, error) {
	args := m.Called(ctx, guarantorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LoanGuarantor), args.Error(1)
}

func (m *MockGuarantorRepository) GetGuaranteeExposure(ctx context.Context, guarantorID string) (domain.GuaranteeExposure, error) {
	args := m.Called(ctx, guarantorID)
	return args.Get(0).(domain.GuaranteeExposure), args.Error(1)
}

func (m *MockGuarantorRepository) UpdateGuarantor(ctx context.Context, guarantor domain.LoanGuarantor) error {
	args := m.Called(ctx, guarantor)
	return args.Error(0)
}

func (m *MockGuarantorRepository) LockGuaranteesForUpdate(ctx context.Context, tx pgx.Tx, guarantorID string) error {
	args := m.Called(ctx, tx, guarantorID)
	return args.Error(0)
}

func (m *MockGuarantorRepository) FindGuarantorInTx(ctx context.Context, tx pgx.Tx, loanID, guarantorID string) (*domain.LoanGuarantor, error) {
	args := m.Called(ctx, tx, loanID, guarantorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LoanGuarantor), args.Error(1)
}

func (m *MockGuarantorRepository) GetGuaranteeExposureInTx(ctx context.Context, tx pgx.Tx, guarantorID string) (domain.GuaranteeExposure, error) {
	args := m.Called(ctx, tx, guarantorID)
	return args.Get(0).(domain.GuaranteeExposure), args.Error(1)
}

func (m *MockGuarantorRepository) UpdateGuarantorInTx(ctx context.Context, tx pgx.Tx, guarantor domain.LoanGuarantor) error {
	args := m.Called(ctx, tx, guarantor)
	return args.Error(0)
}

// --- Mock CommitteeVoteRepository ---
type MockCommitteeRepository struct {
	mock.Mock
}

var _ portsrepo.CommitteeVoteRepository = (*MockCommitteeRepository)(nil)

func (m *MockCommitteeRepository) UpsertVoteInTx(ctx context.Context, tx pgx.Tx, vote domain.CommitteeVote) error {
	args := m.Called(ctx, tx, vote)
	return args.Error(0)
}

func (m *MockCommitteeRepository) ListVotesByLoan(ctx context.Context, loanID string) ([]domain.CommitteeVote, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CommitteeVote), args.Error(1)
}

func (m *MockCommitteeRepository) ListVotesByLoanInTx(ctx context.Context, tx pgx.Tx, loanID string) ([]domain.CommitteeVote, error) {
	args := m.Called(ctx, tx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CommitteeVote), args.Error(1)
}

// --- Mock GuarantorNotifier ---
type MockNotifier struct {
	mock.Mock
}

var _ portssvc.GuarantorNotifier = (*MockNotifier)(nil)

func (m *MockNotifier) NotifyGuarantor(ctx context.Context, notification domain.GuarantorNotification) error {
	args := m.Called(ctx, notification)
	return args.Error(0)
}

var fixedNow = time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }
