package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/ikymasie/KIKA-MONOREPO-sub003/internal/apperrors"
	"github.com/ikymasie/KIKA-MONOREPO-sub003/internal/core/domain"
	portsrepo "github.com/ikymasie/KIKA-MONOREPO-sub003/internal/core/ports/repositories"
	portssvc "github.com/ikymasie/KIKA-MONOREPO-sub003/internal/core/ports/services"
	"github.com/ikymasie/KIKA-MONOREPO-sub003/internal/dto"
	"github.com/ikymasie/KIKA-MONOREPO-sub003/internal/metrics"
	"github.com/ikymasie/KIKA-MONOREPO-sub003/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

// ErrUnbalancedEntries is returned when a posting's debits and credits differ by more
// than accounting.BalanceTolerance. It matches apperrors.ErrValidation.
var ErrUnbalancedEntries = apperrors.NewAppError(400, "Debits must equal credits in double-entry accounting", nil)

// generalLedgerService is the double-entry ledger of one tenant.
type generalLedgerService struct {
	BaseService
	tenantID      string
	accountRepo   portsrepo.AccountRepositoryFacade
	ledgerRepo    portsrepo.LedgerRepositoryFacade
	reportingRepo portsrepo.ReportingRepository
}

// Option configures the ambient dependencies shared by all services.
type Option func(*BaseService)

// WithMetrics records service activity on m.
func WithMetrics(m *metrics.WorkflowMetrics) Option {
	return func(s *BaseService) {
		s.Metrics = m
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *BaseService) {
		s.Clock = now
	}
}

// NewGeneralLedgerService creates the ledger of tenantID.
func NewGeneralLedgerService(
	tenantID string,
	accountRepo portsrepo.AccountRepositoryFacade,
	ledgerRepo portsrepo.LedgerRepositoryFacade,
	reportingRepo portsrepo.ReportingRepository,
	options ...Option,
) portssvc.GeneralLedgerSvcFacade {
	svc := &generalLedgerService{
		tenantID:      tenantID,
		accountRepo:   accountRepo,
		ledgerRepo:    ledgerRepo,
		reportingRepo: reportingRepo,
	}
	for _, option := range options {
		option(&svc.BaseService)
	}
	return svc
}

// Ensure generalLedgerService implements the portssvc.GeneralLedgerSvcFacade interface
var _ portssvc.GeneralLedgerSvcFacade = (*generalLedgerService)(nil)

type generalLedgerFactory struct {
	accountRepo   portsrepo.AccountRepositoryFacade
	ledgerRepo    portsrepo.LedgerRepositoryFacade
	reportingRepo portsrepo.ReportingRepository
	options       []Option
}

// NewGeneralLedgerFactory returns a factory producing tenant-scoped ledgers over shared repositories.
func NewGeneralLedgerFactory(
	accountRepo portsrepo.AccountRepositoryFacade,
	ledgerRepo portsrepo.LedgerRepositoryFacade,
	reportingRepo portsrepo.ReportingRepository,
	options ...Option,
) portssvc.GeneralLedgerFactory {
	return &generalLedgerFactory{
		accountRepo:   accountRepo,
		ledgerRepo:    ledgerRepo,
		reportingRepo: reportingRepo,
		options:       options,
	}
}

// ForTenant implements portssvc.GeneralLedgerFactory.
func (f *generalLedgerFactory) ForTenant(tenantID string) portssvc.GeneralLedgerSvcFacade {
	return NewGeneralLedgerService(tenantID, f.accountRepo, f.ledgerRepo, f.reportingRepo, f.options...)
}

func (s *generalLedgerService) TenantID() string {
	return s.tenantID
}

func (s *generalLedgerService) requireTenant() error {
	if s.tenantID == "" {
		return fmt.Errorf("%w: tenant id is required", apperrors.ErrValidation)
	}
	return nil
}

// validateEntries checks entry shape and the debit/credit balance before anything is written.
func validateEntries(entries []dto.JournalEntryRequest) (debits decimal.Decimal, err error) {
	if len(entries) == 0 {
		return decimal.Zero, fmt.Errorf("%w: at least one journal entry is required", apperrors.ErrValidation)
	}
	debits, credits := decimal.Zero, decimal.Zero
	for i, e := range entries {
		if e.AccountID == "" {
			return decimal.Zero, fmt.Errorf("%w: entry %d has no account", apperrors.ErrValidation, i)
		}
		if e.Amount.IsNegative() {
			return decimal.Zero, fmt.Errorf("%w: entry %d amount must not be negative", apperrors.ErrValidation, i)
		}
		switch e.EntryType {
		case domain.Debit:
			debits = debits.Add(e.Amount)
		case domain.Credit:
			credits = credits.Add(e.Amount)
		default:
			return decimal.Zero, fmt.Errorf("%w: entry %d has invalid entry type %q", apperrors.ErrValidation, i, e.EntryType)
		}
	}
	if !accounting.IsBalanced(debits, credits) {
		return decimal.Zero, ErrUnbalancedEntries
	}
	return debits, nil
}

// PostTransaction implements portssvc.LedgerPostingSvc.
func (s *generalLedgerService) PostTransaction(ctx context.Context, req dto.PostTransactionRequest, userID string) (*domain.Transaction, error) {
	start := time.Now()
	if err := s.requireTenant(); err != nil {
		return nil, err
	}
	if !req.TransactionType.IsValid() {
		return nil, fmt.Errorf("%w: unknown transaction type %q", apperrors.ErrValidation, req.TransactionType)
	}
	if req.Amount.IsNegative() {
		return nil, fmt.Errorf("%w: transaction amount must not be negative", apperrors.ErrValidation)
	}

	debits, err := validateEntries(req.Entries)
	if err != nil {
		s.LogWarn(ctx, "Rejected ledger posting",
			slog.String("tenant_id", s.tenantID),
			slog.String("transaction_type", string(req.TransactionType)),
			slog.String("error", err.Error()))
		s.Metrics.ObservePosting(string(req.TransactionType), metrics.ResultRejected, 0)
		return nil, err
	}

	now := s.Now()
	amount := req.Amount
	if amount.IsZero() {
		amount = debits
	}

	txn := domain.Transaction{
		TransactionID:   uuid.NewString(),
		TenantID:        s.tenantID,
		TransactionType: req.TransactionType,
		Amount:          amount,
		TransactionDate: now,
		Description:     req.Description,
		MemberID:        req.MemberID,
		ReferenceID:     req.ReferenceID,
		ReferenceType:   req.ReferenceType,
		Status:          domain.TxnCompleted,
		Entries:         make([]domain.JournalEntry, len(req.Entries)),
		AuditFields:     domain.NewAuditFields(userID, now),
	}
	for i, e := range req.Entries {
		description := req.Description
		if e.Description != nil && *e.Description != "" {
			description = *e.Description
		}
		txn.Entries[i] = domain.JournalEntry{
			EntryID:       uuid.NewString(),
			TransactionID: txn.TransactionID,
			AccountID:     e.AccountID,
			EntryType:     e.EntryType,
			Amount:        e.Amount,
			Description:   description,
			CreatedAt:     now,
		}
	}

	saved, err := s.ledgerRepo.PostTransaction(ctx, txn)
	if err != nil {
		s.LogError(ctx, err, "Failed to post transaction",
			slog.String("tenant_id", s.tenantID),
			slog.String("transaction_id", txn.TransactionID))
		s.Metrics.ObservePosting(string(req.TransactionType), metrics.ResultError, 0)
		return nil, fmt.Errorf("failed to post transaction: %w", err)
	}

	s.Metrics.ObservePosting(string(req.TransactionType), metrics.ResultSuccess, time.Since(start))
	s.LogInfo(ctx, "Transaction posted",
		slog.String("tenant_id", s.tenantID),
		slog.String("transaction_id", saved.TransactionID),
		slog.String("transaction_number", saved.TransactionNumber),
		slog.Int("entry_count", len(saved.Entries)))
	return saved, nil
}

// PostBusinessEvent implements portssvc.LedgerPostingSvc.
func (s *generalLedgerService) PostBusinessEvent(ctx context.Context, req dto.BusinessEventRequest, userID string) (*domain.Transaction, error) {
	if err := s.requireTenant(); err != nil {
		return nil, err
	}
	rule, err := domain.PostingRuleFor(req.EventType)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
	}
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", apperrors.ErrValidation)
	}

	accounts, err := s.accountRepo.FindAccountsByCodes(ctx, s.tenantID, []string{rule.DebitCode, rule.CreditCode})
	if err != nil {
		s.LogError(ctx, err, "Failed to resolve chart accounts", slog.String("tenant_id", s.tenantID))
		return nil, fmt.Errorf("failed to resolve chart accounts: %w", err)
	}
	for _, code := range []string{rule.DebitCode, rule.CreditCode} {
		if _, ok := accounts[code]; !ok {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("account with code %s not found; initialize the chart of accounts", code))
		}
	}

	return s.PostTransaction(ctx, dto.PostTransactionRequest{
		TransactionType: req.EventType,
		Amount:          req.Amount,
		Description:     req.Description,
		Entries: []dto.JournalEntryRequest{
			{AccountID: accounts[rule.DebitCode].AccountID, EntryType: domain.Debit, Amount: req.Amount},
			{AccountID: accounts[rule.CreditCode].AccountID, EntryType: domain.Credit, Amount: req.Amount},
		},
		MemberID:      req.MemberID,
		ReferenceID:   req.ReferenceID,
		ReferenceType: req.ReferenceType,
	}, userID)
}

// InitializeChartOfAccounts implements portssvc.LedgerPostingSvc.
func (s *generalLedgerService) InitializeChartOfAccounts(ctx context.Context, userID string) ([]domain.Account, error) {
	if err := s.requireTenant(); err != nil {
		return nil, err
	}
	now := s.Now()
	created := 0
	for _, c := range domain.StandardChart {
		ok, err := s.accountRepo.EnsureAccount(ctx, domain.Account{
			AccountID:   uuid.NewString(),
			TenantID:    s.tenantID,
			Code:        c.Code,
			Name:        c.Name,
			AccountType: c.Type,
			Status:      domain.AccountActive,
			Balance:     decimal.Zero,
			AuditFields: domain.NewAuditFields(userID, now),
		})
		if err != nil {
			s.LogError(ctx, err, "Failed to create chart account", slog.String("code", c.Code))
			return nil, fmt.Errorf("failed to create account %s: %w", c.Code, err)
		}
		if ok {
			created++
		}
	}
	s.LogInfo(ctx, "Chart of accounts initialized",
		slog.String("tenant_id", s.tenantID),
		slog.Int("created", created))
	return s.ListAccounts(ctx)
}

// ListAccounts implements portssvc.LedgerReaderSvc.
func (s *generalLedgerService) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	if err := s.requireTenant(); err != nil {
		return nil, err
	}
	accounts, err := s.accountRepo.ListAccountsByTenant(ctx, s.tenantID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts", slog.String("tenant_id", s.tenantID))
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

// ListGeneralLedger implements portssvc.LedgerReaderSvc.
func (s *generalLedgerService) ListGeneralLedger(ctx context.Context, params dto.ListGeneralLedgerParams) (*dto.ListGeneralLedgerResponse, error) {
	if err := s.requireTenant(); err != nil {
		return nil, err
	}
	if params.StartDate != nil && params.EndDate != nil && params.EndDate.Before(*params.StartDate) {
		return nil, fmt.Errorf("%w: endDate must not be before startDate", apperrors.ErrValidation)
	}
	if params.Limit < 0 {
		return nil, fmt.Errorf("%w: limit must not be negative", apperrors.ErrValidation)
	}

	filter := domain.LedgerFilter{
		AccountID: params.AccountID,
		StartDate: params.StartDate,
		EndDate:   params.EndDate,
	}
	lines, next, err := s.ledgerRepo.ListLedgerLines(ctx, s.tenantID, filter, params.Limit, params.NextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list general ledger", slog.String("tenant_id", s.tenantID))
		return nil, fmt.Errorf("failed to list general ledger: %w", err)
	}
	if lines == nil {
		lines = []domain.LedgerLine{}
	}
	return &dto.ListGeneralLedgerResponse{Lines: lines, NextToken: next}, nil
}

// GetTrialBalance implements portssvc.LedgerReportingSvc. Balances are current; asOf is
// accepted for interface stability.
func (s *generalLedgerService) GetTrialBalance(ctx context.Context, asOf *time.Time) ([]domain.TrialBalanceRow, error) {
	accounts, err := s.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([]domain.TrialBalanceRow, len(accounts))
	for i, acc := range accounts {
		row := domain.TrialBalanceRow{
			AccountID:   acc.AccountID,
			AccountName: acc.DisplayName(),
			AccountType: acc.AccountType,
			Debit:       decimal.Zero,
			Credit:      decimal.Zero,
		}
		if acc.Balance.IsNegative() {
			row.Credit = acc.Balance.Abs()
		} else {
			row.Debit = acc.Balance
		}
		rows[i] = row
	}
	return rows, nil
}

func toAccountAmount(acc domain.Account) domain.AccountAmount {
	return domain.AccountAmount{
		AccountID: acc.AccountID,
		Code:      acc.Code,
		Name:      acc.Name,
		Amount:    acc.Balance,
	}
}

// GetBalanceSheet implements portssvc.LedgerReportingSvc.
func (s *generalLedgerService) GetBalanceSheet(ctx context.Context, asOf time.Time) (*domain.BalanceSheetReport, error) {
	accounts, err := s.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}
	report := &domain.BalanceSheetReport{
		Assets:      []domain.AccountAmount{},
		Liabilities: []domain.AccountAmount{},
		Equity:      []domain.AccountAmount{},
	}
	for _, acc := range accounts {
		switch acc.AccountType {
		case domain.Asset:
			report.Assets = append(report.Assets, toAccountAmount(acc))
		case domain.Liability:
			report.Liabilities = append(report.Liabilities, toAccountAmount(acc))
		case domain.Equity:
			report.Equity = append(report.Equity, toAccountAmount(acc))
		}
	}
	report.TotalAssets = domain.SumAmounts(report.Assets)
	report.TotalLiabilities = domain.SumAmounts(report.Liabilities)
	report.TotalEquity = domain.SumAmounts(report.Equity)
	return report, nil
}

func newProfitAndLoss(revenue, expenses []domain.AccountAmount) *domain.ProfitAndLossReport {
	report := &domain.ProfitAndLossReport{
		Revenue:       revenue,
		Expenses:      expenses,
		TotalRevenue:  domain.SumAmounts(revenue),
		TotalExpenses: domain.SumAmounts(expenses),
	}
	report.NetProfit = report.TotalRevenue.Sub(report.TotalExpenses)
	return report
}

// GetProfitAndLoss implements portssvc.LedgerReportingSvc using current balances.
func (s *generalLedgerService) GetProfitAndLoss(ctx context.Context, start, end time.Time) (*domain.ProfitAndLossReport, error) {
	accounts, err := s.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}
	revenue, expenses := []domain.AccountAmount{}, []domain.AccountAmount{}
	for _, acc := range accounts {
		switch acc.AccountType {
		case domain.Revenue:
			revenue = append(revenue, toAccountAmount(acc))
		case domain.Expense:
			expenses = append(expenses, toAccountAmount(acc))
		}
	}
	return newProfitAndLoss(revenue, expenses), nil
}

// GetPeriodProfitAndLoss implements portssvc.LedgerReportingSvc.
func (s *generalLedgerService) GetPeriodProfitAndLoss(ctx context.Context, start, end time.Time) (*domain.ProfitAndLossReport, error) {
	if err := s.requireTenant(); err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: endDate must not be before startDate", apperrors.ErrValidation)
	}
	revenue, expenses, err := s.reportingRepo.GetPeriodProfitAndLossData(ctx, s.tenantID, start, end)
	if err != nil {
		s.LogError(ctx, err, "Failed to retrieve profit and loss data",
			slog.String("tenant_id", s.tenantID),
			slog.String("from", start.Format(time.RFC3339)),
			slog.String("to", end.Format(time.RFC3339)))
		return nil, fmt.Errorf("failed to retrieve profit and loss data: %w", err)
	}
	report := newProfitAndLoss(revenue, expenses)
	s.LogInfo(ctx, "Profit and loss report generated",
		slog.String("tenant_id", s.tenantID),
		slog.Int("revenue_accounts", len(revenue)),
		slog.Int("expense_accounts", len(expenses)))
	return report, nil
}
