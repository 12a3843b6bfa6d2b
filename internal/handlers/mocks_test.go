package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/ikymasie/KIKA-MONOREPO-sub003/internal/core/domain"
	portssvc "github.com/ikymasie/KIKA-MONOREPO-sub003/internal/core/ports/services"
	"github.com/ikymasie/KIKA-MONOREPO-sub003/internal/dto"
	"github.com/ikymasie/KIKA-MONOREPO-sub003/internal/middleware"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

const (
	testJWTSecret = "test-secret-key-that-is-long-enough"
	testUserID    = "user-treasurer-1"
	testTenantID  = "sacco-gaborone-01"
)

// --- Mock GeneralLedgerFactory ---
type MockLedgerFactory struct {
	mock.Mock
}

func (m *MockLedgerFactory) ForTenant(tenantID string) portssvc.GeneralLedgerSvcFacade {
	args := m.Called(tenantID)
	return args.Get(0).(portssvc.GeneralLedgerSvcFacade)
}

// --- Mock GeneralLedgerService ---
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) PostTransaction(ctx context.Context, req dto.PostTransactionRequest, userID string) (*domain.Transaction, error) {
	args := m.Called(ctx, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockLedgerService) PostBusinessEvent(ctx context.Context, req dto.BusinessEventRequest, userID string) (*domain.Transaction, error) {
	args := m.Called(ctx, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockLedgerService) InitializeChartOfAccounts(ctx context.Context, userID string) ([]domain.Account, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockLedgerService) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockLedgerService) ListGeneralLedger(ctx context.Context, params dto.ListGeneralLedgerParams) (*dto.ListGeneralLedgerResponse, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListGeneralLedgerResponse), args.Error(1)
}

func (m *MockLedgerService) GetTrialBalance(ctx context.Context, asOf *time.Time) ([]domain.TrialBalanceRow, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TrialBalanceRow), args.Error(1)
}

func (m *MockLedgerService) GetBalanceSheet(ctx context.Context, asOf time.Time) (*domain.BalanceSheetReport, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BalanceSheetReport), args.Error(1)
}

func (m *MockLedgerService) GetProfitAndLoss(ctx context.Context, start, end time.Time) (*domain.ProfitAndLossReport, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProfitAndLossReport), args.Error(1)
}

func (m *MockLedgerService) GetPeriodProfitAndLoss(ctx context.Context, start, end time.Time) (*domain.ProfitAndLossReport, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProfitAndLossReport), args.Error(1)
}

func (m *MockLedgerService) TenantID() string {
	return m.Called().String(0)
}

// --- Mock GuarantorService ---
type MockGuarantorService struct {
	mock.Mock
}

func (m *MockGuarantorService) CheckGuarantorCapacity(ctx context.Context, guarantorID string, pledgeAmount decimal.Decimal) (*domain.CapacityCheck, error) {
	args := m.Called(ctx, guarantorID, pledgeAmount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CapacityCheck), args.Error(1)
}

func (m *MockGuarantorService) LockGuarantorSavings(ctx context.Context, guarantorID, loanID string, amount decimal.Decimal) (*domain.PledgeOutcome, error) {
	args := m.Called(ctx, guarantorID, loanID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PledgeOutcome), args.Error(1)
}

func (m *MockGuarantorService) ReleaseGuarantorSavings(ctx context.Context, guarantorID, loanID string) (*domain.ReleaseOutcome, error) {
	args := m.Called(ctx, guarantorID, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReleaseOutcome), args.Error(1)
}

func (m *MockGuarantorService) SendGuarantorNotification(ctx context.Context, guarantorID, loanID string) (*domain.Outcome, error) {
	args := m.Called(ctx, guarantorID, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Outcome), args.Error(1)
}

func (m *MockGuarantorService) RequestGuarantorPledges(ctx context.Context, loanID string) (*domain.PledgeRequestOutcome, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PledgeRequestOutcome), args.Error(1)
}

func (m *MockGuarantorService) RequestGuarantors(ctx context.Context, loanID, actorID string) (*domain.PledgeRequestOutcome, error) {
	args := m.Called(ctx, loanID, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PledgeRequestOutcome), args.Error(1)
}

func (m *MockGuarantorService) RespondToGuarantorRequest(ctx context.Context, guarantorID, loanID string, accept bool, reason *string) (*domain.PledgeOutcome, error) {
	args := m.Called(ctx, guarantorID, loanID, accept, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PledgeOutcome), args.Error(1)
}

func (m *MockGuarantorService) ListGuarantorRequests(ctx context.Context, guarantorID string) ([]domain.LoanGuarantor, error) {
	args := m.Called(ctx, guarantorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LoanGuarantor), args.Error(1)
}

// --- Mock CommitteeService ---
type MockCommitteeService struct {
	mock.Mock
}

func (m *MockCommitteeService) RecordVote(ctx context.Context, loanID, userID string, vote domain.VoteChoice, notes *string) (*domain.Outcome, error) {
	args := m.Called(ctx, loanID, userID, vote, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Outcome), args.Error(1)
}

func (m *MockCommitteeService) ListVotes(ctx context.Context, loanID string) ([]domain.CommitteeVote, domain.VoteResult, error) {
	args := m.Called(ctx, loanID)
	votes, _ := args.Get(0).([]domain.CommitteeVote)
	return votes, args.Get(1).(domain.VoteResult), args.Error(2)
}

func (m *MockCommitteeService) FinalizeCommitteeDecision(ctx context.Context, loanID string, requiredQuorum int, actorID string) (*domain.FinalizeOutcome, error) {
	args := m.Called(ctx, loanID, requiredQuorum, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FinalizeOutcome), args.Error(1)
}

func (m *MockCommitteeService) GenerateMinutes(ctx context.Context, loanID string) (*domain.MinutesOutcome, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MinutesOutcome), args.Error(1)
}

// Ensure mocks implement the interfaces
var (
	_ portssvc.GeneralLedgerFactory   = (*MockLedgerFactory)(nil)
	_ portssvc.GeneralLedgerSvcFacade = (*MockLedgerService)(nil)
	_ portssvc.GuarantorSvcFacade     = (*MockGuarantorService)(nil)
	_ portssvc.CommitteeSvcFacade     = (*MockCommitteeService)(nil)
)

// generateTestToken creates a signed JWT carrying the user and tenant claims.
func generateTestToken(userID, tenantID string) string {
	claims := middleware.SaccoClaims{
		TenantID: tenantID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "sacco-test",
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	if err != nil {
		panic(err)
	}
	return signed
}

// newTestRouter returns a router with the real AuthMiddleware on /api/v1.
func newTestRouter() (*gin.Engine, *gin.RouterGroup) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	return r, r.Group("/api/v1", middleware.AuthMiddleware(testJWTSecret, ""))
}

// doRequest serves an authenticated request. A nil body sends no payload.
func doRequest(r http.Handler, method, url string, body any) *httptest.ResponseRecorder {
	var payload *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			panic(err)
		}
		payload = bytes.NewReader(raw)
	} else {
		payload = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, url, payload)
	req.Header.Set("Authorization", "Bearer "+generateTestToken(testUserID, testTenantID))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
