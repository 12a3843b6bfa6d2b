package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	portssvc "github.com/ikymasie/KIKA-MONOREPO-sub003/internal/core/ports/services"
	"github.com/ikymasie/KIKA-MONOREPO-sub003/internal/dto"
	"github.com/ikymasie/KIKA-MONOREPO-sub003/internal/middleware"
)

const (
	dateLayout         = "2006-01-02"
	defaultLedgerLimit = 50
	maxLedgerPageLimit = 500
)

// ledgerHandler handles HTTP requests against the caller's tenant ledger.
type ledgerHandler struct {
	ledgers portssvc.GeneralLedgerFactory
}

func newLedgerHandler(ledgers portssvc.GeneralLedgerFactory) *ledgerHandler {
	return &ledgerHandler{ledgers: ledgers}
}

// RegisterLedgerRoutes registers the ledger and report routes. postMiddleware runs only on
// the posting endpoints.
func RegisterLedgerRoutes(rg *gin.RouterGroup, ledgers portssvc.GeneralLedgerFactory, postMiddleware ...gin.HandlerFunc) {
	h := newLedgerHandler(ledgers)

	ledger := rg.Group("/ledger")
	{
		ledger.GET("/accounts", h.listAccounts)
		ledger.POST("/accounts/initialize", h.initializeChart)
		ledger.POST("/transactions", chain(postMiddleware, h.postTransaction)...)
		ledger.POST("/events", chain(postMiddleware, h.postBusinessEvent)...)
		ledger.GET("/general-ledger", h.listGeneralLedger)

		reports := ledger.Group("/reports")
		reports.GET("/trial-balance", h.getTrialBalance)
		reports.GET("/balance-sheet", h.getBalanceSheet)
		reports.GET("/profit-and-loss", h.getProfitAndLoss)
	}
}

func chain(middlewares []gin.HandlerFunc, handler gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(middlewares)+1)
	out = append(out, middlewares...)
	return append(out, handler)
}

// ledgerFor resolves the tenant ledger of the authenticated caller.
func (h *ledgerHandler) ledgerFor(c *gin.Context) (portssvc.GeneralLedgerSvcFacade, string, *slog.Logger, bool) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, tenantID, ok := requireCaller(c, logger)
	if !ok {
		return nil, "", logger, false
	}
	logger = logger.With(slog.String("user_id", userID), slog.String("tenant_id", tenantID))
	return h.ledgers.ForTenant(tenantID), userID, logger, true
}

// listAccounts godoc
// @Summary List the chart of accounts
// @Description Lists every account of the caller's SACCO ordered by code
// @Tags ledger
// @Produce json
// @Success 200 {object} dto.ListAccountsResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list accounts"
// @Security BearerAuth
// @Router /ledger/accounts [get]
func (h *ledgerHandler) listAccounts(c *gin.Context) {
	ledger, _, logger, ok := h.ledgerFor(c)
	if !ok {
		return
	}

	accounts, err := ledger.ListAccounts(c.Request.Context())
	if err != nil {
		respondError(c, logger, err, "Failed to list accounts")
		return
	}

	c.JSON(http.StatusOK, dto.ListAccountsResponse{Accounts: dto.ToAccountResponses(accounts)})
}

// initializeChart godoc
// @Summary Initialize the standard chart of accounts
// @Description Creates any missing standard SACCO accounts. Existing accounts are left untouched.
// @Tags ledger
// @Produce json
// @Success 200 {object} dto.ListAccountsResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to initialize chart of accounts"
// @Security BearerAuth
// @Router /ledger/accounts/initialize [post]
func (h *ledgerHandler) initializeChart(c *gin.Context) {
	ledger, userID, logger, ok := h.ledgerFor(c)
	if !ok {
		return
	}
	logger.Info("Received request to initialize chart of accounts")

	accounts, err := ledger.InitializeChartOfAccounts(c.Request.Context(), userID)
	if err != nil {
		respondError(c, logger, err, "Failed to initialize chart of accounts")
		return
	}

	c.JSON(http.StatusOK, dto.ListAccountsResponse{Accounts: dto.ToAccountResponses(accounts)})
}

// postTransaction godoc
// @Summary Post a balanced transaction
// @Description Posts a transaction and its journal entries atomically. Debits must equal credits within 0.01.
// @Tags ledger
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Replays the first response for a repeated key"
// @Param transaction body dto.PostTransactionRequest true "Transaction details"
// @Success 201 {object} dto.TransactionResponse
// @Failure 400 {object} map[string]string "Invalid input or unbalanced entries"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 500 {object} map[string]string "Failed to post transaction"
// @Security BearerAuth
// @Router /ledger/transactions [post]
func (h *ledgerHandler) postTransaction(c *gin.Context) {
	ledger, userID, logger, ok := h.ledgerFor(c)
	if !ok {
		return
	}

	var req dto.PostTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for PostTransaction", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	logger.Info("Received request to post transaction",
		slog.String("transaction_type", string(req.TransactionType)),
		slog.Int("entry_count", len(req.Entries)))

	txn, err := ledger.PostTransaction(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to post transaction")
		return
	}

	c.JSON(http.StatusCreated, dto.ToTransactionResponse(txn))
}

// postBusinessEvent godoc
// @Summary Post a standard business event
// @Description Posts the standard double entry for a deposit, withdrawal, loan disbursement, loan repayment, insurance premium or merchandise purchase
// @Tags ledger
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Replays the first response for a repeated key"
// @Param event body dto.BusinessEventRequest true "Event details"
// @Success 201 {object} dto.TransactionResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Chart of accounts not initialized"
// @Failure 500 {object} map[string]string "Failed to post event"
// @Security BearerAuth
// @Router /ledger/events [post]
func (h *ledgerHandler) postBusinessEvent(c *gin.Context) {
	ledger, userID, logger, ok := h.ledgerFor(c)
	if !ok {
		return
	}

	var req dto.BusinessEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for PostBusinessEvent", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	logger.Info("Received request to post business event", slog.String("event_type", string(req.EventType)))

	txn, err := ledger.PostBusinessEvent(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to post event")
		return
	}

	c.JSON(http.StatusCreated, dto.ToTransactionResponse(txn))
}

// listGeneralLedger godoc
// @Summary List general ledger lines
// @Description Lists journal lines with their transaction headers, newest first, using token pagination
// @Tags ledger
// @Produce json
// @Param accountId query string false "Only lines posted to this account"
// @Param startDate query string false "Earliest transaction date (YYYY-MM-DD)"
// @Param endDate query string false "Latest transaction date (YYYY-MM-DD)"
// @Param limit query int false "Page size" default(50)
// @Param nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListGeneralLedgerResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list general ledger"
// @Security BearerAuth
// @Router /ledger/general-ledger [get]
func (h *ledgerHandler) listGeneralLedger(c *gin.Context) {
	ledger, _, logger, ok := h.ledgerFor(c)
	if !ok {
		return
	}

	params := dto.ListGeneralLedgerParams{Limit: defaultLedgerLimit}
	if v := c.Query("accountId"); v != "" {
		params.AccountID = &v
	}
	if v := c.Query("nextToken"); v != "" {
		params.NextToken = &v
	}
	if v := c.Query("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		params.Limit = min(limit, maxLedgerPageLimit)
	}
	var err error
	if params.StartDate, err = optionalDate(c, "startDate"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid startDate format. Use YYYY-MM-DD"})
		return
	}
	if params.EndDate, err = optionalDate(c, "endDate"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid endDate format. Use YYYY-MM-DD"})
		return
	}
	if params.EndDate != nil {
		// Inclusive of the whole end day
		end := params.EndDate.Add(24*time.Hour - time.Nanosecond)
		params.EndDate = &end
	}

	resp, err := ledger.ListGeneralLedger(c.Request.Context(), params)
	if err != nil {
		respondError(c, logger, err, "Failed to list general ledger")
		return
	}

	c.JSON(http.StatusOK, resp)
}

func optionalDate(c *gin.Context, key string) (*time.Time, error) {
	v := c.Query(key)
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
