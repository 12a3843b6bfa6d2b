package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikymasie/KIKA-MONOREPO-sub003/internal/core/domain"
	"github.com/ikymasie/KIKA-MONOREPO-sub003/internal/dto"
)

// getTrialBalance godoc
// @Summary Generate trial balance report
// @Description Lists every account with its current balance in the debit or credit column
// @Tags reports
// @Produce json
// @Param asOf query string false "Report date (YYYY-MM-DD)" default(current date)
// @Success 200 {object} dto.TrialBalanceResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to generate report"
// @Security BearerAuth
// @Router /ledger/reports/trial-balance [get]
func (h *ledgerHandler) getTrialBalance(c *gin.Context) {
	ledger, _, logger, ok := h.ledgerFor(c)
	if !ok {
		return
	}

	// Parse asOf date parameter
	asOfStr := c.DefaultQuery("asOf", time.Now().Format(dateLayout))
	asOf, err := time.Parse(dateLayout, asOfStr)
	if err != nil {
		logger.Warn("Invalid asOf date format", slog.String("asOf", asOfStr), slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format. Use YYYY-MM-DD"})
		return
	}

	logger = logger.With(slog.String("asOf", asOfStr))
	logger.Info("Received request to generate trial balance report")

	rows, err := ledger.GetTrialBalance(c.Request.Context(), &asOf)
	if err != nil {
		respondError(c, logger, err, "Failed to generate trial balance report")
		return
	}

	logger.Info("Trial balance report generated successfully", slog.Int("row_count", len(rows)))
	c.JSON(http.StatusOK, dto.ToTrialBalanceResponse(rows, asOf))
}

// getProfitAndLoss godoc
// @Summary Generate profit and loss report
// @Description Groups revenue and expense accounts. The balance basis reports cumulative balances; the period basis sums postings dated within the range.
// @Tags reports
// @Produce json
// @Param startDate query string false "Start date (YYYY-MM-DD)" default(first day of current month)
// @Param endDate query string false "End date (YYYY-MM-DD)" default(current date)
// @Param basis query string false "balance or period" default(balance)
// @Success 200 {object} dto.ProfitAndLossResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to generate report"
// @Security BearerAuth
// @Router /ledger/reports/profit-and-loss [get]
func (h *ledgerHandler) getProfitAndLoss(c *gin.Context) {
	ledger, _, logger, ok := h.ledgerFor(c)
	if !ok {
		return
	}

	now := time.Now()

	// Default from date is first day of current month
	firstDayOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	fromStr := c.DefaultQuery("startDate", firstDayOfMonth.Format(dateLayout))
	from, err := time.Parse(dateLayout, fromStr)
	if err != nil {
		logger.Warn("Invalid start date format", slog.String("startDate", fromStr), slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid startDate format. Use YYYY-MM-DD"})
		return
	}

	toStr := c.DefaultQuery("endDate", now.Format(dateLayout))
	to, err := time.Parse(dateLayout, toStr)
	if err != nil {
		logger.Warn("Invalid end date format", slog.String("endDate", toStr), slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid endDate format. Use YYYY-MM-DD"})
		return
	}

	if from.After(to) {
		logger.Warn("Invalid date range", slog.String("startDate", fromStr), slog.String("endDate", toStr))
		c.JSON(http.StatusBadRequest, gin.H{"error": "startDate must be before or equal to endDate"})
		return
	}

	basis := c.DefaultQuery("basis", dto.BasisBalance)
	logger = logger.With(
		slog.String("startDate", fromStr),
		slog.String("endDate", toStr),
		slog.String("basis", basis),
	)
	logger.Info("Received request to generate profit and loss report")

	var report *domain.ProfitAndLossReport
	switch basis {
	case dto.BasisBalance:
		report, err = ledger.GetProfitAndLoss(c.Request.Context(), from, to)
	case dto.BasisPeriod:
		// Include the whole end day
		report, err = ledger.GetPeriodProfitAndLoss(c.Request.Context(), from, to.Add(24*time.Hour-time.Nanosecond))
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "basis must be balance or period"})
		return
	}
	if err != nil {
		respondError(c, logger, err, "Failed to generate profit and loss report")
		return
	}

	logger.Info("Profit and loss report generated successfully",
		slog.Int("revenue_accounts", len(report.Revenue)),
		slog.Int("expense_accounts", len(report.Expenses)))
	c.JSON(http.StatusOK, dto.ToProfitAndLossResponse(report, basis, from, to))
}

// getBalanceSheet godoc
// @Summary Generate balance sheet report
// @Description Groups asset, liability and equity accounts with their current balances
// @Tags reports
// @Produce json
// @Param asOf query string false "Report date (YYYY-MM-DD)" default(current date)
// @Success 200 {object} dto.BalanceSheetResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to generate report"
// @Security BearerAuth
// @Router /ledger/reports/balance-sheet [get]
func (h *ledgerHandler) getBalanceSheet(c *gin.Context) {
	ledger, _, logger, ok := h.ledgerFor(c)
	if !ok {
		return
	}

	asOfStr := c.DefaultQuery("asOf", time.Now().Format(dateLayout))
	asOf, err := time.Parse(dateLayout, asOfStr)
	if err != nil {
		logger.Warn("Invalid asOf date format", slog.String("asOf", asOfStr), slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format. Use YYYY-MM-DD"})
		return
	}

	logger = logger.With(slog.String("asOf", asOfStr))
	logger.Info("Received request to generate balance sheet report")

	report, err := ledger.GetBalanceSheet(c.Request.Context(), asOf)
	if err != nil {
		respondError(c, logger, err, "Failed to generate balance sheet report")
		return
	}

	logger.Info("Balance sheet report generated successfully",
		slog.Int("asset_accounts", len(report.Assets)),
		slog.Int("liability_accounts", len(report.Liabilities)),
		slog.Int("equity_accounts", len(report.Equity)))
	c.JSON(http.StatusOK, dto.ToBalanceSheetResponse(report, asOf))
}
