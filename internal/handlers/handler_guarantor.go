package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	portssvc "github.com/ikymasie/KIKA-MONOREPO-sub003/internal/core/ports/services"
	"github.com/ikymasie/KIKA-MONOREPO-sub003/internal/dto"
	"github.com/ikymasie/KIKA-MONOREPO-sub003/internal/middleware"
	"github.com/shopspring/decimal"
)

// guarantorHandler handles HTTP requests for guarantor pledges.
type guarantorHandler struct {
	guarantorService portssvc.GuarantorSvcFacade
}

func newGuarantorHandler(gs portssvc.GuarantorSvcFacade) *guarantorHandler {
	return &guarantorHandler{guarantorService: gs}
}

// RegisterGuarantorRoutes registers the guarantor capacity and pledge routes.
func RegisterGuarantorRoutes(rg *gin.RouterGroup, guarantorService portssvc.GuarantorSvcFacade) {
	h := newGuarantorHandler(guarantorService)

	guarantors := rg.Group("/guarantors/:guarantorId")
	{
		guarantors.GET("/capacity", h.checkCapacity)
		guarantors.GET("/requests", h.listRequests)
		guarantors.POST("/loans/:loanId/lock", h.lockSavings)
		guarantors.POST("/loans/:loanId/release", h.releaseSavings)
		guarantors.POST("/loans/:loanId/respond", h.respond)
	}

	loans := rg.Group("/loans/:loanId")
	{
		loans.POST("/request-guarantors", h.requestGuarantors)
		loans.POST("/guarantors/notify", h.notifyGuarantors)
	}
}

// checkCapacity godoc
// @Summary Check guarantor capacity
// @Description Reports whether the member's unlocked savings cover the pledge amount
// @Tags guarantors
// @Produce json
// @Param guarantorId path string true "Guarantor member ID"
// @Param amount query number true "Pledge amount"
// @Success 200 {object} domain.CapacityCheck
// @Failure 400 {object} map[string]string "Invalid amount"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to check capacity"
// @Security BearerAuth
// @Router /guarantors/{guarantorId}/capacity [get]
func (h *guarantorHandler) checkCapacity(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	guarantorID := c.Param("guarantorId")

	amount, err := decimal.NewFromString(c.Query("amount"))
	if err != nil {
		logger.Warn("Invalid pledge amount", slog.String("amount", c.Query("amount")))
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount query parameter must be a number"})
		return
	}

	check, err := h.guarantorService.CheckGuarantorCapacity(c.Request.Context(), guarantorID, amount)
	if err != nil {
		respondError(c, logger, err, "Failed to check capacity")
		return
	}

	c.JSON(http.StatusOK, check)
}

// listRequests godoc
// @Summary List guarantor requests
// @Description Lists every guarantee record of the member, newest first
// @Tags guarantors
// @Produce json
// @Param guarantorId path string true "Guarantor member ID"
// @Success 200 {object} dto.GuarantorRequestsResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list guarantor requests"
// @Security BearerAuth
// @Router /guarantors/{guarantorId}/requests [get]
func (h *guarantorHandler) listRequests(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	requests, err := h.guarantorService.ListGuarantorRequests(c.Request.Context(), c.Param("guarantorId"))
	if err != nil {
		respondError(c, logger, err, "Failed to list guarantor requests")
		return
	}

	c.JSON(http.StatusOK, dto.GuarantorRequestsResponse{Requests: requests})
}

// lockSavings godoc
// @Summary Lock guarantor savings
// @Description Accepts the guarantee and locks the amount against the guarantor's savings
// @Tags guarantors
// @Accept json
// @Produce json
// @Param guarantorId path string true "Guarantor member ID"
// @Param loanId path string true "Loan ID"
// @Param request body dto.LockSavingsRequest true "Amount to lock"
// @Success 200 {object} domain.PledgeOutcome
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} domain.PledgeOutcome "Guarantor record not found"
// @Failure 422 {object} domain.PledgeOutcome "Insufficient capacity"
// @Failure 500 {object} map[string]string "Failed to lock savings"
// @Security BearerAuth
// @Router /guarantors/{guarantorId}/loans/{loanId}/lock [post]
func (h *guarantorHandler) lockSavings(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	guarantorID, loanID := c.Param("guarantorId"), c.Param("loanId")

	var req dto.LockSavingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for LockSavings", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	logger = logger.With(slog.String("guarantor_id", guarantorID), slog.String("loan_id", loanID))
	out, err := h.guarantorService.LockGuarantorSavings(c.Request.Context(), guarantorID, loanID, req.Amount)
	if err != nil {
		respondError(c, logger, err, "Failed to lock savings")
		return
	}

	c.JSON(outcomeStatus(out.Outcome), out)
}

// releaseSavings godoc
// @Summary Release guarantor savings
// @Description Releases the guarantee's pledge
// @Tags guarantors
// @Produce json
// @Param guarantorId path string true "Guarantor member ID"
// @Param loanId path string true "Loan ID"
// @Success 200 {object} domain.ReleaseOutcome
// @Failure 404 {object} domain.ReleaseOutcome "Guarantor record not found"
// @Failure 500 {object} map[string]string "Failed to release savings"
// @Security BearerAuth
// @Router /guarantors/{guarantorId}/loans/{loanId}/release [post]
func (h *guarantorHandler) releaseSavings(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	out, err := h.guarantorService.ReleaseGuarantorSavings(c.Request.Context(), c.Param("guarantorId"), c.Param("loanId"))
	if err != nil {
		respondError(c, logger, err, "Failed to release savings")
		return
	}

	c.JSON(outcomeStatus(out.Outcome), out)
}

// respond godoc
// @Summary Respond to a guarantor request
// @Description Accepts (locking the requested amount) or rejects a pending guarantor request
// @Tags guarantors
// @Accept json
// @Produce json
// @Param guarantorId path string true "Guarantor member ID"
// @Param loanId path string true "Loan ID"
// @Param request body dto.GuarantorResponseRequest true "accept or reject"
// @Success 200 {object} domain.PledgeOutcome
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} domain.PledgeOutcome "Guarantor record not found"
// @Failure 409 {object} domain.PledgeOutcome "Already responded"
// @Failure 422 {object} domain.PledgeOutcome "Insufficient capacity"
// @Security BearerAuth
// @Router /guarantors/{guarantorId}/loans/{loanId}/respond [post]
func (h *guarantorHandler) respond(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.GuarantorResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for guarantor response", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	accept := req.Action == dto.GuarantorActionAccept
	out, err := h.guarantorService.RespondToGuarantorRequest(c.Request.Context(), c.Param("guarantorId"), c.Param("loanId"), accept, req.Reason)
	if err != nil {
		respondError(c, logger, err, "Failed to record guarantor response")
		return
	}

	c.JSON(outcomeStatus(out.Outcome), out)
}

// requestGuarantors godoc
// @Summary Request guarantors for a loan
// @Description Moves a draft loan into guarantor staking and notifies its pending guarantors
// @Tags loans
// @Produce json
// @Param loanId path string true "Loan ID"
// @Success 200 {object} domain.PledgeRequestOutcome
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} domain.PledgeRequestOutcome "Loan not found"
// @Failure 409 {object} domain.PledgeRequestOutcome "Loan not in draft"
// @Failure 500 {object} map[string]string "Failed to request guarantors"
// @Security BearerAuth
// @Router /loans/{loanId}/request-guarantors [post]
func (h *guarantorHandler) requestGuarantors(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	out, err := h.guarantorService.RequestGuarantors(c.Request.Context(), c.Param("loanId"), userID)
	if err != nil {
		respondError(c, logger, err, "Failed to request guarantors")
		return
	}

	c.JSON(outcomeStatus(out.Outcome), out)
}

// notifyGuarantors godoc
// @Summary Notify pending guarantors
// @Description Sends a notification to every guarantor of the loan that has not yet responded
// @Tags loans
// @Produce json
// @Param loanId path string true "Loan ID"
// @Success 200 {object} domain.PledgeRequestOutcome
// @Failure 409 {object} domain.PledgeRequestOutcome "No pending guarantors"
// @Failure 500 {object} map[string]string "Failed to notify guarantors"
// @Security BearerAuth
// @Router /loans/{loanId}/guarantors/notify [post]
func (h *guarantorHandler) notifyGuarantors(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	out, err := h.guarantorService.RequestGuarantorPledges(c.Request.Context(), c.Param("loanId"))
	if err != nil {
		respondError(c, logger, err, "Failed to notify guarantors")
		return
	}

	c.JSON(outcomeStatus(out.Outcome), out)
}
