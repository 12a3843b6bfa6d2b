package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	portssvc "github.com/ikymasie/KIKA-MONOREPO-sub003/internal/core/ports/services"
	"github.com/ikymasie/KIKA-MONOREPO-sub003/internal/dto"
	"github.com/ikymasie/KIKA-MONOREPO-sub003/internal/middleware"
)

// committeeHandler handles HTTP requests for credit committee voting.
type committeeHandler struct {
	committeeService portssvc.CommitteeSvcFacade
}

func newCommitteeHandler(cs portssvc.CommitteeSvcFacade) *committeeHandler {
	return &committeeHandler{committeeService: cs}
}

// RegisterCommitteeRoutes registers the committee voting routes under /loans/:loanId.
func RegisterCommitteeRoutes(rg *gin.RouterGroup, committeeService portssvc.CommitteeSvcFacade, postMiddleware ...gin.HandlerFunc) {
	h := newCommitteeHandler(committeeService)

	loans := rg.Group("/loans/:loanId")
	{
		loans.POST("/committee-vote", chain(postMiddleware, h.recordVote)...)
		loans.GET("/committee-vote", h.listVotes)
		loans.POST("/committee/finalize", chain(postMiddleware, h.finalize)...)
		loans.GET("/committee/minutes", h.minutes)
	}
}

// recordVote godoc
// @Summary Record a committee vote
// @Description Stores or replaces the caller's vote. With finalize set, the decision is closed when quorum is met and minutes are returned.
// @Tags committee
// @Accept json
// @Produce json
// @Param loanId path string true "Loan ID"
// @Param request body dto.CommitteeVoteRequest true "Vote"
// @Success 200 {object} dto.CommitteeVoteResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} domain.Outcome "Loan not found"
// @Failure 409 {object} domain.Outcome "Loan not awaiting committee"
// @Failure 500 {object} map[string]string "Failed to record vote"
// @Security BearerAuth
// @Router /loans/{loanId}/committee-vote [post]
func (h *committeeHandler) recordVote(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	loanID := c.Param("loanId")

	var req dto.CommitteeVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for committee vote", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	logger = logger.With(slog.String("loan_id", loanID), slog.String("user_id", userID))
	out, err := h.committeeService.RecordVote(c.Request.Context(), loanID, userID, req.Vote, req.Notes)
	if err != nil {
		respondError(c, logger, err, "Failed to record vote")
		return
	}
	if !out.Success || !req.Finalize {
		c.JSON(outcomeStatus(*out), dto.CommitteeVoteResponse{Outcome: *out})
		return
	}

	decision, err := h.committeeService.FinalizeCommitteeDecision(c.Request.Context(), loanID, req.RequiredQuorum, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to finalize committee decision")
		return
	}
	resp := dto.CommitteeVoteResponse{Outcome: *out, Decision: decision}
	if !decision.Success {
		// The vote stands even though the decision could not be closed yet.
		logger.Info("Vote recorded, decision not finalized", slog.String("reason", string(decision.Reason)))
		c.JSON(http.StatusOK, resp)
		return
	}

	minutes, err := h.committeeService.GenerateMinutes(c.Request.Context(), loanID)
	if err != nil {
		respondError(c, logger, err, "Failed to generate committee minutes")
		return
	}
	resp.Minutes = minutes.Minutes

	c.JSON(http.StatusOK, resp)
}

// listVotes godoc
// @Summary List committee votes
// @Description Returns the loan's current votes and their tally against the configured quorum
// @Tags committee
// @Produce json
// @Param loanId path string true "Loan ID"
// @Success 200 {object} dto.CommitteeVotesResponse
// @Failure 404 {object} map[string]string "Loan not found"
// @Failure 500 {object} map[string]string "Failed to list votes"
// @Security BearerAuth
// @Router /loans/{loanId}/committee-vote [get]
func (h *committeeHandler) listVotes(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	votes, result, err := h.committeeService.ListVotes(c.Request.Context(), c.Param("loanId"))
	if err != nil {
		respondError(c, logger, err, "Failed to list votes")
		return
	}

	c.JSON(http.StatusOK, dto.CommitteeVotesResponse{Votes: votes, Result: result})
}

// finalize godoc
// @Summary Finalize a committee decision
// @Description Approves or rejects the loan once the quorum of votes is reached
// @Tags committee
// @Accept json
// @Produce json
// @Param loanId path string true "Loan ID"
// @Param request body dto.FinalizeCommitteeRequest false "Quorum override"
// @Success 200 {object} domain.FinalizeOutcome
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} domain.FinalizeOutcome "Loan not found"
// @Failure 409 {object} domain.FinalizeOutcome "Quorum not met or already decided"
// @Failure 500 {object} map[string]string "Failed to finalize committee decision"
// @Security BearerAuth
// @Router /loans/{loanId}/committee/finalize [post]
func (h *committeeHandler) finalize(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req dto.FinalizeCommitteeRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.Warn("Failed to bind JSON for committee finalize", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
			return
		}
	}

	out, err := h.committeeService.FinalizeCommitteeDecision(c.Request.Context(), c.Param("loanId"), req.RequiredQuorum, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to finalize committee decision")
		return
	}

	c.JSON(outcomeStatus(out.Outcome), out)
}

// minutes godoc
// @Summary Generate committee minutes
// @Description Builds the minutes of the committee's deliberation on a loan
// @Tags committee
// @Produce json
// @Param loanId path string true "Loan ID"
// @Success 200 {object} domain.MinutesOutcome
// @Failure 404 {object} domain.MinutesOutcome "Loan not found"
// @Failure 500 {object} map[string]string "Failed to generate committee minutes"
// @Security BearerAuth
// @Router /loans/{loanId}/committee/minutes [get]
func (h *committeeHandler) minutes(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	out, err := h.committeeService.GenerateMinutes(c.Request.Context(), c.Param("loanId"))
	if err != nil {
		respondError(c, logger, err, "Failed to generate committee minutes")
		return
	}

	c.JSON(outcomeStatus(out.Outcome), out)
}
