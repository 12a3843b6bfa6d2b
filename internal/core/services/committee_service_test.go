package services_test

import (
	"context"
	"testing"

	"github.com/ikymasie/KIKA-MONOREPO-sub003/internal/apperrors"
	"github.com/ikymasie/KIKA-MONOREPO-sub003/internal/core/domain"
	portssvc "github.com/ikymasie/KIKA-MONOREPO-sub003/internal/core/ports/services"
	"github.com/ikymasie/KIKA-MONOREPO-sub003/internal/core/services"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type CommitteeServiceTestSuite struct {
	suite.Suite
	mockLoanRepo      *MockLoanRepository
	mockCommitteeRepo *MockCommitteeRepository
	committeeService  portssvc.CommitteeSvcFacade
	ctx               context.Context
}

func (s *CommitteeServiceTestSuite) SetupTest() {
	s.mockLoanRepo = new(MockLoanRepository)
	s.mockCommitteeRepo = new(MockCommitteeRepository)
	s.committeeService = services.NewCommitteeService(s.mockLoanRepo, s.mockCommitteeRepo, 0, services.WithClock(fixedClock))
	s.ctx = context.Background()
}

func (s *CommitteeServiceTestSuite) TearDownTest() {
	s.mockLoanRepo.AssertExpectations(s.T())
	s.mockCommitteeRepo.AssertExpectations(s.T())
}

func TestCommitteeServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CommitteeServiceTestSuite))
}

func awaitingLoan(loanID string) *domain.Loan {
	return &domain.Loan{
		LoanID:          loanID,
		LoanNumber:      "LN-0042",
		PrincipalAmount: dec("25000"),
		InterestRate:    dec("12.5"),
		TermMonths:      24,
		Status:          domain.LoanAwaitingCommittee,
		WorkflowStage:   domain.StageCommitteeApproval,
	}
}

func votes(loanID string, choices ...domain.VoteChoice) []domain.CommitteeVote {
	out := make([]domain.CommitteeVote, len(choices))
	for i, c := range choices {
		out[i] = domain.CommitteeVote{LoanID: loanID, UserID: string(rune('a' + i)), Vote: c, Timestamp: fixedNow}
	}
	return out
}

func (s *CommitteeServiceTestSuite) TestRecordVote_Success() {
	expectTx(&s.mockLoanRepo.Mock, true)
	s.mockLoanRepo.On("FindLoanByIDForUpdate", s.ctx, mock.Anything, "loan-1").Return(awaitingLoan("loan-1"), nil).Once()
	s.mockCommitteeRepo.On("UpsertVoteInTx", s.ctx, mock.Anything, mock.MatchedBy(func(v domain.CommitteeVote) bool {
		return v.LoanID == "loan-1" && v.UserID == "member-a" && v.Vote == domain.VoteApprove && v.Timestamp.Equal(fixedNow)
	})).Return(nil).Once()
	var logged domain.LoanWorkflowLog
	s.mockLoanRepo.On("AppendWorkflowLogInTx", s.ctx, mock.Anything, mock.AnythingOfType("domain.LoanWorkflowLog")).
		Run(func(args mock.Arguments) { logged = args.Get(2).(domain.LoanWorkflowLog) }).
		Return(nil).Once()

	notes := "Strong repayment history"
	out, err := s.committeeService.RecordVote(s.ctx, "loan-1", "member-a", domain.VoteApprove, &notes)
	s.Require().NoError(err)
	s.True(out.Success)
	s.Equal("Vote recorded: approve", out.Message)
	s.Equal(domain.ActionCommitteeVote, logged.ActionType)
	s.Equal("Voted: approve - Strong repayment history", logged.Notes)
	s.Equal("member-a", logged.ActionBy)
	s.Equal(domain.VoteApprove, logged.Metadata["vote"])
}

func (s *CommitteeServiceTestSuite) TestRecordVote_WithoutNotes() {
	expectTx(&s.mockLoanRepo.Mock, true)
	s.mockLoanRepo.On("FindLoanByIDForUpdate", s.ctx, mock.Anything, "loan-1").Return(awaitingLoan("loan-1"), nil).Once()
	s.mockCommitteeRepo.On("UpsertVoteInTx", s.ctx, mock.Anything, mock.Anything).Return(nil).Once()
	s.mockLoanRepo.On("AppendWorkflowLogInTx", s.ctx, mock.Anything, mock.MatchedBy(func(l domain.LoanWorkflowLog) bool {
		return l.Notes == "Voted: reject"
	})).Return(nil).Once()

	out, err := s.committeeService.RecordVote(s.ctx, "loan-1", "member-a", domain.VoteReject, nil)
	s.Require().NoError(err)
	s.Equal("Vote recorded: reject", out.Message)
}

func (s *CommitteeServiceTestSuite) TestRecordVote_WrongStatus() {
	expectTx(&s.mockLoanRepo.Mock, false)
	loan := awaitingLoan("loan-1")
	loan.Status = domain.LoanDraft
	s.mockLoanRepo.On("FindLoanByIDForUpdate", s.ctx, mock.Anything, "loan-1").Return(loan, nil).Once()

	out, err := s.committeeService.RecordVote(s.ctx, "loan-1", "member-a", domain.VoteApprove, nil)
	s.Require().NoError(err)
	s.False(out.Success)
	s.Equal(domain.ReasonInvalidState, out.Reason)
	s.Equal("Cannot vote on loan with status: draft", out.Message)
	s.mockCommitteeRepo.AssertNotCalled(s.T(), "UpsertVoteInTx", mock.Anything, mock.Anything, mock.Anything)
}

func (s *CommitteeServiceTestSuite) TestRecordVote_LoanNotFound() {
	expectTx(&s.mockLoanRepo.Mock, false)
	s.mockLoanRepo.On("FindLoanByIDForUpdate", s.ctx, mock.Anything, "ghost").
		Return(nil, apperrors.NewNotFoundError("loan ghost not found")).Once()

	out, err := s.committeeService.RecordVote(s.ctx, "ghost", "member-a", domain.VoteApprove, nil)
	s.Require().NoError(err)
	s.False(out.Success)
	s.Equal("Loan not found", out.Message)
}

func (s *CommitteeServiceTestSuite) TestRecordVote_InvalidInput() {
	_, err := s.committeeService.RecordVote(s.ctx, "loan-1", "member-a", domain.VoteChoice("abstain"), nil)
	s.ErrorIs(err, apperrors.ErrValidation)

	_, err = s.committeeService.RecordVote(s.ctx, "loan-1", "", domain.VoteApprove, nil)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *CommitteeServiceTestSuite) TestListVotes() {
	s.mockLoanRepo.On("FindLoanByID", s.ctx, "loan-1").Return(awaitingLoan("loan-1"), nil).Once()
	s.mockCommitteeRepo.On("ListVotesByLoan", s.ctx, "loan-1").
		Return(votes("loan-1", domain.VoteApprove, domain.VoteReject), nil).Once()

	list, result, err := s.committeeService.ListVotes(s.ctx, "loan-1")
	s.Require().NoError(err)
	s.Len(list, 2)
	s.Equal(2, result.TotalVotes)
	s.Equal(domain.DefaultCommitteeQuorum, result.RequiredQuorum)
	s.False(result.QuorumMet)
}

func (s *CommitteeServiceTestSuite) TestListVotes_LoanNotFound() {
	s.mockLoanRepo.On("FindLoanByID", s.ctx, "ghost").Return(nil, apperrors.NewNotFoundError("loan ghost not found")).Once()

	_, _, err := s.committeeService.ListVotes(s.ctx, "ghost")
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *CommitteeServiceTestSuite) TestFinalize_QuorumNotMet() {
	expectTx(&s.mockLoanRepo.Mock, false)
	s.mockLoanRepo.On("FindLoanByIDForUpdate", s.ctx, mock.Anything, "loan-1").Return(awaitingLoan("loan-1"), nil).Once()
	s.mockCommitteeRepo.On("ListVotesByLoanInTx", s.ctx, mock.Anything, "loan-1").
		Return(votes("loan-1", domain.VoteApprove, domain.VoteApprove), nil).Once()

	out, err := s.committeeService.FinalizeCommitteeDecision(s.ctx, "loan-1", 0, "chair")
	s.Require().NoError(err)
	s.False(out.Success)
	s.Equal(domain.ReasonQuorumNotMet, out.Reason)
	s.Equal("Quorum not met. Need 3 votes, have 2", out.Message)
	s.mockLoanRepo.AssertNotCalled(s.T(), "UpdateLoanStatusInTx", mock.Anything, mock.Anything, mock.Anything)
}

func (s *CommitteeServiceTestSuite) TestFinalize_Approved() {
	expectTx(&s.mockLoanRepo.Mock, true)
	s.mockLoanRepo.On("FindLoanByIDForUpdate", s.ctx, mock.Anything, "loan-1").Return(awaitingLoan("loan-1"), nil).Once()
	s.mockCommitteeRepo.On("ListVotesByLoanInTx", s.ctx, mock.Anything, "loan-1").
		Return(votes("loan-1", domain.VoteApprove, domain.VoteApprove, domain.VoteReject), nil).Once()
	s.mockLoanRepo.On("UpdateLoanStatusInTx", s.ctx, mock.Anything, mock.MatchedBy(func(c domain.LoanStatusChange) bool {
		return c.ExpectedStatus == domain.LoanAwaitingCommittee &&
			c.Status == domain.LoanCommitteeApproved &&
			c.WorkflowStage == domain.StageDisbursement &&
			c.CommitteeApprovalDate != nil && c.CommitteeApprovalDate.Equal(fixedNow) &&
			c.CommitteeQuorum != nil && *c.CommitteeQuorum == 3
	})).Return(true, nil).Once()
	s.mockLoanRepo.On("AppendWorkflowLogInTx", s.ctx, mock.Anything, mock.MatchedBy(func(l domain.LoanWorkflowLog) bool {
		return l.ActionType == domain.ActionStatusChange && l.Notes == "Committee approved (2/3 votes)" &&
			l.Metadata["requiredQuorum"] == 3
	})).Return(nil).Once()

	out, err := s.committeeService.FinalizeCommitteeDecision(s.ctx, "loan-1", 0, "chair")
	s.Require().NoError(err)
	s.True(out.Success)
	s.Equal("Loan approved by committee", out.Message)
	s.True(out.Result.Approved)
	s.Require().NotNil(out.Loan)
	s.Equal(domain.LoanCommitteeApproved, out.Loan.Status)
	s.Equal(domain.StageDisbursement, out.Loan.WorkflowStage)
	s.Require().NotNil(out.Loan.CommitteeQuorum)
	s.Equal(3, *out.Loan.CommitteeQuorum)
}

func (s *CommitteeServiceTestSuite) TestFinalize_Rejected() {
	expectTx(&s.mockLoanRepo.Mock, true)
	s.mockLoanRepo.On("FindLoanByIDForUpdate", s.ctx, mock.Anything, "loan-1").Return(awaitingLoan("loan-1"), nil).Once()
	s.mockCommitteeRepo.On("ListVotesByLoanInTx", s.ctx, mock.Anything, "loan-1").
		Return(votes("loan-1", domain.VoteReject, domain.VoteApprove, domain.VoteReject), nil).Once()
	s.mockLoanRepo.On("UpdateLoanStatusInTx", s.ctx, mock.Anything, mock.MatchedBy(func(c domain.LoanStatusChange) bool {
		return c.Status == domain.LoanRejected && c.RejectionReason != nil &&
			*c.RejectionReason == "Rejected by credit committee (2 reject votes vs 1 approve votes)"
	})).Return(true, nil).Once()
	s.mockLoanRepo.On("AppendWorkflowLogInTx", s.ctx, mock.Anything, mock.MatchedBy(func(l domain.LoanWorkflowLog) bool {
		return l.Notes == "Committee rejected (2/3 votes)"
	})).Return(nil).Once()

	out, err := s.committeeService.FinalizeCommitteeDecision(s.ctx, "loan-1", 0, "chair")
	s.Require().NoError(err)
	s.True(out.Success)
	s.Equal("Loan rejected by committee", out.Message)
	s.Equal(domain.LoanRejected, out.Loan.Status)
}

func (s *CommitteeServiceTestSuite) TestFinalize_TieRejects() {
	expectTx(&s.mockLoanRepo.Mock, true)
	s.mockLoanRepo.On("FindLoanByIDForUpdate", s.ctx, mock.Anything, "loan-1").Return(awaitingLoan("loan-1"), nil).Once()
	s.mockCommitteeRepo.On("ListVotesByLoanInTx", s.ctx, mock.Anything, "loan-1").
		Return(votes("loan-1", domain.VoteApprove, domain.VoteReject, domain.VoteApprove, domain.VoteReject), nil).Once()
	s.mockLoanRepo.On("UpdateLoanStatusInTx", s.ctx, mock.Anything, mock.MatchedBy(func(c domain.LoanStatusChange) bool {
		return c.Status == domain.LoanRejected
	})).Return(true, nil).Once()
	s.mockLoanRepo.On("AppendWorkflowLogInTx", s.ctx, mock.Anything, mock.Anything).Return(nil).Once()

	out, err := s.committeeService.FinalizeCommitteeDecision(s.ctx, "loan-1", 3, "chair")
	s.Require().NoError(err)
	s.False(out.Result.Approved)
	s.Equal("Loan rejected by committee", out.Message)
}

func (s *CommitteeServiceTestSuite) TestFinalize_AlreadyDecided() {
	expectTx(&s.mockLoanRepo.Mock, false)
	loan := awaitingLoan("loan-1")
	loan.Status = domain.LoanCommitteeApproved
	s.mockLoanRepo.On("FindLoanByIDForUpdate", s.ctx, mock.Anything, "loan-1").Return(loan, nil).Once()
	s.mockCommitteeRepo.On("ListVotesByLoanInTx", s.ctx, mock.Anything, "loan-1").
		Return(votes("loan-1", domain.VoteApprove, domain.VoteApprove, domain.VoteApprove), nil).Once()

	out, err := s.committeeService.FinalizeCommitteeDecision(s.ctx, "loan-1", 0, "chair")
	s.Require().NoError(err)
	s.False(out.Success)
	s.Equal(domain.ReasonInvalidState, out.Reason)
	s.Equal("Loan is no longer awaiting committee decision (status: committee_approved)", out.Message)
}

func (s *CommitteeServiceTestSuite) TestFinalize_LostRace() {
	expectTx(&s.mockLoanRepo.Mock, false)
	s.mockLoanRepo.On("FindLoanByIDForUpdate", s.ctx, mock.Anything, "loan-1").Return(awaitingLoan("loan-1"), nil).Once()
	s.mockCommitteeRepo.On("ListVotesByLoanInTx", s.ctx, mock.Anything, "loan-1").
		Return(votes("loan-1", domain.VoteApprove, domain.VoteApprove, domain.VoteApprove), nil).Once()
	s.mockLoanRepo.On("UpdateLoanStatusInTx", s.ctx, mock.Anything, mock.Anything).Return(false, nil).Once()
	decided := awaitingLoan("loan-1")
	decided.Status = domain.LoanRejected
	s.mockLoanRepo.On("FindLoanByIDForUpdate", s.ctx, mock.Anything, "loan-1").Return(decided, nil).Once()

	out, err := s.committeeService.FinalizeCommitteeDecision(s.ctx, "loan-1", 0, "chair")
	s.Require().NoError(err)
	s.False(out.Success)
	s.Equal("Loan is no longer awaiting committee decision (status: rejected)", out.Message)
	s.mockLoanRepo.AssertNotCalled(s.T(), "AppendWorkflowLogInTx", mock.Anything, mock.Anything, mock.Anything)
}

func (s *CommitteeServiceTestSuite) TestGenerateMinutes() {
	approvedAt := fixedNow.AddDate(0, 0, -1)
	loan := awaitingLoan("loan-1")
	loan.Status = domain.LoanCommitteeApproved
	loan.CommitteeApprovalDate = &approvedAt
	loan.Member = &domain.Member{FullName: "Kagiso Molefe", MemberNumber: "M-0007"}
	loan.Product = &domain.LoanProduct{Name: "Emergency Loan"}
	s.mockLoanRepo.On("FindLoanWithRelations", s.ctx, "loan-1").Return(loan, nil).Once()
	s.mockCommitteeRepo.On("ListVotesByLoan", s.ctx, "loan-1").
		Return(votes("loan-1", domain.VoteApprove, domain.VoteApprove, domain.VoteReject), nil).Once()

	out, err := s.committeeService.GenerateMinutes(s.ctx, "loan-1")
	s.Require().NoError(err)
	s.True(out.Success)
	m := out.Minutes
	s.Equal("LN-0042", m.LoanNumber)
	s.Equal("Kagiso Molefe", m.Member.Name)
	s.Equal("M-0007", m.Member.MemberNumber)
	s.Equal("Emergency Loan", m.LoanDetails.Product)
	s.Equal(25000.0, m.LoanDetails.PrincipalAmount)
	s.Equal(12.5, m.LoanDetails.InterestRate)
	s.Equal(approvedAt, m.CommitteeVoting.MeetingDate)
	s.Equal(domain.DecisionApproved, m.CommitteeVoting.Decision)
	s.Len(m.CommitteeVoting.Votes, 3)
	s.Equal(fixedNow, m.GeneratedAt)
}

func (s *CommitteeServiceTestSuite) TestGenerateMinutes_UsesRecordedQuorum() {
	quorum := 2
	loan := awaitingLoan("loan-1")
	loan.Status = domain.LoanCommitteeApproved
	loan.CommitteeQuorum = &quorum
	s.mockLoanRepo.On("FindLoanWithRelations", s.ctx, "loan-1").Return(loan, nil).Once()
	s.mockCommitteeRepo.On("ListVotesByLoan", s.ctx, "loan-1").
		Return(votes("loan-1", domain.VoteApprove, domain.VoteApprove), nil).Once()

	out, err := s.committeeService.GenerateMinutes(s.ctx, "loan-1")
	s.Require().NoError(err)
	s.True(out.Minutes.CommitteeVoting.QuorumMet)
	s.Equal(domain.DecisionApproved, out.Minutes.CommitteeVoting.Decision)
}

func (s *CommitteeServiceTestSuite) TestGenerateMinutes_DecisionFollowsLoanStatus() {
	tests := []struct {
		name    string
		status  domain.LoanStatus
		choices []domain.VoteChoice
		want    string
	}{
		{"approved without a recorded quorum", domain.LoanCommitteeApproved, []domain.VoteChoice{domain.VoteApprove, domain.VoteApprove}, domain.DecisionApproved},
		{"rejected", domain.LoanRejected, []domain.VoteChoice{domain.VoteApprove, domain.VoteApprove, domain.VoteApprove}, domain.DecisionRejected},
		{"still awaiting committee", domain.LoanAwaitingCommittee, []domain.VoteChoice{domain.VoteApprove, domain.VoteApprove, domain.VoteApprove}, domain.DecisionApproved},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			loan := awaitingLoan("loan-1")
			loan.Status = tt.status
			s.mockLoanRepo.On("FindLoanWithRelations", s.ctx, "loan-1").Return(loan, nil).Once()
			s.mockCommitteeRepo.On("ListVotesByLoan", s.ctx, "loan-1").Return(votes("loan-1", tt.choices...), nil).Once()

			out, err := s.committeeService.GenerateMinutes(s.ctx, "loan-1")
			s.Require().NoError(err)
			s.Equal(tt.want, out.Minutes.CommitteeVoting.Decision)
		})
	}
}

func (s *CommitteeServiceTestSuite) TestGenerateMinutes_NoVotes() {
	s.mockLoanRepo.On("FindLoanWithRelations", s.ctx, "loan-1").Return(awaitingLoan("loan-1"), nil).Once()
	s.mockCommitteeRepo.On("ListVotesByLoan", s.ctx, "loan-1").Return([]domain.CommitteeVote{}, nil).Once()

	out, err := s.committeeService.GenerateMinutes(s.ctx, "loan-1")
	s.Require().NoError(err)
	s.Equal(fixedNow, out.Minutes.CommitteeVoting.MeetingDate)
	s.Equal(domain.DecisionRejected, out.Minutes.CommitteeVoting.Decision)
	s.Empty(out.Minutes.CommitteeVoting.Votes)
}

func (s *CommitteeServiceTestSuite) TestGenerateMinutes_LoanNotFound() {
	s.mockLoanRepo.On("FindLoanWithRelations", s.ctx, "ghost").Return(nil, apperrors.NewNotFoundError("loan ghost not found")).Once()

	out, err := s.committeeService.GenerateMinutes(s.ctx, "ghost")
	s.Require().NoError(err)
	s.False(out.Success)
	s.Equal("Loan not found", out.Message)
}
