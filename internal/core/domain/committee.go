package domain

import "time"

// DefaultCommitteeQuorum is the number of votes needed when no quorum is configured.
const DefaultCommitteeQuorum = 3

// VoteChoice is a committee member's decision on a loan.
type VoteChoice string

const (
	VoteApprove VoteChoice = "approve"
	VoteReject  VoteChoice = "reject"
)

// IsValid reports whether v is approve or reject.
func (v VoteChoice) IsValid() bool {
	return v == VoteApprove || v == VoteReject
}

// CommitteeVote is one member's current vote on a loan. At most one exists per (loan, user).
type CommitteeVote struct {
	LoanID    string     `json:"loanID"`
	UserID    string     `json:"userId"`
	Vote      VoteChoice `json:"vote"`
	Notes     *string    `json:"notes,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}

// VoteResult is the tally of a loan's committee votes against a quorum.
type VoteResult struct {
	Approved       bool `json:"approved"`
	TotalVotes     int  `json:"totalVotes"`
	ApproveVotes   int  `json:"approveVotes"`
	RejectVotes    int  `json:"rejectVotes"`
	QuorumMet      bool `json:"quorumMet"`
	RequiredQuorum int  `json:"requiredQuorum"`
}

// CalculateVoteResult tallies votes. Every cast vote counts toward quorum and approval
// needs a strict approve majority; ties do not approve.
func CalculateVoteResult(votes []CommitteeVote, requiredQuorum int) VoteResult {
	if requiredQuorum <= 0 {
		requiredQuorum = DefaultCommitteeQuorum
	}
	result := VoteResult{TotalVotes: len(votes), RequiredQuorum: requiredQuorum}
	for _, v := range votes {
		switch v.Vote {
		case VoteApprove:
			result.ApproveVotes++
		case VoteReject:
			result.RejectVotes++
		}
	}
	result.QuorumMet = result.TotalVotes >= requiredQuorum
	result.Approved = result.QuorumMet && result.ApproveVotes > result.RejectVotes
	return result
}

// Committee decisions recorded in minutes.
const (
	DecisionApproved = "APPROVED"
	DecisionRejected = "REJECTED"
)

// MinutesMember identifies the applicant in committee minutes.
type MinutesMember struct {
	Name         string `json:"name"`
	MemberNumber string `json:"memberNumber"`
}

// MinutesLoanDetails summarises loan economics in committee minutes.
type MinutesLoanDetails struct {
	Product         string  `json:"product"`
	PrincipalAmount float64 `json:"principalAmount"`
	TermMonths      int     `json:"termMonths"`
	InterestRate    float64 `json:"interestRate"`
}

// MinutesVote is a single vote as recorded in minutes.
type MinutesVote struct {
	VoterID   string     `json:"voterId"`
	Vote      VoteChoice `json:"vote"`
	Notes     *string    `json:"notes,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}

// MinutesVoting is the voting section of committee minutes.
type MinutesVoting struct {
	MeetingDate  time.Time     `json:"meetingDate"`
	TotalVotes   int           `json:"totalVotes"`
	ApproveVotes int           `json:"approveVotes"`
	RejectVotes  int           `json:"rejectVotes"`
	QuorumMet    bool          `json:"quorumMet"`
	Decision     string        `json:"decision"`
	Votes        []MinutesVote `json:"votes"`
}

// CommitteeMinutes is the documentary snapshot of a committee's decision on a loan.
type CommitteeMinutes struct {
	LoanNumber      string             `json:"loanNumber"`
	Member          MinutesMember      `json:"member"`
	LoanDetails     MinutesLoanDetails `json:"loanDetails"`
	CommitteeVoting MinutesVoting      `json:"committeeVoting"`
	GeneratedAt     time.Time          `json:"generatedAt"`
}
