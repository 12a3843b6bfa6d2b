package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels.
const (
	ResultSuccess  = "success"
	ResultRejected = "rejected"
	ResultError    = "error"
)

// WorkflowMetrics counts ledger postings and loan workflow actions. A nil
// *WorkflowMetrics is valid and records nothing.
type WorkflowMetrics struct {
	postings        *prometheus.CounterVec
	postingDuration *prometheus.HistogramVec
	votes           *prometheus.CounterVec
	decisions       *prometheus.CounterVec
	pledges         *prometheus.CounterVec
	notifications   *prometheus.CounterVec
}

// NewWorkflowMetrics registers the workflow metrics on the provided registerer.
func NewWorkflowMetrics(reg prometheus.Registerer) *WorkflowMetrics {
	if reg == nil {
		return &WorkflowMetrics{}
	}
	m := &WorkflowMetrics{
		postings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_postings_total",
			Help: "Ledger posting attempts by transaction type and result.",
		}, []string{"transaction_type", "result"}),
		postingDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ledger_posting_duration_seconds",
			Help:    "Duration of successful ledger postings in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"transaction_type"}),
		votes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "committee_votes_total",
			Help: "Committee votes recorded by choice.",
		}, []string{"vote"}),
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "committee_decisions_total",
			Help: "Committee finalisation attempts by decision.",
		}, []string{"decision"}),
		pledges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "guarantor_pledges_total",
			Help: "Guarantor savings lock attempts by result.",
		}, []string{"result"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "guarantor_notifications_total",
			Help: "Guarantor notifications by result.",
		}, []string{"result"}),
	}
	reg.MustRegister(m.postings, m.postingDuration, m.votes, m.decisions, m.pledges, m.notifications)
	return m
}

// ObservePosting records a posting attempt. duration is only observed for successes.
func (m *WorkflowMetrics) ObservePosting(transactionType, result string, duration time.Duration) {
	if m == nil || m.postings == nil {
		return
	}
	transactionType = normalizeLabel(transactionType)
	m.postings.WithLabelValues(transactionType, result).Inc()
	if result == ResultSuccess {
		m.postingDuration.WithLabelValues(transactionType).Observe(duration.Seconds())
	}
}

// IncVote records a committee vote.
func (m *WorkflowMetrics) IncVote(vote string) {
	if m == nil || m.votes == nil {
		return
	}
	m.votes.WithLabelValues(normalizeLabel(vote)).Inc()
}

// IncDecision records a committee finalisation attempt, e.g. "approved" or "quorum_not_met".
func (m *WorkflowMetrics) IncDecision(decision string) {
	if m == nil || m.decisions == nil {
		return
	}
	m.decisions.WithLabelValues(normalizeLabel(decision)).Inc()
}

// IncPledge records a guarantor lock attempt.
func (m *WorkflowMetrics) IncPledge(result string) {
	if m == nil || m.pledges == nil {
		return
	}
	m.pledges.WithLabelValues(normalizeLabel(result)).Inc()
}

// IncNotification records a guarantor notification attempt.
func (m *WorkflowMetrics) IncNotification(result string) {
	if m == nil || m.notifications == nil {
		return
	}
	m.notifications.WithLabelValues(normalizeLabel(result)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
