package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the release workflow.
type Metrics struct {
	// Transitions by source and target state
	Transitions *prometheus.CounterVec

	// Votes by outcome: accepted, not_a_nominee, already_voted, stale_epoch
	Votes *prometheus.CounterVec

	// Certificate gate outcomes
	Certificates *prometheus.CounterVec

	// Distribution attempts by result
	Distributions   *prometheus.CounterVec
	DistributionDur prometheus.Histogram

	ActiveSessions prometheus.Gauge
	LivenessExpiry prometheus.Counter

	SnapshotSaveErrors prometheus.Counter
}

// New registers every workflow metric on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Transitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "willgate_workflow_transitions_total",
			Help: "Workflow state transitions by source and target state",
		}, []string{"from", "to"}),

		Votes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "willgate_quorum_votes_total",
			Help: "Nominee votes by choice and result",
		}, []string{"choice", "result"}),

		Certificates: f.NewCounterVec(prometheus.CounterOpts{
			Name: "willgate_certificate_outcomes_total",
			Help: "Certificate gate outcomes",
		}, []string{"outcome"}),

		Distributions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "willgate_distributions_total",
			Help: "Distribution attempts by result",
		}, []string{"result"}),

		DistributionDur: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "willgate_distribution_duration_seconds",
			Help:    "Duration of ledger distribution calls",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),

		ActiveSessions: f.NewGauge(prometheus.GaugeOpts{
			Name: "willgate_sessions_active",
			Help: "Accounts with a live workflow session",
		}),

		LivenessExpiry: f.NewCounter(prometheus.CounterOpts{
			Name: "willgate_liveness_expired_total",
			Help: "Liveness windows that ran out without acknowledgement",
		}),

		SnapshotSaveErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "willgate_snapshot_save_errors_total",
			Help: "Failed workflow snapshot writes",
		}),
	}
}

func (m *Metrics) IncrementTransition(from, to string) {
	if m != nil {
		m.Transitions.WithLabelValues(from, to).Inc()
	}
}

func (m *Metrics) IncrementVote(choice, result string) {
	if m != nil {
		m.Votes.WithLabelValues(choice, result).Inc()
	}
}

func (m *Metrics) IncrementCertificate(outcome string) {
	if m != nil {
		m.Certificates.WithLabelValues(outcome).Inc()
	}
}

// ObserveDistribution records one ledger call and its result ("succeeded" or "failed").
func (m *Metrics) ObserveDistribution(result string, d time.Duration) {
	if m != nil {
		m.Distributions.WithLabelValues(result).Inc()
		m.DistributionDur.Observe(d.Seconds())
	}
}

func (m *Metrics) SetActiveSessions(n int) {
	if m != nil {
		m.ActiveSessions.Set(float64(n))
	}
}

func (m *Metrics) IncrementLivenessExpired() {
	if m != nil {
		m.LivenessExpiry.Inc()
	}
}

func (m *Metrics) IncrementSnapshotSaveError() {
	if m != nil {
		m.SnapshotSaveErrors.Inc()
	}
}
