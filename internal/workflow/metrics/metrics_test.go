package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Record(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.IncrementTransition("AwaitingLiveness", "LivenessExpired")
	m.IncrementVote("DEAD", "accepted")
	m.IncrementVote("DEAD", "accepted")
	m.ObserveDistribution("succeeded", 120*time.Millisecond)
	m.SetActiveSessions(3)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Transitions.WithLabelValues("AwaitingLiveness", "LivenessExpired")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Votes.WithLabelValues("DEAD", "accepted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Distributions.WithLabelValues("succeeded")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.ActiveSessions))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncrementTransition("a", "b")
		m.IncrementVote("ALIVE", "accepted")
		m.IncrementCertificate("VERIFIED")
		m.ObserveDistribution("failed", time.Second)
		m.SetActiveSessions(1)
		m.IncrementLivenessExpired()
		m.IncrementSnapshotSaveError()
	})
}
