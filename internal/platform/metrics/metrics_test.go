package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RecordOutcome("accepted")
	m.RecordOutcome("accepted")
	m.RecordOutcome("spam")
	m.IncrementNotificationFailures()
	m.ObserveOutbound("notify", 120*time.Millisecond)

	assert.InDelta(t, 2, testutil.ToFloat64(m.Submissions.WithLabelValues("accepted")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Submissions.WithLabelValues("spam")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.NotificationFailures), 0)
	assert.Equal(t, 1, testutil.CollectAndCount(m.OutboundLatency))
}
