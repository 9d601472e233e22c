package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the contact pipeline.
type Metrics struct {
	Submissions          *prometheus.CounterVec
	NotificationFailures prometheus.Counter
	ArchiveFailures      prometheus.Counter
	OutboundLatency      *prometheus.HistogramVec
}

// New creates and registers the pipeline metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Submissions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "contact_submissions_total",
			Help: "Contact form submissions by final outcome",
		}, []string{"outcome"}),
		NotificationFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "contact_notification_failures_total",
			Help: "Notification sends that failed after the message was archived",
		}),
		ArchiveFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "contact_archive_failures_total",
			Help: "Archive writes that failed",
		}),
		OutboundLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "contact_outbound_duration_seconds",
			Help:    "Latency of outbound provider calls",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"target"}),
	}
}

// RecordOutcome counts a finished submission.
func (m *Metrics) RecordOutcome(outcome string) {
	m.Submissions.WithLabelValues(outcome).Inc()
}

// ObserveOutbound records the latency of a call to target ("captcha", "archive", "notify").
func (m *Metrics) ObserveOutbound(target string, d time.Duration) {
	m.OutboundLatency.WithLabelValues(target).Observe(d.Seconds())
}

func (m *Metrics) IncrementNotificationFailures() {
	m.NotificationFailures.Inc()
}

func (m *Metrics) IncrementArchiveFailures() {
	m.ArchiveFailures.Inc()
}
