package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Admitted   *prometheus.CounterVec
	Rejections *prometheus.CounterVec
	FailOpen   *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Admitted: f.NewCounterVec(prometheus.CounterOpts{
			Name: "contact_ratelimit_admitted_total",
			Help: "Requests admitted by the rate limiter",
		}, []string{"dimension"}),
		Rejections: f.NewCounterVec(prometheus.CounterOpts{
			Name: "contact_ratelimit_rejections_total",
			Help: "Requests rejected by the rate limiter",
		}, []string{"dimension", "window"}),
		FailOpen: f.NewCounterVec(prometheus.CounterOpts{
			Name: "contact_ratelimit_fail_open_total",
			Help: "Checks admitted because the rate limit store was unavailable",
		}, []string{"dimension"}),
	}
}

func (m *Metrics) RecordAdmitted(dimension string) {
	m.Admitted.WithLabelValues(dimension).Inc()
}

func (m *Metrics) RecordRejection(dimension, window string) {
	m.Rejections.WithLabelValues(dimension, window).Inc()
}

func (m *Metrics) RecordFailOpen(dimension string) {
	m.FailOpen.WithLabelValues(dimension).Inc()
}
