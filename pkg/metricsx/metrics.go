// Package metricsx exports handler outcomes to Prometheus.
package metricsx

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics implements iam.Recorder.
type Metrics struct {
	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// New registers the handler metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "nimbus_requests_total",
			Help: "Handled requests by resource and outcome (ok, error code or fault)",
		}, []string{"resource", "outcome"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "nimbus_request_duration_seconds",
			Help:    "Handler duration including identity provider calls",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"resource"}),
	}
}

// Observe records one handled request.
func (m *Metrics) Observe(resource, outcome string, elapsed time.Duration) {
	m.Requests.WithLabelValues(resource, outcome).Inc()
	m.RequestDuration.WithLabelValues(resource).Observe(elapsed.Seconds())
}
