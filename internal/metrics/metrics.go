package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "pncp"

// Metrics holds the Prometheus collectors for upstream traffic and
// aggregation outcomes. A nil *Metrics is valid and records nothing.
type Metrics struct {
	UpstreamRequests  *prometheus.CounterVec
	UpstreamDuration  *prometheus.HistogramVec
	PagesSkipped      *prometheus.CounterVec
	PartitionsSkipped *prometheus.CounterVec
	DuplicatesDropped prometheus.Counter
	Aggregations      *prometheus.CounterVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		UpstreamRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Upstream page requests by endpoint and outcome",
		}, []string{"endpoint", "outcome"}),
		UpstreamDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Latency of upstream page requests",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"endpoint"}),
		PagesSkipped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pages_skipped_total",
			Help:      "Pages dropped by best-effort walks after a fetch failure",
		}, []string{"endpoint"}),
		PartitionsSkipped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "partitions_skipped_total",
			Help:      "Partitions dropped by a fan-out after a first-page failure",
		}, []string{"endpoint"}),
		DuplicatesDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duplicates_dropped_total",
			Help:      "Records discarded because their control number was already seen",
		}),
		Aggregations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "aggregations_total",
			Help:      "Aggregation runs by kind and outcome",
		}, []string{"kind", "outcome"}),
	}
}

func (m *Metrics) ObserveUpstream(endpoint, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.UpstreamRequests.WithLabelValues(endpoint, outcome).Inc()
	m.UpstreamDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

func (m *Metrics) IncPagesSkipped(endpoint string) {
	if m == nil {
		return
	}
	m.PagesSkipped.WithLabelValues(endpoint).Inc()
}

func (m *Metrics) IncPartitionsSkipped(endpoint string) {
	if m == nil {
		return
	}
	m.PartitionsSkipped.WithLabelValues(endpoint).Inc()
}

func (m *Metrics) AddDuplicatesDropped(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.DuplicatesDropped.Add(float64(n))
}

func (m *Metrics) IncAggregation(kind, outcome string) {
	if m == nil {
		return
	}
	m.Aggregations.WithLabelValues(kind, outcome).Inc()
}
