package api

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metric names as constants for consistency.
const (
	MetricRecommendationRequests    = "recommendation_requests_total"
	MetricRecommendationDiversified = "recommendation_diversified_total"
	MetricRecommendationScored      = "recommendation_scored_events"
	MetricRecommendationLatency     = "recommendation_duration_seconds"
)

// Metrics contains Prometheus metrics for the recommendation pipeline.
// All operations are thread-safe.
type Metrics struct {
	requests    *prometheus.CounterVec
	diversified prometheus.Counter
	scored      prometheus.Histogram
	latency     prometheus.Histogram
}

// NewMetrics creates a new Metrics instance with all collectors initialized.
// The metrics are not registered; call Register to register them with a registry.
func NewMetrics() *Metrics {
	return &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricRecommendationRequests,
				Help: "Total number of recommendation requests by scoring mode",
			},
			[]string{"mode"},
		),
		diversified: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: MetricRecommendationDiversified,
				Help: "Total number of recommendation requests with diversification enabled",
			},
		),
		scored: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    MetricRecommendationScored,
				Help:    "Number of candidate events considered per recommendation request",
				Buckets: []float64{0, 5, 10, 25, 50, 100, 250},
			},
		),
		latency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    MetricRecommendationLatency,
				Help:    "Recommendation pipeline duration in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
			},
		),
	}
}

// Register registers all metrics with the provided registry.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.Collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Collectors returns all Prometheus collectors for registration.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.requests,
		m.diversified,
		m.scored,
		m.latency,
	}
}

// ObserveRecommendation records one completed recommendation request.
func (m *Metrics) ObserveRecommendation(mode string, diversified bool, scoredEvents int, seconds float64) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(mode).Inc()
	if diversified {
		m.diversified.Inc()
	}
	m.scored.Observe(float64(scoredEvents))
	m.latency.Observe(seconds)
}
