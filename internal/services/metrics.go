package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Generation outcomes recorded in the status label.
const (
	StatusSuccess  = "success"
	StatusFallback = "fallback"
	StatusError    = "error"
)

// Metrics holds the generation counters. Each instance registers with its
// own registerer so tests can use a fresh registry.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics registers the generation metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "word_dungeon_generation_requests_total",
				Help: "Total number of chapter generations by provider, kind and status.",
			},
			[]string{"provider", "kind", "status"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "word_dungeon_generation_duration_seconds",
				Help:    "Histogram of chapter generation durations, retries included.",
				Buckets: prometheus.ExponentialBuckets(0.5, 2, 8), // 0.5s .. 64s
			},
			[]string{"provider", "kind"},
		),
	}
}

func (m *Metrics) observe(provider, kind, status string, seconds float64) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(provider, kind, status).Inc()
	m.duration.WithLabelValues(provider, kind).Observe(seconds)
}
