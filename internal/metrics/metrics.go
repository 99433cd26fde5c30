package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Provider call outcomes.
const (
	OutcomeOK          = "ok"
	OutcomeNoRoute     = "no_route"
	OutcomeUnavailable = "unavailable"
	OutcomeMalformed   = "malformed"
)

// Comparison statuses.
const (
	StatusComplete = "complete"
	StatusPartial  = "partial"
	StatusEmpty    = "empty"
	StatusFallback = "fallback"
)

type Metrics struct {
	RequestSeconds    *prometheus.HistogramVec
	ProviderOutcomes  *prometheus.CounterVec
	Comparisons       *prometheus.CounterVec
	ActiveComparisons prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		RequestSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "homebound_provider_request_duration_seconds",
			Help:    "Duration of requests to the routing provider APIs.",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
		ProviderOutcomes: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "homebound_provider_outcomes_total",
			Help: "Total number of routing provider calls by outcome.",
		}, []string{"provider", "outcome"}),
		Comparisons: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "homebound_trip_comparisons_total",
			Help: "Total number of trip comparisons by status.",
		}, []string{"status"}),
		ActiveComparisons: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "homebound_active_comparisons",
			Help: "Current number of trip comparisons in progress.",
		}),
	}
}
