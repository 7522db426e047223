package triage

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds Prometheus metrics for the triage subsystem.
type Metrics struct {
	ClassificationsTotal   *prometheus.CounterVec
	ClassificationDuration *prometheus.HistogramVec
	AgentCallsTotal        *prometheus.CounterVec
	AgentCallDuration      prometheus.Histogram
	FallbacksTotal         *prometheus.CounterVec
	SimilarLookupsTotal    *prometheus.CounterVec
	ReportsTotal           prometheus.Counter
}

// NewMetrics registers and returns triage metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ClassificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "derrick_classifications_total",
			Help: "Total incident classifications by provenance and severity.",
		}, []string{"provenance", "severity"}),
		ClassificationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "derrick_classification_duration_seconds",
			Help:    "Duration of classification runs in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10), // 0.1s .. ~51s
		}, []string{"provenance"}),
		AgentCallsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "derrick_agent_calls_total",
			Help: "Total remote agent calls by outcome.",
		}, []string{"outcome"}),
		AgentCallDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "derrick_agent_call_duration_seconds",
			Help:    "Duration of individual remote agent calls in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10), // 0.1s .. ~51s
		}),
		FallbacksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "derrick_fallbacks_total",
			Help: "Total rule-based fallback classifications by reason.",
		}, []string{"reason"}),
		SimilarLookupsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "derrick_similar_lookups_total",
			Help: "Total similar-incident lookups by outcome.",
		}, []string{"outcome"}),
		ReportsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "derrick_reports_total",
			Help: "Total incident reports generated.",
		}),
	}

	reg.MustRegister(
		m.ClassificationsTotal,
		m.ClassificationDuration,
		m.AgentCallsTotal,
		m.AgentCallDuration,
		m.FallbacksTotal,
		m.SimilarLookupsTotal,
		m.ReportsTotal,
	)
	return m
}

// ServiceHooks returns service hooks that record into these metrics.
func (m *Metrics) ServiceHooks() ServiceHooks {
	return ServiceHooks{
		OnSimilarLookup: func(outcome string) {
			m.SimilarLookupsTotal.WithLabelValues(outcome).Inc()
		},
		OnReport: m.ReportsTotal.Inc,
	}
}

// Hooks returns engine hooks that record into these metrics.
func (m *Metrics) Hooks() EngineHooks {
	return EngineHooks{
		OnAgentCall: func(outcome string, d time.Duration) {
			m.AgentCallsTotal.WithLabelValues(outcome).Inc()
			m.AgentCallDuration.Observe(d.Seconds())
		},
		OnFallback: func(reason string) {
			m.FallbacksTotal.WithLabelValues(reason).Inc()
		},
		OnClassification: func(provenance, sev string, d time.Duration) {
			m.ClassificationsTotal.WithLabelValues(provenance, sev).Inc()
			m.ClassificationDuration.WithLabelValues(provenance).Observe(d.Seconds())
		},
	}
}
