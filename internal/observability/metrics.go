package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// monitoring pipeline.
type Metrics struct {
	ReadingsIngested  prometheus.Counter
	ReadingsRejected  prometheus.Counter
	IngestionAttempts *prometheus.CounterVec   // labels: source, outcome={success,error}
	IngestionDuration *prometheus.HistogramVec // labels: source

	AssessmentsCreated prometheus.Counter
	FallbackScores     prometheus.Counter
	AlertsCreated      *prometheus.CounterVec // labels: type, severity
	AlertsSuppressed   prometheus.Counter

	RetentionDeleted *prometheus.CounterVec // labels: kind
	CycleDuration    *prometheus.HistogramVec
	ModelLoaded      prometheus.Gauge
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.ReadingsIngested,
		m.ReadingsRejected,
		m.IngestionAttempts,
		m.IngestionDuration,
		m.AssessmentsCreated,
		m.FallbackScores,
		m.AlertsCreated,
		m.AlertsSuppressed,
		m.RetentionDeleted,
		m.CycleDuration,
		m.ModelLoaded,
	)

	return m
}

// NewMetricsForTesting creates Metrics without touching the default
// registry, avoiding "already registered" panics across tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		ReadingsIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "coastal",
			Name:      "readings_ingested_total",
			Help:      "Readings accepted by validation and stored.",
		}),
		ReadingsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "coastal",
			Name:      "readings_rejected_total",
			Help:      "Readings dropped by range validation.",
		}),
		IngestionAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coastal",
			Name:      "ingestion_attempts_total",
			Help:      "Ingestion attempts by source and outcome.",
		}, []string{"source", "outcome"}),
		IngestionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "coastal",
			Name:      "ingestion_attempt_duration_seconds",
			Help:      "Duration of one (station, source) pull.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"source"}),
		AssessmentsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "coastal",
			Name:      "assessments_created_total",
			Help:      "Risk assessments persisted.",
		}),
		FallbackScores: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "coastal",
			Name:      "fallback_scores_total",
			Help:      "Assessments scored by the fallback stand-in.",
		}),
		AlertsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coastal",
			Name:      "alerts_created_total",
			Help:      "Alerts created by type and severity.",
		}, []string{"type", "severity"}),
		AlertsSuppressed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "coastal",
			Name:      "alerts_suppressed_total",
			Help:      "Alert occurrences suppressed by active-alert dedup.",
		}),
		RetentionDeleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coastal",
			Name:      "retention_deleted_total",
			Help:      "Rows deleted by the retention sweeper, by record kind.",
		}, []string{"kind"}),
		CycleDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "coastal",
			Name:      "cycle_duration_seconds",
			Help:      "Duration of complete pipeline cycles.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"cycle"}),
		ModelLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "coastal",
			Name:      "model_loaded",
			Help:      "1 when a real classifier artifact is active, 0 on fallback.",
		}),
	}
}
