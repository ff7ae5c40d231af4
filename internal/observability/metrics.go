package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// enrichment engine.
type Metrics struct {
	AlertsConsumed       prometheus.Counter
	AlertsEnriched       prometheus.Counter
	EnrichErrors         prometheus.Counter
	StaleAlertsDiscarded prometheus.Counter
	InvalidAlerts        prometheus.Counter
	PipelineRunning      prometheus.Gauge

	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram

	// Per-component enrichment metrics.
	GeometryFailures prometheus.Counter
	RadarExtractions *prometheus.CounterVec // labels: hazard={hail,wind}
	RadarMisses      prometheus.Counter
	MatchOutcomes    *prometheus.CounterVec // labels: method={area-code,proximity,none}
	RulesSkipped     prometheus.Counter

	// Webhook delivery metrics.
	DeliveriesCreated prometheus.Counter
	DeliveryAttempts  *prometheus.CounterVec // labels: outcome={delivered,failed,exhausted}
	DeliveryDuration  prometheus.Histogram
}

// NewMetrics creates and registers all engine metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.AlertsConsumed,
		m.AlertsEnriched,
		m.EnrichErrors,
		m.StaleAlertsDiscarded,
		m.InvalidAlerts,
		m.PipelineRunning,
		m.BatchSize,
		m.BatchProcessingDuration,
		m.GeometryFailures,
		m.RadarExtractions,
		m.RadarMisses,
		m.MatchOutcomes,
		m.RulesSkipped,
		m.DeliveriesCreated,
		m.DeliveryAttempts,
		m.DeliveryDuration,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		AlertsConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "alert_engine",
			Name:      "alerts_consumed_total",
			Help:      "Total alert events read from the feed source.",
		}),
		AlertsEnriched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "alert_engine",
			Name:      "alerts_enriched_total",
			Help:      "Total finalized enriched records produced.",
		}),
		EnrichErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "alert_engine",
			Name:      "enrich_errors_total",
			Help:      "Total alerts skipped because enrichment failed.",
		}),
		StaleAlertsDiscarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "alert_engine",
			Name:      "stale_alerts_discarded_total",
			Help:      "Total duplicate or out-of-order alert updates discarded.",
		}),
		InvalidAlerts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "alert_engine",
			Name:      "invalid_alerts_total",
			Help:      "Total alert payloads rejected by validation.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "alert_engine",
			Name:      "pipeline_running",
			Help:      "1 when the enrichment pipeline is active, 0 when shut down.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "alert_engine",
			Name:      "batch_size",
			Help:      "Number of alert events per batch extracted from the feed.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "alert_engine",
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete extract-enrich-publish cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		GeometryFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "alert_engine",
			Name:      "geometry_failures_total",
			Help:      "Total alerts whose geometry could not be summarized.",
		}),
		RadarExtractions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "alert_engine",
			Name:      "radar_extractions_total",
			Help:      "Radar-indicated measurements extracted, by hazard.",
		}, []string{"hazard"}),
		RadarMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "alert_engine",
			Name:      "radar_misses_total",
			Help:      "Eligible alerts whose narrative yielded no measurement (the common case).",
		}),
		MatchOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "alert_engine",
			Name:      "match_outcomes_total",
			Help:      "SPC verification outcomes by match method.",
		}, []string{"method"}),
		RulesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "alert_engine",
			Name:      "rules_skipped_total",
			Help:      "Webhook rules skipped due to invalid configuration.",
		}),
		DeliveriesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "alert_engine",
			Name:      "deliveries_created_total",
			Help:      "Webhook delivery records created.",
		}),
		DeliveryAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "alert_engine",
			Name:      "delivery_attempts_total",
			Help:      "Webhook delivery attempts by outcome.",
		}, []string{"outcome"}),
		DeliveryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "alert_engine",
			Name:      "delivery_duration_seconds",
			Help:      "Webhook endpoint round-trip duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
	}
}
