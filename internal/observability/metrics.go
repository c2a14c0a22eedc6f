package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "crop_loss"

// Metrics holds the Prometheus collectors for estimation, explanation and audit publishing.
type Metrics struct {
	EstimatesTotal *prometheus.CounterVec   // labels: source={satellite,offline_csv,simulation}
	TierFailures   *prometheus.CounterVec   // labels: tier
	TierDuration   *prometheus.HistogramVec // labels: tier

	// Imagery provider metrics.
	ImageryRequests    *prometheus.CounterVec // labels: outcome={success,error,empty}
	ImageryCache       *prometheus.CounterVec // labels: result={hit,miss}
	ImageryAPIDuration prometheus.Histogram
	ImageryEnabled     prometheus.Gauge

	// Explanation metrics.
	Predictions         *prometheus.CounterVec // labels: strategy={rule,trained}
	EligibilityVerdicts *prometheus.CounterVec // labels: eligible={true,false}
	TrainedModelLoaded  prometheus.Gauge

	// Audit publishing metrics.
	AuditPublished prometheus.Counter
	AuditErrors    prometheus.Counter
	AuditDropped   prometheus.Counter
	AuditBatchSize prometheus.Histogram
}

// NewMetrics creates all collectors and registers them with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewUnregisteredMetrics creates Metrics that are never exported, for
// one-shot processes such as the CLI.
func NewUnregisteredMetrics() *Metrics {
	return newMetrics()
}

// NewMetricsForTesting creates Metrics without registering them, so tests
// can build as many as they need.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		EstimatesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "estimates_total",
			Help:      "Estimates returned, by the tier that produced them.",
		}, []string{"source"}),
		TierFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tier_failures_total",
			Help:      "Tier attempts that failed and fell through to the next tier.",
		}, []string{"tier"}),
		TierDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tier_duration_seconds",
			Help:      "Duration of a single tier attempt.",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"tier"}),
		ImageryRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "imagery_requests_total",
			Help:      "Imagery provider requests by outcome.",
		}, []string{"outcome"}),
		ImageryCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "imagery_cache_total",
			Help:      "Imagery window cache lookups by result.",
		}, []string{"result"}),
		ImageryAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "imagery_api_duration_seconds",
			Help:      "Imagery provider request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		}),
		ImageryEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "imagery_enabled",
			Help:      "1 when the satellite tier has a configured provider, 0 otherwise.",
		}),
		Predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "predictions_total",
			Help:      "Loss predictions by scoring strategy.",
		}, []string{"strategy"}),
		EligibilityVerdicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "eligibility_verdicts_total",
			Help:      "Insurance eligibility checks by verdict.",
		}, []string{"eligible"}),
		TrainedModelLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "trained_model_loaded",
			Help:      "1 when a schema-compatible trained model is bound, 0 otherwise.",
		}),
		AuditPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audit_events_published_total",
			Help:      "Estimate events written to the audit topic.",
		}),
		AuditErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audit_publish_errors_total",
			Help:      "Failed audit batch writes.",
		}),
		AuditDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audit_events_dropped_total",
			Help:      "Estimate events dropped because the audit buffer was full or shut down.",
		}),
		AuditBatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "audit_batch_size",
			Help:      "Number of events per audit batch write.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.EstimatesTotal,
		m.TierFailures,
		m.TierDuration,
		m.ImageryRequests,
		m.ImageryCache,
		m.ImageryAPIDuration,
		m.ImageryEnabled,
		m.Predictions,
		m.EligibilityVerdicts,
		m.TrainedModelLoaded,
		m.AuditPublished,
		m.AuditErrors,
		m.AuditDropped,
		m.AuditBatchSize,
	}
}
