package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "relief_geocoder"

// Metrics holds the Prometheus counters, histograms, and gauges for the service.
type Metrics struct {
	// Resolver metrics.
	ResolveRequests *prometheus.CounterVec // labels: source={api,pipeline,cli}, outcome={found,not_found,invalid,error}
	StrategyOutcome *prometheus.CounterVec // labels: strategy, outcome={found,empty,error,skipped,duplicate}

	// Provider metrics.
	ProviderRequests     *prometheus.CounterVec // labels: outcome={success,empty,error}
	ProviderDuration     prometheus.Histogram
	ProviderCache        *prometheus.CounterVec // labels: result={hit,miss,shared}
	ProviderCacheEntries prometheus.Gauge

	// Pipeline metrics.
	MessagesConsumed        prometheus.Counter
	MessagesProduced        prometheus.Counter
	TransformErrors         prometheus.Counter
	PipelineRunning         prometheus.Gauge
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram
	ReportsGeocoded         *prometheus.CounterVec // labels: geo_status
	BatchesHeld             prometheus.Counter
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	return NewMetricsWithRegistry(prometheus.DefaultRegisterer)
}

// NewMetricsWithRegistry creates all metrics and registers them with reg.
// Short-lived tools pass a private registry so nothing leaks into the default one.
func NewMetricsWithRegistry(reg prometheus.Registerer) *Metrics {
	m := newMetrics()
	reg.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

// ObserveStrategy records one strategy step of a resolution. It lets
// *Metrics serve as the resolver's observer.
func (m *Metrics) ObserveStrategy(strategy, outcome string) {
	m.StrategyOutcome.WithLabelValues(strategy, outcome).Inc()
}

func newMetrics() *Metrics {
	return &Metrics{
		ResolveRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolve_requests_total",
			Help:      "Address resolutions by caller and outcome.",
		}, []string{"source", "outcome"}),
		StrategyOutcome: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "strategy_outcomes_total",
			Help:      "Fallback strategy steps by strategy and outcome.",
		}, []string{"strategy", "outcome"}),
		ProviderRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_requests_total",
			Help:      "Geocoding provider requests by outcome.",
		}, []string{"outcome"}),
		ProviderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_request_duration_seconds",
			Help:      "Geocoding provider request duration in seconds, including rate-limit wait.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		}),
		ProviderCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_cache_total",
			Help:      "Provider cache lookups by result.",
		}, []string{"result"}),
		ProviderCacheEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "provider_cache_entries",
			Help:      "Queries currently held in the provider cache.",
		}),
		MessagesConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_consumed_total",
			Help:      "Total report messages read from the source topic.",
		}),
		MessagesProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_produced_total",
			Help:      "Total report messages written to the sink topic.",
		}),
		TransformErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transform_errors_total",
			Help:      "Total report messages that could not be parsed.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      "Number of messages per batch extracted from Kafka.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete batch extract-transform-load cycle.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		ReportsGeocoded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_geocoded_total",
			Help:      "Reports passed through the pipeline by geocoding status.",
		}, []string{"geo_status"}),
		BatchesHeld: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batches_held_total",
			Help:      "Batches left uncommitted because every report failed to reach the provider.",
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.ResolveRequests,
		m.StrategyOutcome,
		m.ProviderRequests,
		m.ProviderDuration,
		m.ProviderCache,
		m.ProviderCacheEntries,
		m.MessagesConsumed,
		m.MessagesProduced,
		m.TransformErrors,
		m.PipelineRunning,
		m.BatchSize,
		m.BatchProcessingDuration,
		m.ReportsGeocoded,
		m.BatchesHeld,
	}
}
