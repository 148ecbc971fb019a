package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// assessment pipeline.
type Metrics struct {
	RequestsConsumed prometheus.Counter
	ResultsProduced  prometheus.Counter
	TransformErrors  prometheus.Counter
	PipelineRunning  prometheus.Gauge

	// Batch processing metrics.
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram

	// Collaborator metrics.
	WeatherFetchDuration prometheus.Histogram
	WeatherFetchErrors   prometheus.Counter
	RoughnessLookups     *prometheus.CounterVec // labels: outcome={success,error}
	RoughnessCache       *prometheus.CounterVec // labels: result={hit,miss}
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		RequestsConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "windshear",
			Name:      "requests_consumed_total",
			Help:      "Total assessment requests read from the request topic.",
		}),
		ResultsProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "windshear",
			Name:      "results_produced_total",
			Help:      "Total projected results written to the result topic.",
		}),
		TransformErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "windshear",
			Name:      "transform_errors_total",
			Help:      "Total assessment requests that failed transformation.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "windshear",
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "windshear",
			Name:      "batch_size",
			Help:      "Number of requests per batch extracted from Kafka.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "windshear",
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete batch extract-transform-load cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
		WeatherFetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "windshear",
			Name:      "weather_fetch_duration_seconds",
			Help:      "Reanalysis API request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		WeatherFetchErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "windshear",
			Name:      "weather_fetch_errors_total",
			Help:      "Total failed reanalysis API requests.",
		}),
		RoughnessLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "windshear",
			Name:      "roughness_lookups_total",
			Help:      "Land cover lookups by outcome.",
		}, []string{"outcome"}),
		RoughnessCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "windshear",
			Name:      "roughness_cache_total",
			Help:      "Roughness cache lookups by result.",
		}, []string{"result"}),
	}

	prometheus.MustRegister(
		m.RequestsConsumed,
		m.ResultsProduced,
		m.TransformErrors,
		m.PipelineRunning,
		m.BatchSize,
		m.BatchProcessingDuration,
		m.WeatherFetchDuration,
		m.WeatherFetchErrors,
		m.RoughnessLookups,
		m.RoughnessCache,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		RequestsConsumed:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "windshear", Name: "requests_consumed_total"}),
		ResultsProduced:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: "windshear", Name: "results_produced_total"}),
		TransformErrors:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: "windshear", Name: "transform_errors_total"}),
		PipelineRunning:         prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "windshear", Name: "pipeline_running"}),
		BatchSize:               prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "windshear", Name: "batch_size"}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "windshear", Name: "batch_processing_duration_seconds"}),
		WeatherFetchDuration:    prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "windshear", Name: "weather_fetch_duration_seconds"}),
		WeatherFetchErrors:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "windshear", Name: "weather_fetch_errors_total"}),
		RoughnessLookups:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "windshear", Name: "roughness_lookups_total"}, []string{"outcome"}),
		RoughnessCache:          prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "windshear", Name: "roughness_cache_total"}, []string{"result"}),
	}
}
