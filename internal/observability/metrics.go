package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "pv_etl"

// Metrics holds the Prometheus counters, histograms, and gauges for day processing.
type Metrics struct {
	MessagesConsumed prometheus.Counter
	MessagesProduced prometheus.Counter
	TransformErrors  prometheus.Counter
	PipelineRunning  prometheus.Gauge

	// Batch processing metrics.
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram

	// Day processing metrics.
	DaysProcessed         *prometheus.CounterVec // labels: outcome={success,malformed,config,error}
	SamplesProcessed      prometheus.Counter
	DipsCorrected         prometheus.Counter
	DayProcessingDuration prometheus.Histogram
	Coefficient           prometheus.Gauge
	DayMAE                prometheus.Gauge
}

func newMetrics() *Metrics {
	return &Metrics{
		MessagesConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_consumed_total",
			Help:      "Total day jobs read from the source topic.",
		}),
		MessagesProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_produced_total",
			Help:      "Total day summaries written to the sink topic.",
		}),
		TransformErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transform_errors_total",
			Help:      "Total day jobs that failed processing.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      "Number of day jobs per batch extracted from Kafka.",
			Buckets:   []float64{1, 2, 5, 10, 20, 50, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete batch extract-transform-load cycle.",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		DaysProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "days_processed_total",
			Help:      "Day files processed by outcome.",
		}, []string{"outcome"}),
		SamplesProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "samples_processed_total",
			Help:      "Sensor samples written to processed day files.",
		}),
		DipsCorrected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mppt_dips_corrected_total",
			Help:      "Samples repaired by the MPPT dip corrector.",
		}),
		DayProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "day_processing_duration_seconds",
			Help:      "Duration of reading, processing and writing one day file.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		Coefficient: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "calibration_coefficient",
			Help:      "Efficiency coefficient applied to the last processed day.",
		}),
		DayMAE: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "day_mae_watts",
			Help:      "Mean absolute error of computed power for the last processed day.",
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.MessagesConsumed,
		m.MessagesProduced,
		m.TransformErrors,
		m.PipelineRunning,
		m.BatchSize,
		m.BatchProcessingDuration,
		m.DaysProcessed,
		m.SamplesProcessed,
		m.DipsCorrected,
		m.DayProcessingDuration,
		m.Coefficient,
		m.DayMAE,
	}
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics registered with a fresh registry to
// avoid "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	m := newMetrics()
	prometheus.NewRegistry().MustRegister(m.collectors()...)
	return m
}
