// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Run statuses.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Metrics holds all Prometheus metrics for one process, on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	// Pipeline metrics
	PipelineRunsTotal *prometheus.CounterVec
	StageDuration     *prometheus.HistogramVec
	RowsProcessed     prometheus.Gauge
	FilesWritten      *prometheus.CounterVec

	// Indicator metrics
	SpikeDays       *prometheus.GaugeVec
	SpreadStd       prometheus.Gauge
	SpreadThreshold prometheus.Gauge

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec
	RowsStored      *prometheus.CounterVec

	// Health metrics
	LastSuccessfulRun prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "repolab"
	}

	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		// Pipeline metrics
		PipelineRunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Total number of pipeline runs by status",
		}, []string{"status"}),
		StageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "stage_duration_seconds",
			Help:      "Pipeline stage duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"stage"}),
		RowsProcessed: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "rows_processed",
			Help:      "Number of index dates in the last run",
		}),
		FilesWritten: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "files_written_total",
			Help:      "Total number of output files written by name",
		}, []string{"file"}),

		// Indicator metrics
		SpikeDays: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "indicators",
			Name:      "spike_days",
			Help:      "Number of days flagged by each spike indicator in the last run",
		}, []string{"indicator"}),
		SpreadStd: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "indicators",
			Name:      "sofr_iorb_std",
			Help:      "Whole-sample standard deviation of SOFR-IORB in the last run",
		}),
		SpreadThreshold: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "indicators",
			Name:      "sofr_iorb_threshold",
			Help:      "2σ SOFR-IORB threshold in the last run",
		}),

		// Database metrics
		DBQueryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),
		RowsStored: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "rows_stored_total",
			Help:      "Total number of rows written by table",
		}, []string{"table"}),

		// Health metrics
		LastSuccessfulRun: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_run_timestamp",
			Help:      "Unix timestamp of last successful pipeline run",
		}),
	}
}

// Registry returns the registry holding these metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an HTTP handler exposing these metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// WriteTextfile writes the metrics in text exposition format to path, for the
// node_exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

// RecordRun records a finished pipeline run.
func (m *Metrics) RecordRun(status string, finishedAt time.Time) {
	m.PipelineRunsTotal.WithLabelValues(status).Inc()
	if status == StatusSuccess {
		m.LastSuccessfulRun.Set(float64(finishedAt.Unix()))
	}
}

// RecordStage records the duration of a pipeline stage.
func (m *Metrics) RecordStage(stage string, d time.Duration) {
	m.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// RecordFile records an output file write.
func (m *Metrics) RecordFile(name string) {
	m.FilesWritten.WithLabelValues(name).Inc()
}

// RecordIndicators records per-indicator spike day counts and spread statistics.
func (m *Metrics) RecordIndicators(rows int, spikeDays map[string]int, std, threshold float64) {
	m.RowsProcessed.Set(float64(rows))
	for name, n := range spikeDays {
		m.SpikeDays.WithLabelValues(name).Set(float64(n))
	}
	m.SpreadStd.Set(std)
	m.SpreadThreshold.Set(threshold)
}

// RecordDBQuery records database query metrics.
func (m *Metrics) RecordDBQuery(database, operation string, d time.Duration, err error) {
	m.DBQueryDuration.WithLabelValues(database, operation).Observe(d.Seconds())
	if err != nil {
		m.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}

// RecordRowsStored adds n to the rows stored counter for table.
func (m *Metrics) RecordRowsStored(table string, n int) {
	m.RowsStored.WithLabelValues(table).Add(float64(n))
}
