package infrastructure

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "datacli"

// PipelineMetrics collects run counters for one process. It owns a private
// registry so independent instances never collide.
type PipelineMetrics struct {
	registry *prometheus.Registry

	Runs          *prometheus.CounterVec
	RowsLoaded    prometheus.Counter
	LinesLoaded   prometheus.Counter
	FilesWritten  prometheus.Counter
	StageDuration *prometheus.HistogramVec
}

// NewPipelineMetrics creates and registers the pipeline collectors
func NewPipelineMetrics() *PipelineMetrics {
	m := &PipelineMetrics{
		registry: prometheus.NewRegistry(),
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "pipeline_runs_total",
			Help:      "Pipeline runs by dataset mode and outcome.",
		}, []string{"mode", "status"}),
		RowsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "rows_loaded_total",
			Help:      "Tabular records loaded.",
		}),
		LinesLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "lines_loaded_total",
			Help:      "Non-empty text lines loaded.",
		}),
		FilesWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "output_files_written_total",
			Help:      "Output artifacts written.",
		}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of each pipeline stage.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"stage"}),
	}

	m.registry.MustRegister(m.Runs, m.RowsLoaded, m.LinesLoaded, m.FilesWritten, m.StageDuration)
	return m
}

// ObserveStage records how long a stage took
func (m *PipelineMetrics) ObserveStage(stage string, start time.Time) {
	if m == nil {
		return
	}
	m.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// WriteTextfile writes all metrics in the Prometheus text format, suitable
// for the node exporter textfile collector.
func (m *PipelineMetrics) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics file %s: %w", path, err)
	}
	return nil
}
