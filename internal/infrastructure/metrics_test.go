package infrastructure

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipelineMetrics_Counters(t *testing.T) {
	m := NewPipelineMetrics()

	m.Runs.WithLabelValues("csv", "completed").Inc()
	m.Runs.WithLabelValues("csv", "completed").Inc()
	m.Runs.WithLabelValues("lines", "failed").Inc()
	m.RowsLoaded.Add(42)
	m.ObserveStage("load", time.Now())

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Runs.WithLabelValues("csv", "completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Runs.WithLabelValues("lines", "failed")))
	assert.Equal(t, 42.0, testutil.ToFloat64(m.RowsLoaded))
	assert.Equal(t, 1, testutil.CollectAndCount(m.StageDuration))
}

func TestPipelineMetrics_IndependentRegistries(t *testing.T) {
	a := NewPipelineMetrics()
	b := NewPipelineMetrics()

	a.LinesLoaded.Add(3)

	assert.Equal(t, 3.0, testutil.ToFloat64(a.LinesLoaded))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.LinesLoaded))
}

func TestPipelineMetrics_WriteTextfile(t *testing.T) {
	m := NewPipelineMetrics()
	m.FilesWritten.Add(2)

	path := filepath.Join(t.TempDir(), "metrics", "datacli.prom")
	require.NoError(t, m.WriteTextfile(path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "datacli_output_files_written_total 2")
}

func TestPipelineMetrics_NilObserve(t *testing.T) {
	var m *PipelineMetrics
	assert.NotPanics(t, func() { m.ObserveStage("load", time.Now()) })
}
