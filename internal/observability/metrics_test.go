package observability

import (
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_RecordRun(t *testing.T) {
	m := NewMetrics("")
	finished := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	m.RecordRun(StatusSuccess, finished)
	m.RecordRun(StatusFailure, finished.Add(time.Hour))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.PipelineRunsTotal.WithLabelValues(StatusSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PipelineRunsTotal.WithLabelValues(StatusFailure)))
	// Failure does not move the success timestamp
	assert.Equal(t, float64(finished.Unix()), testutil.ToFloat64(m.LastSuccessfulRun))
}

func TestMetrics_RecordIndicators(t *testing.T) {
	m := NewMetrics("")

	m.RecordIndicators(3, map[string]int{"is_SOFR_above_IORB": 2}, 0.25, 0.5)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.RowsProcessed))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SpikeDays.WithLabelValues("is_SOFR_above_IORB")))
	assert.Equal(t, 0.5, testutil.ToFloat64(m.SpreadThreshold))
}

func TestMetrics_RecordDBQuery(t *testing.T) {
	m := NewMetrics("")

	m.RecordDBQuery("postgres", "insert", 10*time.Millisecond, nil)
	m.RecordDBQuery("postgres", "insert", 10*time.Millisecond, errors.New("boom"))
	m.RecordRowsStored("rate_observations", 5)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.DBQueryErrors.WithLabelValues("postgres", "insert")))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.RowsStored.WithLabelValues("rate_observations")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.DBQueryDuration))
}

func TestMetrics_IndependentRegistries(t *testing.T) {
	a := NewMetrics("")
	b := NewMetrics("")

	a.RecordFile("is_spike.csv")

	assert.Equal(t, 1.0, testutil.ToFloat64(a.FilesWritten.WithLabelValues("is_spike.csv")))
	assert.Equal(t, 0, testutil.CollectAndCount(b.FilesWritten))
}

func TestMetrics_WriteTextfile(t *testing.T) {
	m := NewMetrics("repolab")
	m.RecordFile("is_spike.csv")

	path := filepath.Join(t.TempDir(), "repolab.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `repolab_pipeline_files_written_total{file="is_spike.csv"} 1`)
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics("repolab")
	m.RecordStage("calculate", time.Second)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "repolab_pipeline_stage_duration_seconds_count"))
}
