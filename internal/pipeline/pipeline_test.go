package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repo-rate-lab/internal/calculator"
	"repo-rate-lab/internal/domain"
	"repo-rate-lab/internal/loader"
	"repo-rate-lab/internal/observability"
	"repo-rate-lab/internal/reporting"
	"repo-rate-lab/internal/storage"
	"repo-rate-lab/internal/storage/memory"
	"repo-rate-lab/internal/timeseries"
)

var fixedTime = time.Date(2025, 1, 4, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedTime }

func fixedRunID(id string) func() string {
	return func() string { return id }
}

func day(s string) time.Time {
	d, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return d
}

// writeFixtureCSV writes the fixture sample as a wide CSV, optionally dropping
// a series, and returns its path.
func writeFixtureCSV(t *testing.T, drop string) string {
	t.Helper()

	var obs []*domain.Observation
	for _, o := range FixtureObservations() {
		if o.SeriesID != drop {
			obs = append(obs, o)
		}
	}
	tbl, err := loader.FromObservations(obs)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "repo_public.csv")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, loader.WriteCSV(f, tbl))
	return path
}

func TestPipeline_RunFromStore(t *testing.T) {
	ctx := context.Background()
	outDir := t.TempDir()

	obsStore := memory.NewObservationStore()
	require.NoError(t, LoadFixtures(ctx, obsStore))
	spikeStore := memory.NewSpikeIndicatorStore()
	m := observability.NewMetrics("")

	res, err := NewPipeline(outDir).
		WithObservationStore(obsStore, "memory").
		WithSpikeIndicatorStore(spikeStore, "memory").
		WithMetrics(m, "").
		WithClock(fixedClock).
		WithRunID(fixedRunID("run-store")).
		Run(ctx)
	require.NoError(t, err)

	// Files
	for _, name := range []string{
		calculator.SpikeFileName,
		reporting.MarkdownFileName,
		reporting.SummaryCSVFileName,
		reporting.WorkbookFileName,
	} {
		assert.FileExists(t, filepath.Join(outDir, name))
	}
	require.Len(t, res.Files, 4)
	assert.Equal(t, filepath.Join(outDir, calculator.SpikeFileName), res.Files[0])

	// Indicators: only 2019-09-17 clears the 2σ threshold
	ind := res.Calc.Indicators
	require.Equal(t, 10, ind.Len())
	counts := map[string]int{}
	for _, row := range res.Report.Indicators {
		counts[row.Column] = row.Count
	}
	assert.Equal(t, map[string]int{
		domain.ColSOFRAboveFedUpper:  3,
		domain.ColSOFR2StdAboveIORB:  1,
		domain.ColSOFRAboveIORB:      10,
		domain.ColTriPartyAboveUpper: 3,
	}, counts)
	assert.Equal(t, []time.Time{day("2019-09-17")}, res.Report.SpikesAboveUpper)
	assert.Equal(t, "memory:rate_observations", res.Report.Source)

	// Data quality and reproducibility
	require.NotNil(t, res.Sufficiency)
	assert.True(t, res.Sufficiency.AllPass)
	assert.True(t, res.Report.DataQuality.AllChecksPassed)
	assert.Len(t, res.Report.Reproducibility.DataVersion, 12)
	assert.Equal(t, GeneratorVersion, res.Report.Reproducibility.GeneratorVersion)

	// Persisted rows round-trip
	assert.Equal(t, 10, res.Persisted)
	stored, err := LoadRun(ctx, spikeStore, "run-store")
	require.NoError(t, err)
	assert.Equal(t, ind.Dates, stored.Dates)
	assert.Equal(t, ind.SOFR2StdAboveIORB, stored.SOFR2StdAboveIORB)
	assert.Equal(t, ind.TriPartyAboveUpper, stored.TriPartyAboveUpper)

	// Metrics
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PipelineRunsTotal.WithLabelValues(observability.StatusSuccess)))
	assert.Equal(t, 10.0, testutil.ToFloat64(m.RowsProcessed))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SpikeDays.WithLabelValues(domain.ColSOFR2StdAboveIORB)))
	assert.Equal(t, 10.0, testutil.ToFloat64(m.RowsStored.WithLabelValues("spike_indicators")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FilesWritten.WithLabelValues(reporting.WorkbookFileName)))
	assert.Equal(t, float64(fixedTime.Unix()), testutil.ToFloat64(m.LastSuccessfulRun))
}

func TestPipeline_RunFromCSVWithStartDate(t *testing.T) {
	path := writeFixtureCSV(t, "")
	outDir := t.TempDir()

	res, err := NewPipeline(outDir).
		WithCSVSource(path).
		WithStartDate(day("2019-09-16")).
		WithClock(fixedClock).
		WithRunID(fixedRunID("run-csv")).
		Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, path, res.Report.Source)
	assert.Equal(t, 5, res.Report.RowCount)
	assert.Equal(t, day("2019-09-16"), res.Report.SampleStart)
	assert.Equal(t, day("2019-09-20"), res.Report.SampleEnd)
	assert.Equal(t, 0, res.Persisted)

	// is_spike.csv round-trips to the in-memory indicators
	back, err := calculator.ReadIndicators(filepath.Join(outDir, calculator.SpikeFileName))
	require.NoError(t, err)
	assert.Equal(t, res.Calc.Indicators.Dates, back.Dates)
	assert.Equal(t, []bool{false, true, false, false, false}, back.SOFR2StdAboveIORB)
}

func TestPipeline_Deterministic(t *testing.T) {
	path := writeFixtureCSV(t, "")
	files := []string{calculator.SpikeFileName, reporting.MarkdownFileName, reporting.SummaryCSVFileName}

	var outputs []map[string]string
	for run := 0; run < 2; run++ {
		outDir := t.TempDir()
		_, err := NewPipeline(outDir).
			WithCSVSource(path).
			WithClock(fixedClock).
			WithRunID(fixedRunID("run-det")).
			Run(context.Background())
		require.NoError(t, err)

		out := make(map[string]string)
		for _, name := range files {
			data, err := os.ReadFile(filepath.Join(outDir, name))
			require.NoError(t, err)
			out[name] = string(data)
		}
		outputs = append(outputs, out)
	}

	for _, name := range files {
		assert.Equal(t, outputs[0][name], outputs[1][name], "%s differs between runs", name)
	}
}

func TestPipeline_MissingColumn(t *testing.T) {
	path := writeFixtureCSV(t, domain.SeriesGDP)
	outDir := t.TempDir()
	m := observability.NewMetrics("")
	textfile := filepath.Join(t.TempDir(), "repolab.prom")

	_, err := NewPipeline(outDir).
		WithCSVSource(path).
		WithMetrics(m, textfile).
		WithClock(fixedClock).
		Run(context.Background())
	require.Error(t, err)

	var missing *timeseries.MissingColumnError
	require.True(t, errors.As(err, &missing), "got %v", err)
	assert.Equal(t, domain.SeriesGDP, missing.Column)

	assert.NoFileExists(t, filepath.Join(outDir, calculator.SpikeFileName))
	assert.NoFileExists(t, filepath.Join(outDir, reporting.MarkdownFileName))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PipelineRunsTotal.WithLabelValues(observability.StatusFailure)))
	assert.FileExists(t, textfile)
}

func TestPipeline_NoSource(t *testing.T) {
	_, err := NewPipeline(t.TempDir()).Run(context.Background())
	assert.ErrorIs(t, err, ErrNoSource)
}

func TestPipeline_DuplicateRunID(t *testing.T) {
	ctx := context.Background()
	path := writeFixtureCSV(t, "")
	spikeStore := memory.NewSpikeIndicatorStore()

	newPipeline := func() *Pipeline {
		return NewPipeline(t.TempDir()).
			WithCSVSource(path).
			WithSpikeIndicatorStore(spikeStore, "memory").
			WithClock(fixedClock).
			WithRunID(fixedRunID("run-dup"))
	}

	_, err := newPipeline().Run(ctx)
	require.NoError(t, err)

	_, err = newPipeline().Run(ctx)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestImportCSV(t *testing.T) {
	ctx := context.Background()
	path := writeFixtureCSV(t, "")
	store := memory.NewObservationStore()
	m := observability.NewMetrics("")

	n, err := ImportCSV(ctx, path, store, "memory", m)
	require.NoError(t, err)
	assert.Equal(t, len(FixtureObservations()), n)
	assert.Equal(t, float64(n), testutil.ToFloat64(m.RowsStored.WithLabelValues("rate_observations")))

	sofr, err := store.GetBySeries(ctx, domain.SeriesSOFR)
	require.NoError(t, err)
	require.Len(t, sofr, 10)
	assert.Equal(t, 5.25, *sofr[6].Value)

	// Re-import rejects the whole file
	_, err = ImportCSV(ctx, path, store, "memory", m)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DBQueryErrors.WithLabelValues("memory", "insert_observations")))
}

func TestLoadRun_NotFound(t *testing.T) {
	_, err := LoadRun(context.Background(), memory.NewSpikeIndicatorStore(), "absent")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
