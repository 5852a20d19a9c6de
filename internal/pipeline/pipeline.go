// Package pipeline runs the derived-metrics calculation end to end: load rates,
// compute indicators, write reports and optionally persist the indicators.
package pipeline

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"repo-rate-lab/internal/calculator"
	"repo-rate-lab/internal/domain"
	"repo-rate-lab/internal/loader"
	"repo-rate-lab/internal/observability"
	"repo-rate-lab/internal/reporting"
	"repo-rate-lab/internal/stats"
	"repo-rate-lab/internal/storage"
	"repo-rate-lab/internal/timeseries"
)

// GeneratorVersion is recorded in every report for reproducibility.
const GeneratorVersion = "1.0.0"

// Stage names used for logging and metrics.
const (
	StageLoad      = "load"
	StageCalculate = "calculate"
	StageReport    = "report"
	StagePersist   = "persist"
)

// Table names used for stored-row metrics.
const (
	observationsTable    = "rate_observations"
	spikeIndicatorsTable = "spike_indicators"
)

// ErrNoSource is returned by Run when neither a CSV path nor an observation
// store is configured.
var ErrNoSource = errors.New("no input source configured")

// Pipeline orchestrates load, calculation, reporting and persistence.
type Pipeline struct {
	outputDir string
	csvPath   string
	start     time.Time

	obsStore     storage.ObservationStore
	obsBackend   string
	spikeStore   storage.SpikeIndicatorStore
	spikeBackend string

	reportGen   *reporting.Generator
	sufficiency *SufficiencyChecker
	metrics     *observability.Metrics
	textfile    string

	clock   func() time.Time
	newID   func() string
	command string
}

// Result describes a finished run.
type Result struct {
	RunID       string
	Calc        *calculator.Result
	Report      *reporting.Report
	Sufficiency *SufficiencyResult
	Files       []string // written output paths, is_spike.csv first
	Persisted   int      // indicator rows stored, 0 without a spike store
}

// NewPipeline creates a pipeline writing into outputDir.
func NewPipeline(outputDir string) *Pipeline {
	clock := func() time.Time { return time.Now().UTC() }
	return &Pipeline{
		outputDir:   outputDir,
		reportGen:   reporting.NewGenerator().WithClock(clock),
		sufficiency: NewSufficiencyChecker(DefaultSufficiencyThresholds()),
		clock:       clock,
		newID:       uuid.NewString,
	}
}

// WithCSVSource reads the input table from a wide CSV file.
func (p *Pipeline) WithCSVSource(path string) *Pipeline {
	p.csvPath = path
	return p
}

// WithObservationStore reads the input table from store when no CSV source is
// set. backend labels database metrics, e.g. "postgres".
func (p *Pipeline) WithObservationStore(store storage.ObservationStore, backend string) *Pipeline {
	p.obsStore = store
	p.obsBackend = backend
	return p
}

// WithSpikeIndicatorStore persists the indicator rows of each run to store.
func (p *Pipeline) WithSpikeIndicatorStore(store storage.SpikeIndicatorStore, backend string) *Pipeline {
	p.spikeStore = store
	p.spikeBackend = backend
	return p
}

// WithStartDate drops rows before start. The zero time keeps every row.
func (p *Pipeline) WithStartDate(start time.Time) *Pipeline {
	p.start = start
	return p
}

// WithMetrics records run metrics to m. A non-empty textfile path receives the
// metrics after each run.
func (p *Pipeline) WithMetrics(m *observability.Metrics, textfile string) *Pipeline {
	p.metrics = m
	p.textfile = textfile
	return p
}

// WithSufficiencyChecker replaces the data sufficiency checker. nil disables checks.
func (p *Pipeline) WithSufficiencyChecker(c *SufficiencyChecker) *Pipeline {
	p.sufficiency = c
	return p
}

// WithClock sets a custom clock function for deterministic output.
func (p *Pipeline) WithClock(clock func() time.Time) *Pipeline {
	p.clock = clock
	p.reportGen = p.reportGen.WithClock(clock)
	return p
}

// WithRunID sets the run ID generator. Defaults to random UUIDs.
func (p *Pipeline) WithRunID(newID func() string) *Pipeline {
	p.newID = newID
	return p
}

// WithCommand records the command line that reproduces the run.
func (p *Pipeline) WithCommand(command string) *Pipeline {
	p.command = command
	return p
}

// Run executes the pipeline and writes:
// - is_spike.csv
// - REPORT_REPO_SPIKES.md
// - rate_summary.csv
// - repo_spikes.xlsx
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	runID := p.newID()
	logger := log.With().Str("run_id", runID).Logger()

	res, err := p.run(ctx, runID)
	status := observability.StatusSuccess
	if err != nil {
		status = observability.StatusFailure
		logger.Error().Err(err).Msg("Pipeline run failed")
	}

	if p.metrics != nil {
		p.metrics.RecordRun(status, p.clock())
		if p.textfile != "" {
			if werr := p.metrics.WriteTextfile(p.textfile); werr != nil {
				logger.Warn().Err(werr).Str("path", p.textfile).Msg("Failed to write metrics textfile")
			}
		}
	}

	return res, err
}

func (p *Pipeline) run(ctx context.Context, runID string) (*Result, error) {
	logger := log.With().Str("run_id", runID).Logger()
	res := &Result{RunID: runID}

	// 1. Load and window
	var (
		table  *timeseries.Table
		source string
	)
	err := p.stage(StageLoad, func() error {
		var err error
		table, source, err = p.load(ctx)
		if err != nil {
			return err
		}
		table = table.From(p.start)
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Info().
		Str("source", source).
		Int("rows", table.Len()).
		Int("columns", len(table.Names())).
		Msg("Loaded rates")

	// Hash the windowed input before derived columns are appended
	dataVersion, err := computeDataVersion(table)
	if err != nil {
		return nil, err
	}

	// 2. Derive, normalize, flag and write is_spike.csv
	calc := calculator.New(calculator.Config{OutputDir: p.outputDir})
	err = p.stage(StageCalculate, func() error {
		var err error
		res.Calc, err = calc.Run(table)
		return err
	})
	if err != nil {
		return nil, err
	}
	res.Files = append(res.Files, res.Calc.Path)
	p.recordFile(calculator.SpikeFileName)
	p.recordIndicators(res.Calc.Indicators)

	logger.Info().
		Float64("spread_std", res.Calc.Indicators.SpreadStd).
		Float64("threshold", res.Calc.Indicators.Threshold).
		Str("path", res.Calc.Path).
		Msg("Indicators written")

	// 3. Reports
	err = p.stage(StageReport, func() error {
		files, err := p.writeReports(res, runID, source, dataVersion)
		res.Files = append(res.Files, files...)
		return err
	})
	if err != nil {
		return nil, err
	}
	if res.Sufficiency != nil && !res.Sufficiency.AllPass {
		logger.Warn().Strs("warnings", res.Sufficiency.Errors).Msg("Data sufficiency checks failed")
	}

	// 4. Persist
	if p.spikeStore != nil {
		err = p.stage(StagePersist, func() error {
			return p.persist(ctx, res, runID)
		})
		if err != nil {
			return nil, err
		}
		logger.Info().Int("rows", res.Persisted).Str("backend", p.spikeBackend).Msg("Indicators stored")
	}

	logger.Info().Strs("files", res.Files).Msg("Pipeline run complete")
	return res, nil
}

// load reads the raw table from the configured source.
func (p *Pipeline) load(ctx context.Context) (*timeseries.Table, string, error) {
	if p.csvPath != "" {
		t, err := loader.LoadCSV(p.csvPath)
		if err != nil {
			return nil, "", err
		}
		return t, p.csvPath, nil
	}

	if p.obsStore == nil {
		return nil, "", ErrNoSource
	}

	start := time.Now()
	obs, err := p.obsStore.GetByDateRange(ctx, p.start, p.clock())
	p.recordDBQuery(p.obsBackend, "get_observations", time.Since(start), err)
	if err != nil {
		return nil, "", fmt.Errorf("load observations: %w", err)
	}

	t, err := loader.FromObservations(obs)
	if err != nil {
		return nil, "", err
	}
	return t, p.obsBackend + ":" + observationsTable, nil
}

// writeReports renders the markdown report, the summary CSV and the workbook.
func (p *Pipeline) writeReports(res *Result, runID, source, dataVersion string) ([]string, error) {
	if err := os.MkdirAll(p.outputDir, 0755); err != nil {
		return nil, err
	}

	report, err := p.reportGen.Generate(runID, source, res.Calc.Table, res.Calc.Indicators)
	if err != nil {
		return nil, err
	}

	if p.sufficiency != nil {
		res.Sufficiency = p.sufficiency.Check(res.Calc.Table)
		report.DataQuality = convertToDataQuality(res.Sufficiency)
	}

	report.Reproducibility = reporting.ReproducibilityMetadata{
		GeneratorVersion: GeneratorVersion,
		DataVersion:      dataVersion,
		CommitHash:       getGitCommitHash(),
		Command:          p.command,
	}
	res.Report = report

	var files []string

	mdPath := filepath.Join(p.outputDir, reporting.MarkdownFileName)
	if err := os.WriteFile(mdPath, []byte(reporting.RenderMarkdown(report)), 0644); err != nil {
		return files, err
	}
	files = append(files, mdPath)
	p.recordFile(reporting.MarkdownFileName)

	csvPath := filepath.Join(p.outputDir, reporting.SummaryCSVFileName)
	if err := os.WriteFile(csvPath, []byte(reporting.RenderSummaryCSV(report.SummaryTables)), 0644); err != nil {
		return files, err
	}
	files = append(files, csvPath)
	p.recordFile(reporting.SummaryCSVFileName)

	xlsxPath := filepath.Join(p.outputDir, reporting.WorkbookFileName)
	if err := reporting.WriteWorkbook(xlsxPath, report, res.Calc.Indicators); err != nil {
		return files, err
	}
	files = append(files, xlsxPath)
	p.recordFile(reporting.WorkbookFileName)

	return files, nil
}

func (p *Pipeline) persist(ctx context.Context, res *Result, runID string) error {
	rows := res.Calc.Indicators.Rows(runID)
	if len(rows) == 0 {
		return nil
	}

	start := time.Now()
	err := p.spikeStore.InsertBulk(ctx, rows)
	p.recordDBQuery(p.spikeBackend, "insert_spike_indicators", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("store indicators: %w", err)
	}

	res.Persisted = len(rows)
	if p.metrics != nil {
		p.metrics.RecordRowsStored(spikeIndicatorsTable, len(rows))
	}
	return nil
}

// stage runs fn and records its duration.
func (p *Pipeline) stage(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	if p.metrics != nil {
		p.metrics.RecordStage(name, time.Since(start))
	}
	log.Debug().Str("stage", name).Dur("duration", time.Since(start)).Err(err).Msg("Stage finished")
	return err
}

func (p *Pipeline) recordFile(name string) {
	if p.metrics != nil {
		p.metrics.RecordFile(name)
	}
}

func (p *Pipeline) recordDBQuery(backend, op string, d time.Duration, err error) {
	if p.metrics != nil {
		p.metrics.RecordDBQuery(backend, op, d, err)
	}
}

func (p *Pipeline) recordIndicators(ind *calculator.Indicators) {
	if p.metrics == nil {
		return
	}
	counts := make(map[string]int)
	for _, name := range domain.SpikeIndicatorColumns {
		flags, _ := ind.Column(name)
		counts[name] = stats.CountTrue(flags)
	}
	p.metrics.RecordIndicators(ind.Len(), counts, ind.SpreadStd, ind.Threshold)
}

// computeDataVersion returns a short SHA256 of the table in CSV form.
func computeDataVersion(t *timeseries.Table) (string, error) {
	h := sha256.New()
	if err := loader.WriteCSV(h, t); err != nil {
		return "", fmt.Errorf("hash input: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil))[:12], nil // short hash
}

// getGitCommitHash returns current git commit hash or "unknown" if not in git repo.
func getGitCommitHash() string {
	cmd := exec.Command("git", "rev-parse", "--short", "HEAD")
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return "unknown"
	}
	return strings.TrimSpace(out.String())
}
