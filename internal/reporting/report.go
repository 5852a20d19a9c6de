package reporting

import (
	"time"

	"repo-rate-lab/internal/domain"
	"repo-rate-lab/internal/stats"
)

// Output file names written next to is_spike.csv.
const (
	MarkdownFileName   = "REPORT_REPO_SPIKES.md"
	SummaryCSVFileName = "rate_summary.csv"
	WorkbookFileName   = "repo_spikes.xlsx"
)

// Report represents the repo spike report structure.
type Report struct {
	// Metadata
	GeneratedAt time.Time
	RunID       string
	Source      string // input description, e.g. file path or "postgres"

	// Sample
	SampleStart time.Time // zero when the sample is empty
	SampleEnd   time.Time
	RowCount    int

	// SOFR-IORB statistics behind the 2σ rule
	Spread SpreadSection

	// One row per indicator, in is_spike.csv column order
	Indicators []IndicatorRow

	// Days flagged by both the 2σ rule and SOFR above the Fed upper bound
	SpikesAboveUpper []time.Time

	// Descriptive statistics of repo rates
	SummaryTables []SummaryTable

	// Input coverage checks, filled by the pipeline
	DataQuality DataQualitySection

	// Reproducibility
	Reproducibility ReproducibilityMetadata
}

// DataQualitySection reports input coverage checks.
type DataQualitySection struct {
	Checks          []DataQualityCheckRow
	Warnings        []string
	AllChecksPassed bool
}

// DataQualityCheckRow is one coverage criterion.
type DataQualityCheckRow struct {
	Name      string
	Threshold string
	Actual    string
	Pass      bool
}

// ReproducibilityMetadata identifies the inputs and code behind a report.
type ReproducibilityMetadata struct {
	GeneratorVersion string
	DataVersion      string // short sha256 of the derived input table
	CommitHash       string
	Command          string
}

// SpreadSection holds whole-sample SOFR-IORB statistics.
type SpreadSection struct {
	Mean      float64
	Std       float64
	Threshold float64 // 2σ
}

// IndicatorRow summarises one spike indicator.
type IndicatorRow struct {
	Column string
	Label  string
	Count  int
	Dates  []time.Time
}

// SummaryTable is a describe() style table over a set of rate columns, taken on
// the rows where all of them are present.
type SummaryTable struct {
	Title     string
	Columns   []string
	Summaries []stats.Summary // nil when Omitted is set
	Omitted   string          // reason the table could not be built
}

// SummaryTableSpec names a summary table and its columns.
type SummaryTableSpec struct {
	Title   string
	Columns []string
}

// DefaultSummaryTables are the repo rate summaries included in every report.
var DefaultSummaryTables = []SummaryTableSpec{
	{
		Title:   "SOFR, tri-party and DVP repo rates",
		Columns: []string{domain.SeriesSOFR, domain.SeriesTriParty, domain.SeriesDVP},
	},
	{
		Title:   "SOFR and repo rates including GCF",
		Columns: []string{domain.SeriesSOFR, domain.SeriesTriParty, domain.SeriesDVP, domain.SeriesGCF},
	},
}
