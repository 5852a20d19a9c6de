package reporting

import (
	"errors"
	"time"

	"repo-rate-lab/internal/calculator"
	"repo-rate-lab/internal/domain"
	"repo-rate-lab/internal/stats"
	"repo-rate-lab/internal/timeseries"
)

// Generator produces reports from a derived table and its indicators.
type Generator struct {
	tables []SummaryTableSpec
	now    func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator with the default summary tables.
func NewGenerator() *Generator {
	return &Generator{
		tables: DefaultSummaryTables,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// WithSummaryTables replaces the rate summary tables.
func (g *Generator) WithSummaryTables(specs []SummaryTableSpec) *Generator {
	g.tables = specs
	return g
}

// Generate builds a report for one run. t is the derived table the indicators
// were computed from.
func (g *Generator) Generate(runID, source string, t *timeseries.Table, ind *calculator.Indicators) (*Report, error) {
	r := &Report{
		GeneratedAt: g.now(),
		RunID:       runID,
		Source:      source,
		RowCount:    t.Len(),
		Spread: SpreadSection{
			Mean:      ind.SpreadMean,
			Std:       ind.SpreadStd,
			Threshold: ind.Threshold,
		},
	}

	if dates := t.Dates(); len(dates) > 0 {
		r.SampleStart = dates[0]
		r.SampleEnd = dates[len(dates)-1]
	}

	for _, name := range domain.SpikeIndicatorColumns {
		flags, _ := ind.Column(name)
		r.Indicators = append(r.Indicators, IndicatorRow{
			Column: name,
			Label:  domain.Describe(name),
			Count:  stats.CountTrue(flags),
			Dates:  stats.TrueDates(flags, ind.Dates),
		})
	}

	r.SpikesAboveUpper = stats.IntersectDates(
		stats.TrueDates(ind.SOFR2StdAboveIORB, ind.Dates),
		stats.TrueDates(ind.SOFRAboveFedUpper, ind.Dates),
	)

	tables, err := g.summaryTables(t)
	if err != nil {
		return nil, err
	}
	r.SummaryTables = tables

	return r, nil
}

// summaryTables describes each configured column set. A set naming a column
// absent from t is kept with an Omitted note.
func (g *Generator) summaryTables(t *timeseries.Table) ([]SummaryTable, error) {
	out := make([]SummaryTable, 0, len(g.tables))
	for _, spec := range g.tables {
		st := SummaryTable{Title: spec.Title, Columns: spec.Columns}

		summaries, err := stats.DescribeTable(t, spec.Columns...)
		var missing *timeseries.MissingColumnError
		switch {
		case errors.As(err, &missing):
			st.Omitted = "column " + missing.Column + " not in input"
		case err != nil:
			return nil, err
		default:
			st.Summaries = summaries
		}

		out = append(out, st)
	}
	return out, nil
}
