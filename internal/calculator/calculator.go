// Package calculator derives spread, ratio and spike-indicator columns from a
// table of money-market rates and writes the indicators to is_spike.csv.
package calculator

import (
	"repo-rate-lab/internal/domain"
	"repo-rate-lab/internal/stats"
	"repo-rate-lab/internal/timeseries"
)

// SpikeFileName is the fixed name of the indicator file inside the output directory.
const SpikeFileName = "is_spike.csv"

// RequiredColumns lists the input series every run needs.
var RequiredColumns = []string{
	domain.SeriesFedUpper,
	domain.SeriesFedLower,
	domain.SeriesEFFR,
	domain.SeriesSOFR,
	domain.SeriesTriParty,
	domain.SeriesIORB,
	domain.SeriesONRRPAward,
	domain.SeriesTotalReserves,
	domain.SeriesCurrency,
	domain.SeriesRepoVolume,
	domain.SeriesRRPVolume,
	domain.SeriesBalanceSheet,
	domain.SeriesGDP,
}

// NormalizedColumns are re-expressed relative to the target midpoint.
// BGCR and TGCR are optional inputs and are skipped when absent.
var NormalizedColumns = []string{
	domain.SeriesFedUpper,
	domain.SeriesFedLower,
	domain.SeriesTriParty,
	domain.SeriesEFFR,
	domain.ColTargetMidpoint,
	domain.SeriesIORB,
	domain.SeriesONRRPAward,
	domain.SeriesSOFR,
	domain.ColSOFRExtended,
	domain.SeriesBGCR,
	domain.SeriesTGCR,
}

var optionalNormalized = map[string]bool{
	domain.SeriesBGCR: true,
	domain.SeriesTGCR: true,
}

// Config holds per-run settings.
type Config struct {
	OutputDir string // directory receiving is_spike.csv
}

// Calculator computes derived metrics for a single run.
type Calculator struct {
	cfg Config
}

// New creates a calculator bound to cfg.
func New(cfg Config) *Calculator {
	return &Calculator{cfg: cfg}
}

// Result is the outcome of Run.
type Result struct {
	Table      *timeseries.Table // input table with derived columns appended
	Normalized *timeseries.Table // rates relative to target midpoint
	Indicators *Indicators
	Path       string // written indicator file
}

// Run derives all columns, builds the normalized table and indicators, and
// writes is_spike.csv. A missing input column aborts before anything is written.
func (c *Calculator) Run(t *timeseries.Table) (*Result, error) {
	if err := Derive(t); err != nil {
		return nil, err
	}

	norm, err := Normalize(t)
	if err != nil {
		return nil, err
	}

	ind, err := ComputeIndicators(t)
	if err != nil {
		return nil, err
	}

	path, err := c.WriteIndicators(ind)
	if err != nil {
		return nil, err
	}

	return &Result{
		Table:      t,
		Normalized: norm,
		Indicators: ind,
		Path:       path,
	}, nil
}

// Derive appends the derived columns to t in place.
//
// A table with rows must carry every RequiredColumns entry, otherwise a
// *timeseries.MissingColumnError names the first absent one and t is unchanged.
// A table with no rows gets empty columns for whatever is absent.
func Derive(t *timeseries.Table) error {
	if err := requireInputs(t); err != nil {
		return err
	}

	col := func(name string) timeseries.Column {
		c, _ := t.Column(name)
		return c
	}

	upper := col(domain.SeriesFedUpper)
	lower := col(domain.SeriesFedLower)
	sofr := col(domain.SeriesSOFR)
	tri := col(domain.SeriesTriParty)
	iorb := col(domain.SeriesIORB)
	reserves := col(domain.SeriesTotalReserves)
	gdp := col(domain.SeriesGDP)

	midpoint := timeseries.DivScalar(timeseries.Add(upper, lower), 2)

	derived := []struct {
		name string
		c    timeseries.Column
	}{
		{domain.ColTargetMidpoint, midpoint},
		{domain.ColSOFRLessIORB, timeseries.Sub(sofr, iorb)},
		{domain.ColBalanceSheetToGDP, timeseries.Div(col(domain.SeriesBalanceSheet), gdp)},
		{domain.ColTriPartyLessONRRP, timeseries.Scale(timeseries.Sub(tri, col(domain.SeriesONRRPAward)), 100)},
		{domain.ColTriPartyLessUpper, timeseries.Scale(timeseries.Sub(tri, upper), 100)},
		{domain.ColTriPartyLessMidpoint, timeseries.Scale(timeseries.Sub(tri, midpoint), 100)},
		{domain.ColNetFedRepo, timeseries.DivScalar(timeseries.Sub(col(domain.SeriesRepoVolume), col(domain.SeriesRRPVolume)), 1000)},
		{domain.ColReservesToCurrency, timeseries.Div(reserves, col(domain.SeriesCurrency))},
		{domain.ColReservesToGDP, timeseries.Div(reserves, gdp)},
		{domain.ColSOFRExtended, timeseries.Coalesce(sofr, tri)},
	}

	for _, d := range derived {
		if err := t.SetColumn(d.name, d.c); err != nil {
			return err
		}
	}
	return nil
}

// Normalize returns a table of NormalizedColumns minus target_midpoint, row-wise.
// Derive must have run on t.
func Normalize(t *timeseries.Table) (*timeseries.Table, error) {
	midpoint, ok := t.Column(domain.ColTargetMidpoint)
	if !ok {
		return nil, &timeseries.MissingColumnError{Column: domain.ColTargetMidpoint}
	}

	out, err := timeseries.NewTable(t.Dates())
	if err != nil {
		return nil, err
	}

	for _, name := range NormalizedColumns {
		c, ok := t.Column(name)
		if !ok {
			if optionalNormalized[name] {
				continue
			}
			return nil, &timeseries.MissingColumnError{Column: name}
		}
		if err := out.SetColumn(name, timeseries.Sub(c, midpoint)); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ComputeIndicators evaluates the four spike rules. Derive must have run on t.
//
// The 2σ threshold is a single scalar: the sample standard deviation of every
// non-missing SOFR-IORB value in t. It is a whole-sample statistic, so it labels
// history retrospectively and is not a causal detector.
func ComputeIndicators(t *timeseries.Table) (*Indicators, error) {
	if err := t.Require(domain.SeriesTriParty, domain.SeriesSOFR, domain.SeriesFedUpper, domain.ColSOFRLessIORB); err != nil {
		return nil, err
	}

	tri, _ := t.Column(domain.SeriesTriParty)
	sofr, _ := t.Column(domain.SeriesSOFR)
	upper, _ := t.Column(domain.SeriesFedUpper)
	spread, _ := t.Column(domain.ColSOFRLessIORB)

	present := timeseries.Present(spread)
	std := stats.Stddev(present)
	threshold := 2 * std

	return &Indicators{
		Dates:              t.Dates(),
		SOFRAboveFedUpper:  timeseries.Greater(sofr, upper),
		SOFR2StdAboveIORB:  timeseries.GreaterScalar(spread, threshold),
		SOFRAboveIORB:      timeseries.GreaterScalar(spread, 0),
		TriPartyAboveUpper: timeseries.Greater(tri, upper),
		SpreadMean:         stats.Mean(present),
		SpreadStd:          std,
		Threshold:          threshold,
	}, nil
}

func requireInputs(t *timeseries.Table) error {
	if t.Len() > 0 {
		return t.Require(RequiredColumns...)
	}
	for _, name := range RequiredColumns {
		if !t.Has(name) {
			if err := t.SetColumn(name, timeseries.Column{}); err != nil {
				return err
			}
		}
	}
	return nil
}
