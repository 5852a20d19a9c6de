package pipeline

import (
	"fmt"

	"repo-rate-lab/internal/calculator"
	"repo-rate-lab/internal/domain"
	"repo-rate-lab/internal/reporting"
	"repo-rate-lab/internal/timeseries"
)

// SufficiencyCheck represents one data sufficiency criterion.
type SufficiencyCheck struct {
	Name      string
	Threshold string
	Actual    string
	Pass      bool
}

// SufficiencyResult contains all checks for one sample.
type SufficiencyResult struct {
	Checks  []SufficiencyCheck
	AllPass bool
	Errors  []string // required series with no values in the sample
}

// SufficiencyThresholds are the minimums a sample must meet.
type SufficiencyThresholds struct {
	MinRows             int
	MinSpreadValues     int     // SOFR-IORB values behind the 2σ rule
	MinSOFRCoverage     float64 // share of rows with extended SOFR
	MinUpperCoverage    float64 // share of rows with the Fed upper limit
	MinTriPartyCoverage float64 // share of rows with the tri-party rate
}

// DefaultSufficiencyThresholds returns the thresholds used by the pipeline.
func DefaultSufficiencyThresholds() SufficiencyThresholds {
	return SufficiencyThresholds{
		MinRows:             5,
		MinSpreadValues:     2,
		MinSOFRCoverage:     0.5,
		MinUpperCoverage:    0.9,
		MinTriPartyCoverage: 0.5,
	}
}

// SufficiencyChecker validates that a sample can support the spike indicators.
type SufficiencyChecker struct {
	thresholds SufficiencyThresholds
}

// NewSufficiencyChecker creates a new sufficiency checker.
func NewSufficiencyChecker(thresholds SufficiencyThresholds) *SufficiencyChecker {
	return &SufficiencyChecker{thresholds: thresholds}
}

// Check evaluates a derived table. calculator.Derive must have run on t.
func (c *SufficiencyChecker) Check(t *timeseries.Table) *SufficiencyResult {
	result := &SufficiencyResult{
		Checks:  make([]SufficiencyCheck, 0, 5),
		AllPass: true,
		Errors:  []string{},
	}

	add := func(check SufficiencyCheck) {
		result.Checks = append(result.Checks, check)
		if !check.Pass {
			result.AllPass = false
		}
	}

	// 1. Rows in sample
	rows := t.Len()
	add(SufficiencyCheck{
		Name:      "Rows in sample",
		Threshold: fmt.Sprintf(">= %d", c.thresholds.MinRows),
		Actual:    fmt.Sprintf("%d", rows),
		Pass:      rows >= c.thresholds.MinRows,
	})

	// 2. Spread values for the 2σ rule
	spread := presentCount(t, domain.ColSOFRLessIORB)
	add(SufficiencyCheck{
		Name:      "SOFR-IORB values",
		Threshold: fmt.Sprintf(">= %d", c.thresholds.MinSpreadValues),
		Actual:    fmt.Sprintf("%d", spread),
		Pass:      spread >= c.thresholds.MinSpreadValues,
	})

	// 3-5. Coverage of the rates the indicators compare
	coverage := []struct {
		name   string
		column string
		min    float64
	}{
		{"SOFR coverage (extended with tri-party)", domain.ColSOFRExtended, c.thresholds.MinSOFRCoverage},
		{"Fed upper limit coverage", domain.SeriesFedUpper, c.thresholds.MinUpperCoverage},
		{"Tri-party coverage", domain.SeriesTriParty, c.thresholds.MinTriPartyCoverage},
	}
	for _, cv := range coverage {
		share := 0.0
		if rows > 0 {
			share = float64(presentCount(t, cv.column)) / float64(rows)
		}
		add(SufficiencyCheck{
			Name:      cv.name,
			Threshold: fmt.Sprintf(">= %.0f%%", cv.min*100),
			Actual:    fmt.Sprintf("%.1f%%", share*100),
			Pass:      rows > 0 && share >= cv.min,
		})
	}

	if rows > 0 {
		for _, name := range calculator.RequiredColumns {
			if presentCount(t, name) == 0 {
				result.Errors = append(result.Errors, fmt.Sprintf("series %s has no values in sample", name))
			}
		}
	}

	return result
}

func presentCount(t *timeseries.Table, name string) int {
	col, ok := t.Column(name)
	if !ok {
		return 0
	}
	return len(timeseries.Present(col))
}

// convertToDataQuality converts SufficiencyResult to reporting.DataQualitySection.
func convertToDataQuality(result *SufficiencyResult) reporting.DataQualitySection {
	checks := make([]reporting.DataQualityCheckRow, len(result.Checks))
	for i, c := range result.Checks {
		checks[i] = reporting.DataQualityCheckRow{
			Name:      c.Name,
			Threshold: c.Threshold,
			Actual:    c.Actual,
			Pass:      c.Pass,
		}
	}
	return reporting.DataQualitySection{
		Checks:          checks,
		Warnings:        result.Errors,
		AllChecksPassed: result.AllPass,
	}
}
