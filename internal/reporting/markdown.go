package reporting

import (
	"fmt"
	"strings"
	"time"

	"repo-rate-lab/internal/domain"
)

// maxListedDates caps the dates printed per indicator.
const maxListedDates = 40

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Repo Rate Spike Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	if r.RunID != "" {
		sb.WriteString(fmt.Sprintf("Run: `%s`\n\n", r.RunID))
	}

	// Sample
	sb.WriteString("## Sample\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	if r.Source != "" {
		sb.WriteString(fmt.Sprintf("| Source | %s |\n", r.Source))
	}
	sb.WriteString(fmt.Sprintf("| Rows | %d |\n", r.RowCount))
	sb.WriteString(fmt.Sprintf("| Start | %s |\n", formatDate(r.SampleStart)))
	sb.WriteString(fmt.Sprintf("| End | %s |\n", formatDate(r.SampleEnd)))
	sb.WriteString("\n")

	// Spread
	sb.WriteString("## SOFR-IORB Spread\n\n")
	sb.WriteString("| Mean | Std | 2σ Threshold |\n")
	sb.WriteString("|------|-----|--------------|\n")
	sb.WriteString(fmt.Sprintf("| %.4f | %.4f | %.4f |\n\n", r.Spread.Mean, r.Spread.Std, r.Spread.Threshold))

	// Indicators
	sb.WriteString("## Spike Indicators\n\n")
	sb.WriteString("| Indicator | Description | Days |\n")
	sb.WriteString("|-----------|-------------|------|\n")
	for _, ind := range r.Indicators {
		sb.WriteString(fmt.Sprintf("| %s | %s | %d |\n", ind.Column, ind.Label, ind.Count))
	}
	sb.WriteString("\n")

	// Intersection
	sb.WriteString("## 2σ Spikes Above the Fed Funds Upper Limit\n\n")
	if len(r.SpikesAboveUpper) > 0 {
		writeDateList(&sb, r.SpikesAboveUpper)
	} else {
		sb.WriteString("No days flagged by both rules.\n\n")
	}

	// Rate summaries
	sb.WriteString("## Rate Summaries\n\n")
	for _, st := range r.SummaryTables {
		sb.WriteString(fmt.Sprintf("### %s\n\n", st.Title))
		if st.Omitted != "" {
			sb.WriteString(fmt.Sprintf("Omitted: %s.\n\n", st.Omitted))
			continue
		}
		writeSummaryTable(&sb, st)
	}

	// Dates per indicator
	sb.WriteString("## Spike Dates\n\n")
	for _, ind := range r.Indicators {
		sb.WriteString(fmt.Sprintf("### %s\n\n", ind.Column))
		if len(ind.Dates) == 0 {
			sb.WriteString("None.\n\n")
			continue
		}
		writeDateList(&sb, ind.Dates)
	}

	// Data quality
	if len(r.DataQuality.Checks) > 0 || len(r.DataQuality.Warnings) > 0 {
		writeDataQuality(&sb, r.DataQuality)
	}

	// Reproducibility
	if r.Reproducibility != (ReproducibilityMetadata{}) {
		sb.WriteString("## Reproducibility\n\n")
		sb.WriteString("| Field | Value |\n")
		sb.WriteString("|-------|-------|\n")
		sb.WriteString(fmt.Sprintf("| Generator Version | %s |\n", r.Reproducibility.GeneratorVersion))
		sb.WriteString(fmt.Sprintf("| Data Version | %s |\n", r.Reproducibility.DataVersion))
		sb.WriteString(fmt.Sprintf("| Commit | %s |\n", r.Reproducibility.CommitHash))
		if r.Reproducibility.Command != "" {
			sb.WriteString(fmt.Sprintf("| Command | `%s` |\n", r.Reproducibility.Command))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func writeDataQuality(sb *strings.Builder, dq DataQualitySection) {
	sb.WriteString("## Data Quality\n\n")
	if len(dq.Checks) > 0 {
		sb.WriteString("| Check | Threshold | Actual | Status |\n")
		sb.WriteString("|-------|-----------|--------|--------|\n")
		for _, c := range dq.Checks {
			status := "FAIL"
			if c.Pass {
				status = "PASS"
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n", c.Name, c.Threshold, c.Actual, status))
		}
		sb.WriteString("\n")
	}
	for _, w := range dq.Warnings {
		sb.WriteString(fmt.Sprintf("- %s\n", w))
	}
	if len(dq.Warnings) > 0 {
		sb.WriteString("\n")
	}
	if dq.AllChecksPassed {
		sb.WriteString("All data quality checks passed.\n\n")
	} else {
		sb.WriteString("**Some data quality checks failed; indicators may be incomplete.**\n\n")
	}
}

// writeSummaryTable lays out summaries like a describe() frame: one row per
// statistic, one column per series.
func writeSummaryTable(sb *strings.Builder, st SummaryTable) {
	sb.WriteString("| Statistic |")
	for _, s := range st.Summaries {
		sb.WriteString(fmt.Sprintf(" %s |", domain.Describe(s.Column)))
	}
	sb.WriteString("\n|-----------|")
	for range st.Summaries {
		sb.WriteString("------|")
	}
	sb.WriteString("\n")

	rows := []struct {
		name string
		get  func(i int) string
	}{
		{"count", func(i int) string { return fmt.Sprintf("%d", st.Summaries[i].Count) }},
		{"mean", func(i int) string { return fmt.Sprintf("%.4f", st.Summaries[i].Mean) }},
		{"std", func(i int) string { return fmt.Sprintf("%.4f", st.Summaries[i].Std) }},
		{"min", func(i int) string { return fmt.Sprintf("%.4f", st.Summaries[i].Min) }},
		{"25%", func(i int) string { return fmt.Sprintf("%.4f", st.Summaries[i].P25) }},
		{"50%", func(i int) string { return fmt.Sprintf("%.4f", st.Summaries[i].P50) }},
		{"75%", func(i int) string { return fmt.Sprintf("%.4f", st.Summaries[i].P75) }},
		{"max", func(i int) string { return fmt.Sprintf("%.4f", st.Summaries[i].Max) }},
	}
	for _, row := range rows {
		sb.WriteString(fmt.Sprintf("| %s |", row.name))
		for i := range st.Summaries {
			sb.WriteString(fmt.Sprintf(" %s |", row.get(i)))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
}

func writeDateList(sb *strings.Builder, dates []time.Time) {
	for i, d := range dates {
		if i == maxListedDates {
			sb.WriteString(fmt.Sprintf("- ... and %d more\n", len(dates)-maxListedDates))
			break
		}
		sb.WriteString(fmt.Sprintf("- %s\n", d.Format(domain.DateLayout)))
	}
	sb.WriteString("\n")
}

func formatDate(d time.Time) string {
	if d.IsZero() {
		return "-"
	}
	return d.Format(domain.DateLayout)
}
