package reporting

import (
	"fmt"
	"strings"
)

// RenderSummaryCSV renders the rate summary tables as CSV string, one row per
// (table, series). Omitted tables are skipped.
func RenderSummaryCSV(tables []SummaryTable) string {
	var sb strings.Builder

	// Header
	sb.WriteString("table,series,count,mean,std,min,p25,p50,p75,max\n")

	// Rows
	for _, st := range tables {
		if st.Omitted != "" {
			continue
		}
		for _, s := range st.Summaries {
			sb.WriteString(fmt.Sprintf("%s,%s,%d,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f\n",
				csvField(st.Title),
				csvField(s.Column),
				s.Count,
				s.Mean,
				s.Std,
				s.Min,
				s.P25,
				s.P50,
				s.P75,
				s.Max,
			))
		}
	}

	return sb.String()
}

// csvField quotes s when it contains a separator, quote or newline.
func csvField(s string) string {
	if !strings.ContainsAny(s, ",\"\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
