package reporting

import (
	"fmt"
	"math"

	"github.com/xuri/excelize/v2"

	"repo-rate-lab/internal/calculator"
	"repo-rate-lab/internal/domain"
)

// Workbook sheet names.
const (
	SummarySheet = "Summary"
	SpikesSheet  = "Spikes"
)

// WriteWorkbook saves the rate summaries and the indicator rows as an xlsx file.
func WriteWorkbook(path string, r *Report, ind *calculator.Indicators) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SummarySheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(SpikesSheet); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}

	if err := writeSummarySheet(f, r, bold); err != nil {
		return err
	}
	if err := writeSpikesSheet(f, ind, bold); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func writeSummarySheet(f *excelize.File, r *Report, headerStyle int) error {
	row := 1
	put := func(values ...interface{}) error {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		row++
		return f.SetSheetRow(SummarySheet, cell, &values)
	}

	header := func(values ...interface{}) error {
		if err := f.SetRowStyle(SummarySheet, row, row, headerStyle); err != nil {
			return err
		}
		return put(values...)
	}

	if err := header("Metric", "Value"); err != nil {
		return fmt.Errorf("write summary sheet: %w", err)
	}
	meta := [][]interface{}{
		{"Run", r.RunID},
		{"Rows", r.RowCount},
		{"Start", formatDate(r.SampleStart)},
		{"End", formatDate(r.SampleEnd)},
		{"SOFR-IORB mean", cellFloat(r.Spread.Mean)},
		{"SOFR-IORB std", cellFloat(r.Spread.Std)},
		{"2σ threshold", cellFloat(r.Spread.Threshold)},
	}
	for _, ind := range r.Indicators {
		meta = append(meta, []interface{}{ind.Column, ind.Count})
	}
	for _, m := range meta {
		if err := put(m...); err != nil {
			return fmt.Errorf("write summary sheet: %w", err)
		}
	}

	for _, st := range r.SummaryTables {
		row++
		if err := header(st.Title); err != nil {
			return fmt.Errorf("write summary sheet: %w", err)
		}
		if st.Omitted != "" {
			if err := put("Omitted", st.Omitted); err != nil {
				return fmt.Errorf("write summary sheet: %w", err)
			}
			continue
		}

		cols := []interface{}{"Statistic"}
		for _, s := range st.Summaries {
			cols = append(cols, s.Column)
		}
		if err := header(cols...); err != nil {
			return fmt.Errorf("write summary sheet: %w", err)
		}

		rows := []struct {
			name string
			get  func(i int) interface{}
		}{
			{"count", func(i int) interface{} { return st.Summaries[i].Count }},
			{"mean", func(i int) interface{} { return cellFloat(st.Summaries[i].Mean) }},
			{"std", func(i int) interface{} { return cellFloat(st.Summaries[i].Std) }},
			{"min", func(i int) interface{} { return cellFloat(st.Summaries[i].Min) }},
			{"25%", func(i int) interface{} { return cellFloat(st.Summaries[i].P25) }},
			{"50%", func(i int) interface{} { return cellFloat(st.Summaries[i].P50) }},
			{"75%", func(i int) interface{} { return cellFloat(st.Summaries[i].P75) }},
			{"max", func(i int) interface{} { return cellFloat(st.Summaries[i].Max) }},
		}
		for _, s := range rows {
			values := []interface{}{s.name}
			for i := range st.Summaries {
				values = append(values, s.get(i))
			}
			if err := put(values...); err != nil {
				return fmt.Errorf("write summary sheet: %w", err)
			}
		}
	}

	return nil
}

func writeSpikesSheet(f *excelize.File, ind *calculator.Indicators, headerStyle int) error {
	header := []interface{}{"date"}
	for _, name := range domain.SpikeIndicatorColumns {
		header = append(header, name)
	}
	if err := f.SetSheetRow(SpikesSheet, "A1", &header); err != nil {
		return fmt.Errorf("write spikes sheet: %w", err)
	}
	if err := f.SetRowStyle(SpikesSheet, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("write spikes sheet: %w", err)
	}

	cols := make([][]bool, len(domain.SpikeIndicatorColumns))
	for j, name := range domain.SpikeIndicatorColumns {
		cols[j], _ = ind.Column(name)
	}

	for i, d := range ind.Dates {
		values := []interface{}{d.Format(domain.DateLayout)}
		for _, c := range cols {
			values = append(values, c[i])
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SpikesSheet, cell, &values); err != nil {
			return fmt.Errorf("write spikes sheet: %w", err)
		}
	}

	return f.SetPanes(SpikesSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

// cellFloat maps NaN to an empty cell; xlsx has no NaN value.
func cellFloat(v float64) interface{} {
	if math.IsNaN(v) {
		return ""
	}
	return v
}
