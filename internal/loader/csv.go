// Package loader builds rate tables from pre-fetched data: wide CSV files or
// long-format observations read from storage.
package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"repo-rate-lab/internal/domain"
	"repo-rate-lab/internal/timeseries"
)

// ErrMalformedInput is returned when an input file cannot be parsed.
var ErrMalformedInput = errors.New("malformed input")

// missingTokens are cell values treated as absent observations.
var missingTokens = map[string]bool{
	"":     true,
	".":    true, // FRED placeholder
	"NaN":  true,
	"nan":  true,
	"-NaN": true,
	"-nan": true,
	"NA":   true,
	"N/A":  true,
	"n/a":  true,
	"#N/A": true,
	"<NA>": true,
	"NULL": true,
	"null": true,
	"None": true,
}

// LoadCSV reads a wide, date-indexed CSV file into a table.
func LoadCSV(path string) (*timeseries.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	return ReadCSV(f)
}

// ReadCSV parses a wide CSV: the first column holds dates (YYYY-MM-DD), each
// further column is one series. Rows may appear in any order but dates must be unique.
func ReadCSV(r io.Reader) (*timeseries.Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return timeseries.NewTable(nil)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %v", ErrMalformedInput, err)
	}
	if len(header) < 1 {
		return nil, fmt.Errorf("%w: empty header", ErrMalformedInput)
	}
	names := header[1:]

	type row struct {
		date   time.Time
		values []*float64
	}
	var rows []row

	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedInput, line, err)
		}

		d, err := parseDate(rec[0])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedInput, line, err)
		}

		values := make([]*float64, len(names))
		for j, cell := range rec[1:] {
			v, err := parseValue(cell)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d column %s: %v", ErrMalformedInput, line, names[j], err)
			}
			values[j] = v
		}
		rows = append(rows, row{date: d, values: values})
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].date.Before(rows[j].date) })

	dates := make([]time.Time, len(rows))
	for i, r := range rows {
		dates[i] = r.date
	}
	tbl, err := timeseries.NewTable(dates)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}

	for j, name := range names {
		c := make(timeseries.Column, len(rows))
		for i, r := range rows {
			c[i] = r.values[j]
		}
		if err := tbl.SetColumn(name, c); err != nil {
			return nil, err
		}
	}
	return tbl, nil
}

// WriteCSV writes t in the layout ReadCSV accepts. Missing values are empty cells.
func WriteCSV(w io.Writer, t *timeseries.Table) error {
	cw := csv.NewWriter(w)
	names := t.Names()

	if err := cw.Write(append([]string{"date"}, names...)); err != nil {
		return err
	}

	cols := make([]timeseries.Column, len(names))
	for j, n := range names {
		cols[j], _ = t.Column(n)
	}

	record := make([]string, len(names)+1)
	for i, d := range t.Dates() {
		record[0] = d.Format(domain.DateLayout)
		for j, c := range cols {
			record[j+1] = ""
			if c[i] != nil {
				record[j+1] = strconv.FormatFloat(*c[i], 'f', -1, 64)
			}
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	// Accept timestamps written by dataframe exports, e.g. "2019-09-17 00:00:00".
	if len(s) > len(domain.DateLayout) {
		s = s[:len(domain.DateLayout)]
	}
	return time.Parse(domain.DateLayout, s)
}

func parseValue(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if missingTokens[s] {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	if math.IsNaN(v) {
		return nil, nil
	}
	return &v, nil
}
