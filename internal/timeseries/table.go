// Package timeseries provides a date-indexed table of nullable numeric columns.
package timeseries

import (
	"errors"
	"fmt"
	"time"
)

// Errors returned by table construction and mutation.
var (
	ErrNotIncreasing  = errors.New("index dates must be strictly increasing")
	ErrLengthMismatch = errors.New("column length does not match index length")
)

// MissingColumnError is returned when a required column is absent from a table.
type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("missing required column %q", e.Column)
}

// Column holds one value per index date. A nil element is a missing observation.
type Column []*float64

// Table is a date-indexed set of named columns.
// Columns keep their insertion order.
type Table struct {
	dates []time.Time
	names []string
	cols  map[string]Column
}

// NewTable creates an empty table over the given index.
// Dates are truncated to UTC midnight and must be strictly increasing.
func NewTable(dates []time.Time) (*Table, error) {
	idx := make([]time.Time, len(dates))
	for i, d := range dates {
		idx[i] = truncateDay(d)
		if i > 0 && !idx[i].After(idx[i-1]) {
			return nil, fmt.Errorf("%w: %s follows %s", ErrNotIncreasing,
				idx[i].Format("2006-01-02"), idx[i-1].Format("2006-01-02"))
		}
	}
	return &Table{
		dates: idx,
		cols:  make(map[string]Column),
	}, nil
}

// Len returns the number of index dates.
func (t *Table) Len() int {
	return len(t.dates)
}

// Dates returns a copy of the index.
func (t *Table) Dates() []time.Time {
	out := make([]time.Time, len(t.dates))
	copy(out, t.dates)
	return out
}

// Names returns column names in insertion order.
func (t *Table) Names() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Has reports whether the table has a column with the given name.
func (t *Table) Has(name string) bool {
	_, ok := t.cols[name]
	return ok
}

// Column returns the named column.
func (t *Table) Column(name string) (Column, bool) {
	c, ok := t.cols[name]
	return c, ok
}

// SetColumn adds the column, or replaces it if the name already exists.
func (t *Table) SetColumn(name string, c Column) error {
	if len(c) != len(t.dates) {
		return fmt.Errorf("%w: column %q has %d values, index has %d",
			ErrLengthMismatch, name, len(c), len(t.dates))
	}
	if _, exists := t.cols[name]; !exists {
		t.names = append(t.names, name)
	}
	t.cols[name] = c
	return nil
}

// Require returns a *MissingColumnError for the first name not present in the table.
func (t *Table) Require(names ...string) error {
	for _, n := range names {
		if _, ok := t.cols[n]; !ok {
			return &MissingColumnError{Column: n}
		}
	}
	return nil
}

// From returns the rows dated on or after start.
func (t *Table) From(start time.Time) *Table {
	start = truncateDay(start)
	first := len(t.dates)
	for i, d := range t.dates {
		if !d.Before(start) {
			first = i
			break
		}
	}
	return t.slice(first, len(t.dates))
}

// Select returns a table holding only the named columns, in the given order.
func (t *Table) Select(names ...string) (*Table, error) {
	if err := t.Require(names...); err != nil {
		return nil, err
	}
	out := &Table{
		dates: t.Dates(),
		cols:  make(map[string]Column, len(names)),
	}
	for _, n := range names {
		c := make(Column, len(t.dates))
		copy(c, t.cols[n])
		out.names = append(out.names, n)
		out.cols[n] = c
	}
	return out, nil
}

// DropMissing selects the named columns and keeps only rows where all of them are present.
func (t *Table) DropMissing(names ...string) (*Table, error) {
	sel, err := t.Select(names...)
	if err != nil {
		return nil, err
	}

	var keep []int
	for i := range sel.dates {
		complete := true
		for _, n := range names {
			if sel.cols[n][i] == nil {
				complete = false
				break
			}
		}
		if complete {
			keep = append(keep, i)
		}
	}

	out := &Table{
		dates: make([]time.Time, len(keep)),
		names: sel.names,
		cols:  make(map[string]Column, len(names)),
	}
	for j, i := range keep {
		out.dates[j] = sel.dates[i]
	}
	for _, n := range names {
		c := make(Column, len(keep))
		for j, i := range keep {
			c[j] = sel.cols[n][i]
		}
		out.cols[n] = c
	}
	return out, nil
}

func (t *Table) slice(from, to int) *Table {
	out := &Table{
		dates: make([]time.Time, to-from),
		names: t.Names(),
		cols:  make(map[string]Column, len(t.cols)),
	}
	copy(out.dates, t.dates[from:to])
	for n, c := range t.cols {
		cc := make(Column, to-from)
		copy(cc, c[from:to])
		out.cols[n] = cc
	}
	return out
}

func truncateDay(d time.Time) time.Time {
	y, m, day := d.UTC().Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}
