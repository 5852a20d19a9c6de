package calculator

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"repo-rate-lab/internal/domain"
)

// Canonical boolean tokens written to is_spike.csv.
const (
	tokenTrue  = "True"
	tokenFalse = "False"
)

// ErrMalformedIndicators is returned when an indicator file cannot be parsed.
var ErrMalformedIndicators = errors.New("malformed indicator file")

// WriteError reports that the indicator file could not be written.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Indicators holds the spike flags, one entry per index date.
type Indicators struct {
	Dates              []time.Time
	SOFRAboveFedUpper  []bool
	SOFR2StdAboveIORB  []bool
	SOFRAboveIORB      []bool
	TriPartyAboveUpper []bool

	// Whole-sample SOFR-IORB statistics behind the 2σ rule. Not persisted.
	SpreadMean float64
	SpreadStd  float64
	Threshold  float64
}

// Len returns the number of rows.
func (ind *Indicators) Len() int {
	return len(ind.Dates)
}

// Column returns the flags for an indicator column name.
func (ind *Indicators) Column(name string) ([]bool, bool) {
	switch name {
	case domain.ColSOFRAboveFedUpper:
		return ind.SOFRAboveFedUpper, true
	case domain.ColSOFR2StdAboveIORB:
		return ind.SOFR2StdAboveIORB, true
	case domain.ColSOFRAboveIORB:
		return ind.SOFRAboveIORB, true
	case domain.ColTriPartyAboveUpper:
		return ind.TriPartyAboveUpper, true
	}
	return nil, false
}

// Rows converts the flags to storage rows tagged with runID.
func (ind *Indicators) Rows(runID string) []*domain.SpikeIndicator {
	rows := make([]*domain.SpikeIndicator, ind.Len())
	for i, d := range ind.Dates {
		rows[i] = &domain.SpikeIndicator{
			RunID:              runID,
			Date:               d,
			SOFRAboveFedUpper:  ind.SOFRAboveFedUpper[i],
			SOFR2StdAboveIORB:  ind.SOFR2StdAboveIORB[i],
			SOFRAboveIORB:      ind.SOFRAboveIORB[i],
			TriPartyAboveUpper: ind.TriPartyAboveUpper[i],
		}
	}
	return rows
}

// FromRows rebuilds indicators from storage rows. Rows must be ordered by date.
func FromRows(rows []*domain.SpikeIndicator) *Indicators {
	ind := newIndicators(len(rows))
	for i, r := range rows {
		ind.Dates[i] = r.Date
		ind.SOFRAboveFedUpper[i] = r.SOFRAboveFedUpper
		ind.SOFR2StdAboveIORB[i] = r.SOFR2StdAboveIORB
		ind.SOFRAboveIORB[i] = r.SOFRAboveIORB
		ind.TriPartyAboveUpper[i] = r.TriPartyAboveUpper
	}
	return ind
}

// Path returns the location of is_spike.csv for this calculator.
func (c *Calculator) Path() string {
	return filepath.Join(c.cfg.OutputDir, SpikeFileName)
}

// WriteIndicators writes ind to is_spike.csv in the output directory.
//
// The file is written to a temporary sibling and renamed into place, so the
// target either holds the complete new content or is left as it was.
// Failures are returned as *WriteError.
func (c *Calculator) WriteIndicators(ind *Indicators) (string, error) {
	path := c.Path()

	if err := os.MkdirAll(c.cfg.OutputDir, 0755); err != nil {
		return "", &WriteError{Path: path, Err: err}
	}

	tmp, err := os.CreateTemp(c.cfg.OutputDir, ".is_spike-*.csv")
	if err != nil {
		return "", &WriteError{Path: path, Err: err}
	}
	tmpPath := tmp.Name()

	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if err := EncodeIndicators(tmp, ind); err != nil {
		return "", &WriteError{Path: path, Err: err}
	}
	// CreateTemp opens with 0600; match the report files.
	if err := tmp.Chmod(0644); err != nil {
		return "", &WriteError{Path: path, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		return "", &WriteError{Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return "", &WriteError{Path: path, Err: err}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return "", &WriteError{Path: path, Err: err}
	}
	committed = true

	return path, nil
}

// EncodeIndicators writes ind as CSV: a date column followed by the indicator
// columns in domain.SpikeIndicatorColumns order.
func EncodeIndicators(w io.Writer, ind *Indicators) error {
	cw := csv.NewWriter(w)

	header := append([]string{"date"}, domain.SpikeIndicatorColumns...)
	if err := cw.Write(header); err != nil {
		return err
	}

	cols := make([][]bool, len(domain.SpikeIndicatorColumns))
	for j, name := range domain.SpikeIndicatorColumns {
		cols[j], _ = ind.Column(name)
	}

	record := make([]string, len(header))
	for i, d := range ind.Dates {
		record[0] = d.Format(domain.DateLayout)
		for j, c := range cols {
			record[j+1] = boolToken(c[i])
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadIndicators parses an indicator file written by WriteIndicators.
func ReadIndicators(path string) (*Indicators, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open indicators: %w", err)
	}
	defer f.Close()

	return DecodeIndicators(f)
}

// DecodeIndicators parses indicator CSV. Columns are matched by header name.
func DecodeIndicators(r io.Reader) (*Indicators, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %v", ErrMalformedIndicators, err)
	}
	if len(header) == 0 || header[0] != "date" {
		return nil, fmt.Errorf("%w: first column must be date", ErrMalformedIndicators)
	}

	pos := make(map[string]int, len(header))
	for i, h := range header {
		pos[h] = i
	}
	for _, name := range domain.SpikeIndicatorColumns {
		if _, ok := pos[name]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrMalformedIndicators, name)
		}
	}

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedIndicators, err)
	}

	ind := newIndicators(len(records))
	for i, rec := range records {
		d, err := time.Parse(domain.DateLayout, rec[0])
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrMalformedIndicators, i+1, err)
		}
		ind.Dates[i] = d

		for _, name := range domain.SpikeIndicatorColumns {
			v, err := strconv.ParseBool(rec[pos[name]])
			if err != nil {
				return nil, fmt.Errorf("%w: row %d column %s: %v", ErrMalformedIndicators, i+1, name, err)
			}
			col, _ := ind.Column(name)
			col[i] = v
		}
	}
	return ind, nil
}

func newIndicators(n int) *Indicators {
	return &Indicators{
		Dates:              make([]time.Time, n),
		SOFRAboveFedUpper:  make([]bool, n),
		SOFR2StdAboveIORB:  make([]bool, n),
		SOFRAboveIORB:      make([]bool, n),
		TriPartyAboveUpper: make([]bool, n),
	}
}

func boolToken(v bool) string {
	if v {
		return tokenTrue
	}
	return tokenFalse
}
