package loader

import (
	"fmt"
	"sort"
	"time"

	"repo-rate-lab/internal/domain"
	"repo-rate-lab/internal/timeseries"
)

// FromObservations pivots long-format observations into a table indexed by the
// union of their dates. Series appear as columns in first-seen order.
// Returns ErrMalformedInput on a duplicate (series, date) pair.
func FromObservations(obs []*domain.Observation) (*timeseries.Table, error) {
	type key struct {
		series string
		date   time.Time
	}

	values := make(map[key]*float64, len(obs))
	dateSet := make(map[time.Time]struct{})
	var series []string
	seenSeries := make(map[string]bool)

	for _, o := range obs {
		d := o.Date.UTC().Truncate(24 * time.Hour)
		k := key{o.SeriesID, d}
		if _, dup := values[k]; dup {
			return nil, fmt.Errorf("%w: duplicate observation %s on %s",
				ErrMalformedInput, o.SeriesID, d.Format(domain.DateLayout))
		}
		values[k] = o.Value
		dateSet[d] = struct{}{}
		if !seenSeries[o.SeriesID] {
			seenSeries[o.SeriesID] = true
			series = append(series, o.SeriesID)
		}
	}

	dates := make([]time.Time, 0, len(dateSet))
	for d := range dateSet {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	tbl, err := timeseries.NewTable(dates)
	if err != nil {
		return nil, err
	}

	for _, s := range series {
		c := make(timeseries.Column, len(dates))
		for i, d := range dates {
			if v := values[key{s, d}]; v != nil {
				c[i] = timeseries.Float(*v)
			}
		}
		if err := tbl.SetColumn(s, c); err != nil {
			return nil, err
		}
	}
	return tbl, nil
}

// ToObservations flattens t into long format, skipping missing cells.
func ToObservations(t *timeseries.Table) []*domain.Observation {
	dates := t.Dates()
	var out []*domain.Observation
	for _, name := range t.Names() {
		c, _ := t.Column(name)
		for i, v := range c {
			if v == nil {
				continue
			}
			out = append(out, &domain.Observation{
				SeriesID: name,
				Date:     dates[i],
				Value:    timeseries.Float(*v),
			})
		}
	}
	return out
}
