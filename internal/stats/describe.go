// Package stats computes summary statistics over table columns.
package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"repo-rate-lab/internal/timeseries"
)

// Summary is the distribution of one column.
type Summary struct {
	Column string
	Count  int
	Mean   float64
	Std    float64 // sample standard deviation, NaN when Count < 2
	Min    float64
	P25    float64
	P50    float64
	P75    float64
	Max    float64
}

// Describe summarizes values. Percentiles use linear interpolation.
// An empty input yields Count 0 and NaN for every statistic.
func Describe(values []float64) Summary {
	n := len(values)
	if n == 0 {
		nan := math.NaN()
		return Summary{Mean: nan, Std: nan, Min: nan, P25: nan, P50: nan, P75: nan, Max: nan}
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	mean := Mean(values)
	return Summary{
		Count: n,
		Mean:  mean,
		Std:   Stddev(values),
		Min:   sorted[0],
		P25:   Percentile(sorted, 0.25),
		P50:   Percentile(sorted, 0.50),
		P75:   Percentile(sorted, 0.75),
		Max:   sorted[n-1],
	}
}

// DescribeTable summarizes the named columns over rows where all of them are present.
// Returns *timeseries.MissingColumnError if a column is absent.
func DescribeTable(t *timeseries.Table, columns ...string) ([]Summary, error) {
	complete, err := t.DropMissing(columns...)
	if err != nil {
		return nil, err
	}

	out := make([]Summary, 0, len(columns))
	for _, name := range columns {
		c, _ := complete.Column(name)
		s := Describe(timeseries.Present(c))
		s.Column = name
		out = append(out, s)
	}
	return out, nil
}

// Mean calculates the arithmetic mean, NaN for no values.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	return stat.Mean(values, nil)
}

// Stddev calculates sample standard deviation (n-1 denominator).
// Fewer than two values yield NaN.
func Stddev(values []float64) float64 {
	if len(values) < 2 {
		return math.NaN()
	}
	_, std := stat.MeanStdDev(values, nil)
	return std
}

// Percentile uses linear interpolation between closest ranks at p*(n-1),
// the pandas describe() convention.
// sorted must be pre-sorted ASC.
// p is percentile (0.25 = 25th percentile).
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if n == 1 {
		return sorted[0]
	}

	idx := p * float64(n-1)
	lower := int(idx)
	upper := lower + 1
	if upper >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}
