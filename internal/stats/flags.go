package stats

import (
	"sort"
	"time"
)

// CountTrue counts set flags.
func CountTrue(flags []bool) int {
	n := 0
	for _, f := range flags {
		if f {
			n++
		}
	}
	return n
}

// TrueDates returns the dates whose flag is set. flags and dates are parallel.
func TrueDates(flags []bool, dates []time.Time) []time.Time {
	var out []time.Time
	for i, f := range flags {
		if f {
			out = append(out, dates[i])
		}
	}
	return out
}

// IntersectDates returns dates present in both a and b, sorted ascending.
func IntersectDates(a, b []time.Time) []time.Time {
	inB := make(map[time.Time]struct{}, len(b))
	for _, d := range b {
		inB[d] = struct{}{}
	}

	var out []time.Time
	seen := make(map[time.Time]struct{})
	for _, d := range a {
		if _, ok := inB[d]; !ok {
			continue
		}
		if _, dup := seen[d]; dup {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}
