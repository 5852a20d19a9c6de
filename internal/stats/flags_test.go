package stats

import (
	"testing"
	"time"
)

func d(day int) time.Time {
	return time.Date(2019, 9, day, 0, 0, 0, 0, time.UTC)
}

func TestCountTrue(t *testing.T) {
	if got := CountTrue([]bool{true, false, true}); got != 2 {
		t.Errorf("expected 2, got %d", got)
	}
	if got := CountTrue(nil); got != 0 {
		t.Errorf("expected 0, got %d", got)
	}
}

func TestTrueDates(t *testing.T) {
	got := TrueDates([]bool{false, true, true}, []time.Time{d(16), d(17), d(18)})
	if len(got) != 2 || !got[0].Equal(d(17)) || !got[1].Equal(d(18)) {
		t.Errorf("unexpected dates: %v", got)
	}
}

func TestIntersectDates(t *testing.T) {
	tests := []struct {
		name string
		a, b []time.Time
		want []time.Time
	}{
		{"disjoint", []time.Time{d(1)}, []time.Time{d(2)}, nil},
		{"overlap", []time.Time{d(17), d(16), d(18)}, []time.Time{d(18), d(17)}, []time.Time{d(17), d(18)}},
		{"duplicates collapse", []time.Time{d(17), d(17)}, []time.Time{d(17)}, []time.Time{d(17)}},
		{"empty", nil, []time.Time{d(17)}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IntersectDates(tt.a, tt.b)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d dates, got %d (%v)", len(tt.want), len(got), got)
			}
			for i := range got {
				if !got[i].Equal(tt.want[i]) {
					t.Errorf("index %d: expected %v, got %v", i, tt.want[i], got[i])
				}
			}
		})
	}
}
