package stats

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repo-rate-lab/internal/timeseries"
)

const eps = 1e-9

func TestDescribe_KnownValues(t *testing.T) {
	// 1..5: mean 3, sample std sqrt(2.5), quartiles 2/3/4
	s := Describe([]float64{5, 1, 4, 2, 3})

	if s.Count != 5 {
		t.Errorf("expected count 5, got %d", s.Count)
	}
	if math.Abs(s.Mean-3) > eps {
		t.Errorf("expected mean 3, got %f", s.Mean)
	}
	if math.Abs(s.Std-math.Sqrt(2.5)) > eps {
		t.Errorf("expected std %f, got %f", math.Sqrt(2.5), s.Std)
	}
	if s.Min != 1 || s.Max != 5 {
		t.Errorf("expected min 1 max 5, got %f %f", s.Min, s.Max)
	}
	if s.P25 != 2 || s.P50 != 3 || s.P75 != 4 {
		t.Errorf("expected quartiles 2/3/4, got %f/%f/%f", s.P25, s.P50, s.P75)
	}
}

func TestDescribe_Interpolates(t *testing.T) {
	// n=4: P25 index 0.75 -> 1 + 0.75*(2-1)
	s := Describe([]float64{1, 2, 3, 4})
	assert.InDelta(t, 1.75, s.P25, eps)
	assert.InDelta(t, 2.5, s.P50, eps)
	assert.InDelta(t, 3.25, s.P75, eps)
}

func TestDescribe_Empty(t *testing.T) {
	s := Describe(nil)
	assert.Equal(t, 0, s.Count)
	assert.True(t, math.IsNaN(s.Mean))
	assert.True(t, math.IsNaN(s.Std))
}

func TestStddev_SingleValueIsNaN(t *testing.T) {
	assert.True(t, math.IsNaN(Stddev([]float64{0.42})))
}

func TestMeanStddev_SampleStatistics(t *testing.T) {
	values := []float64{0, 0, 0, 0, 0.3, 0}
	assert.InDelta(t, 0.05, Mean(values), eps)
	assert.InDelta(t, math.Sqrt(0.015), Stddev(values), eps)
	assert.InDelta(t, math.Sqrt(2), Stddev([]float64{1, 3}), eps)
	assert.True(t, math.IsNaN(Mean(nil)))
}

func TestDescribeTable_DropsIncompleteRows(t *testing.T) {
	dates := []time.Time{
		time.Date(2019, 9, 16, 0, 0, 0, 0, time.UTC),
		time.Date(2019, 9, 17, 0, 0, 0, 0, time.UTC),
		time.Date(2019, 9, 18, 0, 0, 0, 0, time.UTC),
	}
	tbl, err := timeseries.NewTable(dates)
	require.NoError(t, err)
	f := timeseries.Float
	require.NoError(t, tbl.SetColumn("SOFR", timeseries.Column{f(2.43), f(5.25), f(2.55)}))
	require.NoError(t, tbl.SetColumn("REPO-TRI_AR_OO-P", timeseries.Column{f(2.40), nil, f(2.50)}))

	out, err := DescribeTable(tbl, "SOFR", "REPO-TRI_AR_OO-P")
	require.NoError(t, err)
	require.Len(t, out, 2)

	// The 5.25 spike row is dropped because tri-party is missing.
	assert.Equal(t, "SOFR", out[0].Column)
	assert.Equal(t, 2, out[0].Count)
	assert.InDelta(t, 2.49, out[0].Mean, eps)
	assert.InDelta(t, 2.55, out[0].Max, eps)
}

func TestDescribeTable_MissingColumn(t *testing.T) {
	tbl, err := timeseries.NewTable(nil)
	require.NoError(t, err)

	_, err = DescribeTable(tbl, "REPO-GCF_AR_OO-P")
	var missing *timeseries.MissingColumnError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "REPO-GCF_AR_OO-P", missing.Column)
}
