package timeseries

import "math"

// Element-wise operations. Binary operations expect operands taken from the same
// table, so both columns have the index length. A missing operand yields a
// missing result; comparisons against a missing operand yield false.

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}

// Add returns a + b.
func Add(a, b Column) Column {
	return zip(a, b, func(x, y float64) float64 { return x + y })
}

// Sub returns a - b.
func Sub(a, b Column) Column {
	return zip(a, b, func(x, y float64) float64 { return x - y })
}

// Div returns a / b. Division by zero follows IEEE-754 (±Inf or NaN).
func Div(a, b Column) Column {
	return zip(a, b, func(x, y float64) float64 { return x / y })
}

// Scale returns a * k.
func Scale(a Column, k float64) Column {
	out := make(Column, len(a))
	for i, v := range a {
		if v != nil {
			out[i] = Float(*v * k)
		}
	}
	return out
}

// DivScalar returns a / k.
func DivScalar(a Column, k float64) Column {
	out := make(Column, len(a))
	for i, v := range a {
		if v != nil {
			out[i] = Float(*v / k)
		}
	}
	return out
}

// Coalesce returns a where present, otherwise b.
func Coalesce(a, b Column) Column {
	out := make(Column, len(a))
	for i := range a {
		switch {
		case a[i] != nil:
			out[i] = Float(*a[i])
		case b[i] != nil:
			out[i] = Float(*b[i])
		}
	}
	return out
}

// Greater returns a > b per row.
func Greater(a, b Column) []bool {
	out := make([]bool, len(a))
	for i := range a {
		if a[i] != nil && b[i] != nil {
			out[i] = *a[i] > *b[i]
		}
	}
	return out
}

// GreaterScalar returns a > k per row.
func GreaterScalar(a Column, k float64) []bool {
	out := make([]bool, len(a))
	for i, v := range a {
		if v != nil {
			out[i] = *v > k
		}
	}
	return out
}

// Present returns the non-missing values of c in index order. NaN counts as missing.
func Present(c Column) []float64 {
	out := make([]float64, 0, len(c))
	for _, v := range c {
		if v != nil && !math.IsNaN(*v) {
			out = append(out, *v)
		}
	}
	return out
}

func zip(a, b Column, fn func(x, y float64) float64) Column {
	out := make(Column, len(a))
	for i := range a {
		if a[i] != nil && b[i] != nil {
			out[i] = Float(fn(*a[i], *b[i]))
		}
	}
	return out
}
