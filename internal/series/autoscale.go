package series

import "math"

// SymmetricBounds computes a zero-centred axis range covering every visible
// value of the given windows. The range never shrinks below ±1. ok is false
// when there is nothing to fit.
func SymmetricBounds(windows ...*Window) (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, w := range windows {
		if w == nil {
			continue
		}
		for _, s := range w.samples {
			lo = math.Min(lo, s.Value)
			hi = math.Max(hi, s.Value)
			ok = true
		}
	}
	if !ok {
		return 0, 0, false
	}
	lo, hi = symmetric(lo, hi)
	return lo, hi, true
}

// SymmetricRange applies the same rule to plain value slices, for charts
// drawn from a finished run rather than a live window.
func SymmetricRange(values ...[]float64) (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, vs := range values {
		for _, v := range vs {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
			ok = true
		}
	}
	if !ok {
		return 0, 0, false
	}
	lo, hi = symmetric(lo, hi)
	return lo, hi, true
}

func symmetric(lo, hi float64) (float64, float64) {
	hi = math.Max(1, hi)
	lo = math.Min(-1, lo)
	m := math.Max(math.Abs(hi), math.Abs(lo))
	return -m, m
}

// DefaultAxisLimit is the chart range before any data arrives.
const DefaultAxisLimit = 120.0

// Axis is a chart's vertical range, refit every tick.
type Axis struct {
	Min, Max float64
}

func DefaultAxis() Axis {
	return Axis{Min: -DefaultAxisLimit, Max: DefaultAxisLimit}
}

// Fit applies SymmetricBounds; with no samples the bounds stay as they are.
func (a *Axis) Fit(windows ...*Window) {
	if lo, hi, ok := SymmetricBounds(windows...); ok {
		a.Min, a.Max = lo, hi
	}
}
