// Package series keeps the sliding-window sample buffers that charts read and
// the symmetric autoscale rule applied to them.
package series

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/pidsim/internal/dynamo"
)

// DefaultHorizon is the visible time span in seconds.
const DefaultHorizon = 10.0

var ErrNonMonotonic = errors.New("series: sample time not after latest")

type Sample struct {
	Time  float64 `json:"t"`
	Value float64 `json:"v"`
}

// Window holds samples in strictly increasing time order, none older than
// latest - horizon.
type Window struct {
	name    string
	horizon float64
	samples []Sample
}

func NewWindow(name string, horizon float64) (*Window, error) {
	if err := ValidateHorizon(horizon); err != nil {
		return nil, err
	}
	return &Window{name: name, horizon: horizon}, nil
}

func ValidateHorizon(h float64) error {
	if !(h > 0) || math.IsInf(h, 1) {
		return dynamo.Bounds("horizon", h, "must be positive and finite")
	}
	return nil
}

func (w *Window) Name() string     { return w.name }
func (w *Window) Horizon() float64 { return w.horizon }
func (w *Window) Len() int         { return len(w.samples) }
func (w *Window) Empty() bool      { return len(w.samples) == 0 }

// Record appends a sample and drops everything that fell out of the horizon.
func (w *Window) Record(t, v float64) error {
	if n := len(w.samples); n > 0 && !(t > w.samples[n-1].Time) {
		return fmt.Errorf("%s at t=%g (latest %g): %w", w.name, t, w.samples[n-1].Time, ErrNonMonotonic)
	}
	w.samples = append(w.samples, Sample{Time: t, Value: v})
	w.prune()
	return nil
}

func (w *Window) prune() {
	if len(w.samples) == 0 {
		return
	}
	cut := w.samples[len(w.samples)-1].Time - w.horizon
	i := 0
	for i < len(w.samples) && w.samples[i].Time < cut {
		i++
	}
	if i == 0 {
		return
	}
	// Shift down so the backing array does not grow without bound.
	n := copy(w.samples, w.samples[i:])
	w.samples = w.samples[:n]
}

// SetHorizon changes the window span and prunes right away. A non-positive
// horizon is rejected and the previous one kept.
func (w *Window) SetHorizon(h float64) error {
	if err := ValidateHorizon(h); err != nil {
		return err
	}
	w.horizon = h
	w.prune()
	return nil
}

// Latest returns the newest sample; ok is false when the window is empty.
func (w *Window) Latest() (Sample, bool) {
	if len(w.samples) == 0 {
		return Sample{}, false
	}
	return w.samples[len(w.samples)-1], true
}

// Visible returns a copy of the retained samples, oldest first.
func (w *Window) Visible() []Sample {
	out := make([]Sample, len(w.samples))
	copy(out, w.samples)
	return out
}

// Values returns just the sample values, oldest first.
func (w *Window) Values() []float64 {
	out := make([]float64, len(w.samples))
	for i, s := range w.samples {
		out[i] = s.Value
	}
	return out
}

// VisibleRange is the horizontal axis span [max(0, latest-horizon), latest].
func (w *Window) VisibleRange() (lo, hi float64) {
	s, ok := w.Latest()
	if !ok {
		return 0, 0
	}
	return math.Max(0, s.Time-w.horizon), s.Time
}

func (w *Window) Clear() {
	w.samples = w.samples[:0]
}
