package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/pidsim/internal/dynamo"
)

// Result is everything a headless run produced.
type Result struct {
	Readings   []dynamo.Reading
	Metrics    map[string]float64
	StepsTaken int
	Dt         float64
	Phase      float64
}

// Times returns the tick times of the run.
func (r *Result) Times() []float64 {
	out := make([]float64, len(r.Readings))
	for i, rd := range r.Readings {
		out[i] = rd.Time
	}
	return out
}

// Column extracts one series from the readings.
func (r *Result) Column(m Metric) []float64 {
	out := make([]float64, len(r.Readings))
	for i, rd := range r.Readings {
		switch m {
		case MetricError:
			out[i] = rd.Error
		case MetricTarget:
			out[i] = rd.Target
		case MetricPosition:
			out[i] = rd.Position
		case MetricCommand:
			out[i] = rd.Command
		}
	}
	return out
}

// Hook runs between ticks, before the tick at time t. Scenarios use it to
// change tunables.
type Hook func(l *Loop, t float64) error

// Run steps the loop for duration seconds of simulated time from its current
// state and collects every reading. It stops early with a SimulationError
// when the state stops being finite.
func Run(ctx context.Context, l *Loop, duration float64, hooks ...Hook) (*Result, error) {
	if !(duration > 0) {
		return nil, fmt.Errorf("duration must be positive, got %f", duration)
	}

	steps := int(math.Round(duration / l.dt))
	result := &Result{
		Readings: make([]dynamo.Reading, 0, steps),
		Metrics:  make(map[string]float64),
		Dt:       l.dt,
		Phase:    l.Phase(),
	}

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		t := float64(l.frame) * l.dt
		for _, h := range hooks {
			if err := h(l, t); err != nil {
				return result, &dynamo.SimulationError{Step: i, Time: t, Wrapped: err}
			}
		}

		r := l.Step()
		result.Readings = append(result.Readings, r)
		result.StepsTaken++

		if !r.Valid() {
			collect(l, result)
			return result, &dynamo.SimulationError{Step: i, Time: r.Time, Wrapped: dynamo.ErrInvalidState}
		}
	}

	collect(l, result)
	return result, nil
}

func collect(l *Loop, result *Result) {
	for _, m := range l.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}
