package analysis

import (
	"math"

	"github.com/san-kum/pidsim/internal/dynamo"
)

type TrackingStats struct {
	MeanAbsError float64
	MaxAbsError  float64
	RMSError     float64
	MeanError    float64
	// Lag is how far position trails target, in seconds.
	Lag float64
}

// Track summarises how well position followed target. maxLag bounds the
// shift searched for Lag, in seconds.
func Track(readings []dynamo.Reading, dt, maxLag float64) TrackingStats {
	var s TrackingStats
	n := len(readings)
	if n == 0 {
		return s
	}

	var sumSq float64
	for _, r := range readings {
		abs := math.Abs(r.Error)
		s.MeanAbsError += abs
		s.MeanError += r.Error
		s.MaxAbsError = math.Max(s.MaxAbsError, abs)
		sumSq += r.Error * r.Error
	}
	s.MeanAbsError /= float64(n)
	s.MeanError /= float64(n)
	s.RMSError = math.Sqrt(sumSq / float64(n))

	if dt > 0 {
		s.Lag = float64(bestShift(readings, int(maxLag/dt))) * dt
	}
	return s
}

// bestShift finds the k minimising the mean squared gap between target[i]
// and position[i+k].
func bestShift(readings []dynamo.Reading, maxShift int) int {
	best, bestCost := 0, math.Inf(1)
	for k := 0; k <= maxShift && k < len(readings); k++ {
		var cost float64
		m := len(readings) - k
		for i := 0; i < m; i++ {
			d := readings[i].Target - readings[i+k].Position
			cost += d * d
		}
		cost /= float64(m)
		if cost < bestCost {
			best, bestCost = k, cost
		}
	}
	return best
}

type StepStats struct {
	InitialError float64
	// Overshoot is the largest excursion past the target, as a fraction of
	// the initial error.
	Overshoot float64
	RiseTime  float64
	// SettlingTime is when |error| last left the tolerance band; NaN if the
	// run ended outside it.
	SettlingTime float64
}

// StepResponse reads a run whose target is still (zero amplitude) as a step
// response. tolerance is relative to the initial error.
func StepResponse(readings []dynamo.Reading, tolerance float64) StepStats {
	s := StepStats{RiseTime: math.NaN(), SettlingTime: math.NaN()}
	if len(readings) == 0 {
		return s
	}

	e0 := readings[0].Error
	s.InitialError = e0
	if e0 == 0 {
		s.RiseTime, s.SettlingTime = 0, 0
		return s
	}

	band := math.Abs(e0) * tolerance
	last := -1
	for i, r := range readings {
		// error of opposite sign means position went past the target
		if past := -r.Error / e0; past > s.Overshoot {
			s.Overshoot = past
		}
		if math.IsNaN(s.RiseTime) && r.Error/e0 <= 0.1 {
			s.RiseTime = r.Time - readings[0].Time
		}
		if math.Abs(r.Error) > band {
			last = i
		}
	}

	switch {
	case last < 0:
		s.SettlingTime = 0
	case last+1 < len(readings):
		s.SettlingTime = readings[last+1].Time - readings[0].Time
	}
	return s
}
