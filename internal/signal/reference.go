// Package signal generates the moving setpoint the body has to track.
package signal

import (
	"math"
	"math/rand"

	"github.com/san-kum/pidsim/internal/dynamo"
)

const (
	DefaultAmplitude = 80.0
	DefaultPeriod    = 10.0
)

// Reference is the sinusoid A·sin(2π(t+φ)/T).
//
// The phase is added to time before scaling, so it shifts the wave by φ
// seconds rather than φ radians.
type Reference struct {
	Amplitude float64
	Period    float64
	Phase     float64
}

func New(amplitude, period float64) (Reference, error) {
	if err := ValidatePeriod(period); err != nil {
		return Reference{}, err
	}
	return Reference{Amplitude: amplitude, Period: period}, nil
}

// Value is undefined for a zero period; callers validate before assigning.
func (r Reference) Value(t float64) float64 {
	return r.Amplitude * math.Sin(2*math.Pi*(t+r.Phase)/r.Period)
}

// DrawPhase replaces the phase with a uniform draw from [0, 2π).
func (r *Reference) DrawPhase(rng *rand.Rand) {
	r.Phase = 2 * math.Pi * rng.Float64()
}

// SetPeriod keeps the previous period when p is not strictly positive.
func (r *Reference) SetPeriod(p float64) error {
	if err := ValidatePeriod(p); err != nil {
		return err
	}
	r.Period = p
	return nil
}

func ValidatePeriod(p float64) error {
	if !(p > 0) || math.IsInf(p, 1) {
		return dynamo.Bounds("period", p, "must be positive and finite")
	}
	return nil
}
