package sim

import (
	"fmt"
	"math"

	"github.com/san-kum/pidsim/internal/dynamo"
	"github.com/san-kum/pidsim/internal/series"
	"github.com/san-kum/pidsim/internal/signal"
)

// Tunable parameter names accepted by Set and Loop.SetParam.
const (
	ParamKp        = "kp"
	ParamKi        = "ki"
	ParamKd        = "kd"
	ParamBias      = "bias"
	ParamAmplitude = "amplitude"
	ParamPeriod    = "period"
	ParamHorizon   = "horizon"
)

const (
	DefaultKp   = 15.0
	DefaultKi   = 1.0
	DefaultKd   = 300.0
	DefaultBias = -100.0
	DefaultFPS  = 60
)

// Tunables holds every operator-adjustable value. The loop reads each field
// at most once per tick.
type Tunables struct {
	Kp        float64
	Ki        float64
	Kd        float64
	Bias      float64
	Amplitude float64
	Period    float64
	Horizon   float64
}

func DefaultTunables() Tunables {
	return Tunables{
		Kp:        DefaultKp,
		Ki:        DefaultKi,
		Kd:        DefaultKd,
		Bias:      DefaultBias,
		Amplitude: signal.DefaultAmplitude,
		Period:    signal.DefaultPeriod,
		Horizon:   series.DefaultHorizon,
	}
}

func (t Tunables) Validate() error {
	if err := signal.ValidatePeriod(t.Period); err != nil {
		return err
	}
	if err := series.ValidateHorizon(t.Horizon); err != nil {
		return err
	}
	for name, v := range t.Params() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return dynamo.Bounds(name, v, "must be finite")
		}
	}
	return nil
}

// Set assigns one parameter by name. Invalid values, including NaN and
// ±Inf for any parameter, leave t unchanged.
func (t *Tunables) Set(name string, v float64) error {
	if _, known := t.Params()[name]; known && (math.IsNaN(v) || math.IsInf(v, 0)) {
		return dynamo.Bounds(name, v, "must be finite")
	}
	switch name {
	case ParamKp:
		t.Kp = v
	case ParamKi:
		t.Ki = v
	case ParamKd:
		t.Kd = v
	case ParamBias:
		t.Bias = v
	case ParamAmplitude:
		t.Amplitude = v
	case ParamPeriod:
		if err := signal.ValidatePeriod(v); err != nil {
			return err
		}
		t.Period = v
	case ParamHorizon:
		if err := series.ValidateHorizon(v); err != nil {
			return err
		}
		t.Horizon = v
	default:
		return fmt.Errorf("tunable %q: %w", name, dynamo.ErrUnknownParam)
	}
	return nil
}

func (t Tunables) Params() map[string]float64 {
	return map[string]float64{
		ParamKp:        t.Kp,
		ParamKi:        t.Ki,
		ParamKd:        t.Kd,
		ParamBias:      t.Bias,
		ParamAmplitude: t.Amplitude,
		ParamPeriod:    t.Period,
		ParamHorizon:   t.Horizon,
	}
}

// ParamNames lists the tunables in display order.
func ParamNames() []string {
	return []string{ParamKp, ParamKi, ParamKd, ParamBias, ParamAmplitude, ParamPeriod, ParamHorizon}
}

// ParamStep is the increment the displays use when nudging a tunable.
func ParamStep(name string) float64 {
	switch name {
	case ParamKi:
		return 0.1
	case ParamKd, ParamBias:
		return 10
	case ParamAmplitude:
		return 5
	default:
		return 1
	}
}
