package control

import (
	"fmt"

	"github.com/san-kum/pidsim/internal/dynamo"
)

// Terms is the breakdown of one PID evaluation.
type Terms struct {
	Proportional float64
	Derivative   float64
	Integral     float64
}

// Command sums the terms in the order the controller does.
func (t Terms) Command() float64 {
	return t.Proportional + t.Derivative + t.Integral
}

type PID struct {
	Kp float64
	Ki float64
	Kd float64

	total     float64
	lastError float64
	primed    bool
}

func NewPID(kp, ki, kd float64) *PID {
	return &PID{
		Kp: kp,
		Ki: ki,
		Kd: kd,
	}
}

// Step consumes the error of one tick.
func (p *PID) Step(err float64) Terms {
	if !p.primed {
		// first tick: no derivative kick
		p.lastError = err
		p.primed = true
	}

	p.total += err

	terms := Terms{
		Proportional: p.Kp * err,
		Derivative:   p.Kd * (err - p.lastError),
		Integral:     p.Ki * p.total,
	}
	p.lastError = err

	// With integral action off the accumulator must not carry a steady-state
	// error over to when it is switched back on.
	if p.Ki == 0 {
		p.total = 0
	}

	return terms
}

func (p *PID) Evaluate(err float64) float64 {
	return p.Step(err).Command()
}

// Reset clears integral and derivative state
func (p *PID) Reset() {
	p.total = 0
	p.lastError = 0
	p.primed = false
}

// RunningTotal is the accumulated per-tick error sum.
func (p *PID) RunningTotal() float64 { return p.total }

// LastError reports the previous tick's error; ok is false before the first tick.
func (p *PID) LastError() (float64, bool) { return p.lastError, p.primed }

func (p *PID) SetGains(kp, ki, kd float64) {
	p.Kp, p.Ki, p.Kd = kp, ki, kd
}

// GetParams returns tunable parameters for live adjustment
func (p *PID) GetParams() map[string]float64 {
	return map[string]float64{
		"kp": p.Kp,
		"ki": p.Ki,
		"kd": p.Kd,
	}
}

// SetParam adjusts a PID gain. Any sign or magnitude is accepted.
func (p *PID) SetParam(name string, value float64) error {
	switch name {
	case "kp":
		p.Kp = value
	case "ki":
		p.Ki = value
	case "kd":
		p.Kd = value
	default:
		return fmt.Errorf("pid %q: %w", name, dynamo.ErrUnknownParam)
	}
	return nil
}
