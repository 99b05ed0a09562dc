package dynamo

import (
	"math"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

type Control []float64

// System describes dX/dt for a state laid out as positions followed by
// velocities of equal length.
type System interface {
	Derive(x State, u Control, t float64) State
	StateDim() int
	ControlDim() int
}

type Integrator interface {
	Step(dyn System, x State, u Control, t float64, dt float64) State
}

// Controller turns the tracking error of one tick into a command.
// Evaluate is called exactly once per tick.
type Controller interface {
	Evaluate(err float64) float64
	Reset()
}

// Reading is the outcome of a single control tick.
type Reading struct {
	Time         float64
	Target       float64
	Position     float64
	Velocity     float64
	Error        float64
	Command      float64
	Acceleration float64
}

// Valid reports whether every field is finite.
func (r Reading) Valid() bool {
	return State{r.Target, r.Position, r.Velocity, r.Error, r.Command, r.Acceleration}.IsValid()
}

type Metric interface {
	Name() string
	Observe(r Reading)
	Value() float64
	Reset()
}

type Observer interface {
	OnTick(r Reading)
}

// ObserverFunc adapts a plain function to Observer.
type ObserverFunc func(r Reading)

func (f ObserverFunc) OnTick(r Reading) { f(r) }

type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}
