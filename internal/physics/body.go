package physics

import (
	"github.com/san-kum/pidsim/internal/dynamo"
	"github.com/san-kum/pidsim/internal/integrators"
)

// Hull is a unit point mass: dx/dt = v, dv/dt = u.
type Hull struct{}

func (Hull) StateDim() int   { return 2 }
func (Hull) ControlDim() int { return 1 }

func (Hull) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	acc := 0.0
	if len(u) > 0 {
		acc = u[0]
	}
	return dynamo.State{x[1], acc}
}

// Body is the simulation state of one run. dt is fixed at construction;
// position and velocity change only through Update.
type Body struct {
	dt      float64
	elapsed float64
	x       dynamo.State
	hull    Hull
	integ   dynamo.Integrator
	u       dynamo.Control
}

type BodyOption func(*Body)

// WithIntegrator replaces the midpoint stepper. Only diagnostics use this.
func WithIntegrator(integ dynamo.Integrator) BodyOption {
	return func(b *Body) {
		if integ != nil {
			b.integ = integ
		}
	}
}

// WithVelocity sets the initial velocity, zero otherwise.
func WithVelocity(v float64) BodyOption {
	return func(b *Body) { b.x[1] = v }
}

func NewBody(dt, position float64, opts ...BodyOption) (*Body, error) {
	if !(dt > 0) {
		return nil, dynamo.Bounds("dt", dt, "must be positive")
	}
	b := &Body{
		dt:    dt,
		x:     dynamo.State{position, 0},
		integ: integrators.NewMidpoint(),
		u:     make(dynamo.Control, 1),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Update advances the body by one dt under the given acceleration.
func (b *Body) Update(acceleration float64) {
	b.u[0] = acceleration
	b.x = b.integ.Step(b.hull, b.x, b.u, b.elapsed, b.dt)
	b.elapsed += b.dt
}

func (b *Body) Dt() float64       { return b.dt }
func (b *Body) Position() float64 { return b.x[0] }
func (b *Body) Velocity() float64 { return b.x[1] }

// State returns a copy of [position, velocity].
func (b *Body) State() dynamo.State { return b.x.Clone() }
