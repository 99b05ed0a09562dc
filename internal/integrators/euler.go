package integrators

import "github.com/san-kum/pidsim/internal/dynamo"

// Euler is the explicit first-order stepper. It is only used to show how far
// a forward-Euler body drifts from the midpoint one under the same gains.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t float64, dt float64) dynamo.State {
	dx := dyn.Derive(x, u, t)
	result := make(dynamo.State, len(x))
	for i := range x {
		result[i] = x[i] + dt*dx[i]
	}
	return result
}

// ByName returns a fresh integrator for a registry name.
func ByName(name string) (dynamo.Integrator, bool) {
	switch name {
	case "midpoint", "leapfrog", "":
		return NewMidpoint(), true
	case "euler":
		return NewEuler(), true
	}
	return nil, false
}

// Names lists the integrators ByName understands.
func Names() []string {
	return []string{"midpoint", "euler"}
}
