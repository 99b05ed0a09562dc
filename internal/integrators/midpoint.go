package integrators

import "github.com/san-kum/pidsim/internal/dynamo"

// Midpoint is the kick-drift-kick stepper the body uses. For every
// coordinate, with a the acceleration from the system:
//
//	v += a·dt/2
//	x += v·dt
//	v += a·dt/2
//
// The state is laid out as positions followed by velocities. Gains in this
// project are tuned against exactly this discretization.
type Midpoint struct{}

func NewMidpoint() *Midpoint {
	return &Midpoint{}
}

func (m *Midpoint) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	next := x.Clone()
	n := len(next) / 2
	pos, vel := next[:n], next[n:]
	halfDt := dt / 2

	kick := func(state dynamo.State, at float64) {
		acc := dyn.Derive(state, u, at)[n:]
		for i := range vel {
			vel[i] += acc[i] * halfDt
		}
	}

	kick(x, t)
	for i := range pos {
		pos[i] += vel[i] * dt
	}
	kick(next, t+dt)
	return next
}
