// Package dynamo provides the shared primitives of the pidsim control loop.
//
// The package defines the small set of interfaces and types that the
// numerical core and its display layers agree on:
//
//   - [State]: vector representing body state (positions then velocities)
//   - [System]: interface for ODE systems (dX/dt = f(X, u, t))
//   - [Integrator]: fixed-step numerical stepper
//   - [Controller]: scalar error-to-command regulator
//   - [Reading]: values produced by one control tick
//   - [Metric], [Observer]: hooks notified after every tick
//
// # Example
//
//	loop, _ := sim.New(sim.DefaultTunables(), sim.WithSeed(1))
//	for i := 0; i < 600; i++ {
//	    r := loop.Step()
//	    fmt.Println(r.Target, r.Position, r.Error)
//	}
//
// # Thread Safety
//
// Nothing in the core is safe for concurrent use. A single goroutine owns a
// loop; [Observer] callbacks run on that goroutine.
package dynamo
