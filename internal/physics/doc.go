// Package physics provides the simulated body the controller steers.
//
// The body is a unit mass on a line whose acceleration is set directly by the
// net force each tick. [Hull] implements [dynamo.System] for it and [Body]
// owns the fixed timestep and the position/velocity pair, advanced only by
// [Body.Update]:
//
//	b, _ := physics.NewBody(1.0/60, 0)
//	b.Update(physics.Compose(command, bias))
//	fmt.Println(b.Position(), b.Velocity())
package physics
