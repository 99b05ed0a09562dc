// Package control provides feedback controllers for the tracking loop.
//
// Controllers implement [dynamo.Controller]: they receive the tracking error
// of one tick and return a command.
//
//   - [PID]: Proportional-Integral-Derivative controller, per-tick discretization
//   - [None]: open loop (zero command)
//
// # Usage
//
//	pid := control.NewPID(15, 1, 300)  // Kp, Ki, Kd
//	cmd := pid.Evaluate(target - position)
//
// The integral term is a plain sum of per-tick errors and the derivative a
// first difference between ticks. Neither is scaled by the timestep, so gains
// are only meaningful at the frame rate they were tuned for.
//
// Controllers implementing [dynamo.Configurable] support live tuning.
package control
