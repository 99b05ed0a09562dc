// Package viz is the live terminal dashboard built on Bubble Tea.
//
// A [sim.Driver] owns the loop and publishes frames; [Model] renders the
// latest one:
//
//   - the boat scene on a braille [Canvas] (water line, target, current)
//   - error and target/position charts with symmetric autoscaled axes
//   - target, position and error readouts to two decimals
//   - the tunables, with the selected one adjustable from the keyboard
//
// # Key Bindings
//
//	Space   - Pause/Resume
//	R       - Reset the run (tunables are kept)
//	Tab     - Select next parameter
//	Up/Down - Adjust selected parameter
//	+/-     - Zoom
//	T       - Cycle color themes
//	S       - Save the scene as SVG
//	?       - Show help overlay
package viz
