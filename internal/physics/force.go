package physics

// Compose returns the net acceleration on the body: the controller command
// plus the constant bias force (current, wind). The bias is never seen by the
// controller, which has to reject it through the measured error.
func Compose(command, bias float64) float64 {
	return command + bias
}
