package control

// None never pushes. Used as the open-loop baseline.
type None struct{}

func NewNone() *None {
	return &None{}
}

func (n *None) Evaluate(err float64) float64 { return 0 }
func (n *None) Reset()                       {}
