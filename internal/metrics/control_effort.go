package metrics

import (
	"math"

	"github.com/san-kum/pidsim/internal/dynamo"
)

// ControlEffort is the mean |command| over the run.
type ControlEffort struct {
	name    string
	sum     float64
	samples int
}

func NewControlEffort() *ControlEffort {
	return &ControlEffort{
		name: "control_effort",
	}
}

func (c *ControlEffort) Name() string {
	return c.name
}

func (c *ControlEffort) Observe(r dynamo.Reading) {
	c.sum += math.Abs(r.Command)
	c.samples++
}

func (c *ControlEffort) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *ControlEffort) Reset() {
	c.sum = 0
	c.samples = 0
}

// PeakCommand is the largest |command| seen.
type PeakCommand struct {
	peak float64
}

func NewPeakCommand() *PeakCommand { return &PeakCommand{} }

func (p *PeakCommand) Name() string { return "peak_command" }

func (p *PeakCommand) Observe(r dynamo.Reading) {
	p.peak = math.Max(p.peak, math.Abs(r.Command))
}

func (p *PeakCommand) Value() float64 { return p.peak }
func (p *PeakCommand) Reset()         { p.peak = 0 }
