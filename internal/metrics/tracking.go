package metrics

import (
	"math"

	"github.com/san-kum/pidsim/internal/dynamo"
)

// IAE is the integral of |error| over simulated time.
type IAE struct {
	dt  float64
	sum float64
}

func NewIAE(dt float64) *IAE {
	return &IAE{dt: dt}
}

func (m *IAE) Name() string { return "iae" }

func (m *IAE) Observe(r dynamo.Reading) {
	m.sum += math.Abs(r.Error) * m.dt
}

func (m *IAE) Value() float64 { return m.sum }
func (m *IAE) Reset()         { m.sum = 0 }

// RMS is the root mean square tracking error.
type RMS struct {
	sumSq   float64
	samples int
}

func NewRMS() *RMS {
	return &RMS{}
}

func (m *RMS) Name() string { return "rms_error" }

func (m *RMS) Observe(r dynamo.Reading) {
	m.sumSq += r.Error * r.Error
	m.samples++
}

func (m *RMS) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return math.Sqrt(m.sumSq / float64(m.samples))
}

func (m *RMS) Reset() {
	m.sumSq = 0
	m.samples = 0
}
