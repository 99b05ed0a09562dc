package metrics

import (
	"math"

	"github.com/san-kum/pidsim/internal/dynamo"
)

// DefaultExcursionThreshold is the |error| treated as off-target.
const DefaultExcursionThreshold = 5.0

// Excursion is the fraction of ticks whose |error| exceeds a threshold.
type Excursion struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewExcursion(threshold float64) *Excursion {
	return &Excursion{
		name:      "excursion",
		threshold: threshold,
	}
}

func (s *Excursion) Name() string {
	return s.name
}

func (s *Excursion) Observe(r dynamo.Reading) {
	s.samples++
	if math.Abs(r.Error) > s.threshold {
		s.violations++
	}
}

func (s *Excursion) Value() float64 {
	if s.samples == 0 {
		return 0
	}
	return float64(s.violations) / float64(s.samples)
}

func (s *Excursion) Reset() {
	s.violations = 0
	s.samples = 0
}
