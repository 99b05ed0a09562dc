package sim_test

import (
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/pidsim/internal/dynamo"
	"github.com/san-kum/pidsim/internal/sim"
)

type countingMetric struct{ n int }

func (c *countingMetric) Name() string           { return "count" }
func (c *countingMetric) Observe(dynamo.Reading) { c.n++ }
func (c *countingMetric) Value() float64         { return float64(c.n) }
func (c *countingMetric) Reset()                 { c.n = 0 }

var _ = Describe("Run", func() {
	It("collects one reading per tick", func() {
		l := newLoop(sim.DefaultTunables())
		res, err := sim.Run(context.Background(), l, 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.StepsTaken).To(Equal(600))
		Expect(res.Readings).To(HaveLen(600))
		Expect(res.Dt).To(Equal(dt))
		Expect(res.Times()[599]).To(Equal(599 * dt))
		Expect(res.Column(sim.MetricError)[0]).To(Equal(res.Readings[0].Error))
	})

	It("fills metric values", func() {
		l := newLoop(sim.DefaultTunables())
		m := &countingMetric{}
		l.AddMetric(m)
		res, err := sim.Run(context.Background(), l, 1)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Metrics).To(HaveKeyWithValue("count", 60.0))
	})

	It("rejects a non-positive duration", func() {
		_, err := sim.Run(context.Background(), newLoop(sim.DefaultTunables()), 0)
		Expect(err).To(HaveOccurred())
	})

	It("calls hooks with the upcoming tick time", func() {
		l := newLoop(sim.DefaultTunables())
		var times []float64
		hook := func(l *sim.Loop, t float64) error {
			times = append(times, t)
			return nil
		}
		_, err := sim.Run(context.Background(), l, 0.05, hook)
		Expect(err).NotTo(HaveOccurred())
		Expect(times).To(Equal([]float64{0, dt, 2 * dt}))
	})

	It("wraps hook failures with the step", func() {
		l := newLoop(sim.DefaultTunables())
		hook := func(l *sim.Loop, t float64) error {
			if l.Frame() == 3 {
				return l.SetPeriod(-1)
			}
			return nil
		}
		res, err := sim.Run(context.Background(), l, 1, hook)
		var se *dynamo.SimulationError
		Expect(errors.As(err, &se)).To(BeTrue())
		Expect(se.Step).To(Equal(3))
		Expect(errors.Is(err, dynamo.ErrParameterBounds)).To(BeTrue())
		Expect(res.Readings).To(HaveLen(3))
	})

	It("stops on a blown-up state", func() {
		tun := sim.DefaultTunables()
		tun.Kp = math.MaxFloat64
		l := newLoop(tun, sim.WithStartPosition(-1e10))
		_, err := sim.Run(context.Background(), l, 10)
		Expect(errors.Is(err, dynamo.ErrInvalidState)).To(BeTrue())
	})

	It("stops when the context is canceled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		res, err := sim.Run(ctx, newLoop(sim.DefaultTunables()), 10)
		Expect(errors.Is(err, context.Canceled)).To(BeTrue())
		Expect(res.Readings).To(BeEmpty())
	})
})
