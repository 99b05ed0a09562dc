package sim_test

import (
	"errors"
	"math"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/pidsim/internal/control"
	"github.com/san-kum/pidsim/internal/dynamo"
	"github.com/san-kum/pidsim/internal/physics"
	"github.com/san-kum/pidsim/internal/sim"
)

const dt = 1.0 / 60

func pOnly() sim.Tunables {
	tun := sim.DefaultTunables()
	tun.Kp, tun.Ki, tun.Kd = 1, 0, 0
	tun.Bias = 0
	tun.Amplitude = 0
	return tun
}

func newLoop(tun sim.Tunables, opts ...sim.Option) *sim.Loop {
	GinkgoHelper()
	l, err := sim.New(tun, append([]sim.Option{sim.WithSeed(7)}, opts...)...)
	Expect(err).NotTo(HaveOccurred())
	return l
}

var _ = Describe("Loop", func() {
	Describe("construction", func() {
		It("uses 60 ticks per second by default", func() {
			l := newLoop(sim.DefaultTunables())
			Expect(l.FPS()).To(Equal(60))
			Expect(l.Dt()).To(Equal(dt))
			Expect(l.Frame()).To(BeZero())
		})

		It("rejects a non-positive period", func() {
			tun := sim.DefaultTunables()
			tun.Period = 0
			_, err := sim.New(tun)
			Expect(errors.Is(err, dynamo.ErrParameterBounds)).To(BeTrue())
		})

		It("rejects a non-positive fps", func() {
			_, err := sim.New(sim.DefaultTunables(), sim.WithFPS(0))
			Expect(errors.Is(err, dynamo.ErrParameterBounds)).To(BeTrue())
		})

		It("rejects an unknown integrator", func() {
			_, err := sim.New(sim.DefaultTunables(), sim.WithIntegrator("rk9"))
			Expect(errors.Is(err, dynamo.ErrUnknownParam)).To(BeTrue())
		})

		It("draws the phase from the injected source", func() {
			l := newLoop(sim.DefaultTunables(), sim.WithRand(rand.New(rand.NewSource(3))))
			want := 2 * math.Pi * rand.New(rand.NewSource(3)).Float64()
			Expect(l.Phase()).To(Equal(want))
			Expect(l.Phase()).To(BeNumerically(">=", 0))
			Expect(l.Phase()).To(BeNumerically("<", 2*math.Pi))
		})
	})

	Describe("a single tick", func() {
		It("matches the midpoint update by hand", func() {
			// target 0, start at -10: the same error as holding the target at 10 from 0
			l := newLoop(pOnly(), sim.WithStartPosition(-10))

			r := l.Tick(0)

			Expect(r.Error).To(Equal(10.0))
			Expect(r.Command).To(Equal(10.0))
			Expect(r.Acceleration).To(Equal(10.0))

			v := 10 * dt / 2
			x := -10 + v*dt
			v += 10 * dt / 2
			Expect(r.Position).To(Equal(x))
			Expect(r.Velocity).To(Equal(v))
		})

		It("applies the bias after the controller", func() {
			tun := pOnly()
			tun.Bias = -100
			l := newLoop(tun, sim.WithStartPosition(-10))

			r := l.Tick(0)
			Expect(r.Command).To(Equal(10.0))
			Expect(r.Acceleration).To(Equal(-90.0))
		})

		It("has no derivative kick on the first tick", func() {
			tun := sim.DefaultTunables()
			tun.Amplitude = 0
			pid := control.NewPID(0, 0, 0)
			l := newLoop(tun, sim.WithController(pid), sim.WithStartPosition(-5))

			r := l.Tick(0)
			// gains are pushed from the tunables before evaluation
			Expect(r.Command).To(Equal(tun.Kp*5 + tun.Ki*5))
		})

		It("reads the reference at the tick time", func() {
			tun := sim.DefaultTunables()
			l := newLoop(tun, sim.WithRand(rand.New(rand.NewSource(1))))
			r := l.Tick(1.25)
			want := tun.Amplitude * math.Sin(2*math.Pi*(1.25+l.Phase())/tun.Period)
			Expect(r.Target).To(Equal(want))
		})
	})

	Describe("Step", func() {
		It("uses frame times", func() {
			l := newLoop(sim.DefaultTunables())
			for i := 0; i < 5; i++ {
				r := l.Step()
				Expect(r.Time).To(Equal(float64(i) * dt))
			}
			Expect(l.Frame()).To(Equal(5))
		})
	})

	Describe("determinism", func() {
		It("replays exactly from the same seed", func() {
			a := newLoop(sim.DefaultTunables())
			b := newLoop(sim.DefaultTunables())
			for i := 0; i < 900; i++ {
				Expect(a.Step()).To(Equal(b.Step()))
			}
		})

		It("replays the same after a reset with a reseeded source", func() {
			l := newLoop(pOnly(), sim.WithStartPosition(3))
			first := make([]dynamo.Reading, 0, 120)
			for i := 0; i < 120; i++ {
				first = append(first, l.Step())
			}
			l.Reset()
			for i := 0; i < 120; i++ {
				Expect(l.Step()).To(Equal(first[i]))
			}
		})
	})

	Describe("proportional only", func() {
		// With the command held over the whole step the update matrix has
		// determinant 1+dt²/2, so a P-only swing grows by about dt²/4 per tick.
		It("grows no faster than the per-tick envelope", func() {
			l := newLoop(pOnly(), sim.WithStartPosition(-10))
			peak := 0.0
			for i := 1; i <= 60*120; i++ {
				r := l.Step()
				Expect(r.Valid()).To(BeTrue())
				envelope := 10 * math.Exp(float64(i)*dt*dt/4)
				Expect(math.Abs(r.Error)).To(BeNumerically("<=", 1.05*envelope), "tick %d", i)
				peak = math.Max(peak, math.Abs(r.Error))
			}
			Expect(peak).To(BeNumerically(">", 10))
		})

		It("converges once a little derivative is added", func() {
			tun := pOnly()
			tun.Kd = 30
			l := newLoop(tun, sim.WithStartPosition(-10))
			for i := 0; i < 60*60; i++ {
				Expect(l.Step().Valid()).To(BeTrue())
			}
			for i := 0; i < 60; i++ {
				Expect(math.Abs(l.Step().Error)).To(BeNumerically("<", 0.01))
			}
		})

		It("stays at rest once on target", func() {
			l := newLoop(pOnly())
			for i := 0; i < 600; i++ {
				r := l.Step()
				Expect(r.Error).To(BeNumerically("~", 0, 1e-12))
				Expect(r.Position).To(BeNumerically("~", 0, 1e-12))
			}
		})
	})

	Describe("integral switch-off", func() {
		It("clears the accumulator on the tick I becomes zero and keeps it clear", func() {
			tun := sim.DefaultTunables()
			tun.Amplitude = 0
			l := newLoop(tun, sim.WithStartPosition(-20))
			pid := l.Controller().(*control.PID)

			for i := 0; i < 30; i++ {
				l.Step()
			}
			Expect(pid.RunningTotal()).NotTo(BeZero())

			l.SetKi(0)
			for i := 0; i < 300; i++ {
				l.Step()
				Expect(pid.RunningTotal()).To(BeZero())
			}
		})
	})

	Describe("windows", func() {
		It("never keep samples older than the horizon", func() {
			tun := sim.DefaultTunables()
			tun.Horizon = 2
			l := newLoop(tun)
			for i := 0; i < 600; i++ {
				l.Step()
				for _, m := range sim.Metrics() {
					s := l.VisibleSamples(m)
					Expect(s).NotTo(BeEmpty())
					latest := s[len(s)-1].Time
					Expect(s[0].Time).To(BeNumerically(">=", latest-tun.Horizon))
				}
			}
			lo, hi := l.VisibleRange()
			Expect(hi).To(Equal(599 * dt))
			Expect(lo).To(Equal(hi - 2))
		})

		It("hand out copies", func() {
			l := newLoop(sim.DefaultTunables())
			l.Step()
			s := l.VisibleSamples(sim.MetricError)
			s[0].Value = 1e9
			Expect(l.VisibleSamples(sim.MetricError)[0].Value).NotTo(Equal(1e9))
		})

		It("shrink when the horizon does", func() {
			l := newLoop(sim.DefaultTunables())
			for i := 0; i < 600; i++ {
				l.Step()
			}
			Expect(l.SetHorizon(1)).To(Succeed())
			s := l.VisibleSamples(sim.MetricPosition)
			Expect(s[len(s)-1].Time - s[0].Time).To(BeNumerically("<=", 1+1e-9))
		})
	})

	Describe("autoscale", func() {
		It("reports nothing before the first tick", func() {
			l := newLoop(sim.DefaultTunables())
			_, _, ok := l.AutoscaleBounds(sim.MetricError)
			Expect(ok).To(BeFalse())
		})

		It("is symmetric and at least one wide", func() {
			l := newLoop(sim.DefaultTunables())
			for i := 0; i < 300; i++ {
				l.Step()
				lo, hi, ok := l.AutoscaleBounds(sim.MetricTarget, sim.MetricPosition)
				Expect(ok).To(BeTrue())
				Expect(lo).To(Equal(-hi))
				Expect(hi).To(BeNumerically(">=", 1))
			}
		})
	})

	Describe("mutators", func() {
		var l *sim.Loop

		BeforeEach(func() {
			l = newLoop(sim.DefaultTunables())
		})

		It("keep the previous period on rejection", func() {
			Expect(errors.Is(l.SetPeriod(0), dynamo.ErrParameterBounds)).To(BeTrue())
			Expect(errors.Is(l.SetPeriod(-3), dynamo.ErrParameterBounds)).To(BeTrue())
			Expect(l.Tunables().Period).To(Equal(10.0))
			Expect(l.SetPeriod(4)).To(Succeed())
			Expect(l.Tunables().Period).To(Equal(4.0))
		})

		It("keep the previous horizon on rejection", func() {
			Expect(l.SetHorizon(0)).NotTo(Succeed())
			Expect(l.Tunables().Horizon).To(Equal(10.0))
		})

		It("reject non-finite values and keep the previous setting", func() {
			for _, name := range sim.ParamNames() {
				before := l.GetParams()[name]
				for _, bad := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
					Expect(errors.Is(l.SetParam(name, bad), dynamo.ErrParameterBounds)).To(BeTrue(), name)
				}
				Expect(l.GetParams()[name]).To(Equal(before), name)
			}

			l.SetKp(math.NaN())
			l.SetGains(math.Inf(1), 2, 3)
			l.SetBias(math.Inf(-1))
			l.SetAmplitude(math.NaN())
			Expect(l.Tunables().Kp).To(Equal(sim.DefaultKp))
			Expect(l.Tunables().Ki).To(Equal(2.0))
			Expect(l.Tunables().Kd).To(Equal(3.0))
			Expect(l.Tunables().Bias).To(Equal(sim.DefaultBias))
			Expect(l.Tunables().Amplitude).To(Equal(sim.DefaultTunables().Amplitude))
			Expect(l.Tunables().Validate()).To(Succeed())
		})

		It("reject unknown names", func() {
			Expect(errors.Is(l.SetParam("gain", 1), dynamo.ErrUnknownParam)).To(BeTrue())
		})

		It("expose every tunable", func() {
			l.SetGains(1, 2, 3)
			l.SetBias(4)
			l.SetAmplitude(5)
			p := l.GetParams()
			Expect(p).To(HaveKeyWithValue("kp", 1.0))
			Expect(p).To(HaveKeyWithValue("ki", 2.0))
			Expect(p).To(HaveKeyWithValue("kd", 3.0))
			Expect(p).To(HaveKeyWithValue("bias", 4.0))
			Expect(p).To(HaveKeyWithValue("amplitude", 5.0))
			Expect(p).To(HaveLen(len(sim.ParamNames())))
		})

		It("give every tunable a positive nudge step", func() {
			for _, name := range sim.ParamNames() {
				Expect(sim.ParamStep(name)).To(BeNumerically(">", 0), name)
			}
			Expect(sim.ParamStep(sim.ParamKi)).To(Equal(0.1))
		})
	})

	Describe("Reset", func() {
		It("clears the run but keeps the tunables", func() {
			l := newLoop(sim.DefaultTunables())
			l.SetKp(42)
			for i := 0; i < 100; i++ {
				l.Step()
			}
			phase := l.Phase()

			l.Reset()

			Expect(l.Frame()).To(BeZero())
			Expect(l.BodyState()).To(Equal(dynamo.State{0, 0}))
			Expect(l.Phase()).NotTo(Equal(phase))
			for _, m := range sim.Metrics() {
				Expect(l.VisibleSamples(m)).To(BeEmpty())
			}
			pid := l.Controller().(*control.PID)
			Expect(pid.RunningTotal()).To(BeZero())
			_, primed := pid.LastError()
			Expect(primed).To(BeFalse())
			Expect(l.Tunables().Kp).To(Equal(42.0))
		})
	})

	Describe("open loop", func() {
		It("lets the bias push the body", func() {
			l := newLoop(sim.DefaultTunables(), sim.WithController(control.NewNone()))
			r := l.Step()
			Expect(r.Command).To(BeZero())
			Expect(r.Acceleration).To(Equal(sim.DefaultBias))
		})
	})
})

var _ = Describe("core composition", func() {
	It("swings a P-only body around a held target of 10", func() {
		pid := control.NewPID(1, 0, 0)
		body, err := physics.NewBody(dt, 0)
		Expect(err).NotTo(HaveOccurred())

		e := 10 - body.Position()
		body.Update(physics.Compose(pid.Evaluate(e), 0))

		v := 10 * dt / 2
		x := 0 + v*dt
		v += 10 * dt / 2
		Expect(body.Position()).To(Equal(x))
		Expect(body.Velocity()).To(Equal(v))

		for i := 2; i <= 6000; i++ {
			e := 10 - body.Position()
			body.Update(physics.Compose(pid.Evaluate(e), 0))
			swing := 10 * 1.05 * math.Exp(float64(i)*dt*dt/4)
			Expect(body.Position()).To(BeNumerically("~", 10, swing), "tick %d", i)
		}
	})
})
