package sim

import (
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/san-kum/pidsim/internal/control"
	"github.com/san-kum/pidsim/internal/dynamo"
	"github.com/san-kum/pidsim/internal/integrators"
	"github.com/san-kum/pidsim/internal/physics"
	"github.com/san-kum/pidsim/internal/series"
	"github.com/san-kum/pidsim/internal/signal"
)

// Metric names a tracked sample series.
type Metric string

const (
	MetricError    Metric = "error"
	MetricTarget   Metric = "target"
	MetricPosition Metric = "position"
	MetricCommand  Metric = "command"
)

// Metrics lists every tracked series.
func Metrics() []Metric {
	return []Metric{MetricError, MetricTarget, MetricPosition, MetricCommand}
}

type gainSetter interface {
	SetGains(kp, ki, kd float64)
}

// Loop is one closed-loop run: reference, controller, force composition,
// body and the windows displays read. It is not safe for concurrent use.
type Loop struct {
	tun           Tunables
	fps           int
	dt            float64
	startPosition float64

	ref      signal.Reference
	rng      *rand.Rand
	ctrl     dynamo.Controller
	body     *physics.Body
	newInteg func() dynamo.Integrator

	windows map[Metric]*series.Window
	frame   int
	last    dynamo.Reading

	metrics   []dynamo.Metric
	observers []dynamo.Observer
	log       *zap.Logger
}

type Option func(*Loop)

// WithFPS sets the tick rate; dt is 1/fps for the lifetime of the loop.
func WithFPS(fps int) Option {
	return func(l *Loop) { l.fps = fps }
}

// WithSeed seeds the phase generator.
func WithSeed(seed int64) Option {
	return func(l *Loop) { l.rng = rand.New(rand.NewSource(seed)) }
}

// WithRand injects the phase generator.
func WithRand(rng *rand.Rand) Option {
	return func(l *Loop) { l.rng = rng }
}

func WithLogger(log *zap.Logger) Option {
	return func(l *Loop) {
		if log != nil {
			l.log = log
		}
	}
}

// WithController replaces the PID, e.g. with control.None for open loop.
func WithController(c dynamo.Controller) Option {
	return func(l *Loop) { l.ctrl = c }
}

// WithIntegrator builds the body with another stepper. Tuned gains assume
// the default midpoint one.
func WithIntegrator(name string) Option {
	return func(l *Loop) {
		l.newInteg = func() dynamo.Integrator {
			integ, _ := integrators.ByName(name)
			return integ
		}
	}
}

func WithStartPosition(x float64) Option {
	return func(l *Loop) { l.startPosition = x }
}

// New builds a loop and performs the initial reset.
func New(tun Tunables, opts ...Option) (*Loop, error) {
	if err := tun.Validate(); err != nil {
		return nil, err
	}

	l := &Loop{
		tun:      tun,
		fps:      DefaultFPS,
		ctrl:     control.NewPID(tun.Kp, tun.Ki, tun.Kd),
		newInteg: func() dynamo.Integrator { return integrators.NewMidpoint() },
		windows:  make(map[Metric]*series.Window, 4),
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}

	if l.fps <= 0 {
		return nil, dynamo.Bounds("fps", float64(l.fps), "must be positive")
	}
	if l.newInteg() == nil {
		return nil, fmt.Errorf("unknown integrator: %w", dynamo.ErrUnknownParam)
	}
	if l.rng == nil {
		l.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	l.dt = 1 / float64(l.fps)
	l.ref = signal.Reference{Amplitude: tun.Amplitude, Period: tun.Period}

	for _, m := range Metrics() {
		w, err := series.NewWindow(string(m), tun.Horizon)
		if err != nil {
			return nil, err
		}
		l.windows[m] = w
	}

	l.Reset()
	return l, nil
}

func (l *Loop) AddMetric(m dynamo.Metric)     { l.metrics = append(l.metrics, m) }
func (l *Loop) AddObserver(o dynamo.Observer) { l.observers = append(l.observers, o) }

// Tick advances the run by one dt at simulated time t. The error is measured
// before the body moves; the returned position is the one after.
func (l *Loop) Tick(t float64) dynamo.Reading {
	tun := l.tun

	l.ref.Amplitude, l.ref.Period = tun.Amplitude, tun.Period
	target := l.ref.Value(t)
	e := target - l.body.Position()

	if g, ok := l.ctrl.(gainSetter); ok {
		g.SetGains(tun.Kp, tun.Ki, tun.Kd)
	}
	cmd := l.ctrl.Evaluate(e)
	acc := physics.Compose(cmd, tun.Bias)
	l.body.Update(acc)

	r := dynamo.Reading{
		Time:         t,
		Target:       target,
		Position:     l.body.Position(),
		Velocity:     l.body.Velocity(),
		Error:        e,
		Command:      cmd,
		Acceleration: acc,
	}
	l.last = r

	l.record(MetricError, t, r.Error)
	l.record(MetricTarget, t, r.Target)
	l.record(MetricPosition, t, r.Position)
	l.record(MetricCommand, t, r.Command)

	for _, m := range l.metrics {
		m.Observe(r)
	}
	for _, o := range l.observers {
		o.OnTick(r)
	}
	return r
}

func (l *Loop) record(m Metric, t, v float64) {
	if err := l.windows[m].Record(t, v); err != nil {
		l.log.Warn("sample dropped", zap.String("metric", string(m)), zap.Error(err))
	}
}

// Step ticks at t = frame·dt and advances the frame counter.
func (l *Loop) Step() dynamo.Reading {
	t := float64(l.frame) * l.dt
	l.frame++
	return l.Tick(t)
}

// Reset starts a fresh run: new body, cleared controller, new phase, empty
// windows and metrics. Tunables are kept.
func (l *Loop) Reset() {
	body, err := physics.NewBody(l.dt, l.startPosition, physics.WithIntegrator(l.newInteg()))
	if err != nil {
		// dt is validated in New
		panic(err)
	}
	l.body = body
	l.ctrl.Reset()
	l.ref.DrawPhase(l.rng)
	for _, w := range l.windows {
		w.Clear()
	}
	for _, m := range l.metrics {
		m.Reset()
	}
	l.frame = 0
	l.last = dynamo.Reading{Position: l.startPosition}

	l.log.Debug("loop reset", zap.Float64("phase", l.ref.Phase), zap.Float64("dt", l.dt))
}

func (l *Loop) Tunables() Tunables { return l.tun }
func (l *Loop) Dt() float64        { return l.dt }
func (l *Loop) FPS() int           { return l.fps }
func (l *Loop) Frame() int         { return l.frame }
func (l *Loop) Phase() float64     { return l.ref.Phase }

// Last is the most recent reading, or the rest state right after a reset.
func (l *Loop) Last() dynamo.Reading { return l.last }

func (l *Loop) Controller() dynamo.Controller { return l.ctrl }

// BodyState returns a copy of [position, velocity].
func (l *Loop) BodyState() dynamo.State { return l.body.State() }

// SetParam changes one tunable; rejected values keep the previous setting.
func (l *Loop) SetParam(name string, v float64) error {
	next := l.tun
	if err := next.Set(name, v); err != nil {
		l.log.Warn("parameter rejected", zap.String("param", name), zap.Float64("value", v), zap.Error(err))
		return err
	}
	if name == ParamHorizon {
		for _, w := range l.windows {
			// validated by Set
			_ = w.SetHorizon(v)
		}
	}
	l.tun = next
	l.log.Debug("parameter set", zap.String("param", name), zap.Float64("value", v))
	return nil
}

func (l *Loop) GetParams() map[string]float64 { return l.tun.Params() }

// SetGains and the single-value setters below go through SetParam, so a
// rejected value is logged and the previous one kept.
func (l *Loop) SetGains(kp, ki, kd float64) {
	l.SetKp(kp)
	l.SetKi(ki)
	l.SetKd(kd)
}

func (l *Loop) SetKp(v float64)        { _ = l.SetParam(ParamKp, v) }
func (l *Loop) SetKi(v float64)        { _ = l.SetParam(ParamKi, v) }
func (l *Loop) SetKd(v float64)        { _ = l.SetParam(ParamKd, v) }
func (l *Loop) SetBias(v float64)      { _ = l.SetParam(ParamBias, v) }
func (l *Loop) SetAmplitude(v float64) { _ = l.SetParam(ParamAmplitude, v) }

func (l *Loop) SetPeriod(v float64) error  { return l.SetParam(ParamPeriod, v) }
func (l *Loop) SetHorizon(v float64) error { return l.SetParam(ParamHorizon, v) }

// VisibleSamples returns a copy of the retained samples of one series.
func (l *Loop) VisibleSamples(m Metric) []series.Sample {
	w, ok := l.windows[m]
	if !ok {
		return nil
	}
	return w.Visible()
}

// VisibleValues is VisibleSamples without the timestamps.
func (l *Loop) VisibleValues(m Metric) []float64 {
	w, ok := l.windows[m]
	if !ok {
		return nil
	}
	return w.Values()
}

// VisibleRange is the time axis span shared by all series.
func (l *Loop) VisibleRange() (lo, hi float64) {
	return l.windows[MetricError].VisibleRange()
}

// AutoscaleBounds fits a symmetric axis over the given series. ok is false
// when none of them holds a sample.
func (l *Loop) AutoscaleBounds(metrics ...Metric) (lo, hi float64, ok bool) {
	ws := make([]*series.Window, 0, len(metrics))
	for _, m := range metrics {
		if w, found := l.windows[m]; found {
			ws = append(ws, w)
		}
	}
	return series.SymmetricBounds(ws...)
}
