package sim

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/san-kum/pidsim/internal/dynamo"
	"github.com/san-kum/pidsim/internal/series"
)

// Frame is a copy of what a display needs after one tick.
type Frame struct {
	Reading      dynamo.Reading
	Tunables     Tunables
	Ticks        int
	Paused       bool
	TimeLo       float64
	TimeHi       float64
	Error        []float64
	Target       []float64
	Position     []float64
	Command      []float64
	ErrorAxis    series.Axis
	PositionAxis series.Axis
}

// Driver is the host scheduler for a Loop: one goroutine calls Step once
// per frame period. All mutations are queued and applied between ticks on
// that goroutine, so Reset and parameter changes never land mid-tick.
type Driver struct {
	loop   *Loop
	period time.Duration
	cmds   chan func(*Loop)
	frames chan Frame
	done   chan struct{}
	log    *zap.Logger

	// owned by the Run goroutine
	paused       bool
	errorAxis    series.Axis
	positionAxis series.Axis
}

func NewDriver(loop *Loop, log *zap.Logger) *Driver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Driver{
		loop:         loop,
		period:       time.Second / time.Duration(loop.FPS()),
		cmds:         make(chan func(*Loop), 16),
		frames:       make(chan Frame, 1),
		done:         make(chan struct{}),
		log:          log,
		errorAxis:    series.DefaultAxis(),
		positionAxis: series.DefaultAxis(),
	}
}

// Frames delivers the latest frame. A slow reader only misses frames.
func (d *Driver) Frames() <-chan Frame { return d.frames }

// Done is closed once Run has returned.
func (d *Driver) Done() <-chan struct{} { return d.done }

// Run ticks until ctx is canceled.
func (d *Driver) Run(ctx context.Context) error {
	defer close(d.done)

	ticker := time.NewTicker(d.period)
	defer ticker.Stop()

	d.log.Info("driver started", zap.Int("fps", d.loop.FPS()))
	d.publish()

	for {
		select {
		case <-ctx.Done():
			d.log.Info("driver stopped", zap.Int("frame", d.loop.Frame()))
			return ctx.Err()
		case fn := <-d.cmds:
			fn(d.loop)
			d.publish()
		case <-ticker.C:
			if d.paused {
				continue
			}
			d.loop.Step()
			d.publish()
		}
	}
}

// Do queues fn to run on the loop goroutine between ticks. It returns false
// if the driver has stopped.
func (d *Driver) Do(fn func(*Loop)) bool {
	select {
	case <-d.done:
		return false
	default:
	}
	select {
	case d.cmds <- fn:
		return true
	case <-d.done:
		return false
	}
}

func (d *Driver) Pause()  { d.Do(func(*Loop) { d.paused = true }) }
func (d *Driver) Resume() { d.Do(func(*Loop) { d.paused = false }) }
func (d *Driver) Toggle() { d.Do(func(*Loop) { d.paused = !d.paused }) }

// Reset restarts the run; the paused state is left as it is.
func (d *Driver) Reset() {
	d.Do(func(l *Loop) {
		l.Reset()
		d.errorAxis = series.DefaultAxis()
		d.positionAxis = series.DefaultAxis()
		d.log.Info("run reset", zap.Float64("phase", l.Phase()))
	})
}

// SetParam queues a tunable change and waits for its result, for at most as
// long as ctx allows. The change is applied by Run; if Run has not started
// when ctx ends, the change stays queued and lands on Run's first pass.
func (d *Driver) SetParam(ctx context.Context, name string, v float64) error {
	errc := make(chan error, 1)
	if !d.Do(func(l *Loop) { errc <- l.SetParam(name, v) }) {
		return context.Canceled
	}
	select {
	case err := <-errc:
		return err
	case <-d.done:
		return context.Canceled
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Driver) publish() {
	l := d.loop
	if lo, hi, ok := l.AutoscaleBounds(MetricError); ok {
		d.errorAxis = series.Axis{Min: lo, Max: hi}
	}
	if lo, hi, ok := l.AutoscaleBounds(MetricTarget, MetricPosition); ok {
		d.positionAxis = series.Axis{Min: lo, Max: hi}
	}
	lo, hi := l.VisibleRange()

	f := Frame{
		Reading:      l.Last(),
		Tunables:     l.Tunables(),
		Ticks:        l.Frame(),
		Paused:       d.paused,
		TimeLo:       lo,
		TimeHi:       hi,
		Error:        l.VisibleValues(MetricError),
		Target:       l.VisibleValues(MetricTarget),
		Position:     l.VisibleValues(MetricPosition),
		Command:      l.VisibleValues(MetricCommand),
		ErrorAxis:    d.errorAxis,
		PositionAxis: d.positionAxis,
	}

	// replace a stale frame rather than block the loop
	select {
	case <-d.frames:
	default:
	}
	select {
	case d.frames <- f:
	default:
	}
}
