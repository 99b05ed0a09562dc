package experiment

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/san-kum/pidsim/internal/config"
	"github.com/san-kum/pidsim/internal/sim"
)

// Experiment is one headless run built from a configuration.
type Experiment struct {
	cfg      *config.Config
	loop     *sim.Loop
	hooks    []sim.Hook
	log      *zap.Logger
	seed     int64
	registry *Registry
}

type Option func(*Experiment)

func WithLogger(log *zap.Logger) Option {
	return func(e *Experiment) {
		if log != nil {
			e.log = log
		}
	}
}

// WithHooks runs hooks between ticks, e.g. a scenario.
func WithHooks(hooks ...sim.Hook) Option {
	return func(e *Experiment) { e.hooks = append(e.hooks, hooks...) }
}

func WithRegistry(r *Registry) Option {
	return func(e *Experiment) { e.registry = r }
}

// New validates cfg and builds the loop. A zero seed draws one from the clock;
// Seed reports the one used.
func New(cfg *config.Config, opts ...Option) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Experiment{
		cfg:  cfg.Clone(),
		log:  zap.NewNop(),
		seed: cfg.Sim.Seed,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.registry == nil {
		e.registry = NewRegistry()
	}
	if e.seed == 0 {
		e.seed = time.Now().UnixNano()
	}

	tun := cfg.Tunables()
	ctrl, err := e.registry.GetController(cfg.Controller.Type, tun)
	if err != nil {
		return nil, err
	}
	if _, err := e.registry.GetIntegrator(cfg.Sim.Integrator); err != nil {
		return nil, err
	}

	loop, err := sim.New(tun,
		sim.WithFPS(cfg.Sim.FPS),
		sim.WithSeed(e.seed),
		sim.WithController(ctrl),
		sim.WithIntegrator(cfg.Sim.Integrator),
		sim.WithStartPosition(cfg.Sim.StartPosition),
		sim.WithLogger(e.log),
	)
	if err != nil {
		return nil, fmt.Errorf("build loop: %w", err)
	}
	for _, m := range e.registry.DefaultMetrics(loop.Dt()) {
		loop.AddMetric(m)
	}
	e.loop = loop
	return e, nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	e.log.Info("run started",
		zap.Int64("seed", e.seed),
		zap.Float64("duration", e.cfg.Sim.Duration),
		zap.String("controller", e.cfg.Controller.Type),
		zap.String("integrator", e.cfg.Sim.Integrator),
	)

	result, err := sim.Run(ctx, e.loop, e.cfg.Sim.Duration, e.hooks...)
	if err != nil {
		e.log.Warn("run stopped early", zap.Error(err))
		return result, err
	}

	e.log.Info("run finished", zap.Int("steps", result.StepsTaken), zap.Any("metrics", result.Metrics))
	return result, nil
}

// Loop returns the underlying loop for adding observers.
func (e *Experiment) Loop() *sim.Loop { return e.loop }

func (e *Experiment) Seed() int64 { return e.seed }

func (e *Experiment) Config() *config.Config { return e.cfg }
