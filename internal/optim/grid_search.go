package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/pidsim/internal/config"
	"github.com/san-kum/pidsim/internal/dynamo"
	"github.com/san-kum/pidsim/internal/experiment"
)

// Trial is one evaluated grid point. Runs that blow up score +Inf.
type Trial struct {
	Params map[string]float64
	Value  float64
}

// GridSearch tries every combination of tunable values and keeps the one
// minimising a metric. Every trial runs on its own loop with the base seed, so
// all points see the same reference phase.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	workers    int
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges, workers: runtime.GOMAXPROCS(0)}
}

// WithWorkers bounds the number of concurrent runs.
func (g *GridSearch) WithWorkers(n int) *GridSearch {
	if n > 0 {
		g.workers = n
	}
	return g
}

// Points lists the grid in row-major order.
func (g *GridSearch) Points() []map[string]float64 {
	points := []map[string]float64{{}}
	for d, name := range g.paramNames {
		next := make([]map[string]float64, 0, len(points)*len(g.ranges[d]))
		for _, p := range points {
			for _, v := range g.ranges[d] {
				np := make(map[string]float64, len(p)+1)
				for k, pv := range p {
					np[k] = pv
				}
				np[name] = v
				next = append(next, np)
			}
		}
		points = next
	}
	return points
}

// Search returns the best trial and all trials sorted best first.
func (g *GridSearch) Search(ctx context.Context, base *config.Config, metricName string) (Trial, []Trial, error) {
	if len(g.paramNames) != len(g.ranges) {
		return Trial{}, nil, fmt.Errorf("%d params but %d ranges", len(g.paramNames), len(g.ranges))
	}
	if base.Sim.Seed == 0 {
		return Trial{}, nil, errors.New("grid search needs a fixed seed")
	}

	points := g.Points()
	trials := make([]Trial, len(points))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.workers)
	for i, p := range points {
		i, p := i, p
		eg.Go(func() error {
			v, err := evaluate(egCtx, base, p, metricName)
			if err != nil {
				return err
			}
			trials[i] = Trial{Params: p, Value: v}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return Trial{}, nil, err
	}

	sort.SliceStable(trials, func(i, j int) bool { return trials[i].Value < trials[j].Value })
	return trials[0], trials, nil
}

func evaluate(ctx context.Context, base *config.Config, params map[string]float64, metricName string) (float64, error) {
	cfg := base.Clone()
	for k, v := range params {
		if err := cfg.Set(k, v); err != nil {
			return 0, err
		}
	}

	exp, err := experiment.New(cfg)
	if err != nil {
		return 0, err
	}
	result, err := exp.Run(ctx)
	if errors.Is(err, dynamo.ErrInvalidState) {
		return math.Inf(1), nil
	}
	if err != nil {
		return 0, err
	}

	v, ok := result.Metrics[metricName]
	if !ok {
		return 0, fmt.Errorf("metric %q: %w", metricName, dynamo.ErrUnknownParam)
	}
	if math.IsNaN(v) {
		return math.Inf(1), nil
	}
	return v, nil
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	out[n-1] = hi
	return out
}
