package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/pidsim/internal/control"
	"github.com/san-kum/pidsim/internal/dynamo"
	"github.com/san-kum/pidsim/internal/integrators"
	"github.com/san-kum/pidsim/internal/metrics"
	"github.com/san-kum/pidsim/internal/sim"
)

type Registry struct {
	controllers map[string]func(tun sim.Tunables) dynamo.Controller
}

func NewRegistry() *Registry {
	r := &Registry{
		controllers: make(map[string]func(sim.Tunables) dynamo.Controller),
	}

	r.controllers["pid"] = func(tun sim.Tunables) dynamo.Controller {
		return control.NewPID(tun.Kp, tun.Ki, tun.Kd)
	}
	r.controllers["none"] = func(sim.Tunables) dynamo.Controller {
		return control.NewNone()
	}

	return r
}

func (r *Registry) GetController(name string, tun sim.Tunables) (dynamo.Controller, error) {
	fn, ok := r.controllers[name]
	if !ok {
		return nil, fmt.Errorf("unknown controller: %s", name)
	}
	return fn(tun), nil
}

func (r *Registry) GetIntegrator(name string) (dynamo.Integrator, error) {
	integ, ok := integrators.ByName(name)
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return integ, nil
}

func (r *Registry) ListControllers() []string {
	names := make([]string, 0, len(r.controllers))
	for name := range r.controllers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) ListIntegrators() []string {
	return integrators.Names()
}

// DefaultMetrics is what headless runs record.
func (r *Registry) DefaultMetrics(dt float64) []dynamo.Metric {
	return metrics.All(dt)
}
