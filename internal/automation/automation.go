package automation

import (
	"fmt"
	"os"
	"slices"
	"sort"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/pidsim/internal/dynamo"
	"github.com/san-kum/pidsim/internal/sim"
)

// Scenario is a script of timed tunable changes applied during a run.
type Scenario struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Events      []Event `yaml:"events"`
}

// Event sets tunables at simulated time At.
type Event struct {
	At  float64            `yaml:"at"`
	Set map[string]float64 `yaml:"set"`
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := ParseScenario(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if err := scenario.Validate(); err != nil {
		return nil, err
	}
	sort.SliceStable(scenario.Events, func(i, j int) bool {
		return scenario.Events[i].At < scenario.Events[j].At
	})
	return &scenario, nil
}

// Validate checks names and times. Values are checked when applied, against
// the tunables current at that moment.
func (s *Scenario) Validate() error {
	names := sim.ParamNames()
	for i, ev := range s.Events {
		if ev.At < 0 {
			return dynamo.Bounds(fmt.Sprintf("events[%d].at", i), ev.At, "must not be negative")
		}
		if len(ev.Set) == 0 {
			return fmt.Errorf("events[%d]: nothing to set", i)
		}
		for name := range ev.Set {
			if !slices.Contains(names, name) {
				return fmt.Errorf("events[%d] %q: %w", i, name, dynamo.ErrUnknownParam)
			}
		}
	}
	return nil
}

// Hook applies each event once, before the first tick at or after its time.
// A rejected value aborts the run.
func (s *Scenario) Hook(log *zap.Logger) sim.Hook {
	if log == nil {
		log = zap.NewNop()
	}
	next := 0
	return func(l *sim.Loop, t float64) error {
		for next < len(s.Events) && s.Events[next].At <= t {
			ev := s.Events[next]
			next++
			// apply in a fixed order so logs are stable
			keys := make([]string, 0, len(ev.Set))
			for k := range ev.Set {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				if err := l.SetParam(k, ev.Set[k]); err != nil {
					return fmt.Errorf("scenario %q at t=%g: %w", s.Name, ev.At, err)
				}
				log.Info("scenario event", zap.String("scenario", s.Name), zap.Float64("t", t), zap.String("param", k), zap.Float64("value", ev.Set[k]))
			}
		}
		return nil
	}
}

// End is the time of the last event.
func (s *Scenario) End() float64 {
	if len(s.Events) == 0 {
		return 0
	}
	return s.Events[len(s.Events)-1].At
}
