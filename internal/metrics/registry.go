package metrics

import (
	"fmt"

	"github.com/san-kum/pidsim/internal/dynamo"
)

// Names lists the metrics New can build.
func Names() []string {
	return []string{"iae", "rms_error", "control_effort", "peak_command", "excursion"}
}

// New builds a metric by name for a run ticking every dt seconds.
func New(name string, dt float64) (dynamo.Metric, error) {
	switch name {
	case "iae":
		return NewIAE(dt), nil
	case "rms_error":
		return NewRMS(), nil
	case "control_effort":
		return NewControlEffort(), nil
	case "peak_command":
		return NewPeakCommand(), nil
	case "excursion":
		return NewExcursion(DefaultExcursionThreshold), nil
	}
	return nil, fmt.Errorf("metric %q: %w", name, dynamo.ErrUnknownParam)
}

// All builds one of every metric.
func All(dt float64) []dynamo.Metric {
	out := make([]dynamo.Metric, 0, len(Names()))
	for _, name := range Names() {
		m, _ := New(name, dt)
		out = append(out, m)
	}
	return out
}
