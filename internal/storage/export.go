package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/pidsim/internal/dynamo"
)

type ExportData struct {
	Run      RunMetadata        `json:"run"`
	Times    []float64          `json:"times"`
	Target   []float64          `json:"target"`
	Position []float64          `json:"position"`
	Velocity []float64          `json:"velocity"`
	Error    []float64          `json:"error"`
	Command  []float64          `json:"command"`
	Metrics  map[string]float64 `json:"metrics"`
}

// ExportJSON writes a run column by column.
func ExportJSON(w io.Writer, meta RunMetadata, readings []dynamo.Reading) error {
	n := len(readings)
	data := ExportData{
		Run:      meta,
		Times:    make([]float64, n),
		Target:   make([]float64, n),
		Position: make([]float64, n),
		Velocity: make([]float64, n),
		Error:    make([]float64, n),
		Command:  make([]float64, n),
		Metrics:  meta.Metrics,
	}

	for i, r := range readings {
		data.Times[i] = r.Time
		data.Target[i] = r.Target
		data.Position[i] = r.Position
		data.Velocity[i] = r.Velocity
		data.Error[i] = r.Error
		data.Command[i] = r.Command
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
