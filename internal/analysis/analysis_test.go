package analysis

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/pidsim/internal/dynamo"
)

func sine(n int, dt, freq, amp float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = amp * math.Sin(2*math.Pi*freq*float64(i)*dt)
	}
	return out
}

func TestPowerSpectrumFindsTone(t *testing.T) {
	dt := 1.0 / 60
	bins := PowerSpectrum(sine(600, dt, 0.5, 3), dt)
	require.Len(t, bins, 301)
	assert.InDelta(t, 0.1, bins[1].Freq, 1e-12)

	peak, ok := Dominant(bins)
	require.True(t, ok)
	assert.InDelta(t, 0.5, peak.Freq, 1e-9)
	// a unit bin carries (amp/2)^2
	assert.InDelta(t, 2.25, peak.Power, 1e-6)
}

func TestPowerSpectrumRemovesMean(t *testing.T) {
	data := make([]float64, 64)
	for i := range data {
		data[i] = 7
	}
	for _, b := range PowerSpectrum(data, 0.1) {
		assert.InDelta(t, 0, b.Power, 1e-18)
	}
}

func TestPowerSpectrumDegenerate(t *testing.T) {
	assert.Nil(t, PowerSpectrum([]float64{1}, 0.1))
	assert.Nil(t, PowerSpectrum([]float64{1, 2}, 0))
	_, ok := Dominant(nil)
	assert.False(t, ok)
}

func TestErrorSpectrum(t *testing.T) {
	dt := 0.05
	errs := sine(200, dt, 1, 1)
	readings := make([]dynamo.Reading, len(errs))
	for i, e := range errs {
		readings[i] = dynamo.Reading{Time: float64(i) * dt, Error: e}
	}
	peak, ok := Dominant(ErrorSpectrum(readings, dt))
	require.True(t, ok)
	assert.InDelta(t, 1, peak.Freq, 1e-9)
}

func TestTrackLag(t *testing.T) {
	dt := 0.01
	target := sine(1000, dt, 0.5, 10)
	readings := make([]dynamo.Reading, len(target))
	for i := range readings {
		readings[i].Time = float64(i) * dt
		readings[i].Target = target[i]
		// position trails target by 25 samples
		if i >= 25 {
			readings[i].Position = target[i-25]
		}
		readings[i].Error = readings[i].Target - readings[i].Position
	}

	s := Track(readings, dt, 1)
	assert.InDelta(t, 0.25, s.Lag, 1e-9)
	assert.Greater(t, s.RMSError, 0.0)
	assert.GreaterOrEqual(t, s.MaxAbsError, s.MeanAbsError)
}

func TestTrackEmpty(t *testing.T) {
	assert.Equal(t, TrackingStats{}, Track(nil, 0.1, 1))
}

func TestStepResponse(t *testing.T) {
	errs := []float64{10, 5, 0.5, -2, -0.5, 0.2, 0.1, 0.05}
	readings := make([]dynamo.Reading, len(errs))
	for i, e := range errs {
		readings[i] = dynamo.Reading{Time: float64(i), Error: e}
	}

	s := StepResponse(readings, 0.05)
	assert.Equal(t, 10.0, s.InitialError)
	assert.InDelta(t, 0.2, s.Overshoot, 1e-12)
	assert.Equal(t, 2.0, s.RiseTime)
	assert.Equal(t, 4.0, s.SettlingTime)
}

func TestStepResponseNotSettled(t *testing.T) {
	readings := []dynamo.Reading{{Time: 0, Error: 4}, {Time: 1, Error: 3}}
	s := StepResponse(readings, 0.05)
	assert.True(t, math.IsNaN(s.SettlingTime))
	assert.True(t, math.IsNaN(s.RiseTime))
}

func TestPhasePortrait(t *testing.T) {
	readings := []dynamo.Reading{
		{Position: -1, Velocity: 0},
		{Position: 0, Velocity: 1},
		{Position: 1, Velocity: 0},
		{Position: 0, Velocity: -1},
	}
	p := NewPhasePortrait(readings)
	require.Len(t, p.Points, 4)
	assert.Equal(t, Point{X: 0, Y: 1}, p.Points[1])

	art := p.ASCII(21, 11)
	lines := strings.Split(strings.TrimSuffix(art, "\n"), "\n")
	assert.Len(t, lines, 11)
	assert.Equal(t, 4, strings.Count(art, "•"))
	assert.Contains(t, art, "│")
	assert.Contains(t, art, "─")

	var empty *PhasePortrait
	assert.Empty(t, empty.ASCII(10, 10))
}

func TestTrackingPortrait(t *testing.T) {
	readings := []dynamo.Reading{{Error: 1}, {Error: 0.5}, {Error: 0}}
	p := TrackingPortrait(readings, 0.5)
	assert.Equal(t, []Point{{X: 0.5, Y: -1}, {X: 0, Y: -1}}, p.Points)
}
