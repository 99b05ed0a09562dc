package series

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func windowOf(t *testing.T, values ...float64) *Window {
	t.Helper()
	w, err := NewWindow("w", 100)
	require.NoError(t, err)
	for i, v := range values {
		require.NoError(t, w.Record(float64(i), v))
	}
	return w
}

func TestSymmetricBounds(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"small values clamp to one", []float64{0.2, -0.3}, 1},
		{"positive excursion", []float64{0, 50}, 50},
		{"negative excursion", []float64{3, -75}, 75},
		{"all positive", []float64{10, 20}, 20},
		{"all negative", []float64{-10, -2}, 10},
		{"zeros", []float64{0, 0}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lo, hi, ok := SymmetricBounds(windowOf(t, tt.values...))
			require.True(t, ok)
			assert.Equal(t, tt.want, hi)
			assert.Equal(t, -tt.want, lo)
		})
	}
}

func TestSymmetricBoundsAcrossWindows(t *testing.T) {
	target := windowOf(t, 80, 60)
	position := windowOf(t, -95, 10)

	lo, hi, ok := SymmetricBounds(target, position)
	require.True(t, ok)
	assert.Equal(t, 95.0, hi)
	assert.Equal(t, -95.0, lo)
}

func TestSymmetricBoundsEmpty(t *testing.T) {
	empty, _ := NewWindow("e", 1)
	_, _, ok := SymmetricBounds(empty, nil)
	assert.False(t, ok)

	_, _, ok = SymmetricBounds()
	assert.False(t, ok)
}

func TestSymmetricBoundsProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 200; i++ {
		n := 1 + rng.Intn(30)
		values := make([]float64, n)
		for j := range values {
			values[j] = (rng.Float64() - 0.5) * math.Pow(10, float64(rng.Intn(5)))
		}
		lo, hi, ok := SymmetricBounds(windowOf(t, values...))
		require.True(t, ok)
		require.Equal(t, -hi, lo)
		require.GreaterOrEqual(t, hi, 1.0)
		for _, v := range values {
			require.True(t, v >= lo && v <= hi, "value %v outside [%v, %v]", v, lo, hi)
		}
	}
}

func TestAxisFit(t *testing.T) {
	a := DefaultAxis()
	assert.Equal(t, Axis{Min: -120, Max: 120}, a)

	empty, _ := NewWindow("e", 1)
	a.Fit(empty)
	assert.Equal(t, Axis{Min: -120, Max: 120}, a, "no-op without samples")

	a.Fit(windowOf(t, 4, -30))
	assert.Equal(t, Axis{Min: -30, Max: 30}, a)
}

func TestSymmetricRange(t *testing.T) {
	lo, hi, ok := SymmetricRange([]float64{-3, 2}, nil, []float64{0.5})
	require.True(t, ok)
	assert.Equal(t, -3.0, lo)
	assert.Equal(t, 3.0, hi)

	lo, hi, ok = SymmetricRange([]float64{0.1, -0.2})
	require.True(t, ok)
	assert.Equal(t, -1.0, lo)
	assert.Equal(t, 1.0, hi)

	_, _, ok = SymmetricRange()
	assert.False(t, ok)
}
