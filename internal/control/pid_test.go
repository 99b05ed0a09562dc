package control

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/pidsim/internal/dynamo"
)

func TestPIDFirstTickHasNoDerivative(t *testing.T) {
	p := NewPID(15, 1, 300)

	_, primed := p.LastError()
	require.False(t, primed)

	terms := p.Step(42)
	assert.Equal(t, 0.0, terms.Derivative)
	assert.Equal(t, 15*42.0, terms.Proportional)
	assert.Equal(t, 42.0, terms.Integral)

	last, primed := p.LastError()
	assert.True(t, primed)
	assert.Equal(t, 42.0, last)
}

func TestPIDSequence(t *testing.T) {
	p := NewPID(2, 0.5, 10)
	errs := []float64{4, 3, -1}

	want := []float64{
		2*4 + 10*0 + 0.5*4,
		2*3 + 10*(3-4) + 0.5*7,
		2*-1 + 10*(-1-3) + 0.5*6,
	}

	for i, e := range errs {
		assert.Equal(t, want[i], p.Evaluate(e), "tick %d", i)
	}
	assert.Equal(t, 6.0, p.RunningTotal())
}

func TestPIDIntegralDisabledClearsAccumulator(t *testing.T) {
	p := NewPID(1, 1, 0)
	for i := 0; i < 50; i++ {
		p.Evaluate(3)
	}
	require.Equal(t, 150.0, p.RunningTotal())

	require.NoError(t, p.SetParam("ki", 0))
	terms := p.Step(3)
	assert.Equal(t, 0.0, terms.Integral)
	assert.Equal(t, 0.0, p.RunningTotal(), "cleared the same tick")

	for i := 0; i < 20; i++ {
		p.Evaluate(float64(i) - 5)
		assert.Equal(t, 0.0, p.RunningTotal(), "tick %d", i)
	}

	require.NoError(t, p.SetParam("ki", 2))
	terms = p.Step(1)
	assert.Equal(t, 2.0, terms.Integral, "restarts from zero")
}

func TestPIDIntegralIsPlainSum(t *testing.T) {
	p := NewPID(0, 1, 0)
	var cmd float64
	for i := 0; i < 60; i++ {
		cmd = p.Evaluate(0.5)
	}
	assert.Equal(t, 30.0, cmd)
}

func TestPIDReset(t *testing.T) {
	p := NewPID(1, 1, 1)
	p.Evaluate(10)
	p.Evaluate(-4)
	p.Reset()

	assert.Equal(t, 0.0, p.RunningTotal())
	_, primed := p.LastError()
	assert.False(t, primed)

	terms := p.Step(7)
	assert.Equal(t, 0.0, terms.Derivative)
	assert.Equal(t, 7.0, terms.Integral)
}

func TestPIDParams(t *testing.T) {
	p := NewPID(1, 2, 3)
	assert.Equal(t, map[string]float64{"kp": 1, "ki": 2, "kd": 3}, p.GetParams())

	require.NoError(t, p.SetParam("kd", -4))
	assert.Equal(t, -4.0, p.Kd)

	err := p.SetParam("target", 1)
	assert.ErrorIs(t, err, dynamo.ErrUnknownParam)

	p.SetGains(5, 6, 7)
	assert.Equal(t, map[string]float64{"kp": 5, "ki": 6, "kd": 7}, p.GetParams())
}

func TestNone(t *testing.T) {
	var c dynamo.Controller = NewNone()
	assert.Equal(t, 0.0, c.Evaluate(12))
	c.Reset()
}

func TestPIDImplementsInterfaces(t *testing.T) {
	var _ dynamo.Controller = NewPID(0, 0, 0)
	var _ dynamo.Configurable = NewPID(0, 0, 0)
}
