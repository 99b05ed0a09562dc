package gui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/pidsim/internal/dynamo"
	"github.com/san-kum/pidsim/internal/series"
	"github.com/san-kum/pidsim/internal/sim"
)

func TestStripMapsCorners(t *testing.T) {
	r := Rect{X: 10, Y: 20, W: 100, H: 50}
	axis := series.Axis{Min: -2, Max: 2}
	pts := Strip([]series.Sample{{Time: 0, Value: -2}, {Time: 5, Value: 0}, {Time: 10, Value: 2}}, 0, 10, axis, r)

	require.Len(t, pts, 3)
	assert.Equal(t, [2]float32{10, 70}, pts[0])
	assert.Equal(t, [2]float32{60, 45}, pts[1])
	assert.Equal(t, [2]float32{110, 20}, pts[2])
}

func TestStripDegenerateRanges(t *testing.T) {
	pts := Strip([]series.Sample{{Time: 3, Value: 1}}, 3, 3, series.Axis{}, Rect{W: 10, H: 10})
	require.Len(t, pts, 1)
	assert.Equal(t, [2]float32{0, 0}, pts[0])
}

func TestStripsStackBelowScene(t *testing.T) {
	s := sceneRect()
	a, b := stripRect(0), stripRect(1)
	assert.GreaterOrEqual(t, a.Y, s.Y+s.H)
	assert.GreaterOrEqual(t, b.Y, a.Y+a.H)
	assert.LessOrEqual(t, b.Y+b.H, float64(ScreenH))
}

func TestHUDLines(t *testing.T) {
	r := dynamo.Reading{Time: 1.5, Target: 12.346, Position: -3.1, Error: 15.446}
	lines := hudLines(r, sim.DefaultTunables(), 2, true, 1, "period rejected")

	assert.Equal(t, "t=1.50s  paused  zoom 1.00x", lines[0])
	assert.Equal(t, "target 12.35   position -3.10   error 15.45", lines[1])
	assert.True(t, strings.HasPrefix(lines[2+2], "> kd"))
	assert.True(t, strings.HasPrefix(lines[2], "  kp"))
	assert.Equal(t, "period rejected", lines[len(lines)-1])
	assert.Len(t, lines, 2+len(sim.ParamNames())+1)
}
