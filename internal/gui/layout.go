// Package gui is the desktop window: the boat scene with error and
// target/position strips below it. The window needs the ebiten build tag;
// default builds carry only the layout helpers and a Run that reports the
// missing tag.
package gui

import (
	"errors"
	"fmt"

	"github.com/san-kum/pidsim/internal/dynamo"
	"github.com/san-kum/pidsim/internal/series"
	"github.com/san-kum/pidsim/internal/sim"
)

// ErrNoGUI is returned by Run in builds without the ebiten tag.
var ErrNoGUI = errors.New("gui: built without the ebiten tag")

const (
	ScreenW = 960
	ScreenH = 600

	sceneH   = 300
	stripH   = 120
	stripGap = 20
)

// Rect is a screen rectangle.
type Rect struct{ X, Y, W, H float64 }

func sceneRect() Rect { return Rect{0, 0, ScreenW, sceneH} }

// stripRect is the i-th chart strip below the scene.
func stripRect(i int) Rect {
	y := sceneH + stripGap + float64(i)*(stripH+stripGap)
	return Rect{40, y, ScreenW - 80, stripH}
}

// Strip maps samples into r: time spans [tLo, tHi] left to right and the
// axis spans bottom to top.
func Strip(samples []series.Sample, tLo, tHi float64, axis series.Axis, r Rect) [][2]float32 {
	span := tHi - tLo
	if span <= 0 {
		span = 1
	}
	height := axis.Max - axis.Min
	if height <= 0 {
		height = 1
	}
	pts := make([][2]float32, len(samples))
	for i, s := range samples {
		x := r.X + (s.Time-tLo)/span*r.W
		y := r.Y + r.H - (s.Value-axis.Min)/height*r.H
		pts[i] = [2]float32{float32(x), float32(y)}
	}
	return pts
}

// hudLines is the text overlay: readouts, run state and tunables.
func hudLines(r dynamo.Reading, tun sim.Tunables, selected int, paused bool, zoom float64, status string) []string {
	state := "running"
	if paused {
		state = "paused"
	}
	lines := []string{
		fmt.Sprintf("t=%.2fs  %s  zoom %.2fx", r.Time, state, zoom),
		fmt.Sprintf("target %.2f   position %.2f   error %.2f", r.Target, r.Position, r.Error),
	}
	values := tun.Params()
	for i, name := range sim.ParamNames() {
		marker := "  "
		if i == selected {
			marker = "> "
		}
		lines = append(lines, fmt.Sprintf("%s%-10s %8.2f", marker, name, values[name]))
	}
	if status != "" {
		lines = append(lines, status)
	}
	return lines
}

const helpText = `space pause  r reset  tab next param  up/down adjust
+/- zoom  h help  q quit`
