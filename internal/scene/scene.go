// Package scene holds the geometry both displays draw: the water line, the
// target boat and the current boat, in world units with a zoom factor.
package scene

import "math"

// World is the visible world rectangle at zoom 1.
type World struct {
	XMin, XMax float64
	YMin, YMax float64
}

func DefaultWorld() World {
	return World{XMin: -100, XMax: 100, YMin: -5, YMax: 25}
}

const (
	WaterLevel = -3.0
	BoatSize   = 15.0

	MinZoom     = 0.25
	MaxZoom     = 8.0
	DefaultZoom = 1.0
)

type Point struct{ X, Y float64 }

// View maps world coordinates onto a W×H screen with y pointing down.
// Zoom > 1 shows more of the world.
type View struct {
	World World
	Zoom  float64
	W, H  float64
}

func NewView(w, h float64) View {
	return View{World: DefaultWorld(), Zoom: DefaultZoom, W: w, H: h}
}

func (v View) ToScreen(p Point) (sx, sy float64) {
	x, y := p.X/v.Zoom, p.Y/v.Zoom
	sx = (x - v.World.XMin) / (v.World.XMax - v.World.XMin) * v.W
	sy = v.H - (y-v.World.YMin)/(v.World.YMax-v.World.YMin)*v.H
	return sx, sy
}

// ClampZoom keeps z inside [MinZoom, MaxZoom].
func ClampZoom(z float64) float64 {
	return math.Min(MaxZoom, math.Max(MinZoom, z))
}

// Boat is a hull with a mast and a pennant, anchored at (x, y).
func Boat(x, y, size float64) []Point {
	return []Point{
		{x, y},
		{x + size, y},
		{x + .8*size, y - .2*size},
		{x - .8*size, y - .2*size},
		{x - size, y},
		{x, y},
		{x, y + size},
		{x + .6*size, y + .6*size},
		{x, y + .4*size},
	}
}

// WaterLine spans far past any zoomed view.
func WaterLine() []Point {
	return []Point{{-1000, WaterLevel}, {1000, WaterLevel}}
}

// Frame is what one draw needs.
type Frame struct {
	Target   float64
	Position float64
}

// Paths returns the water line, target boat and current boat.
func (f Frame) Paths() (water, target, current []Point) {
	return WaterLine(), Boat(f.Target, 0, BoatSize), Boat(f.Position, 0, BoatSize)
}
