package analysis

import (
	"strings"

	"github.com/san-kum/pidsim/internal/dynamo"
)

type Point struct{ X, Y float64 }

// PhasePortrait is the body's trajectory in position/velocity space.
type PhasePortrait struct {
	Points []Point
}

func NewPhasePortrait(readings []dynamo.Reading) *PhasePortrait {
	p := &PhasePortrait{Points: make([]Point, len(readings))}
	for i, r := range readings {
		p.Points[i] = Point{X: r.Position, Y: r.Velocity}
	}
	return p
}

// TrackingPortrait plots error against its rate of change, which is where
// the derivative gain acts.
func TrackingPortrait(readings []dynamo.Reading, dt float64) *PhasePortrait {
	p := &PhasePortrait{}
	for i := 1; i < len(readings); i++ {
		e := readings[i].Error
		p.Points = append(p.Points, Point{X: e, Y: (e - readings[i-1].Error) / dt})
	}
	return p
}

// ASCII draws the portrait on a width×height grid with axes through zero.
func (portrait *PhasePortrait) ASCII(width, height int) string {
	if portrait == nil || len(portrait.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX := portrait.Points[0].X, portrait.Points[0].X
	minY, maxY := portrait.Points[0].Y, portrait.Points[0].Y
	for _, p := range portrait.Points {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	for _, p := range portrait.Points {
		col := int((p.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((p.Y-minY)/rangeY*float64(height-1))
		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	if minX <= 0 && maxX >= 0 {
		col := int((0 - minX) / rangeX * float64(width-1))
		for row := 0; row < height; row++ {
			if canvas[row][col] == ' ' {
				canvas[row][col] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			if canvas[row][col] == ' ' {
				canvas[row][col] = '─'
			}
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
