//go:build ebiten

package gui

import (
	"context"
	"errors"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"go.uber.org/zap"

	"github.com/san-kum/pidsim/internal/scene"
	"github.com/san-kum/pidsim/internal/series"
	"github.com/san-kum/pidsim/internal/sim"
)

var (
	colBg       = color.RGBA{R: 10, G: 12, B: 20, A: 255}
	colWater    = color.RGBA{R: 77, G: 163, B: 255, A: 255}
	colTarget   = color.RGBA{R: 255, G: 85, B: 85, A: 255}
	colPosition = color.RGBA{R: 80, G: 250, B: 123, A: 255}
	colError    = color.RGBA{R: 255, G: 204, B: 0, A: 255}
	colAxis     = color.RGBA{R: 60, G: 60, B: 70, A: 255}
)

// Game adapts a Loop to the ebiten.Game interface. ebiten calls Update once
// per tick on one goroutine, so the loop is stepped directly.
type Game struct {
	ctx  context.Context
	loop *sim.Loop
	log  *zap.Logger

	paused   bool
	showHelp bool
	zoom     float64
	selected int
	status   string

	errorAxis    series.Axis
	positionAxis series.Axis
}

func New(ctx context.Context, loop *sim.Loop, log *zap.Logger) *Game {
	if log == nil {
		log = zap.NewNop()
	}
	return &Game{
		ctx:          ctx,
		loop:         loop,
		log:          log,
		zoom:         scene.DefaultZoom,
		errorAxis:    series.DefaultAxis(),
		positionAxis: series.DefaultAxis(),
	}
}

// Reset starts a fresh run and restores the chart axes.
func (g *Game) Reset() {
	g.loop.Reset()
	g.errorAxis = series.DefaultAxis()
	g.positionAxis = series.DefaultAxis()
	g.status = "reset"
	g.log.Info("run reset")
}

func (g *Game) Update() error {
	if g.ctx.Err() != nil {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.Reset()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		g.showHelp = !g.showHelp
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		g.selected = (g.selected + 1) % len(sim.ParamNames())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyUp) {
		g.adjust(1)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDown) {
		g.adjust(-1)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEqual) || inpututil.IsKeyJustPressed(ebiten.KeyKPAdd) {
		g.zoom = scene.ClampZoom(g.zoom * 1.25)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyMinus) || inpututil.IsKeyJustPressed(ebiten.KeyKPSubtract) {
		g.zoom = scene.ClampZoom(g.zoom / 1.25)
	}

	if !g.paused {
		if r := g.loop.Step(); !r.Valid() {
			g.paused = true
			g.status = "state diverged, press r to reset"
			g.log.Warn("invalid state", zap.Float64("t", r.Time))
		}
	}

	if lo, hi, ok := g.loop.AutoscaleBounds(sim.MetricError); ok {
		g.errorAxis = series.Axis{Min: lo, Max: hi}
	}
	if lo, hi, ok := g.loop.AutoscaleBounds(sim.MetricTarget, sim.MetricPosition); ok {
		g.positionAxis = series.Axis{Min: lo, Max: hi}
	}
	return nil
}

func (g *Game) adjust(dir float64) {
	name := sim.ParamNames()[g.selected]
	v := g.loop.GetParams()[name] + dir*sim.ParamStep(name)
	if err := g.loop.SetParam(name, v); err != nil {
		g.status = err.Error()
		return
	}
	g.status = ""
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(colBg)

	sr := sceneRect()
	view := scene.View{World: scene.DefaultWorld(), Zoom: g.zoom, W: sr.W, H: sr.H}
	r := g.loop.Last()
	water, target, current := scene.Frame{Target: r.Target, Position: r.Position}.Paths()
	strokePath(screen, view, water, colWater)
	strokePath(screen, view, target, colTarget)
	strokePath(screen, view, current, colPosition)

	tLo, tHi := g.loop.VisibleRange()
	er := stripRect(0)
	drawFrame(screen, er)
	strokePolyline(screen, Strip(g.loop.VisibleSamples(sim.MetricError), tLo, tHi, g.errorAxis, er), colError)

	pr := stripRect(1)
	drawFrame(screen, pr)
	strokePolyline(screen, Strip(g.loop.VisibleSamples(sim.MetricTarget), tLo, tHi, g.positionAxis, pr), colTarget)
	strokePolyline(screen, Strip(g.loop.VisibleSamples(sim.MetricPosition), tLo, tHi, g.positionAxis, pr), colPosition)

	for i, line := range hudLines(r, g.loop.Tunables(), g.selected, g.paused, g.zoom, g.status) {
		ebitenutil.DebugPrintAt(screen, line, 8, 8+i*16)
	}
	if g.showHelp {
		ebitenutil.DebugPrintAt(screen, helpText, 8, ScreenH-40)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return ScreenW, ScreenH
}

func strokePath(dst *ebiten.Image, view scene.View, pts []scene.Point, clr color.Color) {
	for i := 1; i < len(pts); i++ {
		x0, y0 := view.ToScreen(pts[i-1])
		x1, y1 := view.ToScreen(pts[i])
		vector.StrokeLine(dst, float32(x0), float32(y0), float32(x1), float32(y1), 2, clr, true)
	}
}

func strokePolyline(dst *ebiten.Image, pts [][2]float32, clr color.Color) {
	for i := 1; i < len(pts); i++ {
		vector.StrokeLine(dst, pts[i-1][0], pts[i-1][1], pts[i][0], pts[i][1], 1, clr, true)
	}
}

func drawFrame(dst *ebiten.Image, r Rect) {
	vector.StrokeRect(dst, float32(r.X), float32(r.Y), float32(r.W), float32(r.H), 1, colAxis, false)
	mid := float32(r.Y + r.H/2)
	vector.StrokeLine(dst, float32(r.X), mid, float32(r.X+r.W), mid, 1, colAxis, false)
}

// Run opens the window and steps loop at its FPS until the window closes or
// ctx is canceled.
func Run(ctx context.Context, loop *sim.Loop, log *zap.Logger) error {
	ebiten.SetWindowTitle("pidsim")
	ebiten.SetWindowSize(ScreenW, ScreenH)
	ebiten.SetTPS(loop.FPS())

	if err := ebiten.RunGame(New(ctx, loop, log)); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}
