package storage

import (
	"bufio"
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/san-kum/pidsim/internal/dynamo"
	"github.com/san-kum/pidsim/internal/series"
)

var (
	targetColor   = color.RGBA{R: 0x2b, G: 0x8a, B: 0x3e, A: 0xff}
	positionColor = color.RGBA{R: 0x1c, G: 0x64, B: 0xf2, A: 0xff}
	errorColor    = color.RGBA{R: 0xd9, G: 0x48, B: 0x0f, A: 0xff}
)

// ChartOptions sizes the exported image, in inches at the given DPI.
type ChartOptions struct {
	Width  float64
	Height float64
	DPI    int
	Title  string
}

func DefaultChartOptions() ChartOptions {
	return ChartOptions{Width: 10, Height: 8, DPI: 150, Title: "pidsim run"}
}

// WritePNG renders two stacked charts, target and position on top and error
// below, each with the symmetric vertical range the live view uses.
func WritePNG(w io.Writer, readings []dynamo.Reading, opts ChartOptions) error {
	if len(readings) == 0 {
		return fmt.Errorf("no readings to plot")
	}

	times := make([]float64, len(readings))
	target := make([]float64, len(readings))
	position := make([]float64, len(readings))
	errs := make([]float64, len(readings))
	for i, r := range readings {
		times[i], target[i], position[i], errs[i] = r.Time, r.Target, r.Position, r.Error
	}

	top := plot.New()
	top.Title.Text = opts.Title
	top.Y.Label.Text = "position"
	if err := addLine(top, "target", times, target, targetColor); err != nil {
		return err
	}
	if err := addLine(top, "position", times, position, positionColor); err != nil {
		return err
	}
	fitSymmetric(top, target, position)

	bottom := plot.New()
	bottom.X.Label.Text = "time (s)"
	bottom.Y.Label.Text = "error"
	if err := addLine(bottom, "error", times, errs, errorColor); err != nil {
		return err
	}
	fitSymmetric(bottom, errs)

	for _, p := range []*plot.Plot{top, bottom} {
		p.Legend.Top = true
		p.Add(plotter.NewGrid())
		p.X.Min, p.X.Max = times[0], times[len(times)-1]
	}

	c := vgimg.NewWith(
		vgimg.UseWH(vg.Length(opts.Width)*vg.Inch, vg.Length(opts.Height)*vg.Inch),
		vgimg.UseDPI(opts.DPI),
	)
	dc := draw.New(c)
	tiles := draw.Tiles{Rows: 2, Cols: 1, PadX: vg.Millimeter, PadY: vg.Millimeter * 3}
	canvases := plot.Align([][]*plot.Plot{{top}, {bottom}}, tiles, dc)
	top.Draw(canvases[0][0])
	bottom.Draw(canvases[1][0])

	bw := bufio.NewWriter(w)
	png := vgimg.PngCanvas{Canvas: c}
	if _, err := png.WriteTo(bw); err != nil {
		return fmt.Errorf("cannot write png: %w", err)
	}
	return bw.Flush()
}

func addLine(p *plot.Plot, name string, xs, ys []float64, c color.Color) error {
	pts := make(plotter.XYs, len(xs))
	for i := range xs {
		pts[i].X = xs[i]
		pts[i].Y = ys[i]
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("cannot create %s line: %w", name, err)
	}
	line.LineStyle.Width = vg.Points(1.5)
	line.LineStyle.Color = c
	p.Add(line)
	p.Legend.Add(name, line)
	return nil
}

func fitSymmetric(p *plot.Plot, values ...[]float64) {
	if lo, hi, ok := series.SymmetricRange(values...); ok {
		p.Y.Min, p.Y.Max = lo, hi
	}
}
