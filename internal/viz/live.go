package viz

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"go.uber.org/zap"

	"github.com/san-kum/pidsim/internal/scene"
	"github.com/san-kum/pidsim/internal/series"
	"github.com/san-kum/pidsim/internal/sim"
)

// FrameMsg carries one published driver frame into the model.
type FrameMsg sim.Frame

type stoppedMsg struct{}

// params lists the adjustable tunables in tab order.
var params = sim.ParamNames()

const (
	sceneCols   = 60
	sceneRows   = 14
	chartWidth  = 48
	chartHeight = 7
	zoomFactor  = 1.25

	setParamTimeout = time.Second
)

// Model is the live dashboard. It never touches the loop directly: all reads
// come from driver frames and all writes go through the driver.
type Model struct {
	driver   *sim.Driver
	frame    sim.Frame
	ready    bool
	zoom     float64
	selected int
	showHelp bool
	theme    Theme
	status   string
	stopped  bool

	// SnapshotDir is where the s key writes scene SVGs.
	SnapshotDir string
}

func NewModel(d *sim.Driver, theme string) Model {
	return Model{
		driver:      d,
		zoom:        scene.DefaultZoom,
		theme:       GetTheme(theme),
		SnapshotDir: ".",
	}
}

func waitFrame(d *sim.Driver) tea.Cmd {
	return func() tea.Msg {
		select {
		case f := <-d.Frames():
			return FrameMsg(f)
		case <-d.Done():
			return stoppedMsg{}
		}
	}
}

func (m Model) Init() tea.Cmd {
	return waitFrame(m.driver)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case FrameMsg:
		m.frame = sim.Frame(msg)
		m.ready = true
		return m, waitFrame(m.driver)
	case stoppedMsg:
		m.stopped = true
		return m, tea.Quit
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ":
			m.driver.Toggle()
		case "r":
			m.driver.Reset()
			m.status = "reset"
		case "tab":
			m.selected = (m.selected + 1) % len(params)
		case "shift+tab":
			m.selected = (m.selected + len(params) - 1) % len(params)
		case "up", "k":
			m.adjust(1)
		case "down", "j":
			m.adjust(-1)
		case "+", "=":
			m.zoom = scene.ClampZoom(m.zoom * zoomFactor)
		case "-", "_":
			m.zoom = scene.ClampZoom(m.zoom / zoomFactor)
		case "0":
			m.zoom = scene.DefaultZoom
		case "t":
			m.theme = NextTheme(m.theme)
		case "?":
			m.showHelp = !m.showHelp
		case "s":
			m.snapshot()
		}
	}
	return m, nil
}

func (m *Model) adjust(dir float64) {
	name := params[m.selected]
	v := m.frame.Tunables.Params()[name] + dir*sim.ParamStep(name)
	ctx, cancel := context.WithTimeout(context.Background(), setParamTimeout)
	defer cancel()
	if err := m.driver.SetParam(ctx, name, v); err != nil {
		m.status = err.Error()
		return
	}
	_ = m.frame.Tunables.Set(name, v)
	m.status = fmt.Sprintf("%s = %.2f", name, v)
}

// snapshot writes the current scene as an SVG file.
func (m *Model) snapshot() {
	if !m.ready {
		return
	}
	path := filepath.Join(m.SnapshotDir, fmt.Sprintf("pidsim-scene-%06d.svg", m.frame.Ticks))
	if err := os.WriteFile(path, []byte(m.sceneCanvas().SVG(4)), 0644); err != nil {
		m.status = err.Error()
		return
	}
	m.status = "saved " + path
}

func (m Model) View() string {
	if m.stopped {
		return "simulation stopped\n"
	}
	if !m.ready {
		return Subtle.Render("starting...") + "\n"
	}

	left := lipgloss.JoinVertical(lipgloss.Left,
		m.header(),
		Panel.Render(m.scene()),
		m.readouts(),
	)
	right := lipgloss.JoinVertical(lipgloss.Left,
		Panel.Render(m.errorChart()),
		Panel.Render(m.positionChart()),
	)
	side := lipgloss.JoinVertical(lipgloss.Left,
		Panel.Render(m.paramList()),
		Panel.Render(MetricLabel.Render("command ")+SparklineChart(m.frame.Command, 24)),
	)

	var b strings.Builder
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, right, side))
	b.WriteByte('\n')
	if m.showHelp {
		b.WriteString(Panel.Render(helpText))
		b.WriteByte('\n')
	} else {
		b.WriteString(KeyHint.Render("space pause · r reset · tab/↑/↓ tune · +/- zoom · t theme · s snapshot · ? help · q quit"))
		b.WriteByte('\n')
	}
	return b.String()
}

func (m Model) header() string {
	state := StatusRunning.Render("RUNNING")
	if m.frame.Paused {
		state = StatusPaused.Render("PAUSED")
	}
	line := fmt.Sprintf("%s  %s  t=%.2fs  zoom %.2fx",
		titleStyle(m.theme).Render("PIDSIM"), state, m.frame.Reading.Time, m.zoom)
	if m.status != "" {
		line += "  " + Subtle.Render(m.status)
	}
	return line
}

func (m Model) scene() string {
	return strings.TrimRight(m.sceneCanvas().String(), "\n")
}

// sceneCanvas draws the water line, the target boat and the current boat.
func (m Model) sceneCanvas() *Canvas {
	c := NewCanvas(sceneCols, sceneRows)
	w, h := c.Pixels()
	view := scene.View{World: scene.DefaultWorld(), Zoom: m.zoom, W: float64(w - 1), H: float64(h - 1)}

	water, target, current := scene.Frame{
		Target:   m.frame.Reading.Target,
		Position: m.frame.Reading.Position,
	}.Paths()

	c.SetPen(m.theme.Water)
	c.DrawPath(view, water)
	c.SetPen(m.theme.Target)
	c.DrawPath(view, target)
	c.SetPen(m.theme.Position)
	c.DrawPath(view, current)
	return c
}

func (m Model) readouts() string {
	r := m.frame.Reading
	item := func(label string, v float64, c lipgloss.Color) string {
		return MetricLabel.Render(label+" ") + valueStyle(c).Render(fmt.Sprintf("%.2f", v))
	}
	return strings.Join([]string{
		item("target", r.Target, m.theme.Target),
		item("position", r.Position, m.theme.Position),
		item("error", r.Error, m.theme.Warning),
	}, "   ")
}

func (m Model) errorChart() string {
	return chart(fmt.Sprintf("error  [%.1f, %.1f]s", m.frame.TimeLo, m.frame.TimeHi),
		m.frame.ErrorAxis,
		[]asciigraph.AnsiColor{m.theme.ErrorSeries},
		m.frame.Error)
}

func (m Model) positionChart() string {
	return chart("target / position",
		m.frame.PositionAxis,
		[]asciigraph.AnsiColor{m.theme.TargetSeries, m.theme.PositionSeries},
		m.frame.Target, m.frame.Position)
}

func chart(caption string, axis series.Axis, colors []asciigraph.AnsiColor, data ...[]float64) string {
	for _, d := range data {
		if len(d) < 2 {
			return Subtle.Render(caption + ": waiting for samples")
		}
	}
	return asciigraph.PlotMany(data,
		asciigraph.Height(chartHeight),
		asciigraph.Width(chartWidth),
		asciigraph.LowerBound(axis.Min),
		asciigraph.UpperBound(axis.Max),
		asciigraph.Precision(1),
		asciigraph.SeriesColors(colors...),
		asciigraph.Caption(caption),
	)
}

func (m Model) paramList() string {
	values := m.frame.Tunables.Params()
	var b strings.Builder
	b.WriteString(titleStyle(m.theme).Render("parameters"))
	for i, name := range params {
		line := fmt.Sprintf("%-10s %8.2f", name, values[name])
		b.WriteByte('\n')
		if i == m.selected {
			b.WriteString(selectedStyle(m.theme).Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
	}
	return b.String()
}

const helpText = `space      pause / resume
r          reset the run (tunables are kept)
tab        select next parameter
up/down    adjust selected parameter
+ / -      zoom in / out, 0 resets zoom
t          cycle theme
s          save the scene as SVG
?          toggle this help
q          quit`

// Run drives loop at its FPS and shows the dashboard until the user quits or
// ctx is canceled.
func Run(parent context.Context, loop *sim.Loop, log *zap.Logger, theme string, opts ...tea.ProgramOption) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	d := sim.NewDriver(loop, log)
	errc := make(chan error, 1)
	go func() { errc <- d.Run(ctx) }()

	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	_, err := tea.NewProgram(NewModel(d, theme), opts...).Run()

	cancel()
	<-errc
	if errors.Is(err, tea.ErrProgramKilled) {
		return parent.Err()
	}
	return err
}
