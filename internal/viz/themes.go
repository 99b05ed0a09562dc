package viz

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
)

// Theme colors the scene, the charts and the side panel.
type Theme struct {
	Name     string
	Target   lipgloss.Color
	Position lipgloss.Color
	Water    lipgloss.Color
	Accent   lipgloss.Color
	Muted    lipgloss.Color
	Warning  lipgloss.Color

	TargetSeries   asciigraph.AnsiColor
	PositionSeries asciigraph.AnsiColor
	ErrorSeries    asciigraph.AnsiColor
}

var (
	ThemeOcean = Theme{
		Name:           "ocean",
		Target:         lipgloss.Color("#ff5555"),
		Position:       lipgloss.Color("#50fa7b"),
		Water:          lipgloss.Color("#4da3ff"),
		Accent:         lipgloss.Color("#00ccff"),
		Muted:          lipgloss.Color("#4488aa"),
		Warning:        lipgloss.Color("#ffcc00"),
		TargetSeries:   asciigraph.Red,
		PositionSeries: asciigraph.Green,
		ErrorSeries:    asciigraph.Yellow,
	}

	ThemeRetroGreen = Theme{
		Name:           "retro",
		Target:         lipgloss.Color("#88ff88"),
		Position:       lipgloss.Color("#00ff00"),
		Water:          lipgloss.Color("#005500"),
		Accent:         lipgloss.Color("#00ff00"),
		Muted:          lipgloss.Color("#005500"),
		Warning:        lipgloss.Color("#ffff00"),
		TargetSeries:   asciigraph.LightGreen,
		PositionSeries: asciigraph.Green,
		ErrorSeries:    asciigraph.Lime,
	}

	ThemeMinimal = Theme{
		Name:           "minimal",
		Target:         lipgloss.Color("#cccccc"),
		Position:       lipgloss.Color("#ffffff"),
		Water:          lipgloss.Color("#888888"),
		Accent:         lipgloss.Color("#0088ff"),
		Muted:          lipgloss.Color("#888888"),
		Warning:        lipgloss.Color("#ffaa00"),
		TargetSeries:   asciigraph.Silver,
		PositionSeries: asciigraph.White,
		ErrorSeries:    asciigraph.Blue,
	}

	Themes = []Theme{
		ThemeOcean,
		ThemeRetroGreen,
		ThemeMinimal,
	}
)

// GetTheme returns a theme by name
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeOcean
}

// NextTheme returns the theme after t, wrapping around.
func NextTheme(t Theme) Theme {
	for i, th := range Themes {
		if th.Name == t.Name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}

// ThemeNames returns list of available theme names
func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
