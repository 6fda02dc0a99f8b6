package tui

import (
	"sync/atomic"

	"github.com/charmbracelet/lipgloss"
)

// Theme is the colour set of one appearance mode.
type Theme struct {
	Dark   bool
	Blue   lipgloss.Color
	Green  lipgloss.Color
	Red    lipgloss.Color
	Orange lipgloss.Color
	Gray   lipgloss.Color
	Text   lipgloss.Color
	Bar    lipgloss.Color // status line background
	Heat   [5]lipgloss.Color
}

var (
	lightTheme = Theme{
		Blue:   lipgloss.Color("#1E66F5"),
		Green:  lipgloss.Color("#40A02B"),
		Red:    lipgloss.Color("#D20F39"),
		Orange: lipgloss.Color("#FE640B"),
		Gray:   lipgloss.Color("#8C8FA1"),
		Text:   lipgloss.Color("#4C4F69"),
		Bar:    lipgloss.Color("#DCE0E8"),
		Heat: [5]lipgloss.Color{
			"#E3F2FD", "#90CAF9", "#42A5F5", "#1E88E5", "#0D47A1",
		},
	}
	darkTheme = Theme{
		Dark:   true,
		Blue:   lipgloss.Color("39"),
		Green:  lipgloss.Color("42"),
		Red:    lipgloss.Color("196"),
		Orange: lipgloss.Color("208"),
		Gray:   lipgloss.Color("244"),
		Text:   lipgloss.Color("252"),
		Bar:    lipgloss.Color("#1A1B3A"),
		Heat: [5]lipgloss.Color{
			"#0D1B2A", "#1B3A5C", "#27608E", "#3A8CC4", "#66C2FF",
		},
	}
)

// Styles are the lipgloss styles derived from a Theme.
type Styles struct {
	Theme Theme

	Section       lipgloss.Style
	ActiveSection lipgloss.Style
	Title         lipgloss.Style
	Help          lipgloss.Style
	Label         lipgloss.Style
	Value         lipgloss.Style
	Error         lipgloss.Style
	Selected      lipgloss.Style
	StatusLine    lipgloss.Style
}

func newStyles(t Theme) *Styles {
	return &Styles{
		Theme: t,
		Section: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(t.Gray).
			Padding(0, 1),
		ActiveSection: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(t.Blue).
			Padding(0, 1),
		Title:      lipgloss.NewStyle().Foreground(t.Blue).Bold(true),
		Help:       lipgloss.NewStyle().Foreground(t.Gray).Italic(true),
		Label:      lipgloss.NewStyle().Foreground(t.Gray),
		Value:      lipgloss.NewStyle().Foreground(t.Text).Bold(true),
		Error:      lipgloss.NewStyle().Foreground(t.Red),
		Selected:   lipgloss.NewStyle().Background(t.Blue).Foreground(lipgloss.Color("#FFFFFF")),
		StatusLine: lipgloss.NewStyle().Background(t.Bar).Foreground(t.Text),
	}
}

var activeStyles atomic.Pointer[Styles]

func init() {
	activeStyles.Store(newStyles(lightTheme))
}

// styles returns the styles of the current theme.
func styles() *Styles {
	return activeStyles.Load()
}

// applyTheme switches the live theme.
func applyTheme(dark bool) {
	if dark {
		activeStyles.Store(newStyles(darkTheme))
		return
	}
	activeStyles.Store(newStyles(lightTheme))
}

// typeTagColor colours log type tags: ip blue, endpoint green, others grey.
func typeTagColor(logType string) lipgloss.Color {
	t := styles().Theme
	switch logType {
	case "ip":
		return t.Blue
	case "endpoint":
		return t.Green
	default:
		return t.Gray
	}
}

// heatColor picks the palette step for v within [0, maxValue].
func heatColor(v, maxValue float64) lipgloss.Color {
	palette := styles().Theme.Heat
	if maxValue <= 0 || v <= 0 {
		return palette[0]
	}
	step := int(v / maxValue * float64(len(palette)))
	if step >= len(palette) {
		step = len(palette) - 1
	}
	return palette[step]
}
