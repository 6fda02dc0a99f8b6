package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tinytelemetry/logdash/internal/model"
	"github.com/tinytelemetry/logdash/internal/transform"
)

// DashboardPage shows summary statistics of the log set.
type DashboardPage struct {
	poller
	summary model.LogSummary
}

// NewDashboardPage creates the dashboard page.
func NewDashboardPage(src model.LogSource) *DashboardPage {
	return &DashboardPage{poller: newPoller(model.ViewDashboard, src)}
}

func (p *DashboardPage) ID() model.View { return model.ViewDashboard }
func (p *DashboardPage) Init() tea.Cmd  { return nil }
func (p *DashboardPage) Activate() tea.Cmd {
	return p.activate()
}
func (p *DashboardPage) Deactivate()   { p.deactivate() }
func (p *DashboardPage) Loading() bool { return p.loading() }

func (p *DashboardPage) Update(msg tea.Msg) (tea.Cmd, *PageNav) {
	if cmd, handled, updated := p.handle(msg); handled {
		if updated {
			p.summary = transform.Summarize(p.logs)
		}
		return cmd, nil
	}

	switch msg := msg.(type) {
	case SettingsChangedMsg:
		return p.setInterval(msg.State.RefreshInterval), nil
	case tea.KeyMsg:
		if key.Matches(msg, keys.Refresh) {
			return p.refetch(), nil
		}
	}
	return nil, nil
}

func (p *DashboardPage) View(width, height int) string {
	switch {
	case p.loading():
		return renderLoadingPlaceholder(width, height)
	case !p.loaded && p.err != nil:
		return renderErrorPanel("Failed to load logs", p.err, width, height)
	case p.summary.Empty():
		return renderEmptyState("No data available", width, height)
	}

	cardWidth := (width - 1) / 2
	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		renderStatCard("Total Logs", fmt.Sprintf("%d", p.summary.TotalLogs), cardWidth),
		" ",
		renderStatCard("Servers", fmt.Sprintf("%d", p.summary.ServerCount), width-cardWidth-1),
	)

	remaining := height - lipgloss.Height(cards)
	if p.err != nil {
		remaining--
	}
	typesHeight := remaining / 2
	volumeHeight := remaining - typesHeight

	sections := []string{
		cards,
		p.renderLogTypes(width, typesHeight),
		p.renderVolume(width, volumeHeight),
	}
	if p.err != nil {
		sections = append(sections, styles().Error.Render("Refresh failed: "+p.err.Error()))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func renderStatCard(label, value string, width int) string {
	st := styles()
	body := lipgloss.JoinVertical(lipgloss.Left,
		st.Label.Render(label),
		st.Value.Foreground(st.Theme.Blue).Render(value),
	)
	return st.Section.Width(width - 2).Render(body)
}

type typeShare struct {
	name  string
	count int
}

// sortedTypes orders log types by count, then name.
func sortedTypes(types map[string]int) []typeShare {
	out := make([]typeShare, 0, len(types))
	for name, count := range types {
		out = append(out, typeShare{name: name, count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].name < out[j].name
	})
	return out
}

// renderLogTypes draws each type's share of the total as a horizontal bar.
func (p *DashboardPage) renderLogTypes(width, height int) string {
	st := styles()
	innerHeight := max(height-3, 1)
	title := st.Title.Render("Log Types")

	shares := sortedTypes(p.summary.LogTypes)
	if len(shares) == 0 {
		return st.Section.Width(width - 2).Height(innerHeight).
			Render(lipgloss.JoinVertical(lipgloss.Left, title, st.Help.Render("No data available")))
	}

	total := 0
	for _, s := range shares {
		total += s.count
	}

	labelWidth := 10
	barWidth := max(width-labelWidth-20, 8)
	var lines []string
	for i, s := range shares {
		if i >= innerHeight {
			break
		}
		filled := int(float64(s.count) / float64(total) * float64(barWidth))
		if filled == 0 && s.count > 0 {
			filled = 1
		}
		bar := lipgloss.NewStyle().Foreground(typeTagColor(s.name)).Render(strings.Repeat("█", filled)) +
			st.Label.Render(strings.Repeat("░", barWidth-filled))
		pct := float64(s.count) * 100 / float64(total)
		lines = append(lines, fmt.Sprintf("%-*s %s %5d %5.1f%%",
			labelWidth, truncate(strings.ToUpper(s.name), labelWidth), bar, s.count, pct))
	}

	return st.Section.Width(width - 2).Height(innerHeight).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, strings.Join(lines, "\n")))
}

// renderVolume draws the per-day log counts as a column chart.
func (p *DashboardPage) renderVolume(width, height int) string {
	st := styles()
	innerHeight := max(height-3, 3)
	dist := p.summary.TimeDistribution

	header := "Log Volume Over Time"
	if len(dist) > 0 {
		span := fmt.Sprintf("%s .. %s", dist[0].Date, dist[len(dist)-1].Date)
		if gap := width - 4 - len(header) - len(span); gap > 0 {
			header += strings.Repeat(" ", gap) + span
		}
	}
	title := st.Title.Render(header)

	if len(dist) == 0 {
		return st.Section.Width(width - 2).Height(innerHeight).
			Render(lipgloss.JoinVertical(lipgloss.Left, title, st.Help.Render("No data available")))
	}

	values := make([]float64, len(dist))
	labels := make([]string, len(dist))
	for i, b := range dist {
		values[i] = float64(b.Count)
		labels[i] = b.Date
	}
	chart := renderColumnChart(values, labels, width-4, innerHeight-1)

	return st.Section.Width(width - 2).Height(innerHeight).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, chart))
}

// renderColumnChart draws values as vertical bars with ntcharts. When there
// are more values than columns, only the most recent ones are shown.
func renderColumnChart(values []float64, labels []string, width, height int) string {
	if width < 10 {
		width = 10
	}
	chartHeight := max(height-1, 2)
	maxBars := max(width/2, 1)
	start := 0
	if len(values) > maxBars {
		start = len(values) - maxBars
	}

	bc := barchart.New(width, chartHeight,
		barchart.WithBarGap(1),
		barchart.WithBarWidth(1),
		barchart.WithNoAxis(),
	)
	barStyle := lipgloss.NewStyle().Foreground(styles().Theme.Blue).Background(styles().Theme.Blue)

	maxVal, maxIdx := 0.0, start
	for i := start; i < len(values); i++ {
		bc.Push(barchart.BarData{
			Label: labels[i],
			Values: []barchart.BarValue{
				{Name: labels[i], Value: values[i], Style: barStyle},
			},
		})
		if values[i] > maxVal {
			maxVal, maxIdx = values[i], i
		}
	}
	bc.Draw()

	footer := styles().Label.Render(fmt.Sprintf("%d points | peak %s on %s",
		len(values)-start, transform.FormatValue(maxVal), labels[maxIdx]))
	return lipgloss.JoinVertical(lipgloss.Left, bc.View(), footer)
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 1 {
		return string(r[:width])
	}
	return string(r[:width-1]) + "~"
}
