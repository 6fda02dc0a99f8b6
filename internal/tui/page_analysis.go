package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tinytelemetry/logdash/internal/model"
	"github.com/tinytelemetry/logdash/internal/transform"
)

const noAnalysisData = "No data available for selected parameters"

// analysisSelectors is the number of form fields: field, groupBy, chartType.
const analysisSelectors = 3

// AnalysisPage groups and charts the log set by user-selected dimensions.
type AnalysisPage struct {
	poller

	pending model.AnalysisParams
	applied model.AnalysisParams
	focus   int

	rows  []model.GroupRow
	cells []model.HeatCell
}

// NewAnalysisPage creates the analysis page.
func NewAnalysisPage(src model.LogSource) *AnalysisPage {
	params := model.DefaultAnalysisParams()
	return &AnalysisPage{
		poller:  newPoller(model.ViewAnalysis, src),
		pending: params,
		applied: params,
	}
}

func (p *AnalysisPage) ID() model.View                { return model.ViewAnalysis }
func (p *AnalysisPage) Init() tea.Cmd                 { return nil }
func (p *AnalysisPage) Activate() tea.Cmd             { return p.activate() }
func (p *AnalysisPage) Deactivate()                   { p.deactivate() }
func (p *AnalysisPage) Loading() bool                 { return p.loading() }
func (p *AnalysisPage) Params() model.AnalysisParams  { return p.applied }
func (p *AnalysisPage) Pending() model.AnalysisParams { return p.pending }
func (p *AnalysisPage) Groups() []model.GroupRow      { return p.rows }
func (p *AnalysisPage) HeatCells() []model.HeatCell   { return p.cells }

func (p *AnalysisPage) Update(msg tea.Msg) (tea.Cmd, *PageNav) {
	if cmd, handled, updated := p.handle(msg); handled {
		if updated {
			p.recompute()
		}
		return cmd, nil
	}

	switch msg := msg.(type) {
	case SettingsChangedMsg:
		return p.setInterval(msg.State.RefreshInterval), nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			p.focus = (p.focus + analysisSelectors - 1) % analysisSelectors
		case key.Matches(msg, keys.Down):
			p.focus = (p.focus + 1) % analysisSelectors
		case key.Matches(msg, keys.Left):
			p.cycle(-1)
		case key.Matches(msg, keys.Right):
			p.cycle(1)
		case key.Matches(msg, keys.Enter):
			p.applied = p.pending
			p.recompute()
		case key.Matches(msg, keys.Refresh):
			return p.refetch(), nil
		}
	}
	return nil, nil
}

// cycle moves the focused selector by delta, wrapping around.
func (p *AnalysisPage) cycle(delta int) {
	switch p.focus {
	case 0:
		p.pending.Field = model.Fields[step(indexOf(model.Fields, p.pending.Field), delta, len(model.Fields))]
	case 1:
		p.pending.GroupBy = model.GroupBys[step(indexOf(model.GroupBys, p.pending.GroupBy), delta, len(model.GroupBys))]
	case 2:
		p.pending.ChartType = model.ChartTypes[step(indexOf(model.ChartTypes, p.pending.ChartType), delta, len(model.ChartTypes))]
	}
}

func (p *AnalysisPage) recompute() {
	p.rows = transform.GroupAndAggregate(p.logs, p.applied.Field, p.applied.GroupBy)
	p.cells = transform.ToHeatmapSeries(p.logs, p.applied.Field, p.applied.GroupBy)
}

func indexOf[T comparable](items []T, v T) int {
	for i, item := range items {
		if item == v {
			return i
		}
	}
	return 0
}

func step(i, delta, n int) int {
	return ((i+delta)%n + n) % n
}

func (p *AnalysisPage) View(width, height int) string {
	form := p.renderForm(width)
	bodyHeight := height - lipgloss.Height(form)

	var body string
	switch {
	case p.loading():
		body = renderLoadingPlaceholder(width, bodyHeight)
	case !p.loaded && p.err != nil:
		body = renderErrorPanel("Failed to load logs", p.err, width, bodyHeight)
	case len(p.rows) == 0:
		body = renderEmptyState(noAnalysisData, width, bodyHeight)
	default:
		body = p.renderChart(width, bodyHeight)
	}
	return lipgloss.JoinVertical(lipgloss.Left, form, body)
}

func (p *AnalysisPage) renderForm(width int) string {
	st := styles()
	selectors := []struct {
		label string
		value string
	}{
		{"Field", string(p.pending.Field)},
		{"Group by", string(p.pending.GroupBy)},
		{"Chart", string(p.pending.ChartType)},
	}

	var parts []string
	for i, sel := range selectors {
		value := "‹ " + sel.value + " ›"
		if i == p.focus {
			value = st.Selected.Render(value)
		} else {
			value = st.Value.Render(value)
		}
		parts = append(parts, st.Label.Render(sel.label+" ")+value)
	}
	line := strings.Join(parts, "   ")
	if p.pending != p.applied {
		line += st.Help.Render("   enter to apply")
	}
	return st.Section.Width(width - 2).Render(line)
}

func (p *AnalysisPage) chartTitle() string {
	verb := "Count of"
	if p.applied.Field.Numeric() {
		verb = "Sum of"
	}
	return fmt.Sprintf("%s %s by %s", verb, p.applied.Field, p.applied.GroupBy)
}

func (p *AnalysisPage) renderChart(width, height int) string {
	st := styles()
	innerHeight := max(height-3, 3)
	title := st.Title.Render(p.chartTitle())

	var content string
	switch p.applied.ChartType {
	case model.ChartBar:
		content = renderHorizontalBars(p.rows, width-4, innerHeight-1)
	case model.ChartHeatmap:
		content = renderHeatmap(p.cells, width-4, innerHeight-1)
	default:
		content = p.renderColumns(width-4, innerHeight-1)
	}

	return st.Section.Width(width - 2).Height(innerHeight).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
}

func (p *AnalysisPage) renderColumns(width, height int) string {
	rows := transform.TopGroups(p.rows, max(width/2, 1))
	values := make([]float64, len(rows))
	labels := make([]string, len(rows))
	legend := make([]string, len(rows))
	for i, r := range rows {
		values[i] = r.Value
		labels[i] = r.Group
		legend[i] = fmt.Sprintf("%d %s %s", i+1, truncate(r.Group, 20), transform.FormatValue(r.Value))
	}
	legendLine := styles().Label.Width(width).Render(strings.Join(legend, " · "))
	chart := renderColumnChart(values, labels, width, height-lipgloss.Height(legendLine))
	return lipgloss.JoinVertical(lipgloss.Left, chart, legendLine)
}

// renderHorizontalBars draws one bar per group, scaled to the largest.
func renderHorizontalBars(rows []model.GroupRow, width, height int) string {
	st := styles()
	rows = transform.TopGroups(rows, max(height, 1))

	maxVal := 0.0
	valueWidth := 3
	for _, r := range rows {
		maxVal = max(maxVal, r.Value)
		valueWidth = max(valueWidth, len(transform.FormatValue(r.Value)))
	}

	labelWidth := min(max(width/4, 8), 24)
	barWidth := max(width-labelWidth-valueWidth-4, 8)

	var lines []string
	for _, r := range rows {
		filled := 0
		if maxVal > 0 {
			filled = int(r.Value / maxVal * float64(barWidth))
		}
		if filled == 0 && r.Value > 0 {
			filled = 1
		}
		bar := lipgloss.NewStyle().Foreground(st.Theme.Blue).Render(strings.Repeat("█", filled)) +
			st.Label.Render(strings.Repeat("░", barWidth-filled))
		lines = append(lines, fmt.Sprintf("%-*s %s %*s",
			labelWidth, truncate(r.Group, labelWidth), bar, valueWidth, transform.FormatValue(r.Value)))
	}
	return strings.Join(lines, "\n")
}

// heatGrid is the x by y matrix of summed cell values.
type heatGrid struct {
	xs, ys []string
	values map[[2]string]float64
	max    float64
}

func buildHeatGrid(cells []model.HeatCell) heatGrid {
	g := heatGrid{values: make(map[[2]string]float64)}
	seenX := make(map[string]bool)
	seenY := make(map[string]bool)
	for _, c := range cells {
		if !seenX[c.X] {
			seenX[c.X] = true
			g.xs = append(g.xs, c.X)
		}
		if !seenY[c.Y] {
			seenY[c.Y] = true
			g.ys = append(g.ys, c.Y)
		}
		k := [2]string{c.X, c.Y}
		g.values[k] += c.Value
		g.max = max(g.max, g.values[k])
	}
	return g
}

// renderHeatmap draws groups as columns and servers as rows, coloured on a
// five-step palette.
func renderHeatmap(cells []model.HeatCell, width, height int) string {
	st := styles()
	g := buildHeatGrid(cells)

	const labelWidth = 12
	const cellWidth = 3
	maxCols := max((width-labelWidth-1)/cellWidth, 1)
	maxRows := max(height-4, 1)
	xs := g.xs[:min(len(g.xs), maxCols)]
	ys := g.ys[:min(len(g.ys), maxRows)]

	var header strings.Builder
	header.WriteString(strings.Repeat(" ", labelWidth+1))
	for i := range xs {
		header.WriteString(fmt.Sprintf("%-*d", cellWidth, (i+1)%100))
	}
	lines := []string{st.Label.Render(header.String())}

	for _, y := range ys {
		var row strings.Builder
		row.WriteString(fmt.Sprintf("%-*s ", labelWidth, truncate(y, labelWidth)))
		for _, x := range xs {
			v := g.values[[2]string{x, y}]
			row.WriteString(lipgloss.NewStyle().Foreground(heatColor(v, g.max)).Render("██") + " ")
		}
		lines = append(lines, row.String())
	}

	keyParts := make([]string, len(xs))
	for i, x := range xs {
		keyParts[i] = fmt.Sprintf("%d=%s", i+1, truncate(x, 16))
	}
	lines = append(lines, st.Label.Width(width).Render(strings.Join(keyParts, " ")))

	var scale strings.Builder
	for _, c := range st.Theme.Heat {
		scale.WriteString(lipgloss.NewStyle().Foreground(c).Render("█"))
	}
	lines = append(lines, st.Label.Render("low ")+scale.String()+st.Label.Render(" high (max "+transform.FormatValue(g.max)+")"))

	return strings.Join(lines, "\n")
}
