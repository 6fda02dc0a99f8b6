package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tinytelemetry/logdash/internal/model"
	"github.com/tinytelemetry/logdash/internal/transform"
)

const (
	logsPageSize    = 7
	timestampLayout = "2006-01-02 15:04:05"
)

// typeOptions are the choices of the type selector; "" means any.
var typeOptions = []string{"", "ip", "endpoint"}

// logDeletedMsg reports the outcome of a confirmed delete. Epoch is the page
// activation that issued it.
type logDeletedMsg struct {
	ID    string
	Epoch int
	Err   error
}

func (logDeletedMsg) targetPage() model.View { return model.ViewLogs }

// LogsPage lists log records with filtering, sorting and deletion.
type LogsPage struct {
	poller

	input        textinput.Model
	pendingType  int
	filter       transform.LogFilter
	order        transform.SortOrder
	page         int
	reverseWheel bool

	rows  []model.LogRecord
	table table.Model
}

// NewLogsPage creates the logs page. reverseWheel inverts mouse wheel scrolling.
func NewLogsPage(src model.LogSource, reverseWheel bool) *LogsPage {
	ti := textinput.New()
	ti.Placeholder = "server id"
	ti.CharLimit = 64
	ti.Width = 20
	ti.Prompt = ""

	tbl := table.New(
		table.WithColumns(logColumns(100)),
		table.WithFocused(true),
		table.WithHeight(logsPageSize+1),
	)

	return &LogsPage{
		poller:       newPoller(model.ViewLogs, src),
		input:        ti,
		reverseWheel: reverseWheel,
		table:        tbl,
	}
}

func logColumns(width int) []table.Column {
	fixed := 10 + 14 + 10 + 7 + 19
	valueWidth := max(width-fixed-12, 10)
	return []table.Column{
		{Title: "ID", Width: 10},
		{Title: "Server ID", Width: 14},
		{Title: "Type", Width: 10},
		{Title: "Count", Width: 7},
		{Title: "Value", Width: valueWidth},
		{Title: "Timestamp", Width: 19},
	}
}

func (p *LogsPage) ID() model.View              { return model.ViewLogs }
func (p *LogsPage) Init() tea.Cmd               { return nil }
func (p *LogsPage) Activate() tea.Cmd           { return p.activate() }
func (p *LogsPage) Deactivate()                 { p.deactivate(); p.input.Blur() }
func (p *LogsPage) Loading() bool               { return p.loading() }
func (p *LogsPage) CapturesKey(tea.KeyMsg) bool { return p.input.Focused() }
func (p *LogsPage) Rows() []model.LogRecord     { return p.rows }

func (p *LogsPage) Update(msg tea.Msg) (tea.Cmd, *PageNav) {
	if cmd, handled, updated := p.handle(msg); handled {
		if updated {
			p.rebuild()
		}
		return cmd, nil
	}

	switch msg := msg.(type) {
	case SettingsChangedMsg:
		return p.setInterval(msg.State.RefreshInterval), nil

	case logDeletedMsg:
		if !p.active || msg.Epoch != p.epoch {
			return nil, nil
		}
		if msg.Err != nil {
			return showToast(ToastError, "Failed to delete log"), nil
		}
		return tea.Batch(showToast(ToastSuccess, "Log deleted successfully"), p.refetch()), nil

	case tea.MouseMsg:
		return p.handleMouse(msg), nil

	case tea.KeyMsg:
		if p.input.Focused() {
			return p.handleInputKey(msg), nil
		}
		return p.handleKey(msg), nil
	}
	return nil, nil
}

func (p *LogsPage) handleInputKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, keys.Enter):
		p.input.Blur()
		p.applyFilter()
		return nil
	case key.Matches(msg, keys.Escape):
		p.input.Blur()
		return nil
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return cmd
}

func (p *LogsPage) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, keys.FocusFilter):
		return p.input.Focus()
	case key.Matches(msg, keys.CycleType):
		p.pendingType = (p.pendingType + 1) % len(typeOptions)
	case key.Matches(msg, keys.Enter):
		p.applyFilter()
	case key.Matches(msg, keys.ResetFilter):
		p.input.SetValue("")
		p.pendingType = 0
		p.filter = transform.LogFilter{}
		p.page = 0
		p.rebuild()
	case key.Matches(msg, keys.Sort):
		p.order = p.order.Next()
		p.rebuild()
	case key.Matches(msg, keys.PageDown):
		p.setPage(p.page + 1)
	case key.Matches(msg, keys.PageUp):
		p.setPage(p.page - 1)
	case key.Matches(msg, keys.Refresh):
		return p.refetch()
	case key.Matches(msg, keys.Delete):
		return p.confirmDelete()
	case key.Matches(msg, keys.Up, keys.Down):
		var cmd tea.Cmd
		p.table, cmd = p.table.Update(msg)
		return cmd
	}
	return nil
}

func (p *LogsPage) handleMouse(msg tea.MouseMsg) tea.Cmd {
	up := msg.Button == tea.MouseButtonWheelUp
	down := msg.Button == tea.MouseButtonWheelDown
	if !up && !down {
		return nil
	}
	if p.reverseWheel {
		up, down = down, up
	}
	if up {
		p.table.MoveUp(1)
	} else {
		p.table.MoveDown(1)
	}
	return nil
}

func (p *LogsPage) applyFilter() {
	p.filter = transform.LogFilter{
		ServerID: strings.TrimSpace(p.input.Value()),
		Type:     typeOptions[p.pendingType],
	}
	p.page = 0
	p.rebuild()
}

// Selected returns the record under the cursor.
func (p *LogsPage) Selected() (model.LogRecord, bool) {
	idx := p.page*logsPageSize + p.table.Cursor()
	if idx < 0 || idx >= len(p.rows) {
		return model.LogRecord{}, false
	}
	return p.rows[idx], true
}

func (p *LogsPage) confirmDelete() tea.Cmd {
	rec, ok := p.Selected()
	if !ok {
		return nil
	}
	return pushModal(NewConfirmModal(
		"confirm-delete",
		"Delete log",
		"Are you sure you want to delete this log?",
		p.deleteCmd(rec.ID),
	))
}

func (p *LogsPage) deleteCmd(id string) tea.Cmd {
	src, epoch := p.src, p.epoch
	return func() tea.Msg {
		if src == nil {
			return logDeletedMsg{ID: id, Epoch: epoch, Err: fmt.Errorf("no log source")}
		}
		return logDeletedMsg{ID: id, Epoch: epoch, Err: src.DeleteLog(context.Background(), id)}
	}
}

func (p *LogsPage) pageCount() int {
	return max((len(p.rows)+logsPageSize-1)/logsPageSize, 1)
}

func (p *LogsPage) setPage(n int) {
	n = min(max(n, 0), p.pageCount()-1)
	if n != p.page {
		p.page = n
		p.table.SetCursor(0)
	}
	p.syncTable()
}

// rebuild reapplies filter and sort to the fetched set.
func (p *LogsPage) rebuild() {
	p.rows = transform.SortByCount(transform.FilterLogs(p.logs, p.filter), p.order)
	p.setPage(p.page)
}

func (p *LogsPage) syncTable() {
	start := p.page * logsPageSize
	end := min(start+logsPageSize, len(p.rows))
	rows := make([]table.Row, 0, logsPageSize)
	for i := start; i < end; i++ {
		rows = append(rows, logRow(p.rows[i]))
	}
	p.table.SetRows(rows)
	if p.table.Cursor() >= len(rows) {
		p.table.SetCursor(max(len(rows)-1, 0))
	}
}

func logRow(rec model.LogRecord) table.Row {
	ts := "-"
	if rec.Timestamp != nil {
		ts = rec.Timestamp.Format(timestampLayout)
	}
	return table.Row{
		rec.ID,
		rec.ServerID,
		strings.ToUpper(rec.Type),
		fmt.Sprintf("%d", rec.Count),
		rec.Value,
		ts,
	}
}

func (p *LogsPage) View(width, height int) string {
	st := styles()
	form := p.renderFilterForm()

	var body string
	switch {
	case p.loading():
		body = renderLoadingPlaceholder(width, height-lipgloss.Height(form))
	case !p.loaded && p.err != nil:
		body = renderErrorPanel("Failed to load logs", p.err, width, height-lipgloss.Height(form))
	default:
		p.table.SetColumns(logColumns(width))
		p.table.SetWidth(width - 2)

		info := fmt.Sprintf("%d records available", len(p.rows))
		if p.order != transform.SortNone {
			info += " | sorted by count " + sortLabel(p.order)
		}
		info += fmt.Sprintf(" | page %d of %d", p.page+1, p.pageCount())

		parts := []string{st.Label.Render(info)}
		if len(p.rows) == 0 {
			parts = append(parts, st.Help.Render("No data available"))
		} else {
			parts = append(parts, p.table.View(), p.renderSelected())
		}
		if p.err != nil {
			parts = append(parts, st.Error.Render("Refresh failed: "+p.err.Error()))
		}
		body = lipgloss.JoinVertical(lipgloss.Left, parts...)
	}

	return lipgloss.JoinVertical(lipgloss.Left, form, body)
}

func (p *LogsPage) renderFilterForm() string {
	st := styles()
	inputStyle := st.Section
	if p.input.Focused() {
		inputStyle = st.ActiveSection
	}

	typeLabel := "(any)"
	if t := typeOptions[p.pendingType]; t != "" {
		typeLabel = strings.ToUpper(t)
	}

	row := lipgloss.JoinHorizontal(lipgloss.Center,
		st.Label.Render("Server "),
		inputStyle.Render(p.input.View()),
		st.Label.Render("  Type "),
		lipgloss.NewStyle().Foreground(typeTagColor(typeOptions[p.pendingType])).Bold(true).Render("‹ "+typeLabel+" ›"),
		st.Label.Render("   / edit  c type  enter apply  r reset  o sort  d delete"),
	)
	return row
}

func (p *LogsPage) renderSelected() string {
	rec, ok := p.Selected()
	if !ok {
		return ""
	}
	tag := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(typeTagColor(rec.Type)).
		Padding(0, 1).
		Render(strings.ToUpper(rec.Type))
	return tag + " " + styles().Value.Render(rec.Value) + styles().Label.Render(" on "+rec.ServerID)
}

func sortLabel(o transform.SortOrder) string {
	if o == transform.SortAscending {
		return "(asc)"
	}
	return "(desc)"
}
