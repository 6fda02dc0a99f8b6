package tui

import (
	"errors"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tinytelemetry/logdash/internal/model"
	"github.com/tinytelemetry/logdash/internal/settings"
)

// Settings form fields.
const (
	fieldInterval = iota
	fieldDefaultView
	fieldDarkMode
	settingsFieldCount
)

// SettingsPage edits the persisted preferences.
type SettingsPage struct {
	store *settings.Store

	interval    textinput.Model
	defaultView model.View
	focus       int
	dirty       bool
	inlineErr   string
}

// NewSettingsPage creates the settings page backed by store.
func NewSettingsPage(store *settings.Store) *SettingsPage {
	ti := textinput.New()
	ti.CharLimit = 3
	ti.Width = 5
	ti.Prompt = ""
	ti.Focus()

	p := &SettingsPage{store: store, interval: ti}
	p.syncForm(store.Get())
	return p
}

func (p *SettingsPage) ID() model.View { return model.ViewSettings }
func (p *SettingsPage) Init() tea.Cmd  { return nil }

// CapturesKey claims digits while the interval field is focused, so typing
// an interval does not switch views.
func (p *SettingsPage) CapturesKey(msg tea.KeyMsg) bool {
	return p.focus == fieldInterval && isDigits(msg)
}

// InlineError returns the current validation message, if any.
func (p *SettingsPage) InlineError() string { return p.inlineErr }

func (p *SettingsPage) syncForm(st settings.State) {
	p.interval.SetValue(strconv.Itoa(st.RefreshInterval))
	p.interval.CursorEnd()
	p.defaultView = st.DefaultView
	p.inlineErr = ""
	p.dirty = false
}

func settingsChanged(st settings.State) tea.Cmd {
	return func() tea.Msg { return SettingsChangedMsg{State: st} }
}

func (p *SettingsPage) Update(msg tea.Msg) (tea.Cmd, *PageNav) {
	switch msg := msg.(type) {
	case SettingsChangedMsg:
		if !p.dirty {
			p.syncForm(msg.State)
		}
		return nil, nil

	case tea.KeyMsg:
		return p.handleKey(msg), nil
	}
	return nil, nil
}

func (p *SettingsPage) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, keys.Save):
		return p.save()
	case key.Matches(msg, keys.ResetSettings):
		return p.reset()
	case key.Matches(msg, keys.Up):
		p.setFocus(p.focus - 1)
		return nil
	case key.Matches(msg, keys.Down):
		p.setFocus(p.focus + 1)
		return nil
	}

	switch p.focus {
	case fieldInterval:
		if isDigits(msg) || msg.Type == tea.KeyBackspace || msg.Type == tea.KeyDelete {
			var cmd tea.Cmd
			p.interval, cmd = p.interval.Update(msg)
			p.dirty = true
			p.validateInline()
			return cmd
		}
	case fieldDefaultView:
		switch {
		case key.Matches(msg, keys.Left):
			p.defaultView = model.Views[step(indexOf(model.Views, p.defaultView), -1, len(model.Views))]
			p.dirty = true
		case key.Matches(msg, keys.Right):
			p.defaultView = model.Views[step(indexOf(model.Views, p.defaultView), 1, len(model.Views))]
			p.dirty = true
		}
	case fieldDarkMode:
		if key.Matches(msg, keys.Toggle, keys.Enter, keys.Left, keys.Right) {
			st, err := p.store.ToggleDarkMode()
			if err != nil {
				return tea.Batch(settingsChanged(st), showToast(ToastError, "Failed to save settings"))
			}
			return settingsChanged(st)
		}
	}
	return nil
}

func isDigits(msg tea.KeyMsg) bool {
	if msg.Type != tea.KeyRunes || len(msg.Runes) == 0 {
		return false
	}
	for _, r := range msg.Runes {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (p *SettingsPage) setFocus(n int) {
	p.focus = step(n, 0, settingsFieldCount)
	if p.focus == fieldInterval {
		p.interval.Focus()
	} else {
		p.interval.Blur()
	}
}

// parseInterval reads the interval field, reporting a validation message.
func (p *SettingsPage) parseInterval() (int, string) {
	raw := strings.TrimSpace(p.interval.Value())
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, "Interval must be a number"
	}
	if err := settings.ValidateRefreshInterval(n); err != nil {
		var verr *settings.ValidationError
		if errors.As(err, &verr) {
			return 0, verr.Message
		}
		return 0, err.Error()
	}
	return n, ""
}

func (p *SettingsPage) validateInline() {
	_, p.inlineErr = p.parseInterval()
}

func (p *SettingsPage) save() tea.Cmd {
	n, msg := p.parseInterval()
	if msg != "" {
		p.inlineErr = msg
		return nil
	}

	view := p.defaultView
	st, err := p.store.Update(settings.Patch{RefreshInterval: &n, DefaultView: &view})
	var verr *settings.ValidationError
	switch {
	case errors.As(err, &verr):
		p.inlineErr = verr.Message
		return nil
	case err != nil:
		p.dirty = false
		return tea.Batch(settingsChanged(st), showToast(ToastError, "Failed to save settings"))
	}
	p.syncForm(st)
	return tea.Batch(settingsChanged(st), showToast(ToastSuccess, "Settings saved successfully"))
}

func (p *SettingsPage) reset() tea.Cmd {
	st, err := p.store.Reset()
	p.syncForm(st)
	if err != nil {
		return tea.Batch(settingsChanged(st), showToast(ToastError, "Failed to save settings"))
	}
	return tea.Batch(settingsChanged(st), showToast(ToastInfo, "Settings reset to default values"))
}

func (p *SettingsPage) View(width, height int) string {
	st := styles()
	current := p.store.Get()

	field := func(idx int, label, value, hint string) string {
		marker := "  "
		labelStyle := st.Label
		if idx == p.focus {
			marker = "> "
			labelStyle = st.Title
		}
		line := marker + labelStyle.Render(padRight(label, 22)) + value
		if hint != "" {
			line += "  " + st.Help.Render(hint)
		}
		return line
	}

	intervalBox := st.Section.Render(p.interval.View())
	if p.focus == fieldInterval {
		intervalBox = st.ActiveSection.Render(p.interval.View())
	}
	intervalLine := field(fieldInterval, "Refresh interval (s)", intervalBox, "5-300 seconds")

	lines := []string{
		st.Title.Render("Dashboard Settings"),
		"",
		intervalLine,
	}
	if p.inlineErr != "" {
		lines = append(lines, "  "+st.Error.Render(p.inlineErr))
	}

	dark := "○ off"
	if current.DarkMode {
		dark = "● on"
	}
	lines = append(lines,
		"",
		field(fieldDefaultView, "Default view", st.Value.Render("‹ "+p.defaultView.Title()+" ›"), "←/→ to change"),
		"",
		field(fieldDarkMode, "Dark mode", st.Value.Render(dark), "space to toggle, t anywhere"),
		"",
		st.Label.Render("s save   R reset to defaults   ↑/↓ move"),
	)
	if p.dirty {
		lines = append(lines, st.Help.Render("Unsaved changes"))
	}

	box := st.Section.Width(min(width-2, 80)).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
	return lipgloss.Place(width, height, lipgloss.Left, lipgloss.Top, box)
}
