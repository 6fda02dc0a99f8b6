package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Modal is a self-contained modal that owns its own Update/View lifecycle.
// Modals are managed via a stack on App; the topmost modal receives all
// input and renders full-screen.
type Modal interface {
	// ID returns a unique identifier used to deduplicate pushes.
	ID() string
	// Update processes a message. Return pop=true to close the modal.
	Update(msg tea.Msg) (pop bool, cmd tea.Cmd)
	// View renders the modal content for the given terminal dimensions.
	View(width, height int) string
}

// pushModalMsg asks the App to push a modal.
type pushModalMsg struct {
	Modal Modal
}

func pushModal(m Modal) tea.Cmd {
	return func() tea.Msg { return pushModalMsg{Modal: m} }
}

// ConfirmModal asks a yes/no question and runs OnConfirm on yes.
type ConfirmModal struct {
	id        string
	title     string
	question  string
	onConfirm tea.Cmd
}

// NewConfirmModal creates a confirmation dialog.
func NewConfirmModal(id, title, question string, onConfirm tea.Cmd) *ConfirmModal {
	return &ConfirmModal{id: id, title: title, question: question, onConfirm: onConfirm}
}

func (c *ConfirmModal) ID() string { return c.id }

func (c *ConfirmModal) Update(msg tea.Msg) (bool, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return false, nil
	}
	switch {
	case key.Matches(km, keys.Confirm):
		return true, c.onConfirm
	case key.Matches(km, keys.Cancel):
		return true, nil
	}
	return false, nil
}

func (c *ConfirmModal) View(width, height int) string {
	st := styles()
	body := lipgloss.JoinVertical(lipgloss.Left,
		st.Title.Render(c.title),
		"",
		c.question,
		"",
		st.Label.Render("y: Delete | n/ESC: Cancel"),
	)
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(st.Theme.Red).
		Padding(1, 2).
		Render(body)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

// HelpModal shows the key reference in a scrollable viewport.
type HelpModal struct {
	vp viewport.Model
}

// NewHelpModal creates the help modal.
func NewHelpModal() *HelpModal {
	return &HelpModal{vp: viewport.New(0, 0)}
}

func (h *HelpModal) ID() string { return "help" }

func (h *HelpModal) Update(msg tea.Msg) (bool, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		if key.Matches(km, keys.Escape, keys.Help, keys.Quit) {
			return true, nil
		}
	}
	var cmd tea.Cmd
	h.vp, cmd = h.vp.Update(msg)
	return false, cmd
}

func (h *HelpModal) View(width, height int) string {
	st := styles()

	modalWidth := width - 8   // 4 chars margin on each side
	modalHeight := height - 4 // 2 lines margin top and bottom
	contentWidth := modalWidth - 4
	contentHeight := modalHeight - 4

	h.vp.Width = contentWidth
	h.vp.Height = contentHeight
	h.vp.SetContent(helpContent())

	contentPane := lipgloss.NewStyle().
		Width(contentWidth).
		Height(contentHeight).
		Border(lipgloss.NormalBorder()).
		BorderForeground(st.Theme.Gray).
		Render(h.vp.View())

	header := st.Title.Width(contentWidth).Render("Help")
	status := st.Label.Render("up/down/Wheel: Scroll | PgUp/PgDn: Page | ?/ESC: Close")

	modal := lipgloss.JoinVertical(lipgloss.Left, header, contentPane, status)
	framed := lipgloss.NewStyle().
		Width(modalWidth).
		Height(modalHeight).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(st.Theme.Blue).
		Render(modal)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, framed)
}

func helpContent() string {
	sections := []struct {
		title    string
		bindings []key.Binding
	}{
		{"NAVIGATION", []key.Binding{keys.Dashboard, keys.Logs, keys.Analysis, keys.Settings, keys.NextView, keys.PrevView, keys.ToggleSidebar}},
		{"GENERAL", []key.Binding{keys.ToggleTheme, keys.Refresh, keys.Help, keys.Escape, keys.Quit, keys.ForceQuit}},
		{"LOGS", []key.Binding{keys.FocusFilter, keys.CycleType, keys.Enter, keys.ResetFilter, keys.Sort, keys.Delete, keys.PageUp, keys.PageDown}},
		{"ANALYSIS", []key.Binding{keys.Up, keys.Down, keys.Left, keys.Right, keys.Enter}},
		{"SETTINGS", []key.Binding{keys.Up, keys.Down, keys.Left, keys.Right, keys.Toggle, keys.Save, keys.ResetSettings}},
	}

	var b strings.Builder
	b.WriteString("logdash keyboard reference\n")
	for _, sec := range sections {
		b.WriteString("\n" + sec.title + ":\n")
		for _, kb := range sec.bindings {
			h := kb.Help()
			b.WriteString("  " + padRight(h.Key, 14) + " - " + h.Desc + "\n")
		}
	}
	return b.String()
}

func padRight(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}
