package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// toastDuration is how long a notification stays on screen.
const toastDuration = 3 * time.Second

// ToastKind selects the toast colour.
type ToastKind int

const (
	ToastSuccess ToastKind = iota
	ToastInfo
	ToastError
)

// toastMsg asks the App to show a notification.
type toastMsg struct {
	Kind ToastKind
	Text string
}

// toastExpiredMsg clears the toast with the matching id.
type toastExpiredMsg struct {
	ID int
}

type toast struct {
	id   int
	kind ToastKind
	text string
}

func showToast(kind ToastKind, text string) tea.Cmd {
	return func() tea.Msg { return toastMsg{Kind: kind, Text: text} }
}

func expireToastCmd(id int) tea.Cmd {
	return tea.Tick(toastDuration, func(time.Time) tea.Msg {
		return toastExpiredMsg{ID: id}
	})
}

func (t *toast) render() string {
	if t == nil {
		return ""
	}
	th := styles().Theme
	color := th.Green
	switch t.kind {
	case ToastInfo:
		color = th.Blue
	case ToastError:
		color = th.Red
	}
	return lipgloss.NewStyle().
		Background(color).
		Foreground(lipgloss.Color("#FFFFFF")).
		Bold(true).
		Padding(0, 1).
		Render(t.text)
}
