package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/tinytelemetry/logdash/internal/model"
)

// Page represents a top-level screen in the TUI (dashboard, logs, etc.).
type Page interface {
	ID() model.View
	Init() tea.Cmd
	Update(msg tea.Msg) (tea.Cmd, *PageNav)
	View(width, height int) string
}

// Activatable pages start and stop their refresh timer when the router
// enters and leaves them.
type Activatable interface {
	Activate() tea.Cmd
	Deactivate()
}

// KeyCapturer is implemented by pages with text fields. A captured key goes
// straight to the page instead of being treated as a global shortcut.
type KeyCapturer interface {
	CapturesKey(msg tea.KeyMsg) bool
}

// PageNav is returned from Update to request a page switch.
type PageNav struct {
	Path string
}

// pageMsg is a message addressed to one page regardless of which is active.
type pageMsg interface {
	targetPage() model.View
}
