package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all dashboard key bindings with built-in help text.
type KeyMap struct {
	// Global
	Quit          key.Binding
	ForceQuit     key.Binding
	Help          key.Binding
	Escape        key.Binding
	ToggleSidebar key.Binding
	ToggleTheme   key.Binding

	// Navigation
	NextView  key.Binding
	PrevView  key.Binding
	Dashboard key.Binding
	Logs      key.Binding
	Analysis  key.Binding
	Settings  key.Binding
	Up        key.Binding
	Down      key.Binding
	Left      key.Binding
	Right     key.Binding
	PageUp    key.Binding
	PageDown  key.Binding
	Enter     key.Binding
	Refresh   key.Binding

	// Logs
	FocusFilter key.Binding
	CycleType   key.Binding
	ResetFilter key.Binding
	Delete      key.Binding
	Sort        key.Binding

	// Confirm modal
	Confirm key.Binding
	Cancel  key.Binding

	// Settings
	Save          key.Binding
	ResetSettings key.Binding
	Toggle        key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "force quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "clear/close"),
		),
		ToggleSidebar: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "toggle sidebar"),
		),
		ToggleTheme: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "toggle dark mode"),
		),

		NextView: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next view"),
		),
		PrevView: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "prev view"),
		),
		Dashboard: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "dashboard"),
		),
		Logs: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "logs"),
		),
		Analysis: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "analysis"),
		),
		Settings: key.NewBinding(
			key.WithKeys("4"),
			key.WithHelp("4", "settings"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "previous option"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next option"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "previous page"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "next page"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "apply"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "refetch now"),
		),

		FocusFilter: key.NewBinding(
			key.WithKeys("/", "f"),
			key.WithHelp("/", "filter by server"),
		),
		CycleType: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "cycle type filter"),
		),
		ResetFilter: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reset filters"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete log"),
		),
		Sort: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "sort by count"),
		),

		Confirm: key.NewBinding(
			key.WithKeys("y", "Y"),
			key.WithHelp("y", "confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("n", "N", "esc"),
			key.WithHelp("n/esc", "cancel"),
		),

		Save: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "save settings"),
		),
		ResetSettings: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "reset to defaults"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "toggle"),
		),
	}
}

// keys is the package-wide key map.
var keys = DefaultKeyMap()
