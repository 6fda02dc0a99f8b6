package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// renderLoadingPlaceholder renders an animated loading indicator.
// The frame is selected based on the current time so it animates on re-render.
func renderLoadingPlaceholder(width, height int) string {
	frame := spinnerFrames[time.Now().UnixMilli()/120%int64(len(spinnerFrames))]
	text := styles().Help.Render(frame + " Loading...")
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, text)
}

// renderEmptyState renders a centered "no data" message.
func renderEmptyState(text string, width, height int) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, styles().Help.Render(text))
}

// renderErrorPanel renders a failed first load.
func renderErrorPanel(title string, err error, width, height int) string {
	st := styles()
	block := lipgloss.JoinVertical(lipgloss.Center,
		st.Error.Bold(true).Render(title),
		st.Error.Render(err.Error()),
		st.Label.Render("Retrying on the next refresh. ctrl+r to retry now."),
	)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, block)
}

// SpinnerTickMsg triggers a re-render for loading spinners.
type SpinnerTickMsg struct{}

func spinnerTickCmd() tea.Cmd {
	return tea.Tick(120*time.Millisecond, func(_ time.Time) tea.Msg {
		return SpinnerTickMsg{}
	})
}
