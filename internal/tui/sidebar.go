package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/tinytelemetry/logdash/internal/model"
)

const sidebarWidth = 22

// sidebarHeaderRows is the number of rows above the first view entry,
// counting the top border.
const sidebarHeaderRows = 3

func (a *App) buildSidebarLines() []string {
	st := styles()
	lines := []string{st.Value.Render("Views"), ""}

	for i, v := range model.Views {
		label := fmt.Sprintf("  %d %s", i+1, v.Title())
		if a.router.Current() == v {
			label = lipgloss.NewStyle().Foreground(st.Theme.Blue).Bold(true).
				Render(fmt.Sprintf("> %d %s", i+1, v.Title()))
		}
		lines = append(lines, label)
	}

	lines = append(lines, "", st.Label.Render("? help  q quit"))
	return lines
}

// sidebarViewAtRow maps a mouse row to a view entry.
func (a *App) sidebarViewAtRow(y int) (model.View, bool) {
	idx := y - sidebarHeaderRows
	if idx < 0 || idx >= len(model.Views) {
		return "", false
	}
	return model.Views[idx], true
}

// renderSidebar renders view navigation in the left sidebar.
func (a *App) renderSidebar(height int) string {
	style := lipgloss.NewStyle().
		Width(sidebarWidth-2).
		Height(height).
		Border(lipgloss.NormalBorder()).
		BorderForeground(styles().Theme.Gray).
		Padding(0, 1)

	return style.Render(lipgloss.JoinVertical(lipgloss.Left, a.buildSidebarLines()...))
}
