package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tinytelemetry/logdash/internal/model"
	"github.com/tinytelemetry/logdash/internal/nav"
	"github.com/tinytelemetry/logdash/internal/settings"
)

// SettingsChangedMsg tells every page that the settings changed, whether
// from the Settings page, the theme key or another process.
type SettingsChangedMsg struct {
	State settings.State
}

// loadingPage is implemented by pages that show a spinner on first load.
type loadingPage interface {
	Loading() bool
}

// Options configures the App.
type Options struct {
	Source             model.LogSource
	Settings           *settings.Store
	StartPath          string
	ReverseScrollWheel bool
}

// App is the top-level Bubble Tea model that routes between pages.
type App struct {
	pages     map[model.View]Page
	router    *nav.Router
	store     *settings.Store
	startPath string

	modals         []Modal
	toast          *toast
	toastSeq       int
	sidebarVisible bool
	refreshSeconds int

	// Commands produced by router hooks during the current Update.
	pending []tea.Cmd

	width  int
	height int
}

// NewApp creates the dashboard with its four pages.
func NewApp(opts Options) *App {
	store := opts.Settings
	if store == nil {
		store = settings.Open(nil)
	}
	st := store.Get()

	a := &App{
		pages:          make(map[model.View]Page, len(model.Views)),
		router:         nav.NewRouter(st.DefaultView),
		store:          store,
		startPath:      opts.StartPath,
		sidebarVisible: true,
	}
	for _, p := range []Page{
		NewDashboardPage(opts.Source),
		NewLogsPage(opts.Source, opts.ReverseScrollWheel),
		NewAnalysisPage(opts.Source),
		NewSettingsPage(store),
	} {
		a.pages[p.ID()] = p
	}

	a.router.OnLeave(func(v model.View) {
		if act, ok := a.pages[v].(Activatable); ok {
			act.Deactivate()
		}
	})
	a.router.OnEnter(func(v model.View) {
		if act, ok := a.pages[v].(Activatable); ok {
			a.pending = append(a.pending, act.Activate())
		}
	})

	// Pages are inactive here, so this only records the interval.
	a.applySettings(st)
	return a
}

// Current returns the active view.
func (a *App) Current() model.View { return a.router.Current() }

func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{}
	for _, v := range model.Views {
		cmds = append(cmds, a.pages[v].Init())
	}
	cmds = append(cmds, a.navigate(a.startPath))
	return tea.Batch(cmds...)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tea.KeyMsg:
		return a, a.handleKey(msg)

	case tea.MouseMsg:
		return a, a.handleMouse(msg)

	case pushModalMsg:
		a.pushModal(msg.Modal)
		return a, nil

	case toastMsg:
		a.toastSeq++
		a.toast = &toast{id: a.toastSeq, kind: msg.Kind, text: msg.Text}
		return a, expireToastCmd(a.toastSeq)

	case toastExpiredMsg:
		if a.toast != nil && a.toast.id == msg.ID {
			a.toast = nil
		}
		return a, nil

	case SettingsChangedMsg:
		return a, a.applySettings(msg.State)

	case SpinnerTickMsg:
		if lp, ok := a.activePage().(loadingPage); ok && lp.Loading() {
			return a, spinnerTickCmd()
		}
		return a, nil

	case pageMsg:
		p, ok := a.pages[msg.targetPage()]
		if !ok {
			return a, nil
		}
		cmd, navReq := p.Update(msg)
		return a, tea.Batch(cmd, a.follow(navReq))
	}

	p := a.activePage()
	if p == nil {
		return a, nil
	}
	cmd, navReq := p.Update(msg)
	return a, tea.Batch(cmd, a.follow(navReq))
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	if modal := a.topModal(); modal != nil {
		pop, cmd := modal.Update(msg)
		if pop {
			a.popModal()
		}
		return cmd
	}

	if key.Matches(msg, keys.ForceQuit) {
		return tea.Quit
	}

	p := a.activePage()
	capturing := false
	if kc, ok := p.(KeyCapturer); ok {
		capturing = kc.CapturesKey(msg)
	}

	if !capturing {
		switch {
		case key.Matches(msg, keys.Quit):
			return tea.Quit
		case key.Matches(msg, keys.Help):
			a.pushModal(NewHelpModal())
			return nil
		case key.Matches(msg, keys.ToggleTheme):
			return a.toggleTheme()
		case key.Matches(msg, keys.ToggleSidebar):
			a.sidebarVisible = !a.sidebarVisible
			return nil
		case key.Matches(msg, keys.Dashboard):
			return a.navigate(nav.PathOf(model.ViewDashboard))
		case key.Matches(msg, keys.Logs):
			return a.navigate(nav.PathOf(model.ViewLogs))
		case key.Matches(msg, keys.Analysis):
			return a.navigate(nav.PathOf(model.ViewAnalysis))
		case key.Matches(msg, keys.Settings):
			return a.navigate(nav.PathOf(model.ViewSettings))
		case key.Matches(msg, keys.NextView):
			a.router.Next()
			return a.flushPending()
		case key.Matches(msg, keys.PrevView):
			a.router.Prev()
			return a.flushPending()
		}
	}

	if p == nil {
		return nil
	}
	cmd, navReq := p.Update(msg)
	return tea.Batch(cmd, a.follow(navReq))
}

func (a *App) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if modal := a.topModal(); modal != nil {
		pop, cmd := modal.Update(msg)
		if pop {
			a.popModal()
		}
		return cmd
	}

	if a.sidebarVisible && msg.X < sidebarWidth {
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			if v, ok := a.sidebarViewAtRow(msg.Y); ok {
				return a.navigate(nav.PathOf(v))
			}
		}
		return nil
	}

	p := a.activePage()
	if p == nil {
		return nil
	}
	cmd, navReq := p.Update(msg)
	return tea.Batch(cmd, a.follow(navReq))
}

// navigate resolves path and activates the resulting page.
func (a *App) navigate(path string) tea.Cmd {
	a.router.Go(path)
	return a.flushPending()
}

func (a *App) follow(req *PageNav) tea.Cmd {
	if req == nil {
		return nil
	}
	return a.navigate(req.Path)
}

func (a *App) flushPending() tea.Cmd {
	cmds := a.pending
	a.pending = nil
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(append(cmds, spinnerTickCmd())...)
}

func (a *App) toggleTheme() tea.Cmd {
	st, err := a.store.ToggleDarkMode()
	cmd := a.applySettings(st)
	if err != nil {
		return tea.Batch(cmd, showToast(ToastError, "Failed to save settings"))
	}
	return cmd
}

// applySettings swaps the theme, updates the redirect target and lets every
// page pick up the new refresh interval.
func (a *App) applySettings(st settings.State) tea.Cmd {
	applyTheme(st.DarkMode)
	a.router.SetDefault(st.DefaultView)
	a.refreshSeconds = st.RefreshInterval

	var cmds []tea.Cmd
	for _, v := range model.Views {
		cmd, _ := a.pages[v].Update(SettingsChangedMsg{State: st})
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

func (a *App) activePage() Page {
	return a.pages[a.router.Current()]
}

func (a *App) topModal() Modal {
	if len(a.modals) == 0 {
		return nil
	}
	return a.modals[len(a.modals)-1]
}

func (a *App) pushModal(m Modal) {
	for _, existing := range a.modals {
		if existing.ID() == m.ID() {
			return
		}
	}
	a.modals = append(a.modals, m)
}

func (a *App) popModal() {
	if len(a.modals) > 0 {
		a.modals = a.modals[:len(a.modals)-1]
	}
}

// contentWidth returns the width available for main content, accounting for sidebar.
func (a *App) contentWidth() int {
	if a.sidebarVisible {
		w := a.width - sidebarWidth
		if w < 40 {
			w = 40
		}
		return w
	}
	return a.width
}

func (a *App) View() string {
	if a.width <= 0 || a.height <= 0 {
		return "Initializing dashboard..."
	}
	if modal := a.topModal(); modal != nil {
		return modal.View(a.width, a.height)
	}
	if a.height < 12 || a.width < 60 {
		return "Terminal too small. Resize to at least 60x12."
	}

	width := a.contentWidth()
	body := "No active page"
	if p := a.activePage(); p != nil {
		body = p.View(width, a.height-2)
	}
	content := lipgloss.JoinVertical(lipgloss.Left,
		a.renderHeader(width),
		body,
		a.renderStatusLine(width),
	)

	if a.sidebarVisible {
		content = lipgloss.JoinHorizontal(lipgloss.Top, a.renderSidebar(a.height-2), content)
	}
	return lipgloss.NewStyle().MaxWidth(a.width).MaxHeight(a.height).Render(content)
}

func (a *App) renderHeader(width int) string {
	st := styles()
	title := st.Title.Render("logdash") + st.Label.Render(" / ") + st.Value.Render(a.router.Current().Title())
	right := st.Label.Render(fmt.Sprintf("refresh %ds", a.refreshSeconds))
	gap := width - lipgloss.Width(title) - lipgloss.Width(right)
	if gap < 1 {
		return title
	}
	return title + strings.Repeat(" ", gap) + right
}

// renderStatusLine shows the current toast, or key hints when there is none.
func (a *App) renderStatusLine(width int) string {
	st := styles()
	left := a.toast.render()
	if left == "" {
		hints := []string{"1-4 views", "tab next", "t theme", "? help", "q quit"}
		if width < 80 {
			hints = hints[:3]
		}
		left = " " + strings.Join(hints, " | ")
	}
	return st.StatusLine.Width(width).Render(left)
}
