package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/tinytelemetry/logdash/internal/model"
	"github.com/tinytelemetry/logdash/internal/settings"
)

// refreshTickMsg fires a page's refresh timer. Seq identifies the timer
// generation; a tick with an old Seq belongs to a cancelled timer.
type refreshTickMsg struct {
	Page model.View
	Seq  int
}

func (m refreshTickMsg) targetPage() model.View { return m.Page }

// logsLoadedMsg carries a fetch result. Epoch is the activation it was
// issued in; results from an earlier activation are dropped.
type logsLoadedMsg struct {
	Page  model.View
	Epoch int
	Logs  []model.LogRecord
	Err   error
	At    time.Time
}

func (m logsLoadedMsg) targetPage() model.View { return m.Page }

// poller owns the data and refresh timer of one page.
type poller struct {
	page     model.View
	src      model.LogSource
	params   model.LogQueryParams
	interval time.Duration

	active   bool
	seq      int
	epoch    int
	inFlight bool

	loaded      bool
	logs        []model.LogRecord
	err         error
	lastUpdated time.Time
}

func newPoller(page model.View, src model.LogSource) poller {
	return poller{
		page:     page,
		src:      src,
		interval: time.Duration(settings.Defaults().RefreshInterval) * time.Second,
	}
}

// activate starts a fresh timer and loads data, from the cache when possible.
func (p *poller) activate() tea.Cmd {
	p.active = true
	p.seq++
	p.epoch++
	p.inFlight = true
	return tea.Batch(p.fetchCmd(false), p.tickCmd())
}

// deactivate cancels the pending timer; in-flight results will be dropped.
func (p *poller) deactivate() {
	p.active = false
	p.seq++
	p.epoch++
	p.inFlight = false
}

// setInterval reschedules the timer; it never adds a second one.
func (p *poller) setInterval(seconds int) tea.Cmd {
	d := time.Duration(seconds) * time.Second
	if d <= 0 || d == p.interval {
		return nil
	}
	p.interval = d
	if !p.active {
		return nil
	}
	p.seq++
	return p.tickCmd()
}

// refetch forces a network fetch, for example after a mutation.
func (p *poller) refetch() tea.Cmd {
	if !p.active {
		return nil
	}
	p.inFlight = true
	return p.fetchCmd(true)
}

func (p *poller) loading() bool {
	return !p.loaded && p.inFlight
}

// handle processes timer and data messages. It reports whether msg belonged
// to the poller and whether the data changed.
func (p *poller) handle(msg tea.Msg) (cmd tea.Cmd, handled, updated bool) {
	switch msg := msg.(type) {
	case refreshTickMsg:
		if msg.Page != p.page {
			return nil, false, false
		}
		if !p.active || msg.Seq != p.seq {
			return nil, true, false
		}
		next := p.tickCmd()
		if p.inFlight {
			return next, true, false
		}
		p.inFlight = true
		return tea.Batch(p.fetchCmd(true), next), true, false

	case logsLoadedMsg:
		if msg.Page != p.page {
			return nil, false, false
		}
		if !p.active || msg.Epoch != p.epoch {
			return nil, true, false
		}
		p.inFlight = false
		if msg.Err != nil {
			// Keep showing the last good data.
			p.err = msg.Err
			return nil, true, false
		}
		p.err = nil
		p.loaded = true
		p.logs = msg.Logs
		p.lastUpdated = msg.At
		return nil, true, true
	}
	return nil, false, false
}

func (p *poller) tickCmd() tea.Cmd {
	page, seq := p.page, p.seq
	return tea.Tick(p.interval, func(time.Time) tea.Msg {
		return refreshTickMsg{Page: page, Seq: seq}
	})
}

func (p *poller) fetchCmd(force bool) tea.Cmd {
	src, params, page, epoch := p.src, p.params, p.page, p.epoch
	return func() tea.Msg {
		if src == nil {
			return logsLoadedMsg{Page: page, Epoch: epoch, Logs: []model.LogRecord{}, At: time.Now()}
		}
		ctx := context.Background()
		var (
			logs []model.LogRecord
			err  error
		)
		if force {
			logs, err = src.Refetch(ctx, params)
		} else {
			logs, err = src.FetchLogs(ctx, params)
		}
		return logsLoadedMsg{Page: page, Epoch: epoch, Logs: logs, Err: err, At: time.Now()}
	}
}
