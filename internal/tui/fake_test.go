package tui

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/tinytelemetry/logdash/internal/model"
	"github.com/tinytelemetry/logdash/internal/settings"
)

// fakeSource is an in-memory model.LogSource.
type fakeSource struct {
	mu        sync.Mutex
	logs      []model.LogRecord
	fetches   int
	refetches int
	deleted   []string
	deleteErr error
}

func (f *fakeSource) FetchLogs(context.Context, model.LogQueryParams) ([]model.LogRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	return append([]model.LogRecord(nil), f.logs...), nil
}

func (f *fakeSource) Refetch(context.Context, model.LogQueryParams) ([]model.LogRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refetches++
	return append([]model.LogRecord(nil), f.logs...), nil
}

func (f *fakeSource) DeleteLog(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for i, rec := range f.logs {
		if rec.ID == id {
			f.logs = append(f.logs[:i], f.logs[i+1:]...)
			f.deleted = append(f.deleted, id)
			return nil
		}
	}
	return errors.New("not found")
}

func testLogs(n int) []model.LogRecord {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	out := make([]model.LogRecord, 0, n)
	for i := 0; i < n; i++ {
		ts := base.Add(time.Duration(i) * 24 * time.Hour)
		typ := "ip"
		if i%2 == 1 {
			typ = "endpoint"
		}
		out = append(out, model.LogRecord{
			ID:        fmt.Sprintf("id-%02d", i),
			ServerID:  fmt.Sprintf("web-%d", i%3+1),
			Type:      typ,
			Value:     fmt.Sprintf("value-%d", i),
			Count:     n - i,
			Timestamp: &ts,
		})
	}
	return out
}

func newTestStore(t *testing.T, st settings.State) *settings.Store {
	t.Helper()
	data, err := settings.Encode(st)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	return settings.Open(&settings.MemoryStorage{Data: data})
}

func runeKey(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typeText(t *testing.T, update func(tea.Msg), s string) {
	t.Helper()
	for _, r := range s {
		update(runeKey(string(r)))
	}
}

// collectMsgs runs cmd and flattens batches. It must only be used on
// commands that do not contain timers.
func collectMsgs(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collectMsgs(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

func findToast(msgs []tea.Msg) (toastMsg, bool) {
	for _, m := range msgs {
		if tm, ok := m.(toastMsg); ok {
			return tm, true
		}
	}
	return toastMsg{}, false
}

// loadPage activates p and delivers logs as the result of that activation.
func loadPage(p interface {
	Page
	Activatable
}, pl *poller, logs []model.LogRecord) {
	p.Activate()
	p.Update(logsLoadedMsg{Page: p.ID(), Epoch: pl.epoch, Logs: logs, At: time.Now()})
}
