package transform

import (
	"sort"
	"strings"

	"github.com/tinytelemetry/logdash/internal/model"
)

// LogFilter is the client-side filter of the Logs view. Empty fields match
// everything.
type LogFilter struct {
	ServerID string // case-insensitive substring
	Type     string // case-insensitive exact match
}

// Active reports whether any criterion is set.
func (f LogFilter) Active() bool {
	return f.ServerID != "" || f.Type != ""
}

// FilterLogs returns the records matching f, preserving input order.
func FilterLogs(logs []model.LogRecord, f LogFilter) []model.LogRecord {
	out := make([]model.LogRecord, 0, len(logs))
	server := strings.ToLower(f.ServerID)
	for _, rec := range logs {
		if server != "" && !strings.Contains(strings.ToLower(rec.ServerID), server) {
			continue
		}
		if f.Type != "" && !strings.EqualFold(rec.Type, f.Type) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// SortOrder is the count ordering of the Logs table.
type SortOrder int

const (
	SortNone SortOrder = iota
	SortAscending
	SortDescending
)

// Next cycles none → ascending → descending → none.
func (o SortOrder) Next() SortOrder {
	return (o + 1) % 3
}

// SortByCount returns a copy of logs ordered by count. Equal counts keep their
// input order.
func SortByCount(logs []model.LogRecord, order SortOrder) []model.LogRecord {
	out := append([]model.LogRecord(nil), logs...)
	switch order {
	case SortAscending:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Count < out[j].Count })
	case SortDescending:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	}
	return out
}

// TopGroups keeps the n largest rows and returns them in their original
// order. n <= 0 returns all rows.
func TopGroups(rows []model.GroupRow, n int) []model.GroupRow {
	if n <= 0 || len(rows) <= n {
		return append([]model.GroupRow(nil), rows...)
	}

	idx := make([]int, len(rows))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return rows[idx[a]].Value > rows[idx[b]].Value })
	keep := idx[:n]
	sort.Ints(keep)

	out := make([]model.GroupRow, 0, n)
	for _, i := range keep {
		out = append(out, rows[i])
	}
	return out
}
