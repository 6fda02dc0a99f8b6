package model

import (
	"net/url"
	"time"
)

// LogRecord is a single log entry as served by the log API.
// Records are immutable once fetched; a refetch replaces the whole set.
type LogRecord struct {
	ID        string     `json:"id"`
	ServerID  string     `json:"serverId"`
	Type      string     `json:"type"`
	Value     string     `json:"value"`
	Count     int        `json:"count"`
	Timestamp *time.Time `json:"timestamp"`
}

// LogQueryParams scopes a list request. Empty fields are omitted.
type LogQueryParams struct {
	ServerID string `json:"serverId,omitempty"`
	Type     string `json:"type,omitempty"`
	From     string `json:"from,omitempty"`
	To       string `json:"to,omitempty"`
}

// Values encodes the params as URL query values.
func (p LogQueryParams) Values() url.Values {
	v := url.Values{}
	if p.ServerID != "" {
		v.Set("serverId", p.ServerID)
	}
	if p.Type != "" {
		v.Set("type", p.Type)
	}
	if p.From != "" {
		v.Set("from", p.From)
	}
	if p.To != "" {
		v.Set("to", p.To)
	}
	return v
}

// Key returns a canonical encoding of the params, suitable as a cache key.
func (p LogQueryParams) Key() string {
	// url.Values.Encode sorts by key.
	return p.Values().Encode()
}

// TimeBucket is the log count for one calendar date (YYYY-MM-DD).
type TimeBucket struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// LogSummary holds the aggregates shown on the dashboard.
type LogSummary struct {
	TotalLogs        int            `json:"totalLogs"`
	ServerCount      int            `json:"serverCount"`
	LogTypes         map[string]int `json:"logTypes"`
	TimeDistribution []TimeBucket   `json:"timeDistribution"`
}

// Empty reports whether the summary was built from no records.
func (s LogSummary) Empty() bool {
	return s.TotalLogs == 0
}

// GroupRow is one aggregated bucket. Value holds the sum (numeric field)
// or the occurrence count (non-numeric field).
type GroupRow struct {
	Group string  `json:"group"`
	Field Field   `json:"field"`
	Value float64 `json:"value"`
}

// HeatCell is one heatmap point; one per input record.
type HeatCell struct {
	X     string  `json:"x"`
	Y     string  `json:"y"`
	Value float64 `json:"value"`
}
