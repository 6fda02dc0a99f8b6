// Package transform reshapes raw log records into the series and aggregates
// drawn by the dashboard. Every function is pure: same input, same output,
// and the input slice is never modified.
package transform

import (
	"sort"
	"strconv"
	"time"

	"github.com/tinytelemetry/logdash/internal/model"
)

const dateLayout = "2006-01-02"

// Summarize computes the dashboard aggregates for a record set.
// Records without a timestamp count toward the totals and type counts but not
// toward the time distribution. Records with an empty type are left out of the
// type counts.
func Summarize(logs []model.LogRecord) model.LogSummary {
	summary := model.LogSummary{
		TotalLogs:        len(logs),
		LogTypes:         map[string]int{},
		TimeDistribution: []model.TimeBucket{},
	}
	if len(logs) == 0 {
		return summary
	}

	servers := make(map[string]struct{}, len(logs))
	days := make(map[string]int)
	for _, rec := range logs {
		servers[rec.ServerID] = struct{}{}
		if rec.Type != "" {
			summary.LogTypes[rec.Type]++
		}
		if rec.Timestamp != nil {
			days[rec.Timestamp.UTC().Format(dateLayout)]++
		}
	}
	summary.ServerCount = len(servers)

	for date, count := range days {
		summary.TimeDistribution = append(summary.TimeDistribution, model.TimeBucket{Date: date, Count: count})
	}
	sort.Slice(summary.TimeDistribution, func(i, j int) bool {
		return summary.TimeDistribution[i].Date < summary.TimeDistribution[j].Date
	})

	return summary
}

// GroupAndAggregate buckets records by groupBy and aggregates field within
// each bucket: numeric fields are summed, others are counted. Rows come back
// in first-seen order of their group.
func GroupAndAggregate(logs []model.LogRecord, field model.Field, groupBy model.GroupBy) []model.GroupRow {
	rows := []model.GroupRow{}
	index := make(map[string]int)

	for _, rec := range logs {
		key := GroupKey(rec, groupBy)
		i, ok := index[key]
		if !ok {
			i = len(rows)
			index[key] = i
			rows = append(rows, model.GroupRow{Group: key, Field: field})
		}
		rows[i].Value += fieldValue(rec, field)
	}

	return rows
}

// ToHeatmapSeries emits one cell per record, in input order.
func ToHeatmapSeries(logs []model.LogRecord, field model.Field, groupBy model.GroupBy) []model.HeatCell {
	cells := make([]model.HeatCell, 0, len(logs))
	for _, rec := range logs {
		cells = append(cells, model.HeatCell{
			X:     GroupKey(rec, groupBy),
			Y:     rec.ServerID,
			Value: fieldValue(rec, field),
		})
	}
	return cells
}

// GroupKey returns the string form of a record's group-by attribute, or
// model.UnknownGroup when the attribute is empty.
func GroupKey(rec model.LogRecord, groupBy model.GroupBy) string {
	var key string
	switch groupBy {
	case model.GroupByType:
		key = rec.Type
	case model.GroupByServerID:
		key = rec.ServerID
	case model.GroupByTimestamp:
		if rec.Timestamp != nil {
			key = rec.Timestamp.UTC().Format(time.RFC3339Nano)
		}
	}
	if key == "" {
		return model.UnknownGroup
	}
	return key
}

func fieldValue(rec model.LogRecord, field model.Field) float64 {
	if field.Numeric() {
		return float64(rec.Count)
	}
	return 1
}

// FormatValue renders an aggregate without a trailing ".0" for whole numbers.
func FormatValue(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}
