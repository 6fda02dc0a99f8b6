package transform

import (
	"testing"
	"time"

	"github.com/tinytelemetry/logdash/internal/model"
)

func ts(s string) *time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return &t
}

func sampleLogs() []model.LogRecord {
	return []model.LogRecord{
		{ID: "1", ServerID: "srv-a", Type: "ip", Value: "10.0.0.1", Count: 2, Timestamp: ts("2024-03-02T10:00:00Z")},
		{ID: "2", ServerID: "srv-b", Type: "endpoint", Value: "/login", Count: 5, Timestamp: ts("2024-03-01T23:59:59Z")},
		{ID: "3", ServerID: "srv-a", Type: "ip", Value: "10.0.0.2", Count: 1, Timestamp: nil},
		{ID: "4", ServerID: "srv-c", Type: "", Value: "?", Count: 3, Timestamp: ts("2024-03-02T01:00:00Z")},
	}
}

func TestSummarize_Totals(t *testing.T) {
	t.Parallel()

	logs := sampleLogs()
	s := Summarize(logs)

	if s.TotalLogs != len(logs) {
		t.Fatalf("TotalLogs = %d, want %d", s.TotalLogs, len(logs))
	}
	if s.ServerCount != 3 {
		t.Fatalf("ServerCount = %d, want 3", s.ServerCount)
	}
	if s.LogTypes["ip"] != 2 || s.LogTypes["endpoint"] != 1 {
		t.Fatalf("LogTypes = %v, want ip:2 endpoint:1", s.LogTypes)
	}
	if _, ok := s.LogTypes[""]; ok {
		t.Fatal("empty type should not be counted")
	}
}

func TestSummarize_TimeDistributionSortedAndSkipsNull(t *testing.T) {
	t.Parallel()

	s := Summarize(sampleLogs())

	want := []model.TimeBucket{
		{Date: "2024-03-01", Count: 1},
		{Date: "2024-03-02", Count: 2},
	}
	if len(s.TimeDistribution) != len(want) {
		t.Fatalf("TimeDistribution = %+v, want %+v", s.TimeDistribution, want)
	}
	for i := range want {
		if s.TimeDistribution[i] != want[i] {
			t.Fatalf("TimeDistribution[%d] = %+v, want %+v", i, s.TimeDistribution[i], want[i])
		}
	}
}

func TestSummarize_ServerCountMatchesDistinct(t *testing.T) {
	t.Parallel()

	logs := []model.LogRecord{
		{ID: "1", ServerID: "x"},
		{ID: "2", ServerID: "x"},
		{ID: "3", ServerID: ""},
		{ID: "4", ServerID: "y"},
	}
	if got := Summarize(logs).ServerCount; got != 3 {
		t.Fatalf("ServerCount = %d, want 3", got)
	}
}

func TestSummarize_Empty(t *testing.T) {
	t.Parallel()

	s := Summarize(nil)
	if !s.Empty() {
		t.Fatal("summary of no logs should be empty")
	}
	if s.LogTypes == nil || s.TimeDistribution == nil {
		t.Fatal("empty summary should carry non-nil collections")
	}
}

func TestGroupAndAggregate_SumsNumericField(t *testing.T) {
	t.Parallel()

	logs := []model.LogRecord{
		{Type: "a", Count: 2},
		{Type: "a", Count: 3},
		{Type: "b", Count: 1},
	}
	rows := GroupAndAggregate(logs, model.FieldCount, model.GroupByType)

	if len(rows) != 2 {
		t.Fatalf("rows = %+v, want 2 groups", rows)
	}
	if rows[0].Group != "a" || rows[0].Value != 5 {
		t.Fatalf("rows[0] = %+v, want a=5", rows[0])
	}
	if rows[1].Group != "b" || rows[1].Value != 1 {
		t.Fatalf("rows[1] = %+v, want b=1", rows[1])
	}
}

func TestGroupAndAggregate_CountsNonNumericField(t *testing.T) {
	t.Parallel()

	logs := []model.LogRecord{
		{Type: "a", Value: "x", Count: 10},
		{Type: "b", Value: "y", Count: 10},
		{Type: "a", Value: "z", Count: 10},
	}
	rows := GroupAndAggregate(logs, model.FieldValue, model.GroupByType)

	got := map[string]float64{}
	for _, r := range rows {
		got[r.Group] = r.Value
	}
	if got["a"] != 2 || got["b"] != 1 {
		t.Fatalf("counts = %v, want a:2 b:1", got)
	}
}

func TestGroupAndAggregate_FirstSeenOrderAndUnknown(t *testing.T) {
	t.Parallel()

	logs := []model.LogRecord{
		{ServerID: "zeta", Count: 1},
		{ServerID: "", Count: 4},
		{ServerID: "alpha", Count: 1},
		{ServerID: "zeta", Count: 1},
	}
	rows := GroupAndAggregate(logs, model.FieldCount, model.GroupByServerID)

	order := []string{"zeta", model.UnknownGroup, "alpha"}
	if len(rows) != len(order) {
		t.Fatalf("rows = %+v", rows)
	}
	for i, g := range order {
		if rows[i].Group != g {
			t.Fatalf("rows[%d].Group = %q, want %q", i, rows[i].Group, g)
		}
	}
	if rows[1].Value != 4 {
		t.Fatalf("unknown bucket = %v, want 4", rows[1].Value)
	}
}

func TestGroupAndAggregate_TimestampGroups(t *testing.T) {
	t.Parallel()

	rows := GroupAndAggregate(sampleLogs(), model.FieldValue, model.GroupByTimestamp)
	if len(rows) != 4 {
		t.Fatalf("rows = %d, want 4 distinct timestamps incl. unknown", len(rows))
	}
	if rows[0].Group != "2024-03-02T10:00:00Z" {
		t.Fatalf("rows[0].Group = %q", rows[0].Group)
	}
	if rows[2].Group != model.UnknownGroup {
		t.Fatalf("null timestamp group = %q, want unknown", rows[2].Group)
	}

	sameSecond := []model.LogRecord{
		{ID: "a", Count: 2, Timestamp: ts("2024-01-01T10:00:00.1Z")},
		{ID: "b", Count: 3, Timestamp: ts("2024-01-01T10:00:00.9Z")},
	}
	rows = GroupAndAggregate(sameSecond, model.FieldCount, model.GroupByTimestamp)
	if len(rows) != 2 {
		t.Fatalf("rows = %+v, want sub-second timestamps in separate groups", rows)
	}
	if rows[0].Group != "2024-01-01T10:00:00.1Z" || rows[0].Value != 2 {
		t.Fatalf("rows[0] = %+v", rows[0])
	}
	if rows[1].Group != "2024-01-01T10:00:00.9Z" || rows[1].Value != 3 {
		t.Fatalf("rows[1] = %+v", rows[1])
	}
}

func TestGroupKey_OnlyEmptyIsUnknown(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		rec  model.LogRecord
		want string
	}{
		{"empty type", model.LogRecord{Type: ""}, model.UnknownGroup},
		{"blank type kept", model.LogRecord{Type: "  "}, "  "},
		{"plain type", model.LogRecord{Type: "ip"}, "ip"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GroupKey(tt.rec, model.GroupByType); got != tt.want {
				t.Fatalf("GroupKey = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestToHeatmapSeries(t *testing.T) {
	t.Parallel()

	logs := sampleLogs()
	cells := ToHeatmapSeries(logs, model.FieldCount, model.GroupByType)
	if len(cells) != len(logs) {
		t.Fatalf("cells = %d, want one per record (%d)", len(cells), len(logs))
	}
	if cells[1].X != "endpoint" || cells[1].Y != "srv-b" || cells[1].Value != 5 {
		t.Fatalf("cells[1] = %+v", cells[1])
	}
	if cells[3].X != model.UnknownGroup {
		t.Fatalf("cells[3].X = %q, want unknown", cells[3].X)
	}

	cells = ToHeatmapSeries(logs, model.FieldValue, model.GroupByType)
	for i, c := range cells {
		if c.Value != 1 {
			t.Fatalf("cells[%d].Value = %v, want 1 for non-numeric field", i, c.Value)
		}
	}
}

func TestTransformers_EmptyInput(t *testing.T) {
	t.Parallel()

	if rows := GroupAndAggregate(nil, model.FieldCount, model.GroupByType); len(rows) != 0 {
		t.Fatalf("GroupAndAggregate(nil) = %+v, want empty", rows)
	}
	if cells := ToHeatmapSeries(nil, model.FieldCount, model.GroupByType); len(cells) != 0 {
		t.Fatalf("ToHeatmapSeries(nil) = %+v, want empty", cells)
	}
	if got := FilterLogs(nil, LogFilter{ServerID: "a"}); len(got) != 0 {
		t.Fatalf("FilterLogs(nil) = %+v, want empty", got)
	}
}

func TestTransformers_DoNotMutateInput(t *testing.T) {
	t.Parallel()

	logs := sampleLogs()
	before := logs[1]
	_ = Summarize(logs)
	_ = GroupAndAggregate(logs, model.FieldCount, model.GroupByServerID)
	_ = SortByCount(logs, SortDescending)
	if logs[1].ID != before.ID || logs[0].ID != "1" {
		t.Fatal("input slice was reordered")
	}
}

func TestFormatValue(t *testing.T) {
	t.Parallel()

	if got := FormatValue(5); got != "5" {
		t.Fatalf("FormatValue(5) = %q", got)
	}
	if got := FormatValue(2.5); got != "2.50" {
		t.Fatalf("FormatValue(2.5) = %q", got)
	}
}
