package model

import "fmt"

// Field is the record attribute measured by an analysis.
type Field string

const (
	FieldCount Field = "count"
	FieldValue Field = "value"
)

// Numeric reports whether the field is summed rather than counted.
func (f Field) Numeric() bool {
	return f == FieldCount
}

// GroupBy is the record attribute used to bucket records.
type GroupBy string

const (
	GroupByType      GroupBy = "type"
	GroupByServerID  GroupBy = "serverId"
	GroupByTimestamp GroupBy = "timestamp"
)

// ChartType selects how an analysis is drawn.
type ChartType string

const (
	ChartBar     ChartType = "bar"
	ChartColumn  ChartType = "column"
	ChartHeatmap ChartType = "heatmap"
)

// Fields, GroupBys and ChartTypes list the selectable options in display order.
var (
	Fields     = []Field{FieldCount, FieldValue}
	GroupBys   = []GroupBy{GroupByType, GroupByServerID, GroupByTimestamp}
	ChartTypes = []ChartType{ChartBar, ChartColumn, ChartHeatmap}
)

// AnalysisParams is the view-local analysis selection.
type AnalysisParams struct {
	Field     Field     `json:"field"`
	GroupBy   GroupBy   `json:"groupBy"`
	ChartType ChartType `json:"chartType"`
}

// DefaultAnalysisParams returns the initial analysis selection.
func DefaultAnalysisParams() AnalysisParams {
	return AnalysisParams{
		Field:     FieldCount,
		GroupBy:   GroupByType,
		ChartType: ChartColumn,
	}
}

// ParseField validates a field name.
func ParseField(s string) (Field, error) {
	for _, f := range Fields {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown field %q", s)
}

// ParseGroupBy validates a group-by name.
func ParseGroupBy(s string) (GroupBy, error) {
	for _, g := range GroupBys {
		if string(g) == s {
			return g, nil
		}
	}
	return "", fmt.Errorf("unknown groupBy %q", s)
}

// ParseChartType validates a chart type name.
func ParseChartType(s string) (ChartType, error) {
	for _, c := range ChartTypes {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown chart type %q", s)
}
