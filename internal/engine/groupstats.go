package engine

import (
	"math"

	"evalboard/domain/evaluation"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// ColumnValues collects the numeric values of column across rows. Missing and
// unparseable cells are skipped.
func ColumnValues(rows []evaluation.Row, column string) []float64 {
	values := make([]float64, 0, len(rows))
	for _, row := range rows {
		if v, ok := row.Numeric(column); ok {
			values = append(values, v)
		}
	}
	return values
}

// Describe computes descriptive statistics for one column. Std is the sample
// standard deviation; it is NaN below two values, and every statistic is NaN
// when no value is present.
func Describe(column string, values []float64) evaluation.GroupStatistics {
	out := evaluation.GroupStatistics{
		Column: column,
		Count:  len(values),
		Mean:   math.NaN(),
		Std:    math.NaN(),
		Median: math.NaN(),
		Min:    math.NaN(),
		Max:    math.NaN(),
	}
	if len(values) == 0 {
		return out
	}

	mean, std := stat.MeanStdDev(values, nil)
	out.Mean = mean
	if len(values) > 1 {
		out.Std = std
	}

	data := stats.Float64Data(values)
	if median, err := data.Median(); err == nil {
		out.Median = median
	}
	if min, err := data.Min(); err == nil {
		out.Min = min
	}
	if max, err := data.Max(); err == nil {
		out.Max = max
	}
	return out
}

// ComputeGroupStats describes every column referenced by pairs (both sides).
// Results keep full precision; callers round once for display.
func ComputeGroupStats(rows []evaluation.Row, pairs []evaluation.ColumnPair) map[string]evaluation.GroupStatistics {
	result := make(map[string]evaluation.GroupStatistics, len(pairs)*2)
	for _, pair := range pairs {
		for _, column := range pair.Columns() {
			if _, done := result[column]; done {
				continue
			}
			result[column] = Describe(column, ColumnValues(rows, column))
		}
	}
	return result
}

// GroupTableRow is one line of the group statistics table
type GroupTableRow struct {
	Metric string                     `json:"metric"`
	Side   evaluation.Side            `json:"side"`
	Stats  evaluation.GroupStatistics `json:"stats"`
}

// GroupTable lays statistics out in metric order, right before left. Columns
// missing from stats appear with NaN statistics and a zero count.
func GroupTable(stats map[string]evaluation.GroupStatistics, metrics []evaluation.BilateralMetric) []GroupTableRow {
	out := make([]GroupTableRow, 0, len(metrics)*2)
	for _, m := range metrics {
		for _, side := range []evaluation.Side{evaluation.SideRight, evaluation.SideLeft} {
			column := m.Column(side)
			s, ok := stats[column]
			if !ok {
				s = Describe(column, nil)
			}
			out = append(out, GroupTableRow{Metric: m.Label, Side: side, Stats: s})
		}
	}
	return out
}
