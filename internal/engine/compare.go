package engine

import (
	"math"

	"evalboard/domain/evaluation"
)

// Compare produces one record per (metric, side), right before left, in the
// order metrics were selected. Composite metrics must already be expanded by
// the Resolver.
//
// Degenerate groups never produce NaN or Inf: an empty group reports zeroes
// across the board, a zero mean zeroes DifferencePct and a zero (or
// undefined) std zeroes RelativeZ.
func Compare(projection evaluation.SubjectProjection, stats map[string]evaluation.GroupStatistics, metrics []evaluation.BilateralMetric) []evaluation.ComparisonRecord {
	records := make([]evaluation.ComparisonRecord, 0, len(metrics)*2)
	for _, m := range metrics {
		for _, side := range []evaluation.Side{evaluation.SideRight, evaluation.SideLeft} {
			column := m.Column(side)
			records = append(records, compareColumn(m.Label, side, column, projection[column], stats[column]))
		}
	}
	return records
}

func compareColumn(label string, side evaluation.Side, column string, subject float64, s evaluation.GroupStatistics) evaluation.ComparisonRecord {
	rec := evaluation.ComparisonRecord{
		Metric:       label,
		Side:         side,
		Column:       column,
		SubjectValue: subject,
		GroupSize:    s.Count,
	}
	if s.Count == 0 || !finite(s.Mean) {
		return rec
	}

	mean := s.Mean
	std := 0.0
	if finite(s.Std) {
		std = s.Std
	}

	diff := subject - mean
	rec.GroupMean = evaluation.Round1(mean)
	rec.GroupStd = evaluation.Round1(std)
	rec.Difference = evaluation.Round1(diff)
	if mean != 0 {
		rec.DifferencePct = evaluation.Round1(diff / mean * 100)
	}
	if std != 0 {
		rec.RelativeZ = round2(diff / std)
	}
	return rec
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
