package engine

import (
	"evalboard/domain/evaluation"

	"gonum.org/v1/gonum/stat"
)

// Radar chart bounds for precomputed Z-scores
const (
	ZScoreDisplayMin = -3.0
	ZScoreDisplayMax = 3.0
)

// ReadSubjectZScores reads the configured Z-score columns of one subject in
// configured order. Only cells stored as numbers count; placeholders such as
// "-" or "N/A" drop the label.
func ReadSubjectZScores(row evaluation.Row, columns []evaluation.ZScoreColumn) []evaluation.ZScorePoint {
	points := make([]evaluation.ZScorePoint, 0, len(columns))
	for _, zc := range columns {
		v, ok := row.StrictNumber(zc.Column)
		if !ok {
			continue
		}
		points = append(points, newZScorePoint(zc, v))
	}
	return points
}

// ReadGroupZScores averages each configured Z-score column across rows.
// Columns without a single valid value are omitted, not zero-filled.
func ReadGroupZScores(rows []evaluation.Row, columns []evaluation.ZScoreColumn) []evaluation.ZScorePoint {
	points := make([]evaluation.ZScorePoint, 0, len(columns))
	for _, zc := range columns {
		values := make([]float64, 0, len(rows))
		for _, row := range rows {
			if v, ok := row.StrictNumber(zc.Column); ok {
				values = append(values, v)
			}
		}
		if len(values) == 0 {
			continue
		}
		points = append(points, newZScorePoint(zc, stat.Mean(values, nil)))
	}
	return points
}

func newZScorePoint(zc evaluation.ZScoreColumn, raw float64) evaluation.ZScorePoint {
	return evaluation.ZScorePoint{
		Label:  zc.Label,
		Column: zc.Column,
		Value:  clamp(raw, ZScoreDisplayMin, ZScoreDisplayMax),
		Raw:    raw,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
