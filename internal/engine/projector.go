package engine

import (
	"evalboard/domain/evaluation"
)

// ProjectSubject reads every column of pairs from row, rounded to one
// decimal. Absent, empty or non-numeric cells project to 0, so the result
// always holds exactly the union of the pair columns.
func ProjectSubject(row evaluation.Row, pairs []evaluation.ColumnPair) evaluation.SubjectProjection {
	projection := make(evaluation.SubjectProjection, len(pairs)*2)
	for _, pair := range pairs {
		for _, column := range pair.Columns() {
			projection[column] = evaluation.Round1(row.NumericOr(column, 0))
		}
	}
	return projection
}

// BilateralReading is a subject's right/left values for one resolved metric
// plus the upstream limb-symmetry index when the sheet has one.
type BilateralReading struct {
	Metric evaluation.BilateralMetric `json:"metric"`
	Right  float64                    `json:"right"`
	Left   float64                    `json:"left"`
	LSI    *float64                   `json:"lsi,omitempty"`
}

// BuildProfile reads one subject's bilateral profile in metric order. LSI is
// only reported when stored as a positive number.
func BuildProfile(row evaluation.Row, metrics []evaluation.BilateralMetric) []BilateralReading {
	projection := ProjectSubject(row, evaluation.Pairs(metrics))

	out := make([]BilateralReading, 0, len(metrics))
	for _, m := range metrics {
		reading := BilateralReading{
			Metric: m,
			Right:  projection[m.Right],
			Left:   projection[m.Left],
		}
		if m.LSIColumn != "" {
			if lsi, ok := row.StrictNumber(m.LSIColumn); ok && lsi > 0 {
				reading.LSI = &lsi
			}
		}
		out = append(out, reading)
	}
	return out
}
