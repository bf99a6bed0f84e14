// Package engine turns an evaluation table into per-category and per-subject
// comparable metrics. Every function is pure: no caching, no I/O, no state.
package engine

import (
	"strings"

	"evalboard/domain/evaluation"
)

// ReservedLabels are subject ids the evaluation sheets use for summary rows
// (means, deviations, risk-tier totals) and header leakage.
var ReservedLabels = map[string]struct{}{
	"MEDIA":                    {},
	"SD":                       {},
	"TOTAL EN RIESGO ALTO":     {},
	"RIESGO RELATIVO":          {},
	"TOTAL EN RIESGO MODERADO": {},
	"TOTAL EN BAJO RIESGO":     {},
	"Apellido y Nombre":        {},
	"ALTO RIESGO":              {},
	"MODERADO RIESGO":          {},
	"BAJO RIESGO":              {},
}

// reservedFragments are matched case-insensitively anywhere in the subject id
var reservedFragments = []string{"riesgo", "media", "total", "sd"}

// IsReservedSubject reports whether a subject id denotes a summary row rather
// than an athlete. Empty ids are reserved.
func IsReservedSubject(subjectID string) bool {
	id := strings.TrimSpace(subjectID)
	if id == "" {
		return true
	}
	if _, ok := ReservedLabels[id]; ok {
		return true
	}
	lower := strings.ToLower(id)
	for _, frag := range reservedFragments {
		if strings.Contains(lower, frag) {
			return true
		}
	}
	return false
}

// FilterCategory returns the rows of category that represent real subjects,
// in table order. An unknown category yields an empty slice.
func FilterCategory(table *evaluation.Table, category string) []evaluation.Row {
	if table == nil {
		return nil
	}
	rows := make([]evaluation.Row, 0)
	for _, row := range table.Rows {
		if row.Category != category {
			continue
		}
		if IsReservedSubject(row.SubjectID) {
			continue
		}
		rows = append(rows, row)
	}
	return rows
}

// ExcludeSubject drops every row of subjectID, for leave-one-out baselines
func ExcludeSubject(rows []evaluation.Row, subjectID string) []evaluation.Row {
	out := make([]evaluation.Row, 0, len(rows))
	for _, row := range rows {
		if row.SubjectID != subjectID {
			out = append(out, row)
		}
	}
	return out
}

// FindSubject returns the first row of subjectID, or false when the subject is unknown
func FindSubject(rows []evaluation.Row, subjectID string) (evaluation.Row, bool) {
	id := strings.TrimSpace(subjectID)
	for _, row := range rows {
		if row.SubjectID == id {
			return row, true
		}
	}
	return evaluation.Row{}, false
}

// Categories lists distinct non-empty categories in first-seen order
func Categories(table *evaluation.Table) []string {
	if table == nil {
		return nil
	}
	seen := make(map[string]bool)
	var out []string
	for _, row := range table.Rows {
		if row.Category == "" || seen[row.Category] {
			continue
		}
		seen[row.Category] = true
		out = append(out, row.Category)
	}
	return out
}

// SubjectsInCategory lists the distinct subjects of category in first-seen order
func SubjectsInCategory(table *evaluation.Table, category string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, row := range FilterCategory(table, category) {
		if seen[row.SubjectID] {
			continue
		}
		seen[row.SubjectID] = true
		out = append(out, row.SubjectID)
	}
	return out
}
