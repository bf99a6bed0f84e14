package engine

import (
	"testing"

	"evalboard/domain/evaluation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func row(category, subject string, values map[string]float64) evaluation.Row {
	r := evaluation.NewRow(category, subject)
	for col, v := range values {
		r.Set(col, evaluation.NumberCell(v))
	}
	return r
}

func scenarioTable() *evaluation.Table {
	return evaluation.NewTable("test", []string{"M Der", "M Izq"}, []evaluation.Row{
		row("A", "X", map[string]float64{"M Der": 100, "M Izq": 80}),
		row("A", "Y", map[string]float64{"M Der": 120, "M Izq": 90}),
		row("A", "MEDIA", map[string]float64{"M Der": 999, "M Izq": 999}),
	})
}

func subjectIDs(rows []evaluation.Row) []string {
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.SubjectID)
	}
	return ids
}

func TestIsReservedSubject(t *testing.T) {
	reserved := []string{
		"", "  ", "MEDIA", "SD", "TOTAL EN RIESGO ALTO", "RIESGO RELATIVO",
		"Apellido y Nombre", "media grupo", "Riesgo bajo", "subtotal", "sd ajustada",
	}
	for _, id := range reserved {
		assert.True(t, IsReservedSubject(id), "%q should be reserved", id)
	}

	for _, id := range []string{"Gomez Lucas", "Perez Juan", "Diaz"} {
		assert.False(t, IsReservedSubject(id), "%q is a subject", id)
	}
}

func TestFilterCategoryExcludesSummaryRows(t *testing.T) {
	table := scenarioTable()
	table.Rows = append(table.Rows,
		row("A", "SD", map[string]float64{"M Der": 5}),
		row("A", "TOTAL EN BAJO RIESGO", nil),
		evaluation.NewRow("A", ""),
		row("B", "Z", map[string]float64{"M Der": 1}),
	)

	rows := FilterCategory(table, "A")
	assert.Equal(t, []string{"X", "Y"}, subjectIDs(rows))

	for _, r := range rows {
		assert.False(t, IsReservedSubject(r.SubjectID))
		assert.Equal(t, "A", r.Category)
	}
}

func TestFilterCategoryUnknownIsEmpty(t *testing.T) {
	rows := FilterCategory(scenarioTable(), "Reserva")
	require.NotNil(t, rows)
	assert.Empty(t, rows)

	assert.Empty(t, FilterCategory(nil, "A"))
}

func TestCategoriesAndSubjects(t *testing.T) {
	table := scenarioTable()
	table.Rows = append(table.Rows,
		row("B", "Z", nil),
		row("A", "X", nil),
	)

	assert.Equal(t, []string{"A", "B"}, Categories(table))
	assert.Equal(t, []string{"X", "Y"}, SubjectsInCategory(table, "A"))
	assert.Empty(t, SubjectsInCategory(table, "C"))
}

func TestExcludeAndFindSubject(t *testing.T) {
	rows := FilterCategory(scenarioTable(), "A")

	r, ok := FindSubject(rows, " Y ")
	require.True(t, ok)
	assert.Equal(t, 120.0, r.NumericOr("M Der", 0))

	_, ok = FindSubject(rows, "W")
	assert.False(t, ok)

	assert.Equal(t, []string{"Y"}, subjectIDs(ExcludeSubject(rows, "X")))
	assert.Len(t, rows, 2, "input untouched")
}
