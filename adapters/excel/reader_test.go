package excel

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"evalboard/domain/evaluation"
	"evalboard/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var evalHeaders = []interface{}{
	"Deportista", "CUAD 70° Der", "CUAD 70° Izq",
	"CMJ F. Der (N)", "CMJ F. Izq (N)", "CMJ F. Der (N)", "CMJ F. Izq (N)",
	"", "Z SCORE CUAD Der",
}

func writeWorkbook(t *testing.T) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetName("Sheet1", "2005-06 (4ta)"))
	_, err := f.NewSheet("RESERVA")
	require.NoError(t, err)

	for _, sheet := range []string{"2005-06 (4ta)", "RESERVA"} {
		require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"1ra evaluación"}))
		require.NoError(t, f.SetSheetRow(sheet, "A2", &evalHeaders))
	}

	require.NoError(t, f.SetSheetRow("2005-06 (4ta)", "A3", &[]interface{}{"Perez Juan", 100.5, 80, 2000, 1900, 1500, 1400, "nota", 1.2}))
	require.NoError(t, f.SetSheetRow("2005-06 (4ta)", "A4", &[]interface{}{"Gomez Luis", 120, "-", 2100, 2000, 1600, 1500, "", "-"}))
	require.NoError(t, f.SetSheetRow("2005-06 (4ta)", "A6", &[]interface{}{"MEDIA", 110, 80, 2050, 1950, 1550, 1450}))
	require.NoError(t, f.SetSheetRow("RESERVA", "A3", &[]interface{}{"Diaz Pablo", 90, 85}))

	path := filepath.Join(t.TempDir(), "evaluacion.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestDedupeHeaders(t *testing.T) {
	got := DedupeHeaders([]string{"A", " B ", "A", "", "A", "B", "A.3"})
	assert.Equal(t, []string{"A", "B", "A.1", "Unnamed: 3", "A.2", "B.1", "A.3"}, got)

	assert.Equal(t, []string{"X", "X.2", "X.1"}, DedupeHeaders([]string{"X", "X", "X.1"}))
}

func TestWorkbookLoaderLoadTable(t *testing.T) {
	config := DefaultReaderConfig()
	config.FilePath = writeWorkbook(t)

	table, err := NewWorkbookLoader(config).LoadTable(context.Background())
	require.NoError(t, err)

	assert.False(t, table.Version.IsEmpty())
	assert.True(t, table.HasColumn("CMJ F. Der (N).1"))
	assert.True(t, table.HasColumn("Unnamed: 7"))
	require.Len(t, table.Rows, 4, "blank row dropped, summary rows kept for the filter")

	perez := table.Rows[0]
	assert.Equal(t, "4ta", perez.Category)
	assert.Equal(t, "Perez Juan", perez.SubjectID)
	assert.Equal(t, evaluation.NumberCell(100.5), perez.Cell("CUAD 70° Der"))
	assert.Equal(t, 2000.0, perez.NumericOr("CMJ F. Der (N)", 0))
	assert.Equal(t, 1500.0, perez.NumericOr("CMJ F. Der (N).1", 0))

	gomez := table.Rows[1]
	assert.Equal(t, evaluation.TextCell("-"), gomez.Cell("CUAD 70° Izq"))
	_, ok := gomez.StrictNumber("Z SCORE CUAD Der")
	assert.False(t, ok)

	assert.Equal(t, "MEDIA", table.Rows[2].SubjectID)

	diaz := table.Rows[3]
	assert.Equal(t, "Reserva", diaz.Category)
	assert.True(t, diaz.Cell("CMJ F. Der (N)").IsMissing())
}

func TestWorkbookLoaderKeepsTextStoredNumbers(t *testing.T) {
	path := writeWorkbook(t)
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	require.NoError(t, f.SetCellStr("RESERVA", "I3", "0.5"))
	require.NoError(t, f.SetCellValue("RESERVA", "D3", 2200))
	require.NoError(t, f.Save())
	require.NoError(t, f.Close())

	config := DefaultReaderConfig()
	config.FilePath = path
	table, err := NewWorkbookLoader(config).LoadTable(context.Background())
	require.NoError(t, err)

	diaz := table.Rows[3]
	require.Equal(t, "Diaz Pablo", diaz.SubjectID)
	assert.Equal(t, evaluation.TextCell("0.5"), diaz.Cell("Z SCORE CUAD Der"))
	_, ok := diaz.StrictNumber("Z SCORE CUAD Der")
	assert.False(t, ok, "a number typed as text is not a Z-score")

	v, ok := diaz.StrictNumber("CMJ F. Der (N)")
	assert.True(t, ok)
	assert.Equal(t, 2200.0, v)
}

func TestWorkbookLoaderMissingSheet(t *testing.T) {
	config := DefaultReaderConfig()
	config.FilePath = writeWorkbook(t)
	config.Sheets = append(config.Sheets, SheetSpec{Sheet: "2007 (6ta)", Category: "6ta"})

	_, err := NewWorkbookLoader(config).LoadTable(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsDataUnavailable(err))
}

func TestWorkbookLoaderMissingFile(t *testing.T) {
	config := DefaultReaderConfig()
	config.FilePath = filepath.Join(t.TempDir(), "nope.xlsx")

	_, err := NewWorkbookLoader(config).LoadTable(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsDataUnavailable(err))
}

func TestWorkbookLoaderCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "evaluacion.csv")
	csv := "categoria,Deportista,M Der,M Izq\n4ta,X,100,80\n4ta,Y,120,\"90,5\"\nReserva,Z,1,2\n"
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o644))

	config := DefaultReaderConfig()
	config.FilePath = path

	table, err := NewWorkbookLoader(config).LoadTable(context.Background())
	require.NoError(t, err)
	require.Len(t, table.Rows, 3)
	assert.Equal(t, "Reserva", table.Rows[2].Category)
	assert.Equal(t, 90.5, table.Rows[1].NumericOr("M Izq", 0))

	config.SubjectColumn = "Jugador"
	_, err = NewWorkbookLoader(config).LoadTable(context.Background())
	assert.True(t, errors.IsDataUnavailable(err))
}

func TestInjuryLoader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lesiones_clean.csv")
	csv := "jugador,fecha,fecha_de_alta,tipo_de_lesion,region\n" +
		"Perez Juan,2025-03-01,2025-03-15,Desgarro,Isquiotibial\n" +
		"Perez Juan,2025-10-20,,Esguince,Tobillo\n" +
		",2025-01-01,,Golpe,Rodilla\n" +
		"Gomez Luis,sin fecha,,Golpe,Rodilla\n"
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o644))

	log, err := NewInjuryLoader(path).LoadInjuries(context.Background())
	require.NoError(t, err)
	require.Len(t, log.Records, 2)
	assert.False(t, log.Records[0].Active())
	assert.True(t, log.Records[1].Active())
	assert.Equal(t, "Tobillo", log.Records[1].Region)

	_, err = NewInjuryLoader(filepath.Join(t.TempDir(), "missing.csv")).LoadInjuries(context.Background())
	assert.True(t, errors.IsDataUnavailable(err))
}
