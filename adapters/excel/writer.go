package excel

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"

	"evalboard/domain/evaluation"
	"evalboard/domain/injury"
	"evalboard/internal/errors"

	"github.com/xuri/excelize/v2"
)

// WorkbookWriter lays a table out the way WorkbookLoader expects to read it:
// one sheet per configured category, headers on HeaderRow, the subject
// column first.
type WorkbookWriter struct {
	config ReaderConfig
}

// NewWorkbookWriter creates a writer for the given layout
func NewWorkbookWriter(config ReaderConfig) *WorkbookWriter {
	return &WorkbookWriter{config: config}
}

// WriteTable saves table to path. Rows whose category has no configured
// sheet are skipped.
func (w *WorkbookWriter) WriteTable(table *evaluation.Table, path string) error {
	if len(w.config.Sheets) == 0 {
		return errors.ConfigInvalid("no sheets configured")
	}
	headerRow := w.config.HeaderRow
	if headerRow < 1 {
		headerRow = 1
	}

	columns := []string{w.config.SubjectColumn}
	for _, c := range table.Columns {
		if c != w.config.SubjectColumn {
			columns = append(columns, c)
		}
	}
	headers := make([]interface{}, len(columns))
	for i, c := range columns {
		headers[i] = c
	}

	f := excelize.NewFile()
	defer f.Close()

	written := 0
	for i, spec := range w.config.Sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), spec.Sheet); err != nil {
				return errors.Wrap(err, "failed to name sheet")
			}
		} else if _, err := f.NewSheet(spec.Sheet); err != nil {
			return errors.Wrap(err, "failed to create sheet")
		}

		if headerRow > 1 {
			if err := f.SetCellValue(spec.Sheet, "A1", "Evaluación "+spec.Category); err != nil {
				return errors.Wrap(err, "failed to write title")
			}
		}
		if err := f.SetSheetRow(spec.Sheet, cellName(1, headerRow), &headers); err != nil {
			return errors.Wrap(err, "failed to write headers")
		}

		r := headerRow + 1
		for _, row := range table.Rows {
			if row.Category != spec.Category {
				continue
			}
			values := make([]interface{}, len(columns))
			values[0] = row.SubjectID
			for j, c := range columns[1:] {
				values[j+1] = cellValue(row.Cell(c))
			}
			if err := f.SetSheetRow(spec.Sheet, cellName(1, r), &values); err != nil {
				return errors.Wrap(err, fmt.Sprintf("failed to write row %d of %s", r, spec.Sheet))
			}
			r++
			written++
		}
	}

	if err := f.SaveAs(path); err != nil {
		return errors.Wrap(err, "failed to save workbook")
	}
	log.Printf("[WorkbookWriter] Wrote %d rows to %d sheets in %s", written, len(w.config.Sheets), path)
	return nil
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func cellValue(c evaluation.Cell) interface{} {
	switch c.Kind {
	case evaluation.CellNumber:
		return c.Number
	case evaluation.CellText:
		return c.Text
	default:
		return nil
	}
}

// WriteInjuriesCSV saves the log with the columns InjuryLoader reads
func WriteInjuriesCSV(injuries *injury.Log, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "failed to create injury log")
	}
	defer file.Close()

	w := csv.NewWriter(file)
	header := []string{InjuryPlayerColumn, InjuryDateColumn, InjuryClearedColumn, InjuryTypeColumn, InjuryRegionColumn}
	if err := w.Write(header); err != nil {
		return errors.Wrap(err, "failed to write injury log")
	}
	if injuries != nil {
		for _, r := range injuries.Records {
			cleared := ""
			if r.ClearedOn != nil {
				cleared = r.ClearedOn.Format(injury.DateLayout)
			}
			record := []string{r.Player, r.OccurredOn.Format(injury.DateLayout), cleared, r.Type, r.Region}
			if err := w.Write(record); err != nil {
				return errors.Wrap(err, "failed to write injury log")
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return errors.Wrap(err, "failed to write injury log")
	}
	return nil
}
