package excel

import (
	"context"
	"fmt"
	"log"
	"time"

	"evalboard/domain/evaluation"
	"evalboard/internal/errors"
)

// WorkbookLoader builds the evaluation table from the club workbook, one
// category per configured sheet, or from a CSV that carries its own
// category column.
type WorkbookLoader struct {
	config ReaderConfig
	reader *DataReader
}

// NewWorkbookLoader creates a loader for config.FilePath
func NewWorkbookLoader(config ReaderConfig) *WorkbookLoader {
	return &WorkbookLoader{config: config, reader: NewDataReader(config.FilePath)}
}

// LoadTable reads every configured sheet and concatenates the rows in sheet
// order, tagging each with its category.
func (l *WorkbookLoader) LoadTable(ctx context.Context) (*evaluation.Table, error) {
	start := time.Now()

	var (
		sheets     []*SheetData
		categories []string
		err        error
	)
	if l.reader.IsCSV() {
		var sheet *SheetData
		sheet, err = l.reader.ReadCSV()
		sheets = []*SheetData{sheet}
		categories = []string{""}
	} else {
		names := make([]string, len(l.config.Sheets))
		for i, s := range l.config.Sheets {
			names[i] = s.Sheet
			categories = append(categories, s.Category)
		}
		sheets, err = l.reader.ReadSheets(ctx, names, l.config.HeaderRow)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load evaluation data")
	}

	var (
		columns []string
		rows    []evaluation.Row
	)
	seen := make(map[string]bool)
	for i, sheet := range sheets {
		if err := l.requireColumns(sheet); err != nil {
			return nil, err
		}
		for _, h := range sheet.Headers {
			if !seen[h] {
				seen[h] = true
				columns = append(columns, h)
			}
		}
		rows = append(rows, l.toRows(sheet, categories[i])...)
	}

	table := evaluation.NewTable(l.config.FilePath, columns, rows)
	log.Printf("[WorkbookLoader] Loaded %d rows (%d columns) from %d sheets in %.2fms, version %s",
		len(rows), len(columns), len(sheets), float64(time.Since(start).Nanoseconds())/1e6, table.Version)
	return table, nil
}

func (l *WorkbookLoader) requireColumns(sheet *SheetData) error {
	required := []string{l.config.SubjectColumn}
	if l.reader.IsCSV() {
		required = append(required, l.config.CategoryColumn)
	}
	for _, col := range required {
		found := false
		for _, h := range sheet.Headers {
			if h == col {
				found = true
				break
			}
		}
		if !found {
			return errors.DataUnavailable(fmt.Sprintf("%s has no %q column", sheet.Name, col), nil)
		}
	}
	return nil
}

func (l *WorkbookLoader) toRows(sheet *SheetData, category string) []evaluation.Row {
	rows := make([]evaluation.Row, 0, len(sheet.Rows))
	for i, raw := range sheet.Rows {
		rowCategory := category
		if rowCategory == "" {
			rowCategory = raw[l.config.CategoryColumn]
		}
		row := evaluation.NewRow(rowCategory, raw[l.config.SubjectColumn])
		for _, h := range sheet.Headers {
			if sheet.IsText(i, h) {
				row.Set(h, evaluation.TextCell(raw[h]))
				continue
			}
			row.Set(h, evaluation.ParseCell(raw[h]))
		}
		rows = append(rows, row)
	}
	return rows
}
