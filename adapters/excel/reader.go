package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"evalboard/internal/errors"

	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"
)

// DataReader handles reading Excel and CSV files
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
}

// NewDataReader creates a new data reader that handles both Excel and CSV files
func NewDataReader(filePath string) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	return &DataReader{filePath: filePath, fileType: fileType}
}

// IsCSV reports whether the reader targets a CSV file
func (r *DataReader) IsCSV() bool {
	return r.fileType == "csv"
}

func (r *DataReader) checkFile() error {
	if _, err := os.Stat(r.filePath); err != nil {
		return errors.DataUnavailable(fmt.Sprintf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath), err)
	}
	return nil
}

// ReadSheets reads the named sheets concurrently, each with its header on
// headerRow (1-based). Results follow the order of sheets.
func (r *DataReader) ReadSheets(ctx context.Context, sheets []string, headerRow int) ([]*SheetData, error) {
	log.Printf("[DataReader] Starting to read %d sheets from %s", len(sheets), r.filePath)
	if err := r.checkFile(); err != nil {
		return nil, err
	}
	if r.IsCSV() {
		return nil, errors.InvalidInput("sheets can only be read from xlsx workbooks")
	}

	results := make([]*SheetData, len(sheets))
	g, ctx := errgroup.WithContext(ctx)
	for i, sheet := range sheets {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := r.readExcelSheet(sheet, headerRow)
			if err != nil {
				return err
			}
			results[i] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// readExcelSheet opens its own workbook handle so sheets can be read in parallel
func (r *DataReader) readExcelSheet(sheet string, headerRow int) (*SheetData, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, errors.DataUnavailable("failed to open Excel file", err)
	}
	defer f.Close()
	fileOpenTime := time.Since(startTime)
	log.Printf("[DataReader] Excel file opened in %.2fms", float64(fileOpenTime.Nanoseconds())/1e6)

	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, errors.DataUnavailable(fmt.Sprintf("sheet %q not found in %s", sheet, r.filePath), err)
	}

	readStart := time.Now()
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, errors.DataUnavailable(fmt.Sprintf("failed to read sheet %q", sheet), err)
	}
	readTime := time.Since(readStart)
	log.Printf("[DataReader] %s read in %.2fms (%d rows)", sheet, float64(readTime.Nanoseconds())/1e6, len(rows))

	text, err := textStoredNumbers(f, sheet, rows, headerRow)
	if err != nil {
		return nil, errors.DataUnavailable(fmt.Sprintf("failed to read cell types of sheet %q", sheet), err)
	}
	return r.processRows(sheet, rows, headerRow, text)
}

// textStoredNumbers finds cells below the header that read as numbers but are
// stored as strings, like a Z-score typed as '0.5. Only those need the native
// cell type; everything else is classified from its value.
func textStoredNumbers(f *excelize.File, sheet string, rows [][]string, headerRow int) ([][]bool, error) {
	text := make([][]bool, len(rows))
	for i := headerRow; i < len(rows); i++ {
		for j, cell := range rows[i] {
			value := strings.TrimSpace(cell)
			if value == "" {
				continue
			}
			if _, err := strconv.ParseFloat(value, 64); err != nil {
				continue
			}
			ref, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return nil, err
			}
			cellType, err := f.GetCellType(sheet, ref)
			if err != nil {
				return nil, err
			}
			switch cellType {
			case excelize.CellTypeInlineString, excelize.CellTypeSharedString, excelize.CellTypeFormula:
				if text[i] == nil {
					text[i] = make([]bool, len(rows[i]))
				}
				text[i][j] = true
			}
		}
	}
	return text, nil
}

// ReadCSV reads a CSV file with its header on the first line
func (r *DataReader) ReadCSV() (*SheetData, error) {
	log.Printf("[DataReader] Starting to read csv file: %s", r.filePath)
	if err := r.checkFile(); err != nil {
		return nil, err
	}

	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, errors.DataUnavailable("failed to open CSV file", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	readStart := time.Now()
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.DataUnavailable("failed to read CSV file", err)
	}
	readTime := time.Since(readStart)
	log.Printf("[DataReader] CSV file read in %.2fms (%d rows)", float64(readTime.Nanoseconds())/1e6, len(rows))

	return r.processRows(filepath.Base(r.filePath), rows, 1, nil)
}

// processRows converts raw string rows into SheetData. Rows above headerRow
// are ignored. text, when set, flags cells stored as strings and is indexed
// like rows.
func (r *DataReader) processRows(name string, rows [][]string, headerRow int, text [][]bool) (*SheetData, error) {
	if headerRow < 1 {
		headerRow = 1
	}
	if len(rows) < headerRow {
		return nil, errors.DataUnavailable(fmt.Sprintf("%s has no header row %d", name, headerRow), nil)
	}

	headers := DedupeHeaders(rows[headerRow-1])

	var (
		dataRows  []RawRowData
		textCells []map[string]bool
	)
	for i := headerRow; i < len(rows); i++ {
		row := rows[i]
		rowData := make(RawRowData)
		var rowText map[string]bool
		empty := true

		for j, cell := range row {
			if j >= len(headers) {
				break
			}
			value := strings.TrimSpace(cell)
			if value != "" {
				empty = false
			}
			rowData[headers[j]] = value
			if i < len(text) && j < len(text[i]) && text[i][j] {
				if rowText == nil {
					rowText = make(map[string]bool)
				}
				rowText[headers[j]] = true
			}
		}

		if !empty {
			dataRows = append(dataRows, rowData)
			textCells = append(textCells, rowText)
		}
	}
	if text == nil {
		textCells = nil
	}

	log.Printf("[DataReader] %s processed (%d columns, %d rows)", name, len(headers), len(dataRows))

	return &SheetData{
		Name:      name,
		Headers:   headers,
		Rows:      dataRows,
		TextCells: textCells,
	}, nil
}

// DedupeHeaders trims header cells, names blank ones "Unnamed: <index>" and
// suffixes repeated names with ".1", ".2", ... in order of appearance.
func DedupeHeaders(raw []string) []string {
	headers := make([]string, len(raw))
	seen := make(map[string]int, len(raw))
	taken := make(map[string]bool, len(raw))
	for _, h := range raw {
		taken[strings.TrimSpace(h)] = true
	}

	for i, h := range raw {
		name := strings.TrimSpace(h)
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		if n, dup := seen[name]; dup {
			candidate := fmt.Sprintf("%s.%d", name, n)
			for taken[candidate] {
				n++
				candidate = fmt.Sprintf("%s.%d", name, n)
			}
			seen[name] = n + 1
			taken[candidate] = true
			headers[i] = candidate
			continue
		}
		seen[name] = 1
		headers[i] = name
	}
	return headers
}
