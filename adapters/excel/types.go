package excel

// RawRowData represents a row of raw sheet data as header to cell string
type RawRowData map[string]string

// SheetData is one sheet (or CSV file) below its header row
type SheetData struct {
	Name    string       // Sheet name, or the file name for CSV
	Headers []string     // Column headers, deduplicated
	Rows    []RawRowData // Data rows, fully empty rows dropped

	// TextCells marks, per data row, the columns whose cell is stored as
	// text in the workbook even though it reads as a number. Nil for CSV.
	TextCells []map[string]bool
}

// IsText reports whether the cell at row and header was stored as text
func (s *SheetData) IsText(row int, header string) bool {
	if row >= len(s.TextCells) {
		return false
	}
	return s.TextCells[row][header]
}
