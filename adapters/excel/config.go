package excel

// SheetSpec binds a workbook sheet to the category its rows belong to
type SheetSpec struct {
	Sheet    string `json:"sheet"`
	Category string `json:"category"`
}

// ReaderConfig holds configuration for the evaluation workbook
type ReaderConfig struct {
	FilePath       string      `json:"file_path"`
	Sheets         []SheetSpec `json:"sheets"`
	HeaderRow      int         `json:"header_row"`      // 1-based row holding the headers
	SubjectColumn  string      `json:"subject_column"`  // Column with the athlete name
	CategoryColumn string      `json:"category_column"` // CSV only: column with the category label
}

// DefaultReaderConfig returns the layout of the club evaluation workbook
func DefaultReaderConfig() ReaderConfig {
	return ReaderConfig{
		Sheets: []SheetSpec{
			{Sheet: "2005-06 (4ta)", Category: "4ta"},
			{Sheet: "RESERVA", Category: "Reserva"},
		},
		HeaderRow:      2,
		SubjectColumn:  "Deportista",
		CategoryColumn: "categoria",
	}
}
