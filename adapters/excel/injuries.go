package excel

import (
	"context"
	"fmt"
	"log"
	"strings"

	"evalboard/domain/injury"
	"evalboard/internal/errors"
)

// Injury log columns
const (
	InjuryPlayerColumn  = "jugador"
	InjuryDateColumn    = "fecha"
	InjuryClearedColumn = "fecha_de_alta"
	InjuryTypeColumn    = "tipo_de_lesion"
	InjuryRegionColumn  = "region"
)

// InjuryLoader reads the cleaned injury log CSV
type InjuryLoader struct {
	reader *DataReader
}

// NewInjuryLoader creates a loader for the CSV at path
func NewInjuryLoader(path string) *InjuryLoader {
	return &InjuryLoader{reader: NewDataReader(path)}
}

// LoadInjuries parses every row of the log. Rows without a player or a
// valid injury date are skipped with a warning.
func (l *InjuryLoader) LoadInjuries(ctx context.Context) (*injury.Log, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sheet, err := l.reader.ReadCSV()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load injury log")
	}

	for _, col := range []string{InjuryPlayerColumn, InjuryDateColumn} {
		if !containsHeader(sheet.Headers, col) {
			return nil, errors.DataUnavailable(fmt.Sprintf("injury log has no %q column", col), nil)
		}
	}

	out := &injury.Log{}
	for i, raw := range sheet.Rows {
		record, err := parseInjury(raw)
		if err != nil {
			log.Printf("[InjuryLoader] Skipping row %d: %v", i+2, err)
			continue
		}
		out.Records = append(out.Records, record)
	}
	log.Printf("[InjuryLoader] Loaded %d injury records", len(out.Records))
	return out, nil
}

func parseInjury(raw RawRowData) (injury.Record, error) {
	player := strings.TrimSpace(raw[InjuryPlayerColumn])
	if player == "" {
		return injury.Record{}, fmt.Errorf("missing player")
	}
	occurred, err := injury.ParseDate(raw[InjuryDateColumn])
	if err != nil {
		return injury.Record{}, err
	}
	if occurred == nil {
		return injury.Record{}, fmt.Errorf("missing injury date")
	}
	cleared, err := injury.ParseDate(raw[InjuryClearedColumn])
	if err != nil {
		return injury.Record{}, err
	}
	return injury.Record{
		Player:     player,
		OccurredOn: *occurred,
		ClearedOn:  cleared,
		Type:       strings.TrimSpace(raw[InjuryTypeColumn]),
		Region:     strings.TrimSpace(raw[InjuryRegionColumn]),
	}, nil
}

func containsHeader(headers []string, name string) bool {
	for _, h := range headers {
		if h == name {
			return true
		}
	}
	return false
}
