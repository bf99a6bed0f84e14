package sqlstore

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// jsonText stores a JSON document in a TEXT column
type jsonText[T any] struct {
	V T
}

// Value implements driver.Valuer interface
func (j jsonText[T]) Value() (driver.Value, error) {
	data, err := json.Marshal(j.V)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner interface
func (j *jsonText[T]) Scan(value interface{}) error {
	var data []byte
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into JSON text", value)
	}
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, &j.V)
}

type tableRecord struct {
	ID       string             `db:"id"`
	Source   string             `db:"source"`
	LoadedAt string             `db:"loaded_at"`
	Columns  jsonText[[]string] `db:"columns"`
}

type rowRecord struct {
	ID       string                      `db:"id"`
	TableID  string                      `db:"table_id"`
	Position int                         `db:"position"`
	Category string                      `db:"category"`
	Subject  string                      `db:"subject"`
	Payload  jsonText[map[string]string] `db:"payload"`
}

type injuryRecord struct {
	ID         string         `db:"id"`
	Position   int            `db:"position"`
	Player     string         `db:"player"`
	OccurredOn string         `db:"occurred_on"`
	ClearedOn  sql.NullString `db:"cleared_on"`
	Type       string         `db:"injury_type"`
	Region     string         `db:"region"`
}
