// Package injury holds the injury log model
package injury

import (
	"fmt"
	"strings"
	"time"
)

// Record is one injury event of a player. ClearedOn is nil while the injury
// is still active.
type Record struct {
	Player     string     `json:"player" db:"player"`
	OccurredOn time.Time  `json:"occurred_on" db:"occurred_on"`
	ClearedOn  *time.Time `json:"cleared_on,omitempty" db:"cleared_on"`
	Type       string     `json:"type" db:"injury_type"`
	Region     string     `json:"region" db:"region"`
}

// Active reports whether the player has not been cleared yet
func (r Record) Active() bool {
	return r.ClearedOn == nil
}

// EventKey identifies the event in selectors: "YYYY-MM-DD — type (region)"
func (r Record) EventKey() string {
	return fmt.Sprintf("%s — %s (%s)", r.OccurredOn.Format(DateLayout), r.Type, r.Region)
}

// Log is the full injury history in source order
type Log struct {
	Records []Record `json:"records"`
}

// ForPlayer returns the records of player in source order
func (l *Log) ForPlayer(player string) []Record {
	if l == nil {
		return nil
	}
	player = strings.TrimSpace(player)
	var out []Record
	for _, r := range l.Records {
		if r.Player == player {
			out = append(out, r)
		}
	}
	return out
}

// DateLayout is the canonical date format of the injury log
const DateLayout = "2006-01-02"

var dateLayouts = []string{
	DateLayout,
	"2006-01-02 15:04:05",
	time.RFC3339,
	"02/01/2006",
	"2/1/2006",
}

// ParseDate accepts the date formats found in exported injury logs. An empty
// string yields nil.
func ParseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "nan") || strings.EqualFold(s, "nat") {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &d, nil
		}
	}
	return nil, fmt.Errorf("unrecognized date %q", s)
}
