package evaluation

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// CoerceNumeric parses spreadsheet text leniently: surrounding spaces, a
// trailing %, parentheses for negatives, and decimal-comma or thousands
// separators ("1.234,5", "1 234,5", "12,5", "1,234.5"). Text that still
// does not parse, including placeholders like "-" or "N/A", reports false.
func CoerceNumeric(s string) (float64, bool) {
	clean := strings.TrimSpace(s)
	if clean == "" {
		return 0, false
	}

	negative := false
	if strings.HasPrefix(clean, "(") && strings.HasSuffix(clean, ")") {
		clean = strings.TrimSuffix(strings.TrimPrefix(clean, "("), ")")
		negative = true
	}

	clean = strings.TrimSpace(strings.TrimSuffix(clean, "%"))

	hasComma := strings.Contains(clean, ",")
	hasPeriod := strings.Contains(clean, ".")
	hasSpace := strings.Contains(clean, " ")

	switch {
	case hasComma && (hasPeriod || hasSpace):
		commaIdx := strings.LastIndex(clean, ",")
		periodIdx := strings.LastIndex(clean, ".")
		if commaIdx > periodIdx {
			// decimal comma: 1.234,5 or 1 234,5
			clean = strings.ReplaceAll(clean, ".", "")
			clean = strings.ReplaceAll(clean, " ", "")
			clean = strings.ReplaceAll(clean, ",", ".")
		} else {
			// thousands comma: 1,234.5
			clean = strings.ReplaceAll(clean, ",", "")
			clean = strings.ReplaceAll(clean, " ", "")
		}
	case hasComma:
		clean = strings.ReplaceAll(clean, ",", ".")
	default:
		clean = strings.ReplaceAll(clean, " ", "")
	}

	if negative {
		clean = "-" + clean
	}

	v, err := strconv.ParseFloat(clean, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// MarshalJSON writes NaN statistics as null; encoding/json rejects NaN.
func (g GroupStatistics) MarshalJSON() ([]byte, error) {
	type wire struct {
		Column string   `json:"column"`
		Count  int      `json:"count"`
		Mean   *float64 `json:"mean"`
		Std    *float64 `json:"std"`
		Median *float64 `json:"median"`
		Min    *float64 `json:"min"`
		Max    *float64 `json:"max"`
	}
	return json.Marshal(wire{
		Column: g.Column,
		Count:  g.Count,
		Mean:   finiteOrNil(g.Mean),
		Std:    finiteOrNil(g.Std),
		Median: finiteOrNil(g.Median),
		Min:    finiteOrNil(g.Min),
		Max:    finiteOrNil(g.Max),
	})
}

func finiteOrNil(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
