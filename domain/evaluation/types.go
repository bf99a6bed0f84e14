package evaluation

import (
	"math"
	"strconv"
	"strings"
	"time"

	"evalboard/domain/core"
)

// CellKind classifies a raw cell
type CellKind int

const (
	CellMissing CellKind = iota
	CellNumber
	CellText
)

// Cell is one field of an evaluation row: a number, a text, or nothing
type Cell struct {
	Kind   CellKind `json:"kind"`
	Number float64  `json:"number,omitempty"`
	Text   string   `json:"text,omitempty"`
}

// MissingCell returns an empty cell
func MissingCell() Cell { return Cell{Kind: CellMissing} }

// NumberCell returns a numeric cell
func NumberCell(v float64) Cell { return Cell{Kind: CellNumber, Number: v} }

// TextCell returns a textual cell
func TextCell(s string) Cell { return Cell{Kind: CellText, Text: s} }

// ParseCell classifies a raw spreadsheet string. Only plain float literals
// become numbers; "12,5", "-" or "N/A" stay text and are left to the lenient
// accessor to interpret.
func ParseCell(raw string) Cell {
	s := strings.TrimSpace(raw)
	if s == "" {
		return MissingCell()
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
		return NumberCell(v)
	}
	return TextCell(s)
}

// Raw returns the cell as a string, the inverse of ParseCell
func (c Cell) Raw() string {
	switch c.Kind {
	case CellNumber:
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	case CellText:
		return c.Text
	default:
		return ""
	}
}

// IsMissing reports whether the cell is empty
func (c Cell) IsMissing() bool { return c.Kind == CellMissing }

// Row is one subject's measurements for one evaluation pass
type Row struct {
	Category  string          `json:"category"`
	SubjectID string          `json:"subject_id"`
	Cells     map[string]Cell `json:"cells"`
}

// NewRow creates a row with an empty cell map
func NewRow(category, subjectID string) Row {
	return Row{Category: category, SubjectID: strings.TrimSpace(subjectID), Cells: make(map[string]Cell)}
}

// Set stores a cell under column
func (r Row) Set(column string, c Cell) {
	r.Cells[column] = c
}

// Cell returns the cell stored under column; absent columns report missing
func (r Row) Cell(column string) Cell {
	if c, ok := r.Cells[column]; ok {
		return c
	}
	return MissingCell()
}

// HasSubject reports whether the row carries a subject identifier
func (r Row) HasSubject() bool {
	return r.SubjectID != ""
}

// Numeric reads column as a number. Numbers pass through, texts are coerced
// leniently, anything else reports false.
func (r Row) Numeric(column string) (float64, bool) {
	c := r.Cell(column)
	switch c.Kind {
	case CellNumber:
		return c.Number, true
	case CellText:
		return CoerceNumeric(c.Text)
	default:
		return 0, false
	}
}

// NumericOr reads column as a number, returning def when the cell is absent,
// empty or not numeric.
func (r Row) NumericOr(column string, def float64) float64 {
	if v, ok := r.Numeric(column); ok {
		return v
	}
	return def
}

// StrictNumber only accepts cells that the source stored as numbers
func (r Row) StrictNumber(column string) (float64, bool) {
	c := r.Cell(column)
	if c.Kind != CellNumber {
		return 0, false
	}
	return c.Number, true
}

// Table is an ordered, column-homogeneous collection of rows. Tables are
// never mutated after load; a reload produces a new Table with a new Version.
type Table struct {
	Version  core.TableVersion `json:"version"`
	Source   string            `json:"source"`
	LoadedAt time.Time         `json:"loaded_at"`
	Columns  []string          `json:"columns"`
	Rows     []Row             `json:"rows"`
}

// NewTable stamps a fresh version on the given rows
func NewTable(source string, columns []string, rows []Row) *Table {
	return &Table{
		Version:  core.NewTableVersion(),
		Source:   source,
		LoadedAt: time.Now(),
		Columns:  columns,
		Rows:     rows,
	}
}

// HasColumn reports whether column is part of the schema
func (t *Table) HasColumn(column string) bool {
	for _, c := range t.Columns {
		if c == column {
			return true
		}
	}
	return false
}

// ColumnPair is a right-side and left-side column sharing one metric
type ColumnPair struct {
	Right string `json:"right" yaml:"right"`
	Left  string `json:"left" yaml:"left"`
}

// Columns returns right then left
func (p ColumnPair) Columns() []string {
	return []string{p.Right, p.Left}
}

// Side of the body a bilateral value belongs to
type Side string

const (
	SideRight Side = "right"
	SideLeft  Side = "left"
)

// BilateralMetric is one resolved (label, right, left, lsi) tuple. LSIColumn
// is empty when the metric has no upstream symmetry score.
type BilateralMetric struct {
	Label     string `json:"label" yaml:"label"`
	Right     string `json:"right" yaml:"right"`
	Left      string `json:"left" yaml:"left"`
	LSIColumn string `json:"lsi_column,omitempty" yaml:"lsi"`
}

// Pair returns the metric's column pair
func (m BilateralMetric) Pair() ColumnPair {
	return ColumnPair{Right: m.Right, Left: m.Left}
}

// Column returns the column for one side
func (m BilateralMetric) Column(side Side) string {
	if side == SideLeft {
		return m.Left
	}
	return m.Right
}

// Pairs flattens metrics into their column pairs, preserving order
func Pairs(metrics []BilateralMetric) []ColumnPair {
	pairs := make([]ColumnPair, 0, len(metrics))
	for _, m := range metrics {
		pairs = append(pairs, m.Pair())
	}
	return pairs
}

// GroupStatistics describes one column across the subjects of a category.
// Values keep full precision; NaN means no valid value contributed.
type GroupStatistics struct {
	Column string  `json:"column"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Rounded returns a copy rounded to one decimal for display
func (g GroupStatistics) Rounded() GroupStatistics {
	g.Mean = Round1(g.Mean)
	g.Std = Round1(g.Std)
	g.Median = Round1(g.Median)
	g.Min = Round1(g.Min)
	g.Max = Round1(g.Max)
	return g
}

// SubjectProjection maps column name to a one-decimal value for one subject
type SubjectProjection map[string]float64

// ComparisonRecord is one (metric, side) delta between a subject and its group
type ComparisonRecord struct {
	Metric        string  `json:"metric"`
	Side          Side    `json:"side"`
	Column        string  `json:"column"`
	SubjectValue  float64 `json:"subject_value"`
	GroupMean     float64 `json:"group_mean"`
	GroupStd      float64 `json:"group_std"`
	GroupSize     int     `json:"group_size"`
	Difference    float64 `json:"difference"`
	DifferencePct float64 `json:"difference_pct"`
	RelativeZ     float64 `json:"relative_z"`
}

// ZScorePoint is one labelled precomputed Z-score. Value is clamped to the
// display range, Raw is what the source holds (or the group average).
type ZScorePoint struct {
	Label  string  `json:"label"`
	Column string  `json:"column"`
	Value  float64 `json:"value"`
	Raw    float64 `json:"raw"`
}

// Round1 rounds half away from zero to one decimal. NaN and infinities pass through.
func Round1(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return math.Round(v*10) / 10
}
