package ingestion

import (
	"fmt"
	"math"
	"strconv"

	"airsense/domain/core"
)

// CellKind tags the storage type of a raw cell
type CellKind string

const (
	CellNull   CellKind = "null"
	CellString CellKind = "string"
	CellInt    CellKind = "int"
	CellFloat  CellKind = "float"
)

// Cell is one raw value of an uploaded table. Exactly one payload field is
// meaningful, selected by Kind.
type Cell struct {
	Kind  CellKind `json:"kind"`
	Str   string   `json:"str,omitempty"`
	Int   int64    `json:"int,omitempty"`
	Float float64  `json:"float,omitempty"`
}

// NewStringCell creates a string cell
func NewStringCell(s string) Cell { return Cell{Kind: CellString, Str: s} }

// NewIntCell creates an integer cell
func NewIntCell(n int64) Cell { return Cell{Kind: CellInt, Int: n} }

// NewFloatCell creates a float cell; NaN is stored as null
func NewFloatCell(f float64) Cell {
	if math.IsNaN(f) {
		return NullCell()
	}
	return Cell{Kind: CellFloat, Float: f}
}

// NullCell creates a missing value
func NullCell() Cell { return Cell{Kind: CellNull} }

// IsNull reports whether the cell is missing
func (c Cell) IsNull() bool { return c.Kind == CellNull || c.Kind == "" }

// IsNumeric reports whether the cell is stored as a number
func (c Cell) IsNumeric() bool { return c.Kind == CellInt || c.Kind == CellFloat }

// Float64 returns the numeric payload; ok is false for non-numeric cells.
func (c Cell) Float64() (float64, bool) {
	switch c.Kind {
	case CellInt:
		return float64(c.Int), true
	case CellFloat:
		return c.Float, true
	}
	return 0, false
}

// String renders the cell the way a dataframe would print it with astype(str).
func (c Cell) String() string {
	switch c.Kind {
	case CellString:
		return c.Str
	case CellInt:
		return strconv.FormatInt(c.Int, 10)
	case CellFloat:
		if c.Float == math.Trunc(c.Float) && math.Abs(c.Float) < 1e16 {
			return strconv.FormatFloat(c.Float, 'f', 1, 64)
		}
		return strconv.FormatFloat(c.Float, 'g', -1, 64)
	}
	return ""
}

// Column is a named, ordered sequence of cells
type Column struct {
	Name  string `json:"name"`
	Cells []Cell `json:"cells"`
}

// Kind reports the column dtype: CellInt if every non-null cell is an int,
// CellFloat if every non-null cell is numeric with at least one float,
// CellString if any non-null cell is text, and CellNull for empty columns.
func (c Column) Kind() CellKind {
	kind := CellNull
	for _, cell := range c.Cells {
		switch cell.Kind {
		case CellString:
			return CellString
		case CellFloat:
			kind = CellFloat
		case CellInt:
			if kind == CellNull {
				kind = CellInt
			}
		}
	}
	return kind
}

// IsNumeric reports whether the column is uniformly integer- or float-typed
func (c Column) IsNumeric() bool {
	k := c.Kind()
	return k == CellInt || k == CellFloat
}

// NonNullCount counts cells that are not missing
func (c Column) NonNullCount() int {
	n := 0
	for _, cell := range c.Cells {
		if !cell.IsNull() {
			n++
		}
	}
	return n
}

// LeadingNonNull returns up to limit leading non-null cells
func (c Column) LeadingNonNull(limit int) []Cell {
	out := make([]Cell, 0, limit)
	for _, cell := range c.Cells {
		if len(out) >= limit {
			break
		}
		if !cell.IsNull() {
			out = append(out, cell)
		}
	}
	return out
}

// RawTable is an uploaded table: ordered columns with a uniform row count.
// The core treats it as read-only.
type RawTable struct {
	Source  string   `json:"source"`
	Columns []Column `json:"columns"`
}

// RowCount returns the number of rows (length of the first column)
func (t *RawTable) RowCount() int {
	if t == nil || len(t.Columns) == 0 {
		return 0
	}
	return len(t.Columns[0].Cells)
}

// ColumnNames lists the header in order
func (t *RawTable) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		names[i] = col.Name
	}
	return names
}

// Column looks a column up by exact name; the first match wins on duplicate headers.
func (t *RawTable) Column(name string) (*Column, bool) {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i], true
		}
	}
	return nil, false
}

// Validate checks that every column has the same number of rows
func (t *RawTable) Validate() error {
	rows := t.RowCount()
	for _, col := range t.Columns {
		if len(col.Cells) != rows {
			return fmt.Errorf("%w: column %q has %d rows, expected %d", core.ErrRaggedTable, col.Name, len(col.Cells), rows)
		}
	}
	return nil
}
