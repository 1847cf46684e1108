package coercer

import (
	"math"
	"strconv"
	"strings"
	"time"

	"airsense/domain/datareadiness/ingestion"
)

// TypeCoercer handles deterministic coercion of raw text cells
type TypeCoercer struct {
	config  CoercionConfig
	nullSet map[string]struct{}
}

// CoercionConfig defines the coercion rules
type CoercionConfig struct {
	// Strings read as missing values. Matched after trimming whitespace.
	NullMarkers []string `json:"null_markers"`

	// Timestamp layouts in priority order. Naive layouts are read as UTC.
	TimestampLayouts []string `json:"timestamp_layouts"`
}

// DefaultNullMarkers mirrors the missing-value spellings a dataframe reader
// recognizes out of the box.
var DefaultNullMarkers = []string{
	"", "#N/A", "#N/A N/A", "#NA", "-1.#IND", "-1.#QNAN", "-NaN", "-nan",
	"1.#IND", "1.#QNAN", "<NA>", "N/A", "NA", "NULL", "NaN", "None", "n/a", "nan", "null",
}

// DefaultTimestampLayouts covers RFC3339 and the looser ISO-8601 variants
// (space separator, no zone, optional fraction), then slash and day-first
// locale layouts. Month-first comes before day-first.
var DefaultTimestampLayouts = []string{
	"2006-01-02T15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999Z0700",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"2006/01/02",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006",
	"02-Jan-2006 15:04:05",
	"02-Jan-2006",
}

// DefaultCoercionConfig returns sensible defaults
func DefaultCoercionConfig() CoercionConfig {
	return CoercionConfig{
		NullMarkers:      DefaultNullMarkers,
		TimestampLayouts: DefaultTimestampLayouts,
	}
}

// NewTypeCoercer creates a coercer with the given config
func NewTypeCoercer(config CoercionConfig) *TypeCoercer {
	if config.TimestampLayouts == nil {
		config.TimestampLayouts = DefaultTimestampLayouts
	}
	set := make(map[string]struct{}, len(config.NullMarkers))
	for _, m := range config.NullMarkers {
		set[m] = struct{}{}
	}
	return &TypeCoercer{config: config, nullSet: set}
}

// IsNullMarker reports whether raw text denotes a missing value
func (c *TypeCoercer) IsNullMarker(raw string) bool {
	_, ok := c.nullSet[strings.TrimSpace(raw)]
	return ok
}

// ParseInteger parses a base-10 int64
func ParseInteger(s string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ParseNumeric parses a finite float. Thousands separators, currency and
// percent signs are not accepted.
func ParseNumeric(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ToNumeric coerces any cell to a finite float; nulls and text that does not
// parse yield ok=false.
func ToNumeric(cell ingestion.Cell) (float64, bool) {
	switch cell.Kind {
	case ingestion.CellInt:
		return float64(cell.Int), true
	case ingestion.CellFloat:
		if math.IsNaN(cell.Float) || math.IsInf(cell.Float, 0) {
			return 0, false
		}
		return cell.Float, true
	case ingestion.CellString:
		return ParseNumeric(cell.Str)
	}
	return 0, false
}

// MatchLayout finds the first layout that parses s and returns the instant in UTC
func (c *TypeCoercer) MatchLayout(s string) (string, time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", time.Time{}, false
	}
	for _, layout := range c.config.TimestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return layout, t.UTC(), true
		}
	}
	return "", time.Time{}, false
}

// MatchISOLayout is MatchLayout restricted to the dash-dated ISO-8601
// layouts, so slash and day-first forms are never guessed per value.
func (c *TypeCoercer) MatchISOLayout(s string) (string, time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", time.Time{}, false
	}
	for _, layout := range c.config.TimestampLayouts {
		if !IsISOLayout(layout) {
			continue
		}
		if t, err := time.Parse(layout, s); err == nil {
			return layout, t.UTC(), true
		}
	}
	return "", time.Time{}, false
}

// IsISOLayout reports whether a layout starts with a dash-separated date.
func IsISOLayout(layout string) bool {
	return strings.HasPrefix(layout, "2006-01-02")
}

// Layouts returns the configured layouts in priority order
func (c *TypeCoercer) Layouts() []string {
	return c.config.TimestampLayouts
}

// ParseTimestamp parses s against a single layout, returning UTC
func ParseTimestamp(s, layout string) (time.Time, bool) {
	t, err := time.Parse(layout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

// TypeAnalysis summarizes how a run of raw strings coerces
type TypeAnalysis struct {
	TotalCount   int     `json:"total_count"`
	ValidCount   int     `json:"valid_count"`
	IntegerCount int     `json:"integer_count"`
	NumericCount int     `json:"numeric_count"`
	NumericRatio float64 `json:"numeric_ratio"`
}

// AnalyzeTypeDistribution counts how many non-null values parse as integers
// and as numbers.
func (c *TypeCoercer) AnalyzeTypeDistribution(values []string) TypeAnalysis {
	analysis := TypeAnalysis{TotalCount: len(values)}
	for _, v := range values {
		if c.IsNullMarker(v) {
			continue
		}
		analysis.ValidCount++
		if _, ok := ParseInteger(v); ok {
			analysis.IntegerCount++
			analysis.NumericCount++
			continue
		}
		if _, ok := ParseNumeric(v); ok {
			analysis.NumericCount++
		}
	}
	if analysis.ValidCount > 0 {
		analysis.NumericRatio = float64(analysis.NumericCount) / float64(analysis.ValidCount)
	}
	return analysis
}

// ColumnCells converts a whole raw text column to cells, promoting the column
// as a unit: all-integer columns become int cells, all-numeric columns become
// float cells, and any non-numeric value keeps the entire column as text.
func (c *TypeCoercer) ColumnCells(values []string) []ingestion.Cell {
	analysis := c.AnalyzeTypeDistribution(values)
	cells := make([]ingestion.Cell, len(values))

	switch {
	case analysis.ValidCount > 0 && analysis.IntegerCount == analysis.ValidCount:
		for i, v := range values {
			if c.IsNullMarker(v) {
				cells[i] = ingestion.NullCell()
				continue
			}
			n, _ := ParseInteger(v)
			cells[i] = ingestion.NewIntCell(n)
		}
	case analysis.ValidCount > 0 && analysis.NumericCount == analysis.ValidCount:
		for i, v := range values {
			if c.IsNullMarker(v) {
				cells[i] = ingestion.NullCell()
				continue
			}
			f, _ := ParseNumeric(v)
			cells[i] = ingestion.NewFloatCell(f)
		}
	default:
		for i, v := range values {
			if c.IsNullMarker(v) {
				cells[i] = ingestion.NullCell()
				continue
			}
			cells[i] = ingestion.NewStringCell(strings.TrimSpace(v))
		}
	}
	return cells
}
