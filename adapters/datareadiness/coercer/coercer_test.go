package coercer

import (
	"testing"
	"time"

	"airsense/domain/datareadiness/ingestion"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnCellsPromotion(t *testing.T) {
	c := NewTypeCoercer(DefaultCoercionConfig())

	tests := []struct {
		name   string
		values []string
		want   ingestion.CellKind
	}{
		{"integers with nulls", []string{"1", "", "NA", "3"}, ingestion.CellInt},
		{"mixed int and float", []string{"1", "2.5", "null"}, ingestion.CellFloat},
		{"one text value demotes column", []string{"1", "2", "abc"}, ingestion.CellString},
		{"all missing", []string{"", "nan", "None"}, ingestion.CellNull},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			col := ingestion.Column{Name: tt.name, Cells: c.ColumnCells(tt.values)}
			assert.Equal(t, tt.want, col.Kind())
			assert.Len(t, col.Cells, len(tt.values))
		})
	}
}

func TestColumnCellsKeepsNanosecondPrecision(t *testing.T) {
	c := NewTypeCoercer(DefaultCoercionConfig())
	cells := c.ColumnCells([]string{"1700000000123456789"})
	require.Equal(t, ingestion.CellInt, cells[0].Kind)
	assert.Equal(t, int64(1700000000123456789), cells[0].Int)
}

func TestToNumeric(t *testing.T) {
	tests := []struct {
		name string
		cell ingestion.Cell
		want float64
		ok   bool
	}{
		{"int", ingestion.NewIntCell(800), 800, true},
		{"float", ingestion.NewFloatCell(12.5), 12.5, true},
		{"numeric text", ingestion.NewStringCell(" 1250.5 "), 1250.5, true},
		{"text", ingestion.NewStringCell("high"), 0, false},
		{"thousands separator", ingestion.NewStringCell("1,250"), 0, false},
		{"infinity", ingestion.NewStringCell("inf"), 0, false},
		{"nan text", ingestion.NewStringCell("NaN"), 0, false},
		{"null", ingestion.NullCell(), 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ToNumeric(tt.cell)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatchLayout(t *testing.T) {
	c := NewTypeCoercer(DefaultCoercionConfig())

	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-01-01T00:00:00Z", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"2024-01-01T05:30:00+05:30", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"2024-01-01 12:00:01.250", time.Date(2024, 1, 1, 12, 0, 1, 250_000_000, time.UTC)},
		{"2024-01-01T12:00", time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)},
		{"2024-01-01", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"03/04/2024 10:00:00", time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)},
		{"25/04/2024", time.Date(2024, 4, 25, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			_, got, ok := c.MatchLayout(tt.in)
			require.True(t, ok)
			assert.True(t, tt.want.Equal(got), "got %s", got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}

	for _, bad := range []string{"", "1700000000", "not a date", "2024"} {
		_, _, ok := c.MatchLayout(bad)
		assert.False(t, ok, bad)
	}
}

func TestParseTimestampSingleLayout(t *testing.T) {
	_, ok := ParseTimestamp("25/04/2024", "01/02/2006")
	assert.False(t, ok)

	got, ok := ParseTimestamp("04/25/2024", "01/02/2006")
	require.True(t, ok)
	assert.Equal(t, time.April, got.Month())
}

func TestMatchISOLayoutSkipsLocaleForms(t *testing.T) {
	c := NewTypeCoercer(DefaultCoercionConfig())

	layout, got, ok := c.MatchISOLayout("2024-01-01 01:02:00")
	require.True(t, ok)
	assert.True(t, IsISOLayout(layout))
	assert.Equal(t, time.Date(2024, 1, 1, 1, 2, 0, 0, time.UTC), got)

	for _, locale := range []string{"03/04/2024 10:00:00", "25/04/2024", "2024/01/02", "02-Jan-2024"} {
		_, _, ok := c.MatchISOLayout(locale)
		assert.False(t, ok, locale)
	}
}
