package ingestion

import (
	"math"
	"testing"

	"airsense/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnKind(t *testing.T) {
	tests := []struct {
		name  string
		cells []Cell
		want  CellKind
	}{
		{"ints", []Cell{NewIntCell(1), NullCell(), NewIntCell(3)}, CellInt},
		{"ints and floats", []Cell{NewIntCell(1), NewFloatCell(2.5)}, CellFloat},
		{"float first", []Cell{NewFloatCell(2.5), NewIntCell(1)}, CellFloat},
		{"any string", []Cell{NewIntCell(1), NewStringCell("x")}, CellString},
		{"all null", []Cell{NullCell(), NullCell()}, CellNull},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Column{Name: "c", Cells: tt.cells}.Kind())
		})
	}
}

func TestCellString(t *testing.T) {
	assert.Equal(t, "800.0", NewFloatCell(800).String())
	assert.Equal(t, "12.75", NewFloatCell(12.75).String())
	assert.Equal(t, "1700000000", NewIntCell(1700000000).String())
	assert.Equal(t, "", NullCell().String())
	assert.True(t, NewFloatCell(math.NaN()).IsNull())
}

func TestRawTableValidate(t *testing.T) {
	table := &RawTable{Columns: []Column{
		{Name: "a", Cells: []Cell{NewIntCell(1), NewIntCell(2)}},
		{Name: "b", Cells: []Cell{NewIntCell(1)}},
	}}
	err := table.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrRaggedTable)

	table.Columns[1].Cells = append(table.Columns[1].Cells, NullCell())
	assert.NoError(t, table.Validate())
	assert.Equal(t, 2, table.RowCount())
	assert.Equal(t, []string{"a", "b"}, table.ColumnNames())
}

func TestLeadingNonNull(t *testing.T) {
	col := Column{Cells: []Cell{NullCell(), NewIntCell(1), NullCell(), NewIntCell(2), NewIntCell(3)}}
	got := col.LeadingNonNull(2)
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].Int)
	assert.Equal(t, int64(2), got[1].Int)
	assert.Equal(t, 3, col.NonNullCount())
}
