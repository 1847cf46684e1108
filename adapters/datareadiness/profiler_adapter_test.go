package datareadiness

import (
	"testing"

	"airsense/domain/datareadiness/ingestion"
	"airsense/domain/datareadiness/profiling"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileColumn(t *testing.T) {
	profiler := NewProfilerAdapter(profiling.ProfilingConfig{SampleSize: 2})

	tests := []struct {
		name        string
		col         ingestion.Column
		wantNumeric bool
		wantMedian  float64
		wantSample  []string
		wantNonNull int
	}{
		{
			name: "epoch seconds",
			col: ingestion.Column{Name: "ts", Cells: []ingestion.Cell{
				ingestion.NullCell(),
				ingestion.NewIntCell(1700000000),
				ingestion.NewIntCell(1700000060),
				ingestion.NewIntCell(1700000120),
			}},
			wantNumeric: true,
			wantMedian:  1700000060,
			wantSample:  []string{"1700000000", "1700000060"},
			wantNonNull: 3,
		},
		{
			name: "negative values use magnitude",
			col: ingestion.Column{Name: "v", Cells: []ingestion.Cell{
				ingestion.NewFloatCell(-4),
				ingestion.NewFloatCell(2),
			}},
			wantNumeric: true,
			wantMedian:  3,
			wantSample:  []string{"-4.0", "2.0"},
			wantNonNull: 2,
		},
		{
			name: "text",
			col: ingestion.Column{Name: "s", Cells: []ingestion.Cell{
				ingestion.NewStringCell("2024-01-01T00:00:00Z"),
			}},
			wantNumeric: false,
			wantMedian:  0,
			wantSample:  []string{"2024-01-01T00:00:00Z"},
			wantNonNull: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := profiler.ProfileColumn(3, tt.col)
			assert.Equal(t, 3, p.Index)
			assert.Equal(t, tt.col.Name, p.Name)
			assert.Equal(t, tt.wantNumeric, p.Numeric)
			assert.InDelta(t, tt.wantMedian, p.MedianMagnitude, 1e-9)
			assert.Equal(t, tt.wantSample, p.Sample)
			assert.Equal(t, tt.wantNonNull, p.NonNullCount)
		})
	}
}

func TestProfileTableKeepsOrder(t *testing.T) {
	table := &ingestion.RawTable{Columns: []ingestion.Column{
		{Name: "b", Cells: []ingestion.Cell{ingestion.NewIntCell(1)}},
		{Name: "a", Cells: []ingestion.Cell{ingestion.NewIntCell(2)}},
	}}
	profiles := NewProfilerAdapter(profiling.ProfilingConfig{}).ProfileTable(table)
	require.Len(t, profiles, 2)
	assert.Equal(t, "b", profiles[0].Name)
	assert.Equal(t, 1, profiles[1].Index)
}

func TestMedianMagnitudeEmpty(t *testing.T) {
	assert.Equal(t, 0.0, MedianMagnitude([]ingestion.Cell{ingestion.NullCell()}))
}
