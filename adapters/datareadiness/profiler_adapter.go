package datareadiness

import (
	"math"

	"airsense/domain/datareadiness/ingestion"
	"airsense/domain/datareadiness/profiling"

	"github.com/montanaflynn/stats"
)

// ProfilerAdapter derives column profiles for schema detection
type ProfilerAdapter struct {
	config profiling.ProfilingConfig
}

// NewProfilerAdapter creates a new profiler adapter
func NewProfilerAdapter(config profiling.ProfilingConfig) *ProfilerAdapter {
	if config.SampleSize <= 0 {
		config.SampleSize = profiling.DefaultProfilingConfig().SampleSize
	}
	return &ProfilerAdapter{config: config}
}

// ProfileTable profiles every column, preserving header order
func (p *ProfilerAdapter) ProfileTable(table *ingestion.RawTable) []profiling.ColumnProfile {
	profiles := make([]profiling.ColumnProfile, len(table.Columns))
	for i, col := range table.Columns {
		profiles[i] = p.ProfileColumn(i, col)
	}
	return profiles
}

// ProfileColumn summarizes a single column
func (p *ProfilerAdapter) ProfileColumn(index int, col ingestion.Column) profiling.ColumnProfile {
	profile := profiling.ColumnProfile{
		Name:         col.Name,
		Index:        index,
		Numeric:      col.IsNumeric(),
		NonNullCount: col.NonNullCount(),
	}

	for _, cell := range col.LeadingNonNull(p.config.SampleSize) {
		profile.Sample = append(profile.Sample, cell.String())
	}

	if profile.Numeric {
		profile.MedianMagnitude = MedianMagnitude(col.Cells)
	}
	return profile
}

// MedianMagnitude returns the median of |v| over numeric cells, or 0 when
// the column holds no numbers.
func MedianMagnitude(cells []ingestion.Cell) float64 {
	data := make(stats.Float64Data, 0, len(cells))
	for _, cell := range cells {
		if v, ok := cell.Float64(); ok {
			data = append(data, math.Abs(v))
		}
	}
	if len(data) == 0 {
		return 0
	}
	median, err := stats.Median(data)
	if err != nil {
		return 0
	}
	return median
}
