package profiling

// ColumnProfile is the per-column summary the detector works from. It is
// derived on demand and never stored.
type ColumnProfile struct {
	Name  string `json:"name"`
	Index int    `json:"index"`

	// Up to SampleSize leading non-null values rendered as strings.
	Sample []string `json:"sample"`

	// True when every non-null cell is an integer or float.
	Numeric bool `json:"numeric"`

	NonNullCount int `json:"non_null_count"`

	// Median of |v| over non-null cells; only set when Numeric.
	MedianMagnitude float64 `json:"median_magnitude"`
}

// ProfilingConfig defines the profiling parameters
type ProfilingConfig struct {
	SampleSize int `json:"sample_size"`
}

// DefaultProfilingConfig returns sensible defaults
func DefaultProfilingConfig() ProfilingConfig {
	return ProfilingConfig{
		SampleSize: 20,
	}
}
