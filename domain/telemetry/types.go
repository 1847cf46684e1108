package telemetry

import (
	"time"

	"airsense/domain/core"
)

// DetectionTier names the heuristic that located a column
type DetectionTier string

const (
	TierNone           DetectionTier = ""
	TierOverride       DetectionTier = "override"
	TierAlias          DetectionTier = "alias"
	TierSubstring      DetectionTier = "substring"
	TierISOContent     DetectionTier = "iso_content"
	TierEpochMagnitude DetectionTier = "epoch_magnitude"
	TierMostPopulated  DetectionTier = "most_populated_numeric"
	TierCoercible      DetectionTier = "coercible_text"
)

// DetectionResult names the columns picked for each role. An empty name means
// detection failed for that role, which callers resolve with a manual override.
type DetectionResult struct {
	TimeColumn  string        `json:"time_column,omitempty"`
	ValueColumn string        `json:"value_column,omitempty"`
	TimeTier    DetectionTier `json:"time_tier,omitempty"`
	ValueTier   DetectionTier `json:"value_tier,omitempty"`
}

// HasTime reports whether a time column was found
func (d DetectionResult) HasTime() bool { return d.TimeColumn != "" }

// HasValue reports whether a value column was found
func (d DetectionResult) HasValue() bool { return d.ValueColumn != "" }

// Complete reports whether both roles are filled
func (d DetectionResult) Complete() bool { return d.HasTime() && d.HasValue() }

// TimeEncoding is the encoding chosen once for a whole time column
type TimeEncoding string

const (
	EncodingISOString    TimeEncoding = "iso_string"
	EncodingEpochSeconds TimeEncoding = "epoch_seconds"
	EncodingEpochMillis  TimeEncoding = "epoch_millis"
	EncodingEpochMicros  TimeEncoding = "epoch_micros"
	EncodingEpochNanos   TimeEncoding = "epoch_nanos"
	EncodingUnknown      TimeEncoding = "unknown"
)

// IsEpoch reports whether the encoding is a numeric epoch unit
func (e TimeEncoding) IsEpoch() bool {
	switch e {
	case EncodingEpochSeconds, EncodingEpochMillis, EncodingEpochMicros, EncodingEpochNanos:
		return true
	}
	return false
}

// OptionalTime is a timestamp that may be unresolved
type OptionalTime struct {
	Time  time.Time
	Valid bool
}

// SomeTime wraps a resolved timestamp
func SomeTime(t time.Time) OptionalTime { return OptionalTime{Time: t, Valid: true} }

// OptionalFloat is a measurement that may be missing or unparsable
type OptionalFloat struct {
	Value float64
	Valid bool
}

// SomeFloat wraps a parsed value
func SomeFloat(v float64) OptionalFloat { return OptionalFloat{Value: v, Valid: true} }

// CanonicalPoint is one normalized reading. Value is never NaN.
type CanonicalPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// CanonicalSeries is sorted ascending by timestamp; equal timestamps keep
// their original row order.
type CanonicalSeries struct {
	Points []CanonicalPoint `json:"points"`
}

// Len returns the number of points
func (s CanonicalSeries) Len() int { return len(s.Points) }

// Range returns the first and last timestamps; zero for an empty series.
func (s CanonicalSeries) Range() core.TimeRange {
	if len(s.Points) == 0 {
		return core.TimeRange{}
	}
	return core.TimeRange{Start: s.Points[0].Timestamp, End: s.Points[len(s.Points)-1].Timestamp}
}

// Values returns the measurement column
func (s CanonicalSeries) Values() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Value
	}
	return out
}

// Timestamps returns the time column
func (s CanonicalSeries) Timestamps() []time.Time {
	out := make([]time.Time, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Timestamp
	}
	return out
}

// Hash fingerprints the series bit for bit
func (s CanonicalSeries) Hash() core.SeriesHash {
	return core.ComputeSeriesHash(s.Timestamps(), s.Values())
}

// Latest returns the point with the greatest timestamp
func (s CanonicalSeries) Latest() (CanonicalPoint, bool) {
	if len(s.Points) == 0 {
		return CanonicalPoint{}, false
	}
	return s.Points[len(s.Points)-1], true
}
