package normalize

import (
	"fmt"
	"testing"
	"time"

	"airsense/domain/core"
	"airsense/domain/datareadiness/ingestion"
	"airsense/domain/telemetry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func textCells(values ...string) []ingestion.Cell {
	cells := make([]ingestion.Cell, len(values))
	for i, v := range values {
		if v == "" {
			cells[i] = ingestion.NullCell()
			continue
		}
		cells[i] = ingestion.NewStringCell(v)
	}
	return cells
}

func intCells(values ...int64) []ingestion.Cell {
	cells := make([]ingestion.Cell, len(values))
	for i, v := range values {
		cells[i] = ingestion.NewIntCell(v)
	}
	return cells
}

func TestClassifyThresholds(t *testing.T) {
	u := DefaultUnitThresholds()

	tests := []struct {
		median        float64
		wantEncoding  telemetry.TimeEncoding
		wantConfident bool
	}{
		{1.70e18, telemetry.EncodingEpochNanos, true},
		{1e17 + 1, telemetry.EncodingEpochNanos, true},
		{1e17, telemetry.EncodingEpochMicros, true},
		{1.70e15, telemetry.EncodingEpochMicros, true},
		{1.70e12, telemetry.EncodingEpochMillis, true},
		{1e11, telemetry.EncodingEpochSeconds, true},
		{1.70e9, telemetry.EncodingEpochSeconds, true},
		{1e9, telemetry.EncodingEpochSeconds, false},
		{42, telemetry.EncodingEpochSeconds, false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%g", tt.median), func(t *testing.T) {
			for i := 0; i < 3; i++ {
				enc, confident := u.Classify(tt.median)
				assert.Equal(t, tt.wantEncoding, enc)
				assert.Equal(t, tt.wantConfident, confident)
			}
		})
	}
}

func TestUnitThresholdsValidate(t *testing.T) {
	assert.NoError(t, DefaultUnitThresholds().Validate())
	assert.Error(t, UnitThresholds{Nanos: 1e14, Micros: 1e17, Millis: 1e11, Seconds: 1e9}.Validate())
	assert.Error(t, UnitThresholds{Nanos: 1e17, Micros: 1e14, Millis: 1e11, Seconds: 0}.Validate())
}

func TestNormalizeISOStrings(t *testing.T) {
	n := NewNormalizer(DefaultConfig())
	res, err := n.Normalize(textCells("2024-01-01T00:00:00Z", "2024-01-01T00:01:00Z"))
	require.NoError(t, err)

	assert.Equal(t, telemetry.EncodingISOString, res.Encoding)
	assert.Equal(t, telemetry.StrategyPerValue, res.Strategy)
	assert.Equal(t, 0, res.Failures)
	assert.False(t, res.Retried)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 1, 0, 0, time.UTC), res.Times[1].Time)
}

func TestNormalizeMixedISOForms(t *testing.T) {
	var values []string
	for i := 0; i < 6; i++ {
		values = append(values, fmt.Sprintf("2024-01-01T00:0%d:00Z", i))
	}
	for i := 0; i < 4; i++ {
		values = append(values, fmt.Sprintf("2024-01-01 01:0%d:00", i))
	}

	res, err := NewNormalizer(DefaultConfig()).Normalize(textCells(values...))
	require.NoError(t, err)
	assert.Equal(t, 10, res.ValidCount())
	assert.Equal(t, 0, res.Failures)
	assert.False(t, res.Retried)
	assert.Equal(t, telemetry.StrategyPerValue, res.Strategy)
	assert.Empty(t, res.OffendingSamples)
	assert.Equal(t, time.Date(2024, 1, 1, 1, 3, 0, 0, time.UTC), res.Times[9].Time)
}

func TestNormalizeEpochNanosScenarioB(t *testing.T) {
	values := []int64{1700000000000000000, 1700000000500000000, 1700000001000000000}
	res, err := NewNormalizer(DefaultConfig()).Normalize(intCells(values...))
	require.NoError(t, err)

	assert.Equal(t, telemetry.EncodingEpochNanos, res.Encoding)
	assert.Equal(t, telemetry.StrategyEpoch, res.Strategy)
	assert.InDelta(t, 1.70e18, res.EpochMedian, 1e10)
	for i, v := range values {
		require.True(t, res.Times[i].Valid)
		assert.True(t, time.Unix(0, v).Equal(res.Times[i].Time))
		assert.Equal(t, time.UTC, res.Times[i].Time.Location())
	}
	assert.Equal(t, 1700000000, int(res.Times[0].Time.Unix()))
}

func TestNormalizeEpochUnits(t *testing.T) {
	want := time.Date(2023, 11, 14, 22, 13, 20, 0, time.UTC)

	tests := []struct {
		name  string
		cells []ingestion.Cell
		enc   telemetry.TimeEncoding
	}{
		{"seconds", intCells(want.Unix()), telemetry.EncodingEpochSeconds},
		{"millis", intCells(want.UnixMilli()), telemetry.EncodingEpochMillis},
		{"micros", intCells(want.UnixMicro()), telemetry.EncodingEpochMicros},
		{"nanos", intCells(want.UnixNano()), telemetry.EncodingEpochNanos},
		{"seconds as text", textCells("1700000000"), telemetry.EncodingEpochSeconds},
		{"fractional seconds", []ingestion.Cell{ingestion.NewFloatCell(1700000000.0)}, telemetry.EncodingEpochSeconds},
	}
	n := NewNormalizer(DefaultConfig())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := n.Normalize(tt.cells)
			require.NoError(t, err)
			assert.Equal(t, tt.enc, res.Encoding)
			assert.True(t, want.Equal(res.Times[0].Time), "got %s", res.Times[0].Time)
		})
	}
}

func TestNormalizeSmallEpochIsLowConfidence(t *testing.T) {
	res, err := NewNormalizer(DefaultConfig()).Normalize(intCells(3600, 7200))
	require.NoError(t, err)
	assert.Equal(t, telemetry.EncodingEpochSeconds, res.Encoding)
	assert.True(t, res.LowConfidence)
	assert.Equal(t, time.Date(1970, 1, 1, 1, 0, 0, 0, time.UTC), res.Times[0].Time)
}

func TestNanosecondRoundTrip(t *testing.T) {
	instants := []time.Time{
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 11, 20, 18, 41, 1, 123456789, time.UTC),
		time.Date(1999, 12, 31, 23, 59, 59, 999999999, time.UTC),
	}
	for _, want := range instants {
		got, ok := FromEpochInt(want.UnixNano(), telemetry.EncodingEpochNanos)
		require.True(t, ok)
		assert.True(t, want.Equal(got))

		// float64 cannot hold every nanosecond; the tolerance is one microsecond
		gotF, ok := FromEpochFloat(float64(want.UnixNano()), telemetry.EncodingEpochNanos)
		require.True(t, ok)
		assert.LessOrEqual(t, absDuration(gotF.Sub(want)), time.Microsecond)
	}
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

func TestNormalizePartialFailureScenarioD(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	values := make([]string, 100)
	for i := range values {
		values[i] = base.Add(time.Duration(i) * time.Minute).Format(time.RFC3339)
		if i%10 == 5 {
			values[i] = "2024-13-45T99:99:99Z"
		}
	}

	res, err := NewNormalizer(DefaultConfig()).Normalize(textCells(values...))
	require.NoError(t, err)
	assert.Equal(t, 90, res.ValidCount())
	assert.Equal(t, 10, res.Failures)
	assert.Equal(t, 0, res.Missing)
	assert.False(t, res.Retried)
	assert.Len(t, res.OffendingSamples, 5)
}

func TestNormalizeRetriesWithSingleLayout(t *testing.T) {
	// Month-first fits only the first value; day-first fits all of them.
	cells := textCells("03/04/2024 10:00:00", "25/04/2024 10:00:00", "26/04/2024 10:00:00", "27/04/2024 10:00:00")

	res, err := NewNormalizer(DefaultConfig()).Normalize(cells)
	require.NoError(t, err)
	assert.True(t, res.Retried)
	assert.Equal(t, telemetry.StrategyInferredLayout, res.Strategy)
	assert.Equal(t, telemetry.EncodingISOString, res.Encoding)
	assert.Equal(t, 4, res.ValidCount())
	assert.Equal(t, time.Date(2024, 4, 3, 10, 0, 0, 0, time.UTC), res.Times[0].Time)
	assert.Equal(t, time.Date(2024, 4, 25, 10, 0, 0, 0, time.UTC), res.Times[1].Time)
}

func TestNormalizeSingleLayoutPrefersMonthFirstOnTie(t *testing.T) {
	res, err := NewNormalizer(DefaultConfig()).Normalize(textCells("03/04/2024", "05/06/2024"))
	require.NoError(t, err)
	assert.True(t, res.Retried)
	assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), res.Times[0].Time)
}

func TestNormalizeKeepsPerValueWhenRetryNoBetter(t *testing.T) {
	cells := textCells("2024-01-01T00:00:00Z", "garbage", "junk", "more junk")

	res, err := NewNormalizer(DefaultConfig()).Normalize(cells)
	require.NoError(t, err)
	assert.True(t, res.Retried)
	assert.Equal(t, telemetry.StrategyPerValue, res.Strategy)
	assert.Equal(t, 1, res.ValidCount())
	assert.Equal(t, 3, res.Failures)
}

func TestNormalizeCountsMissing(t *testing.T) {
	res, err := NewNormalizer(DefaultConfig()).Normalize(textCells("2024-01-01", "", "2024-01-03"))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Missing)
	assert.Equal(t, 0, res.Failures)
	assert.False(t, res.Times[1].Valid)
	assert.InDelta(t, 1.0, res.ValidFraction(), 1e-9)
}

func TestNormalizeTotalFailure(t *testing.T) {
	res, err := NewNormalizer(DefaultConfig()).Normalize(textCells("soon", "later", "", "never"))
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrUnparsableTimeEncoding)
	assert.Equal(t, telemetry.EncodingUnknown, res.Encoding)
	assert.Equal(t, []string{"soon", "later", "never"}, res.OffendingSamples)
	assert.Contains(t, err.Error(), "soon")
}

func TestNormalizeAllNull(t *testing.T) {
	_, err := NewNormalizer(DefaultConfig()).Normalize(textCells("", ""))
	assert.ErrorIs(t, err, core.ErrUnparsableTimeEncoding)
}

func TestCustomThresholds(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Thresholds = UnitThresholds{Nanos: 1e18, Micros: 1e15, Millis: 1e12, Seconds: 1e9}

	// 2e17 is nanoseconds by default but microseconds here
	res, err := NewNormalizer(cfg).Normalize(intCells(200_000_000_000_000_000))
	require.NoError(t, err)
	assert.Equal(t, telemetry.EncodingEpochMicros, res.Encoding)
}
