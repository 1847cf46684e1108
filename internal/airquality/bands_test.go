package airquality

import (
	"testing"
	"time"

	"airsense/domain/telemetry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2025, 11, 20, 8, 0, 0, 0, time.UTC)

func makeSeries(values ...float64) telemetry.CanonicalSeries {
	points := make([]telemetry.CanonicalPoint, len(values))
	for i, v := range values {
		points[i] = telemetry.CanonicalPoint{Timestamp: start.Add(time.Duration(i) * 10 * time.Minute), Value: v}
	}
	return telemetry.CanonicalSeries{Points: points}
}

func TestClassifyEdges(t *testing.T) {
	th := DefaultThresholds()
	tests := []struct {
		v    float64
		want Band
	}{
		{400, BandHealthy},
		{800, BandHealthy},
		{800.1, BandWarning},
		{1200, BandWarning},
		{1200.5, BandUnhealthy},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, th.Classify(tt.v), "value %v", tt.v)
	}
	assert.Equal(t, 1000.0, th.DefaultAlertThreshold())
}

func TestThresholdsValidate(t *testing.T) {
	assert.NoError(t, DefaultThresholds().Validate())
	assert.Error(t, Thresholds{Good: 1200, Warn: 800}.Validate())
	assert.Error(t, Thresholds{Good: 0, Warn: 800}.Validate())
}

func TestBandCounts(t *testing.T) {
	got := BandCounts(makeSeries(500, 700, 900, 1300), DefaultThresholds())
	assert.Equal(t, []BandCount{
		{Band: BandUnhealthy, Count: 1, Percent: 25},
		{Band: BandWarning, Count: 1, Percent: 25},
		{Band: BandHealthy, Count: 2, Percent: 50},
	}, got)

	empty := BandCounts(telemetry.CanonicalSeries{}, DefaultThresholds())
	require.Len(t, empty, 3)
	assert.Zero(t, empty[0].Percent)
}

func TestLatest(t *testing.T) {
	r, ok := Latest(makeSeries(500, 1250), DefaultThresholds())
	require.True(t, ok)
	assert.Equal(t, 1250.0, r.Value)
	assert.Equal(t, BandUnhealthy, r.Band)

	_, ok = Latest(telemetry.CanonicalSeries{}, DefaultThresholds())
	assert.False(t, ok)
}

func TestAlertsAndFilters(t *testing.T) {
	s := makeSeries(900, 1000, 1100, 1000)

	assert.Equal(t, 1, AlertCount(s, 1000))
	assert.Equal(t, []float64{1100}, FilterAbove(s, 1000).Values())
	assert.Equal(t, []float64{900}, FilterBelow(s, 1000).Values())
	assert.Equal(t, 0, FilterAbove(s, 5000).Len())
	assert.Equal(t, 4, s.Len(), "filters leave the input untouched")
}
