package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestComputeSeriesHash(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ts := []time.Time{base, base.Add(time.Minute)}

	a := ComputeSeriesHash(ts, []float64{800, 1250})
	b := ComputeSeriesHash(ts, []float64{800, 1250})
	c := ComputeSeriesHash(ts, []float64{800, 1250.0000001})

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a.String(), 64)
}

func TestComputeSeriesHashOutsideNanosecondRange(t *testing.T) {
	// UnixNano is undefined this far out; both instants must still hash apart.
	early := time.Date(1500, 1, 1, 0, 0, 0, 0, time.UTC)
	late := time.Date(2600, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.NotEqual(t,
		ComputeSeriesHash([]time.Time{early}, []float64{1}),
		ComputeSeriesHash([]time.Time{late}, []float64{1}))
	assert.NotEqual(t,
		ComputeSeriesHash([]time.Time{early}, []float64{1}),
		ComputeSeriesHash([]time.Time{early.Add(time.Nanosecond)}, []float64{1}))
	assert.NotEqual(t,
		ComputeSeriesHash([]time.Time{time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC)}, []float64{1}),
		ComputeSeriesHash([]time.Time{time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)}, []float64{1}))
}

func TestTimeRange(t *testing.T) {
	a := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	b := a.Add(time.Hour)

	r := NewTimeRange(b, a)
	assert.Equal(t, a, r.Start)
	assert.Equal(t, time.Hour, r.Duration())
	assert.True(t, r.Contains(a.Add(30*time.Minute)))
	assert.False(t, r.Contains(b.Add(time.Nanosecond)))
	assert.Equal(t, "<empty>", TimeRange{}.String())
}
