// Package temporal resamples a canonical series onto an even time grid.
package temporal

import (
	"errors"
	"fmt"
	"math"
	"time"

	"airsense/domain/telemetry"

	"github.com/montanaflynn/stats"
)

// ResolutionInterval is the spacing of the output grid
type ResolutionInterval string

const (
	IntervalMinute ResolutionInterval = "minute"
	IntervalHour   ResolutionInterval = "hour"
	IntervalDay    ResolutionInterval = "day"
	IntervalWeek   ResolutionInterval = "week"
)

// Duration returns the time.Duration for this interval
func (r ResolutionInterval) Duration() time.Duration {
	switch r {
	case IntervalMinute:
		return time.Minute
	case IntervalHour:
		return time.Hour
	case IntervalDay:
		return 24 * time.Hour
	case IntervalWeek:
		return 7 * 24 * time.Hour
	default:
		return time.Hour
	}
}

// ParseInterval accepts the names above
func ParseInterval(s string) (ResolutionInterval, error) {
	switch r := ResolutionInterval(s); r {
	case IntervalMinute, IntervalHour, IntervalDay, IntervalWeek:
		return r, nil
	}
	return "", fmt.Errorf("unknown resample interval %q", s)
}

// FillStrategy defines how to handle empty buckets
type FillStrategy string

const (
	FillZero    FillStrategy = "zero"
	FillForward FillStrategy = "forward" // last observed bucket
)

// AggregationFunc defines how readings in one bucket are combined
type AggregationFunc string

const (
	AggMean  AggregationFunc = "mean"
	AggMax   AggregationFunc = "max"
	AggMin   AggregationFunc = "min"
	AggCount AggregationFunc = "count"
)

// DefaultMaxBuckets bounds the grid; about eleven years of hours.
const DefaultMaxBuckets = 100_000

// ErrTooManyBuckets is returned when the series spans more grid slots than
// the configured maximum.
var ErrTooManyBuckets = errors.New("resample grid too large")

// ResampleConfig controls the resampling behavior
type ResampleConfig struct {
	Interval      ResolutionInterval
	FillMissing   FillStrategy
	AggregateFunc AggregationFunc

	// Zero means DefaultMaxBuckets.
	MaxBuckets int
}

// DefaultResampleConfig is an hourly mean with forward fill
func DefaultResampleConfig() ResampleConfig {
	return ResampleConfig{
		Interval:      IntervalHour,
		FillMissing:   FillForward,
		AggregateFunc: AggMean,
		MaxBuckets:    DefaultMaxBuckets,
	}
}

// Bucket is one grid slot
type Bucket struct {
	Start    time.Time `json:"start"`
	Value    float64   `json:"value"`
	Count    int       `json:"count"`
	Observed bool      `json:"observed"`
}

// Resampled is a series on an even grid
type Resampled struct {
	Interval ResolutionInterval `json:"interval"`
	Buckets  []Bucket           `json:"buckets"`
}

// GapRatio is the share of buckets that had no reading and were filled
func (r *Resampled) GapRatio() float64 {
	if len(r.Buckets) == 0 {
		return 1.0
	}
	missing := 0
	for _, b := range r.Buckets {
		if !b.Observed {
			missing++
		}
	}
	return float64(missing) / float64(len(r.Buckets))
}

// Values returns the bucket values in grid order
func (r *Resampled) Values() []float64 {
	out := make([]float64, len(r.Buckets))
	for i, b := range r.Buckets {
		out[i] = b.Value
	}
	return out
}

// Resample aggregates the series onto the grid spanning its first and last
// reading. Points must be sorted ascending, which a CanonicalSeries is.
func Resample(series telemetry.CanonicalSeries, config ResampleConfig) (*Resampled, error) {
	if series.Len() == 0 {
		return nil, fmt.Errorf("cannot resample an empty series")
	}
	if config.Interval == "" {
		config.Interval = IntervalHour
	}
	if config.AggregateFunc == "" {
		config.AggregateFunc = AggMean
	}
	if config.FillMissing == "" {
		config.FillMissing = FillForward
	}
	if config.MaxBuckets <= 0 {
		config.MaxBuckets = DefaultMaxBuckets
	}

	points := series.Points
	first := truncateToInterval(points[0].Timestamp, config.Interval)
	n := bucketCount(first, points[len(points)-1].Timestamp, config.Interval)
	if n > int64(config.MaxBuckets) {
		return nil, fmt.Errorf("%w: %s to %s needs %d %s buckets, limit is %d", ErrTooManyBuckets,
			points[0].Timestamp.Format(time.RFC3339), points[len(points)-1].Timestamp.Format(time.RFC3339),
			n, config.Interval, config.MaxBuckets)
	}
	out := &Resampled{Interval: config.Interval, Buckets: make([]Bucket, n)}

	step := config.Interval.Duration()
	next := 0
	var last float64
	start := first
	for i := range out.Buckets {
		end := start.Add(step)
		var bucket []float64
		for next < len(points) && points[next].Timestamp.Before(end) {
			bucket = append(bucket, points[next].Value)
			next++
		}

		b := Bucket{Start: start, Count: len(bucket)}
		switch {
		case len(bucket) > 0:
			b.Observed = true
			b.Value = aggregate(bucket, config.AggregateFunc)
			last = b.Value
		case config.FillMissing == FillForward:
			// the first bucket always holds the first reading
			b.Value = last
		}
		out.Buckets[i] = b
		start = end
	}
	return out, nil
}

// bucketCount is the number of grid slots from first through end. It works
// in whole seconds so spans beyond time.Duration's range stay exact.
func bucketCount(first, end time.Time, interval ResolutionInterval) int64 {
	span := end.Unix() - first.Unix()
	if span < 0 {
		return 1
	}
	return span/int64(interval.Duration()/time.Second) + 1
}

// truncateToInterval rounds down to the bucket boundary in UTC
func truncateToInterval(t time.Time, interval ResolutionInterval) time.Time {
	t = t.UTC()
	switch interval {
	case IntervalMinute:
		return t.Truncate(time.Minute)
	case IntervalHour:
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, time.UTC)
	case IntervalDay:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	case IntervalWeek:
		// weeks start on Monday
		weekday := int(t.Weekday())
		if weekday == 0 {
			weekday = 7
		}
		monday := t.AddDate(0, 0, -(weekday - 1))
		return time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, time.UTC)
	default:
		return t
	}
}

func aggregate(values []float64, fn AggregationFunc) float64 {
	var (
		v   float64
		err error
	)
	switch fn {
	case AggCount:
		return float64(len(values))
	case AggMax:
		v, err = stats.Max(values)
	case AggMin:
		v, err = stats.Min(values)
	default:
		v, err = stats.Mean(values)
	}
	if err != nil {
		return math.NaN()
	}
	return v
}
