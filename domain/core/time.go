package core

import (
	"time"
)

// TimeRange is a closed interval of instants, as reported next to a series.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewTimeRange builds a range, swapping the bounds if they arrive reversed.
func NewTimeRange(start, end time.Time) TimeRange {
	if end.Before(start) {
		start, end = end, start
	}
	return TimeRange{Start: start, End: end}
}

// IsZero reports whether the range was never set
func (r TimeRange) IsZero() bool {
	return r.Start.IsZero() && r.End.IsZero()
}

// Duration returns End - Start
func (r TimeRange) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// Contains reports whether t lies inside the closed range
func (r TimeRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

func (r TimeRange) String() string {
	if r.IsZero() {
		return "<empty>"
	}
	return r.Start.Format(time.RFC3339Nano) + " / " + r.End.Format(time.RFC3339Nano)
}
