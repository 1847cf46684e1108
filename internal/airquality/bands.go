// Package airquality interprets a canonical CO2 series: comfort bands,
// summary statistics, hourly profile, alerts and filters.
package airquality

import (
	"fmt"

	"airsense/domain/telemetry"
)

// Band is a CO2 comfort class
type Band string

const (
	BandHealthy   Band = "healthy"
	BandWarning   Band = "warning"
	BandUnhealthy Band = "unhealthy"
)

// Label is the human-readable band name used in reports
func (b Band) Label() string {
	switch b {
	case BandHealthy:
		return "Healthy air"
	case BandWarning:
		return "Warning"
	case BandUnhealthy:
		return "Unhealthy"
	}
	return string(b)
}

// Thresholds are the band edges in ppm. A reading equal to an edge falls in
// the lower band.
type Thresholds struct {
	Good float64 `json:"good"`
	Warn float64 `json:"warn"`
}

// DefaultThresholds are the common indoor CO2 guidance values
func DefaultThresholds() Thresholds {
	return Thresholds{Good: 800, Warn: 1200}
}

// Validate checks 0 < Good < Warn
func (t Thresholds) Validate() error {
	if t.Good <= 0 || t.Warn <= t.Good {
		return fmt.Errorf("band thresholds must satisfy 0 < good < warn, got good=%g warn=%g", t.Good, t.Warn)
	}
	return nil
}

// Classify places a reading in its band
func (t Thresholds) Classify(v float64) Band {
	switch {
	case v > t.Warn:
		return BandUnhealthy
	case v > t.Good:
		return BandWarning
	default:
		return BandHealthy
	}
}

// DefaultAlertThreshold sits halfway between the band edges
func (t Thresholds) DefaultAlertThreshold() float64 {
	return (t.Good + t.Warn) / 2
}

// BandCount is the share of readings in one band
type BandCount struct {
	Band    Band    `json:"band"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// BandCounts tallies the series per band, worst band first
func BandCounts(series telemetry.CanonicalSeries, t Thresholds) []BandCount {
	counts := map[Band]int{}
	for _, p := range series.Points {
		counts[t.Classify(p.Value)]++
	}

	total := series.Len()
	out := make([]BandCount, 0, 3)
	for _, b := range []Band{BandUnhealthy, BandWarning, BandHealthy} {
		bc := BandCount{Band: b, Count: counts[b]}
		if total > 0 {
			bc.Percent = float64(bc.Count) / float64(total) * 100
		}
		out = append(out, bc)
	}
	return out
}

// Reading is one point with its band
type Reading struct {
	telemetry.CanonicalPoint
	Band Band `json:"band"`
}

// Latest returns the most recent reading. For equal timestamps the last row
// in file order wins.
func Latest(series telemetry.CanonicalSeries, t Thresholds) (Reading, bool) {
	p, ok := series.Latest()
	if !ok {
		return Reading{}, false
	}
	return Reading{CanonicalPoint: p, Band: t.Classify(p.Value)}, true
}

// AlertCount counts readings strictly above threshold
func AlertCount(series telemetry.CanonicalSeries, threshold float64) int {
	n := 0
	for _, p := range series.Points {
		if p.Value > threshold {
			n++
		}
	}
	return n
}

// FilterAbove keeps readings strictly above min
func FilterAbove(series telemetry.CanonicalSeries, min float64) telemetry.CanonicalSeries {
	return filter(series, func(v float64) bool { return v > min })
}

// FilterBelow keeps readings strictly below max
func FilterBelow(series telemetry.CanonicalSeries, max float64) telemetry.CanonicalSeries {
	return filter(series, func(v float64) bool { return v < max })
}

func filter(series telemetry.CanonicalSeries, keep func(float64) bool) telemetry.CanonicalSeries {
	out := make([]telemetry.CanonicalPoint, 0, series.Len())
	for _, p := range series.Points {
		if keep(p.Value) {
			out = append(out, p)
		}
	}
	return telemetry.CanonicalSeries{Points: out}
}
