package normalize

import (
	"fmt"

	"airsense/domain/telemetry"
)

// UnitThresholds are exclusive lower bounds on the median magnitude of an
// epoch column. They must be strictly decreasing from Nanos to Seconds.
type UnitThresholds struct {
	Nanos   float64 `json:"nanos"`
	Micros  float64 `json:"micros"`
	Millis  float64 `json:"millis"`
	Seconds float64 `json:"seconds"`
}

// DefaultUnitThresholds returns 1e17 / 1e14 / 1e11 / 1e9
func DefaultUnitThresholds() UnitThresholds {
	return UnitThresholds{
		Nanos:   1e17,
		Micros:  1e14,
		Millis:  1e11,
		Seconds: 1e9,
	}
}

// Validate checks the ordering of the bounds
func (u UnitThresholds) Validate() error {
	if !(u.Nanos > u.Micros && u.Micros > u.Millis && u.Millis > u.Seconds && u.Seconds > 0) {
		return fmt.Errorf("unit thresholds must be positive and strictly decreasing: ns=%g us=%g ms=%g s=%g",
			u.Nanos, u.Micros, u.Millis, u.Seconds)
	}
	return nil
}

// Classify maps a median magnitude to an epoch unit. Medians at or below the
// seconds bound still classify as seconds, with confident=false.
func (u UnitThresholds) Classify(median float64) (encoding telemetry.TimeEncoding, confident bool) {
	switch {
	case median > u.Nanos:
		return telemetry.EncodingEpochNanos, true
	case median > u.Micros:
		return telemetry.EncodingEpochMicros, true
	case median > u.Millis:
		return telemetry.EncodingEpochMillis, true
	case median > u.Seconds:
		return telemetry.EncodingEpochSeconds, true
	default:
		return telemetry.EncodingEpochSeconds, false
	}
}

// unitsPerSecond returns how many encoded ticks make one second
func unitsPerSecond(e telemetry.TimeEncoding) float64 {
	switch e {
	case telemetry.EncodingEpochNanos:
		return 1e9
	case telemetry.EncodingEpochMicros:
		return 1e6
	case telemetry.EncodingEpochMillis:
		return 1e3
	default:
		return 1
	}
}
