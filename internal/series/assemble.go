// Package series pairs normalized timestamps with coerced values into the
// canonical sorted series.
package series

import (
	"fmt"
	"math"
	"sort"

	"airsense/adapters/datareadiness/coercer"
	"airsense/domain/core"
	"airsense/domain/datareadiness/ingestion"
	"airsense/domain/telemetry"
	apperrors "airsense/internal/errors"
)

// Stats are the counters produced while assembling
type Stats struct {
	RowsTotal int
	RowsKept  int

	// Rows dropped because the timestamp was unresolved.
	DroppedInvalidTimestamp int

	// Rows with a timestamp but no usable value.
	DroppedInvalidValue int

	TimeRange core.TimeRange
}

// CoerceValues converts a raw value column to floats the way a lenient
// numeric cast does: anything that does not parse, NaN and ±Inf become absent.
func CoerceValues(cells []ingestion.Cell) []telemetry.OptionalFloat {
	out := make([]telemetry.OptionalFloat, len(cells))
	for i, cell := range cells {
		if v, ok := coercer.ToNumeric(cell); ok {
			out[i] = telemetry.SomeFloat(v)
		}
	}
	return out
}

// Assemble drops incomplete rows and sorts the rest ascending by timestamp.
// The sort is stable, so duplicate timestamps keep their row order. The
// inputs are not modified.
func Assemble(times []telemetry.OptionalTime, values []telemetry.OptionalFloat) (telemetry.CanonicalSeries, Stats, error) {
	if len(times) != len(values) {
		return telemetry.CanonicalSeries{}, Stats{}, apperrors.InvalidInput(
			fmt.Sprintf("timestamp and value columns differ in length: %d vs %d", len(times), len(values)))
	}

	stats := Stats{RowsTotal: len(times)}
	points := make([]telemetry.CanonicalPoint, 0, len(times))
	for i := range times {
		if !times[i].Valid {
			stats.DroppedInvalidTimestamp++
			continue
		}
		if !values[i].Valid || math.IsNaN(values[i].Value) || math.IsInf(values[i].Value, 0) {
			stats.DroppedInvalidValue++
			continue
		}
		points = append(points, telemetry.CanonicalPoint{Timestamp: times[i].Time, Value: values[i].Value})
	}

	if len(points) == 0 {
		return telemetry.CanonicalSeries{}, stats, apperrors.EmptyResult(fmt.Sprintf(
			"no valid rows remain: %d dropped for invalid timestamp, %d for invalid value",
			stats.DroppedInvalidTimestamp, stats.DroppedInvalidValue))
	}

	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Timestamp.Before(points[j].Timestamp)
	})

	result := telemetry.CanonicalSeries{Points: points}
	stats.RowsKept = len(points)
	stats.TimeRange = result.Range()
	return result, stats, nil
}
