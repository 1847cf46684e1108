package telemetry

import (
	"fmt"

	"airsense/domain/core"
)

// ParseStrategy records which time parsing path produced the timestamps
type ParseStrategy string

const (
	StrategyNone           ParseStrategy = ""
	StrategyInferredLayout ParseStrategy = "inferred_layout"
	StrategyPerValue       ParseStrategy = "per_value"
	StrategyEpoch          ParseStrategy = "epoch"
)

// Diagnostics are the counters reported next to a series
type Diagnostics struct {
	RowsTotal int `json:"rows_total"`
	RowsKept  int `json:"rows_kept"`

	// Rows whose timestamp stayed unresolved (unparsable or missing).
	DroppedInvalidTimestamp int `json:"dropped_invalid_timestamp"`

	// Rows with a valid timestamp whose value failed numeric coercion.
	DroppedInvalidValue int `json:"dropped_invalid_value"`

	Encoding      TimeEncoding  `json:"encoding"`
	Strategy      ParseStrategy `json:"strategy,omitempty"`
	RetryUsed     bool          `json:"retry_used"`
	LowConfidence bool          `json:"low_confidence"`
	EpochMedian   float64       `json:"epoch_median,omitempty"`

	TimeRange core.TimeRange `json:"time_range"`

	// Leading raw time values that failed to parse, for user feedback.
	OffendingSamples []string `json:"offending_samples,omitempty"`
}

// Dropped returns the total number of excluded rows
func (d Diagnostics) Dropped() int {
	return d.DroppedInvalidTimestamp + d.DroppedInvalidValue
}

// WarningKind classifies non-fatal conditions
type WarningKind string

const WarningPartialDataLoss WarningKind = "partial_data_loss"

// Warning is a non-fatal diagnostic carried alongside a successful result
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Message string      `json:"message"`
	Count   int         `json:"count"`
}

// Warnings derives the warning list from the counters
func (d Diagnostics) Warnings() []Warning {
	var out []Warning
	if d.DroppedInvalidTimestamp > 0 {
		out = append(out, Warning{
			Kind:    WarningPartialDataLoss,
			Message: fmt.Sprintf("%d rows dropped: invalid timestamp", d.DroppedInvalidTimestamp),
			Count:   d.DroppedInvalidTimestamp,
		})
	}
	if d.DroppedInvalidValue > 0 {
		out = append(out, Warning{
			Kind:    WarningPartialDataLoss,
			Message: fmt.Sprintf("%d rows dropped: invalid value", d.DroppedInvalidValue),
			Count:   d.DroppedInvalidValue,
		})
	}
	return out
}
