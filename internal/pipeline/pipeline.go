// Package pipeline runs detection, time normalization and series assembly
// over one raw table.
package pipeline

import (
	"errors"
	"fmt"
	"log"

	"airsense/domain/core"
	"airsense/domain/datareadiness/ingestion"
	"airsense/domain/telemetry"
	"airsense/internal/detection"
	apperrors "airsense/internal/errors"
	"airsense/internal/normalize"
	"airsense/internal/series"
)

// ColumnOverride pins one or both roles to named columns
type ColumnOverride struct {
	TimeColumn  string `json:"time_column,omitempty"`
	ValueColumn string `json:"value_column,omitempty"`
}

// IsZero reports whether no column is pinned
func (o ColumnOverride) IsZero() bool {
	return o.TimeColumn == "" && o.ValueColumn == ""
}

// Options configures a single run
type Options struct {
	Override      ColumnOverride
	Detection     detection.DetectorConfig
	Normalization normalize.Config
}

// Result is everything a run produced. It is returned next to an error too,
// filled as far as the run got, so callers can show the detection outcome
// and ask for a manual column choice.
type Result struct {
	RunID       core.RunID                `json:"run_id"`
	Source      string                    `json:"source,omitempty"`
	Detection   telemetry.DetectionResult `json:"detection"`
	Series      telemetry.CanonicalSeries `json:"series"`
	Diagnostics telemetry.Diagnostics     `json:"diagnostics"`
	Warnings    []telemetry.Warning       `json:"warnings,omitempty"`
	Fingerprint core.SeriesHash           `json:"fingerprint,omitempty"`
}

// Pipeline holds the configured stages. It keeps no per-run state and is
// safe for concurrent use.
type Pipeline struct {
	detector   *detection.Detector
	normalizer *normalize.Normalizer
}

// NewPipeline wires the stages from their configs
func NewPipeline(detectionConfig detection.DetectorConfig, normalizeConfig normalize.Config) *Pipeline {
	return &Pipeline{
		detector:   detection.NewDetector(detectionConfig),
		normalizer: normalize.NewNormalizer(normalizeConfig),
	}
}

// Run is a one-shot helper around NewPipeline and Pipeline.Run
func Run(table *ingestion.RawTable, opts Options) (*Result, error) {
	return NewPipeline(opts.Detection, opts.Normalization).Run(table, opts.Override)
}

// Run turns the table into a canonical series
func (p *Pipeline) Run(table *ingestion.RawTable, override ColumnOverride) (*Result, error) {
	result := &Result{RunID: core.NewRunID()}
	if table == nil {
		return result, apperrors.InvalidInput("no table supplied")
	}
	result.Source = table.Source
	if err := table.Validate(); err != nil {
		return result, apperrors.WithCode(apperrors.CodeInvalidInput, err)
	}

	det, err := p.resolveColumns(table, override)
	result.Detection = det
	if err != nil {
		log.Printf("[Pipeline] %s: column resolution failed: %v", result.RunID, err)
		return result, err
	}
	log.Printf("[Pipeline] %s: time=%q (%s) value=%q (%s)",
		result.RunID, det.TimeColumn, tierName(det.TimeTier), det.ValueColumn, tierName(det.ValueTier))

	diag := telemetry.Diagnostics{RowsTotal: table.RowCount()}
	if table.RowCount() == 0 {
		result.Diagnostics = diag
		return result, apperrors.EmptyResult("the table has a header but no data rows")
	}

	timeCol, _ := table.Column(det.TimeColumn)
	valueCol, _ := table.Column(det.ValueColumn)

	norm, err := p.normalizer.Normalize(timeCol.Cells)
	diag.Encoding = norm.Encoding
	diag.Strategy = norm.Strategy
	diag.RetryUsed = norm.Retried
	diag.LowConfidence = norm.LowConfidence
	diag.EpochMedian = norm.EpochMedian
	diag.OffendingSamples = norm.OffendingSamples
	if err != nil {
		diag.DroppedInvalidTimestamp = diag.RowsTotal
		result.Diagnostics = diag
		log.Printf("[Pipeline] %s: time column %q unreadable: %v", result.RunID, det.TimeColumn, err)
		return result, apperrors.UnparsableTimeEncoding(det.TimeColumn, err)
	}
	if norm.LowConfidence {
		log.Printf("[Pipeline] %s: epoch median %.0f is small for a seconds timestamp", result.RunID, norm.EpochMedian)
	}

	values := series.CoerceValues(valueCol.Cells)
	s, stats, err := series.Assemble(norm.Times, values)
	diag.RowsKept = stats.RowsKept
	diag.DroppedInvalidTimestamp = stats.DroppedInvalidTimestamp
	diag.DroppedInvalidValue = stats.DroppedInvalidValue
	diag.TimeRange = stats.TimeRange
	result.Diagnostics = diag
	result.Warnings = diag.Warnings()
	if err != nil {
		log.Printf("[Pipeline] %s: %v", result.RunID, err)
		return result, err
	}

	result.Series = s
	result.Fingerprint = s.Hash()
	log.Printf("[Pipeline] %s: kept %d of %d rows (%s, %s)",
		result.RunID, diag.RowsKept, diag.RowsTotal, diag.Encoding, diag.TimeRange)
	return result, nil
}

// resolveColumns applies the override and lets detection fill whatever is
// left open.
func (p *Pipeline) resolveColumns(table *ingestion.RawTable, override ColumnOverride) (telemetry.DetectionResult, error) {
	var det telemetry.DetectionResult

	for _, name := range []string{override.TimeColumn, override.ValueColumn} {
		if name == "" {
			continue
		}
		if _, ok := table.Column(name); !ok {
			return det, apperrors.WithCode(apperrors.CodeInvalidInput, core.NewColumnNotFoundError(name))
		}
	}
	if override.TimeColumn != "" && override.TimeColumn == override.ValueColumn {
		return det, apperrors.InvalidInput(fmt.Sprintf("column %q cannot be both time and value", override.TimeColumn))
	}

	if override.TimeColumn != "" {
		det.TimeColumn, det.TimeTier = override.TimeColumn, telemetry.TierOverride
	} else {
		det.TimeColumn, det.TimeTier = p.detector.DetectTime(table, override.ValueColumn)
	}

	if override.ValueColumn != "" {
		det.ValueColumn, det.ValueTier = override.ValueColumn, telemetry.TierOverride
	} else {
		det.ValueColumn, det.ValueTier = p.detector.DetectValue(table, det.TimeColumn)
	}

	if !det.Complete() {
		return det, apperrors.AmbiguousSchema(!det.HasTime(), !det.HasValue())
	}
	return det, nil
}

func tierName(t telemetry.DetectionTier) string {
	if t == telemetry.TierNone {
		return "none"
	}
	return string(t)
}

// IsRecoverable reports whether the user can fix the failure by picking
// columns by hand.
func IsRecoverable(err error) bool {
	return errors.Is(err, core.ErrAmbiguousSchema) || errors.Is(err, core.ErrUnparsableTimeEncoding)
}
