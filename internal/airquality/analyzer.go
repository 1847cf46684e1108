package airquality

import (
	"errors"
	"time"

	"airsense/adapters/stats/temporal"
	"airsense/domain/telemetry"
	apperrors "airsense/internal/errors"
)

// Analysis is the full interpretation of one series
type Analysis struct {
	Thresholds     Thresholds          `json:"thresholds"`
	Latest         Reading             `json:"latest"`
	Summary        Summary             `json:"summary"`
	Bands          []BandCount         `json:"bands"`
	Hourly         *temporal.Resampled `json:"hourly"`
	AlertThreshold float64             `json:"alert_threshold"`
	Alerts         int                 `json:"alerts"`
	Start          time.Time           `json:"start"`
	End            time.Time           `json:"end"`
}

// Options tweak a single analysis
type Options struct {
	// Nil means halfway between the band edges.
	AlertThreshold *float64
	Resample       temporal.ResampleConfig
}

// Analyzer holds the band thresholds
type Analyzer struct {
	thresholds Thresholds
}

// NewAnalyzer validates the thresholds
func NewAnalyzer(thresholds Thresholds) (*Analyzer, error) {
	if err := thresholds.Validate(); err != nil {
		return nil, apperrors.WithCode(apperrors.CodeConfigInvalid, err)
	}
	return &Analyzer{thresholds: thresholds}, nil
}

// Thresholds returns the configured band edges
func (a *Analyzer) Thresholds() Thresholds { return a.thresholds }

// Analyze computes every view of the series
func (a *Analyzer) Analyze(series telemetry.CanonicalSeries, opts Options) (*Analysis, error) {
	latest, ok := Latest(series, a.thresholds)
	if !ok {
		return nil, apperrors.EmptyResult("nothing to analyze: the series is empty")
	}

	alert := a.thresholds.DefaultAlertThreshold()
	if opts.AlertThreshold != nil {
		alert = *opts.AlertThreshold
	}
	if opts.Resample == (temporal.ResampleConfig{}) {
		opts.Resample = temporal.DefaultResampleConfig()
	}
	hourly, err := temporal.Resample(series, opts.Resample)
	if errors.Is(err, temporal.ErrTooManyBuckets) {
		return nil, apperrors.WithCode(apperrors.CodeInvalidInput,
			apperrors.Wrap(err, "the readings span too long for this interval; pick a coarser one or check for stray timestamps"))
	}
	if err != nil {
		return nil, apperrors.Wrap(err, "resample failed")
	}

	r := series.Range()
	return &Analysis{
		Thresholds:     a.thresholds,
		Latest:         latest,
		Summary:        Describe(series.Values()),
		Bands:          BandCounts(series, a.thresholds),
		Hourly:         hourly,
		AlertThreshold: alert,
		Alerts:         AlertCount(series, alert),
		Start:          r.Start,
		End:            r.End,
	}, nil
}
