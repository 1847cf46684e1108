package main

import (
	"encoding/json"
	"fmt"
	"io"

	"airsense/adapters/excel"
	"airsense/adapters/stats/temporal"
	"airsense/domain/datareadiness/ingestion"
	"airsense/internal/airquality"
	"airsense/internal/config"
	apperrors "airsense/internal/errors"
	"airsense/internal/pipeline"
)

func runPipeline(cfg *config.Config, path string, override pipeline.ColumnOverride) (*pipeline.Result, *ingestion.RawTable, error) {
	table, err := excel.NewDataReader(excel.DefaultReaderConfig()).ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	result, err := pipeline.NewPipeline(cfg.Detection, cfg.Normalization).Run(table, override)
	return result, table, err
}

func analyze(cfg *config.Config, result *pipeline.Result, alert *float64, interval string) (*airquality.Analysis, error) {
	analyzer, err := airquality.NewAnalyzer(cfg.AirQuality)
	if err != nil {
		return nil, err
	}
	opts := airquality.Options{AlertThreshold: alert}
	if interval != "" {
		iv, err := temporal.ParseInterval(interval)
		if err != nil {
			return nil, apperrors.WithCode(apperrors.CodeInvalidInput, err)
		}
		opts.Resample = temporal.DefaultResampleConfig()
		opts.Resample.Interval = iv
	}
	return analyzer.Analyze(result.Series, opts)
}

func printInspection(w io.Writer, r *pipeline.Result) {
	d := r.Diagnostics
	fmt.Fprintf(w, "Run:          %s\n", r.RunID)
	fmt.Fprintf(w, "Source:       %s\n", r.Source)
	fmt.Fprintf(w, "Time column:  %s (%s)\n", r.Detection.TimeColumn, r.Detection.TimeTier)
	fmt.Fprintf(w, "Value column: %s (%s)\n", r.Detection.ValueColumn, r.Detection.ValueTier)
	fmt.Fprintf(w, "Encoding:     %s via %s", d.Encoding, d.Strategy)
	if d.RetryUsed {
		fmt.Fprint(w, " (after retry)")
	}
	fmt.Fprintln(w)
	if d.LowConfidence {
		fmt.Fprintf(w, "              low confidence, epoch median %.0f\n", d.EpochMedian)
	}
	fmt.Fprintf(w, "Rows:         %d kept of %d\n", d.RowsKept, d.RowsTotal)
	fmt.Fprintf(w, "Range:        %s\n", d.TimeRange)
	fmt.Fprintf(w, "Fingerprint:  %s\n", r.Fingerprint)
	for _, warn := range r.Warnings {
		fmt.Fprintf(w, "⚠ %s\n", warn.Message)
	}
	if len(d.OffendingSamples) > 0 {
		fmt.Fprintf(w, "Unreadable timestamps, e.g.: %v\n", d.OffendingSamples)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
