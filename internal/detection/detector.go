// Package detection locates the time and value columns of a sensor export
// whose header is not known in advance.
//
// Each role is resolved by an ordered cascade of tiers. A tier is a pure
// function over the column profiles; the first tier that picks a column wins,
// so reordering the slices below changes detection output.
package detection

import (
	"regexp"
	"strings"

	"airsense/adapters/datareadiness"
	"airsense/adapters/datareadiness/coercer"
	"airsense/domain/datareadiness/ingestion"
	"airsense/domain/datareadiness/profiling"
	"airsense/domain/telemetry"
)

// DefaultTimeAliases is the exact-name priority list for the time column.
var DefaultTimeAliases = []string{
	"_time", "Time", "time", "timestamp", "Timestamp",
	"date", "Date", "datetime", "DateTime", "_timestamp", "_start",
}

// DefaultValueAliases is the exact-name priority list for the value column.
var DefaultValueAliases = []string{
	"_value", "value", "val", "variable", "mean",
	"field_value", "measurement_value", "reading",
}

// isoFragment is deliberately loose: date, literal T, hour and minute.
var isoFragment = regexp.MustCompile(`\d{4}-\d{2}-\d{2}T\d{2}:\d{2}`)

// DetectorConfig holds the knobs of the cascade
type DetectorConfig struct {
	// Leading non-null values inspected by the ISO content tier.
	SampleSize int `json:"sample_size"`

	// Leading non-null values that must coerce for the text fallback tier.
	ProbeSize int `json:"probe_size"`

	// Median magnitude a numeric column must exceed to pass as an epoch.
	EpochMinMagnitude float64 `json:"epoch_min_magnitude"`

	TimeAliases  []string `json:"time_aliases"`
	ValueAliases []string `json:"value_aliases"`
}

// DefaultDetectorConfig returns the stock cascade settings
func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{
		SampleSize:        20,
		ProbeSize:         5,
		EpochMinMagnitude: 1e9,
		TimeAliases:       DefaultTimeAliases,
		ValueAliases:      DefaultValueAliases,
	}
}

// tier picks a column index from the profiles, or reports no match.
type tier struct {
	name telemetry.DetectionTier
	pick func(table *ingestion.RawTable, profiles []profiling.ColumnProfile, exclude string) (int, bool)
}

// Detector runs the time and value cascades
type Detector struct {
	config     DetectorConfig
	profiler   *datareadiness.ProfilerAdapter
	timeTiers  []tier
	valueTiers []tier
}

// NewDetector builds a detector; zero-valued fields fall back to defaults.
func NewDetector(config DetectorConfig) *Detector {
	defaults := DefaultDetectorConfig()
	if config.SampleSize <= 0 {
		config.SampleSize = defaults.SampleSize
	}
	if config.ProbeSize <= 0 {
		config.ProbeSize = defaults.ProbeSize
	}
	if config.EpochMinMagnitude <= 0 {
		config.EpochMinMagnitude = defaults.EpochMinMagnitude
	}
	if len(config.TimeAliases) == 0 {
		config.TimeAliases = defaults.TimeAliases
	}
	if len(config.ValueAliases) == 0 {
		config.ValueAliases = defaults.ValueAliases
	}

	d := &Detector{
		config:   config,
		profiler: datareadiness.NewProfilerAdapter(profiling.ProfilingConfig{SampleSize: config.SampleSize}),
	}
	d.timeTiers = []tier{
		{telemetry.TierAlias, aliasTier(config.TimeAliases)},
		{telemetry.TierSubstring, substringTier("time")},
		{telemetry.TierISOContent, isoContentTier},
		{telemetry.TierEpochMagnitude, epochMagnitudeTier(config.EpochMinMagnitude)},
	}
	d.valueTiers = []tier{
		{telemetry.TierAlias, aliasTier(config.ValueAliases)},
		{telemetry.TierMostPopulated, mostPopulatedNumericTier},
		{telemetry.TierCoercible, coercibleTextTier(config.ProbeSize)},
	}
	return d
}

// Config returns the effective configuration
func (d *Detector) Config() DetectorConfig { return d.config }

// Detect resolves both roles. The value search never considers the chosen
// time column.
func (d *Detector) Detect(table *ingestion.RawTable) telemetry.DetectionResult {
	profiles := d.profiler.ProfileTable(table)

	var result telemetry.DetectionResult
	result.TimeColumn, result.TimeTier = run(d.timeTiers, table, profiles, "")
	result.ValueColumn, result.ValueTier = run(d.valueTiers, table, profiles, result.TimeColumn)
	return result
}

// DetectTime resolves only the time role, never picking exclude
func (d *Detector) DetectTime(table *ingestion.RawTable, exclude string) (string, telemetry.DetectionTier) {
	return run(d.timeTiers, table, d.profiler.ProfileTable(table), exclude)
}

// DetectValue resolves only the value role, never picking exclude
func (d *Detector) DetectValue(table *ingestion.RawTable, exclude string) (string, telemetry.DetectionTier) {
	return run(d.valueTiers, table, d.profiler.ProfileTable(table), exclude)
}

func run(tiers []tier, table *ingestion.RawTable, profiles []profiling.ColumnProfile, exclude string) (string, telemetry.DetectionTier) {
	for _, t := range tiers {
		if idx, ok := t.pick(table, profiles, exclude); ok {
			return profiles[idx].Name, t.name
		}
	}
	return "", telemetry.TierNone
}

func excluded(p profiling.ColumnProfile, exclude string) bool {
	return exclude != "" && p.Name == exclude
}

// aliasTier matches names exactly, in alias-list order.
func aliasTier(aliases []string) func(*ingestion.RawTable, []profiling.ColumnProfile, string) (int, bool) {
	return func(_ *ingestion.RawTable, profiles []profiling.ColumnProfile, exclude string) (int, bool) {
		for _, alias := range aliases {
			for i, p := range profiles {
				if p.Name == alias && !excluded(p, exclude) {
					return i, true
				}
			}
		}
		return 0, false
	}
}

// substringTier picks the leftmost column whose name contains needle, ignoring case.
func substringTier(needle string) func(*ingestion.RawTable, []profiling.ColumnProfile, string) (int, bool) {
	needle = strings.ToLower(needle)
	return func(_ *ingestion.RawTable, profiles []profiling.ColumnProfile, exclude string) (int, bool) {
		for i, p := range profiles {
			if !excluded(p, exclude) && strings.Contains(strings.ToLower(p.Name), needle) {
				return i, true
			}
		}
		return 0, false
	}
}

// isoContentTier picks the leftmost column with any sampled value that looks
// like an ISO-8601 date-time.
func isoContentTier(_ *ingestion.RawTable, profiles []profiling.ColumnProfile, exclude string) (int, bool) {
	for i, p := range profiles {
		if excluded(p, exclude) {
			continue
		}
		for _, s := range p.Sample {
			if isoFragment.MatchString(s) {
				return i, true
			}
		}
	}
	return 0, false
}

// epochMagnitudeTier picks the leftmost numeric column whose median magnitude
// exceeds floor.
func epochMagnitudeTier(floor float64) func(*ingestion.RawTable, []profiling.ColumnProfile, string) (int, bool) {
	return func(_ *ingestion.RawTable, profiles []profiling.ColumnProfile, exclude string) (int, bool) {
		for i, p := range profiles {
			if !excluded(p, exclude) && p.Numeric && p.MedianMagnitude > floor {
				return i, true
			}
		}
		return 0, false
	}
}

// mostPopulatedNumericTier picks the numeric column with the most non-null
// cells; the strict comparison keeps the leftmost on ties.
func mostPopulatedNumericTier(_ *ingestion.RawTable, profiles []profiling.ColumnProfile, exclude string) (int, bool) {
	best, bestCount := -1, 0
	for i, p := range profiles {
		if excluded(p, exclude) || !p.Numeric {
			continue
		}
		if p.NonNullCount > bestCount {
			best, bestCount = i, p.NonNullCount
		}
	}
	return best, best >= 0
}

// coercibleTextTier picks the leftmost text column whose leading probe
// values all coerce to numbers.
func coercibleTextTier(probe int) func(*ingestion.RawTable, []profiling.ColumnProfile, string) (int, bool) {
	return func(table *ingestion.RawTable, profiles []profiling.ColumnProfile, exclude string) (int, bool) {
		for i, p := range profiles {
			if excluded(p, exclude) || p.Numeric {
				continue
			}
			head := table.Columns[p.Index].LeadingNonNull(probe)
			if len(head) == 0 {
				continue
			}
			ok := true
			for _, cell := range head {
				if _, isNum := coercer.ToNumeric(cell); !isNum {
					ok = false
					break
				}
			}
			if ok {
				return i, true
			}
		}
		return 0, false
	}
}
