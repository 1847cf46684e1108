// Package normalize turns a raw time column into absolute UTC instants.
//
// The encoding is decided once per column: ISO-8601 text if any value matches
// one of the ISO layouts, otherwise a numeric epoch whose unit follows from
// the median magnitude. A column never mixes units. Mostly unreadable text
// columns get one more try under the single locale layout that fits best.
package normalize

import (
	"fmt"
	"math"
	"strings"
	"time"

	"airsense/adapters/datareadiness/coercer"
	"airsense/domain/core"
	"airsense/domain/datareadiness/ingestion"
	"airsense/domain/telemetry"

	"github.com/montanaflynn/stats"
)

// Config controls the normalizer
type Config struct {
	Thresholds UnitThresholds `json:"thresholds"`

	// Valid fraction below which the single-layout parse is attempted once.
	RetryFraction float64 `json:"retry_fraction"`

	// Number of failing raw values quoted back to the user.
	OffendingSampleSize int `json:"offending_sample_size"`

	Coercion coercer.CoercionConfig `json:"-"`
}

// DefaultConfig returns the stock normalizer settings
func DefaultConfig() Config {
	return Config{
		Thresholds:          DefaultUnitThresholds(),
		RetryFraction:       0.5,
		OffendingSampleSize: 5,
		Coercion:            coercer.DefaultCoercionConfig(),
	}
}

// Result is the outcome of normalizing one column. Times is index-aligned
// with the input cells.
type Result struct {
	Times    []telemetry.OptionalTime
	Encoding telemetry.TimeEncoding
	Strategy telemetry.ParseStrategy

	// Non-null values that did not parse.
	Failures int
	// Null cells.
	Missing int

	// True when the single-layout retry was attempted, adopted or not.
	Retried bool

	// Epoch medians at or below the seconds bound.
	LowConfidence bool
	EpochMedian   float64

	OffendingSamples []string
}

// ValidCount returns the number of resolved timestamps
func (r Result) ValidCount() int {
	n := 0
	for _, t := range r.Times {
		if t.Valid {
			n++
		}
	}
	return n
}

// ValidFraction is resolved timestamps over non-null cells
func (r Result) ValidFraction() float64 {
	nonNull := len(r.Times) - r.Missing
	if nonNull <= 0 {
		return 0
	}
	return float64(r.ValidCount()) / float64(nonNull)
}

// Normalizer converts raw time columns
type Normalizer struct {
	config  Config
	coercer *coercer.TypeCoercer
}

// NewNormalizer builds a normalizer; zero-valued fields fall back to defaults.
func NewNormalizer(config Config) *Normalizer {
	defaults := DefaultConfig()
	if config.Thresholds == (UnitThresholds{}) {
		config.Thresholds = defaults.Thresholds
	}
	if config.RetryFraction <= 0 {
		config.RetryFraction = defaults.RetryFraction
	}
	if config.OffendingSampleSize <= 0 {
		config.OffendingSampleSize = defaults.OffendingSampleSize
	}
	return &Normalizer{config: config, coercer: coercer.NewTypeCoercer(config.Coercion)}
}

// Normalize decides the column encoding and converts every cell. It fails
// only when no cell at all resolves; partial failures are counted instead.
func (n *Normalizer) Normalize(cells []ingestion.Cell) (Result, error) {
	res := n.parseISO(cells)
	if res.ValidCount() == 0 {
		res = n.parseEpoch(cells)
	}

	if res.ValidFraction() < n.config.RetryFraction && hasText(cells) {
		retry := n.parseSingleLayout(cells)
		retry.Retried = true
		if retry.ValidCount() > res.ValidCount() {
			res = retry
		} else {
			res.Retried = true
		}
	}

	res.OffendingSamples = n.offending(cells, res.Times)

	if res.ValidCount() == 0 {
		res.Encoding = telemetry.EncodingUnknown
		return res, fmt.Errorf("%w: no value could be read as a date-time or epoch (samples: %s)",
			core.ErrUnparsableTimeEncoding, strings.Join(res.OffendingSamples, ", "))
	}
	return res, nil
}

// parseISO matches every value independently against the ISO layouts, so
// zoned, naive, T and space separated forms can share a column.
func (n *Normalizer) parseISO(cells []ingestion.Cell) Result {
	res := Result{
		Times:    make([]telemetry.OptionalTime, len(cells)),
		Encoding: telemetry.EncodingISOString,
		Strategy: telemetry.StrategyPerValue,
	}
	for i, cell := range cells {
		if cell.IsNull() {
			res.Missing++
			continue
		}
		if _, t, ok := n.coercer.MatchISOLayout(cell.String()); ok {
			res.Times[i] = telemetry.SomeTime(t)
			continue
		}
		res.Failures++
	}
	return res
}

// parseSingleLayout applies each configured layout to the whole column and
// keeps the one resolving the most values. Ties go to the earlier layout,
// so month-first wins over day-first when both fit.
func (n *Normalizer) parseSingleLayout(cells []ingestion.Cell) Result {
	var best Result
	bestValid := -1
	for _, layout := range n.coercer.Layouts() {
		res := applyLayout(cells, layout)
		if v := res.ValidCount(); v > bestValid {
			best, bestValid = res, v
		}
	}
	if bestValid < 0 {
		best = applyLayout(cells, "")
	}
	return best
}

func applyLayout(cells []ingestion.Cell, layout string) Result {
	res := Result{
		Times:    make([]telemetry.OptionalTime, len(cells)),
		Encoding: telemetry.EncodingISOString,
		Strategy: telemetry.StrategyInferredLayout,
	}
	for i, cell := range cells {
		if cell.IsNull() {
			res.Missing++
			continue
		}
		if layout != "" {
			if t, ok := coercer.ParseTimestamp(cell.String(), layout); ok {
				res.Times[i] = telemetry.SomeTime(t)
				continue
			}
		}
		res.Failures++
	}
	return res
}

// epochNumber is an integer-coercible cell; integers keep full precision.
type epochNumber struct {
	isInt bool
	i     int64
	f     float64
	ok    bool
}

func toEpochNumber(cell ingestion.Cell) epochNumber {
	switch cell.Kind {
	case ingestion.CellInt:
		return epochNumber{isInt: true, i: cell.Int, ok: true}
	case ingestion.CellFloat:
		if math.IsNaN(cell.Float) || math.IsInf(cell.Float, 0) {
			return epochNumber{}
		}
		return epochNumber{f: cell.Float, ok: true}
	case ingestion.CellString:
		if i, ok := coercer.ParseInteger(cell.Str); ok {
			return epochNumber{isInt: true, i: i, ok: true}
		}
		if f, ok := coercer.ParseNumeric(cell.Str); ok {
			return epochNumber{f: f, ok: true}
		}
	}
	return epochNumber{}
}

func (e epochNumber) magnitude() float64 {
	if e.isInt {
		return math.Abs(float64(e.i))
	}
	return math.Abs(e.f)
}

// parseEpoch classifies the unit from the median magnitude and converts
// every numeric cell with it.
func (n *Normalizer) parseEpoch(cells []ingestion.Cell) Result {
	res := Result{
		Times:    make([]telemetry.OptionalTime, len(cells)),
		Encoding: telemetry.EncodingUnknown,
		Strategy: telemetry.StrategyEpoch,
	}

	numbers := make([]epochNumber, len(cells))
	magnitudes := make(stats.Float64Data, 0, len(cells))
	for i, cell := range cells {
		if cell.IsNull() {
			continue
		}
		numbers[i] = toEpochNumber(cell)
		if numbers[i].ok {
			magnitudes = append(magnitudes, numbers[i].magnitude())
		}
	}

	if len(magnitudes) > 0 {
		median, err := stats.Median(magnitudes)
		if err == nil {
			res.EpochMedian = median
			var confident bool
			res.Encoding, confident = n.config.Thresholds.Classify(median)
			res.LowConfidence = !confident
		}
	}

	for i, cell := range cells {
		if cell.IsNull() {
			res.Missing++
			continue
		}
		if res.Encoding == telemetry.EncodingUnknown || !numbers[i].ok {
			res.Failures++
			continue
		}
		t, ok := fromEpoch(numbers[i], res.Encoding)
		if !ok {
			res.Failures++
			continue
		}
		res.Times[i] = telemetry.SomeTime(t)
	}
	return res
}

// FromEpochInt converts an integer epoch in the given unit without loss.
func FromEpochInt(v int64, encoding telemetry.TimeEncoding) (time.Time, bool) {
	return fromEpoch(epochNumber{isInt: true, i: v, ok: true}, encoding)
}

// FromEpochFloat converts a fractional epoch in the given unit.
func FromEpochFloat(v float64, encoding telemetry.TimeEncoding) (time.Time, bool) {
	return fromEpoch(epochNumber{f: v, ok: !math.IsNaN(v) && !math.IsInf(v, 0)}, encoding)
}

// fromEpoch scales an epoch value in the given unit to an instant in UTC.
func fromEpoch(e epochNumber, encoding telemetry.TimeEncoding) (time.Time, bool) {
	if !e.ok || !encoding.IsEpoch() {
		return time.Time{}, false
	}

	var t time.Time
	if e.isInt {
		switch encoding {
		case telemetry.EncodingEpochNanos:
			t = time.Unix(0, e.i)
		case telemetry.EncodingEpochMicros:
			t = time.UnixMicro(e.i)
		case telemetry.EncodingEpochMillis:
			t = time.UnixMilli(e.i)
		default:
			t = time.Unix(e.i, 0)
		}
	} else {
		secs := e.f / unitsPerSecond(encoding)
		if math.Abs(secs) > 1<<53 {
			return time.Time{}, false
		}
		whole := math.Floor(secs)
		nanos := math.Round((secs - whole) * 1e9)
		t = time.Unix(int64(whole), int64(nanos))
	}

	t = t.UTC()
	if t.Year() < 1 || t.Year() > 9999 {
		return time.Time{}, false
	}
	return t, true
}

func hasText(cells []ingestion.Cell) bool {
	for _, c := range cells {
		if c.Kind == ingestion.CellString {
			return true
		}
	}
	return false
}

func (n *Normalizer) offending(cells []ingestion.Cell, times []telemetry.OptionalTime) []string {
	var out []string
	for i, cell := range cells {
		if len(out) >= n.config.OffendingSampleSize {
			break
		}
		if !cell.IsNull() && !times[i].Valid {
			out = append(out, cell.String())
		}
	}
	return out
}
