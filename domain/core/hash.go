package core

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
	"time"
)

// SeriesHash fingerprints a normalized series bit for bit.
type SeriesHash string

func (h SeriesHash) String() string { return string(h) }

// ComputeSeriesHash hashes parallel timestamp/value slices. Timestamps are
// encoded as Unix seconds plus the nanosecond offset, which covers every
// representable year, and values by their IEEE-754 bits, so two series hash
// equal only when they are bit-identical.
func ComputeSeriesHash(timestamps []time.Time, values []float64) SeriesHash {
	h := sha256.New()
	var buf [20]byte
	for i := range timestamps {
		binary.BigEndian.PutUint64(buf[:8], uint64(timestamps[i].Unix()))
		binary.BigEndian.PutUint32(buf[8:12], uint32(timestamps[i].Nanosecond()))
		var v float64
		if i < len(values) {
			v = values[i]
		}
		binary.BigEndian.PutUint64(buf[12:], math.Float64bits(v))
		h.Write(buf[:])
	}
	return SeriesHash(hex.EncodeToString(h.Sum(nil)))
}
