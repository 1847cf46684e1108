package excel

import (
	"airsense/adapters/datareadiness/coercer"
)

// ReaderConfig holds the tabular reader settings
type ReaderConfig struct {
	CoercionConfig coercer.CoercionConfig `json:"coercion_config"`

	// Worksheet read from workbooks; empty means the first sheet.
	Sheet string `json:"sheet"`

	// Lines starting with this rune are skipped in text input. Annotated
	// InfluxDB exports prefix their metadata rows with '#'.
	Comment rune `json:"comment"`
}

// DefaultReaderConfig returns sensible defaults for sensor exports
func DefaultReaderConfig() ReaderConfig {
	return ReaderConfig{
		CoercionConfig: coercer.DefaultCoercionConfig(),
		Comment:        '#',
	}
}
