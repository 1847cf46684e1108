package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Detection: neither heuristic tier located a required column.
	ErrAmbiguousSchema = errors.New("ambiguous schema")

	// Normalization: the time column cannot be read under any supported encoding.
	ErrUnparsableTimeEncoding = errors.New("unparsable time encoding")

	// Assembly: detection succeeded but no row survived filtering.
	ErrEmptyResult = errors.New("empty result")

	ErrColumnNotFound = errors.New("column not found")
	ErrRaggedTable    = errors.New("columns have different row counts")
)

// NewColumnNotFoundError names the missing column
func NewColumnNotFoundError(name string) error {
	return fmt.Errorf("%w: %q", ErrColumnNotFound, name)
}

// IsAmbiguousSchema reports whether err stems from failed column detection
func IsAmbiguousSchema(err error) bool {
	return errors.Is(err, ErrAmbiguousSchema)
}

// IsUnparsableTimeEncoding reports whether err stems from an unreadable time column
func IsUnparsableTimeEncoding(err error) bool {
	return errors.Is(err, ErrUnparsableTimeEncoding)
}

// IsEmptyResult reports whether err stems from an empty filtered series
func IsEmptyResult(err error) bool {
	return errors.Is(err, ErrEmptyResult)
}
