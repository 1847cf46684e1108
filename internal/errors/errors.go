package errors

import (
	stderrors "errors"
	"fmt"

	"airsense/domain/core"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context, keeping the inner code
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   err,
		}
	}
	return &AppError{
		Code:    CodeInternalError,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WithCode adds an error code to an existing error
func WithCode(code string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return &AppError{
			Code:    code,
			Message: appErr.Message,
			Cause:   appErr.Cause,
		}
	}
	return &AppError{
		Code:    code,
		Message: err.Error(),
		Cause:   err,
	}
}

// IsAppError checks if an error is, or wraps, an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// GetCode returns the outermost AppError code, or "UNKNOWN"
func GetCode(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN"
}

// Predefined error codes
const (
	CodeConfigInvalid          = "CONFIG_INVALID"
	CodeInternalError          = "INTERNAL_ERROR"
	CodeInvalidInput           = "INVALID_INPUT"
	CodeAmbiguousSchema        = "AMBIGUOUS_SCHEMA"
	CodeUnparsableTimeEncoding = "UNPARSABLE_TIME_ENCODING"
	CodeEmptyResult            = "EMPTY_RESULT"
)

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func InternalError(message string) *AppError {
	return New(CodeInternalError, message)
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}

// AmbiguousSchema reports which roles detection could not fill. It is
// recoverable by supplying the columns manually.
func AmbiguousSchema(missingTime, missingValue bool) *AppError {
	var what string
	switch {
	case missingTime && missingValue:
		what = "time and value columns"
	case missingTime:
		what = "time column"
	default:
		what = "value column"
	}
	return &AppError{
		Code:    CodeAmbiguousSchema,
		Message: fmt.Sprintf("could not detect %s; select them manually", what),
		Cause:   core.ErrAmbiguousSchema,
	}
}

// UnparsableTimeEncoding reports a time column no supported encoding can read
func UnparsableTimeEncoding(column string, cause error) *AppError {
	if cause == nil {
		cause = core.ErrUnparsableTimeEncoding
	}
	return &AppError{
		Code:    CodeUnparsableTimeEncoding,
		Message: fmt.Sprintf("time column %q holds no readable timestamps", column),
		Cause:   cause,
	}
}

// EmptyResult reports that detection succeeded but no valid row survived
func EmptyResult(message string) *AppError {
	return &AppError{
		Code:    CodeEmptyResult,
		Message: message,
		Cause:   core.ErrEmptyResult,
	}
}
