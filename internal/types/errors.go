package types

import (
	"errors"
	"fmt"
)

const (
	CodeValidation         = "VALIDATION"
	CodeNotFound           = "NOT_FOUND"
	CodeCorruptSession     = "CORRUPT_SESSION"
	CodeSessionUnavailable = "SESSION_UNAVAILABLE"
	CodeConfigUnavailable  = "CONFIG_UNAVAILABLE"
	CodeCDPUnavailable     = "CDP_UNAVAILABLE"
	CodeCommandFailed      = "COMMAND_FAILED"
	CodeLocatorUnavailable = "LOCATOR_UNAVAILABLE"
)

// CodedError is a typed error used for stable API mapping.
type CodedError struct {
	Code    string
	Message string
	Cause   error
}

func (e *CodedError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
}

func (e *CodedError) Unwrap() error { return e.Cause }

// NewError builds a *CodedError.
func NewError(code, msg string, cause error) error {
	return &CodedError{Code: code, Message: msg, Cause: cause}
}

// CodeOf returns the code of the outermost CodedError in err's chain, or "".
func CodeOf(err error) string {
	var coded *CodedError
	if !errors.As(err, &coded) {
		return ""
	}
	return coded.Code
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code string) bool {
	return err != nil && CodeOf(err) == code
}
