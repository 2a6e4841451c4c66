package media

import (
	"errors"
	"fmt"
)

// ErrorKind classifies pipeline failures for the HTTP boundary.
type ErrorKind string

const (
	// ErrValidation covers user-correctable input problems: unsupported
	// extensions, missing files, too few stitch inputs.
	ErrValidation ErrorKind = "validation"
	// ErrIO covers staging and publish failures on the local filesystem.
	ErrIO ErrorKind = "io"
	// ErrProcessing covers failures reported by an external transform
	// collaborator. Not retried.
	ErrProcessing ErrorKind = "processing"
)

// Error is the single error type crossing component boundaries. Components wrap
// their failure exactly once; the supervisor logs it and maps Kind to a status.
type Error struct {
	Kind    ErrorKind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// NewError builds an Error with an optional wrapped cause.
func NewError(kind ErrorKind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

func Validationf(format string, args ...any) *Error {
	return &Error{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

func IOErr(message string, cause error) *Error {
	return &Error{Kind: ErrIO, Message: message, cause: cause}
}

func ProcessingErr(message string, cause error) *Error {
	return &Error{Kind: ErrProcessing, Message: message, cause: cause}
}

// KindOf extracts the ErrorKind from err. Unclassified errors are treated as
// processing failures so they still surface as a 500 rather than vanish.
func KindOf(err error) ErrorKind {
	var me *Error
	if errors.As(err, &me) {
		return me.Kind
	}
	return ErrProcessing
}

// IsValidation reports whether err classifies as user-correctable input error.
func IsValidation(err error) bool {
	return KindOf(err) == ErrValidation
}
