// Package typerr defines the error taxonomy shared by every type
// descriptor: optional capabilities a type does not support, input that
// cannot be parsed, and streams that end before a value is complete.
package typerr

import (
	"errors"
	"fmt"
	"io"
)

// Kind classifies descriptor errors so callers can decide how to react
// without string matching.
type Kind int

const (
	// KindNotImplemented marks an optional capability (such as a fixed
	// field size) that the given type does not provide.
	KindNotImplemented Kind = iota

	// KindMalformedInput marks binary or text data that cannot be parsed
	// as the target type.
	KindMalformedInput

	// KindStreamExhausted marks a stream that held fewer bytes than a
	// single value requires. A bulk short-read is not an error and is
	// never reported with this kind.
	KindStreamExhausted
)

// String returns a string representation of the kind
func (k Kind) String() string {
	switch k {
	case KindNotImplemented:
		return "NOT_IMPLEMENTED"
	case KindMalformedInput:
		return "MALFORMED_INPUT"
	case KindStreamExhausted:
		return "STREAM_EXHAUSTED"
	default:
		return "UNKNOWN"
	}
}

// Error is a structured descriptor error.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// NotImplementedf reports an unsupported optional capability.
func NotImplementedf(format string, args ...any) error {
	return &Error{Kind: KindNotImplemented, Message: fmt.Sprintf(format, args...)}
}

// Malformedf reports unparseable input.
func Malformedf(format string, args ...any) error {
	return &Error{Kind: KindMalformedInput, Message: fmt.Sprintf(format, args...)}
}

// Exhaustedf reports a stream that ended mid-value.
func Exhaustedf(format string, args ...any) error {
	return &Error{Kind: KindStreamExhausted, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to an underlying cause.
func Wrap(kind Kind, cause error, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// FromIO converts a raw read error into the taxonomy: EOF and unexpected
// EOF become StreamExhausted, anything else is passed through untouched.
func FromIO(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return Wrap(KindStreamExhausted, err, "reading %s", what)
	}
	return err
}

func isKind(err error, kind Kind) bool {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind == kind
	}
	return false
}

// IsNotImplemented reports whether err carries KindNotImplemented.
func IsNotImplemented(err error) bool {
	return isKind(err, KindNotImplemented)
}

// IsMalformed reports whether err carries KindMalformedInput.
func IsMalformed(err error) bool {
	return isKind(err, KindMalformedInput)
}

// IsExhausted reports whether err carries KindStreamExhausted.
func IsExhausted(err error) bool {
	return isKind(err, KindStreamExhausted)
}
