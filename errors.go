package avro

import (
	"errors"
	"fmt"
)

// Kind classifies the failures the codec surfaces. Every error returned by
// the schema builder, the validator, and the encode/decode engines wraps
// exactly one kind.
type Kind int

const (
	// KindInvalidSchema reports a builder constraint violation: duplicate
	// names, a union inside a union, an unknown link target, an empty
	// enum, a negative fixed size.
	KindInvalidSchema Kind = iota + 1

	// KindSchemaMismatch reports incompatible writer/reader schemas, a
	// datum that does not conform to its schema, or a union with no
	// matching branch.
	KindSchemaMismatch

	// KindMalformed reports bytes that do not decode: an over-long varint,
	// invalid UTF-8 in a string, an out-of-range enum index or union
	// branch, a truncated stream.
	KindMalformed

	// KindIO reports a failure of the underlying byte stream.
	KindIO
)

func (k Kind) String() string {
	switch k {
	case KindInvalidSchema:
		return "invalid schema"
	case KindSchemaMismatch:
		return "schema mismatch"
	case KindMalformed:
		return "malformed data"
	case KindIO:
		return "io error"
	default:
		return "unknown"
	}
}

// Error is the concrete error type returned throughout the library. The
// message carries context (schema path, offending value); Err holds a
// wrapped cause when one exists.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("avro: %s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("avro: %s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Errorf builds an *Error of the given kind with a formatted message.
// A trailing "%w" verb wraps the cause so errors.Is/As keep working.
func Errorf(kind Kind, format string, args ...interface{}) error {
	wrapped := fmt.Errorf(format, args...)
	return &Error{Kind: kind, Msg: wrapped.Error(), Err: errors.Unwrap(wrapped)}
}

// KindOf extracts the Kind from err, or 0 when err is not a library error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
