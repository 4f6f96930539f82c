// Package fault classifies failures crossing the action boundary.
package fault

import (
	"errors"
	"fmt"
)

// Kind buckets an error into one of the categories the action layer
// translates into HTTP responses.
type Kind int

const (
	// KindUnknown covers errors that were never classified.
	KindUnknown Kind = iota
	// KindValidation is malformed or incomplete input.
	KindValidation
	// KindAuth is a missing, invalid, or revoked credential.
	KindAuth
	// KindNotFound is a required lookup that matched no record.
	KindNotFound
	// KindDatabase is a record store failure.
	KindDatabase
	// KindStorage is a blob put/delete failure.
	KindStorage
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "authentication"
	case KindNotFound:
		return "not found"
	case KindDatabase:
		return "database"
	case KindStorage:
		return "storage"
	default:
		return "unknown"
	}
}

// Error is a classified error. Msg is safe to show to callers; Err holds
// the full internal cause for logging.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Validationf builds a validation error with a caller-visible message.
func Validationf(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

// Authf builds an authentication error with a caller-visible message.
func Authf(format string, args ...any) *Error {
	return &Error{Kind: KindAuth, Msg: fmt.Sprintf(format, args...)}
}

// NotFoundf builds a missing-record error with a caller-visible message.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

// Database wraps a record store failure.
func Database(msg string, err error) *Error {
	return &Error{Kind: KindDatabase, Msg: msg, Err: err}
}

// Storage wraps a blob store failure.
func Storage(msg string, err error) *Error {
	return &Error{Kind: KindStorage, Msg: msg, Err: err}
}

// KindOf returns the Kind of err, or KindUnknown if err was never
// classified.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindUnknown
}

// Message returns the caller-visible message of err, falling back to a
// generic summary for unclassified errors so internal detail never leaks.
func Message(err error) string {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Msg
	}
	return "internal error"
}
