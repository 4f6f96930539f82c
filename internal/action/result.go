package action

import (
	"net/http"

	"github.com/jwhitfield/atelier/internal/fault"
)

// Result is the uniform response shape crossing the action boundary:
// exactly one of Data or Error is set, never both, and no error escapes
// as a panic or unwrapped failure.
type Result[T any] struct {
	Data  *T     `json:"data,omitempty"`
	Error string `json:"error,omitempty"`

	status int
}

// OK wraps a successful value.
func OK[T any](v T) Result[T] {
	return Result[T]{Data: &v, status: http.StatusOK}
}

// Fail wraps a classified failure. Only the fault's safe message is
// exposed; the HTTP status is derived from its kind.
func Fail[T any](err error) Result[T] {
	return Result[T]{
		Error:  fault.Message(err),
		status: statusFor(fault.KindOf(err)),
	}
}

// Status returns the HTTP status a handler should write for this result.
func (r Result[T]) Status() int {
	if r.status == 0 {
		return http.StatusOK
	}
	return r.status
}

func statusFor(k fault.Kind) int {
	switch k {
	case fault.KindValidation:
		return http.StatusBadRequest
	case fault.KindAuth:
		return http.StatusUnauthorized
	case fault.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
