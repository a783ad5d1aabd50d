package weather

import (
	"errors"
	"fmt"
)

var (
	// ErrServiceUnavailable marks an upstream transport failure.
	ErrServiceUnavailable = errors.New("upstream service unavailable")
	// ErrNotFound marks a location the geocoder could not resolve.
	ErrNotFound = errors.New("location not found")
	// ErrUpstreamData marks a malformed or incomplete upstream reply.
	ErrUpstreamData = errors.New("upstream data error")
)

// Error is a lookup failure with a client-facing detail message.
// Kind is one of the package sentinels; Err is the underlying cause, if any.
type Error struct {
	Kind   error
	Detail string
	Err    error
}

func (e *Error) Error() string {
	return e.Detail
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(kind error, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...), Err: cause}
}

// Unavailable builds a ServiceUnavailable error.
func Unavailable(cause error, format string, args ...any) *Error {
	return newError(ErrServiceUnavailable, cause, format, args...)
}

// NotFound builds a NotFound error.
func NotFound(format string, args ...any) *Error {
	return newError(ErrNotFound, nil, format, args...)
}

// UpstreamData builds an UpstreamDataError.
func UpstreamData(cause error, format string, args ...any) *Error {
	return newError(ErrUpstreamData, cause, format, args...)
}
