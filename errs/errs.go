// Package errs provides structured error types and helpers for the studiolink bridge.
package errs

import (
	"errors"
	"strconv"
	"strings"
)

// Code identifies a bridge error category.
type Code string

const (
	// CodeBind indicates the listener could not be bound (port in use, permissions).
	CodeBind Code = "bind"
	// CodeShutdown marks the expected listener-closed condition during stop.
	CodeShutdown Code = "shutdown"
	// CodeTransient indicates a recoverable accept-time failure.
	CodeTransient Code = "transient"
	// CodeInvalid indicates invalid input provided by the caller.
	CodeInvalid Code = "invalid_request"
	// CodeNotFound indicates a missing route or resource.
	CodeNotFound Code = "not_found"
	// CodeInternal indicates an unexpected failure while handling a request.
	CodeInternal Code = "internal"
	// CodeUnavailable indicates the component is closed or saturated.
	CodeUnavailable Code = "unavailable"
	// CodeRemote indicates the remote endpoint answered with a failure envelope.
	CodeRemote Code = "remote"
)

// E captures structured error information produced across the bridge.
type E struct {
	Op      string
	Code    Code
	Message string

	cause error
}

// Option configures an error envelope.
type Option func(*E)

// New constructs an error envelope for the operation and error code.
func New(op string, code Code, opts ...Option) *E {
	e := &E{
		Op:      strings.TrimSpace(op),
		Code:    code,
		Message: "",
		cause:   nil,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// WithMessage attaches a human-readable message to the error.
func WithMessage(message string) Option {
	trimmed := strings.TrimSpace(message)
	return func(e *E) {
		e.Message = trimmed
	}
}

// WithCause sets the underlying cause error.
func WithCause(err error) Option {
	return func(e *E) {
		e.cause = err
	}
}

func (e *E) Error() string {
	if e == nil {
		return "<nil>"
	}
	var parts []string

	op := strings.TrimSpace(e.Op)
	if op == "" {
		op = "unknown"
	}
	parts = append(parts, "op="+op)

	code := strings.TrimSpace(string(e.Code))
	if code == "" {
		code = "unknown"
	}
	parts = append(parts, "code="+code)

	if e.Message != "" {
		parts = append(parts, "message="+strconv.Quote(e.Message))
	}
	if e.cause != nil {
		parts = append(parts, "cause="+strconv.Quote(e.cause.Error()))
	}

	return strings.Join(parts, " ")
}

func (e *E) Unwrap() error { return e.cause }

// CodeOf extracts the bridge error code from err, or CodeInternal when the
// error carries no envelope.
func CodeOf(err error) Code {
	var e *E
	if errors.As(err, &e) && e != nil {
		return e.Code
	}
	return CodeInternal
}

// IsShutdown reports whether err marks the expected listener-closed condition.
func IsShutdown(err error) bool {
	var e *E
	if errors.As(err, &e) && e != nil {
		return e.Code == CodeShutdown
	}
	return false
}
