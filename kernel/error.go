package kernel

import "errors"

// Error describes a kernel error. All kernel errors are defined as global
// variables that are pointers to the Error structure so callers can compare
// against them with errors.Is.
type Error struct {
	// The module where the error occurred.
	Module string

	// The error message
	Message string

	// Fatal is set for errors that terminate the environment which hit
	// them. Fatal errors are never retried.
	Fatal bool

	cause error
	proto *Error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

// Unwrap returns the error wrapped by a call to Wrap.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target is the global error value this error was derived
// from via Wrap.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e == t || (e.proto != nil && e.proto == t)
}

// Wrap returns a copy of e that records cause as the underlying reason. The
// copy matches e when tested with errors.Is.
func (e *Error) Wrap(cause error) *Error {
	proto := e
	if e.proto != nil {
		proto = e.proto
	}
	return &Error{
		Module:  e.Module,
		Message: e.Message,
		Fatal:   e.Fatal,
		cause:   cause,
		proto:   proto,
	}
}

// IsFatal returns true if err, or any error it wraps, is a fatal *Error.
func IsFatal(err error) bool {
	for err != nil {
		var kerr *Error
		if !errors.As(err, &kerr) || kerr == nil {
			return false
		}
		if kerr.Fatal {
			return true
		}
		err = kerr.cause
	}
	return false
}
