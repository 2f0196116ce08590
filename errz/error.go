package errz

import (
	"errors"
	"fmt"
)

// Error is the structured error returned by every SafeScript stage. It
// carries the error kind, a message, the source location and, for runtime
// errors, the script call stack at the point of failure.
type Error struct {
	Kind     Kind
	Message  string
	Location SourceLocation
	Stack    []StackFrame
	Cause    error

	// Payload holds the value raised by a script throw statement. It is
	// typed as any to keep this package free of the value model.
	Payload any
}

// New creates an Error with the given kind and message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates an Error with the given kind and a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error of the given kind whose cause is err. The message
// defaults to the message of the cause.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	msg := err.Error()
	if format != "" {
		msg = fmt.Sprintf(format, args...) + ": " + msg
	}
	return &Error{Kind: kind, Message: msg, Cause: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Location.IsZero() {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.Location)
}

// Unwrap returns the underlying cause of the error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same kind. A target with an
// empty message matches any error of its kind, which allows sentinel-style
// comparisons such as errors.Is(err, errz.New(errz.Io, "")).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Message == "" || t.Message == e.Message
}

// WithLocation sets the location if one is not already present.
func (e *Error) WithLocation(loc SourceLocation) *Error {
	if e.Location.IsZero() {
		e.Location = loc
	}
	return e
}

// WithStack sets the stack if one is not already present.
func (e *Error) WithStack(stack []StackFrame) *Error {
	if len(e.Stack) == 0 {
		e.Stack = stack
	}
	return e
}

// WithCause wraps the error with a cause.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// KindOf returns the kind of the first *Error found in err's chain, or
// KindUnknown if there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsKind returns true if err's chain contains an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
