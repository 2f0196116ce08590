package object

import (
	"encoding/json"
	"fmt"

	"github.com/safescript/safescript/errz"
)

// Error is the script-visible form of an error: the value bound by
// catch (e) for runtime errors, and the value returned by error().
type Error struct {
	err *errz.Error
}

func (e *Error) Type() Type {
	return ERROR
}

func (e *Error) Inspect() string {
	return fmt.Sprintf("error(%q)", e.err.Message)
}

func (e *Error) String() string {
	return e.err.Message
}

// Value returns the underlying structured error.
func (e *Error) Value() *errz.Error {
	return e.err
}

func (e *Error) Interface() any {
	return e.err
}

// Message returns the error message.
func (e *Error) Message() string {
	return e.err.Message
}

// Kind returns the error kind.
func (e *Error) Kind() errz.Kind {
	return e.err.Kind
}

// Equals reports whether both errors have the same kind and message.
func (e *Error) Equals(other Object) bool {
	otherErr, ok := other.(*Error)
	if !ok {
		return false
	}
	return e.err.Kind == otherErr.err.Kind && e.err.Message == otherErr.err.Message
}

func (e *Error) IsTruthy() bool {
	return true
}

func (e *Error) Error() string {
	return e.err.Error()
}

func (e *Error) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{
		"kind":    e.err.Kind.Name(),
		"message": e.err.Message,
	})
}

// NewError wraps a structured error.
func NewError(err *errz.Error) *Error {
	return &Error{err: err}
}

// Errorf creates an error value of kind KindUnknown, as scripts do with
// error("...").
func Errorf(format string, args ...any) *Error {
	return &Error{err: errz.Newf(errz.KindUnknown, format, args...)}
}
