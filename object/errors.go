package object

import "github.com/safescript/safescript/errz"

// TypeErrorf returns a TypeMismatch error.
func TypeErrorf(format string, args ...any) *errz.Error {
	return errz.Newf(errz.TypeMismatch, format, args...)
}

// IndexErrorf returns an IndexOutOfRange error.
func IndexErrorf(format string, args ...any) *errz.Error {
	return errz.Newf(errz.IndexOutOfRange, format, args...)
}

// Throw returns the error raised by a script throw statement.
func Throw(value Object) *errz.Error {
	err := errz.New(errz.Thrown, ToString(value))
	err.Payload = value
	return err
}

// Caught returns the value a catch clause binds for err. The second return
// value is false if err cannot be caught by a script.
func Caught(err error) (Object, bool) {
	e, ok := errz.As(err)
	if !ok || !e.Kind.Catchable() {
		return nil, false
	}
	if e.Kind == errz.Thrown {
		if payload, ok := e.Payload.(Object); ok {
			return payload, true
		}
	}
	return NewError(e), true
}

// CheckArity verifies that a script function is called with exactly as many
// arguments as it declares.
func CheckArity(fn *Function, argc int) error {
	want := fn.Arity()
	if argc == want {
		return nil
	}
	name := fn.Name()
	if name == "" {
		name = "anonymous function"
	}
	plural := "s"
	if want == 1 {
		plural = ""
	}
	return errz.Newf(errz.ArityMismatch, "%s() takes %d argument%s (%d given)", name, want, plural, argc)
}
