package interpreter

import (
	"github.com/safescript/safescript/native"
	"github.com/safescript/safescript/scope"
)

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithNatives installs the native bindings in the root scope of the arena the
// interpreter creates. It has no effect together with WithScope.
func WithNatives(natives *native.Table) Option {
	return func(in *Interpreter) {
		in.natives = natives
	}
}

// WithScope evaluates programs directly in the given scope of an existing
// arena, so definitions outlive a single Eval.
func WithScope(arena *scope.Arena, id scope.ID) Option {
	return func(in *Interpreter) {
		in.arena = arena
		in.programScope = id
	}
}

// WithMaxDepth sets the maximum call depth, counting the program itself.
// Values less than 1 are ignored.
func WithMaxDepth(depth int) Option {
	return func(in *Interpreter) {
		if depth > 0 {
			in.maxDepth = depth
		}
	}
}

// WithContextCheckInterval sets how many evaluation steps pass between
// checks of ctx.Done(). Zero disables the deterministic check.
func WithContextCheckInterval(interval int) Option {
	return func(in *Interpreter) {
		in.contextCheckInterval = interval
	}
}

// WithFilename sets the filename reported in error locations.
func WithFilename(filename string) Option {
	return func(in *Interpreter) {
		in.filename = filename
	}
}

// WithSource sets the program source, used to show the offending line in
// error locations.
func WithSource(source string) Option {
	return func(in *Interpreter) {
		in.source = source
	}
}
