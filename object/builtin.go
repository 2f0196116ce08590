package object

import (
	"context"
	"encoding/json"
	"fmt"
)

// BuiltinFunction holds the type of a host function callable from scripts.
type BuiltinFunction func(ctx context.Context, args ...Object) (Object, error)

// Variadic is the maximum argument count of a builtin that accepts any
// number of trailing arguments.
const Variadic = -1

// Builtin wraps a host function and implements Object.
type Builtin struct {
	// The function that this object wraps.
	fn BuiltinFunction

	// The name of the function.
	name string

	// The name of the module this function belongs to, if any. Used by Key()
	// to return the fully-qualified name (e.g., "ops.add").
	moduleName string

	// Accepted argument counts. maxArgs is Variadic when unbounded.
	minArgs int
	maxArgs int
}

func (b *Builtin) Type() Type {
	return BUILTIN
}

func (b *Builtin) Value() BuiltinFunction {
	return b.fn
}

func (b *Builtin) Interface() any {
	return nil
}

// Call invokes the wrapped function without arity checks or panic
// recovery. Backends go through native.Call instead.
func (b *Builtin) Call(ctx context.Context, args ...Object) (Object, error) {
	return b.fn(ctx, args...)
}

func (b *Builtin) Inspect() string {
	return fmt.Sprintf("builtin(%s)", b.Key())
}

func (b *Builtin) String() string {
	return b.Inspect()
}

func (b *Builtin) Name() string {
	return b.name
}

// Returns a string that uniquely identifies this builtin function.
func (b *Builtin) Key() string {
	if b.moduleName == "" {
		return b.name
	}
	return fmt.Sprintf("%s.%s", b.moduleName, b.name)
}

// Arity returns the accepted argument counts. max is Variadic when the
// builtin takes any number of trailing arguments.
func (b *Builtin) Arity() (min, max int) {
	return b.minArgs, b.maxArgs
}

func (b *Builtin) Equals(other Object) bool {
	otherBuiltin, ok := other.(*Builtin)
	return ok && b == otherBuiltin
}

func (b *Builtin) IsTruthy() bool {
	return true
}

func (b *Builtin) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.Inspect())
}

// NewBuiltin creates a new builtin function with the given name and function.
// The builtin accepts any number of arguments until WithArity is called.
func NewBuiltin(name string, fn BuiltinFunction) *Builtin {
	return &Builtin{fn: fn, name: name, maxArgs: Variadic}
}

// InModule sets the module name for this builtin.
func (b *Builtin) InModule(moduleName string) *Builtin {
	b.moduleName = moduleName
	return b
}

// WithArity sets the accepted argument counts.
func (b *Builtin) WithArity(min, max int) *Builtin {
	b.minArgs = min
	b.maxArgs = max
	return b
}
