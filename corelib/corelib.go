// Package corelib defines the default set of native functions installed in
// every runtime that was not built without a corelib.
package corelib

import (
	"io"
	"os"
	"sort"

	"github.com/safescript/safescript/native"
)

// Options configure the corelib.
type Options struct {
	// Stdout receives the output of print and log. Defaults to os.Stdout.
	Stdout io.Writer
}

// Register installs the corelib into the registry. Registration errors are
// also recorded in the registry and reported again by Freeze.
func Register(r *native.Registry, opts Options) error {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	out := &output{w: opts.Stdout}
	for _, b := range bindings(out) {
		if err := r.RegisterBinding(b); err != nil {
			return err
		}
	}
	if err := r.RegisterModule(MathModule, MathBindings()); err != nil {
		return err
	}
	if err := r.RegisterModule(StringsModule, StringsBindings()); err != nil {
		return err
	}
	return r.RegisterModule(OpsModule, OpsBindings())
}

func bindings(out *output) []native.Binding {
	return []native.Binding{
		{Name: "log", Arity: native.Variadic(0), Fn: out.Log},
		{Name: "print", Arity: native.Variadic(0), Fn: out.Print},
		{Name: "len", Arity: native.Exact(1), Fn: Len},
		{Name: "type", Arity: native.Exact(1), Fn: Type},
		{Name: "str", Arity: native.Exact(1), Fn: String},
		{Name: "num", Arity: native.Exact(1), Fn: Number},
		{Name: "push", Arity: native.Variadic(1), Fn: Push},
		{Name: "pop", Arity: native.Exact(1), Fn: Pop},
		{Name: "keys", Arity: native.Exact(1), Fn: Keys},
		{Name: "values", Arity: native.Exact(1), Fn: Values},
		{Name: "contains", Arity: native.Exact(2), Fn: Contains},
		{Name: "range", Arity: native.Range(1, 3), Fn: Range},
		{Name: "join", Arity: native.Range(1, 2), Fn: Join},
		{Name: "split", Arity: native.Exact(2), Fn: Split},
		{Name: "upper", Arity: native.Exact(1), Fn: Upper},
		{Name: "lower", Arity: native.Exact(1), Fn: Lower},
		{Name: "title", Arity: native.Exact(1), Fn: Title},
		{Name: "assert", Arity: native.Range(1, 2), Fn: Assert},
		{Name: "error", Arity: native.Exact(1), Fn: Error},
		{Name: "uuid", Arity: native.Exact(0), Fn: UUID},
	}
}

// Names returns the names the corelib defines, sorted.
func Names() []string {
	var names []string
	for _, b := range bindings(nil) {
		names = append(names, b.Name)
	}
	names = append(names, MathModule, OpsModule, StringsModule)
	sort.Strings(names)
	return names
}
