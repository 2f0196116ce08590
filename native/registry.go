// Package native is the bridge between host Go code and scripts. Hosts
// register functions in a Registry before a runtime initializes; the
// registry is then frozen into an immutable Table that backends install in
// the root scope.
package native

import (
	"errors"
	"sort"

	"github.com/hashicorp/go-multierror"
	"github.com/safescript/safescript/errz"
	"github.com/safescript/safescript/object"
	"github.com/safescript/safescript/scope"
)

// Func is the plain signature of a host function callable from scripts.
type Func func(args []object.Object) (object.Object, error)

// ErrFrozen is returned when registering after the registry was frozen.
var ErrFrozen = errors.New("native registry is frozen")

// Binding describes one host function.
type Binding struct {
	Name  string
	Arity Arity
	Fn    object.BuiltinFunction
}

// Builtin returns the script value for the binding.
func (b Binding) Builtin(module string) *object.Builtin {
	builtin := object.NewBuiltin(b.Name, b.Fn).WithArity(b.Arity.Min, b.Arity.Max)
	if module != "" {
		builtin.InModule(module)
	}
	return builtin
}

// Registry collects bindings before Init. It is not safe for concurrent use.
type Registry struct {
	values    map[string]object.Object
	order     []string
	overwrite bool
	frozen    bool
	errs      *multierror.Error
}

// NewRegistry returns an empty registry that rejects duplicate names.
func NewRegistry() *Registry {
	return &Registry{values: map[string]object.Object{}}
}

// SetOverwrite controls the duplicate policy. When enabled a second
// registration of a name silently replaces the first.
func (r *Registry) SetOverwrite(overwrite bool) {
	r.overwrite = overwrite
}

func (r *Registry) add(name string, value object.Object) error {
	if r.frozen {
		return ErrFrozen
	}
	if name == "" {
		err := errz.New(errz.NativeFunctionFailure, "native binding name must not be empty")
		r.errs = multierror.Append(r.errs, err)
		return err
	}
	if _, exists := r.values[name]; exists {
		if !r.overwrite {
			err := errz.Newf(errz.DuplicateBinding, "native binding %q is already registered", name)
			r.errs = multierror.Append(r.errs, err)
			return err
		}
	} else {
		r.order = append(r.order, name)
	}
	r.values[name] = value
	return nil
}

// Register adds a host function that accepts any number of arguments.
func (r *Registry) Register(name string, fn Func) error {
	return r.RegisterBinding(Binding{Name: name, Arity: Variadic(0), Fn: CallFunc(fn)})
}

// RegisterBinding adds a host function with an explicit arity.
func (r *Registry) RegisterBinding(b Binding) error {
	return r.add(b.Name, b.Builtin(""))
}

// RegisterModule adds a named group of bindings, reachable from scripts as
// name.member.
func (r *Registry) RegisterModule(name string, bindings []Binding) error {
	members := make(map[string]object.Object, len(bindings))
	for _, b := range bindings {
		members[b.Name] = b.Builtin(name)
	}
	return r.add(name, object.NewModule(name, members))
}

// Has returns true if the name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.values[name]
	return ok
}

// Freeze returns the table of registered bindings. Every registration
// failure recorded so far is returned together as one error. The registry
// accepts no further registrations.
func (r *Registry) Freeze() (*Table, error) {
	r.frozen = true
	if err := r.errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	values := make(map[string]object.Object, len(r.values))
	for k, v := range r.values {
		values[k] = v
	}
	names := make([]string, len(r.order))
	copy(names, r.order)
	sort.Strings(names)
	return &Table{values: values, names: names}, nil
}

// Table is the immutable set of native bindings of one runtime.
type Table struct {
	values map[string]object.Object
	names  []string
}

// Lookup returns the binding with the given name.
func (t *Table) Lookup(name string) (object.Object, bool) {
	if t == nil {
		return nil, false
	}
	v, ok := t.values[name]
	return v, ok
}

// Names returns the binding names, sorted.
func (t *Table) Names() []string {
	if t == nil {
		return nil
	}
	names := make([]string, len(t.names))
	copy(names, t.names)
	return names
}

// Len returns the number of bindings.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.names)
}

// Install defines every binding in the given scope. Scripts can shadow
// native names in nested scopes but cannot reassign them.
func (t *Table) Install(arena *scope.Arena, id scope.ID) error {
	if t == nil {
		return nil
	}
	for _, name := range t.names {
		if err := arena.Define(id, name, t.values[name], scope.Native); err != nil {
			return err
		}
	}
	return nil
}
