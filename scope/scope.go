// Package scope implements variable scopes as an arena of records addressed
// by index. Each record points to its parent by index, so a chain of scopes
// holds no Go pointers and closures capture a scope as a plain integer.
//
// Scopes are released when execution leaves them. A scope that a closure
// captured is pinned, along with its ancestors, and survives release.
// Released scopes go on a free list and their slots are reused.
package scope

import (
	"sort"

	"github.com/safescript/safescript/errz"
	"github.com/safescript/safescript/object"
)

// ID addresses a scope in an Arena.
type ID = object.ScopeRef

// Root is the outermost scope of every arena. Native bindings live here.
const Root ID = 0

// None is the parent of Root.
const None ID = object.NoScope

// Flags describe a binding.
type Flags uint8

const (
	// Const bindings cannot be reassigned.
	Const Flags = 1 << iota
	// Native bindings were installed by the host and cannot be reassigned.
	Native
)

type binding struct {
	value object.Object
	flags Flags
}

type record struct {
	parent ID
	vars   map[string]*binding
	pins   int
	live   bool
}

// Arena holds every scope of one execution.
type Arena struct {
	records []record
	free    []ID
	live    int
}

// NewArena returns an arena holding only the Root scope.
func NewArena() *Arena {
	a := &Arena{}
	a.records = append(a.records, record{
		parent: None,
		vars:   map[string]*binding{},
		live:   true,
	})
	a.live = 1
	return a
}

// Push creates a scope whose parent is the given scope.
func (a *Arena) Push(parent ID) ID {
	a.live++
	if n := len(a.free); n > 0 {
		id := a.free[n-1]
		a.free = a.free[:n-1]
		a.records[id] = record{parent: parent, vars: map[string]*binding{}, live: true}
		return id
	}
	a.records = append(a.records, record{parent: parent, vars: map[string]*binding{}, live: true})
	return ID(len(a.records) - 1)
}

// Define binds name in the given scope. Binding a name that the same scope
// already holds fails with DuplicateBinding.
func (a *Arena) Define(id ID, name string, value object.Object, flags Flags) error {
	rec := &a.records[id]
	if _, ok := rec.vars[name]; ok {
		return errz.Newf(errz.DuplicateBinding, "%s is already defined in this scope", name)
	}
	rec.vars[name] = &binding{value: value, flags: flags}
	return nil
}

// Has returns true if the scope itself binds name. Parents are not consulted.
func (a *Arena) Has(id ID, name string) bool {
	_, ok := a.records[id].vars[name]
	return ok
}

func (a *Arena) resolve(id ID, name string) *binding {
	for id != None {
		rec := &a.records[id]
		if b, ok := rec.vars[name]; ok {
			return b
		}
		id = rec.parent
	}
	return nil
}

// Lookup resolves name starting at the given scope and walking outward.
func (a *Arena) Lookup(id ID, name string) (object.Object, error) {
	b := a.resolve(id, name)
	if b == nil {
		return nil, errz.Newf(errz.UndefinedIdentifier, "%s is not defined", name)
	}
	return b.value, nil
}

// Assign updates the nearest binding of name.
func (a *Arena) Assign(id ID, name string, value object.Object) error {
	b := a.resolve(id, name)
	if b == nil {
		return errz.Newf(errz.UndefinedIdentifier, "%s is not defined", name)
	}
	if b.flags&Native != 0 {
		return errz.Newf(errz.ConstAssignment, "cannot assign to native binding %s", name)
	}
	if b.flags&Const != 0 {
		return errz.Newf(errz.ConstAssignment, "cannot assign to constant %s", name)
	}
	b.value = value
	return nil
}

// Pin keeps the scope and its ancestors alive past Release. Closures pin
// the scope they capture.
func (a *Arena) Pin(id ID) {
	for id != None {
		a.records[id].pins++
		id = a.records[id].parent
	}
}

// Release frees the scope unless it is pinned or is Root.
func (a *Arena) Release(id ID) {
	if id == Root || id == None {
		return
	}
	rec := &a.records[id]
	if !rec.live || rec.pins > 0 {
		return
	}
	rec.live = false
	rec.vars = nil
	a.free = append(a.free, id)
	a.live--
}

// ReleaseTo releases from and each of its ancestors up to, but not
// including, stop. It is used to unwind scopes left open by a return or an
// error.
func (a *Arena) ReleaseTo(from, stop ID) {
	for id := from; id != stop && id != None; {
		parent := a.records[id].parent
		a.Release(id)
		id = parent
	}
}

// Parent returns the parent of the given scope.
func (a *Arena) Parent(id ID) ID {
	return a.records[id].parent
}

// Depth returns the number of ancestors of the given scope.
func (a *Arena) Depth(id ID) int {
	depth := 0
	for id = a.records[id].parent; id != None; id = a.records[id].parent {
		depth++
	}
	return depth
}

// Names returns the names bound directly in the scope, sorted.
func (a *Arena) Names(id ID) []string {
	rec := a.records[id]
	names := make([]string, 0, len(rec.vars))
	for name := range rec.vars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of live scopes.
func (a *Arena) Len() int {
	return a.live
}

// Cap returns the number of scope slots allocated, live or free.
func (a *Arena) Cap() int {
	return len(a.records)
}
