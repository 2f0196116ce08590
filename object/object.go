// Package object provides the SafeScript value model.
//
// Every value a script can observe implements the Object interface. Hosts
// usually type switch on a returned value to get at its Go representation:
//
//	switch obj := obj.(type) {
//	case *object.String:
//		// do something with obj.Value()
//	case *object.Number:
//		// do something with obj.Value()
//	}
//
// The Type() method of each object may also be used to get a string
// name of the object type, such as "string" or "number".
package object

import (
	"sort"
)

// Type of an object as a string.
type Type string

// Type constants
const (
	BOOL     Type = "bool"
	BUILTIN  Type = "builtin"
	ERROR    Type = "error"
	FUNCTION Type = "function"
	ITERATOR Type = "iterator"
	LIST     Type = "list"
	MAP      Type = "map"
	MODULE   Type = "module"
	NIL      Type = "nil"
	NUMBER   Type = "number"
	STRING   Type = "string"
)

var (
	Nil   = &NilType{}
	True  = &Bool{value: true}
	False = &Bool{value: false}
)

// Object is the interface that all SafeScript values implement.
type Object interface {
	// Type of the object.
	Type() Type

	// Inspect returns a string representation of the given object.
	Inspect() string

	// Interface converts the given object to a native Go value.
	Interface() any

	// Returns true if the given object is equal to this object.
	Equals(other Object) bool

	// IsTruthy returns true if the object is considered "truthy".
	IsTruthy() bool
}

// ScopeRef is the index of a scope record in a scope arena. Closures hold a
// ScopeRef to the scope they were defined in.
type ScopeRef int

// NoScope marks a closure that captured no scope.
const NoScope ScopeRef = -1

// Keys returns the keys of an object map as a sorted slice of strings.
func Keys(m map[string]Object) []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// ToString returns the text form of an object as print and string
// concatenation in the corelib see it. Strings are returned unquoted.
func ToString(obj Object) string {
	if s, ok := obj.(*String); ok {
		return s.value
	}
	return obj.Inspect()
}

// TypeName returns the type name of obj, treating a Go nil as the nil type.
func TypeName(obj Object) string {
	if obj == nil {
		return string(NIL)
	}
	return string(obj.Type())
}

// maxNesting bounds recursion when inspecting or comparing containers, which
// may refer to themselves.
const maxNesting = 64
