package object

import (
	"encoding/json"
	"strings"
)

// List of objects. Lists are reference values: every binding that holds a
// list sees changes made through any other.
type List struct {
	items []Object
}

func (ls *List) Type() Type {
	return LIST
}

func (ls *List) Value() []Object {
	return ls.items
}

func (ls *List) Inspect() string {
	return ls.inspect(0)
}

func (ls *List) inspect(depth int) string {
	if depth > maxNesting {
		return "[...]"
	}
	var b strings.Builder
	b.WriteString("[")
	for i, item := range ls.items {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(inspectNested(item, depth+1))
	}
	b.WriteString("]")
	return b.String()
}

func (ls *List) String() string {
	return ls.Inspect()
}

func (ls *List) Interface() any {
	items := make([]any, 0, len(ls.items))
	for _, item := range ls.items {
		items = append(items, item.Interface())
	}
	return items
}

func (ls *List) Equals(other Object) bool {
	return equals(ls, other, 0)
}

func (ls *List) IsTruthy() bool {
	return true
}

// Len returns the number of items in the list.
func (ls *List) Len() int {
	return len(ls.items)
}

// Append adds an item to the end of the list.
func (ls *List) Append(obj Object) {
	ls.items = append(ls.items, obj)
}

// Pop removes and returns the last item. Nil is returned for an empty list.
func (ls *List) Pop() Object {
	if len(ls.items) == 0 {
		return Nil
	}
	last := ls.items[len(ls.items)-1]
	ls.items = ls.items[:len(ls.items)-1]
	return last
}

// Copy returns a shallow copy of the list.
func (ls *List) Copy() *List {
	items := make([]Object, len(ls.items))
	copy(items, ls.items)
	return &List{items: items}
}

// Contains returns true if an item equal to obj is in the list.
func (ls *List) Contains(obj Object) bool {
	for _, item := range ls.items {
		if item.Equals(obj) {
			return true
		}
	}
	return false
}

func (ls *List) MarshalJSON() ([]byte, error) {
	return json.Marshal(ls.items)
}

func NewList(items []Object) *List {
	if items == nil {
		items = []Object{}
	}
	return &List{items: items}
}

func NewStringList(s []string) *List {
	items := make([]Object, 0, len(s))
	for _, item := range s {
		items = append(items, NewString(item))
	}
	return NewList(items)
}
