package object

// Iterator steps through the items produced by a for-of loop. It is an
// Object only so the virtual machine can keep it on its value stack.
type Iterator struct {
	items []Object
	pos   int
}

func (it *Iterator) Type() Type {
	return ITERATOR
}

func (it *Iterator) Inspect() string {
	return "iterator"
}

func (it *Iterator) Interface() any {
	return nil
}

func (it *Iterator) Equals(other Object) bool {
	otherIt, ok := other.(*Iterator)
	return ok && it == otherIt
}

func (it *Iterator) IsTruthy() bool {
	return true
}

// Next returns the next item. The second return value is false once the
// iterator is exhausted.
func (it *Iterator) Next() (Object, bool) {
	if it.pos >= len(it.items) {
		return nil, false
	}
	item := it.items[it.pos]
	it.pos++
	return item, true
}

// Iterate returns an iterator over a list's items, a string's characters or
// a map's keys. The items are captured when Iterate is called, so changes
// made to a container while looping over it are not observed.
func Iterate(obj Object) (*Iterator, error) {
	switch obj := obj.(type) {
	case *List:
		return &Iterator{items: obj.Copy().items}, nil
	case *String:
		runes := obj.Runes()
		items := make([]Object, 0, len(runes))
		for _, r := range runes {
			items = append(items, NewString(string(r)))
		}
		return &Iterator{items: items}, nil
	case *Map:
		keys := obj.Keys()
		items := make([]Object, 0, len(keys))
		for _, k := range keys {
			items = append(items, NewString(k))
		}
		return &Iterator{items: items}, nil
	}
	return nil, TypeErrorf("%s is not iterable", TypeName(obj))
}
