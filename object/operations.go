package object

import (
	"math"

	"github.com/safescript/safescript/errz"
	"github.com/safescript/safescript/op"
)

// BinaryOp applies an arithmetic operator. Addition is defined for numbers,
// strings and lists; the other operators accept numbers only.
func BinaryOp(opType op.BinaryOpType, a, b Object) (Object, error) {
	switch a := a.(type) {
	case *Number:
		if b, ok := b.(*Number); ok {
			return numberOp(opType, a.value, b.value), nil
		}
	case *String:
		if b, ok := b.(*String); ok && opType == op.Add {
			return NewString(a.value + b.value), nil
		}
	case *List:
		if b, ok := b.(*List); ok && opType == op.Add {
			items := make([]Object, 0, len(a.items)+len(b.items))
			items = append(items, a.items...)
			items = append(items, b.items...)
			return NewList(items), nil
		}
	}
	return nil, TypeErrorf("unsupported operand types for %s: %s and %s",
		opType, TypeName(a), TypeName(b))
}

func numberOp(opType op.BinaryOpType, a, b float64) *Number {
	switch opType {
	case op.Add:
		return NewNumber(a + b)
	case op.Subtract:
		return NewNumber(a - b)
	case op.Multiply:
		return NewNumber(a * b)
	case op.Divide:
		return NewNumber(a / b)
	case op.Modulo:
		return NewNumber(math.Mod(a, b))
	case op.Power:
		return NewNumber(math.Pow(a, b))
	}
	return NewNumber(math.NaN())
}

// Compare applies a comparison operator. Equality never fails. Ordering is
// defined for two numbers or two strings.
func Compare(opType op.CompareOpType, a, b Object) (Object, error) {
	switch opType {
	case op.Equal:
		return NewBool(Equals(a, b)), nil
	case op.NotEqual:
		return NewBool(!Equals(a, b)), nil
	}
	switch a := a.(type) {
	case *Number:
		if b, ok := b.(*Number); ok {
			return NewBool(orderNumbers(opType, a.value, b.value)), nil
		}
	case *String:
		if b, ok := b.(*String); ok {
			return NewBool(orderStrings(opType, a.value, b.value)), nil
		}
	}
	return nil, TypeErrorf("unsupported operand types for %s: %s and %s",
		opType, TypeName(a), TypeName(b))
}

func orderNumbers(opType op.CompareOpType, a, b float64) bool {
	switch opType {
	case op.LessThan:
		return a < b
	case op.LessThanOrEqual:
		return a <= b
	case op.GreaterThan:
		return a > b
	case op.GreaterThanOrEqual:
		return a >= b
	}
	return false
}

func orderStrings(opType op.CompareOpType, a, b string) bool {
	switch opType {
	case op.LessThan:
		return a < b
	case op.LessThanOrEqual:
		return a <= b
	case op.GreaterThan:
		return a > b
	case op.GreaterThanOrEqual:
		return a >= b
	}
	return false
}

// Equals reports deep equality for lists and maps and identity for
// functions. A Go nil is treated as Nil.
func Equals(a, b Object) bool {
	return equals(a, b, 0)
}

func equals(a, b Object, depth int) bool {
	if a == nil {
		a = Nil
	}
	if b == nil {
		b = Nil
	}
	if depth > maxNesting {
		return a == b
	}
	switch a := a.(type) {
	case *List:
		other, ok := b.(*List)
		if !ok {
			return false
		}
		if a == other {
			return true
		}
		if len(a.items) != len(other.items) {
			return false
		}
		for i := range a.items {
			if !equals(a.items[i], other.items[i], depth+1) {
				return false
			}
		}
		return true
	case *Map:
		other, ok := b.(*Map)
		if !ok {
			return false
		}
		if a == other {
			return true
		}
		if len(a.items) != len(other.items) {
			return false
		}
		for k, v := range a.items {
			ov, ok := other.items[k]
			if !ok || !equals(v, ov, depth+1) {
				return false
			}
		}
		return true
	}
	return a.Equals(b)
}

func inspectNested(obj Object, depth int) string {
	switch obj := obj.(type) {
	case *List:
		return obj.inspect(depth)
	case *Map:
		return obj.inspect(depth)
	case nil:
		return "nil"
	}
	return obj.Inspect()
}

// Negate implements unary minus.
func Negate(obj Object) (Object, error) {
	if n, ok := obj.(*Number); ok {
		return NewNumber(-n.value), nil
	}
	return nil, TypeErrorf("bad operand type for unary -: %s", TypeName(obj))
}

// Not implements logical negation based on truthiness.
func Not(obj Object) Object {
	return NewBool(!IsTruthy(obj))
}

// IsTruthy returns the truthiness of obj, treating a Go nil as Nil.
func IsTruthy(obj Object) bool {
	if obj == nil {
		return false
	}
	return obj.IsTruthy()
}

// toIndex validates a list or string index.
func toIndex(index Object, size int, typeName string) (int, error) {
	n, ok := index.(*Number)
	if !ok {
		return 0, TypeErrorf("%s index must be a number (got %s)", typeName, TypeName(index))
	}
	if !n.IsInteger() {
		return 0, TypeErrorf("%s index must be an integer (got %s)", typeName, n.Inspect())
	}
	if n.value < 0 || n.value >= float64(size) {
		return 0, IndexErrorf("%s index out of range: %s (length %d)", typeName, n.Inspect(), size)
	}
	return int(n.value), nil
}

// GetItem implements container[index].
func GetItem(container, index Object) (Object, error) {
	switch c := container.(type) {
	case *List:
		i, err := toIndex(index, len(c.items), "list")
		if err != nil {
			return nil, err
		}
		return c.items[i], nil
	case *String:
		runes := c.Runes()
		i, err := toIndex(index, len(runes), "string")
		if err != nil {
			return nil, err
		}
		return NewString(string(runes[i])), nil
	case *Map:
		key, ok := index.(*String)
		if !ok {
			return nil, TypeErrorf("map key must be a string (got %s)", TypeName(index))
		}
		return c.Get(key.value), nil
	}
	return nil, TypeErrorf("%s is not indexable", TypeName(container))
}

// SetItem implements container[index] = value.
func SetItem(container, index, value Object) error {
	switch c := container.(type) {
	case *List:
		i, err := toIndex(index, len(c.items), "list")
		if err != nil {
			return err
		}
		c.items[i] = value
		return nil
	case *Map:
		key, ok := index.(*String)
		if !ok {
			return TypeErrorf("map key must be a string (got %s)", TypeName(index))
		}
		c.Set(key.value, value)
		return nil
	}
	return TypeErrorf("%s does not support item assignment", TypeName(container))
}

// GetAttr implements obj.name.
func GetAttr(obj Object, name string) (Object, error) {
	switch o := obj.(type) {
	case *Map:
		return o.Get(name), nil
	case *List:
		if name == "length" {
			return NewNumber(float64(len(o.items))), nil
		}
	case *String:
		if name == "length" {
			return NewNumber(float64(o.Len())), nil
		}
	case *Error:
		switch name {
		case "message":
			return NewString(o.err.Message), nil
		case "kind":
			return NewString(o.err.Kind.Name()), nil
		}
	case *Module:
		if member, ok := o.Member(name); ok {
			return member, nil
		}
		return nil, errz.Newf(errz.UndefinedIdentifier,
			"module %s has no member %q", o.name, name)
	}
	return nil, TypeErrorf("%s has no attribute %q", TypeName(obj), name)
}

// SetAttr implements obj.name = value. Only maps accept new attributes.
func SetAttr(obj Object, name string, value Object) error {
	switch o := obj.(type) {
	case *Map:
		o.Set(name, value)
		return nil
	case *Module:
		return errz.Newf(errz.ConstAssignment,
			"cannot assign to member %q of module %s", name, o.name)
	}
	return TypeErrorf("cannot set attribute %q on %s", name, TypeName(obj))
}

// Len returns the length of a list, string or map.
func Len(obj Object) (int, error) {
	switch o := obj.(type) {
	case *List:
		return o.Len(), nil
	case *String:
		return o.Len(), nil
	case *Map:
		return o.Len(), nil
	}
	return 0, TypeErrorf("%s has no length", TypeName(obj))
}
