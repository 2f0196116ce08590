package native

import (
	"fmt"

	"github.com/safescript/safescript/object"
)

// Arity is the range of argument counts a native function accepts. Max is
// object.Variadic when there is no upper bound.
type Arity struct {
	Min int
	Max int
}

// Exact returns an Arity accepting exactly n arguments.
func Exact(n int) Arity {
	return Arity{Min: n, Max: n}
}

// Variadic returns an Arity accepting min or more arguments.
func Variadic(min int) Arity {
	return Arity{Min: min, Max: object.Variadic}
}

// Range returns an Arity accepting between min and max arguments.
func Range(min, max int) Arity {
	return Arity{Min: min, Max: max}
}

// Accepts returns true if a call with n arguments is allowed.
func (a Arity) Accepts(n int) bool {
	if n < a.Min {
		return false
	}
	return a.Max == object.Variadic || n <= a.Max
}

func (a Arity) String() string {
	switch {
	case a.Max == object.Variadic:
		return fmt.Sprintf("at least %d", a.Min)
	case a.Min == a.Max:
		return fmt.Sprintf("%d", a.Min)
	default:
		return fmt.Sprintf("%d to %d", a.Min, a.Max)
	}
}

// ArityOf returns the arity recorded on a builtin.
func ArityOf(b *object.Builtin) Arity {
	min, max := b.Arity()
	return Arity{Min: min, Max: max}
}

func (a Arity) plural() string {
	n := a.Max
	if n == object.Variadic {
		n = a.Min
	}
	if n == 1 {
		return ""
	}
	return "s"
}
