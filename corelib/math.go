package corelib

import (
	"context"
	"math"

	"github.com/safescript/safescript/native"
	"github.com/safescript/safescript/object"
)

// MathModule is the name of the module holding numeric helpers.
const MathModule = "math"

func unary(name string, fn func(float64) float64) object.BuiltinFunction {
	return func(ctx context.Context, args ...object.Object) (object.Object, error) {
		x, err := object.AsNumber(args[0])
		if err != nil {
			return nil, object.TypeErrorf("math.%s() expected a number (%s given)", name, object.TypeName(args[0]))
		}
		return object.NewNumber(fn(x)), nil
	}
}

func pair(name string, fn func(x, y float64) float64) object.BuiltinFunction {
	return func(ctx context.Context, args ...object.Object) (object.Object, error) {
		x, err := object.AsNumber(args[0])
		if err != nil {
			return nil, object.TypeErrorf("math.%s() expected numbers (%s given)", name, object.TypeName(args[0]))
		}
		y, err := object.AsNumber(args[1])
		if err != nil {
			return nil, object.TypeErrorf("math.%s() expected numbers (%s given)", name, object.TypeName(args[1]))
		}
		return object.NewNumber(fn(x, y)), nil
	}
}

// Sum adds the numbers of a list. The sum of an empty list is 0.
func Sum(ctx context.Context, args ...object.Object) (object.Object, error) {
	list, ok := args[0].(*object.List)
	if !ok {
		return nil, object.TypeErrorf("math.sum() expected a list (%s given)", object.TypeName(args[0]))
	}
	var total float64
	for _, item := range list.Value() {
		n, err := object.AsNumber(item)
		if err != nil {
			return nil, object.TypeErrorf("math.sum() expected a list of numbers (found %s)", object.TypeName(item))
		}
		total += n
	}
	return object.NewNumber(total), nil
}

func constant(v float64) object.BuiltinFunction {
	return func(ctx context.Context, args ...object.Object) (object.Object, error) {
		return object.NewNumber(v), nil
	}
}

// MathBindings returns the members of the math module.
func MathBindings() []native.Binding {
	one, two := native.Exact(1), native.Exact(2)
	return []native.Binding{
		{Name: "abs", Arity: one, Fn: unary("abs", math.Abs)},
		{Name: "ceil", Arity: one, Fn: unary("ceil", math.Ceil)},
		{Name: "floor", Arity: one, Fn: unary("floor", math.Floor)},
		{Name: "round", Arity: one, Fn: unary("round", math.Round)},
		{Name: "sqrt", Arity: one, Fn: unary("sqrt", math.Sqrt)},
		{Name: "log", Arity: one, Fn: unary("log", math.Log)},
		{Name: "min", Arity: two, Fn: pair("min", math.Min)},
		{Name: "max", Arity: two, Fn: pair("max", math.Max)},
		{Name: "pow", Arity: two, Fn: pair("pow", math.Pow)},
		{Name: "atan2", Arity: two, Fn: pair("atan2", math.Atan2)},
		{Name: "sum", Arity: one, Fn: Sum},
		{Name: "pi", Arity: native.Exact(0), Fn: constant(math.Pi)},
		{Name: "inf", Arity: native.Exact(0), Fn: constant(math.Inf(1))},
	}
}
