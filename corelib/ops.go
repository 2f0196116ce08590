package corelib

import (
	"context"

	"github.com/safescript/safescript/native"
	"github.com/safescript/safescript/object"
	"github.com/safescript/safescript/op"
)

// OpsModule is the name of the module holding the operator functions that
// lowered programs call in place of arithmetic operators.
const OpsModule = "ops"

func binary(opType op.BinaryOpType) object.BuiltinFunction {
	return func(ctx context.Context, args ...object.Object) (object.Object, error) {
		return object.BinaryOp(opType, args[0], args[1])
	}
}

func negate(ctx context.Context, args ...object.Object) (object.Object, error) {
	return object.Negate(args[0])
}

// OpsBindings returns the members of the ops module.
func OpsBindings() []native.Binding {
	two := native.Exact(2)
	return []native.Binding{
		{Name: "add", Arity: two, Fn: binary(op.Add)},
		{Name: "sub", Arity: two, Fn: binary(op.Subtract)},
		{Name: "mul", Arity: two, Fn: binary(op.Multiply)},
		{Name: "div", Arity: two, Fn: binary(op.Divide)},
		{Name: "rem", Arity: two, Fn: binary(op.Modulo)},
		{Name: "pow", Arity: two, Fn: binary(op.Power)},
		{Name: "neg", Arity: native.Exact(1), Fn: negate},
	}
}

// OpsMember returns the ops member name for a binary operator, if any.
func OpsMember(opType op.BinaryOpType) (string, bool) {
	switch opType {
	case op.Add:
		return "add", true
	case op.Subtract:
		return "sub", true
	case op.Multiply:
		return "mul", true
	case op.Divide:
		return "div", true
	case op.Modulo:
		return "rem", true
	case op.Power:
		return "pow", true
	}
	return "", false
}
