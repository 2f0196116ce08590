package transform

import (
	"github.com/safescript/safescript/ast"
	"github.com/safescript/safescript/corelib"
	"github.com/safescript/safescript/internal/token"
	"github.com/safescript/safescript/op"
)

// LowerOperators returns a Transformer that replaces arithmetic operators
// with calls into the corelib ops module, so "a + b" becomes
// "ops.add(a, b)" and "-x" becomes "ops.neg(x)". Compound assignments are
// expanded when their target can be read twice without side effects, for
// example "x += 1" becomes "x = ops.add(x, 1)".
func LowerOperators() Transformer {
	return TransformerFunc(func(p *ast.Program) (*ast.Program, error) {
		return Rewrite(p, lower), nil
	})
}

func lower(expr ast.Expr) ast.Expr {
	switch e := expr.(type) {
	case *ast.Infix:
		binop, ok := op.BinaryOpFromString(e.Op)
		if !ok {
			return expr
		}
		member, ok := corelib.OpsMember(binop)
		if !ok {
			return expr
		}
		return opsCall(member, e.X.Pos(), e.X, e.Y)
	case *ast.Prefix:
		if e.Op != "-" {
			return expr
		}
		return opsCall("neg", e.OpPos, e.X)
	case *ast.Assign:
		name := e.BinaryOp()
		if name == "" || !pure(e.Target) {
			return expr
		}
		binop, ok := op.BinaryOpFromString(name)
		if !ok {
			return expr
		}
		member, ok := corelib.OpsMember(binop)
		if !ok {
			return expr
		}
		return &ast.Assign{
			Target: e.Target,
			OpPos:  e.OpPos,
			Op:     "=",
			Value:  opsCall(member, e.OpPos, e.Target, e.Value),
		}
	}
	return expr
}

func opsCall(member string, pos token.Position, args ...ast.Expr) *ast.Call {
	return &ast.Call{
		Fun: &ast.GetAttr{
			X:      &ast.Ident{NamePos: pos, Name: corelib.OpsModule},
			Period: pos,
			Attr:   &ast.Ident{NamePos: pos, Name: member},
		},
		Lparen: pos,
		Args:   args,
		Rparen: args[len(args)-1].End(),
	}
}

// pure reports whether evaluating expr twice is indistinguishable from
// evaluating it once.
func pure(expr ast.Expr) bool {
	switch e := expr.(type) {
	case *ast.Ident, *ast.Nil, *ast.Bool, *ast.Number, *ast.String:
		return true
	case *ast.GetAttr:
		return pure(e.X)
	case *ast.Index:
		return pure(e.X) && pure(e.Index)
	}
	return false
}
