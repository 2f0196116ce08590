package ast

import "math"

// Equal reports whether two trees have the same structure and values,
// ignoring source positions and the original spelling of literals.
func Equal(a, b Node) bool {
	if isNilNode(a) || isNilNode(b) {
		return isNilNode(a) && isNilNode(b)
	}
	switch x := a.(type) {
	case *Program:
		y, ok := b.(*Program)
		return ok && equalStmts(x.Stmts, y.Stmts)
	case *Block:
		y, ok := b.(*Block)
		return ok && equalStmts(x.Stmts, y.Stmts)
	case *Var:
		y, ok := b.(*Var)
		return ok && x.Const == y.Const && Equal(x.Name, y.Name) && Equal(x.Value, y.Value)
	case *ExprStmt:
		y, ok := b.(*ExprStmt)
		return ok && Equal(x.X, y.X)
	case *Return:
		y, ok := b.(*Return)
		return ok && Equal(x.Value, y.Value)
	case *If:
		y, ok := b.(*If)
		return ok && Equal(x.Cond, y.Cond) && Equal(x.Consequence, y.Consequence) &&
			Equal(x.Alternative, y.Alternative)
	case *While:
		y, ok := b.(*While)
		return ok && Equal(x.Cond, y.Cond) && Equal(x.Body, y.Body)
	case *ForOf:
		y, ok := b.(*ForOf)
		return ok && x.Const == y.Const && Equal(x.Name, y.Name) &&
			Equal(x.Iter, y.Iter) && Equal(x.Body, y.Body)
	case *Break:
		_, ok := b.(*Break)
		return ok
	case *Continue:
		_, ok := b.(*Continue)
		return ok
	case *Throw:
		y, ok := b.(*Throw)
		return ok && Equal(x.Value, y.Value)
	case *Try:
		y, ok := b.(*Try)
		return ok && Equal(x.Body, y.Body) && Equal(x.CatchIdent, y.CatchIdent) &&
			Equal(x.CatchBlock, y.CatchBlock)
	case *Func:
		y, ok := b.(*Func)
		if !ok || !Equal(x.Name, y.Name) || len(x.Params) != len(y.Params) {
			return false
		}
		for i := range x.Params {
			if x.Params[i].Name != y.Params[i].Name {
				return false
			}
		}
		return Equal(x.Body, y.Body)
	case *Ident:
		y, ok := b.(*Ident)
		return ok && x.Name == y.Name
	case *Nil:
		_, ok := b.(*Nil)
		return ok
	case *Bool:
		y, ok := b.(*Bool)
		return ok && x.Value == y.Value
	case *Number:
		y, ok := b.(*Number)
		return ok && (x.Value == y.Value || (math.IsNaN(x.Value) && math.IsNaN(y.Value)))
	case *String:
		y, ok := b.(*String)
		return ok && x.Value == y.Value
	case *List:
		y, ok := b.(*List)
		return ok && equalExprs(x.Items, y.Items)
	case *Map:
		y, ok := b.(*Map)
		if !ok || len(x.Items) != len(y.Items) {
			return false
		}
		for i := range x.Items {
			if !Equal(x.Items[i].Key, y.Items[i].Key) || !Equal(x.Items[i].Value, y.Items[i].Value) {
				return false
			}
		}
		return true
	case *Prefix:
		y, ok := b.(*Prefix)
		return ok && x.Op == y.Op && Equal(x.X, y.X)
	case *Infix:
		y, ok := b.(*Infix)
		return ok && x.Op == y.Op && Equal(x.X, y.X) && Equal(x.Y, y.Y)
	case *Ternary:
		y, ok := b.(*Ternary)
		return ok && Equal(x.Cond, y.Cond) && Equal(x.IfTrue, y.IfTrue) && Equal(x.IfFalse, y.IfFalse)
	case *Assign:
		y, ok := b.(*Assign)
		return ok && x.Op == y.Op && Equal(x.Target, y.Target) && Equal(x.Value, y.Value)
	case *Call:
		y, ok := b.(*Call)
		return ok && Equal(x.Fun, y.Fun) && equalExprs(x.Args, y.Args)
	case *GetAttr:
		y, ok := b.(*GetAttr)
		return ok && Equal(x.X, y.X) && Equal(x.Attr, y.Attr)
	case *Index:
		y, ok := b.(*Index)
		return ok && Equal(x.X, y.X) && Equal(x.Index, y.Index)
	}
	return false
}

func equalStmts(a, b []Stmt) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func equalExprs(a, b []Expr) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// isNilNode reports whether n is nil or a typed nil pointer.
func isNilNode(n Node) bool {
	switch v := n.(type) {
	case nil:
		return true
	case *Ident:
		return v == nil
	case *Block:
		return v == nil
	case *String:
		return v == nil
	}
	return false
}
