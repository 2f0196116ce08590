package ast

import (
	"strings"

	"github.com/safescript/safescript/internal/token"
)

// Ident is an expression node that refers to a variable by name.
type Ident struct {
	NamePos token.Position // position of identifier
	Name    string         // identifier name
}

func (x *Ident) exprNode() {}

func (x *Ident) Pos() token.Position { return x.NamePos }
func (x *Ident) End() token.Position { return x.NamePos.Advance(len(x.Name)) }

func (x *Ident) String() string { return x.Name }

// Prefix is an operator expression where the operator precedes the operand.
// Examples include "!false" and "-x".
type Prefix struct {
	OpPos token.Position // position of operator
	Op    string         // operator: "!" or "-"
	X     Expr           // operand
}

func (x *Prefix) exprNode() {}

func (x *Prefix) Pos() token.Position { return x.OpPos }
func (x *Prefix) End() token.Position { return x.X.End() }

func (x *Prefix) String() string {
	return "(" + x.Op + x.X.String() + ")"
}

// Infix is an operator expression where the operator is between the operands.
// Examples include "x + y" and "a && b". The logical operators "&&", "||"
// and "??" short-circuit.
type Infix struct {
	X     Expr           // left operand
	OpPos token.Position // position of operator
	Op    string         // operator: "+", "-", "*", "/", etc.
	Y     Expr           // right operand
}

func (x *Infix) exprNode() {}

func (x *Infix) Pos() token.Position { return x.X.Pos() }
func (x *Infix) End() token.Position { return x.Y.End() }

func (x *Infix) String() string {
	return "(" + x.X.String() + " " + x.Op + " " + x.Y.String() + ")"
}

// IsLogical reports whether the operator short-circuits.
func (x *Infix) IsLogical() bool {
	return x.Op == "&&" || x.Op == "||" || x.Op == "??"
}

// Ternary is an expression node that defines a ternary expression and evaluates
// to one of two values based on a condition.
type Ternary struct {
	Cond     Expr           // condition
	Question token.Position // position of "?"
	IfTrue   Expr           // value if condition is true
	Colon    token.Position // position of ":"
	IfFalse  Expr           // value if condition is false
}

func (x *Ternary) exprNode() {}

func (x *Ternary) Pos() token.Position { return x.Cond.Pos() }
func (x *Ternary) End() token.Position { return x.IfFalse.End() }

func (x *Ternary) String() string {
	return "(" + x.Cond.String() + " ? " + x.IfTrue.String() + " : " + x.IfFalse.String() + ")"
}

// Assign is an expression node that stores a value. The target is an
// *Ident, an *Index or a *GetAttr. Compound operators such as "+=" read the
// target, apply the operator and store the result.
type Assign struct {
	Target Expr           // assignment target
	OpPos  token.Position // position of operator
	Op     string         // "=", "+=", "-=", "*=", "/=", "%="
	Value  Expr           // value to assign
}

func (x *Assign) exprNode() {}

func (x *Assign) Pos() token.Position { return x.Target.Pos() }
func (x *Assign) End() token.Position { return x.Value.End() }

// BinaryOp returns the arithmetic operator of a compound assignment, or ""
// for a plain assignment.
func (x *Assign) BinaryOp() string {
	if x.Op == "=" {
		return ""
	}
	return strings.TrimSuffix(x.Op, "=")
}

func (x *Assign) String() string {
	return x.Target.String() + " " + x.Op + " " + x.Value.String()
}

// Call is an expression node that describes the invocation of a function.
type Call struct {
	Fun    Expr           // function expression
	Lparen token.Position // position of "("
	Args   []Expr         // function arguments
	Rparen token.Position // position of ")"
}

func (x *Call) exprNode() {}

func (x *Call) Pos() token.Position { return x.Fun.Pos() }
func (x *Call) End() token.Position { return x.Rparen.Advance(1) }

func (x *Call) String() string {
	return x.Fun.String() + "(" + joinExprs(x.Args) + ")"
}

// GetAttr is an expression node that describes the access of an attribute on
// an object.
type GetAttr struct {
	X      Expr           // object expression
	Period token.Position // position of "."
	Attr   *Ident         // attribute name
}

func (x *GetAttr) exprNode() {}

func (x *GetAttr) Pos() token.Position { return x.X.Pos() }
func (x *GetAttr) End() token.Position { return x.Attr.End() }

func (x *GetAttr) String() string {
	return x.X.String() + "." + x.Attr.Name
}

// Index is an expression node that describes indexing on an object.
type Index struct {
	X      Expr           // object expression
	Lbrack token.Position // position of "["
	Index  Expr           // index expression
	Rbrack token.Position // position of "]"
}

func (x *Index) exprNode() {}

func (x *Index) Pos() token.Position { return x.X.Pos() }
func (x *Index) End() token.Position { return x.Rbrack.Advance(1) }

func (x *Index) String() string {
	return "(" + x.X.String() + "[" + x.Index.String() + "])"
}

func joinExprs(exprs []Expr) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}
