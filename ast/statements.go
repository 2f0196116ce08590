package ast

import (
	"bytes"

	"github.com/safescript/safescript/internal/token"
)

// Var is a statement node used to declare a new variable with "let" or a
// constant with "const".
type Var struct {
	Let   token.Position // position of "let" or "const"
	Const bool           // true for "const" declarations
	Name  *Ident         // variable name
	Value Expr           // initial value; nil for a bare "let x"
}

func (x *Var) stmtNode() {}

func (x *Var) Pos() token.Position { return x.Let }

func (x *Var) End() token.Position {
	if x.Value != nil {
		return x.Value.End()
	}
	return x.Name.End()
}

// Keyword returns "let" or "const".
func (x *Var) Keyword() string {
	if x.Const {
		return "const"
	}
	return "let"
}

func (x *Var) String() string {
	var out bytes.Buffer
	out.WriteString(x.Keyword() + " ")
	out.WriteString(x.Name.Name)
	if x.Value != nil {
		out.WriteString(" = ")
		out.WriteString(x.Value.String())
	}
	return out.String()
}

// ExprStmt wraps an expression so it may be used in statement position.
type ExprStmt struct {
	X Expr
}

func (x *ExprStmt) stmtNode() {}

func (x *ExprStmt) Pos() token.Position { return x.X.Pos() }
func (x *ExprStmt) End() token.Position { return x.X.End() }

func (x *ExprStmt) String() string { return x.X.String() }

// Return is a statement node that returns a value from a function.
type Return struct {
	Return token.Position // position of "return" keyword
	Value  Expr           // return value; nil for bare return
}

func (x *Return) stmtNode() {}

func (x *Return) Pos() token.Position { return x.Return }

func (x *Return) End() token.Position {
	if x.Value != nil {
		return x.Value.End()
	}
	return x.Return.Advance(6) // len("return")
}

func (x *Return) String() string {
	if x.Value != nil {
		return "return " + x.Value.String()
	}
	return "return"
}

// If is a statement node that represents an if/else chain. Alternative is
// either a *Block or a nested *If for "else if".
type If struct {
	If          token.Position // position of "if" keyword
	Cond        Expr           // condition
	Consequence *Block         // then branch
	Alternative Stmt           // else branch; nil if no else
}

func (x *If) stmtNode() {}

func (x *If) Pos() token.Position { return x.If }

func (x *If) End() token.Position {
	if x.Alternative != nil {
		return x.Alternative.End()
	}
	return x.Consequence.End()
}

func (x *If) String() string {
	var out bytes.Buffer
	out.WriteString("if (")
	out.WriteString(x.Cond.String())
	out.WriteString(") ")
	out.WriteString(x.Consequence.String())
	if x.Alternative != nil {
		out.WriteString(" else ")
		out.WriteString(x.Alternative.String())
	}
	return out.String()
}

// While is a statement node for a condition-controlled loop.
type While struct {
	While token.Position // position of "while" keyword
	Cond  Expr
	Body  *Block
}

func (x *While) stmtNode() {}

func (x *While) Pos() token.Position { return x.While }
func (x *While) End() token.Position { return x.Body.End() }

func (x *While) String() string {
	return "while (" + x.Cond.String() + ") " + x.Body.String()
}

// ForOf is a statement node that iterates over the elements of a list, the
// keys of a map or the characters of a string.
type ForOf struct {
	For   token.Position // position of "for" keyword
	Const bool           // true if the loop variable was declared with const
	Name  *Ident         // loop variable
	Iter  Expr           // iterable expression
	Body  *Block
}

func (x *ForOf) stmtNode() {}

func (x *ForOf) Pos() token.Position { return x.For }
func (x *ForOf) End() token.Position { return x.Body.End() }

func (x *ForOf) String() string {
	kw := "let"
	if x.Const {
		kw = "const"
	}
	return "for (" + kw + " " + x.Name.Name + " of " + x.Iter.String() + ") " + x.Body.String()
}

// Break is a statement node that exits the innermost loop.
type Break struct {
	Break token.Position
}

func (x *Break) stmtNode() {}

func (x *Break) Pos() token.Position { return x.Break }
func (x *Break) End() token.Position { return x.Break.Advance(5) }
func (x *Break) String() string      { return "break" }

// Continue is a statement node that skips to the next loop iteration.
type Continue struct {
	Continue token.Position
}

func (x *Continue) stmtNode() {}

func (x *Continue) Pos() token.Position { return x.Continue }
func (x *Continue) End() token.Position { return x.Continue.Advance(8) }
func (x *Continue) String() string      { return "continue" }

// Throw is a statement node that raises a value.
type Throw struct {
	Throw token.Position // position of "throw" keyword
	Value Expr
}

func (x *Throw) stmtNode() {}

func (x *Throw) Pos() token.Position { return x.Throw }
func (x *Throw) End() token.Position { return x.Value.End() }

func (x *Throw) String() string { return "throw " + x.Value.String() }

// Try is a statement node for try/catch. CatchIdent may be nil when the
// catch clause does not bind the error.
type Try struct {
	Try        token.Position // position of "try" keyword
	Body       *Block
	CatchIdent *Ident
	CatchBlock *Block
}

func (x *Try) stmtNode() {}

func (x *Try) Pos() token.Position { return x.Try }
func (x *Try) End() token.Position { return x.CatchBlock.End() }

func (x *Try) String() string {
	var out bytes.Buffer
	out.WriteString("try ")
	out.WriteString(x.Body.String())
	out.WriteString(" catch ")
	if x.CatchIdent != nil {
		out.WriteString("(" + x.CatchIdent.Name + ") ")
	}
	out.WriteString(x.CatchBlock.String())
	return out.String()
}
