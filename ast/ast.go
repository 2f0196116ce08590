// Package ast defines the abstract syntax tree representation of SafeScript
// code.
package ast

import (
	"bytes"

	"github.com/safescript/safescript/internal/token"
)

// Node represents a portion of the syntax tree. All nodes have position
// information indicating where they appear in the source code.
type Node interface {
	// Pos returns the position of the first character belonging to the node.
	Pos() token.Position

	// End returns the position of the first character immediately after the node.
	End() token.Position

	// String returns a human friendly representation of the Node. This should
	// be similar to the original source code, but not necessarily identical.
	String() string
}

// Stmt represents a statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Expr represents an expression node. Expressions evaluate to a value
// and may be embedded within other expressions.
type Expr interface {
	Node
	exprNode()
}

// Program represents a complete program.
type Program struct {
	Stmts []Stmt
}

func (x *Program) Pos() token.Position {
	if len(x.Stmts) > 0 {
		return x.Stmts[0].Pos()
	}
	return token.NoPos
}

func (x *Program) End() token.Position {
	if len(x.Stmts) > 0 {
		return x.Stmts[len(x.Stmts)-1].End()
	}
	return token.NoPos
}

func (x *Program) String() string {
	var out bytes.Buffer
	for i, s := range x.Stmts {
		if i > 0 {
			out.WriteString("\n")
		}
		out.WriteString(s.String())
	}
	return out.String()
}

// Block is a braced sequence of statements that introduces a scope.
type Block struct {
	Lbrace token.Position // position of "{"
	Stmts  []Stmt
	Rbrace token.Position // position of "}"
}

func (x *Block) stmtNode() {}

func (x *Block) Pos() token.Position { return x.Lbrace }
func (x *Block) End() token.Position { return x.Rbrace.Advance(1) }

func (x *Block) String() string {
	var out bytes.Buffer
	out.WriteString("{")
	for i, s := range x.Stmts {
		if i > 0 {
			out.WriteString("; ")
		} else {
			out.WriteString(" ")
		}
		out.WriteString(s.String())
	}
	out.WriteString(" }")
	return out.String()
}

// EndsWithReturn reports whether the last statement of the block is a return.
func (x *Block) EndsWithReturn() bool {
	if len(x.Stmts) == 0 {
		return false
	}
	_, ok := x.Stmts[len(x.Stmts)-1].(*Return)
	return ok
}

// FuncDecls returns the function declarations made directly in the list of
// statements. They are hoisted to the top of their block.
func FuncDecls(stmts []Stmt) []*Func {
	var decls []*Func
	for _, s := range stmts {
		if fn, ok := s.(*Func); ok && fn.Name != nil {
			decls = append(decls, fn)
		}
	}
	return decls
}
