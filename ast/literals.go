package ast

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/safescript/safescript/internal/token"
)

// Number is an expression node that holds a numeric literal. All numbers are
// 64-bit floats.
type Number struct {
	ValuePos token.Position // position of the literal
	Literal  string         // original text, e.g. "0x1F"
	Value    float64
}

func (x *Number) exprNode() {}

func (x *Number) Pos() token.Position { return x.ValuePos }
func (x *Number) End() token.Position { return x.ValuePos.Advance(len(x.Literal)) }

func (x *Number) String() string {
	if x.Literal != "" {
		return x.Literal
	}
	return fmt.Sprint(x.Value)
}

// Nil is an expression node that holds a nil value.
type Nil struct {
	NilPos  token.Position // position of "nil" or "null"
	Literal string
}

func (x *Nil) exprNode() {}

func (x *Nil) Pos() token.Position { return x.NilPos }
func (x *Nil) End() token.Position { return x.NilPos.Advance(len(x.Literal)) }

func (x *Nil) String() string { return "nil" }

// Bool is an expression node that holds a boolean literal.
type Bool struct {
	ValuePos token.Position // position of "true" or "false"
	Value    bool
}

func (x *Bool) exprNode() {}

func (x *Bool) Pos() token.Position { return x.ValuePos }
func (x *Bool) End() token.Position { return x.ValuePos.Advance(len(x.String())) }

func (x *Bool) String() string {
	if x.Value {
		return "true"
	}
	return "false"
}

// String is an expression node that holds a string literal.
type String struct {
	ValuePos token.Position // position of the opening quote
	Literal  string         // raw body between the quotes, escapes intact
	Value    string         // decoded value
}

func (x *String) exprNode() {}

func (x *String) Pos() token.Position { return x.ValuePos }
func (x *String) End() token.Position { return x.ValuePos.Advance(len(x.Literal) + 2) }

func (x *String) String() string { return fmt.Sprintf("%q", x.Value) }

// Func is an expression node that holds a function literal. A named function
// in statement position is a declaration and is hoisted within its block.
type Func struct {
	Func   token.Position // position of "function" keyword
	Name   *Ident         // function name; nil for anonymous functions
	Lparen token.Position // position of "("
	Params []*Ident       // parameter names
	Rparen token.Position // position of ")"
	Body   *Block         // function body
}

func (x *Func) exprNode() {}
func (x *Func) stmtNode() {} // named functions are also statements

func (x *Func) Pos() token.Position { return x.Func }

func (x *Func) End() token.Position {
	if x.Body != nil {
		return x.Body.End()
	}
	return x.Rparen.Advance(1)
}

// ParamNames returns the names of the parameters in order.
func (x *Func) ParamNames() []string {
	names := make([]string, 0, len(x.Params))
	for _, p := range x.Params {
		names = append(names, p.Name)
	}
	return names
}

func (x *Func) String() string {
	var out bytes.Buffer
	out.WriteString("function")
	if x.Name != nil {
		out.WriteString(" ")
		out.WriteString(x.Name.Name)
	}
	out.WriteString("(")
	out.WriteString(strings.Join(x.ParamNames(), ", "))
	out.WriteString(") ")
	out.WriteString(x.Body.String())
	return out.String()
}

// List is an expression node that builds a list data structure.
type List struct {
	Lbrack token.Position // position of "["
	Items  []Expr         // list elements
	Rbrack token.Position // position of "]"
}

func (x *List) exprNode() {}

func (x *List) Pos() token.Position { return x.Lbrack }
func (x *List) End() token.Position { return x.Rbrack.Advance(1) }

func (x *List) String() string {
	return "[" + joinExprs(x.Items) + "]"
}

// MapItem represents a single key-value pair in a map literal. Keys written
// as bare identifiers are stored as strings.
type MapItem struct {
	Key   *String
	Value Expr
}

// Map is an expression node that builds a map data structure.
type Map struct {
	Lbrace token.Position // position of "{"
	Items  []MapItem      // ordered items
	Rbrace token.Position // position of "}"
}

func (x *Map) exprNode() {}

func (x *Map) Pos() token.Position { return x.Lbrace }
func (x *Map) End() token.Position { return x.Rbrace.Advance(1) }

func (x *Map) String() string {
	pairs := make([]string, len(x.Items))
	for i, item := range x.Items {
		pairs[i] = item.Key.String() + ": " + item.Value.String()
	}
	return "{" + strings.Join(pairs, ", ") + "}"
}
