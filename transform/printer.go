package transform

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/safescript/safescript/ast"
	"github.com/safescript/safescript/object"
	"github.com/safescript/safescript/parser"
)

const indentation = "    "

// Print renders a node as canonical source text. Statements are placed one
// per line, blocks are indented and expressions carry only the parentheses
// their precedence requires, so parsing the output yields an equal tree.
func Print(node ast.Node) string {
	p := &printer{}
	switch n := node.(type) {
	case *ast.Program:
		p.stmtList(n.Stmts)
	case ast.Stmt:
		p.stmt(n)
	case ast.Expr:
		p.expr(n, parser.LOWEST)
	}
	return p.buf.String()
}

type printer struct {
	buf    strings.Builder
	indent int
}

func (p *printer) write(s string) {
	p.buf.WriteString(s)
}

func (p *printer) newline() {
	p.buf.WriteByte('\n')
	p.write(strings.Repeat(indentation, p.indent))
}

func (p *printer) stmtList(stmts []ast.Stmt) {
	for i, stmt := range stmts {
		if i > 0 {
			p.newline()
		}
		p.stmt(stmt)
	}
}

func (p *printer) block(block *ast.Block) {
	if len(block.Stmts) == 0 {
		p.write("{}")
		return
	}
	p.write("{")
	p.indent++
	p.newline()
	p.stmtList(block.Stmts)
	p.indent--
	p.newline()
	p.write("}")
}

func (p *printer) stmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.Block:
		p.block(s)
	case *ast.Var:
		p.write(s.Keyword() + " " + s.Name.Name)
		if s.Value != nil {
			p.write(" = ")
			p.expr(s.Value, parser.LOWEST)
		}
	case *ast.ExprStmt:
		sub := &printer{indent: p.indent}
		sub.expr(s.X, parser.LOWEST)
		text := sub.buf.String()
		if startsAmbiguously(text) {
			text = "(" + text + ")"
		}
		p.write(text)
	case *ast.Func:
		p.function(s)
	case *ast.Return:
		p.write("return")
		if s.Value != nil {
			p.write(" ")
			p.expr(s.Value, parser.LOWEST)
		}
	case *ast.If:
		p.write("if (")
		p.expr(s.Cond, parser.LOWEST)
		p.write(") ")
		p.block(s.Consequence)
		if s.Alternative != nil {
			p.write(" else ")
			p.stmt(s.Alternative)
		}
	case *ast.While:
		p.write("while (")
		p.expr(s.Cond, parser.LOWEST)
		p.write(") ")
		p.block(s.Body)
	case *ast.ForOf:
		keyword := "let"
		if s.Const {
			keyword = "const"
		}
		p.write("for (" + keyword + " " + s.Name.Name + " of ")
		p.expr(s.Iter, parser.LOWEST)
		p.write(") ")
		p.block(s.Body)
	case *ast.Break:
		p.write("break")
	case *ast.Continue:
		p.write("continue")
	case *ast.Throw:
		p.write("throw ")
		p.expr(s.Value, parser.LOWEST)
	case *ast.Try:
		p.write("try ")
		p.block(s.Body)
		p.write(" catch ")
		if s.CatchIdent != nil {
			p.write("(" + s.CatchIdent.Name + ") ")
		}
		p.block(s.CatchBlock)
	default:
		p.write(stmt.String())
	}
}

func (p *printer) function(fn *ast.Func) {
	p.write("function")
	if fn.Name != nil {
		p.write(" " + fn.Name.Name)
	}
	p.write("(" + strings.Join(fn.ParamNames(), ", ") + ") ")
	p.block(fn.Body)
}

// atom is the binding power of expressions that never need parentheses.
const atom = parser.CALL + 1

func precedence(expr ast.Expr) int {
	switch e := expr.(type) {
	case *ast.Assign:
		return parser.ASSIGN
	case *ast.Ternary:
		return parser.TERNARY
	case *ast.Infix:
		return parser.Precedence(e.Op)
	case *ast.Prefix:
		return parser.PREFIX
	case *ast.Call, *ast.Index, *ast.GetAttr:
		return parser.CALL
	case *ast.Number:
		// Printed with a leading "-"
		if e.Value < 0 {
			return parser.PREFIX
		}
	}
	return atom
}

// expr prints expr, wrapped in parentheses unless it binds at least as
// tightly as minPrec.
func (p *printer) expr(expr ast.Expr, minPrec int) {
	if precedence(expr) < minPrec {
		p.write("(")
		p.exprBare(expr)
		p.write(")")
		return
	}
	p.exprBare(expr)
}

func (p *printer) exprBare(expr ast.Expr) {
	switch e := expr.(type) {
	case *ast.Ident:
		p.write(e.Name)
	case *ast.Nil:
		p.write("nil")
	case *ast.Bool:
		p.write(e.String())
	case *ast.Number:
		p.write(object.FormatNumber(e.Value))
	case *ast.String:
		p.write(Quote(e.Value))
	case *ast.List:
		p.write("[")
		p.exprList(e.Items)
		p.write("]")
	case *ast.Map:
		p.write("{")
		for i, item := range e.Items {
			if i > 0 {
				p.write(", ")
			}
			p.write(Quote(item.Key.Value) + ": ")
			p.expr(item.Value, parser.LOWEST)
		}
		p.write("}")
	case *ast.Func:
		p.function(e)
	case *ast.Prefix:
		p.write(e.Op)
		sub := &printer{indent: p.indent}
		sub.expr(e.X, parser.PREFIX)
		text := sub.buf.String()
		if e.Op == "-" && strings.HasPrefix(text, "-") {
			p.write(" ")
		}
		p.write(text)
	case *ast.Infix:
		// Left-associative operators bind a left operand of equal
		// precedence; "**" binds its right one.
		prec := parser.Precedence(e.Op)
		left, right := prec, prec+1
		if e.Op == "**" {
			left, right = prec+1, prec
		}
		p.expr(e.X, left)
		p.write(" " + e.Op + " ")
		p.expr(e.Y, right)
	case *ast.Ternary:
		p.expr(e.Cond, parser.TERNARY+1)
		p.write(" ? ")
		p.expr(e.IfTrue, parser.LOWEST)
		p.write(" : ")
		p.expr(e.IfFalse, parser.TERNARY)
	case *ast.Assign:
		p.expr(e.Target, parser.CALL)
		p.write(" " + e.Op + " ")
		p.expr(e.Value, parser.LOWEST)
	case *ast.Call:
		p.expr(e.Fun, parser.CALL)
		p.write("(")
		p.exprList(e.Args)
		p.write(")")
	case *ast.GetAttr:
		p.operand(e.X)
		p.write("." + e.Attr.Name)
	case *ast.Index:
		p.operand(e.X)
		p.write("[")
		p.expr(e.Index, parser.LOWEST)
		p.write("]")
	default:
		p.write(expr.String())
	}
}

// operand prints the object of an attribute or index expression. Numbers
// are parenthesized so a following "." is not read as a decimal point.
func (p *printer) operand(x ast.Expr) {
	if _, ok := x.(*ast.Number); ok {
		p.write("(")
		p.exprBare(x)
		p.write(")")
		return
	}
	p.expr(x, parser.CALL)
}

func (p *printer) exprList(exprs []ast.Expr) {
	for i, e := range exprs {
		if i > 0 {
			p.write(", ")
		}
		p.expr(e, parser.LOWEST)
	}
}

// startsAmbiguously reports whether an expression statement would begin
// with "{" or "function", which the parser reads as a block or a
// declaration.
func startsAmbiguously(text string) bool {
	return strings.HasPrefix(text, "{") ||
		strings.HasPrefix(text, "function(") ||
		strings.HasPrefix(text, "function ")
}

// Quote returns s as a double-quoted SafeScript string literal.
func Quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		case 0:
			b.WriteString(`\0`)
		default:
			switch {
			case r < 0x80 && !unicode.IsPrint(r):
				fmt.Fprintf(&b, `\x%02x`, r)
			case !unicode.IsPrint(r):
				fmt.Fprintf(&b, `\u{%x}`, r)
			default:
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}
