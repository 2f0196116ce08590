package parser

import (
	"context"
	"strings"
	"testing"

	"github.com/deepnoodle-ai/wonton/assert"
	"github.com/safescript/safescript/ast"
	"github.com/safescript/safescript/errz"
)

func parse(t *testing.T, input string) *ast.Program {
	t.Helper()
	program, err := Parse(context.Background(), input)
	assert.Nil(t, err)
	assert.NotNil(t, program)
	return program
}

func parseExpr(t *testing.T, input string) ast.Expr {
	t.Helper()
	program := parse(t, input)
	assert.Len(t, program.Stmts, 1)
	stmt, ok := program.Stmts[0].(*ast.ExprStmt)
	assert.True(t, ok, "expected expression statement, got %T", program.Stmts[0])
	return stmt.X
}

func parseError(t *testing.T, input string) *errz.Error {
	t.Helper()
	program, err := Parse(context.Background(), input)
	assert.True(t, program == nil)
	assert.NotNil(t, err)
	e, ok := errz.As(err)
	assert.True(t, ok)
	return e
}

func TestTokenLineCol(t *testing.T) {
	code := `
let x = 5;
let y = 10;
	`
	program := parse(t, code)
	assert.Len(t, program.Stmts, 2)

	stmt1 := program.Stmts[0].(*ast.Var)
	stmt2 := program.Stmts[1].(*ast.Var)

	assert.Equal(t, stmt1.Pos().LineNumber(), 2)
	assert.Equal(t, stmt1.Pos().ColumnNumber(), 1)
	assert.Equal(t, stmt1.End().LineNumber(), 2)
	assert.Equal(t, stmt1.End().ColumnNumber(), 10)

	assert.Equal(t, stmt2.Pos().LineNumber(), 3)
	assert.Equal(t, stmt2.End().ColumnNumber(), 11)
}

func TestPrecedence(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"1 + 2 * 3", "(1 + (2 * 3))"},
		{"(1 + 2) * 3", "((1 + 2) * 3)"},
		{"a - b - c", "((a - b) - c)"},
		{"2 ** 3 ** 2", "(2 ** (3 ** 2))"},
		{"-2 ** 2", "((-2) ** 2)"},
		{"!a && b", "((!a) && b)"},
		{"a || b && c", "(a || (b && c))"},
		{"a ?? b || c", "(a ?? (b || c))"},
		{"a == b < c", "(a == (b < c))"},
		{"a < b == c >= d", "((a < b) == (c >= d))"},
		{"a % b * c", "((a % b) * c)"},
		{"a ? b : c ? d : e", "(a ? b : (c ? d : e))"},
		{"a ?? b ? c : d", "((a ?? b) ? c : d)"},
		{"x = y = 3", "x = y = 3"},
		{"x += a ? 1 : 2", "x += (a ? 1 : 2)"},
		{"f(a)(b)", "f(a)(b)"},
		{"a.b.c(1)[2]", "(a.b.c(1)[2])"},
		{"-a.b", "(-a.b)"},
		{"a + b(c * d)", "(a + b((c * d)))"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			expr := parseExpr(t, tt.input)
			assert.Equal(t, expr.String(), tt.expected)
		})
	}
}

func TestLiterals(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
	}{
		{"42", 42},
		{"1_000", 1000},
		{"0x1F", 31},
		{"0o17", 15},
		{"0b101", 5},
		{"2.5", 2.5},
		{"1e3", 1000},
		{"2.5e-1", 0.25},
	}
	for _, tt := range tests {
		n, ok := parseExpr(t, tt.input).(*ast.Number)
		assert.True(t, ok)
		assert.Equal(t, n.Value, tt.expected)
		assert.Equal(t, n.Literal, tt.input)
	}

	s := parseExpr(t, `"a\tb"`).(*ast.String)
	assert.Equal(t, s.Value, "a\tb")
	assert.Equal(t, s.Literal, `a\tb`)

	assert.Equal(t, parseExpr(t, "true").(*ast.Bool).Value, true)
	assert.Equal(t, parseExpr(t, "false").(*ast.Bool).Value, false)
	_, ok := parseExpr(t, "null").(*ast.Nil)
	assert.True(t, ok)
}

func TestListAndMap(t *testing.T) {
	list := parseExpr(t, "[1, 'two', [3],]").(*ast.List)
	assert.Len(t, list.Items, 3)

	empty := parseExpr(t, "[]").(*ast.List)
	assert.Len(t, empty.Items, 0)

	m := parseExpr(t, `({a: 1, "b c": 2, if: 3,})`).(*ast.Map)
	assert.Len(t, m.Items, 3)
	assert.Equal(t, m.Items[0].Key.Value, "a")
	assert.Equal(t, m.Items[1].Key.Value, "b c")
	assert.Equal(t, m.Items[2].Key.Value, "if")

	multiline := parseExpr(t, "[\n  1,\n  2\n]").(*ast.List)
	assert.Len(t, multiline.Items, 2)
}

func TestStatements(t *testing.T) {
	program := parse(t, `
let a = 1
const b = "x"
let c
function add(x, y) { return x + y }
if (a > 0) { a = 0 } else if (a < 0) { a = 1 } else { a = 2 }
while (a < 10) { a += 1; if (a == 5) { break } }
for (let v of [1, 2]) { continue }
try { throw "boom" } catch (e) { e }
try { f() } catch { }
{ let scoped = 1 }
;;
add(1, 2)
`)
	kinds := []string{}
	for _, stmt := range program.Stmts {
		switch s := stmt.(type) {
		case *ast.Var:
			kinds = append(kinds, s.Keyword())
		case *ast.Func:
			kinds = append(kinds, "function")
		case *ast.If:
			kinds = append(kinds, "if")
		case *ast.While:
			kinds = append(kinds, "while")
		case *ast.ForOf:
			kinds = append(kinds, "for")
		case *ast.Try:
			kinds = append(kinds, "try")
		case *ast.Block:
			kinds = append(kinds, "block")
		case *ast.ExprStmt:
			kinds = append(kinds, "expr")
		}
	}
	assert.Equal(t, kinds, []string{
		"let", "const", "let", "function", "if", "while", "for", "try", "try", "block", "expr",
	})

	elseIf := program.Stmts[4].(*ast.If)
	_, ok := elseIf.Alternative.(*ast.If)
	assert.True(t, ok)

	tryNoIdent := program.Stmts[8].(*ast.Try)
	assert.True(t, tryNoIdent.CatchIdent == nil)
}

func TestStatementTermination(t *testing.T) {
	program := parse(t, "let x = 1\nx\n-2")
	// A leading operator on a new line starts a new statement.
	assert.Len(t, program.Stmts, 3)

	_, err := Parse(context.Background(), "x\n+ 2")
	assert.NotNil(t, err)

	program = parse(t, "let x = 1 +\n  2")
	assert.Len(t, program.Stmts, 1)

	program = parse(t, "let x = (1\n + 2)")
	assert.Len(t, program.Stmts, 1)

	program = parse(t, "f(function() {\n a\n b\n})")
	assert.Len(t, program.Stmts, 1)

	program = parse(t, "if (x) { y } z")
	assert.Len(t, program.Stmts, 2)

	e := parseError(t, "let x = 1 let y = 2")
	assert.Equal(t, e.Kind, errz.Parse)
	assert.Contains(t, e.Message, "following statement")
}

func TestFunctionReturnOnNewLine(t *testing.T) {
	program := parse(t, "function f() {\n  return\n  1\n}")
	fn := program.Stmts[0].(*ast.Func)
	assert.Len(t, fn.Body.Stmts, 2)
	assert.Nil(t, fn.Body.Stmts[0].(*ast.Return).Value)
}

func TestAssignTargets(t *testing.T) {
	for _, input := range []string{"a = 1", "a[0] = 1", "a.b = 1", "a.b.c -= 2", "a %= 3"} {
		_, ok := parseExpr(t, input).(*ast.Assign)
		assert.True(t, ok, input)
	}
	for _, input := range []string{"1 = 2", "a + b = c", "f() = 1", "(a ? b : c) = 1"} {
		e := parseError(t, input)
		assert.Equal(t, e.Message, "invalid assignment target")
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		input    string
		contains string
	}{
		{"let = 1", "expected identifier"},
		{"let x = )", `invalid syntax (unexpected ")")`},
		{"[1, 2", `while parsing list (expected "]")`},
		{"(1 + 2", `grouped expression (expected ")")`},
		{"f(1, 2", `call arguments (expected ")")`},
		{"{ let x = 1", "unterminated block"},
		{"function f() { return 1", "unterminated block"},
		{"if x { }", `if statement (expected "(")`},
		{"for (x of y) { }", "for loop"},
		{"for (let x in y) { }", `(expected keyword of)`},
		{"try { }", "(expected keyword catch)"},
		{"return 1", "return outside function"},
		{"break", "break outside loop"},
		{"continue", "continue outside loop"},
		{"while (true) { function f() { break } }", "break outside loop"},
		{"const x", "missing initializer"},
		{"throw", "throw requires a value"},
		{"function f(a, a) { }", `duplicate parameter "a"`},
		{"({1: 2})", "invalid map key"},
		{"a.", "attribute access"},
		{"1 +", "unexpected end of file"},
		{"a ? b", `ternary expression (expected ":")`},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			e := parseError(t, tt.input)
			assert.Equal(t, e.Kind, errz.Parse)
			assert.Contains(t, e.Message, tt.contains)
		})
	}
}

func TestLexErrorsSurfaceUnchanged(t *testing.T) {
	e := parseError(t, `let x = "unterminated`)
	assert.Equal(t, e.Kind, errz.Lex)
	assert.Equal(t, e.Message, "unterminated string literal")

	e = parseError(t, "let x = 1\nlet y = 12ab")
	assert.Equal(t, e.Kind, errz.Lex)
	assert.Equal(t, e.Location.Line, 2)
}

func TestErrorLocation(t *testing.T) {
	_, err := Parse(context.Background(), "let a = 1\nlet b = )", WithFilename("main.ss"))
	e, ok := errz.As(err)
	assert.True(t, ok)
	assert.Equal(t, e.Location.Filename, "main.ss")
	assert.Equal(t, e.Location.Line, 2)
	assert.Equal(t, e.Location.Column, 9)
	assert.Equal(t, e.Location.Source, "let b = )")
}

func TestMaxDepth(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 600; i++ {
		sb.WriteString("(")
	}
	sb.WriteString("1")
	for i := 0; i < 600; i++ {
		sb.WriteString(")")
	}
	e := parseError(t, sb.String())
	assert.Contains(t, e.Message, "maximum nesting depth exceeded")

	_, err := Parse(context.Background(), "((((1))))", WithMaxDepth(3))
	assert.NotNil(t, err)
	_, err = Parse(context.Background(), "((((1))))", WithMaxDepth(50))
	assert.Nil(t, err)
}

func TestContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Parse(ctx, "let x = 1")
	assert.NotNil(t, err)
	assert.Equal(t, errz.KindOf(err), errz.Cancelled)
}

func TestEmptyProgram(t *testing.T) {
	program := parse(t, "")
	assert.Len(t, program.Stmts, 0)
	program = parse(t, "// only a comment\n")
	assert.Len(t, program.Stmts, 0)
}

func TestFunctionExpression(t *testing.T) {
	program := parse(t, "let f = function(a, b,) { return a }\nlet g = function named() { }")
	f := program.Stmts[0].(*ast.Var).Value.(*ast.Func)
	assert.True(t, f.Name == nil)
	assert.Equal(t, f.ParamNames(), []string{"a", "b"})
	g := program.Stmts[1].(*ast.Var).Value.(*ast.Func)
	assert.Equal(t, g.Name.Name, "named")
}

func TestPrecedenceTable(t *testing.T) {
	assert.True(t, Precedence("=") < Precedence("?"))
	assert.True(t, Precedence("?") < Precedence("??"))
	assert.True(t, Precedence("??") < Precedence("||"))
	assert.True(t, Precedence("||") < Precedence("&&"))
	assert.True(t, Precedence("&&") < Precedence("=="))
	assert.True(t, Precedence("==") < Precedence("<"))
	assert.True(t, Precedence("<") < Precedence("+"))
	assert.True(t, Precedence("+") < Precedence("*"))
	assert.True(t, Precedence("*") < Precedence("**"))
	assert.Equal(t, Precedence("nope"), LOWEST)
}
