package lexer

import (
	"fmt"
	"testing"

	"github.com/deepnoodle-ai/wonton/assert"
	"github.com/safescript/safescript/errz"
	"github.com/safescript/safescript/internal/token"
)

type expectedToken struct {
	expectedType    token.Type
	expectedLiteral string
}

func checkTokens(t *testing.T, input string, tests []expectedToken) {
	t.Helper()
	l := New(input)
	for i, tt := range tests {
		tok, err := l.Next()
		assert.Nil(t, err)
		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong, expected=%q, got=%q", i, tt.expectedType, tok.Type)
		}
		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - Literal wrong, expected=%q, got=%q", i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestNil(t *testing.T) {
	checkTokens(t, "a = nil; b = null", []expectedToken{
		{token.IDENT, "a"},
		{token.ASSIGN, "="},
		{token.NIL, "nil"},
		{token.SEMICOLON, ";"},
		{token.IDENT, "b"},
		{token.ASSIGN, "="},
		{token.NIL, "null"},
		{token.EOF, ""},
	})
}

func TestOperators(t *testing.T) {
	checkTokens(t, "%=+(){},;?|| &&**=..!=!<=>=<>??:%-=+=/=/", []expectedToken{
		{token.MOD_EQUALS, "%="},
		{token.PLUS, "+"},
		{token.LPAREN, "("},
		{token.RPAREN, ")"},
		{token.LBRACE, "{"},
		{token.RBRACE, "}"},
		{token.COMMA, ","},
		{token.SEMICOLON, ";"},
		{token.QUESTION, "?"},
		{token.OR, "||"},
		{token.AND, "&&"},
		{token.POW, "**"},
		{token.ASSIGN, "="},
		{token.PERIOD, "."},
		{token.PERIOD, "."},
		{token.NOT_EQ, "!="},
		{token.BANG, "!"},
		{token.LT_EQUALS, "<="},
		{token.GT_EQUALS, ">="},
		{token.LT, "<"},
		{token.GT, ">"},
		{token.NULLISH, "??"},
		{token.COLON, ":"},
		{token.MOD, "%"},
		{token.MINUS_EQUALS, "-="},
		{token.PLUS_EQUALS, "+="},
		{token.SLASH_EQUALS, "/="},
		{token.SLASH, "/"},
		{token.EOF, ""},
	})
}

func TestProgram(t *testing.T) {
	input := `let five = 5;
const ten = 10
function add(x, y) {
  return x + y
}
for (let v of [1, 2]) { if (v == 1) { continue } else { break } }
while (true) { throw "x" }
try { f() } catch (e) { e.message }
`
	checkTokens(t, input, []expectedToken{
		{token.LET, "let"},
		{token.IDENT, "five"},
		{token.ASSIGN, "="},
		{token.NUMBER, "5"},
		{token.SEMICOLON, ";"},
		{token.CONST, "const"},
		{token.IDENT, "ten"},
		{token.ASSIGN, "="},
		{token.NUMBER, "10"},
		{token.FUNCTION, "function"},
		{token.IDENT, "add"},
		{token.LPAREN, "("},
		{token.IDENT, "x"},
		{token.COMMA, ","},
		{token.IDENT, "y"},
		{token.RPAREN, ")"},
		{token.LBRACE, "{"},
		{token.RETURN, "return"},
		{token.IDENT, "x"},
		{token.PLUS, "+"},
		{token.IDENT, "y"},
		{token.RBRACE, "}"},
		{token.FOR, "for"},
		{token.LPAREN, "("},
		{token.LET, "let"},
		{token.IDENT, "v"},
		{token.OF, "of"},
		{token.LBRACKET, "["},
		{token.NUMBER, "1"},
		{token.COMMA, ","},
		{token.NUMBER, "2"},
		{token.RBRACKET, "]"},
		{token.RPAREN, ")"},
		{token.LBRACE, "{"},
		{token.IF, "if"},
		{token.LPAREN, "("},
		{token.IDENT, "v"},
		{token.EQ, "=="},
		{token.NUMBER, "1"},
		{token.RPAREN, ")"},
		{token.LBRACE, "{"},
		{token.CONTINUE, "continue"},
		{token.RBRACE, "}"},
		{token.ELSE, "else"},
		{token.LBRACE, "{"},
		{token.BREAK, "break"},
		{token.RBRACE, "}"},
		{token.RBRACE, "}"},
		{token.WHILE, "while"},
		{token.LPAREN, "("},
		{token.TRUE, "true"},
		{token.RPAREN, ")"},
		{token.LBRACE, "{"},
		{token.THROW, "throw"},
		{token.STRING, "x"},
		{token.RBRACE, "}"},
		{token.TRY, "try"},
		{token.LBRACE, "{"},
		{token.IDENT, "f"},
		{token.LPAREN, "("},
		{token.RPAREN, ")"},
		{token.RBRACE, "}"},
		{token.CATCH, "catch"},
		{token.LPAREN, "("},
		{token.IDENT, "e"},
		{token.RPAREN, ")"},
		{token.LBRACE, "{"},
		{token.IDENT, "e"},
		{token.PERIOD, "."},
		{token.IDENT, "message"},
		{token.RBRACE, "}"},
		{token.EOF, ""},
	})
}

func TestUnicodeIdentifiers(t *testing.T) {
	checkTokens(t, "let größe = 'ü'", []expectedToken{
		{token.LET, "let"},
		{token.IDENT, "größe"},
		{token.ASSIGN, "="},
		{token.STRING, "ü"},
		{token.EOF, ""},
	})
}

func TestComments(t *testing.T) {
	input := `// a line comment
a /* inline */ b
/* multi
line */ c // trailing`
	checkTokens(t, input, []expectedToken{
		{token.IDENT, "a"},
		{token.IDENT, "b"},
		{token.IDENT, "c"},
		{token.EOF, ""},
	})
}

func TestNumbers(t *testing.T) {
	checkTokens(t, `10 0x1F 0o17 0b101 1_000 2.5 1e3 2.5e-3 6E+2 0`, []expectedToken{
		{token.NUMBER, "10"},
		{token.NUMBER, "0x1F"},
		{token.NUMBER, "0o17"},
		{token.NUMBER, "0b101"},
		{token.NUMBER, "1_000"},
		{token.NUMBER, "2.5"},
		{token.NUMBER, "1e3"},
		{token.NUMBER, "2.5e-3"},
		{token.NUMBER, "6E+2"},
		{token.NUMBER, "0"},
		{token.EOF, ""},
	})
}

func TestNumberFollowedByRange(t *testing.T) {
	checkTokens(t, `a[1].b`, []expectedToken{
		{token.IDENT, "a"},
		{token.LBRACKET, "["},
		{token.NUMBER, "1"},
		{token.RBRACKET, "]"},
		{token.PERIOD, "."},
		{token.IDENT, "b"},
		{token.EOF, ""},
	})
}

func TestInvalids(t *testing.T) {
	tests := []struct {
		input string
		err   string
	}{
		{"42.foo()", "invalid numeric literal: 42.f"},
		{"12ab", "invalid numeric literal: 12a"},
		{"0x1aZ", "invalid numeric literal: 0x1aZ"},
		{"0x", "invalid numeric literal: 0x"},
		{"0b102", "invalid numeric literal: 0b102"},
		{"1__0", "invalid numeric literal: 1__"},
		{"1e", "invalid numeric literal: 1e"},
		{"1e+x", "invalid numeric literal: 1e+x"},
		{`"foo`, "unterminated string literal"},
		{"'foo\n'", "unterminated string literal"},
		{"~", "unexpected character: '~'"},
		{"a & b", "unexpected character: '&'"},
		{"#x", "unexpected character: '#'"},
		{"/* open", "unterminated block comment"},
	}
	for i, tt := range tests {
		t.Run(fmt.Sprintf("%d-%s", i, tt.input), func(t *testing.T) {
			_, err := Tokenize(tt.input)
			assert.NotNil(t, err)
			e, ok := errz.As(err)
			assert.True(t, ok)
			assert.Equal(t, e.Kind, errz.Lex)
			assert.Equal(t, e.Message, tt.err)
		})
	}
}

func TestEscapeSequences(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`"a\nb"`, "a\nb"},
		{`'it\'s'`, "it's"},
		{`"tab\there"`, "tab\there"},
		{`"\x41\u{42}\u{1F600}"`, "AB\U0001F600"},
		{`"back\\slash"`, `back\slash`},
		{`"nul\0"`, "nul\x00"},
	}
	for _, tt := range tests {
		l := New(tt.input)
		tok, err := l.Next()
		assert.Nil(t, err)
		assert.Equal(t, tok.Type, token.STRING)
		value, _, err := Unescape(tok.Literal)
		assert.Nil(t, err)
		assert.Equal(t, value, tt.expected)
	}
}

func TestInvalidEscapeSequences(t *testing.T) {
	tests := []string{
		`"\P"`,
		`"\xZZ"`,
		`"\x4"`,
		`"\u{}"`,
		`"\u{110000}"`,
		`"\u41"`,
	}
	for i, input := range tests {
		t.Run(fmt.Sprintf("%d-%s", i, input), func(t *testing.T) {
			l := New(input)
			tok, err := l.Next()
			assert.Error(t, err, "Unexpected result: token=%s, literal=%q", tok.Type, tok.Literal)
			assert.Equal(t, errz.KindOf(err), errz.Lex)
		})
	}
}

func TestQuoteRoundTrip(t *testing.T) {
	for _, s := range []string{"plain", "a\"b", "new\nline", "\x01ctl", "ü"} {
		q := Quote(s)
		got, _, err := Unescape(q[1 : len(q)-1])
		assert.Nil(t, err)
		assert.Equal(t, got, s)
	}
}

func TestLineNumbers(t *testing.T) {
	l := New("a\n  b\n\n c")
	expected := [][2]int{{0, 0}, {1, 2}, {3, 1}}
	for _, want := range expected {
		tok, err := l.Next()
		assert.Nil(t, err)
		assert.Equal(t, tok.StartPosition.Line, want[0])
		assert.Equal(t, tok.StartPosition.Column, want[1])
	}
}

func TestTokenEndPosition(t *testing.T) {
	l := New("let name = 'x'")
	tests := []struct {
		start, end int
	}{{0, 3}, {4, 8}, {9, 10}, {11, 14}}
	for _, tt := range tests {
		tok, err := l.Next()
		assert.Nil(t, err)
		assert.Equal(t, tok.StartPosition.Column, tt.start)
		assert.Equal(t, tok.EndPosition.Column, tt.end)
	}
}

func TestTokenLineText(t *testing.T) {
	l := New(` let x = 32; foo = bar
bar = baz
`)
	tok, err := l.Next()
	assert.Nil(t, err)
	assert.Equal(t, l.GetLineText(tok), " let x = 32; foo = bar")

	for tok.Literal != "baz" {
		tok, err = l.Next()
		assert.Nil(t, err)
	}
	assert.Equal(t, l.GetLineText(tok), "bar = baz")
}

func TestShebang(t *testing.T) {
	checkTokens(t, "#!/usr/bin/env safescript\n10;", []expectedToken{
		{token.NUMBER, "10"},
		{token.SEMICOLON, ";"},
		{token.EOF, ""},
	})
}

func TestEmptyInput(t *testing.T) {
	l := New("")
	tok, err := l.Next()
	assert.Nil(t, err)
	assert.Equal(t, tok.Type, token.EOF)
	assert.Equal(t, tok.Literal, "")
}

func TestMultipleEOFReads(t *testing.T) {
	l := New("x")
	tok, err := l.Next()
	assert.Nil(t, err)
	assert.Equal(t, tok.Type, token.IDENT)
	for i := 0; i < 5; i++ {
		tok, err = l.Next()
		assert.Nil(t, err)
		assert.Equal(t, tok.Type, token.EOF, "EOF read %d", i)
	}
}

func TestStickyError(t *testing.T) {
	l := New("a ~ b")
	_, err := l.Next()
	assert.Nil(t, err)
	_, err1 := l.Next()
	assert.NotNil(t, err1)
	_, err2 := l.Next()
	assert.Equal(t, err2, err1)
}

func TestAllStopsAtFirstError(t *testing.T) {
	var types []token.Type
	var errs int
	for tok, err := range New("a b ~ c d").All() {
		if err != nil {
			errs++
			continue
		}
		types = append(types, tok.Type)
	}
	assert.Equal(t, errs, 1)
	assert.Equal(t, types, []token.Type{token.IDENT, token.IDENT})
}

func TestAllIsLazy(t *testing.T) {
	count := 0
	for range New("a b c d ~").All() {
		count++
		if count == 2 {
			break
		}
	}
	assert.Equal(t, count, 2)
}

func TestTokenizeIncludesEOF(t *testing.T) {
	tokens, err := Tokenize("1 + 2")
	assert.Nil(t, err)
	assert.Len(t, tokens, 4)
	assert.Equal(t, tokens[3].Type, token.EOF)
}

// Every input either produces a token stream ending in EOF or a lex error.
func TestTotality(t *testing.T) {
	inputs := []string{
		"", " ", "\n\n", "'", "\"", "0", "0x", "1.", "1..2", "a.b.c", "/", "/*", "*/",
		"\\", "@", "é", "\x00", "let", "??=", "===", "!==", "1e10e", "\"\\u{\"",
	}
	for _, input := range inputs {
		tokens, err := Tokenize(input)
		if err != nil {
			assert.Equal(t, errz.KindOf(err), errz.Lex, "input %q", input)
			continue
		}
		assert.True(t, len(tokens) > 0, "input %q", input)
		assert.Equal(t, tokens[len(tokens)-1].Type, token.EOF, "input %q", input)
	}
}

func TestFilenameOption(t *testing.T) {
	t.Run("WithFilename option", func(t *testing.T) {
		l := New("x", WithFilename("test.ss"))
		assert.Equal(t, l.Filename(), "test.ss")
		tok, err := l.Next()
		assert.Nil(t, err)
		assert.Equal(t, tok.StartPosition.File, "test.ss")
		assert.Equal(t, tok.EndPosition.File, "test.ss")
	})

	t.Run("SetFilename method", func(t *testing.T) {
		l := New("x")
		assert.Equal(t, l.Filename(), "")
		l.SetFilename("updated.ss")
		tok, err := l.Next()
		assert.Nil(t, err)
		assert.Equal(t, tok.StartPosition.File, "updated.ss")
	})

	t.Run("errors carry filename and line", func(t *testing.T) {
		_, err := Tokenize("a\n  ~", WithFilename("bad.ss"))
		e, ok := errz.As(err)
		assert.True(t, ok)
		assert.Equal(t, e.Location.Filename, "bad.ss")
		assert.Equal(t, e.Location.Line, 2)
		assert.Equal(t, e.Location.Column, 3)
		assert.Equal(t, e.Location.Source, "  ~")
	})
}
