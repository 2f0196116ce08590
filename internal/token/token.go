// Package token holds the token types produced by the lexer and the
// keyword table.
package token

type Type string

// Position is a point in the input. Line and Column are 0-indexed; use
// LineNumber and ColumnNumber for display.
type Position struct {
	Offset    int
	LineStart int // offset of the first byte of Line
	Line      int
	Column    int
	File      string
}

func (p Position) LineNumber() int {
	return p.Line + 1
}

func (p Position) ColumnNumber() int {
	return p.Column + 1
}

// Advance moves n bytes forward on the same line.
func (p Position) Advance(n int) Position {
	p.Offset += n
	p.Column += n
	return p
}

// IsValid reports whether p points into the input. The zero Position is
// valid: it is the first byte of an unnamed input.
func (p Position) IsValid() bool {
	return p.Line >= 0 && p.Column >= 0
}

// NoPos is the position of synthesized nodes.
var NoPos = Position{Offset: -1, Line: -1, Column: -1}

// Token is one lexeme. EndPosition is just past its last byte.
type Token struct {
	Type          Type
	Literal       string
	StartPosition Position
	EndPosition   Position
}

const (
	AND             Type = "&&"
	ASSIGN          Type = "="
	ASTERISK        Type = "*"
	ASTERISK_EQUALS Type = "*="
	BANG            Type = "!"
	BREAK           Type = "BREAK"
	CATCH           Type = "CATCH"
	COLON           Type = ":"
	COMMA           Type = ","
	CONST           Type = "CONST"
	CONTINUE        Type = "CONTINUE"
	ELSE            Type = "ELSE"
	EOF             Type = "EOF"
	EQ              Type = "=="
	FALSE           Type = "FALSE"
	FOR             Type = "FOR"
	FUNCTION        Type = "FUNCTION"
	GT              Type = ">"
	GT_EQUALS       Type = ">="
	IDENT           Type = "IDENT"
	IF              Type = "IF"
	LBRACE          Type = "{"
	LBRACKET        Type = "["
	LET             Type = "LET"
	LPAREN          Type = "("
	LT              Type = "<"
	LT_EQUALS       Type = "<="
	MINUS           Type = "-"
	MINUS_EQUALS    Type = "-="
	MOD             Type = "%"
	MOD_EQUALS      Type = "%="
	NIL             Type = "nil"
	NOT_EQ          Type = "!="
	NULLISH         Type = "??"
	NUMBER          Type = "NUMBER"
	OF              Type = "OF"
	OR              Type = "||"
	PERIOD          Type = "."
	PLUS            Type = "+"
	PLUS_EQUALS     Type = "+="
	POW             Type = "**"
	QUESTION        Type = "?"
	RBRACE          Type = "}"
	RBRACKET        Type = "]"
	RETURN          Type = "RETURN"
	RPAREN          Type = ")"
	SEMICOLON       Type = ";"
	SLASH           Type = "/"
	SLASH_EQUALS    Type = "/="
	STRING          Type = "STRING"
	THROW           Type = "THROW"
	TRUE            Type = "TRUE"
	TRY             Type = "TRY"
	WHILE           Type = "WHILE"
)

var keywords = map[string]Type{
	"break":    BREAK,
	"catch":    CATCH,
	"const":    CONST,
	"continue": CONTINUE,
	"else":     ELSE,
	"false":    FALSE,
	"for":      FOR,
	"function": FUNCTION,
	"if":       IF,
	"let":      LET,
	"nil":      NIL,
	"null":     NIL,
	"of":       OF,
	"return":   RETURN,
	"throw":    THROW,
	"true":     TRUE,
	"try":      TRY,
	"while":    WHILE,
}

// LookupIdentifier returns the keyword type for identifier, or IDENT.
func LookupIdentifier(identifier string) Type {
	if t, ok := keywords[identifier]; ok {
		return t
	}
	return IDENT
}

// IsKeyword reports whether word is reserved.
func IsKeyword(word string) bool {
	_, ok := keywords[word]
	return ok
}
