package parser

import (
	"fmt"

	"github.com/safescript/safescript/errz"
	"github.com/safescript/safescript/internal/token"
)

var tokenDescriptions = map[token.Type]string{
	token.EOF:    "end of file",
	token.IDENT:  "identifier",
	token.NUMBER: "number",
	token.STRING: "string",
}

// tokenTypeDescription returns a human-readable description of a token type.
func tokenTypeDescription(t token.Type) string {
	if desc, ok := tokenDescriptions[t]; ok {
		return desc
	}
	if token.IsKeyword(string(t)) || token.LookupIdentifier(lowercase(string(t))) == t {
		return "keyword " + lowercase(string(t))
	}
	return fmt.Sprintf("%q", string(t))
}

// tokenDescription returns a human-readable description of a token.
func tokenDescription(t token.Token) string {
	switch t.Type {
	case token.EOF:
		return "end of file"
	case token.IDENT:
		return fmt.Sprintf("identifier %q", t.Literal)
	case token.NUMBER:
		return fmt.Sprintf("number %s", t.Literal)
	case token.STRING:
		return "string literal"
	}
	return fmt.Sprintf("%q", t.Literal)
}

func lowercase(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// tokenError creates a parse error pointing at the given token.
func (p *Parser) tokenError(t token.Token, format string, args ...any) *errz.Error {
	width := t.EndPosition.Column - t.StartPosition.Column
	if width < 1 {
		width = 1
	}
	return errz.Newf(errz.Parse, format, args...).WithLocation(errz.SourceLocation{
		Filename:  p.l.Filename(),
		Line:      t.StartPosition.LineNumber(),
		Column:    t.StartPosition.ColumnNumber(),
		EndColumn: t.StartPosition.ColumnNumber() + width,
		Source:    p.l.GetLineText(t),
	})
}
