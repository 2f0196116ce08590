// Package lexer converts SafeScript source text into a lazy sequence of tokens.
package lexer

import (
	"iter"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/safescript/safescript/errz"
	"github.com/safescript/safescript/internal/token"
)

// Lexer holds our object-state.
type Lexer struct {
	// The input being lexed
	input string

	// Byte offset of the next rune to read
	pos int

	// Byte offset of the start of the current line
	lineStart int

	// 0-indexed line number
	line int

	// Name of the file being lexed, if any
	file string

	// Sticky error. Once set every call to Next returns it.
	err error
}

// Option is a configuration function for a Lexer.
type Option func(*Lexer)

// WithFilename sets the filename reported in token positions and errors.
func WithFilename(file string) Option {
	return func(l *Lexer) {
		l.file = file
	}
}

// New creates a Lexer instance for the given input string.
func New(input string, options ...Option) *Lexer {
	l := &Lexer{input: input}
	for _, opt := range options {
		opt(l)
	}
	// A shebang line is ignored so scripts may be executable.
	if strings.HasPrefix(input, "#!") {
		for l.pos < len(l.input) && l.input[l.pos] != '\n' {
			l.pos++
		}
	}
	return l
}

// Filename returns the filename associated with this lexer.
func (l *Lexer) Filename() string {
	return l.file
}

// SetFilename sets the filename for the lexer.
func (l *Lexer) SetFilename(file string) {
	l.file = file
}

// Position returns the position of the next byte to be read.
func (l *Lexer) Position() token.Position {
	return token.Position{
		Offset:    l.pos,
		LineStart: l.lineStart,
		Line:      l.line,
		Column:    l.pos - l.lineStart,
		File:      l.file,
	}
}

// Next returns the next token from the input. Once the end of the input is
// reached, EOF is returned on every call. Once an error occurs, the same error
// is returned on every call.
func (l *Lexer) Next() (token.Token, error) {
	if l.err != nil {
		return token.Token{}, l.err
	}
	tok, err := l.next()
	if err != nil {
		l.err = err
		return token.Token{}, err
	}
	return tok, nil
}

// All returns an iterator over the remaining tokens. The final token yielded
// is EOF unless an error occurs, in which case the error is yielded once and
// iteration stops.
func (l *Lexer) All() iter.Seq2[token.Token, error] {
	return func(yield func(token.Token, error) bool) {
		for {
			tok, err := l.Next()
			if err != nil {
				yield(tok, err)
				return
			}
			if !yield(tok, nil) {
				return
			}
			if tok.Type == token.EOF {
				return
			}
		}
	}
}

// Tokenize lexes the entire input, returning all tokens including the final
// EOF token.
func Tokenize(input string, options ...Option) ([]token.Token, error) {
	var tokens []token.Token
	for tok, err := range New(input, options...).All() {
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
	}
	return tokens, nil
}

// GetLineText returns the full text of the line on which the token begins.
func (l *Lexer) GetLineText(tok token.Token) string {
	return lineText(l.input, tok.StartPosition.LineStart)
}

func lineText(input string, start int) string {
	if start < 0 || start > len(input) {
		return ""
	}
	end := strings.IndexByte(input[start:], '\n')
	if end < 0 {
		return strings.TrimRight(input[start:], "\r")
	}
	return strings.TrimRight(input[start:start+end], "\r")
}

func (l *Lexer) next() (token.Token, error) {
	if err := l.skipWhitespaceAndComments(); err != nil {
		return token.Token{}, err
	}
	start := l.Position()
	if l.pos >= len(l.input) {
		return token.Token{Type: token.EOF, StartPosition: start, EndPosition: start}, nil
	}
	ch := l.input[l.pos]
	switch {
	case isDigit(ch):
		return l.readNumber(start)
	case ch == '"' || ch == '\'':
		return l.readString(start, ch)
	case isIdentStart(l.peekRune()):
		return l.readIdentifier(start), nil
	}
	if typ, n := l.readOperator(); n > 0 {
		l.pos += n
		return l.token(typ, start), nil
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.pos:])
	return token.Token{}, l.errorAt(start, 1, "unexpected character: %q", r)
}

var twoCharOps = map[string]token.Type{
	"**": token.POW,
	"*=": token.ASTERISK_EQUALS,
	"==": token.EQ,
	"!=": token.NOT_EQ,
	"<=": token.LT_EQUALS,
	">=": token.GT_EQUALS,
	"&&": token.AND,
	"||": token.OR,
	"??": token.NULLISH,
	"+=": token.PLUS_EQUALS,
	"-=": token.MINUS_EQUALS,
	"/=": token.SLASH_EQUALS,
	"%=": token.MOD_EQUALS,
}

var oneCharOps = map[byte]token.Type{
	'+': token.PLUS,
	'-': token.MINUS,
	'*': token.ASTERISK,
	'/': token.SLASH,
	'%': token.MOD,
	'<': token.LT,
	'>': token.GT,
	'!': token.BANG,
	'=': token.ASSIGN,
	'.': token.PERIOD,
	',': token.COMMA,
	':': token.COLON,
	';': token.SEMICOLON,
	'?': token.QUESTION,
	'(': token.LPAREN,
	')': token.RPAREN,
	'[': token.LBRACKET,
	']': token.RBRACKET,
	'{': token.LBRACE,
	'}': token.RBRACE,
}

func (l *Lexer) readOperator() (token.Type, int) {
	if l.pos+1 < len(l.input) {
		if typ, ok := twoCharOps[l.input[l.pos:l.pos+2]]; ok {
			return typ, 2
		}
	}
	if typ, ok := oneCharOps[l.input[l.pos]]; ok {
		return typ, 1
	}
	return "", 0
}

func (l *Lexer) token(typ token.Type, start token.Position) token.Token {
	return token.Token{
		Type:          typ,
		Literal:       l.input[start.Offset:l.pos],
		StartPosition: start,
		EndPosition:   l.Position(),
	}
}

func (l *Lexer) newline() {
	l.pos++
	l.line++
	l.lineStart = l.pos
}

func (l *Lexer) skipWhitespaceAndComments() error {
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		switch {
		case ch == '\n':
			l.newline()
		case ch == ' ' || ch == '\t' || ch == '\r':
			l.pos++
		case strings.HasPrefix(l.input[l.pos:], "//"):
			for l.pos < len(l.input) && l.input[l.pos] != '\n' {
				l.pos++
			}
		case strings.HasPrefix(l.input[l.pos:], "/*"):
			start := l.Position()
			l.pos += 2
			for {
				if l.pos >= len(l.input) {
					return l.errorAt(start, 2, "unterminated block comment")
				}
				if strings.HasPrefix(l.input[l.pos:], "*/") {
					l.pos += 2
					break
				}
				if l.input[l.pos] == '\n' {
					l.newline()
				} else {
					l.pos++
				}
			}
		default:
			return nil
		}
	}
	return nil
}

func (l *Lexer) peekRune() rune {
	r, _ := utf8.DecodeRuneInString(l.input[l.pos:])
	return r
}

func (l *Lexer) readIdentifier(start token.Position) token.Token {
	for l.pos < len(l.input) {
		r, size := utf8.DecodeRuneInString(l.input[l.pos:])
		if !isIdentPart(r) {
			break
		}
		l.pos += size
	}
	tok := l.token(token.IDENT, start)
	tok.Type = token.LookupIdentifier(tok.Literal)
	return tok
}

// readNumber reads decimal, hexadecimal (0x), octal (0o) and binary (0b)
// literals. Underscores may separate digits.
func (l *Lexer) readNumber(start token.Position) (token.Token, error) {
	invalid := func() (token.Token, error) {
		// Include the offending character in the message.
		if l.pos < len(l.input) {
			_, size := utf8.DecodeRuneInString(l.input[l.pos:])
			l.pos += size
		}
		lit := l.input[start.Offset:l.pos]
		return token.Token{}, l.errorAt(start, len(lit), "invalid numeric literal: %s", lit)
	}
	if l.input[l.pos] == '0' && l.pos+1 < len(l.input) {
		var isDigitOf func(byte) bool
		switch l.input[l.pos+1] {
		case 'x', 'X':
			isDigitOf = isHexDigit
		case 'o', 'O':
			isDigitOf = isOctalDigit
		case 'b', 'B':
			isDigitOf = isBinaryDigit
		}
		if isDigitOf != nil {
			l.pos += 2
			if !l.readDigits(isDigitOf) {
				return invalid()
			}
			if l.pos < len(l.input) && (isIdentPart(l.peekRune()) || l.input[l.pos] == '.') {
				return invalid()
			}
			return l.token(token.NUMBER, start), nil
		}
	}
	if !l.readDigits(isDigit) {
		return invalid()
	}
	if l.pos < len(l.input) && l.input[l.pos] == '.' {
		if l.pos+1 < len(l.input) && isDigit(l.input[l.pos+1]) {
			l.pos++
			if !l.readDigits(isDigit) {
				return invalid()
			}
		} else if l.pos+1 < len(l.input) && isIdentStart(rune(l.input[l.pos+1])) {
			l.pos++
			return invalid()
		}
	}
	if l.pos < len(l.input) && (l.input[l.pos] == 'e' || l.input[l.pos] == 'E') {
		l.pos++
		if l.pos < len(l.input) && (l.input[l.pos] == '+' || l.input[l.pos] == '-') {
			l.pos++
		}
		if l.pos >= len(l.input) || !isDigit(l.input[l.pos]) {
			return invalid()
		}
		if !l.readDigits(isDigit) {
			return invalid()
		}
	}
	if l.pos < len(l.input) && isIdentPart(l.peekRune()) {
		return invalid()
	}
	return l.token(token.NUMBER, start), nil
}

// readDigits consumes a run of digits accepted by isDigitOf, allowing single
// underscores between digits. It returns false if the run is empty or an
// underscore is misplaced.
func (l *Lexer) readDigits(isDigitOf func(byte) bool) bool {
	count := 0
	lastUnderscore := false
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if ch == '_' {
			if count == 0 || lastUnderscore {
				return false
			}
			lastUnderscore = true
			l.pos++
			continue
		}
		if !isDigitOf(ch) {
			break
		}
		lastUnderscore = false
		count++
		l.pos++
	}
	return count > 0 && !lastUnderscore
}

func (l *Lexer) readString(start token.Position, quote byte) (token.Token, error) {
	l.pos++ // opening quote
	contentStart := l.pos
	for {
		if l.pos >= len(l.input) || l.input[l.pos] == '\n' {
			return token.Token{}, l.errorAt(start, l.pos-start.Offset, "unterminated string literal")
		}
		ch := l.input[l.pos]
		if ch == '\\' {
			l.pos += 2
			continue
		}
		if ch == quote {
			break
		}
		l.pos++
	}
	content := l.input[contentStart:l.pos]
	l.pos++ // closing quote
	if _, offset, err := Unescape(content); err != nil {
		pos := start.Advance(1 + offset)
		return token.Token{}, l.errorAt(pos, 2, "%s", err.Error())
	}
	tok := l.token(token.STRING, start)
	tok.Literal = content
	return tok, nil
}

func (l *Lexer) errorAt(pos token.Position, width int, format string, args ...any) *errz.Error {
	if width < 1 {
		width = 1
	}
	return errz.Newf(errz.Lex, format, args...).WithLocation(errz.SourceLocation{
		Filename:  l.file,
		Line:      pos.LineNumber(),
		Column:    pos.ColumnNumber(),
		EndColumn: pos.ColumnNumber() + width,
		Source:    lineText(l.input, pos.LineStart),
	})
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func isHexDigit(ch byte) bool {
	return isDigit(ch) || ('a' <= ch && ch <= 'f') || ('A' <= ch && ch <= 'F')
}

func isOctalDigit(ch byte) bool {
	return '0' <= ch && ch <= '7'
}

func isBinaryDigit(ch byte) bool {
	return ch == '0' || ch == '1'
}

func isIdentStart(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r)
}
