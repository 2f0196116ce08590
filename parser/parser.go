// Package parser is used to generate the abstract syntax tree (AST) for a program.
//
// A parser is created by calling New() with a lexer as input. The parser should
// then be used only once, by calling parser.Parse() to produce the AST.
//
// Parsing is total: it either returns a complete program or the first error
// encountered. A partial tree is never returned.
package parser

import (
	"context"

	"github.com/safescript/safescript/ast"
	"github.com/safescript/safescript/errz"
	"github.com/safescript/safescript/internal/lexer"
	"github.com/safescript/safescript/internal/token"
)

type (
	prefixParseFn func() ast.Expr
	infixParseFn  func(ast.Expr) ast.Expr
)

// Parse the provided input as SafeScript source code and return the AST. This
// is shorthand way to create a Lexer and Parser and then call Parse on that.
func Parse(ctx context.Context, input string, options ...Option) (*ast.Program, error) {
	var cfg Parser
	for _, opt := range options {
		opt(&cfg)
	}
	l := lexer.New(input, lexer.WithFilename(cfg.filename))
	return New(l, options...).Parse(ctx)
}

// Option is a configuration function for a Parser.
type Option func(*Parser)

// WithFilename sets the file name reported in errors.
func WithFilename(filename string) Option {
	return func(p *Parser) {
		p.filename = filename
	}
}

// WithMaxDepth sets the maximum nesting depth for the parser.
// This prevents stack overflow on deeply nested input.
// The default is 500.
func WithMaxDepth(depth int) Option {
	return func(p *Parser) {
		p.maxDepth = depth
	}
}

// DefaultMaxDepth is the default maximum nesting depth for parsing.
const DefaultMaxDepth = 500

// Parser object
type Parser struct {
	// the Context supplied in the Parse() call
	ctx context.Context

	// l is our lexer
	l *lexer.Lexer

	// prevToken holds the previous token, which we already processed.
	prevToken token.Token

	// curToken holds the current token from the lexer.
	curToken token.Token

	// peekToken holds the next token from the lexer.
	peekToken token.Token

	// err holds the first error encountered. Once set, parsing unwinds.
	err error

	// prefixParseFns holds a map of parsing methods for
	// prefix-based syntax.
	prefixParseFns map[token.Type]prefixParseFn

	// infixParseFns holds a map of parsing methods for
	// infix-based syntax.
	infixParseFns map[token.Type]infixParseFn

	// The filename of the input
	filename string

	// Current recursion depth
	depth int

	// Maximum allowed recursion depth
	maxDepth int

	// Nesting of enclosing functions and loops, used to validate
	// return, break and continue.
	funcDepth int
	loopDepth int

	// Depth of open parentheses and brackets. Line breaks do not end an
	// expression while this is positive.
	groupDepth int
}

// New returns a Parser for the program provided by the given Lexer.
func New(l *lexer.Lexer, options ...Option) *Parser {
	p := &Parser{
		l:              l,
		prefixParseFns: map[token.Type]prefixParseFn{},
		infixParseFns:  map[token.Type]infixParseFn{},
		maxDepth:       DefaultMaxDepth,
	}
	for _, opt := range options {
		opt(p)
	}
	if p.filename != "" && l.Filename() == "" {
		l.SetFilename(p.filename)
	}

	// Prime the token pump
	p.nextToken() // makes curToken=<empty>, peekToken=token[0]
	p.nextToken() // makes curToken=token[0], peekToken=token[1]

	// Register prefix-functions
	p.registerPrefix(token.BANG, p.parsePrefixExpr)
	p.registerPrefix(token.FALSE, p.parseBoolean)
	p.registerPrefix(token.FUNCTION, p.parseFuncExpr)
	p.registerPrefix(token.IDENT, p.parseIdent)
	p.registerPrefix(token.LBRACE, p.parseMap)
	p.registerPrefix(token.LBRACKET, p.parseList)
	p.registerPrefix(token.LPAREN, p.parseGroupedExpr)
	p.registerPrefix(token.MINUS, p.parsePrefixExpr)
	p.registerPrefix(token.NIL, p.parseNil)
	p.registerPrefix(token.NUMBER, p.parseNumber)
	p.registerPrefix(token.STRING, p.parseString)
	p.registerPrefix(token.TRUE, p.parseBoolean)

	// Register infix functions
	p.registerInfix(token.AND, p.parseInfixExpr)
	p.registerInfix(token.ASSIGN, p.parseAssign)
	p.registerInfix(token.ASTERISK_EQUALS, p.parseAssign)
	p.registerInfix(token.ASTERISK, p.parseInfixExpr)
	p.registerInfix(token.EQ, p.parseInfixExpr)
	p.registerInfix(token.GT_EQUALS, p.parseInfixExpr)
	p.registerInfix(token.GT, p.parseInfixExpr)
	p.registerInfix(token.LBRACKET, p.parseIndex)
	p.registerInfix(token.LPAREN, p.parseCall)
	p.registerInfix(token.LT_EQUALS, p.parseInfixExpr)
	p.registerInfix(token.LT, p.parseInfixExpr)
	p.registerInfix(token.MINUS_EQUALS, p.parseAssign)
	p.registerInfix(token.MINUS, p.parseInfixExpr)
	p.registerInfix(token.MOD_EQUALS, p.parseAssign)
	p.registerInfix(token.MOD, p.parseInfixExpr)
	p.registerInfix(token.NOT_EQ, p.parseInfixExpr)
	p.registerInfix(token.NULLISH, p.parseInfixExpr)
	p.registerInfix(token.OR, p.parseInfixExpr)
	p.registerInfix(token.PERIOD, p.parseGetAttr)
	p.registerInfix(token.PLUS_EQUALS, p.parseAssign)
	p.registerInfix(token.PLUS, p.parseInfixExpr)
	p.registerInfix(token.POW, p.parseInfixExpr)
	p.registerInfix(token.QUESTION, p.parseTernary)
	p.registerInfix(token.SLASH_EQUALS, p.parseAssign)
	p.registerInfix(token.SLASH, p.parseInfixExpr)
	return p
}

// nextToken moves to the next token from the lexer, updating all of
// prevToken, curToken, and peekToken.
func (p *Parser) nextToken() {
	p.prevToken = p.curToken
	p.curToken = p.peekToken
	if p.err != nil {
		p.peekToken = token.Token{Type: token.EOF}
		return
	}
	tok, err := p.l.Next()
	if err != nil {
		// Lexer errors are reported unchanged.
		p.setError(err)
		p.peekToken = token.Token{Type: token.EOF}
		return
	}
	p.peekToken = tok
}

// Parse the program that is provided via the lexer.
func (p *Parser) Parse(ctx context.Context) (*ast.Program, error) {
	p.ctx = ctx
	var statements []ast.Stmt
	for p.err == nil && !p.curTokenIs(token.EOF) {
		if p.cancelled() {
			break
		}
		stmt := p.parseStatementStrict()
		if stmt != nil {
			statements = append(statements, stmt)
		}
		p.nextToken()
	}
	if p.err != nil {
		return nil, p.err
	}
	return &ast.Program{Stmts: statements}, nil
}

// registerPrefix registers a function for handling a prefix-based statement.
func (p *Parser) registerPrefix(tokenType token.Type, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}

// registerInfix registers a function for handling an infix-based statement.
func (p *Parser) registerInfix(tokenType token.Type, fn infixParseFn) {
	p.infixParseFns[tokenType] = fn
}

// setError records the first error. Later errors are consequences of the
// first and are dropped.
func (p *Parser) setError(err error) {
	if p.err == nil {
		p.err = err
	}
}

func (p *Parser) setTokenError(t token.Token, msg string, args ...any) {
	p.setError(p.tokenError(t, msg, args...))
}

func (p *Parser) failed() bool {
	return p.err != nil
}

// cancelled checks if the parsing context has been cancelled.
// Returns true if cancelled, in which case parsing should stop.
func (p *Parser) cancelled() bool {
	if p.ctx == nil {
		return false
	}
	select {
	case <-p.ctx.Done():
		p.setError(errz.Wrap(errz.Cancelled, p.ctx.Err(), "parse"))
		return true
	default:
		return false
	}
}

func (p *Parser) noPrefixParseFnError(t token.Token) {
	if t.Type == token.EOF {
		p.setTokenError(t, "unexpected end of file (expected expression)")
		return
	}
	p.setTokenError(t, "invalid syntax (unexpected %s)", tokenDescription(t))
}

// peekError raises an error if the next token is not the expected type.
func (p *Parser) peekError(context string, expected token.Type, got token.Token) {
	if got.Type == token.EOF {
		p.setTokenError(got, "unexpected end of file while parsing %s (expected %s)",
			context, tokenTypeDescription(expected))
		return
	}
	p.setTokenError(got, "unexpected %s while parsing %s (expected %s)",
		tokenDescription(got), context, tokenTypeDescription(expected))
}

// curTokenIs returns true if the current token has the given type.
func (p *Parser) curTokenIs(t token.Type) bool {
	return p.curToken.Type == t
}

// peekTokenIs returns true if the next token has the given type.
func (p *Parser) peekTokenIs(t token.Type) bool {
	return p.peekToken.Type == t
}

// expectPeek validates if the next token is of the given type, and advances if
// it is. If it's a different type, then an error is stored.
func (p *Parser) expectPeek(context string, t token.Type) bool {
	if p.failed() {
		return false
	}
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(context, t, p.peekToken)
	return false
}

// peekOnNewLine reports whether the next token starts on a later line than
// the current one.
func (p *Parser) peekOnNewLine() bool {
	return p.peekToken.StartPosition.Line > p.curToken.EndPosition.Line
}

// peekEndsStatement reports whether the next token terminates the current
// statement.
func (p *Parser) peekEndsStatement() bool {
	switch p.peekToken.Type {
	case token.SEMICOLON, token.RBRACE, token.EOF:
		return true
	}
	return p.peekOnNewLine()
}

// peekPrecedence returns the precedence of the next token. A token on a new
// line outside any grouping starts a new statement and so binds nothing.
func (p *Parser) peekPrecedence() int {
	if p.groupDepth == 0 && p.peekOnNewLine() {
		return LOWEST
	}
	if p, ok := precedences[p.peekToken.Type]; ok {
		return p
	}
	return LOWEST
}

// newIdent creates a new Ident node from a token.
func (p *Parser) newIdent(tok token.Token) *ast.Ident {
	return &ast.Ident{NamePos: tok.StartPosition, Name: tok.Literal}
}

// enter increments the nesting depth, failing when the limit is exceeded.
func (p *Parser) enter() bool {
	p.depth++
	if p.depth > p.maxDepth {
		p.setTokenError(p.curToken, "maximum nesting depth exceeded")
		return false
	}
	return true
}

func (p *Parser) leave() {
	p.depth--
}
