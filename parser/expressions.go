package parser

import (
	"errors"
	"strconv"
	"strings"

	"github.com/safescript/safescript/ast"
	"github.com/safescript/safescript/internal/lexer"
	"github.com/safescript/safescript/internal/token"
)

func (p *Parser) parseExpression(precedence int) ast.Expr {
	p.enter()
	defer p.leave()
	if p.failed() {
		return nil
	}
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.noPrefixParseFnError(p.curToken)
		return nil
	}
	left := prefix()
	if left == nil || p.failed() {
		return nil
	}
	for !p.peekTokenIs(token.SEMICOLON) && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return left
		}
		p.nextToken()
		left = infix(left)
		if left == nil || p.failed() {
			return nil
		}
	}
	return left
}

func (p *Parser) parseIdent() ast.Expr {
	return p.newIdent(p.curToken)
}

func (p *Parser) parseNil() ast.Expr {
	return &ast.Nil{NilPos: p.curToken.StartPosition, Literal: p.curToken.Literal}
}

func (p *Parser) parseBoolean() ast.Expr {
	return &ast.Bool{ValuePos: p.curToken.StartPosition, Value: p.curTokenIs(token.TRUE)}
}

func (p *Parser) parseNumber() ast.Expr {
	tok := p.curToken
	value, err := ParseNumber(tok.Literal)
	if err != nil {
		p.setTokenError(tok, "invalid numeric literal: %s", tok.Literal)
		return nil
	}
	return &ast.Number{ValuePos: tok.StartPosition, Literal: tok.Literal, Value: value}
}

// ParseNumber decodes a numeric literal as produced by the lexer.
func ParseNumber(lit string) (float64, error) {
	s := strings.ReplaceAll(lit, "_", "")
	if len(s) > 2 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			u, err := strconv.ParseUint(s[2:], base, 64)
			if err != nil {
				return 0, err
			}
			return float64(u), nil
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil && errors.Is(err, strconv.ErrRange) {
		// Out of range literals saturate to an infinity or zero.
		return v, nil
	}
	return v, err
}

func (p *Parser) parseString() ast.Expr {
	tok := p.curToken
	value, _, err := lexer.Unescape(tok.Literal)
	if err != nil {
		p.setTokenError(tok, "%s", err.Error())
		return nil
	}
	return &ast.String{ValuePos: tok.StartPosition, Literal: tok.Literal, Value: value}
}

func (p *Parser) parsePrefixExpr() ast.Expr {
	tok := p.curToken
	p.nextToken()
	right := p.parseExpression(PREFIX)
	if right == nil {
		return nil
	}
	return &ast.Prefix{OpPos: tok.StartPosition, Op: tok.Literal, X: right}
}

func (p *Parser) parseInfixExpr(left ast.Expr) ast.Expr {
	tok := p.curToken
	precedence := precedences[tok.Type]
	if tok.Type == token.POW {
		// Right-associative
		precedence--
	}
	p.nextToken()
	right := p.parseExpression(precedence)
	if right == nil {
		return nil
	}
	return &ast.Infix{X: left, OpPos: tok.StartPosition, Op: tok.Literal, Y: right}
}

func (p *Parser) parseTernary(cond ast.Expr) ast.Expr {
	expr := &ast.Ternary{Cond: cond, Question: p.curToken.StartPosition}
	p.nextToken()
	if expr.IfTrue = p.parseExpression(LOWEST); expr.IfTrue == nil {
		return nil
	}
	if !p.expectPeek("ternary expression", token.COLON) {
		return nil
	}
	expr.Colon = p.curToken.StartPosition
	p.nextToken()
	// Right-associative, so "a ? b : c ? d : e" nests in the false branch.
	if expr.IfFalse = p.parseExpression(TERNARY - 1); expr.IfFalse == nil {
		return nil
	}
	return expr
}

func (p *Parser) parseAssign(target ast.Expr) ast.Expr {
	tok := p.curToken
	switch target.(type) {
	case *ast.Ident, *ast.Index, *ast.GetAttr:
	default:
		p.setTokenError(tok, "invalid assignment target")
		return nil
	}
	p.nextToken()
	value := p.parseExpression(ASSIGN - 1)
	if value == nil {
		return nil
	}
	return &ast.Assign{Target: target, OpPos: tok.StartPosition, Op: tok.Literal, Value: value}
}

func (p *Parser) parseGroupedExpr() ast.Expr {
	p.groupDepth++
	defer func() { p.groupDepth-- }()
	p.nextToken()
	expr := p.parseExpression(LOWEST)
	if expr == nil || !p.expectPeek("grouped expression", token.RPAREN) {
		return nil
	}
	return expr
}

// parseExprList parses a comma separated list of expressions ending with the
// given token. The current token must be the opening delimiter. Trailing
// commas are allowed.
func (p *Parser) parseExprList(context string, end token.Type) ([]ast.Expr, bool) {
	p.groupDepth++
	defer func() { p.groupDepth-- }()
	var list []ast.Expr
	for {
		if p.peekTokenIs(end) {
			p.nextToken()
			return list, true
		}
		p.nextToken()
		expr := p.parseExpression(LOWEST)
		if expr == nil {
			return nil, false
		}
		list = append(list, expr)
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			continue
		}
		if !p.expectPeek(context, end) {
			return nil, false
		}
		return list, true
	}
}

func (p *Parser) parseList() ast.Expr {
	list := &ast.List{Lbrack: p.curToken.StartPosition}
	items, ok := p.parseExprList("list", token.RBRACKET)
	if !ok {
		return nil
	}
	list.Items = items
	list.Rbrack = p.curToken.StartPosition
	return list
}

func (p *Parser) parseMap() ast.Expr {
	const context = "map"
	p.groupDepth++
	defer func() { p.groupDepth-- }()
	m := &ast.Map{Lbrace: p.curToken.StartPosition}
	for {
		if p.peekTokenIs(token.RBRACE) {
			p.nextToken()
			break
		}
		p.nextToken()
		key := p.parseMapKey()
		if key == nil {
			return nil
		}
		if !p.expectPeek(context, token.COLON) {
			return nil
		}
		p.nextToken()
		value := p.parseExpression(LOWEST)
		if value == nil {
			return nil
		}
		m.Items = append(m.Items, ast.MapItem{Key: key, Value: value})
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			continue
		}
		if !p.expectPeek(context, token.RBRACE) {
			return nil
		}
		break
	}
	m.Rbrace = p.curToken.StartPosition
	return m
}

// parseMapKey accepts a string literal, an identifier or a keyword.
func (p *Parser) parseMapKey() *ast.String {
	tok := p.curToken
	switch {
	case tok.Type == token.STRING:
		s, ok := p.parseString().(*ast.String)
		if !ok {
			return nil
		}
		return s
	case tok.Type == token.IDENT || token.IsKeyword(tok.Literal):
		return &ast.String{ValuePos: tok.StartPosition, Literal: tok.Literal, Value: tok.Literal}
	}
	if tok.Type == token.EOF {
		p.setTokenError(tok, "unexpected end of file while parsing map (expected \"}\")")
		return nil
	}
	p.setTokenError(tok, "invalid map key (unexpected %s)", tokenDescription(tok))
	return nil
}

func (p *Parser) parseCall(fn ast.Expr) ast.Expr {
	call := &ast.Call{Fun: fn, Lparen: p.curToken.StartPosition}
	args, ok := p.parseExprList("call arguments", token.RPAREN)
	if !ok {
		return nil
	}
	call.Args = args
	call.Rparen = p.curToken.StartPosition
	return call
}

func (p *Parser) parseIndex(left ast.Expr) ast.Expr {
	expr := &ast.Index{X: left, Lbrack: p.curToken.StartPosition}
	p.groupDepth++
	defer func() { p.groupDepth-- }()
	p.nextToken()
	if expr.Index = p.parseExpression(LOWEST); expr.Index == nil {
		return nil
	}
	if !p.expectPeek("index expression", token.RBRACKET) {
		return nil
	}
	expr.Rbrack = p.curToken.StartPosition
	return expr
}

func (p *Parser) parseGetAttr(obj ast.Expr) ast.Expr {
	period := p.curToken
	if !p.peekTokenIs(token.IDENT) && !token.IsKeyword(p.peekToken.Literal) {
		p.peekError("attribute access", token.IDENT, p.peekToken)
		return nil
	}
	p.nextToken()
	return &ast.GetAttr{X: obj, Period: period.StartPosition, Attr: p.newIdent(p.curToken)}
}

func (p *Parser) parseFuncExpr() ast.Expr {
	fn := p.parseFunc()
	if fn == nil {
		return nil
	}
	return fn
}

// parseFunc parses "function [name](params) { body }". The current token
// must be the function keyword.
func (p *Parser) parseFunc() *ast.Func {
	const context = "function"
	fn := &ast.Func{Func: p.curToken.StartPosition}
	if p.peekTokenIs(token.IDENT) {
		p.nextToken()
		fn.Name = p.newIdent(p.curToken)
	}
	if !p.expectPeek(context, token.LPAREN) {
		return nil
	}
	fn.Lparen = p.curToken.StartPosition
	seen := map[string]bool{}
	for {
		if p.peekTokenIs(token.RPAREN) {
			p.nextToken()
			break
		}
		if !p.expectPeek("function parameters", token.IDENT) {
			return nil
		}
		param := p.newIdent(p.curToken)
		if seen[param.Name] {
			p.setTokenError(p.curToken, "duplicate parameter %q", param.Name)
			return nil
		}
		seen[param.Name] = true
		fn.Params = append(fn.Params, param)
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			continue
		}
		if !p.expectPeek("function parameters", token.RPAREN) {
			return nil
		}
		break
	}
	fn.Rparen = p.curToken.StartPosition

	// A function body starts a fresh loop context.
	savedLoop := p.loopDepth
	p.loopDepth = 0
	p.funcDepth++
	defer func() {
		p.loopDepth = savedLoop
		p.funcDepth--
	}()
	if fn.Body = p.parseBody(context); fn.Body == nil {
		return nil
	}
	return fn
}
