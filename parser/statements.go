package parser

import (
	"github.com/safescript/safescript/ast"
	"github.com/safescript/safescript/internal/token"
)

// parseStatementStrict parses a statement and checks that it is properly
// terminated. Statements end at a semicolon, a line break, a closing brace
// or the end of the input. Statements that end with a block need no
// terminator.
func (p *Parser) parseStatementStrict() ast.Stmt {
	stmt := p.parseStatement()
	if stmt == nil || p.failed() {
		return nil
	}
	if p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
		return stmt
	}
	if endsWithBlock(stmt) || p.peekEndsStatement() {
		return stmt
	}
	p.setTokenError(p.peekToken, "unexpected %s following statement", tokenDescription(p.peekToken))
	return nil
}

func endsWithBlock(stmt ast.Stmt) bool {
	switch stmt.(type) {
	case *ast.Block, *ast.If, *ast.While, *ast.ForOf, *ast.Try, *ast.Func:
		return true
	}
	return false
}

func (p *Parser) parseStatement() ast.Stmt {
	switch p.curToken.Type {
	case token.LET, token.CONST:
		return p.parseVar()
	case token.FUNCTION:
		if p.peekTokenIs(token.IDENT) {
			return p.parseFuncDecl()
		}
	case token.RETURN:
		return p.parseReturn()
	case token.IF:
		return p.parseIf()
	case token.WHILE:
		return p.parseWhile()
	case token.FOR:
		return p.parseForOf()
	case token.BREAK:
		return p.parseBreak()
	case token.CONTINUE:
		return p.parseContinue()
	case token.THROW:
		return p.parseThrow()
	case token.TRY:
		return p.parseTry()
	case token.LBRACE:
		if block := p.parseBlock(); block != nil {
			return block
		}
		return nil
	case token.SEMICOLON:
		// Empty statement
		return nil
	}
	return p.parseExpressionStatement()
}

func (p *Parser) parseVar() ast.Stmt {
	tok := p.curToken
	stmt := &ast.Var{Let: tok.StartPosition, Const: tok.Type == token.CONST}
	if !p.expectPeek(stmt.Keyword()+" statement", token.IDENT) {
		return nil
	}
	stmt.Name = p.newIdent(p.curToken)
	if !p.peekTokenIs(token.ASSIGN) {
		if stmt.Const {
			p.setTokenError(p.curToken, "missing initializer in const declaration")
			return nil
		}
		return stmt
	}
	p.nextToken()
	p.nextToken()
	stmt.Value = p.parseExpression(LOWEST)
	if stmt.Value == nil {
		return nil
	}
	return stmt
}

func (p *Parser) parseReturn() ast.Stmt {
	stmt := &ast.Return{Return: p.curToken.StartPosition}
	if p.funcDepth == 0 {
		p.setTokenError(p.curToken, "return outside function")
		return nil
	}
	if p.peekEndsStatement() {
		return stmt
	}
	p.nextToken()
	stmt.Value = p.parseExpression(LOWEST)
	if stmt.Value == nil {
		return nil
	}
	return stmt
}

func (p *Parser) parseBreak() ast.Stmt {
	if p.loopDepth == 0 {
		p.setTokenError(p.curToken, "break outside loop")
		return nil
	}
	return &ast.Break{Break: p.curToken.StartPosition}
}

func (p *Parser) parseContinue() ast.Stmt {
	if p.loopDepth == 0 {
		p.setTokenError(p.curToken, "continue outside loop")
		return nil
	}
	return &ast.Continue{Continue: p.curToken.StartPosition}
}

func (p *Parser) parseThrow() ast.Stmt {
	stmt := &ast.Throw{Throw: p.curToken.StartPosition}
	if p.peekEndsStatement() {
		p.setTokenError(p.curToken, "throw requires a value")
		return nil
	}
	p.nextToken()
	stmt.Value = p.parseExpression(LOWEST)
	if stmt.Value == nil {
		return nil
	}
	return stmt
}

func (p *Parser) parseExpressionStatement() ast.Stmt {
	expr := p.parseExpression(LOWEST)
	if expr == nil {
		return nil
	}
	return &ast.ExprStmt{X: expr}
}

// parseBlock parses a braced block. The current token must be "{". On
// return the current token is the closing "}".
func (p *Parser) parseBlock() *ast.Block {
	p.enter()
	defer p.leave()
	if p.failed() {
		return nil
	}
	open := p.curToken
	block := &ast.Block{Lbrace: open.StartPosition}

	// Line breaks end statements again inside a block, even one nested in
	// parentheses such as a function literal passed as an argument.
	savedGroup := p.groupDepth
	p.groupDepth = 0
	defer func() { p.groupDepth = savedGroup }()

	p.nextToken()
	for !p.curTokenIs(token.RBRACE) {
		if p.failed() {
			return nil
		}
		if p.curTokenIs(token.EOF) {
			p.setTokenError(open, "unterminated block (expected \"}\")")
			return nil
		}
		if stmt := p.parseStatementStrict(); stmt != nil {
			block.Stmts = append(block.Stmts, stmt)
		}
		p.nextToken()
	}
	if p.failed() {
		return nil
	}
	block.Rbrace = p.curToken.StartPosition
	return block
}

// parseCondition parses "(" expr ")" following a keyword.
func (p *Parser) parseCondition(context string) ast.Expr {
	if !p.expectPeek(context, token.LPAREN) {
		return nil
	}
	p.groupDepth++
	defer func() { p.groupDepth-- }()
	p.nextToken()
	cond := p.parseExpression(LOWEST)
	if cond == nil || !p.expectPeek(context, token.RPAREN) {
		return nil
	}
	return cond
}

// parseBody expects the next token to be "{" and parses the block.
func (p *Parser) parseBody(context string) *ast.Block {
	if !p.expectPeek(context, token.LBRACE) {
		return nil
	}
	return p.parseBlock()
}

func (p *Parser) parseIf() ast.Stmt {
	stmt := &ast.If{If: p.curToken.StartPosition}
	if stmt.Cond = p.parseCondition("if statement"); stmt.Cond == nil {
		return nil
	}
	if stmt.Consequence = p.parseBody("if statement"); stmt.Consequence == nil {
		return nil
	}
	if !p.peekTokenIs(token.ELSE) {
		return stmt
	}
	p.nextToken()
	if p.peekTokenIs(token.IF) {
		p.nextToken()
		alt := p.parseIf()
		if alt == nil {
			return nil
		}
		stmt.Alternative = alt
		return stmt
	}
	alt := p.parseBody("else clause")
	if alt == nil {
		return nil
	}
	stmt.Alternative = alt
	return stmt
}

func (p *Parser) parseLoopBody(context string) *ast.Block {
	p.loopDepth++
	defer func() { p.loopDepth-- }()
	return p.parseBody(context)
}

func (p *Parser) parseWhile() ast.Stmt {
	stmt := &ast.While{While: p.curToken.StartPosition}
	if stmt.Cond = p.parseCondition("while loop"); stmt.Cond == nil {
		return nil
	}
	if stmt.Body = p.parseLoopBody("while loop"); stmt.Body == nil {
		return nil
	}
	return stmt
}

func (p *Parser) parseForOf() ast.Stmt {
	const context = "for loop"
	stmt := &ast.ForOf{For: p.curToken.StartPosition}
	if !p.expectPeek(context, token.LPAREN) {
		return nil
	}
	switch p.peekToken.Type {
	case token.LET:
	case token.CONST:
		stmt.Const = true
	default:
		p.peekError(context, token.LET, p.peekToken)
		return nil
	}
	p.nextToken()
	if !p.expectPeek(context, token.IDENT) {
		return nil
	}
	stmt.Name = p.newIdent(p.curToken)
	if !p.expectPeek(context, token.OF) {
		return nil
	}
	p.groupDepth++
	p.nextToken()
	stmt.Iter = p.parseExpression(LOWEST)
	p.groupDepth--
	if stmt.Iter == nil || !p.expectPeek(context, token.RPAREN) {
		return nil
	}
	if stmt.Body = p.parseLoopBody(context); stmt.Body == nil {
		return nil
	}
	return stmt
}

func (p *Parser) parseTry() ast.Stmt {
	stmt := &ast.Try{Try: p.curToken.StartPosition}
	if stmt.Body = p.parseBody("try statement"); stmt.Body == nil {
		return nil
	}
	if !p.expectPeek("try statement", token.CATCH) {
		return nil
	}
	if p.peekTokenIs(token.LPAREN) {
		p.nextToken()
		if !p.expectPeek("catch clause", token.IDENT) {
			return nil
		}
		stmt.CatchIdent = p.newIdent(p.curToken)
		if !p.expectPeek("catch clause", token.RPAREN) {
			return nil
		}
	}
	if stmt.CatchBlock = p.parseBody("catch clause"); stmt.CatchBlock == nil {
		return nil
	}
	return stmt
}

func (p *Parser) parseFuncDecl() ast.Stmt {
	fn := p.parseFunc()
	if fn == nil {
		return nil
	}
	return fn
}
