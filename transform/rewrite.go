package transform

import "github.com/safescript/safescript/ast"

// rewriter replaces expressions bottom-up: children are rewritten before the
// function sees their parent.
type rewriter func(ast.Expr) ast.Expr

func (r rewriter) stmts(stmts []ast.Stmt) {
	for i, stmt := range stmts {
		stmts[i] = r.stmt(stmt)
	}
}

func (r rewriter) block(block *ast.Block) {
	if block != nil {
		r.stmts(block.Stmts)
	}
}

func (r rewriter) stmt(stmt ast.Stmt) ast.Stmt {
	switch s := stmt.(type) {
	case *ast.Block:
		r.block(s)
	case *ast.Var:
		if s.Value != nil {
			s.Value = r.expr(s.Value)
		}
	case *ast.ExprStmt:
		s.X = r.expr(s.X)
	case *ast.Func:
		// Declarations stay declarations
		r.block(s.Body)
	case *ast.Return:
		if s.Value != nil {
			s.Value = r.expr(s.Value)
		}
	case *ast.If:
		s.Cond = r.expr(s.Cond)
		r.block(s.Consequence)
		if s.Alternative != nil {
			s.Alternative = r.stmt(s.Alternative)
		}
	case *ast.While:
		s.Cond = r.expr(s.Cond)
		r.block(s.Body)
	case *ast.ForOf:
		s.Iter = r.expr(s.Iter)
		r.block(s.Body)
	case *ast.Throw:
		s.Value = r.expr(s.Value)
	case *ast.Try:
		r.block(s.Body)
		r.block(s.CatchBlock)
	}
	return stmt
}

func (r rewriter) exprs(exprs []ast.Expr) {
	for i, e := range exprs {
		exprs[i] = r.expr(e)
	}
}

func (r rewriter) expr(expr ast.Expr) ast.Expr {
	switch e := expr.(type) {
	case *ast.List:
		r.exprs(e.Items)
	case *ast.Map:
		for i := range e.Items {
			e.Items[i].Value = r.expr(e.Items[i].Value)
		}
	case *ast.Func:
		r.block(e.Body)
	case *ast.Prefix:
		e.X = r.expr(e.X)
	case *ast.Infix:
		e.X = r.expr(e.X)
		e.Y = r.expr(e.Y)
	case *ast.Ternary:
		e.Cond = r.expr(e.Cond)
		e.IfTrue = r.expr(e.IfTrue)
		e.IfFalse = r.expr(e.IfFalse)
	case *ast.Assign:
		e.Target = r.expr(e.Target)
		e.Value = r.expr(e.Value)
	case *ast.Call:
		e.Fun = r.expr(e.Fun)
		r.exprs(e.Args)
	case *ast.GetAttr:
		e.X = r.expr(e.X)
	case *ast.Index:
		e.X = r.expr(e.X)
		e.Index = r.expr(e.Index)
	}
	return r(expr)
}

// Rewrite applies fn to every expression in the program, innermost first,
// replacing each expression with the result. Statements are modified in
// place.
func Rewrite(program *ast.Program, fn func(ast.Expr) ast.Expr) *ast.Program {
	rewriter(fn).stmts(program.Stmts)
	return program
}
