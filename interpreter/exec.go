package interpreter

import (
	"fmt"

	"github.com/safescript/safescript/ast"
	"github.com/safescript/safescript/object"
	"github.com/safescript/safescript/scope"
)

// signal reports how a statement finished.
type signal int

const (
	signalNone signal = iota
	signalBreak
	signalContinue
	signalReturn
)

// hoist defines the function declarations made directly in stmts.
func (in *Interpreter) hoist(stmts []ast.Stmt, id scope.ID) error {
	for _, fn := range ast.FuncDecls(stmts) {
		if err := in.arena.Define(id, fn.Name.Name, in.makeFunction(fn, id), 0); err != nil {
			return in.decorate(err, fn)
		}
	}
	return nil
}

// execStmts runs a statement list in the given scope after hoisting its
// function declarations. The value is only set for signalReturn.
func (in *Interpreter) execStmts(stmts []ast.Stmt, id scope.ID) (signal, object.Object, error) {
	if err := in.hoist(stmts, id); err != nil {
		return signalNone, nil, err
	}
	for _, stmt := range stmts {
		sig, value, err := in.exec(stmt, id)
		if err != nil || sig != signalNone {
			return sig, value, err
		}
	}
	return signalNone, nil, nil
}

func (in *Interpreter) execBlock(block *ast.Block, parent scope.ID) (signal, object.Object, error) {
	id := in.arena.Push(parent)
	defer in.arena.Release(id)
	return in.execStmts(block.Stmts, id)
}

func (in *Interpreter) exec(stmt ast.Stmt, id scope.ID) (signal, object.Object, error) {
	if err := in.step(); err != nil {
		return signalNone, nil, err
	}
	switch stmt := stmt.(type) {
	case *ast.ExprStmt:
		_, err := in.eval(stmt.X, id)
		return signalNone, nil, err
	case *ast.Var:
		return signalNone, nil, in.execVar(stmt, id)
	case *ast.Func:
		if stmt.Name != nil {
			// Hoisted
			return signalNone, nil, nil
		}
		_, err := in.eval(stmt, id)
		return signalNone, nil, err
	case *ast.Block:
		return in.execBlock(stmt, id)
	case *ast.Return:
		var value object.Object = object.Nil
		if stmt.Value != nil {
			v, err := in.eval(stmt.Value, id)
			if err != nil {
				return signalNone, nil, err
			}
			value = v
		}
		return signalReturn, value, nil
	case *ast.If:
		return in.execIf(stmt, id)
	case *ast.While:
		return in.execWhile(stmt, id)
	case *ast.ForOf:
		return in.execForOf(stmt, id)
	case *ast.Break:
		return signalBreak, nil, nil
	case *ast.Continue:
		return signalContinue, nil, nil
	case *ast.Throw:
		value, err := in.eval(stmt.Value, id)
		if err != nil {
			return signalNone, nil, err
		}
		return signalNone, nil, in.decorate(object.Throw(value), stmt)
	case *ast.Try:
		return in.execTry(stmt, id)
	}
	return signalNone, nil, in.decorate(fmt.Errorf("unsupported statement %T", stmt), stmt)
}

func (in *Interpreter) execVar(stmt *ast.Var, id scope.ID) error {
	var value object.Object = object.Nil
	if stmt.Value != nil {
		v, err := in.eval(stmt.Value, id)
		if err != nil {
			return err
		}
		value = v
	}
	var flags scope.Flags
	if stmt.Const {
		flags = scope.Const
	}
	if err := in.arena.Define(id, stmt.Name.Name, value, flags); err != nil {
		return in.decorate(err, stmt)
	}
	return nil
}

func (in *Interpreter) execIf(stmt *ast.If, id scope.ID) (signal, object.Object, error) {
	cond, err := in.eval(stmt.Cond, id)
	if err != nil {
		return signalNone, nil, err
	}
	if cond.IsTruthy() {
		return in.execBlock(stmt.Consequence, id)
	}
	if stmt.Alternative != nil {
		return in.exec(stmt.Alternative, id)
	}
	return signalNone, nil, nil
}

func (in *Interpreter) execWhile(stmt *ast.While, id scope.ID) (signal, object.Object, error) {
	for {
		if err := in.step(); err != nil {
			return signalNone, nil, err
		}
		cond, err := in.eval(stmt.Cond, id)
		if err != nil {
			return signalNone, nil, err
		}
		if !cond.IsTruthy() {
			return signalNone, nil, nil
		}
		sig, value, err := in.execBlock(stmt.Body, id)
		if err != nil {
			return signalNone, nil, err
		}
		switch sig {
		case signalBreak:
			return signalNone, nil, nil
		case signalReturn:
			return sig, value, nil
		}
	}
}

func (in *Interpreter) execForOf(stmt *ast.ForOf, id scope.ID) (signal, object.Object, error) {
	container, err := in.eval(stmt.Iter, id)
	if err != nil {
		return signalNone, nil, err
	}
	iter, err := object.Iterate(container)
	if err != nil {
		return signalNone, nil, in.decorate(err, stmt.Iter)
	}
	var flags scope.Flags
	if stmt.Const {
		flags = scope.Const
	}
	for {
		if err := in.step(); err != nil {
			return signalNone, nil, err
		}
		item, ok := iter.Next()
		if !ok {
			return signalNone, nil, nil
		}
		sig, value, err := in.iteration(stmt, id, item, flags)
		if err != nil {
			return signalNone, nil, err
		}
		switch sig {
		case signalBreak:
			return signalNone, nil, nil
		case signalReturn:
			return sig, value, nil
		}
	}
}

// iteration runs one pass of a for-of body in a fresh scope holding the loop
// variable.
func (in *Interpreter) iteration(stmt *ast.ForOf, parent scope.ID, item object.Object, flags scope.Flags) (signal, object.Object, error) {
	id := in.arena.Push(parent)
	defer in.arena.Release(id)
	if err := in.arena.Define(id, stmt.Name.Name, item, flags); err != nil {
		return signalNone, nil, in.decorate(err, stmt)
	}
	return in.execStmts(stmt.Body.Stmts, id)
}

func (in *Interpreter) execTry(stmt *ast.Try, id scope.ID) (signal, object.Object, error) {
	sig, value, err := in.execBlock(stmt.Body, id)
	if err == nil {
		return sig, value, nil
	}
	caught, ok := object.Caught(err)
	if !ok {
		return signalNone, nil, err
	}
	catchScope := in.arena.Push(id)
	defer in.arena.Release(catchScope)
	if stmt.CatchIdent != nil {
		if err := in.arena.Define(catchScope, stmt.CatchIdent.Name, caught, 0); err != nil {
			return signalNone, nil, in.decorate(err, stmt)
		}
	}
	return in.execStmts(stmt.CatchBlock.Stmts, catchScope)
}
