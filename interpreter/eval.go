package interpreter

import (
	"fmt"

	"github.com/safescript/safescript/ast"
	"github.com/safescript/safescript/errz"
	"github.com/safescript/safescript/native"
	"github.com/safescript/safescript/object"
	"github.com/safescript/safescript/op"
	"github.com/safescript/safescript/scope"
)

// eval evaluates an expression. Errors are located at the innermost node
// that raised them.
func (in *Interpreter) eval(node ast.Expr, id scope.ID) (object.Object, error) {
	value, err := in.evalExpr(node, id)
	if err != nil {
		return nil, in.decorate(err, node)
	}
	return value, nil
}

func (in *Interpreter) evalExpr(node ast.Expr, id scope.ID) (object.Object, error) {
	switch node := node.(type) {
	case *ast.Nil:
		return object.Nil, nil
	case *ast.Bool:
		return object.NewBool(node.Value), nil
	case *ast.Number:
		return object.NewNumber(node.Value), nil
	case *ast.String:
		return object.NewString(node.Value), nil
	case *ast.Ident:
		return in.arena.Lookup(id, node.Name)
	case *ast.List:
		items, err := in.evalList(node.Items, id)
		if err != nil {
			return nil, err
		}
		return object.NewList(items), nil
	case *ast.Map:
		m := object.NewOrderedMap()
		for _, item := range node.Items {
			value, err := in.eval(item.Value, id)
			if err != nil {
				return nil, err
			}
			m.Set(item.Key.Value, value)
		}
		return m, nil
	case *ast.Func:
		return in.makeFunction(node, id), nil
	case *ast.Prefix:
		return in.evalPrefix(node, id)
	case *ast.Infix:
		return in.evalInfix(node, id)
	case *ast.Ternary:
		cond, err := in.eval(node.Cond, id)
		if err != nil {
			return nil, err
		}
		if cond.IsTruthy() {
			return in.eval(node.IfTrue, id)
		}
		return in.eval(node.IfFalse, id)
	case *ast.Assign:
		return in.evalAssign(node, id)
	case *ast.Call:
		return in.evalCall(node, id)
	case *ast.GetAttr:
		obj, err := in.eval(node.X, id)
		if err != nil {
			return nil, err
		}
		return object.GetAttr(obj, node.Attr.Name)
	case *ast.Index:
		container, err := in.eval(node.X, id)
		if err != nil {
			return nil, err
		}
		index, err := in.eval(node.Index, id)
		if err != nil {
			return nil, err
		}
		return object.GetItem(container, index)
	}
	return nil, fmt.Errorf("unsupported expression %T", node)
}

func (in *Interpreter) evalList(exprs []ast.Expr, id scope.ID) ([]object.Object, error) {
	items := make([]object.Object, 0, len(exprs))
	for _, expr := range exprs {
		value, err := in.eval(expr, id)
		if err != nil {
			return nil, err
		}
		items = append(items, value)
	}
	return items, nil
}

func (in *Interpreter) evalPrefix(node *ast.Prefix, id scope.ID) (object.Object, error) {
	x, err := in.eval(node.X, id)
	if err != nil {
		return nil, err
	}
	switch node.Op {
	case "!":
		return object.Not(x), nil
	case "-":
		return object.Negate(x)
	}
	return nil, object.TypeErrorf("unknown operator %q", node.Op)
}

func (in *Interpreter) evalInfix(node *ast.Infix, id scope.ID) (object.Object, error) {
	x, err := in.eval(node.X, id)
	if err != nil {
		return nil, err
	}
	switch node.Op {
	case "&&":
		if !x.IsTruthy() {
			return x, nil
		}
		return in.eval(node.Y, id)
	case "||":
		if x.IsTruthy() {
			return x, nil
		}
		return in.eval(node.Y, id)
	case "??":
		if x != object.Nil {
			return x, nil
		}
		return in.eval(node.Y, id)
	}
	y, err := in.eval(node.Y, id)
	if err != nil {
		return nil, err
	}
	if binop, ok := op.BinaryOpFromString(node.Op); ok {
		return object.BinaryOp(binop, x, y)
	}
	if cmp, ok := op.CompareOpFromString(node.Op); ok {
		return object.Compare(cmp, x, y)
	}
	return nil, object.TypeErrorf("unknown operator %q", node.Op)
}

// compoundOp returns the operator of a compound assignment such as +=.
func compoundOp(assignOp string) (op.BinaryOpType, bool, error) {
	if assignOp == "=" {
		return 0, false, nil
	}
	binop, ok := op.BinaryOpFromString(assignOp[:len(assignOp)-1])
	if !ok {
		return 0, false, object.TypeErrorf("unknown assignment operator %q", assignOp)
	}
	return binop, true, nil
}

// evalAssign returns the assigned value. Operands are evaluated in the same
// order as the compiled form: target, current value, then the right side.
func (in *Interpreter) evalAssign(node *ast.Assign, id scope.ID) (object.Object, error) {
	binop, compound, err := compoundOp(node.Op)
	if err != nil {
		return nil, err
	}
	// update combines the current value with the right side
	update := func(current func() (object.Object, error)) (object.Object, error) {
		var old object.Object
		if compound {
			if old, err = current(); err != nil {
				return nil, err
			}
		}
		value, err := in.eval(node.Value, id)
		if err != nil {
			return nil, err
		}
		if compound {
			return object.BinaryOp(binop, old, value)
		}
		return value, nil
	}

	switch target := node.Target.(type) {
	case *ast.Ident:
		value, err := update(func() (object.Object, error) {
			return in.arena.Lookup(id, target.Name)
		})
		if err != nil {
			return nil, err
		}
		return value, in.arena.Assign(id, target.Name, value)
	case *ast.Index:
		container, err := in.eval(target.X, id)
		if err != nil {
			return nil, err
		}
		index, err := in.eval(target.Index, id)
		if err != nil {
			return nil, err
		}
		value, err := update(func() (object.Object, error) {
			return object.GetItem(container, index)
		})
		if err != nil {
			return nil, err
		}
		return value, object.SetItem(container, index, value)
	case *ast.GetAttr:
		obj, err := in.eval(target.X, id)
		if err != nil {
			return nil, err
		}
		value, err := update(func() (object.Object, error) {
			return object.GetAttr(obj, target.Attr.Name)
		})
		if err != nil {
			return nil, err
		}
		return value, object.SetAttr(obj, target.Attr.Name, value)
	}
	return nil, object.TypeErrorf("invalid assignment target %s", node.Target)
}

func (in *Interpreter) evalCall(node *ast.Call, id scope.ID) (object.Object, error) {
	callee, err := in.eval(node.Fun, id)
	if err != nil {
		return nil, err
	}
	args, err := in.evalList(node.Args, id)
	if err != nil {
		return nil, err
	}
	switch fn := callee.(type) {
	case *object.Builtin:
		return native.Call(in.ctx, fn, args)
	case *object.Function:
		return in.callFunction(node, fn, args)
	}
	return nil, object.TypeErrorf("%s is not callable", object.TypeName(callee))
}

func (in *Interpreter) callFunction(node *ast.Call, fn *object.Function, args []object.Object) (object.Object, error) {
	code, ok := fn.Code().(*function)
	if !ok {
		return nil, object.TypeErrorf("%s was not created by the interpreter", fn.Inspect())
	}
	if err := object.CheckArity(fn, len(args)); err != nil {
		return nil, err
	}
	if len(in.frames) >= in.maxDepth {
		return nil, errz.Newf(errz.StackOverflow, "maximum call depth exceeded (%d)", in.maxDepth)
	}
	callScope := in.arena.Push(fn.Scope())
	defer in.arena.Release(callScope)
	for i, param := range code.node.Params {
		if err := in.arena.Define(callScope, param.Name, args[i], 0); err != nil {
			return nil, err
		}
	}

	name := fn.Name()
	if name == "" {
		name = "<anonymous>"
	}
	in.frames = append(in.frames, frame{name: name, call: node.Pos()})
	defer func() { in.frames = in.frames[:len(in.frames)-1] }()

	sig, value, err := in.execStmts(code.node.Body.Stmts, callScope)
	if err != nil {
		return nil, err
	}
	if sig == signalReturn {
		return value, nil
	}
	return object.Nil, nil
}
