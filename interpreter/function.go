package interpreter

import (
	"github.com/safescript/safescript/ast"
	"github.com/safescript/safescript/object"
	"github.com/safescript/safescript/scope"
)

// function is the interpreter's form of a script function body.
type function struct {
	node *ast.Func
}

func (f *function) Name() string {
	if f.node.Name == nil {
		return ""
	}
	return f.node.Name.Name
}

func (f *function) Params() []string {
	return f.node.ParamNames()
}

// makeFunction creates a closure over id. The scope is pinned so it outlives
// the block that created it.
func (in *Interpreter) makeFunction(node *ast.Func, id scope.ID) *object.Function {
	in.arena.Pin(id)
	return object.NewFunction(&function{node: node}, id)
}
