package object

import (
	"encoding/json"
	"fmt"
)

// FunctionCode is the executable body of a script function. The interpreter
// and the virtual machine each supply their own implementation.
type FunctionCode interface {
	// Name of the function, or "" if anonymous.
	Name() string

	// Params returns the parameter names in order.
	Params() []string
}

// Function is a script-defined closure: a code reference paired with the
// scope the function was defined in.
type Function struct {
	code  FunctionCode
	scope ScopeRef
}

func (f *Function) Type() Type {
	return FUNCTION
}

// Code returns the function body.
func (f *Function) Code() FunctionCode {
	return f.code
}

// Scope returns the captured defining scope.
func (f *Function) Scope() ScopeRef {
	return f.scope
}

func (f *Function) Name() string {
	return f.code.Name()
}

// Arity returns the number of declared parameters.
func (f *Function) Arity() int {
	return len(f.code.Params())
}

func (f *Function) Inspect() string {
	if name := f.code.Name(); name != "" {
		return fmt.Sprintf("function(%s)", name)
	}
	return "function(anonymous)"
}

func (f *Function) String() string {
	return f.Inspect()
}

func (f *Function) Interface() any {
	return f
}

// Equals compares functions by identity.
func (f *Function) Equals(other Object) bool {
	otherFn, ok := other.(*Function)
	return ok && f == otherFn
}

func (f *Function) IsTruthy() bool {
	return true
}

func (f *Function) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.Inspect())
}

func NewFunction(code FunctionCode, scope ScopeRef) *Function {
	return &Function{code: code, scope: scope}
}
