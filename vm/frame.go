package vm

import (
	"github.com/safescript/safescript/bytecode"
	"github.com/safescript/safescript/object"
	"github.com/safescript/safescript/scope"
)

type frame struct {
	code *bytecode.Code
	fn   *object.Function // nil for the program
	// Instruction pointer of the caller to resume at
	returnAddr int
	// Stack height when the call was made, excluding callee and arguments
	base int
	// Innermost scope currently open in this frame
	scope scope.ID
	// Scope the frame's own scopes were pushed on. Leaving the frame
	// releases every scope up to it.
	outer scope.ID
	// Converted constants of code
	constants []object.Object
}

func (f *frame) name() string {
	if f.fn == nil {
		return "<main>"
	}
	if name := f.fn.Name(); name != "" {
		return name
	}
	return "<anonymous>"
}

// handler is an active try block.
type handler struct {
	catchIP int
	sp      int
	scope   scope.ID
	fp      int
}
