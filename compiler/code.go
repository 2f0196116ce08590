package compiler

import (
	"strings"

	"github.com/safescript/safescript/bytecode"
	"github.com/safescript/safescript/op"
)

type loop struct {
	// Scope and handler depth of the code when the loop was entered, used to
	// unwind on break and continue.
	scopeDepth   int
	handlerDepth int
	// Position continue jumps back to.
	continuePos int
	// Positions of break jumps awaiting the end of the loop.
	breakPos []int
	// True for for-of loops, which keep an iterator on the stack.
	hasIterator bool
}

// code is the mutable form of a bytecode.Code used during compilation.
type code struct {
	name         string
	parent       *code
	children     []*code
	instructions []op.Code
	constants    []any
	names        []string
	nameIndex    map[string]uint16
	locations    []bytecode.SourceLocation
	handlers     []bytecode.ExceptionHandler
	source       string
	filename     string

	// Used during compilation only
	loops        []*loop
	scopeDepth   int
	handlerDepth int

	// The finished form, set by toBytecode. Function constants refer to it.
	built *bytecode.Code
}

func newCode(name string, parent *code) *code {
	return &code{name: name, parent: parent, nameIndex: map[string]uint16{}}
}

func (c *code) currentLoop() *loop {
	if len(c.loops) == 0 {
		return nil
	}
	return c.loops[len(c.loops)-1]
}

func (c *code) sourceLine(lineNum int) string {
	lines := strings.Split(c.source, "\n")
	if lineNum < 1 || lineNum > len(lines) {
		return ""
	}
	return lines[lineNum-1]
}

// toBytecode converts the code tree into its immutable form. Children are
// built first so function constants can refer to their finished bodies.
func (c *code) toBytecode() *bytecode.Code {
	children := make([]*bytecode.Code, len(c.children))
	for i, child := range c.children {
		children[i] = child.toBytecode()
	}
	constants := make([]any, len(c.constants))
	for i, constant := range c.constants {
		if fn, ok := constant.(*function); ok {
			constant = bytecode.NewFunction(bytecode.FunctionParams{
				Name:       fn.name,
				Parameters: fn.params,
				Code:       fn.body.built,
			})
		}
		constants[i] = constant
	}
	c.built = bytecode.NewCode(bytecode.CodeParams{
		Name:              c.name,
		Children:          children,
		Instructions:      c.instructions,
		Constants:         constants,
		Names:             c.names,
		Source:            c.source,
		Filename:          c.filename,
		Locations:         c.locations,
		ExceptionHandlers: c.handlers,
	})
	return c.built
}

// function is a function constant whose body is still being compiled.
type function struct {
	name   string
	params []string
	body   *code
}
