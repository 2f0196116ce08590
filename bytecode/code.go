package bytecode

import (
	"strings"

	"github.com/safescript/safescript/op"
)

// Code represents a compiled code block (the program or a function body).
// It is immutable after creation and safe for concurrent use.
type Code struct {
	name     string
	children []*Code
	parent   *Code

	instructions []op.Code
	constants    []any
	names        []string
	source       string
	filename     string

	// One location per instruction for error reporting
	locations []SourceLocation

	handlers []ExceptionHandler
}

// CodeParams contains parameters for creating a new Code.
type CodeParams struct {
	Name              string
	Children          []*Code
	Instructions      []op.Code
	Constants         []any
	Names             []string
	Source            string
	Filename          string
	Locations         []SourceLocation
	ExceptionHandlers []ExceptionHandler
}

// NewCode creates a new immutable Code from the given parameters.
// Input slices are copied.
func NewCode(params CodeParams) *Code {
	code := &Code{
		name:         params.Name,
		children:     copySlice(params.Children),
		instructions: copySlice(params.Instructions),
		constants:    copySlice(params.Constants),
		names:        copySlice(params.Names),
		source:       params.Source,
		filename:     params.Filename,
		locations:    copySlice(params.Locations),
		handlers:     copySlice(params.ExceptionHandlers),
	}
	for _, child := range code.children {
		child.parent = code
	}
	return code
}

// Name returns the name of this code block.
func (c *Code) Name() string {
	return c.name
}

// Parent returns the enclosing code block, or nil for the program.
func (c *Code) Parent() *Code {
	return c.parent
}

// ChildCount returns the number of child code blocks.
func (c *Code) ChildCount() int {
	return len(c.children)
}

// ChildAt returns the child code block at the given index.
func (c *Code) ChildAt(index int) *Code {
	return c.children[index]
}

// InstructionCount returns the number of instructions.
func (c *Code) InstructionCount() int {
	return len(c.instructions)
}

// InstructionAt returns the instruction at the given index.
func (c *Code) InstructionAt(index int) op.Code {
	return c.instructions[index]
}

// ConstantCount returns the number of constants.
func (c *Code) ConstantCount() int {
	return len(c.constants)
}

// ConstantAt returns the constant at the given index.
func (c *Code) ConstantAt(index int) any {
	return c.constants[index]
}

// NameCount returns the number of names.
func (c *Code) NameCount() int {
	return len(c.names)
}

// NameAt returns the variable or attribute name at the given index.
func (c *Code) NameAt(index int) string {
	return c.names[index]
}

// Source returns the source code this block was compiled from.
func (c *Code) Source() string {
	return c.source
}

// Filename returns the source filename.
func (c *Code) Filename() string {
	return c.filename
}

// LocationAt returns the source location for the instruction at the given
// index.
func (c *Code) LocationAt(ip int) SourceLocation {
	if ip < 0 || ip >= len(c.locations) {
		return SourceLocation{}
	}
	return c.locations[ip]
}

// LocationCount returns the number of recorded source locations.
func (c *Code) LocationCount() int {
	return len(c.locations)
}

// ExceptionHandlerCount returns the number of exception handlers.
func (c *Code) ExceptionHandlerCount() int {
	return len(c.handlers)
}

// ExceptionHandlerAt returns the exception handler at the given index.
func (c *Code) ExceptionHandlerAt(index int) ExceptionHandler {
	return c.handlers[index]
}

// Flatten returns this code and all descendants, parents first.
func (c *Code) Flatten() []*Code {
	codes := []*Code{c}
	for _, child := range c.children {
		codes = append(codes, child.Flatten()...)
	}
	return codes
}

// Root returns the outermost code block.
func (c *Code) Root() *Code {
	root := c
	for root.parent != nil {
		root = root.parent
	}
	return root
}

// GetSourceLine returns the source line at the given 1-based line number.
// Function bodies share the source of the program they belong to.
func (c *Code) GetSourceLine(lineNum int) string {
	if lineNum < 1 {
		return ""
	}
	source := c.Root().source
	if source == "" {
		return ""
	}
	lines := strings.Split(source, "\n")
	if lineNum > len(lines) {
		return ""
	}
	return lines[lineNum-1]
}

// Stats returns statistics about this code block and its descendants.
func (c *Code) Stats() Stats {
	var stats Stats
	for _, code := range c.Flatten() {
		stats.InstructionCount += code.InstructionCount()
		stats.ConstantCount += code.ConstantCount()
		for i := 0; i < code.ConstantCount(); i++ {
			if _, ok := code.ConstantAt(i).(*Function); ok {
				stats.FunctionCount++
			}
		}
	}
	stats.SourceBytes = len(c.Root().source)
	return stats
}

// Stats contains statistics about compiled bytecode.
type Stats struct {
	InstructionCount int
	ConstantCount    int
	FunctionCount    int
	SourceBytes      int
}

func copySlice[T any](src []T) []T {
	if src == nil {
		return nil
	}
	dst := make([]T, len(src))
	copy(dst, src)
	return dst
}
