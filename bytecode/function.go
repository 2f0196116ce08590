package bytecode

import (
	"strings"
)

// Function is a compiled function template. It holds everything needed to
// create a closure at run time except the captured scope.
type Function struct {
	name       string
	parameters []string
	code       *Code
}

// FunctionParams contains parameters for creating a new Function.
type FunctionParams struct {
	Name       string
	Parameters []string
	Code       *Code
}

// NewFunction creates a new immutable Function from the given parameters.
func NewFunction(params FunctionParams) *Function {
	return &Function{
		name:       params.Name,
		parameters: copySlice(params.Parameters),
		code:       params.Code,
	}
}

// Name returns the function name, or an empty string for anonymous
// functions.
func (f *Function) Name() string {
	return f.name
}

// Params returns a copy of the parameter names.
func (f *Function) Params() []string {
	return copySlice(f.parameters)
}

// Code returns the compiled body.
func (f *Function) Code() *Code {
	return f.code
}

// ParameterCount returns the number of parameters.
func (f *Function) ParameterCount() int {
	return len(f.parameters)
}

// Parameter returns the name of the parameter at the given index.
func (f *Function) Parameter(index int) string {
	return f.parameters[index]
}

func (f *Function) String() string {
	var out strings.Builder
	out.WriteString("function")
	if f.name != "" {
		out.WriteString(" " + f.name)
	}
	out.WriteString("(")
	out.WriteString(strings.Join(f.parameters, ", "))
	out.WriteString(")")
	return out.String()
}
