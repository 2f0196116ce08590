package transform

import (
	"fmt"
	"strings"

	"github.com/safescript/safescript/ast"
	"github.com/safescript/safescript/errz"
	"github.com/safescript/safescript/internal/token"
)

// ValidationError represents a syntax restriction violation.
type ValidationError struct {
	Message  string         // description of the violation
	Node     ast.Node       // the offending node
	Position token.Position // source location
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	pos := e.Position
	if pos.File != "" {
		return fmt.Sprintf("%s at %s:%d:%d", e.Message, pos.File, pos.LineNumber(), pos.ColumnNumber())
	}
	return fmt.Sprintf("%s at line %d, column %d", e.Message, pos.LineNumber(), pos.ColumnNumber())
}

// ValidationErrors wraps multiple validation errors.
type ValidationErrors struct {
	Errors []ValidationError
}

// Error implements the error interface.
func (e *ValidationErrors) Error() string {
	switch len(e.Errors) {
	case 0:
		return "no validation errors"
	case 1:
		return e.Errors[0].Error()
	default:
		var b strings.Builder
		fmt.Fprintf(&b, "%d validation errors:\n", len(e.Errors))
		for _, err := range e.Errors {
			fmt.Fprintf(&b, "  - %s\n", err.Error())
		}
		return b.String()
	}
}

// Unwrap returns the first error for errors.Is/As compatibility.
func (e *ValidationErrors) Unwrap() error {
	if len(e.Errors) > 0 {
		return &e.Errors[0]
	}
	return nil
}

// Validator inspects an AST and returns validation errors. Validators do
// not modify the AST.
type Validator interface {
	Validate(program *ast.Program) []ValidationError
}

// ValidatorFunc is an adapter to use a function as a Validator.
type ValidatorFunc func(*ast.Program) []ValidationError

// Validate implements the Validator interface.
func (f ValidatorFunc) Validate(p *ast.Program) []ValidationError {
	return f(p)
}

// Validate runs the validators in order and stops at the first one that
// reports violations. The result is a Parse error located at the first
// violation, whose cause is the *ValidationErrors.
func Validate(program *ast.Program, validators ...Validator) error {
	for _, v := range validators {
		errs := v.Validate(program)
		if len(errs) == 0 {
			continue
		}
		verrs := &ValidationErrors{Errors: errs}
		err := errz.Wrap(errz.Parse, verrs, "")
		err.Message = errs[0].Message
		if len(errs) > 1 {
			err.Message += fmt.Sprintf(" (and %d more)", len(errs)-1)
		}
		pos := errs[0].Position
		if pos.IsValid() {
			err.WithLocation(errz.SourceLocation{
				Filename: pos.File,
				Line:     pos.LineNumber(),
				Column:   pos.ColumnNumber(),
			})
		}
		return err
	}
	return nil
}

// SyntaxConfig controls which language features are disallowed. The zero
// value allows the full language.
type SyntaxConfig struct {
	// Statements
	DisallowVariableDecl bool // let, const
	DisallowAssignment   bool // x = value, x += value

	// Functions
	DisallowReturn   bool // return statements
	DisallowFuncDef  bool // function declarations and literals
	DisallowFuncCall bool // calling functions

	// Error handling
	DisallowTryCatch bool // try/catch, throw

	// Control flow
	DisallowIf    bool // if/else
	DisallowLoops bool // while, for-of
}

// Presets for common use cases.
var (
	// ExpressionOnly restricts syntax to expressions: literals, operators,
	// variable access, indexing, attribute access and function calls.
	// Side effects are still possible through native functions.
	ExpressionOnly = SyntaxConfig{
		DisallowVariableDecl: true,
		DisallowAssignment:   true,
		DisallowReturn:       true,
		DisallowFuncDef:      true,
		DisallowTryCatch:     true,
		DisallowIf:           true,
		DisallowLoops:        true,
	}

	// BasicScripting allows control flow and error handling but no
	// function definitions.
	BasicScripting = SyntaxConfig{
		DisallowReturn:  true,
		DisallowFuncDef: true,
	}

	// FullLanguage allows all features.
	FullLanguage = SyntaxConfig{}
)

// SyntaxValidator validates an AST against a SyntaxConfig.
type SyntaxValidator struct {
	config SyntaxConfig
}

// NewSyntaxValidator creates a validator for the given configuration.
func NewSyntaxValidator(config SyntaxConfig) *SyntaxValidator {
	return &SyntaxValidator{config: config}
}

// Validate checks the AST against the syntax configuration.
func (v *SyntaxValidator) Validate(program *ast.Program) []ValidationError {
	var errors []ValidationError
	for node := range ast.Preorder(program) {
		if msg := v.check(node); msg != "" {
			errors = append(errors, ValidationError{
				Message:  msg,
				Node:     node,
				Position: node.Pos(),
			})
		}
	}
	return errors
}

func (v *SyntaxValidator) check(node ast.Node) string {
	c := v.config
	switch node.(type) {
	case *ast.Var:
		if c.DisallowVariableDecl {
			return "variable declarations are not allowed"
		}
	case *ast.Assign:
		if c.DisallowAssignment {
			return "assignment is not allowed"
		}
	case *ast.Return:
		if c.DisallowReturn {
			return "return statements are not allowed"
		}
	case *ast.Func:
		if c.DisallowFuncDef {
			return "function definitions are not allowed"
		}
	case *ast.Call:
		if c.DisallowFuncCall {
			return "function calls are not allowed"
		}
	case *ast.Try, *ast.Throw:
		if c.DisallowTryCatch {
			return "try/catch/throw is not allowed"
		}
	case *ast.If:
		if c.DisallowIf {
			return "if statements are not allowed"
		}
	case *ast.While, *ast.ForOf:
		if c.DisallowLoops {
			return "loops are not allowed"
		}
	}
	return ""
}
