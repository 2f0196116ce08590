// Package transform rewrites and validates SafeScript syntax trees.
//
// Transformers take ownership of the program they are given and return the
// (possibly new) program. Validators inspect a program without modifying it.
// Print renders any tree as canonical source text, which is what the
// transformer backend emits.
package transform

import "github.com/safescript/safescript/ast"

// Transformer modifies an AST before it is executed or printed.
type Transformer interface {
	// Transform processes the AST and returns the result. The returned AST
	// may be the same instance modified in place or a new tree.
	Transform(program *ast.Program) (*ast.Program, error)
}

// TransformerFunc is an adapter to use a function as a Transformer.
type TransformerFunc func(*ast.Program) (*ast.Program, error)

// Transform implements the Transformer interface.
func (f TransformerFunc) Transform(p *ast.Program) (*ast.Program, error) {
	return f(p)
}

// Chain returns a Transformer that applies the given transformers in order.
// The first error stops the chain.
func Chain(transformers ...Transformer) Transformer {
	return TransformerFunc(func(p *ast.Program) (*ast.Program, error) {
		var err error
		for _, t := range transformers {
			if p, err = t.Transform(p); err != nil {
				return nil, err
			}
		}
		return p, nil
	})
}

// Identity returns the program unchanged.
var Identity Transformer = TransformerFunc(func(p *ast.Program) (*ast.Program, error) {
	return p, nil
})
