package transform

import "github.com/safescript/safescript/ast"

// Renamer is a Transformer that renames identifiers. Every binding and every
// reference of a mapped name is renamed, whatever scope it appears in.
// Attribute names and map keys are not identifiers and are left alone.
type Renamer struct {
	Names map[string]string
}

// NewRenamer returns a Renamer for the given old to new name mapping.
func NewRenamer(names map[string]string) *Renamer {
	return &Renamer{Names: names}
}

// Transform implements the Transformer interface.
func (r *Renamer) Transform(p *ast.Program) (*ast.Program, error) {
	attrs := map[*ast.Ident]bool{}
	for node := range ast.Preorder(p) {
		switch n := node.(type) {
		case *ast.GetAttr:
			// Visited before its attribute
			attrs[n.Attr] = true
		case *ast.Ident:
			if attrs[n] {
				continue
			}
			if name, ok := r.Names[n.Name]; ok {
				n.Name = name
			}
		}
	}
	return p, nil
}
