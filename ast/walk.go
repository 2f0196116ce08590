package ast

import "iter"

// Visitor defines the interface for AST traversal. If Visit returns nil,
// children of the node are not visited. Otherwise, the returned Visitor
// is used to visit children.
type Visitor interface {
	Visit(node Node) (w Visitor)
}

// Children returns the direct children of node in source order.
func Children(node Node) []Node {
	var out []Node
	add := func(n Node) {
		switch v := n.(type) {
		case nil:
			return
		case *Ident:
			if v == nil {
				return
			}
		case *Block:
			if v == nil {
				return
			}
		}
		out = append(out, n)
	}
	switch n := node.(type) {
	case *Program:
		for _, s := range n.Stmts {
			add(s)
		}
	case *Block:
		for _, s := range n.Stmts {
			add(s)
		}
	case *Var:
		add(n.Name)
		if n.Value != nil {
			add(n.Value)
		}
	case *ExprStmt:
		add(n.X)
	case *Return:
		if n.Value != nil {
			add(n.Value)
		}
	case *If:
		add(n.Cond)
		add(n.Consequence)
		if n.Alternative != nil {
			add(n.Alternative)
		}
	case *While:
		add(n.Cond)
		add(n.Body)
	case *ForOf:
		add(n.Name)
		add(n.Iter)
		add(n.Body)
	case *Throw:
		add(n.Value)
	case *Try:
		add(n.Body)
		add(n.CatchIdent)
		add(n.CatchBlock)
	case *Func:
		add(n.Name)
		for _, p := range n.Params {
			add(p)
		}
		add(n.Body)
	case *List:
		for _, item := range n.Items {
			add(item)
		}
	case *Map:
		for _, item := range n.Items {
			add(item.Key)
			add(item.Value)
		}
	case *Prefix:
		add(n.X)
	case *Infix:
		add(n.X)
		add(n.Y)
	case *Ternary:
		add(n.Cond)
		add(n.IfTrue)
		add(n.IfFalse)
	case *Assign:
		add(n.Target)
		add(n.Value)
	case *Call:
		add(n.Fun)
		for _, a := range n.Args {
			add(a)
		}
	case *GetAttr:
		add(n.X)
		add(n.Attr)
	case *Index:
		add(n.X)
		add(n.Index)
	}
	return out
}

// Walk traverses an AST in depth-first order. It starts by calling
// v.Visit(node); if the returned visitor w is not nil, Walk is invoked
// recursively with visitor w for each of the non-nil children of node.
func Walk(v Visitor, node Node) {
	if v = v.Visit(node); v == nil {
		return
	}
	for _, child := range Children(node) {
		Walk(v, child)
	}
}

// Inspect traverses an AST in depth-first order. It calls f(node) for each
// node; if f returns true, Inspect invokes f recursively for each of the
// non-nil children of node.
func Inspect(node Node, f func(Node) bool) {
	Walk(inspector(f), node)
}

type inspector func(Node) bool

func (f inspector) Visit(node Node) Visitor {
	if f(node) {
		return f
	}
	return nil
}

// Preorder returns an iterator over all the nodes of the AST rooted at node
// in depth-first preorder.
func Preorder(root Node) iter.Seq[Node] {
	return func(yield func(Node) bool) {
		var visit func(Node) bool
		visit = func(n Node) bool {
			if !yield(n) {
				return false
			}
			for _, child := range Children(n) {
				if !visit(child) {
					return false
				}
			}
			return true
		}
		visit(root)
	}
}
