package main

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/safescript/safescript/ast"
	"github.com/safescript/safescript/object"
	"github.com/safescript/safescript/parser"
	"github.com/spf13/cobra"
)

// astNode is the JSON form of a syntax tree node.
type astNode struct {
	Type     string     `json:"type"`
	Value    any        `json:"value,omitempty"`
	Line     int        `json:"line,omitempty"`
	Children []*astNode `json:"children,omitempty"`
}

func (a *app) newASTCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ast [file]",
		Short: "Print the syntax tree of a program",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, filename, err := a.source(cmd, args)
			if err != nil {
				return err
			}
			program, err := parser.Parse(cmd.Context(), code, parser.WithFilename(filename))
			if err != nil {
				return err
			}
			if a.v.GetString("output") == "json" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(nodeToJSON(program))
			}
			printAST(cmd.OutOrStdout(), program, 0)
			return nil
		},
	}
	addSourceFlags(cmd)
	return cmd
}

func nodeType(node ast.Node) string {
	return reflect.TypeOf(node).Elem().Name()
}

// nodeValue returns the detail shown next to a node's type, if any.
func nodeValue(node ast.Node) any {
	switch n := node.(type) {
	case *ast.Ident:
		return n.Name
	case *ast.Number:
		return n.Value
	case *ast.String:
		return n.Value
	case *ast.Bool:
		return n.Value
	case *ast.Prefix:
		return n.Op
	case *ast.Infix:
		return n.Op
	case *ast.Assign:
		return n.Op
	case *ast.Var:
		return n.Keyword()
	case *ast.Func:
		if n.Name != nil {
			return n.Name.Name
		}
	}
	return nil
}

func nodeToJSON(node ast.Node) *astNode {
	result := &astNode{
		Type:  nodeType(node),
		Value: nodeValue(node),
		Line:  node.Pos().LineNumber(),
	}
	for _, child := range ast.Children(node) {
		result.Children = append(result.Children, nodeToJSON(child))
	}
	return result
}

func printAST(w io.Writer, node ast.Node, depth int) {
	line := strings.Repeat("  ", depth) + nodeType(node)
	switch v := nodeValue(node).(type) {
	case nil:
	case string:
		if _, ok := node.(*ast.String); ok {
			line += " " + object.NewString(v).Inspect()
		} else {
			line += " " + v
		}
	case float64:
		line += " " + object.FormatNumber(v)
	default:
		line += fmt.Sprintf(" %v", v)
	}
	fmt.Fprintln(w, line)
	for _, child := range ast.Children(node) {
		printAST(w, child, depth+1)
	}
}
