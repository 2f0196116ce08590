package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/safescript/safescript"
	"github.com/spf13/cobra"
)

func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("code", "c", "", "code to process")
	cmd.Flags().Bool("stdin", false, "read code from stdin")
}

type tokenJSON struct {
	Type    string `json:"type"`
	Literal string `json:"literal,omitempty"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
}

func (a *app) newTokensCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tokens [file]",
		Short: "Print the tokens of a program",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, _, err := a.source(cmd, args)
			if err != nil {
				return err
			}
			tokens, err := safescript.Tokenize(code)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if a.v.GetString("output") == "json" {
				items := make([]tokenJSON, 0, len(tokens))
				for _, tok := range tokens {
					items = append(items, tokenJSON{
						Type:    string(tok.Type),
						Literal: tok.Literal,
						Line:    tok.StartPosition.LineNumber(),
						Column:  tok.StartPosition.ColumnNumber(),
					})
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(items)
			}
			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			for _, tok := range tokens {
				fmt.Fprintf(w, "%d:%d\t%s\t%q\n",
					tok.StartPosition.LineNumber(), tok.StartPosition.ColumnNumber(),
					tok.Type, tok.Literal)
			}
			return w.Flush()
		},
	}
	addSourceFlags(cmd)
	return cmd
}
