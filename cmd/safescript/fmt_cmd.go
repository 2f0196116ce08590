package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/safescript/safescript/backend"
	"github.com/safescript/safescript/object"
	"github.com/safescript/safescript/transform"
	"github.com/spf13/cobra"
)

func (a *app) newFmtCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fmt [file]",
		Short: "Print a program in canonical form",
		Long: `Print a program in canonical form using the transformer backend.

With --lower, arithmetic operators are rewritten into calls to the ops
module. With --rename, identifiers are renamed before printing.`,
		Args: cobra.MaximumNArgs(1),
		RunE: a.fmtHandler,
	}
	addSourceFlags(cmd)
	cmd.Flags().Bool("lower", false, "rewrite operators into ops module calls")
	cmd.Flags().StringToString("rename", nil, "rename identifiers (old=new)")
	cmd.Flags().BoolP("write", "w", false, "write the result back to the file")
	cmd.Flags().Bool("check", false, "exit with an error if the input is not formatted")
	return cmd
}

func (a *app) fmtHandler(cmd *cobra.Command, args []string) error {
	code, filename, err := a.source(cmd, args)
	if err != nil {
		return err
	}
	write, _ := cmd.Flags().GetBool("write")
	check, _ := cmd.Flags().GetBool("check")
	if write && len(args) == 0 {
		return fmt.Errorf("--write requires a file argument")
	}

	var transforms []transform.Transformer
	if renames, _ := cmd.Flags().GetStringToString("rename"); len(renames) > 0 {
		transforms = append(transforms, transform.NewRenamer(renames))
	}
	if lower, _ := cmd.Flags().GetBool("lower"); lower {
		transforms = append(transforms, transform.LowerOperators())
	}

	b, err := a.builder(cmd)
	if err != nil {
		return err
	}
	rt := b.WithBackend(backend.Transformer).
		WithTransforms(transforms...).
		WithFilename(filename).
		Build()
	if err := rt.Init(); err != nil {
		return err
	}
	result, err := rt.RunString(cmd.Context(), code)
	if err != nil {
		return err
	}
	formatted := result.(*object.String).Value() + "\n"

	switch {
	case check:
		if formatted != code && strings.TrimSpace(formatted) != strings.TrimSpace(code) {
			return fmt.Errorf("%s is not formatted", filename)
		}
		return nil
	case write:
		if formatted == code {
			return nil
		}
		info, err := os.Stat(args[0])
		if err != nil {
			return err
		}
		return os.WriteFile(args[0], []byte(formatted), info.Mode().Perm())
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), formatted)
	return err
}
