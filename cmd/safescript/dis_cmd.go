package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/safescript/safescript/bytecode"
	"github.com/safescript/safescript/compiler"
	"github.com/safescript/safescript/dis"
	"github.com/safescript/safescript/errz"
	"github.com/safescript/safescript/parser"
	"github.com/spf13/cobra"
)

// bytecodeExt marks files written by the compile command.
const bytecodeExt = ".ssc"

func (a *app) newDisCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dis [file]",
		Short: "Disassemble a program",
		Long:  "Compile a program and print its bytecode. Files ending in " + bytecodeExt + " are read as compiled bytecode.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := a.loadCode(cmd, args)
			if err != nil {
				return err
			}
			if name, _ := cmd.Flags().GetString("func"); name != "" {
				for _, c := range code.Flatten() {
					if c.Name() == name {
						instructions, err := dis.Disassemble(c)
						if err != nil {
							return err
						}
						dis.Print(instructions, cmd.OutOrStdout())
						return nil
					}
				}
				return fmt.Errorf("function %q not found", name)
			}
			return dis.PrintCode(code, cmd.OutOrStdout())
		},
	}
	addSourceFlags(cmd)
	cmd.Flags().String("func", "", "disassemble only the named function")
	return cmd
}

func (a *app) newCompileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compile [file]",
		Short: "Compile a program to bytecode",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := a.loadCode(cmd, args)
			if err != nil {
				return err
			}
			data, err := bytecode.Marshal(code)
			if err != nil {
				return err
			}
			out, _ := cmd.Flags().GetString("out")
			if out == "" && len(args) > 0 {
				out = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + bytecodeExt
			}
			if out == "" || out == "-" {
				_, err = cmd.OutOrStdout().Write(append(data, '\n'))
				return err
			}
			return os.WriteFile(out, data, 0o644)
		},
	}
	addSourceFlags(cmd)
	cmd.Flags().StringP("out", "O", "", "output file (\"-\" for stdout)")
	return cmd
}

// loadCode compiles the input, or decodes it when it names a bytecode file.
func (a *app) loadCode(cmd *cobra.Command, args []string) (*bytecode.Code, error) {
	if len(args) > 0 && filepath.Ext(args[0]) == bytecodeExt {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return nil, errz.Wrap(errz.Io, err, "reading %s", args[0])
		}
		return bytecode.Unmarshal(data)
	}
	source, filename, err := a.source(cmd, args)
	if err != nil {
		return nil, err
	}
	program, err := parser.Parse(cmd.Context(), source, parser.WithFilename(filename))
	if err != nil {
		return nil, err
	}
	return compiler.Compile(program, &compiler.Config{Filename: filename, Source: source})
}
