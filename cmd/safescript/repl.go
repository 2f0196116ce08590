package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/peterh/liner"
	"github.com/safescript/safescript"
	"github.com/safescript/safescript/internal/token"
	"github.com/spf13/cobra"
)

const (
	historyFile = ".safescript_history"
	promptMain  = ">>> "
	promptCont  = "... "
)

func (a *app) newReplCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.repl(cmd)
		},
	}
}

func historyPath() string {
	home, err := homedir.Dir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, historyFile)
}

func (a *app) repl(cmd *cobra.Command) error {
	rt, err := a.runtime(cmd, nil)
	if err != nil {
		return err
	}
	session, err := rt.NewSession()
	if err != nil {
		return err
	}

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	path := historyPath()
	if path != "" {
		if f, err := os.Open(path); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			if f, err := os.Create(path); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			}
		}()
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "SafeScript %s (%s backend). Type :help for commands.\n", version, rt.Backend())
	for {
		code, ok := readInput(ln)
		if !ok {
			fmt.Fprintln(out)
			return nil
		}
		trimmed := strings.TrimSpace(code)
		if trimmed == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
		if strings.HasPrefix(trimmed, ":") {
			if quit := a.replCommand(out, session, trimmed); quit {
				return nil
			}
			continue
		}
		result, err := session.Eval(cmd.Context(), code)
		if err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), formatError(err, !a.v.GetBool("no-color")))
			continue
		}
		output, err := getOutput(result, a.v.GetString("output"), false)
		if err != nil {
			output = result.Inspect()
		}
		if output != "" {
			fmt.Fprintln(out, output)
		}
	}
}

func (a *app) replCommand(out io.Writer, session *safescript.Session, command string) bool {
	switch strings.ToLower(command) {
	case ":quit", ":exit", ":q":
		return true
	case ":names":
		fmt.Fprintln(out, strings.Join(session.Names(), " "))
	case ":help":
		fmt.Fprintln(out, ":names  list names defined in this session")
		fmt.Fprintln(out, ":quit   leave the REPL")
	default:
		fmt.Fprintf(out, "unknown command %s. Type :help for commands.\n", command)
	}
	return false
}

// readInput reads lines until the brackets of the input balance.
func readInput(ln *liner.State) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			// Ctrl-C discards the pending input.
			if errors.Is(err, liner.ErrPromptAborted) {
				return "", true
			}
			return "", false
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		if !incomplete(b.String()) {
			return b.String(), true
		}
	}
}

// incomplete reports whether source has unclosed brackets, in which case
// the REPL keeps reading.
func incomplete(source string) bool {
	tokens, err := safescript.Tokenize(source)
	if err != nil {
		return false
	}
	depth := 0
	for _, tok := range tokens {
		switch tok.Type {
		case token.LPAREN, token.LBRACKET, token.LBRACE:
			depth++
		case token.RPAREN, token.RBRACKET, token.RBRACE:
			depth--
		}
	}
	return depth > 0
}
