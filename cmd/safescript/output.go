package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/hokaccha/go-prettyjson"
	"github.com/mattn/go-isatty"
	"github.com/safescript/safescript"
	"github.com/safescript/safescript/errz"
	"github.com/safescript/safescript/object"
)

var outputFormats = []string{"json", "text"}

func isTerminalIO() bool {
	stdin := os.Stdin.Fd()
	stdout := os.Stdout.Fd()
	inTerm := isatty.IsTerminal(stdin) || isatty.IsCygwinTerminal(stdin)
	outTerm := isatty.IsTerminal(stdout) || isatty.IsCygwinTerminal(stdout)
	return inTerm && outTerm
}

// getOutput renders a script result. Without a format it prints nothing
// for nil, JSON when the value converts to JSON and the value's literal
// form otherwise.
func getOutput(result safescript.Value, format string, colorize bool) (string, error) {
	if result == nil {
		result = object.Nil
	}
	switch strings.ToLower(format) {
	case "":
		if result == object.Nil {
			return "", nil
		}
		if _, ok := result.(*object.String); ok {
			return result.Inspect(), nil
		}
		output, err := getOutputJSON(result, colorize)
		if err != nil {
			return result.Inspect(), nil
		}
		return string(output), nil
	case "json":
		output, err := getOutputJSON(result, colorize)
		if err != nil {
			return "", err
		}
		return string(output), nil
	case "text":
		return object.ToString(result), nil
	default:
		return "", fmt.Errorf("unknown output format: %s", format)
	}
}

func getOutputJSON(result safescript.Value, colorize bool) ([]byte, error) {
	if _, ok := result.(*object.Function); ok {
		return nil, fmt.Errorf("cannot convert %s to json", result.Type())
	}
	if _, ok := result.(*object.Builtin); ok {
		return nil, fmt.Errorf("cannot convert %s to json", result.Type())
	}
	value := safescript.ToGo(result)
	if colorize {
		return prettyjson.Marshal(value)
	}
	return json.MarshalIndent(value, "", "  ")
}

// formatError renders script errors with their source context and other
// errors as a single line.
func formatError(err error, useColor bool) string {
	var merr *multierror.Error
	if errors.As(err, &merr) {
		return strings.TrimRight(merr.Error(), "\n")
	}
	if e, ok := errz.As(err); ok && e.Kind != errz.KindUnknown {
		return strings.TrimRight(errz.NewFormatter(useColor).Format(e), "\n")
	}
	if useColor {
		return red(err.Error())
	}
	return err.Error()
}
