package main

import (
	"fmt"
	"io"
	"time"

	"github.com/safescript/safescript"
	"github.com/safescript/safescript/vm"
	"github.com/spf13/cobra"
)

// tracer prints execution events as they happen.
type tracer struct {
	w io.Writer
}

func (t *tracer) OnStep(e vm.StepEvent) bool {
	fmt.Fprintf(t.w, "%s%04d %-20s %s\n", indent(e.FrameDepth), e.IP, e.OpcodeName, e.Location)
	return true
}

func (t *tracer) OnCall(e vm.CallEvent) bool {
	name := e.FunctionName
	if name == "" {
		name = "<anonymous>"
	}
	kind := "call"
	if e.Native {
		kind = "native"
	}
	fmt.Fprintf(t.w, "%s-> %s %s/%d\n", indent(e.FrameDepth), kind, name, e.ArgCount)
	return true
}

func (t *tracer) OnReturn(e vm.ReturnEvent) bool {
	fmt.Fprintf(t.w, "%s<- return\n", indent(e.FrameDepth))
	return true
}

func indent(depth int) string {
	if depth <= 1 {
		return ""
	}
	return fmt.Sprintf("%*s", 2*(depth-1), "")
}

func (a *app) shouldRunRepl(cmd *cobra.Command, args []string) bool {
	if a.v.GetBool("no-repl") || a.v.GetBool("stdin") {
		return false
	}
	if flagChanged(cmd, "code") || len(args) > 0 {
		return false
	}
	return isTerminalIO()
}

func (a *app) runHandler(cmd *cobra.Command, args []string) error {
	if a.shouldRunRepl(cmd, args) {
		return a.repl(cmd)
	}

	var observer vm.Observer
	if a.v.GetBool("trace") {
		observer = &tracer{w: cmd.ErrOrStderr()}
	}
	rt, err := a.runtime(cmd, observer)
	if err != nil {
		return err
	}

	code, filename, err := a.source(cmd, args)
	if err != nil {
		return err
	}
	start := time.Now()
	var result safescript.Value
	if len(args) > 0 && filename == args[0] {
		result, err = rt.RunFromFile(cmd.Context(), filename)
	} else {
		result, err = rt.RunString(cmd.Context(), code)
	}
	if err != nil {
		return err
	}
	if a.v.GetBool("timing") {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s\n", time.Since(start))
	}

	output, err := getOutput(result, a.v.GetString("output"), !a.v.GetBool("no-color") && isTerminalIO())
	if err != nil {
		return err
	}
	if output != "" {
		fmt.Fprintln(cmd.OutOrStdout(), output)
	}
	return nil
}
