package main

import (
	"fmt"
	"os"
	"strings"

	wcolor "github.com/deepnoodle-ai/wonton/color"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

var red = color.New(color.FgRed).SprintFunc()

// app holds the state shared by all commands of one invocation.
type app struct {
	v *viper.Viper
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:           "safescript [file]",
		Short:         "Run SafeScript programs",
		Long:          "Run a SafeScript file, evaluate code given with --code, or start a REPL.",
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initConfig(cmd)
		},
		RunE: a.runHandler,
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "config file (default is $HOME/.safescript.yaml)")
	pf.StringP("backend", "b", "interpreter", "execution backend: interpreter, vm or transformer")
	pf.Bool("no-corelib", false, "do not install the core library")
	pf.StringP("output", "o", "", "output format: json or text")
	pf.Bool("no-color", false, "disable colored output")
	pf.String("log-level", "warn", "log level: debug, info, warn, error or disabled")
	pf.Int("max-call-depth", 0, "maximum nested call depth (0 uses the backend default)")
	_ = root.RegisterFlagCompletionFunc("output", cobra.FixedCompletions(outputFormats, cobra.ShellCompDirectiveNoFileComp))
	_ = root.RegisterFlagCompletionFunc("backend", cobra.FixedCompletions(backendNames(), cobra.ShellCompDirectiveNoFileComp))

	f := root.Flags()
	f.StringP("code", "c", "", "code to evaluate")
	f.Bool("stdin", false, "read code from stdin")
	f.Bool("no-repl", false, "never start the REPL")
	f.Bool("trace", false, "print each executed instruction (uses the vm backend)")
	f.Bool("timing", false, "print the execution time")

	root.AddCommand(
		a.newTokensCmd(),
		a.newASTCmd(),
		a.newFmtCmd(),
		a.newDisCmd(),
		a.newCompileCmd(),
		a.newReplCmd(),
	)
	return root
}

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		noColor, _ := root.PersistentFlags().GetBool("no-color")
		fmt.Fprintln(os.Stderr, formatError(err, !noColor && !color.NoColor))
		os.Exit(1)
	}
}

// initConfig binds flags and SAFESCRIPT_* environment variables and loads
// the config file.
func (a *app) initConfig(cmd *cobra.Command) error {
	v := a.v
	v.SetEnvPrefix("SAFESCRIPT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	if err := v.BindPFlags(cmd.InheritedFlags()); err != nil {
		return err
	}
	if v.GetBool("no-color") {
		color.NoColor = true
		wcolor.Enabled = false
	}
	return nil
}
