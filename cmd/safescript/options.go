package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"github.com/rs/zerolog"
	"github.com/safescript/safescript"
	"github.com/safescript/safescript/backend"
	"github.com/safescript/safescript/errz"
	"github.com/safescript/safescript/vm"
	"github.com/spf13/cobra"
)

const defaultConfigName = ".safescript.yaml"

func backendNames() []string {
	var names []string
	for _, kind := range backend.Kinds() {
		names = append(names, kind.String())
	}
	return names
}

// configPath returns the config file to load, or "" when there is none.
// An explicit --config must exist; the default file is optional.
func (a *app) configPath() (string, bool, error) {
	if path := a.v.GetString("config"); path != "" {
		expanded, err := homedir.Expand(path)
		return expanded, true, err
	}
	home, err := homedir.Dir()
	if err != nil {
		return "", false, nil
	}
	return filepath.Join(home, defaultConfigName), false, nil
}

func (a *app) loadConfig() (safescript.Config, error) {
	path, explicit, err := a.configPath()
	if err != nil || path == "" {
		return safescript.Config{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return safescript.Config{}, nil
		}
		return safescript.Config{}, err
	}
	defer f.Close()
	cfg, err := safescript.LoadConfig(f)
	if err != nil {
		return safescript.Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (a *app) logger(w io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(a.v.GetString("log-level"))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q", a.v.GetString("log-level"))
	}
	console := zerolog.ConsoleWriter{Out: w, NoColor: a.v.GetBool("no-color")}
	return zerolog.New(console).Level(level).With().Timestamp().Logger(), nil
}

// builder assembles a runtime builder from the config file, flags and
// environment, in increasing order of precedence.
func (a *app) builder(cmd *cobra.Command) (*safescript.Builder, error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, err
	}
	b := safescript.New().WithConfig(cfg)
	if a.v.GetBool("no-corelib") {
		b = safescript.NewWithoutCorelib().WithConfig(cfg)
	}
	if a.v.IsSet("backend") {
		kind, err := backend.ParseKind(a.v.GetString("backend"))
		if err != nil {
			return nil, err
		}
		b.WithBackend(kind)
	}
	if depth := a.v.GetInt("max-call-depth"); depth > 0 {
		b.WithMaxCallDepth(depth)
	}
	logger, err := a.logger(cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	return b.WithLogger(logger).WithStdout(cmd.OutOrStdout()), nil
}

// runtime builds and initializes a runtime. A non-nil observer forces the
// VM backend, the only one that reports execution events.
func (a *app) runtime(cmd *cobra.Command, observer vm.Observer) (*safescript.Runtime, error) {
	b, err := a.builder(cmd)
	if err != nil {
		return nil, err
	}
	if observer != nil {
		b.WithBackend(backend.VM).WithObserver(observer)
	}
	rt := b.Build()
	if err := rt.Init(); err != nil {
		return nil, err
	}
	return rt, nil
}

// source returns the code to process and its filename. There are three
// possible sources: --code, --stdin or a path given as the first argument.
func (a *app) source(cmd *cobra.Command, args []string) (string, string, error) {
	codeSet := flagChanged(cmd, "code")
	stdinSet := flagChanged(cmd, "stdin") && a.v.GetBool("stdin")
	pathSet := len(args) > 0
	n := 0
	for _, set := range []bool{codeSet, stdinSet, pathSet} {
		if set {
			n++
		}
	}
	switch {
	case n > 1:
		return "", "", errors.New("multiple input sources specified")
	case stdinSet:
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", "", err
		}
		return string(data), "<stdin>", nil
	case pathSet:
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", "", errz.Wrap(errz.Io, err, "reading %s", args[0])
		}
		return string(data), args[0], nil
	case codeSet:
		code, _ := cmd.Flags().GetString("code")
		return code, "<code>", nil
	}
	return "", "", errors.New("no input provided (pass a file, --code or --stdin)")
}

func flagChanged(cmd *cobra.Command, name string) bool {
	f := cmd.Flags().Lookup(name)
	return f != nil && f.Changed
}
