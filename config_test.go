package safescript

import (
	"context"
	"strings"
	"testing"

	"github.com/safescript/safescript/backend"
	"github.com/safescript/safescript/errz"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(strings.NewReader(`
backend: vm
corelib: false
max_call_depth: 64
max_parse_depth: 100
context_check_interval: 10
filename: main.ss
`))
	require.NoError(t, err)
	require.Equal(t, "vm", cfg.Backend)
	require.NotNil(t, cfg.Corelib)
	require.False(t, *cfg.Corelib)
	require.Equal(t, 64, cfg.MaxCallDepth)
	require.Equal(t, 100, cfg.MaxParseDepth)
	require.Equal(t, 10, cfg.ContextCheckInterval)
	require.Equal(t, "main.ss", cfg.Filename)

	empty, err := LoadConfig(strings.NewReader(""))
	require.NoError(t, err)
	require.Equal(t, Config{}, empty)
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"unknown field", "backends: vm", "field backends not found"},
		{"bad backend", "backend: jit", `unknown backend "jit"`},
		{"negative depth", "max_call_depth: -1", "max_call_depth must not be negative"},
		{"not yaml", "backend: [", "parsing config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(strings.NewReader(tt.input))
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestWithConfig(t *testing.T) {
	cfg, err := LoadConfig(strings.NewReader("backend: vm\ncorelib: false\nfilename: main.ss"))
	require.NoError(t, err)

	rt := initialized(t, New().WithConfig(cfg))
	require.Equal(t, backend.VM, rt.Backend())
	require.Empty(t, rt.Names())

	_, err = rt.RunString(context.Background(), "\nlog(1)")
	e, ok := errz.As(err)
	require.True(t, ok)
	require.Equal(t, errz.UndefinedIdentifier, e.Kind)
	require.Equal(t, "main.ss", e.Location.Filename)

	// Zero fields keep earlier settings.
	rt = initialized(t, New().WithBackend(backend.VM).WithConfig(Config{MaxCallDepth: 5}))
	require.Equal(t, backend.VM, rt.Backend())
	_, err = rt.RunString(context.Background(), "function f() { return f() }\nf()")
	require.Equal(t, errz.StackOverflow, errz.KindOf(err))
}

func TestWithInvalidConfig(t *testing.T) {
	rt := New().WithConfig(Config{Backend: "jit"}).Build()
	require.Error(t, rt.Init())
	require.Equal(t, Built, rt.State())
}

func TestMaxParseDepth(t *testing.T) {
	source := strings.Repeat("(", 40) + "1" + strings.Repeat(")", 40)
	rt := initialized(t, New().WithConfig(Config{MaxParseDepth: 10}))
	_, err := rt.RunString(context.Background(), source)
	require.Equal(t, errz.Parse, errz.KindOf(err))

	result, err := initialized(t, New()).RunString(context.Background(), source)
	require.NoError(t, err)
	require.Equal(t, "1", result.Inspect())
}
