package backend

import (
	"fmt"
	"strings"
)

// Kind selects an execution strategy.
type Kind int

const (
	// Interpreter walks the syntax tree directly.
	Interpreter Kind = iota

	// VM compiles the syntax tree to bytecode and runs it on the virtual
	// machine.
	VM

	// Transformer rewrites the syntax tree and returns the resulting source
	// text instead of executing it.
	Transformer
)

var kindNames = map[Kind]string{
	Interpreter: "interpreter",
	VM:          "vm",
	Transformer: "transformer",
}

// Kinds returns every backend kind.
func Kinds() []Kind {
	return []Kind{Interpreter, VM, Transformer}
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind returns the kind with the given name. Matching ignores case and
// also accepts "compiler" for the VM.
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "interpreter", "interp":
		return Interpreter, nil
	case "vm", "compiler":
		return VM, nil
	case "transformer", "transform":
		return Transformer, nil
	}
	return 0, fmt.Errorf("unknown backend %q (expected interpreter, vm or transformer)", name)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if _, ok := kindNames[k]; !ok {
		return nil, fmt.Errorf("invalid backend kind %d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, so a Kind can be read
// from configuration files and flags.
func (k *Kind) UnmarshalText(text []byte) error {
	kind, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = kind
	return nil
}
