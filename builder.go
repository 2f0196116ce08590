package safescript

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/safescript/safescript/backend"
	"github.com/safescript/safescript/native"
	"github.com/safescript/safescript/transform"
	"github.com/safescript/safescript/vm"
)

// registration is a deferred native registration, replayed by Init.
type registration func(r *native.Registry) error

// Builder accumulates runtime configuration. Its methods return the builder
// so calls can be chained. Nothing is validated or registered until the
// runtime is initialized.
type Builder struct {
	corelib       bool
	registrations []registration
	kind          backend.Kind
	logger        zerolog.Logger
	stdout        io.Writer
	transforms    []transform.Transformer
	validators    []transform.Validator
	observer      vm.Observer

	maxCallDepth         int
	maxParseDepth        int
	contextCheckInterval int
	filename             string

	err error
}

// New returns a builder for a runtime with the core library installed.
// Registering a native function under a name that is already taken fails
// with DuplicateBinding.
func New() *Builder {
	return &Builder{
		corelib: true,
		kind:    backend.Interpreter,
		logger:  zerolog.Nop(),
		stdout:  os.Stdout,
	}
}

// NewWithoutCorelib returns a builder for a runtime with only the host's
// native functions. A later registration of a name replaces the earlier one.
func NewWithoutCorelib() *Builder {
	b := New()
	b.corelib = false
	return b
}

// AddNativeFunction registers a host function under name.
func (b *Builder) AddNativeFunction(name string, fn NativeFunc) *Builder {
	b.registrations = append(b.registrations, func(r *native.Registry) error {
		return r.Register(name, fn)
	})
	return b
}

// AddNativeBinding registers a host function with an explicit arity.
func (b *Builder) AddNativeBinding(binding native.Binding) *Builder {
	b.registrations = append(b.registrations, func(r *native.Registry) error {
		return r.RegisterBinding(binding)
	})
	return b
}

// AddGoFunction registers an ordinary Go function, converting arguments and
// results automatically. See native.Wrap for the supported signatures.
func (b *Builder) AddGoFunction(name string, fn any) *Builder {
	binding, err := native.Wrap(name, fn)
	if err != nil {
		b.setErr(err)
		return b
	}
	return b.AddNativeBinding(binding)
}

// AddNativeModule registers a group of host functions reachable from
// scripts as name.member.
func (b *Builder) AddNativeModule(name string, funcs map[string]NativeFunc) *Builder {
	bindings := make([]native.Binding, 0, len(funcs))
	for member, fn := range funcs {
		bindings = append(bindings, native.Binding{
			Name:  member,
			Arity: native.Variadic(0),
			Fn:    native.CallFunc(fn),
		})
	}
	b.registrations = append(b.registrations, func(r *native.Registry) error {
		return r.RegisterModule(name, bindings)
	})
	return b
}

// WithBackend selects the execution strategy. The default is the
// interpreter.
func (b *Builder) WithBackend(kind backend.Kind) *Builder {
	b.kind = kind
	return b
}

// WithLogger sets the logger for runtime events. The default discards
// everything.
func (b *Builder) WithLogger(logger zerolog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithStdout sets the writer used by the print and log functions.
func (b *Builder) WithStdout(w io.Writer) *Builder {
	b.stdout = w
	return b
}

// WithTransforms adds AST transformers applied after parsing. With the
// transformer backend they produce the result instead.
func (b *Builder) WithTransforms(transforms ...transform.Transformer) *Builder {
	b.transforms = append(b.transforms, transforms...)
	return b
}

// WithValidators adds validators run after the transformers. A program
// that fails validation is rejected with a Parse error before it executes.
func (b *Builder) WithValidators(validators ...transform.Validator) *Builder {
	b.validators = append(b.validators, validators...)
	return b
}

// WithSyntax restricts the language to the features allowed by cfg.
func (b *Builder) WithSyntax(cfg transform.SyntaxConfig) *Builder {
	return b.WithValidators(transform.NewSyntaxValidator(cfg))
}

// WithObserver sets an observer for execution events. Only the VM backend
// reports events.
func (b *Builder) WithObserver(observer vm.Observer) *Builder {
	b.observer = observer
	return b
}

// WithMaxCallDepth bounds nested function calls.
func (b *Builder) WithMaxCallDepth(depth int) *Builder {
	b.maxCallDepth = depth
	return b
}

// WithFilename sets the filename reported in errors from RunString.
func (b *Builder) WithFilename(filename string) *Builder {
	b.filename = filename
	return b
}

// WithConfig applies the non-zero fields of cfg. An invalid config is
// reported by Init.
func (b *Builder) WithConfig(cfg Config) *Builder {
	if err := cfg.Validate(); err != nil {
		b.setErr(err)
		return b
	}
	if cfg.Backend != "" {
		kind, _ := backend.ParseKind(cfg.Backend)
		b.kind = kind
	}
	if cfg.Corelib != nil {
		b.corelib = *cfg.Corelib
	}
	if cfg.MaxCallDepth > 0 {
		b.maxCallDepth = cfg.MaxCallDepth
	}
	if cfg.MaxParseDepth > 0 {
		b.maxParseDepth = cfg.MaxParseDepth
	}
	if cfg.ContextCheckInterval > 0 {
		b.contextCheckInterval = cfg.ContextCheckInterval
	}
	if cfg.Filename != "" {
		b.filename = cfg.Filename
	}
	return b
}

func (b *Builder) setErr(err error) {
	if b.err == nil {
		b.err = err
	}
}

// Build returns a runtime in the Built state. It has no side effects; the
// runtime must be initialized before use.
func (b *Builder) Build() *Runtime {
	return newRuntime(settings{
		corelib:              b.corelib,
		registrations:        append([]registration(nil), b.registrations...),
		kind:                 b.kind,
		stdout:               b.stdout,
		transforms:           append([]transform.Transformer(nil), b.transforms...),
		validators:           append([]transform.Validator(nil), b.validators...),
		observer:             b.observer,
		maxCallDepth:         b.maxCallDepth,
		maxParseDepth:        b.maxParseDepth,
		contextCheckInterval: b.contextCheckInterval,
		filename:             b.filename,
		logger:               b.logger,
		err:                  b.err,
	})
}
