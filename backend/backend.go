// Package backend defines the execution strategies that turn a parsed
// program into a result.
//
// All backends share one contract: Execute receives a program and an
// environment and returns the value of the program's final expression
// statement, or nil. The interpreter and the virtual machine produce the
// same values and the same error kinds for every program. The transformer
// never executes anything; its result is the rewritten source text.
package backend

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/safescript/safescript/ast"
	"github.com/safescript/safescript/compiler"
	"github.com/safescript/safescript/errz"
	"github.com/safescript/safescript/interpreter"
	"github.com/safescript/safescript/native"
	"github.com/safescript/safescript/object"
	"github.com/safescript/safescript/scope"
	"github.com/safescript/safescript/transform"
	"github.com/safescript/safescript/vm"
)

// Env is the environment a program executes in.
type Env struct {
	// Natives are installed in the root scope of a fresh arena for each
	// execution. Ignored when Arena is set.
	Natives *native.Table

	// Arena and Scope, when set, run the program directly in an existing
	// scope so its definitions persist, as in a REPL. The arena must already
	// hold the native bindings.
	Arena *scope.Arena
	Scope scope.ID

	// MaxCallDepth bounds nested calls. Zero means the backend default.
	MaxCallDepth int

	// ContextCheckInterval is the number of steps between checks of
	// ctx.Done(). Zero means the backend default.
	ContextCheckInterval int

	// Filename and Source are used in error locations.
	Filename string
	Source   string

	Logger zerolog.Logger

	// Observer receives execution events. Only the VM backend supports it.
	Observer vm.Observer
}

// Backend executes parsed programs.
type Backend interface {
	// Name returns the backend name, as accepted by ParseKind.
	Name() string

	// Execute runs the program in env.
	Execute(ctx context.Context, program *ast.Program, env *Env) (object.Object, error)
}

// Option configures a backend created by New.
type Option func(*options)

type options struct {
	transforms []transform.Transformer
}

// WithTransforms sets the transformers applied by the transformer backend.
// Without any, it prints the program unchanged in canonical form.
func WithTransforms(transforms ...transform.Transformer) Option {
	return func(o *options) {
		o.transforms = append(o.transforms, transforms...)
	}
}

// New returns the backend of the given kind.
func New(kind Kind, opts ...Option) (Backend, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	switch kind {
	case Interpreter:
		return &interpreterBackend{}, nil
	case VM:
		return &vmBackend{}, nil
	case Transformer:
		return &transformerBackend{transformer: transform.Chain(o.transforms...)}, nil
	}
	return nil, fmt.Errorf("unknown backend %s", kind)
}

type interpreterBackend struct{}

func (b *interpreterBackend) Name() string { return Interpreter.String() }

func (b *interpreterBackend) Execute(ctx context.Context, program *ast.Program, env *Env) (object.Object, error) {
	opts := []interpreter.Option{
		interpreter.WithFilename(env.Filename),
		interpreter.WithSource(env.Source),
	}
	if env.Arena != nil {
		opts = append(opts, interpreter.WithScope(env.Arena, env.Scope))
	} else {
		opts = append(opts, interpreter.WithNatives(env.Natives))
	}
	if env.MaxCallDepth > 0 {
		opts = append(opts, interpreter.WithMaxDepth(env.MaxCallDepth))
	}
	if env.ContextCheckInterval > 0 {
		opts = append(opts, interpreter.WithContextCheckInterval(env.ContextCheckInterval))
	}
	return interpreter.New(opts...).Eval(ctx, program)
}

type vmBackend struct{}

func (b *vmBackend) Name() string { return VM.String() }

func (b *vmBackend) Execute(ctx context.Context, program *ast.Program, env *Env) (object.Object, error) {
	start := time.Now()
	code, err := compiler.Compile(program, &compiler.Config{
		Filename: env.Filename,
		Source:   env.Source,
	})
	if err != nil {
		return nil, err
	}
	stats := code.Stats()
	env.Logger.Debug().
		Int("instructions", stats.InstructionCount).
		Int("constants", stats.ConstantCount).
		Int("functions", stats.FunctionCount).
		Dur("duration", time.Since(start)).
		Msg("compiled program")

	var opts []vm.Option
	if env.Arena != nil {
		opts = append(opts, vm.WithScope(env.Arena, env.Scope))
	} else {
		opts = append(opts, vm.WithNatives(env.Natives))
	}
	if env.MaxCallDepth > 0 {
		opts = append(opts, vm.WithMaxFrameDepth(env.MaxCallDepth))
	}
	if env.ContextCheckInterval > 0 {
		opts = append(opts, vm.WithContextCheckInterval(env.ContextCheckInterval))
	}
	if env.Observer != nil {
		opts = append(opts, vm.WithObserver(env.Observer))
	}
	return vm.Run(ctx, code, opts...)
}

type transformerBackend struct {
	transformer transform.Transformer
}

func (b *transformerBackend) Name() string { return Transformer.String() }

// Execute applies the transformers and returns the canonical source text of
// the result as a string value. Natives are never called.
func (b *transformerBackend) Execute(ctx context.Context, program *ast.Program, env *Env) (object.Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, errz.Wrap(errz.Cancelled, err, "execution cancelled")
	}
	result, err := b.transformer.Transform(program)
	if err != nil {
		return nil, err
	}
	return object.NewString(transform.Print(result)), nil
}
