package safescript

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog"
	"github.com/safescript/safescript/ast"
	"github.com/safescript/safescript/backend"
	"github.com/safescript/safescript/corelib"
	"github.com/safescript/safescript/errz"
	"github.com/safescript/safescript/native"
	"github.com/safescript/safescript/parser"
	"github.com/safescript/safescript/transform"
	"github.com/safescript/safescript/vm"
)

// State is the lifecycle state of a Runtime.
type State int32

const (
	Unconfigured State = iota
	Built
	Initialized
	Running
)

func (s State) String() string {
	switch s {
	case Unconfigured:
		return "unconfigured"
	case Built:
		return "built"
	case Initialized:
		return "initialized"
	case Running:
		return "running"
	}
	return "unknown"
}

type settings struct {
	corelib       bool
	registrations []registration
	kind          backend.Kind
	stdout        io.Writer
	transforms    []transform.Transformer
	validators    []transform.Validator
	observer      vm.Observer

	maxCallDepth         int
	maxParseDepth        int
	contextCheckInterval int
	filename             string
	logger               zerolog.Logger

	err error
}

// Runtime runs scripts. A runtime runs one script at a time; concurrent
// runs fail with AlreadyRunning. Separate runtimes are independent and may
// be used from different goroutines.
type Runtime struct {
	id       uuid.UUID
	settings settings
	logger   zerolog.Logger

	mu      sync.Mutex
	state   State
	natives *native.Table
	backend backend.Backend
}

func newRuntime(s settings) *Runtime {
	return &Runtime{
		settings: s,
		logger:   s.logger,
		state:    Built,
	}
}

// ID returns the runtime's unique instance id, assigned by the first call
// to Init. It is empty before that.
func (r *Runtime) ID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.id == uuid.Nil {
		return ""
	}
	return r.id.String()
}

// State returns the current lifecycle state.
func (r *Runtime) State() State {
	if r == nil {
		return Unconfigured
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Backend returns the configured backend kind.
func (r *Runtime) Backend() backend.Kind {
	return r.settings.kind
}

// Names returns the sorted names of the native bindings. It is empty
// before Init.
func (r *Runtime) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.natives == nil {
		return nil
	}
	return r.natives.Names()
}

// Init registers the native bindings and prepares the backend. Every
// registration failure is reported, combined into one error. Calling Init
// on an initialized runtime does nothing.
func (r *Runtime) Init() error {
	if r == nil {
		return errz.New(errz.NotInitialized, "runtime was not built")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	switch r.state {
	case Initialized:
		return nil
	case Running:
		return errz.New(errz.AlreadyRunning, "runtime is running")
	}
	s := r.settings
	if r.id == uuid.Nil {
		r.id = uuid.Must(uuid.NewV4())
		r.logger = s.logger.With().Str("runtime", r.id.String()).Logger()
	}
	r.logger.Debug().
		Str("backend", s.kind.String()).
		Bool("corelib", s.corelib).
		Int("registrations", len(s.registrations)).
		Msg("runtime init started")
	if s.err != nil {
		r.logger.Error().Err(s.err).Msg("runtime init failed")
		return s.err
	}

	registry := native.NewRegistry()
	registry.SetOverwrite(!s.corelib)
	if s.corelib {
		if err := corelib.Register(registry, corelib.Options{Stdout: s.stdout}); err != nil {
			return err
		}
	}
	for _, register := range s.registrations {
		// Failures are collected by the registry and returned by Freeze.
		_ = register(registry)
	}
	natives, err := registry.Freeze()
	if err != nil {
		r.logger.Error().Err(err).Msg("runtime init failed")
		return err
	}

	var opts []backend.Option
	if s.kind == backend.Transformer {
		opts = append(opts, backend.WithTransforms(s.transforms...))
	}
	b, err := backend.New(s.kind, opts...)
	if err != nil {
		return err
	}

	r.natives = natives
	r.backend = b
	r.state = Initialized
	r.logger.Info().
		Str("backend", b.Name()).
		Bool("corelib", s.corelib).
		Int("bindings", natives.Len()).
		Msg("runtime initialized")
	return nil
}

// RunString runs source and returns the value of its final expression
// statement, or nil.
func (r *Runtime) RunString(ctx context.Context, source string) (Value, error) {
	return r.run(ctx, source, r.settings.filename)
}

// RunFromFile reads and runs the script at path. Errors name the file.
func (r *Runtime) RunFromFile(ctx context.Context, path string) (Value, error) {
	if err := r.checkInitialized(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errz.Wrap(errz.Io, err, "reading %s", path)
	}
	return r.run(ctx, string(data), path)
}

func (r *Runtime) checkInitialized() error {
	switch r.State() {
	case Unconfigured, Built:
		return errz.New(errz.NotInitialized, "runtime is not initialized")
	}
	return nil
}

// acquire moves the runtime into the Running state.
func (r *Runtime) acquire() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch r.state {
	case Unconfigured, Built:
		return errz.New(errz.NotInitialized, "runtime is not initialized")
	case Running:
		return errz.New(errz.AlreadyRunning, "runtime is already running a script")
	}
	r.state = Running
	return nil
}

func (r *Runtime) release() {
	r.mu.Lock()
	r.state = Initialized
	r.mu.Unlock()
}

// prepare parses, transforms and validates source.
func (r *Runtime) prepare(ctx context.Context, source, filename string) (*ast.Program, error) {
	s := r.settings
	opts := []parser.Option{parser.WithFilename(filename)}
	if s.maxParseDepth > 0 {
		opts = append(opts, parser.WithMaxDepth(s.maxParseDepth))
	}
	program, err := parser.Parse(ctx, source, opts...)
	if err != nil {
		return nil, err
	}
	if s.kind != backend.Transformer && len(s.transforms) > 0 {
		if program, err = transform.Chain(s.transforms...).Transform(program); err != nil {
			return nil, err
		}
	}
	if err := transform.Validate(program, s.validators...); err != nil {
		return nil, err
	}
	return program, nil
}

func (r *Runtime) env(source, filename string) *backend.Env {
	s := r.settings
	return &backend.Env{
		Natives:              r.natives,
		MaxCallDepth:         s.maxCallDepth,
		ContextCheckInterval: s.contextCheckInterval,
		Filename:             filename,
		Source:               source,
		Logger:               r.logger,
		Observer:             s.observer,
	}
}

func (r *Runtime) run(ctx context.Context, source, filename string) (Value, error) {
	if err := r.acquire(); err != nil {
		return nil, err
	}
	defer r.release()

	ctx = r.logger.WithContext(ctx)
	start := time.Now()
	r.logger.Debug().
		Str("backend", r.backend.Name()).
		Str("filename", filename).
		Msg("run started")

	result, err := r.execute(ctx, source, filename)

	event := r.logger.Debug()
	if err != nil {
		event = r.logger.Warn().Err(err).Str("kind", errz.KindOf(err).Name())
	}
	event.Str("backend", r.backend.Name()).
		Str("filename", filename).
		Dur("duration", time.Since(start)).
		Msg("run finished")
	return result, err
}

func (r *Runtime) execute(ctx context.Context, source, filename string) (Value, error) {
	program, err := r.prepare(ctx, source, filename)
	if err != nil {
		return nil, err
	}
	return r.backend.Execute(ctx, program, r.env(source, filename))
}
