// Package interpreter evaluates a SafeScript syntax tree directly.
//
// The interpreter resolves names through the same scope arena as the virtual
// machine and shares its value operations, so both backends produce the same
// results and the same error kinds. Calls are tracked on an explicit frame
// stack whose depth is bounded. Loop and function exits are reported as
// control signals rather than errors.
package interpreter

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/safescript/safescript/ast"
	"github.com/safescript/safescript/errz"
	"github.com/safescript/safescript/internal/token"
	"github.com/safescript/safescript/native"
	"github.com/safescript/safescript/object"
	"github.com/safescript/safescript/scope"
)

const (
	// DefaultMaxDepth is the default limit on nested calls.
	DefaultMaxDepth = 1000

	// DefaultContextCheckInterval is the default number of evaluation steps
	// between checks of ctx.Done().
	DefaultContextCheckInterval = 1000
)

// frame records an active call for depth limiting and stack traces.
type frame struct {
	name string
	// Position of the call expression in the caller
	call token.Position
}

// Interpreter evaluates programs. It is not safe for concurrent use; a
// second Eval while one is active fails with an AlreadyRunning error.
type Interpreter struct {
	arena        *scope.Arena
	programScope scope.ID
	ownsScope    bool
	natives      *native.Table

	maxDepth             int
	contextCheckInterval int
	filename             string
	source               string
	lines                []string

	ctx    context.Context
	frames []frame
	steps  int
	halt   int32

	running  bool
	runMutex sync.Mutex
}

// New creates an Interpreter.
func New(options ...Option) *Interpreter {
	in := &Interpreter{
		programScope:         scope.None,
		maxDepth:             DefaultMaxDepth,
		contextCheckInterval: DefaultContextCheckInterval,
	}
	for _, opt := range options {
		opt(in)
	}
	if in.source != "" {
		in.lines = strings.Split(in.source, "\n")
	}
	return in
}

func (in *Interpreter) start(ctx context.Context) (func(), error) {
	in.runMutex.Lock()
	defer in.runMutex.Unlock()
	if in.running {
		return nil, errz.New(errz.AlreadyRunning, "interpreter is already running")
	}
	in.running = true
	in.ctx = ctx
	atomic.StoreInt32(&in.halt, 0)
	done := make(chan struct{})
	if doneChan := ctx.Done(); doneChan != nil {
		go func() {
			select {
			case <-doneChan:
				atomic.StoreInt32(&in.halt, 1)
			case <-done:
			}
		}()
	}
	return func() {
		close(done)
		in.runMutex.Lock()
		in.running = false
		in.ctx = nil
		in.runMutex.Unlock()
	}, nil
}

// Eval evaluates the program and returns the value of its final expression
// statement, or nil.
func (in *Interpreter) Eval(ctx context.Context, program *ast.Program) (result object.Object, err error) {
	stop, err := in.start(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			err = errz.Newf(errz.KindUnknown, "interpreter panic: %v", r)
		}
		stop()
	}()

	if in.arena == nil {
		in.arena = scope.NewArena()
		if err := in.natives.Install(in.arena, scope.Root); err != nil {
			return nil, err
		}
		in.ownsScope = true
	}
	if in.ownsScope {
		in.arena.Release(in.programScope)
		in.programScope = in.arena.Push(scope.Root)
	}
	in.steps = 0
	in.frames = append(in.frames[:0], frame{name: "<main>"})

	stmts := program.Stmts
	var last *ast.ExprStmt
	if n := len(stmts); n > 0 {
		if exprStmt, ok := stmts[n-1].(*ast.ExprStmt); ok {
			last = exprStmt
			stmts = stmts[:n-1]
		}
	}
	if err := in.hoist(program.Stmts, in.programScope); err != nil {
		return nil, err
	}
	for _, stmt := range stmts {
		// Signals cannot escape the top level; the parser rejects them
		if _, _, err := in.exec(stmt, in.programScope); err != nil {
			return nil, err
		}
	}
	if last == nil {
		return object.Nil, nil
	}
	if err := in.step(); err != nil {
		return nil, err
	}
	return in.eval(last.X, in.programScope)
}

// step counts an evaluation step and reports cancellation.
func (in *Interpreter) step() error {
	if atomic.LoadInt32(&in.halt) == 1 {
		return in.cancelled()
	}
	if in.contextCheckInterval > 0 {
		in.steps++
		if in.steps >= in.contextCheckInterval {
			in.steps = 0
			if in.ctx.Err() != nil {
				return in.cancelled()
			}
		}
	}
	return nil
}

func (in *Interpreter) cancelled() error {
	cause := in.ctx.Err()
	if cause == nil {
		cause = context.Canceled
	}
	return errz.Wrap(errz.Cancelled, cause, "execution cancelled")
}

// decorate attaches the location of node and the call stack to err, unless
// a more precise location was attached already.
func (in *Interpreter) decorate(err error, node ast.Node) error {
	e, ok := errz.As(err)
	if !ok {
		e = errz.Wrap(errz.KindUnknown, err, "")
		err = e
	}
	if e.Kind == errz.Cancelled {
		return err
	}
	if e.Location.IsZero() {
		e.WithLocation(in.location(node.Pos(), node.End()))
	}
	if len(e.Stack) == 0 {
		e.WithStack(in.captureStack(node.Pos()))
	}
	return err
}

func (in *Interpreter) location(pos, end token.Position) errz.SourceLocation {
	if !pos.IsValid() {
		return errz.SourceLocation{}
	}
	loc := errz.SourceLocation{
		Filename: in.filename,
		Line:     pos.LineNumber(),
		Column:   pos.ColumnNumber(),
	}
	if pos.File != "" {
		loc.Filename = pos.File
	}
	if end.Line == pos.Line {
		loc.EndColumn = end.ColumnNumber()
	}
	if idx := pos.Line; idx >= 0 && idx < len(in.lines) {
		loc.Source = in.lines[idx]
	}
	return loc
}

// captureStack builds a stack trace from the active frames, innermost first.
func (in *Interpreter) captureStack(pos token.Position) []errz.StackFrame {
	frames := make([]errz.StackFrame, 0, len(in.frames))
	for i := len(in.frames) - 1; i >= 0; i-- {
		frames = append(frames, errz.StackFrame{
			Function: in.frames[i].name,
			Location: in.location(pos, token.NoPos),
		})
		pos = in.frames[i].call
	}
	return frames
}
