package safescript

import (
	"context"

	"github.com/safescript/safescript/backend"
	"github.com/safescript/safescript/errz"
	"github.com/safescript/safescript/scope"
)

// Session provides stateful execution for a REPL. Unlike RunString, which
// starts each run with fresh state, definitions made by one Eval remain
// visible to the next.
type Session struct {
	rt    *Runtime
	arena *scope.Arena
	scope scope.ID
}

// NewSession starts a session on an initialized runtime. The transformer
// backend has no state to keep and is rejected.
func (r *Runtime) NewSession() (*Session, error) {
	if err := r.checkInitialized(); err != nil {
		return nil, err
	}
	if r.settings.kind == backend.Transformer {
		return nil, errz.Newf(errz.Unsupported, "the %s backend does not support sessions", r.settings.kind)
	}
	arena := scope.NewArena()
	if err := r.natives.Install(arena, scope.Root); err != nil {
		return nil, err
	}
	id := arena.Push(scope.Root)
	arena.Pin(id)
	return &Session{rt: r, arena: arena, scope: id}, nil
}

// Eval runs source in the session scope. A failed Eval keeps the
// definitions made before the failure.
func (s *Session) Eval(ctx context.Context, source string) (Value, error) {
	r := s.rt
	if err := r.acquire(); err != nil {
		return nil, err
	}
	defer r.release()

	ctx = r.logger.WithContext(ctx)
	program, err := r.prepare(ctx, source, "<repl>")
	if err != nil {
		return nil, err
	}
	env := r.env(source, "<repl>")
	env.Arena = s.arena
	env.Scope = s.scope
	return r.backend.Execute(ctx, program, env)
}

// Names returns the names defined in the session so far.
func (s *Session) Names() []string {
	return s.arena.Names(s.scope)
}
