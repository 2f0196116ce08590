package native

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/safescript/safescript/errz"
	"github.com/safescript/safescript/object"
)

// Call invokes a builtin on behalf of a script. It enforces the builtin's
// arity and converts host failures into errors: a returned *errz.Error
// passes through unchanged, any other error or a panic becomes
// NativeFunctionFailure. A nil result is returned as object.Nil.
func Call(ctx context.Context, b *object.Builtin, args []object.Object) (result object.Object, err error) {
	arity := ArityOf(b)
	if !arity.Accepts(len(args)) {
		return nil, errz.Newf(errz.ArityMismatch,
			"%s() takes %s argument%s (%d given)",
			b.Key(), arity, arity.plural(), len(args))
	}
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = errz.Newf(errz.NativeFunctionFailure, "panic in %s(): %v", b.Key(), r)
			logFailure(ctx, b, err)
		}
	}()
	result, err = b.Call(ctx, args...)
	if err != nil {
		if e, ok := errz.As(err); ok {
			return nil, e
		}
		err = errz.Wrap(errz.NativeFunctionFailure, err, "%s()", b.Key())
		logFailure(ctx, b, err)
		return nil, err
	}
	if result == nil {
		return object.Nil, nil
	}
	return result, nil
}

func logFailure(ctx context.Context, b *object.Builtin, err error) {
	zerolog.Ctx(ctx).Warn().
		Str("native", b.Key()).
		Err(err).
		Msg("native function failed")
}

// CallFunc adapts a host function with the plain signature to the builtin
// calling convention.
func CallFunc(fn Func) object.BuiltinFunction {
	return func(ctx context.Context, args ...object.Object) (object.Object, error) {
		return fn(args)
	}
}
