package native

import (
	"context"
	"fmt"
	"reflect"

	"github.com/safescript/safescript/errz"
	"github.com/safescript/safescript/object"
)

var (
	contextInterface = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorInterface   = reflect.TypeOf((*error)(nil)).Elem()
)

// Wrap adapts an ordinary Go function into a binding. Arguments are
// converted from script values to the parameter types and results back with
// object.FromGo. A leading context.Context parameter receives the call
// context and a trailing error result is returned as the call's error. Two
// or more non-error results are returned as a list.
//
//	native.Wrap("repeat", strings.Repeat)
func Wrap(name string, fn any) (Binding, error) {
	fnValue := reflect.ValueOf(fn)
	fnType := fnValue.Type()
	if fnType.Kind() != reflect.Func {
		return Binding{}, fmt.Errorf("native: %s: expected func, got %s", name, fnType.Kind())
	}
	w := &wrapped{fn: fnValue, fnType: fnType, name: name, isVariadic: fnType.IsVariadic()}
	if fnType.NumIn() > 0 && fnType.In(0).Implements(contextInterface) {
		w.hasContext = true
		w.numIn = fnType.NumIn() - 1
	} else {
		w.numIn = fnType.NumIn()
	}
	if fnType.NumOut() > 0 && fnType.Out(fnType.NumOut()-1).Implements(errorInterface) {
		w.hasError = true
	}
	arity := Exact(w.numIn)
	if w.isVariadic {
		arity = Variadic(w.numIn - 1)
	}
	return Binding{Name: name, Arity: arity, Fn: w.call}, nil
}

// MustWrap is Wrap for functions known to be valid.
func MustWrap(name string, fn any) Binding {
	b, err := Wrap(name, fn)
	if err != nil {
		panic(err)
	}
	return b
}

type wrapped struct {
	fn         reflect.Value
	fnType     reflect.Type
	name       string
	numIn      int
	isVariadic bool
	hasContext bool
	hasError   bool
}

func (w *wrapped) call(ctx context.Context, args ...object.Object) (object.Object, error) {
	callArgs, err := w.buildCallArgs(ctx, args)
	if err != nil {
		return nil, err
	}
	var results []reflect.Value
	if w.isVariadic {
		results = w.fn.CallSlice(callArgs)
	} else {
		results = w.fn.Call(callArgs)
	}
	return w.processResults(results)
}

func (w *wrapped) buildCallArgs(ctx context.Context, args []object.Object) ([]reflect.Value, error) {
	var callArgs []reflect.Value
	start := 0
	if w.hasContext {
		callArgs = append(callArgs, reflect.ValueOf(ctx))
		start = 1
	}
	fixed := len(args)
	if w.isVariadic {
		fixed = w.numIn - 1
	}
	for i := 0; i < fixed; i++ {
		v, err := object.ToGoType(args[i], w.fnType.In(start+i))
		if err != nil {
			return nil, w.argError(i, err)
		}
		callArgs = append(callArgs, v)
	}
	if !w.isVariadic {
		return callArgs, nil
	}
	sliceType := w.fnType.In(w.fnType.NumIn() - 1)
	rest := reflect.MakeSlice(sliceType, 0, len(args)-fixed)
	for i := fixed; i < len(args); i++ {
		v, err := object.ToGoType(args[i], sliceType.Elem())
		if err != nil {
			return nil, w.argError(i, err)
		}
		rest = reflect.Append(rest, v)
	}
	return append(callArgs, rest), nil
}

func (w *wrapped) argError(i int, err error) error {
	msg := err.Error()
	if e, ok := errz.As(err); ok {
		msg = e.Message
	}
	return errz.Newf(errz.TypeMismatch, "%s() argument %d: %s", w.name, i+1, msg)
}

func (w *wrapped) processResults(results []reflect.Value) (object.Object, error) {
	if w.hasError {
		last := results[len(results)-1]
		if !last.IsNil() {
			return nil, last.Interface().(error)
		}
		results = results[:len(results)-1]
	}
	switch len(results) {
	case 0:
		return object.Nil, nil
	case 1:
		return object.FromGo(results[0].Interface())
	}
	items := make([]object.Object, len(results))
	for i, rv := range results {
		obj, err := object.FromGo(rv.Interface())
		if err != nil {
			return nil, fmt.Errorf("return value %d: %w", i+1, err)
		}
		items[i] = obj
	}
	return object.NewList(items), nil
}
