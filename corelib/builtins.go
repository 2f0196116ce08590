package corelib

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/gofrs/uuid"
	"github.com/safescript/safescript/errz"
	"github.com/safescript/safescript/object"
	"github.com/safescript/safescript/parser"
)

type output struct {
	w io.Writer
}

func joinArgs(args []object.Object) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = object.ToString(arg)
	}
	return strings.Join(parts, " ")
}

// Log writes its arguments separated by spaces and followed by a newline.
func (o *output) Log(ctx context.Context, args ...object.Object) (object.Object, error) {
	if _, err := fmt.Fprintln(o.w, joinArgs(args)); err != nil {
		return nil, err
	}
	return object.Nil, nil
}

// Print is Log without the trailing newline.
func (o *output) Print(ctx context.Context, args ...object.Object) (object.Object, error) {
	if _, err := io.WriteString(o.w, joinArgs(args)); err != nil {
		return nil, err
	}
	return object.Nil, nil
}

func Len(ctx context.Context, args ...object.Object) (object.Object, error) {
	n, err := object.Len(args[0])
	if err != nil {
		return nil, object.TypeErrorf("len() unsupported argument (%s given)", object.TypeName(args[0]))
	}
	return object.NewNumber(float64(n)), nil
}

func Type(ctx context.Context, args ...object.Object) (object.Object, error) {
	return object.NewString(object.TypeName(args[0])), nil
}

func String(ctx context.Context, args ...object.Object) (object.Object, error) {
	return object.NewString(object.ToString(args[0])), nil
}

// Number converts a string, bool or number to a number. Strings that do not
// hold a numeric literal convert to NaN.
func Number(ctx context.Context, args ...object.Object) (object.Object, error) {
	switch arg := args[0].(type) {
	case *object.Number:
		return arg, nil
	case *object.Bool:
		if arg.Value() {
			return object.NewNumber(1), nil
		}
		return object.NewNumber(0), nil
	case *object.String:
		s := strings.TrimSpace(arg.Value())
		if s == "" {
			return object.NewNumber(0), nil
		}
		neg := strings.HasPrefix(s, "-")
		v, err := parser.ParseNumber(strings.TrimPrefix(s, "-"))
		if err != nil {
			return object.NewNumber(math.NaN()), nil
		}
		if neg {
			v = -v
		}
		return object.NewNumber(v), nil
	}
	return nil, object.TypeErrorf("num() unsupported argument (%s given)", object.TypeName(args[0]))
}

// Push appends values to a list and returns the list.
func Push(ctx context.Context, args ...object.Object) (object.Object, error) {
	list, err := object.AsList(args[0])
	if err != nil {
		return nil, err
	}
	for _, arg := range args[1:] {
		list.Append(arg)
	}
	return list, nil
}

// Pop removes and returns the last item of a list.
func Pop(ctx context.Context, args ...object.Object) (object.Object, error) {
	list, err := object.AsList(args[0])
	if err != nil {
		return nil, err
	}
	return list.Pop(), nil
}

func Keys(ctx context.Context, args ...object.Object) (object.Object, error) {
	switch arg := args[0].(type) {
	case *object.Map:
		return object.NewStringList(arg.Keys()), nil
	case *object.List:
		items := make([]object.Object, arg.Len())
		for i := range items {
			items[i] = object.NewNumber(float64(i))
		}
		return object.NewList(items), nil
	}
	return nil, object.TypeErrorf("keys() unsupported argument (%s given)", object.TypeName(args[0]))
}

func Values(ctx context.Context, args ...object.Object) (object.Object, error) {
	switch arg := args[0].(type) {
	case *object.Map:
		keys := arg.Keys()
		items := make([]object.Object, len(keys))
		for i, k := range keys {
			items[i] = arg.Get(k)
		}
		return object.NewList(items), nil
	case *object.List:
		return arg.Copy(), nil
	}
	return nil, object.TypeErrorf("values() unsupported argument (%s given)", object.TypeName(args[0]))
}

// Contains tests list membership, substrings and map keys.
func Contains(ctx context.Context, args ...object.Object) (object.Object, error) {
	switch container := args[0].(type) {
	case *object.List:
		return object.NewBool(container.Contains(args[1])), nil
	case *object.String:
		sub, err := object.AsString(args[1])
		if err != nil {
			return nil, err
		}
		return object.NewBool(strings.Contains(container.Value(), sub)), nil
	case *object.Map:
		key, err := object.AsString(args[1])
		if err != nil {
			return nil, err
		}
		_, ok := container.Lookup(key)
		return object.NewBool(ok), nil
	}
	return nil, object.TypeErrorf("contains() unsupported argument (%s given)", object.TypeName(args[0]))
}

// maxRange bounds the size of lists built by range.
const maxRange = 10_000_000

// Range returns a list of numbers: range(stop), range(start, stop) or
// range(start, stop, step).
func Range(ctx context.Context, args ...object.Object) (object.Object, error) {
	nums := make([]float64, len(args))
	for i, arg := range args {
		n, err := object.AsNumber(arg)
		if err != nil {
			return nil, err
		}
		nums[i] = n
	}
	start, stop, step := 0.0, nums[0], 1.0
	if len(nums) > 1 {
		start, stop = nums[0], nums[1]
	}
	if len(nums) > 2 {
		step = nums[2]
	}
	if step == 0 || math.IsNaN(step) {
		return nil, errz.New(errz.TypeMismatch, "range() step must not be zero")
	}
	count := math.Ceil((stop - start) / step)
	if count <= 0 || math.IsNaN(count) {
		return object.NewList(nil), nil
	}
	if count > maxRange {
		return nil, errz.Newf(errz.IndexOutOfRange, "range() too large (%s items)", object.FormatNumber(count))
	}
	items := make([]object.Object, 0, int(count))
	for i := 0; i < int(count); i++ {
		items = append(items, object.NewNumber(start+float64(i)*step))
	}
	return object.NewList(items), nil
}

// Join concatenates the string forms of a list's items.
func Join(ctx context.Context, args ...object.Object) (object.Object, error) {
	list, err := object.AsList(args[0])
	if err != nil {
		return nil, err
	}
	sep := ""
	if len(args) > 1 {
		if sep, err = object.AsString(args[1]); err != nil {
			return nil, err
		}
	}
	parts := make([]string, list.Len())
	for i, item := range list.Value() {
		parts[i] = object.ToString(item)
	}
	return object.NewString(strings.Join(parts, sep)), nil
}

func Split(ctx context.Context, args ...object.Object) (object.Object, error) {
	s, err := object.AsString(args[0])
	if err != nil {
		return nil, err
	}
	sep, err := object.AsString(args[1])
	if err != nil {
		return nil, err
	}
	return object.NewStringList(strings.Split(s, sep)), nil
}

// Assert raises a catchable error when its first argument is falsy.
func Assert(ctx context.Context, args ...object.Object) (object.Object, error) {
	if args[0].IsTruthy() {
		return object.Nil, nil
	}
	var payload object.Object = object.NewString("assertion failed")
	if len(args) == 2 {
		payload = args[1]
	}
	return nil, object.Throw(payload)
}

// Error creates an error value without throwing it.
func Error(ctx context.Context, args ...object.Object) (object.Object, error) {
	return object.Errorf("%s", object.ToString(args[0])), nil
}

// UUID returns a random version 4 UUID string.
func UUID(ctx context.Context, args ...object.Object) (object.Object, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	return object.NewString(id.String()), nil
}
