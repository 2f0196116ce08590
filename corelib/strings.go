package corelib

import (
	"context"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/safescript/safescript/errz"
	"github.com/safescript/safescript/native"
	"github.com/safescript/safescript/object"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	upperCaser = cases.Upper(language.Und)
	lowerCaser = cases.Lower(language.Und)
)

func mapString(name string, c cases.Caser, args []object.Object) (object.Object, error) {
	s, ok := args[0].(*object.String)
	if !ok {
		return nil, object.TypeErrorf("%s() expected a string argument (%s given)", name, object.TypeName(args[0]))
	}
	return object.NewString(c.String(s.Value())), nil
}

func Upper(ctx context.Context, args ...object.Object) (object.Object, error) {
	return mapString("upper", upperCaser, args)
}

func Lower(ctx context.Context, args ...object.Object) (object.Object, error) {
	return mapString("lower", lowerCaser, args)
}

// Title upper-cases the first letter of each word. Casers are stateful so
// a fresh one is used per call.
func Title(ctx context.Context, args ...object.Object) (object.Object, error) {
	return mapString("title", cases.Title(language.Und), args)
}

// StringsModule is the name of the module holding string helpers that are
// not installed as globals.
const StringsModule = "strings"

func stringArgs(name string, args []object.Object) ([]string, error) {
	out := make([]string, len(args))
	for i, arg := range args {
		s, ok := arg.(*object.String)
		if !ok {
			return nil, object.TypeErrorf("strings.%s() expected string arguments (%s given)", name, object.TypeName(arg))
		}
		out[i] = s.Value()
	}
	return out, nil
}

func stringFunc(name string, fn func(s []string) object.Object) object.BuiltinFunction {
	return func(ctx context.Context, args ...object.Object) (object.Object, error) {
		strs, err := stringArgs(name, args)
		if err != nil {
			return nil, err
		}
		return fn(strs), nil
	}
}

// Index returns the position of the first occurrence of the substring,
// counted in characters, or -1.
func Index(ctx context.Context, args ...object.Object) (object.Object, error) {
	strs, err := stringArgs("index", args)
	if err != nil {
		return nil, err
	}
	i := strings.Index(strs[0], strs[1])
	if i < 0 {
		return object.NewNumber(-1), nil
	}
	return object.NewNumber(float64(utf8.RuneCountInString(strs[0][:i]))), nil
}

// maxRepeat bounds the length in bytes of strings built by repeat.
const maxRepeat = 1 << 26

func Repeat(ctx context.Context, args ...object.Object) (object.Object, error) {
	s, ok := args[0].(*object.String)
	if !ok {
		return nil, object.TypeErrorf("strings.repeat() expected a string (%s given)", object.TypeName(args[0]))
	}
	count, err := object.AsNumber(args[1])
	if err != nil {
		return nil, err
	}
	if count != math.Trunc(count) || math.IsInf(count, 0) {
		return nil, object.TypeErrorf("strings.repeat() count must be an integer (got %s)", object.FormatNumber(count))
	}
	if count < 0 {
		return nil, object.TypeErrorf("strings.repeat() count must not be negative (got %s)", object.FormatNumber(count))
	}
	// Compared as floats so huge counts cannot overflow.
	if float64(len(s.Value()))*count > maxRepeat {
		return nil, errz.Newf(errz.IndexOutOfRange, "strings.repeat() result too large (%s bytes)",
			object.FormatNumber(float64(len(s.Value()))*count))
	}
	if len(s.Value()) == 0 {
		return object.NewString(""), nil
	}
	return object.NewString(strings.Repeat(s.Value(), int(count))), nil
}

// StringsBindings returns the members of the strings module.
func StringsBindings() []native.Binding {
	one, two := native.Exact(1), native.Exact(2)
	str := func(fn func(s []string) string) func(s []string) object.Object {
		return func(s []string) object.Object { return object.NewString(fn(s)) }
	}
	boolean := func(fn func(s []string) bool) func(s []string) object.Object {
		return func(s []string) object.Object { return object.NewBool(fn(s)) }
	}
	return []native.Binding{
		{Name: "trim", Arity: one, Fn: stringFunc("trim", str(func(s []string) string {
			return strings.TrimSpace(s[0])
		}))},
		{Name: "trim_prefix", Arity: two, Fn: stringFunc("trim_prefix", str(func(s []string) string {
			return strings.TrimPrefix(s[0], s[1])
		}))},
		{Name: "trim_suffix", Arity: two, Fn: stringFunc("trim_suffix", str(func(s []string) string {
			return strings.TrimSuffix(s[0], s[1])
		}))},
		{Name: "replace", Arity: native.Exact(3), Fn: stringFunc("replace", str(func(s []string) string {
			return strings.ReplaceAll(s[0], s[1], s[2])
		}))},
		{Name: "has_prefix", Arity: two, Fn: stringFunc("has_prefix", boolean(func(s []string) bool {
			return strings.HasPrefix(s[0], s[1])
		}))},
		{Name: "has_suffix", Arity: two, Fn: stringFunc("has_suffix", boolean(func(s []string) bool {
			return strings.HasSuffix(s[0], s[1])
		}))},
		{Name: "fields", Arity: one, Fn: stringFunc("fields", func(s []string) object.Object {
			return object.NewStringList(strings.Fields(s[0]))
		})},
		{Name: "index", Arity: two, Fn: Index},
		{Name: "repeat", Arity: two, Fn: Repeat},
	}
}
