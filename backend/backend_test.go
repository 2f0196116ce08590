package backend

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/safescript/safescript/ast"
	"github.com/safescript/safescript/corelib"
	"github.com/safescript/safescript/errz"
	"github.com/safescript/safescript/native"
	"github.com/safescript/safescript/object"
	"github.com/safescript/safescript/parser"
	"github.com/safescript/safescript/scope"
	"github.com/safescript/safescript/transform"
	"github.com/stretchr/testify/require"
)

// equivalence lists programs with their expected value, or the error kind
// they must fail with. Both executing backends must agree on every entry.
var equivalence = []struct {
	name   string
	source string
	value  string
	kind   errz.Kind
}{
	{name: "empty", source: "", value: "nil"},
	{name: "arithmetic", source: "1 + 2 * 3 - 4 / 2 % 3 ** 2", value: "5"},
	{name: "division by zero", source: "-1 / 0", value: "-Infinity"},
	{name: "concatenation", source: `"a" + "b" + str(1)`, value: `"ab1"`},
	{name: "list concatenation", source: "[1] + [2, 3]", value: "[1, 2, 3]"},
	{name: "short circuit", source: "let n = 0\nfunction f() { n += 1\n return true }\nfalse && f()\ntrue || f()\nnil ?? f()\nn", value: "1"},
	{name: "deciding operand", source: `[0 || "x", 1 && 0, nil ?? false]`, value: `["x", 0, false]`},
	{name: "map equality", source: `let a = {"a": [1, 2]}
let b = {"a": [1, 2]}
a == b`, value: "true"},
	{name: "statement result", source: "let x = 1", value: "nil"},
	{name: "shadowing", source: "let x = 1\n{ let x = 2\n x += 1 }\nx", value: "1"},
	{name: "hoisting", source: "let r = f()\nfunction f() { return 7 }\nr", value: "7"},
	{name: "closures", source: `
function counter() {
	let n = 0
	return function() { n += 1
		return n }
}
let a = counter()
let b = counter()
a()
a()
[a(), b()]`, value: "[3, 1]"},
	{name: "loop capture", source: `
let fns = []
for (let i of range(3)) { push(fns, function() { return i * 10 }) }
let out = []
for (let f of fns) { push(out, f()) }
out`, value: "[0, 10, 20]"},
	{name: "while break continue", source: `
let i = 0
let odd = []
while (true) {
	i += 1
	if (i > 7) { break }
	if (i % 2 == 0) { continue }
	push(odd, i)
}
odd`, value: "[1, 3, 5, 7]"},
	{name: "map iteration", source: `
let keys = ""
for (const k of {"x": 1, "y": 2}) { keys += k }
keys`, value: `"xy"`},
	{name: "index assignment", source: "let l = [1, 2]\nl[1] = 5\nlet m = {}\nm.a = 1\nm[\"b\"] = 2\n[l, m]", value: `[[1, 5], {"a": 1, "b": 2}]`},
	{name: "catch thrown value", source: "let r = nil\ntry { throw {\"code\": 7} } catch (e) { r = e.code }\nr", value: "7"},
	{name: "catch runtime error", source: "let r = nil\ntry { [1][5] } catch (e) { r = e.kind }\nr", value: `"IndexOutOfRange"`},
	{name: "catch native failure", source: "let r = nil\ntry { fail() } catch (e) { r = e.kind }\nr", value: `"NativeFunctionFailure"`},
	{name: "return from try", source: "function f() { try { return 1 } catch { return 2 } }\nf()", value: "1"},
	{name: "nested try", source: `
let seen = []
try {
	try { throw "inner" } catch (e) { push(seen, e)
		throw "outer" }
} catch (e) { push(seen, e) }
seen`, value: `["inner", "outer"]`},
	{name: "shadow native", source: "let log = 1\nlog", value: "1"},
	{name: "recursion", source: "function fib(n) { return n < 2 ? n : fib(n - 1) + fib(n - 2) }\nfib(15)", value: "610"},
	{name: "strings", source: `[upper("abc"), "héllo".length, "héllo"[1], join(split("a,b", ","), "-")]`, value: `["ABC", 5, "é", "a-b"]`},
	{name: "undefined", source: "x", kind: errz.UndefinedIdentifier},
	{name: "assign undeclared", source: "x = 1", kind: errz.UndefinedIdentifier},
	{name: "type mismatch", source: `1 + "a"`, kind: errz.TypeMismatch},
	{name: "compare mismatch", source: "[] < []", kind: errz.TypeMismatch},
	{name: "not callable", source: "let x = 1\nx()", kind: errz.TypeMismatch},
	{name: "duplicate let", source: "let a = 1\nlet a = 2", kind: errz.DuplicateBinding},
	{name: "const", source: "const a = 1\na = 2", kind: errz.ConstAssignment},
	{name: "native assignment", source: "len = 1", kind: errz.ConstAssignment},
	{name: "script arity", source: "function f(a) { }\nf(1, 2)", kind: errz.ArityMismatch},
	{name: "native arity", source: "len()", kind: errz.ArityMismatch},
	{name: "native failure", source: "fail()", kind: errz.NativeFunctionFailure},
	{name: "native panic", source: "explode()", kind: errz.NativeFunctionFailure},
	{name: "index range", source: "[1, 2][-1]", kind: errz.IndexOutOfRange},
	{name: "fractional index", source: "[1, 2][0.5]", kind: errz.TypeMismatch},
	{name: "thrown", source: `throw "boom"`, kind: errz.Thrown},
	{name: "stack overflow", source: "function f() { return f() }\nf()", kind: errz.StackOverflow},
	{name: "overflow not catchable", source: "function f() { return f() }\ntry { f() } catch { }", kind: errz.StackOverflow},
}

func natives(t *testing.T, out *bytes.Buffer) *native.Table {
	t.Helper()
	r := native.NewRegistry()
	require.NoError(t, corelib.Register(r, corelib.Options{Stdout: out}))
	require.NoError(t, r.Register("fail", func(args []object.Object) (object.Object, error) {
		return nil, errors.New("host failure")
	}))
	require.NoError(t, r.Register("explode", func(args []object.Object) (object.Object, error) {
		panic("boom")
	}))
	table, err := r.Freeze()
	require.NoError(t, err)
	return table
}

func parse(t *testing.T, source string) *ast.Program {
	t.Helper()
	program, err := parser.Parse(context.Background(), source)
	require.NoError(t, err)
	return program
}

func execute(t *testing.T, kind Kind, program *ast.Program, source string) (object.Object, error) {
	t.Helper()
	b, err := New(kind)
	require.NoError(t, err)
	var out bytes.Buffer
	return b.Execute(context.Background(), program, &Env{
		Natives:      natives(t, &out),
		MaxCallDepth: 200,
		Source:       source,
		Logger:       zerolog.Nop(),
	})
}

func TestBackendEquivalence(t *testing.T) {
	for _, tt := range equivalence {
		for _, kind := range []Kind{Interpreter, VM} {
			t.Run(kind.String()+"/"+tt.name, func(t *testing.T) {
				result, err := execute(t, kind, parse(t, tt.source), tt.source)
				if tt.value != "" {
					require.NoError(t, err)
					require.Equal(t, tt.value, result.Inspect())
					return
				}
				require.Error(t, err)
				require.Equal(t, tt.kind, errz.KindOf(err), err.Error())
			})
		}
	}
}

func TestLoweredProgramsAreEquivalent(t *testing.T) {
	lower := transform.LowerOperators()
	for _, tt := range equivalence {
		if tt.value == "" {
			continue
		}
		t.Run(tt.name, func(t *testing.T) {
			program, err := lower.Transform(parse(t, tt.source))
			require.NoError(t, err)
			source := transform.Print(program)
			for _, kind := range []Kind{Interpreter, VM} {
				result, err := execute(t, kind, parse(t, source), source)
				require.NoError(t, err, source)
				require.Equal(t, tt.value, result.Inspect(), source)
			}
		})
	}
}

func TestErrorLocationsAgree(t *testing.T) {
	source := "function f(x) {\n  return x.y.z\n}\nf({})"
	var locations []errz.SourceLocation
	for _, kind := range []Kind{Interpreter, VM} {
		_, err := execute(t, kind, parse(t, source), source)
		e, ok := errz.As(err)
		require.True(t, ok)
		require.Equal(t, errz.TypeMismatch, e.Kind)
		require.Len(t, e.Stack, 2)
		locations = append(locations, e.Location)
	}
	require.Equal(t, locations[0].Line, locations[1].Line)
	require.Equal(t, 2, locations[0].Line)
	require.Equal(t, "  return x.y.z", locations[1].Source)
}

func TestErrorColumnsAgree(t *testing.T) {
	tests := []struct {
		source string
		kind   errz.Kind
		line   int
		column int
	}{
		{"x", errz.UndefinedIdentifier, 1, 1},
		{`"abc"[5]`, errz.IndexOutOfRange, 1, 1},
		{"1\n\"abc\"[5]", errz.IndexOutOfRange, 2, 1},
		{"for (let k of 5) {}", errz.TypeMismatch, 1, 15},
	}
	for _, tt := range tests {
		for _, kind := range []Kind{Interpreter, VM} {
			_, err := execute(t, kind, parse(t, tt.source), tt.source)
			e, ok := errz.As(err)
			require.True(t, ok, tt.source)
			require.Equal(t, tt.kind, e.Kind, tt.source)
			require.Equal(t, tt.line, e.Location.Line, "%s on %s", tt.source, kind)
			require.Equal(t, tt.column, e.Location.Column, "%s on %s", tt.source, kind)
		}
	}
}

func TestTransformerBackend(t *testing.T) {
	called := 0
	r := native.NewRegistry()
	require.NoError(t, r.Register("log", func(args []object.Object) (object.Object, error) {
		called++
		return object.Nil, nil
	}))
	table, err := r.Freeze()
	require.NoError(t, err)

	b, err := New(Transformer, WithTransforms(transform.LowerOperators()))
	require.NoError(t, err)
	require.Equal(t, "transformer", b.Name())
	result, err := b.Execute(context.Background(), parse(t, "log(1+2)"), &Env{Natives: table})
	require.NoError(t, err)
	require.Equal(t, "log(ops.add(1, 2))", result.(*object.String).Value())
	require.Equal(t, 0, called)

	plain, err := New(Transformer)
	require.NoError(t, err)
	result, err = plain.Execute(context.Background(), parse(t, "let   x=1;x"), &Env{})
	require.NoError(t, err)
	require.Equal(t, "let x = 1\nx", result.(*object.String).Value())
}

func TestTransformerBackendCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	b, err := New(Transformer)
	require.NoError(t, err)
	_, err = b.Execute(ctx, parse(t, "1"), &Env{})
	require.Equal(t, errz.Cancelled, errz.KindOf(err))
}

func TestPersistentScope(t *testing.T) {
	var out bytes.Buffer
	for _, kind := range []Kind{Interpreter, VM} {
		t.Run(kind.String(), func(t *testing.T) {
			arena := scope.NewArena()
			require.NoError(t, natives(t, &out).Install(arena, scope.Root))
			env := &Env{Arena: arena, Scope: arena.Push(scope.Root), Logger: zerolog.Nop()}
			b, err := New(kind)
			require.NoError(t, err)
			_, err = b.Execute(context.Background(), parse(t, "let items = [1]\nfunction add(x) { push(items, x) }"), env)
			require.NoError(t, err)
			_, err = b.Execute(context.Background(), parse(t, "add(2)"), env)
			require.NoError(t, err)
			result, err := b.Execute(context.Background(), parse(t, "items"), env)
			require.NoError(t, err)
			require.Equal(t, "[1, 2]", result.Inspect())
		})
	}
}

func TestParseKind(t *testing.T) {
	for _, kind := range Kinds() {
		parsed, err := ParseKind(kind.String())
		require.NoError(t, err)
		require.Equal(t, kind, parsed)
	}
	kind, err := ParseKind(" Compiler ")
	require.NoError(t, err)
	require.Equal(t, VM, kind)

	_, err = ParseKind("jit")
	require.Error(t, err)

	var k Kind
	require.NoError(t, k.UnmarshalText([]byte("transformer")))
	require.Equal(t, Transformer, k)
	text, err := VM.MarshalText()
	require.NoError(t, err)
	require.Equal(t, "vm", string(text))

	_, err = New(Kind(42))
	require.Error(t, err)
}
