package vm

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/safescript/safescript/bytecode"
	"github.com/safescript/safescript/compiler"
	"github.com/safescript/safescript/corelib"
	"github.com/safescript/safescript/errz"
	"github.com/safescript/safescript/native"
	"github.com/safescript/safescript/object"
	"github.com/safescript/safescript/op"
	"github.com/safescript/safescript/parser"
	"github.com/safescript/safescript/scope"
	"github.com/stretchr/testify/require"
)

func compile(t *testing.T, source string) *bytecode.Code {
	t.Helper()
	program, err := parser.Parse(context.Background(), source)
	require.NoError(t, err)
	code, err := compiler.Compile(program, &compiler.Config{Source: source, Filename: "test.ss"})
	require.NoError(t, err)
	return code
}

func natives(t *testing.T, stdout *bytes.Buffer) *native.Table {
	t.Helper()
	r := native.NewRegistry()
	require.NoError(t, corelib.Register(r, corelib.Options{Stdout: stdout}))
	table, err := r.Freeze()
	require.NoError(t, err)
	return table
}

func run(t *testing.T, source string, options ...Option) (object.Object, error) {
	t.Helper()
	var out bytes.Buffer
	options = append([]Option{WithNatives(natives(t, &out))}, options...)
	return Run(context.Background(), compile(t, source), options...)
}

func runValue(t *testing.T, source string) string {
	t.Helper()
	result, err := run(t, source)
	require.NoError(t, err)
	return result.Inspect()
}

func runError(t *testing.T, source string) *errz.Error {
	t.Helper()
	_, err := run(t, source)
	require.Error(t, err)
	e, ok := errz.As(err)
	require.True(t, ok, "expected *errz.Error, got %T", err)
	return e
}

func TestExpressions(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", "nil"},
		{"1 + 2 * 3", "7"},
		{"(1 + 2) * 3", "9"},
		{"2 ** 10", "1024"},
		{"7 % 3", "1"},
		{"-5 + 2", "-3"},
		{"!true", "false"},
		{`"a" + "b"`, `"ab"`},
		{"1 < 2 && 2 < 3", "true"},
		{"nil ?? 4", "4"},
		{"false ?? 4", "false"},
		{"0 || 5", "5"},
		{`1 == 1 ? "yes" : "no"`, `"yes"`},
		{"[1, 2, 3][1]", "2"},
		{`({"a": 1}).a`, "1"},
		{"len([1, 2]) + len(\"abc\")", "5"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			require.Equal(t, tt.expected, runValue(t, tt.input))
		})
	}
}

func TestVariables(t *testing.T) {
	require.Equal(t, "3", runValue(t, "let x = 1\nx = x + 2\nx"))
	require.Equal(t, "12", runValue(t, "let x = 3\nx *= 4\nx"))
	require.Equal(t, "1", runValue(t, "let x = 1\n{ let x = 2 }\nx"))
	require.Equal(t, "2", runValue(t, "let x = 1\n{ x = 2 }\nx"))
}

func TestContainers(t *testing.T) {
	require.Equal(t, "[1, 5, 3]", runValue(t, "let l = [1, 2, 3]\nl[1] = 5\nl"))
	require.Equal(t, "[1, 2, 3]", runValue(t, "let l = [1, 2]\npush(l, 3)\nl"))
	require.Equal(t, `{"a": 3, "b": 2}`, runValue(t, "let m = {\"a\": 1, \"b\": 2}\nm.a += 2\nm"))
	require.Equal(t, "10", runValue(t, "let m = {}\nm[\"k\"] = 10\nm.k"))
}

func TestControlFlow(t *testing.T) {
	require.Equal(t, "10", runValue(t, `
let sum = 0
let i = 0
while (i < 5) {
	sum += i
	i += 1
}
sum`))
	require.Equal(t, "9", runValue(t, `
let sum = 0
for (let x of [1, 2, 3, 4, 5, 6]) {
	if (x % 2 == 0) { continue }
	if (x > 5) { break }
	sum += x
}
sum`))
	require.Equal(t, `"ab"`, runValue(t, `
let keys = ""
for (const k of {"a": 1, "b": 2}) { keys += k }
keys`))
}

func TestFunctions(t *testing.T) {
	require.Equal(t, "5", runValue(t, "function add(a, b) { return a + b }\nadd(2, 3)"))
	require.Equal(t, "nil", runValue(t, "function f() { }\nf()"))
	// Declarations are hoisted
	require.Equal(t, "6", runValue(t, "double(3)\nfunction double(x) { return x * 2 }\ndouble(3)"))
	require.Equal(t, "55", runValue(t, `
function fib(n) {
	if (n < 2) { return n }
	return fib(n - 1) + fib(n - 2)
}
fib(10)`))
}

func TestClosures(t *testing.T) {
	require.Equal(t, "3", runValue(t, `
function counter() {
	let n = 0
	return function() {
		n += 1
		return n
	}
}
let c = counter()
c()
c()
c()`))
	require.Equal(t, "[0, 1, 2]", runValue(t, `
let fns = []
for (let i of [0, 1, 2]) {
	push(fns, function() { return i })
}
let result = []
for (let f of fns) { push(result, f()) }
result`))
}

func TestReturnFromLoopInsideTry(t *testing.T) {
	require.Equal(t, "2", runValue(t, `
function find(xs) {
	for (let x of xs) {
		try {
			if (x == 2) { return x }
		} catch (e) { }
	}
	return nil
}
find([1, 2, 3])`))
}

func TestTryCatch(t *testing.T) {
	require.Equal(t, `"boom"`, runValue(t, `
let caught = nil
try { throw "boom" } catch (e) { caught = e }
caught`))
	require.Equal(t, `{"code": 7}`, runValue(t, `
let caught = nil
try { throw {"code": 7} } catch (e) { caught = e }
caught`))
	// Errors raised by natives and the runtime are catchable
	require.Equal(t, `"TypeMismatch"`, runValue(t, `
let kind = nil
try { 1 + "a" } catch (e) { kind = e.kind }
kind`))
	require.Equal(t, "true", runValue(t, `
let ok = false
try { assert(false) } catch { ok = true }
ok`))
	// Errors unwind through calls
	require.Equal(t, `"deep"`, runValue(t, `
function inner() { throw "deep" }
function outer() { inner() }
let caught = nil
try { outer() } catch (e) { caught = e }
caught`))
	// Rethrow from a catch block
	e := runError(t, `try { throw "a" } catch (e) { throw e + "b" }`)
	require.Equal(t, errz.Thrown, e.Kind)
	require.Equal(t, "ab", e.Message)
}

func TestBreakInsideTry(t *testing.T) {
	require.Equal(t, "[1, 2]", runValue(t, `
let seen = []
for (let x of [1, 2, 3]) {
	try {
		push(seen, x)
		if (x == 2) { break }
	} catch (e) { }
}
seen`))
	// The handler was popped by break, so the throw is uncaught
	e := runError(t, `
for (let x of [1]) {
	try { break } catch (e) { }
}
throw "after"`)
	require.Equal(t, errz.Thrown, e.Kind)
}

func TestRuntimeErrors(t *testing.T) {
	tests := []struct {
		input   string
		kind    errz.Kind
		message string
	}{
		{"x", errz.UndefinedIdentifier, "x is not defined"},
		{"const x = 1\nx = 2", errz.ConstAssignment, ""},
		{"let x = 1\nlet x = 2", errz.DuplicateBinding, ""},
		{"1()", errz.TypeMismatch, "number is not callable"},
		{"function f(a) { }\nf()", errz.ArityMismatch, "f() takes 1 argument (0 given)"},
		{"len()", errz.ArityMismatch, ""},
		{"[1][5]", errz.IndexOutOfRange, ""},
		{`throw "oops"`, errz.Thrown, "oops"},
		{"len = 1", errz.ConstAssignment, ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			e := runError(t, tt.input)
			require.Equal(t, tt.kind, e.Kind)
			if tt.message != "" {
				require.Equal(t, tt.message, e.Message)
			}
		})
	}
}

func TestErrorLocationAndStack(t *testing.T) {
	e := runError(t, "function f() {\n  return g()\n}\nf()")
	require.Equal(t, errz.UndefinedIdentifier, e.Kind)
	require.Equal(t, 2, e.Location.Line)
	require.Equal(t, "test.ss", e.Location.Filename)
	require.Equal(t, "  return g()", e.Location.Source)
	require.Len(t, e.Stack, 2)
	require.Equal(t, "f", e.Stack[0].Function)
	require.Equal(t, 2, e.Stack[0].Location.Line)
	require.Equal(t, "<main>", e.Stack[1].Function)
	require.Equal(t, 4, e.Stack[1].Location.Line)
}

func TestStackOverflow(t *testing.T) {
	e := runError(t, "function f() { return f() }\nf()")
	require.Equal(t, errz.StackOverflow, e.Kind)

	_, err := run(t, "function f(n) { return n == 0 ? 0 : f(n - 1) }\nf(20)", WithMaxFrameDepth(10))
	require.Equal(t, errz.StackOverflow, errz.KindOf(err))

	result, err := run(t, "function f(n) { return n == 0 ? 0 : f(n - 1) }\nf(5)", WithMaxFrameDepth(10))
	require.NoError(t, err)
	require.Equal(t, "0", result.Inspect())
}

func TestStackOverflowIsNotCatchable(t *testing.T) {
	e := runError(t, `
function f() { return f() }
try { f() } catch (e) { }`)
	require.Equal(t, errz.StackOverflow, e.Kind)
}

func TestScopesReleased(t *testing.T) {
	arena := scope.NewArena()
	var out bytes.Buffer
	require.NoError(t, natives(t, &out).Install(arena, scope.Root))
	program := arena.Push(scope.Root)

	code := compile(t, `
function f(x) {
	{ let y = x }
	try { throw x } catch (e) { }
	return x
}
for (let i of range(100)) { f(i) }
try { f() } catch { }`)
	_, err := New(code, WithScope(arena, program)).Run(context.Background())
	require.NoError(t, err)
	// Root and the program scope are the only live scopes
	require.Equal(t, 2, arena.Len())
}

func TestWithScopeKeepsState(t *testing.T) {
	arena := scope.NewArena()
	program := arena.Push(scope.Root)
	_, err := New(compile(t, "let x = 41"), WithScope(arena, program)).Run(context.Background())
	require.NoError(t, err)
	result, err := New(compile(t, "x + 1"), WithScope(arena, program)).Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, "42", result.Inspect())
}

func TestRunTwice(t *testing.T) {
	var out bytes.Buffer
	machine := New(compile(t, "let x = 1\nx"), WithNatives(natives(t, &out)))
	for i := 0; i < 2; i++ {
		result, err := machine.Run(context.Background())
		require.NoError(t, err)
		require.Equal(t, "1", result.Inspect())
	}
}

func TestStdout(t *testing.T) {
	var out bytes.Buffer
	_, err := Run(context.Background(), compile(t, `log("hello", 1)`), WithNatives(natives(t, &out)))
	require.NoError(t, err)
	require.Equal(t, "hello 1\n", out.String())
}

func TestCancellation(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := Run(ctx, compile(t, "while (true) { }"))
	require.Error(t, err)
	require.Equal(t, errz.Cancelled, errz.KindOf(err))
	require.ErrorIs(t, err, context.DeadlineExceeded)

	// Cancellation is not catchable by scripts
	ctx, cancel = context.WithCancel(context.Background())
	cancel()
	_, err = Run(ctx, compile(t, "try { while (true) { } } catch { }"))
	require.Equal(t, errz.Cancelled, errz.KindOf(err))
}

func TestDeterministicContextCheck(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, compile(t, "let i = 0\nwhile (i < 10000) { i += 1 }"), WithContextCheckInterval(1))
	require.Equal(t, errz.Cancelled, errz.KindOf(err))
}

type recordingObserver struct {
	NoOpObserver
	steps   int
	calls   []string
	returns []string
	limit   int
}

func (o *recordingObserver) OnStep(event StepEvent) bool {
	o.steps++
	return o.limit == 0 || o.steps < o.limit
}

func (o *recordingObserver) OnCall(event CallEvent) bool {
	o.calls = append(o.calls, event.FunctionName)
	return true
}

func (o *recordingObserver) OnReturn(event ReturnEvent) bool {
	o.returns = append(o.returns, event.FunctionName)
	return true
}

func TestObserver(t *testing.T) {
	obs := &recordingObserver{}
	result, err := run(t, "function add(a, b) { return a + b }\nlen([add(1, 2)])", WithObserver(obs))
	require.NoError(t, err)
	require.Equal(t, "1", result.Inspect())
	require.Equal(t, []string{"add", "len"}, obs.calls)
	require.Equal(t, []string{"add"}, obs.returns)
	require.Greater(t, obs.steps, 5)

	obs = &recordingObserver{limit: 3}
	_, err = run(t, "while (true) { }", WithObserver(obs))
	require.Equal(t, errz.Cancelled, errz.KindOf(err))
	require.Equal(t, 3, obs.steps)
}

func TestInvalidCode(t *testing.T) {
	code := bytecode.NewCode(bytecode.CodeParams{
		Name:         "bad",
		Instructions: []op.Code{op.Nil},
	})
	_, err := Run(context.Background(), code)
	require.Equal(t, errz.InvalidBytecode, errz.KindOf(err))
}
