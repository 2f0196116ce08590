package object

import (
	"math"
	"testing"

	"github.com/safescript/safescript/errz"
	"github.com/stretchr/testify/require"
)

func TestTruthiness(t *testing.T) {
	tests := []struct {
		obj  Object
		want bool
	}{
		{Nil, false},
		{False, false},
		{True, true},
		{NewNumber(0), false},
		{NewNumber(math.NaN()), false},
		{NewNumber(-1), true},
		{NewString(""), false},
		{NewString("0"), true},
		{NewList(nil), true},
		{NewOrderedMap(), true},
		{Errorf("x"), true},
	}
	for _, tt := range tests {
		t.Run(tt.obj.Inspect(), func(t *testing.T) {
			require.Equal(t, tt.want, tt.obj.IsTruthy())
		})
	}
	require.False(t, IsTruthy(nil))
}

func TestInspect(t *testing.T) {
	m := NewOrderedMap()
	m.Set("b", NewNumber(1))
	m.Set("a", NewList([]Object{NewString("x"), Nil, True}))

	tests := []struct {
		obj  Object
		want string
	}{
		{Nil, "nil"},
		{True, "true"},
		{NewNumber(3), "3"},
		{NewNumber(-2.5), "-2.5"},
		{NewNumber(1e21), "1e+21"},
		{NewNumber(math.Inf(1)), "Infinity"},
		{NewNumber(math.NaN()), "NaN"},
		{NewString("hi"), `"hi"`},
		{m, `{"b": 1, "a": ["x", nil, true]}`},
		{NewBuiltin("add", nil).InModule("ops"), "builtin(ops.add)"},
		{NewModule("ops", nil), "module(ops)"},
		{Errorf("boom"), `error("boom")`},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, tt.obj.Inspect())
	}
	require.Equal(t, "hi", ToString(NewString("hi")))
	require.Equal(t, "[1]", ToString(NewList([]Object{NewNumber(1)})))
}

func TestSelfReferentialList(t *testing.T) {
	list := NewList(nil)
	list.Append(list)
	require.Contains(t, list.Inspect(), "[...]")
	require.True(t, list.Equals(list))
}

func TestMapOrder(t *testing.T) {
	m := NewOrderedMap()
	m.Set("z", NewNumber(1))
	m.Set("a", NewNumber(2))
	m.Set("z", NewNumber(3))
	require.Equal(t, []string{"z", "a"}, m.Keys())
	require.Equal(t, 2, m.Len())
	require.Equal(t, NewNumber(3), m.Get("z"))
	require.Equal(t, Nil, m.Get("missing"))

	sorted := NewMap(map[string]Object{"b": True, "a": False})
	require.Equal(t, []string{"a", "b"}, sorted.Keys())

	data, err := m.MarshalJSON()
	require.NoError(t, err)
	require.Equal(t, `{"z":3,"a":2}`, string(data))
}

func TestListOperations(t *testing.T) {
	list := NewList(nil)
	require.Equal(t, Nil, list.Pop())
	list.Append(NewNumber(1))
	list.Append(NewString("two"))
	require.Equal(t, 2, list.Len())
	require.True(t, list.Contains(NewString("two")))
	require.False(t, list.Contains(NewString("three")))

	cp := list.Copy()
	require.Equal(t, NewString("two"), list.Pop())
	require.Equal(t, 1, list.Len())
	require.Equal(t, 2, cp.Len())
}

type testCode struct {
	name   string
	params []string
}

func (c *testCode) Name() string     { return c.name }
func (c *testCode) Params() []string { return c.params }

func TestFunction(t *testing.T) {
	fn := NewFunction(&testCode{name: "add", params: []string{"a", "b"}}, ScopeRef(3))
	require.Equal(t, FUNCTION, fn.Type())
	require.Equal(t, "function(add)", fn.Inspect())
	require.Equal(t, 2, fn.Arity())
	require.Equal(t, ScopeRef(3), fn.Scope())
	require.True(t, fn.Equals(fn))

	other := NewFunction(&testCode{name: "add", params: []string{"a", "b"}}, ScopeRef(3))
	require.False(t, fn.Equals(other))

	anon := NewFunction(&testCode{}, NoScope)
	require.Equal(t, "function(anonymous)", anon.Inspect())
}

func TestBuiltinArity(t *testing.T) {
	b := NewBuiltin("len", nil)
	min, max := b.Arity()
	require.Equal(t, 0, min)
	require.Equal(t, Variadic, max)

	b.WithArity(1, 1)
	min, max = b.Arity()
	require.Equal(t, 1, min)
	require.Equal(t, 1, max)
	require.Equal(t, "len", b.Key())
}

func TestErrorValue(t *testing.T) {
	err := NewError(errz.New(errz.TypeMismatch, "bad"))
	require.Equal(t, "bad", err.Message())
	require.Equal(t, errz.TypeMismatch, err.Kind())
	require.True(t, err.Equals(NewError(errz.New(errz.TypeMismatch, "bad"))))
	require.False(t, err.Equals(NewError(errz.New(errz.Thrown, "bad"))))

	data, jerr := err.MarshalJSON()
	require.NoError(t, jerr)
	require.JSONEq(t, `{"kind":"TypeMismatch","message":"bad"}`, string(data))
}

func TestIterate(t *testing.T) {
	collect := func(obj Object) []Object {
		it, err := Iterate(obj)
		require.NoError(t, err)
		var out []Object
		for {
			item, ok := it.Next()
			if !ok {
				return out
			}
			out = append(out, item)
		}
	}

	list := NewList([]Object{NewNumber(1), NewNumber(2)})
	require.Equal(t, []Object{NewNumber(1), NewNumber(2)}, collect(list))
	require.Equal(t, []Object{NewString("h"), NewString("é")}, collect(NewString("hé")))

	m := NewOrderedMap()
	m.Set("x", True)
	m.Set("y", False)
	require.Equal(t, []Object{NewString("x"), NewString("y")}, collect(m))

	_, err := Iterate(NewNumber(1))
	require.Equal(t, errz.TypeMismatch, errz.KindOf(err))
}

func TestIterateSnapshot(t *testing.T) {
	list := NewList([]Object{NewNumber(1)})
	it, err := Iterate(list)
	require.NoError(t, err)
	list.Append(NewNumber(2))
	_, ok := it.Next()
	require.True(t, ok)
	_, ok = it.Next()
	require.False(t, ok)
}
