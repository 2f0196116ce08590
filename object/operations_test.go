package object

import (
	"math"
	"testing"

	"github.com/safescript/safescript/errz"
	"github.com/safescript/safescript/op"
	"github.com/stretchr/testify/require"
)

func num(v float64) *Number { return NewNumber(v) }

func str(s string) *String { return NewString(s) }

func TestBinaryOp(t *testing.T) {
	tests := []struct {
		op   op.BinaryOpType
		a, b Object
		want Object
	}{
		{op.Add, num(1), num(2), num(3)},
		{op.Subtract, num(1), num(2), num(-1)},
		{op.Multiply, num(3), num(4), num(12)},
		{op.Divide, num(1), num(4), num(0.25)},
		{op.Modulo, num(7), num(3), num(1)},
		{op.Modulo, num(-7), num(3), num(-1)},
		{op.Power, num(2), num(10), num(1024)},
		{op.Add, str("a"), str("b"), str("ab")},
		{op.Add, NewList([]Object{num(1)}), NewList([]Object{num(2)}), NewList([]Object{num(1), num(2)})},
	}
	for _, tt := range tests {
		t.Run(tt.op.String(), func(t *testing.T) {
			got, err := BinaryOp(tt.op, tt.a, tt.b)
			require.NoError(t, err)
			require.True(t, Equals(got, tt.want), "got %s", got.Inspect())
		})
	}
}

func TestDivisionByZero(t *testing.T) {
	got, err := BinaryOp(op.Divide, num(1), num(0))
	require.NoError(t, err)
	require.True(t, math.IsInf(got.(*Number).Value(), 1))

	got, err = BinaryOp(op.Divide, num(0), num(0))
	require.NoError(t, err)
	require.True(t, math.IsNaN(got.(*Number).Value()))
}

func TestBinaryOpTypeMismatch(t *testing.T) {
	tests := []struct {
		op   op.BinaryOpType
		a, b Object
		msg  string
	}{
		{op.Add, num(1), str("a"), "unsupported operand types for +: number and string"},
		{op.Subtract, str("a"), str("b"), "unsupported operand types for -: string and string"},
		{op.Multiply, NewList(nil), num(2), "unsupported operand types for *: list and number"},
		{op.Add, Nil, Nil, "unsupported operand types for +: nil and nil"},
	}
	for _, tt := range tests {
		_, err := BinaryOp(tt.op, tt.a, tt.b)
		e, ok := errz.As(err)
		require.True(t, ok)
		require.Equal(t, errz.TypeMismatch, e.Kind)
		require.Equal(t, tt.msg, e.Message)
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		op   op.CompareOpType
		a, b Object
		want bool
	}{
		{op.LessThan, num(1), num(2), true},
		{op.GreaterThanOrEqual, num(2), num(2), true},
		{op.LessThan, str("a"), str("b"), true},
		{op.GreaterThan, str("a"), str("b"), false},
		{op.LessThan, num(math.NaN()), num(1), false},
		{op.Equal, num(1), num(1), true},
		{op.Equal, num(1), str("1"), false},
		{op.NotEqual, Nil, False, true},
		{op.Equal, NewList([]Object{num(1)}), NewList([]Object{num(1)}), true},
		{op.Equal, num(math.NaN()), num(math.NaN()), false},
	}
	for _, tt := range tests {
		got, err := Compare(tt.op, tt.a, tt.b)
		require.NoError(t, err)
		require.Equal(t, NewBool(tt.want), got, "%s %s %s", tt.a.Inspect(), tt.op, tt.b.Inspect())
	}

	_, err := Compare(op.LessThan, num(1), str("a"))
	require.Equal(t, errz.TypeMismatch, errz.KindOf(err))
	_, err = Compare(op.GreaterThan, Nil, Nil)
	require.Equal(t, errz.TypeMismatch, errz.KindOf(err))
}

func TestDeepEquality(t *testing.T) {
	a := NewOrderedMap()
	a.Set("x", NewList([]Object{num(1), str("two")}))
	a.Set("y", Nil)
	b := NewOrderedMap()
	b.Set("y", Nil)
	b.Set("x", NewList([]Object{num(1), str("two")}))
	require.True(t, Equals(a, b))

	b.Set("z", True)
	require.False(t, Equals(a, b))
	require.False(t, Equals(NewList(nil), NewOrderedMap()))
	require.True(t, Equals(nil, Nil))
}

func TestNegateAndNot(t *testing.T) {
	got, err := Negate(num(3))
	require.NoError(t, err)
	require.Equal(t, num(-3), got)

	_, err = Negate(str("x"))
	require.Equal(t, errz.TypeMismatch, errz.KindOf(err))

	require.Equal(t, True, Not(num(0)))
	require.Equal(t, False, Not(str("x")))
	require.Equal(t, True, Not(nil))
}

func TestGetItem(t *testing.T) {
	list := NewList([]Object{str("a"), str("b")})
	got, err := GetItem(list, num(1))
	require.NoError(t, err)
	require.Equal(t, str("b"), got)

	_, err = GetItem(list, num(2))
	require.Equal(t, errz.IndexOutOfRange, errz.KindOf(err))
	_, err = GetItem(list, num(-1))
	require.Equal(t, errz.IndexOutOfRange, errz.KindOf(err))
	_, err = GetItem(list, num(0.5))
	require.Equal(t, errz.TypeMismatch, errz.KindOf(err))
	_, err = GetItem(list, str("0"))
	require.Equal(t, errz.TypeMismatch, errz.KindOf(err))

	got, err = GetItem(str("héllo"), num(1))
	require.NoError(t, err)
	require.Equal(t, str("é"), got)

	m := NewMap(map[string]Object{"k": num(1)})
	got, err = GetItem(m, str("k"))
	require.NoError(t, err)
	require.Equal(t, num(1), got)
	got, err = GetItem(m, str("missing"))
	require.NoError(t, err)
	require.Equal(t, Nil, got)
	_, err = GetItem(m, num(1))
	require.Equal(t, errz.TypeMismatch, errz.KindOf(err))

	_, err = GetItem(num(1), num(0))
	require.Equal(t, errz.TypeMismatch, errz.KindOf(err))
}

func TestSetItem(t *testing.T) {
	list := NewList([]Object{num(1)})
	require.NoError(t, SetItem(list, num(0), num(5)))
	require.Equal(t, num(5), list.Value()[0])
	require.Equal(t, errz.IndexOutOfRange, errz.KindOf(SetItem(list, num(1), num(5))))

	m := NewOrderedMap()
	require.NoError(t, SetItem(m, str("k"), True))
	require.Equal(t, True, m.Get("k"))

	require.Equal(t, errz.TypeMismatch, errz.KindOf(SetItem(str("abc"), num(0), str("x"))))
}

func TestGetAttr(t *testing.T) {
	got, err := GetAttr(NewList([]Object{num(1), num(2)}), "length")
	require.NoError(t, err)
	require.Equal(t, num(2), got)

	got, err = GetAttr(str("héllo"), "length")
	require.NoError(t, err)
	require.Equal(t, num(5), got)

	got, err = GetAttr(NewOrderedMap(), "missing")
	require.NoError(t, err)
	require.Equal(t, Nil, got)

	e := NewError(errz.New(errz.TypeMismatch, "bad"))
	got, err = GetAttr(e, "message")
	require.NoError(t, err)
	require.Equal(t, str("bad"), got)
	got, err = GetAttr(e, "kind")
	require.NoError(t, err)
	require.Equal(t, str("TypeMismatch"), got)

	mod := NewModule("ops", map[string]Object{"add": NewBuiltin("add", nil)})
	got, err = GetAttr(mod, "add")
	require.NoError(t, err)
	require.Equal(t, BUILTIN, got.Type())
	_, err = GetAttr(mod, "nope")
	require.Equal(t, errz.UndefinedIdentifier, errz.KindOf(err))

	_, err = GetAttr(Nil, "x")
	require.Equal(t, errz.TypeMismatch, errz.KindOf(err))
	_, err = GetAttr(NewList(nil), "push")
	require.Equal(t, errz.TypeMismatch, errz.KindOf(err))
}

func TestSetAttr(t *testing.T) {
	m := NewOrderedMap()
	require.NoError(t, SetAttr(m, "x", num(1)))
	require.Equal(t, num(1), m.Get("x"))

	mod := NewModule("ops", nil)
	require.Equal(t, errz.ConstAssignment, errz.KindOf(SetAttr(mod, "x", Nil)))
	require.Equal(t, errz.TypeMismatch, errz.KindOf(SetAttr(NewList(nil), "length", num(0))))
}

func TestLen(t *testing.T) {
	n, err := Len(str("abc"))
	require.NoError(t, err)
	require.Equal(t, 3, n)
	_, err = Len(num(1))
	require.Equal(t, errz.TypeMismatch, errz.KindOf(err))
}
