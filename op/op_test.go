package op

import (
	"testing"

	"github.com/deepnoodle-ai/wonton/assert"
)

func TestGetInfo(t *testing.T) {
	info := GetInfo(DefineName)
	assert.Equal(t, info.Name, "DEFINE_NAME")
	assert.Equal(t, info.OperandCount, 2)
	assert.Equal(t, info.Code, DefineName)
}

func TestGetInfoAllOpcodes(t *testing.T) {
	tests := []struct {
		code     Code
		name     string
		operands int
	}{
		{Nop, "NOP", 0},
		{Halt, "HALT", 0},
		{Call, "CALL", 1},
		{ReturnValue, "RETURN_VALUE", 0},
		{JumpBackward, "JUMP_BACKWARD", 1},
		{JumpForward, "JUMP_FORWARD", 1},
		{PopJumpForwardIfFalse, "POP_JUMP_FORWARD_IF_FALSE", 1},
		{PopJumpForwardIfTrue, "POP_JUMP_FORWARD_IF_TRUE", 1},
		{PopJumpForwardIfNotNil, "POP_JUMP_FORWARD_IF_NOT_NIL", 1},
		{LoadAttr, "LOAD_ATTR", 1},
		{LoadName, "LOAD_NAME", 1},
		{LoadConst, "LOAD_CONST", 1},
		{StoreAttr, "STORE_ATTR", 1},
		{StoreName, "STORE_NAME", 1},
		{BinaryOp, "BINARY_OP", 1},
		{CompareOp, "COMPARE_OP", 1},
		{UnaryNegative, "UNARY_NEGATIVE", 0},
		{UnaryNot, "UNARY_NOT", 0},
		{BuildList, "BUILD_LIST", 1},
		{BuildMap, "BUILD_MAP", 1},
		{BinarySubscr, "BINARY_SUBSCR", 0},
		{StoreSubscr, "STORE_SUBSCR", 0},
		{Copy, "COPY", 1},
		{PopTop, "POP_TOP", 0},
		{Nil, "NIL", 0},
		{False, "FALSE", 0},
		{True, "TRUE", 0},
		{ForIter, "FOR_ITER", 1},
		{GetIter, "GET_ITER", 0},
		{PushScope, "PUSH_SCOPE", 0},
		{PopScope, "POP_SCOPE", 0},
		{MakeFunction, "MAKE_FUNCTION", 1},
		{PushExcept, "PUSH_EXCEPT", 1},
		{PopExcept, "POP_EXCEPT", 0},
		{Throw, "THROW", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := GetInfo(tt.code)
			assert.Equal(t, info.Code, tt.code)
			assert.Equal(t, info.Name, tt.name)
			assert.Equal(t, info.OperandCount, tt.operands)
			assert.True(t, IsValid(tt.code))
		})
	}
}

func TestGetInfoInvalid(t *testing.T) {
	info := GetInfo(Invalid)
	assert.Equal(t, info.Code, Code(0))
	assert.Equal(t, info.Name, "")
	assert.Equal(t, info.OperandCount, 0)
	assert.False(t, IsValid(Invalid))
	assert.False(t, IsValid(Code(5000)))
}

func TestBinaryOpTypeString(t *testing.T) {
	tests := []struct {
		op   BinaryOpType
		want string
	}{
		{Add, "+"},
		{Subtract, "-"},
		{Multiply, "*"},
		{Divide, "/"},
		{Modulo, "%"},
		{Power, "**"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.op.String(), tt.want)
			parsed, ok := BinaryOpFromString(tt.want)
			assert.True(t, ok)
			assert.Equal(t, parsed, tt.op)
		})
	}
	assert.Equal(t, BinaryOpType(255).String(), "")
	_, ok := BinaryOpFromString("==")
	assert.False(t, ok)
}

func TestCompareOpTypeString(t *testing.T) {
	tests := []struct {
		op   CompareOpType
		want string
	}{
		{LessThan, "<"},
		{LessThanOrEqual, "<="},
		{Equal, "=="},
		{NotEqual, "!="},
		{GreaterThan, ">"},
		{GreaterThanOrEqual, ">="},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.op.String(), tt.want)
			parsed, ok := CompareOpFromString(tt.want)
			assert.True(t, ok)
			assert.Equal(t, parsed, tt.op)
		})
	}
	assert.Equal(t, CompareOpType(255).String(), "")
	_, ok := CompareOpFromString("+")
	assert.False(t, ok)
}

func TestOpcodeConstants(t *testing.T) {
	// Opcode values are part of the serialized bytecode format.
	assert.Equal(t, Invalid, Code(0))
	assert.Equal(t, Nop, Code(1))
	assert.Equal(t, Halt, Code(2))
	assert.Equal(t, Call, Code(3))
	assert.Equal(t, ReturnValue, Code(4))
	assert.Equal(t, JumpBackward, Code(10))
	assert.Equal(t, LoadAttr, Code(20))
	assert.Equal(t, StoreAttr, Code(30))
	assert.Equal(t, BinaryOp, Code(40))
	assert.Equal(t, BuildList, Code(50))
	assert.Equal(t, BinarySubscr, Code(60))
	assert.Equal(t, Nil, Code(80))
	assert.Equal(t, ForIter, Code(90))
	assert.Equal(t, PushScope, Code(100))
	assert.Equal(t, MakeFunction, Code(120))
	assert.Equal(t, PushExcept, Code(140))
}
