// Package op defines opcodes used by the SafeScript compiler and virtual machine.
package op

// Code is an integer opcode that indicates an operation to execute.
type Code uint16

const (
	Invalid Code = 0

	// Execution
	Nop         Code = 1
	Halt        Code = 2
	Call        Code = 3
	ReturnValue Code = 4

	// Jump
	JumpBackward           Code = 10
	JumpForward            Code = 11
	PopJumpForwardIfFalse  Code = 12
	PopJumpForwardIfTrue   Code = 13
	PopJumpForwardIfNotNil Code = 14

	// Load
	LoadAttr  Code = 20
	LoadName  Code = 21
	LoadConst Code = 24

	// Store
	StoreAttr  Code = 30
	StoreName  Code = 31
	DefineName Code = 32

	// Operations
	BinaryOp      Code = 40
	CompareOp     Code = 41
	UnaryNegative Code = 42
	UnaryNot      Code = 43

	// Build
	BuildList Code = 50
	BuildMap  Code = 51

	// Containers
	BinarySubscr Code = 60
	StoreSubscr  Code = 61

	// Stack
	Copy   Code = 71
	PopTop Code = 72

	// Push constants
	Nil   Code = 80
	False Code = 81
	True  Code = 82

	// Iteration
	ForIter Code = 90
	GetIter Code = 91

	// Scopes
	PushScope Code = 100
	PopScope  Code = 101

	// Closures
	MakeFunction Code = 120

	// Exception handling
	PushExcept Code = 140 // Push exception handler: operand1=handler index
	PopExcept  Code = 141 // Pop exception handler (normal try completion)
	Throw      Code = 142 // Throw TOS as exception
)

// DefineName flags.
const (
	DefineLet   uint16 = 0
	DefineConst uint16 = 1
)

// BinaryOpType describes a type of binary operation, as in an operation that
// takes two operands. For example, addition, subtraction, multiplication, etc.
type BinaryOpType uint16

const (
	Add      BinaryOpType = 1
	Subtract BinaryOpType = 2
	Multiply BinaryOpType = 3
	Divide   BinaryOpType = 4
	Modulo   BinaryOpType = 5
	Power    BinaryOpType = 9
)

// String returns a string representation of the binary operation.
// For example "+" for addition.
func (bop BinaryOpType) String() string {
	switch bop {
	case Add:
		return "+"
	case Subtract:
		return "-"
	case Multiply:
		return "*"
	case Divide:
		return "/"
	case Modulo:
		return "%"
	case Power:
		return "**"
	default:
		return ""
	}
}

// BinaryOpFromString returns the operation for an infix operator such as
// "+". The second return value is false for operators that are not
// arithmetic.
func BinaryOpFromString(s string) (BinaryOpType, bool) {
	switch s {
	case "+":
		return Add, true
	case "-":
		return Subtract, true
	case "*":
		return Multiply, true
	case "/":
		return Divide, true
	case "%":
		return Modulo, true
	case "**":
		return Power, true
	}
	return 0, false
}

// CompareOpType describes a type of comparison operation. For example, less
// than, greater than, equal, etc.
type CompareOpType uint16

const (
	LessThan           CompareOpType = 1
	LessThanOrEqual    CompareOpType = 2
	Equal              CompareOpType = 3
	NotEqual           CompareOpType = 4
	GreaterThan        CompareOpType = 5
	GreaterThanOrEqual CompareOpType = 6
)

// String returns a string representation of the comparison operation.
// For example "<" for less than.
func (cop CompareOpType) String() string {
	switch cop {
	case LessThan:
		return "<"
	case LessThanOrEqual:
		return "<="
	case Equal:
		return "=="
	case NotEqual:
		return "!="
	case GreaterThan:
		return ">"
	case GreaterThanOrEqual:
		return ">="
	default:
		return ""
	}
}

// CompareOpFromString is the comparison counterpart of BinaryOpFromString.
func CompareOpFromString(s string) (CompareOpType, bool) {
	switch s {
	case "<":
		return LessThan, true
	case "<=":
		return LessThanOrEqual, true
	case "==":
		return Equal, true
	case "!=":
		return NotEqual, true
	case ">":
		return GreaterThan, true
	case ">=":
		return GreaterThanOrEqual, true
	}
	return 0, false
}

// Info contains information about an opcode.
type Info struct {
	Code         Code
	Name         string
	OperandCount int
}

var infos = make([]Info, 256)

func init() {
	type opInfo struct {
		op    Code
		name  string
		count int
	}
	ops := []opInfo{
		{BinaryOp, "BINARY_OP", 1},
		{BinarySubscr, "BINARY_SUBSCR", 0},
		{BuildList, "BUILD_LIST", 1},
		{BuildMap, "BUILD_MAP", 1},
		{Call, "CALL", 1},
		{CompareOp, "COMPARE_OP", 1},
		{Copy, "COPY", 1},
		{DefineName, "DEFINE_NAME", 2},
		{False, "FALSE", 0},
		{ForIter, "FOR_ITER", 1},
		{GetIter, "GET_ITER", 0},
		{Halt, "HALT", 0},
		{JumpBackward, "JUMP_BACKWARD", 1},
		{JumpForward, "JUMP_FORWARD", 1},
		{LoadAttr, "LOAD_ATTR", 1},
		{LoadConst, "LOAD_CONST", 1},
		{LoadName, "LOAD_NAME", 1},
		{MakeFunction, "MAKE_FUNCTION", 1},
		{Nil, "NIL", 0},
		{Nop, "NOP", 0},
		{PopJumpForwardIfFalse, "POP_JUMP_FORWARD_IF_FALSE", 1},
		{PopJumpForwardIfNotNil, "POP_JUMP_FORWARD_IF_NOT_NIL", 1},
		{PopJumpForwardIfTrue, "POP_JUMP_FORWARD_IF_TRUE", 1},
		{PopScope, "POP_SCOPE", 0},
		{PopTop, "POP_TOP", 0},
		{PushScope, "PUSH_SCOPE", 0},
		{ReturnValue, "RETURN_VALUE", 0},
		{StoreAttr, "STORE_ATTR", 1},
		{StoreName, "STORE_NAME", 1},
		{StoreSubscr, "STORE_SUBSCR", 0},
		{True, "TRUE", 0},
		{UnaryNegative, "UNARY_NEGATIVE", 0},
		{UnaryNot, "UNARY_NOT", 0},
		{PushExcept, "PUSH_EXCEPT", 1},
		{PopExcept, "POP_EXCEPT", 0},
		{Throw, "THROW", 0},
	}
	for _, o := range ops {
		infos[o.op] = Info{
			Name:         o.name,
			Code:         o.op,
			OperandCount: o.count,
		}
	}
}

// GetInfo returns information about the given opcode.
func GetInfo(op Code) Info {
	if int(op) >= len(infos) {
		return Info{}
	}
	return infos[op]
}

// IsValid returns true if the opcode is known.
func IsValid(op Code) bool {
	return GetInfo(op).Name != ""
}
