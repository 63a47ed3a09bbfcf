// Package op defines the opcodes emitted by the compiler and consumed by the
// interpreter, together with their encoding rules and stack effects.
package op

// Code is an opcode that indicates an operation to execute. Opcodes below
// HaveArgument are encoded as a single byte. Opcodes at or above it carry a
// 16-bit little-endian operand, optionally widened by ExtendedArg.
type Code uint8

const (
	// Stack
	PopTop      Code = 1
	RotTwo      Code = 2
	RotThree    Code = 3
	DupTop      Code = 4
	RotFour     Code = 5
	Nop         Code = 9
	DupTopX     Code = 99
	ExtendedArg Code = 145 // widening prefix for operands above 0xFFFF

	// Unary
	UnaryPositive Code = 10
	UnaryNegative Code = 11
	UnaryNot      Code = 12
	UnaryInvert   Code = 15

	// Binary
	BinaryPower        Code = 19
	BinaryMultiply     Code = 20
	BinaryDivide       Code = 21
	BinaryModulo       Code = 22
	BinaryAdd          Code = 23
	BinarySubtract     Code = 24
	BinarySubscr       Code = 25
	BinaryFloorDivide  Code = 26
	BinaryTrueDivide   Code = 27
	BinaryLShift       Code = 62
	BinaryRShift       Code = 63
	BinaryAnd          Code = 64
	BinaryXor          Code = 65
	BinaryOr           Code = 66
	InplaceFloorDivide Code = 28
	InplaceTrueDivide  Code = 29
	InplaceAdd         Code = 55
	InplaceSubtract    Code = 56
	InplaceMultiply    Code = 57
	InplaceDivide      Code = 58
	InplaceModulo      Code = 59
	InplacePower       Code = 67
	InplaceLShift      Code = 75
	InplaceRShift      Code = 76
	InplaceAnd         Code = 77
	InplaceXor         Code = 78
	InplaceOr          Code = 79

	// Slices. The suffix encodes which bounds are present: +1 lower,
	// +2 upper, +3 both.
	Slice0       Code = 30
	Slice1       Code = 31
	Slice2       Code = 32
	Slice3       Code = 33
	StoreSlice0  Code = 40
	StoreSlice1  Code = 41
	StoreSlice2  Code = 42
	StoreSlice3  Code = 43
	DeleteSlice0 Code = 50
	DeleteSlice1 Code = 51
	DeleteSlice2 Code = 52
	DeleteSlice3 Code = 53
	BuildSlice   Code = 133

	// Containers
	StoreMap     Code = 54
	StoreSubscr  Code = 60
	DeleteSubscr Code = 61
	ListAppend   Code = 94
	BuildTuple   Code = 102
	BuildList    Code = 103
	BuildSet     Code = 104
	BuildMap     Code = 105
	SetAdd       Code = 146
	MapAdd       Code = 147

	// Iteration and blocks
	GetIter      Code = 68
	BreakLoop    Code = 80
	WithCleanup  Code = 81
	PopBlock     Code = 87
	EndFinally   Code = 88
	ForIter      Code = 93
	ContinueLoop Code = 119
	SetupLoop    Code = 120
	SetupExcept  Code = 121
	SetupFinally Code = 122
	SetupWith    Code = 143

	// Execution
	LoadLocals   Code = 82
	ReturnValue  Code = 83
	ImportStar   Code = 84
	YieldValue   Code = 86
	BuildClass   Code = 89
	RaiseVarargs Code = 130

	// Names
	StoreName    Code = 90
	DeleteName   Code = 91
	StoreAttr    Code = 95
	DeleteAttr   Code = 96
	StoreGlobal  Code = 97
	DeleteGlobal Code = 98
	LoadConst    Code = 100
	LoadName     Code = 101
	LoadAttr     Code = 106
	LoadGlobal   Code = 116
	LoadFast     Code = 124
	StoreFast    Code = 125
	DeleteFast   Code = 126
	LoadClosure  Code = 135
	LoadDeref    Code = 136
	StoreDeref   Code = 137

	// Sequences
	UnpackSequence Code = 92

	// Comparison and imports
	CompareOp  Code = 107
	ImportName Code = 108
	ImportFrom Code = 109

	// Jumps
	JumpForward      Code = 110
	JumpIfFalseOrPop Code = 111
	JumpIfTrueOrPop  Code = 112
	JumpAbsolute     Code = 113
	PopJumpIfFalse   Code = 114
	PopJumpIfTrue    Code = 115

	// Calls and functions
	CallFunction      Code = 131
	MakeFunction      Code = 132
	MakeClosure       Code = 134
	CallFunctionVar   Code = 140
	CallFunctionKw    Code = 141
	CallFunctionVarKw Code = 142
)

// HaveArgument is the first opcode that carries an operand.
const HaveArgument Code = 90

// HasArg returns true if the opcode is followed by an operand.
func (c Code) HasArg() bool {
	return c >= HaveArgument
}

// String returns the opcode name, e.g. "LOAD_CONST".
func (c Code) String() string {
	if name := infos[c].Name; name != "" {
		return name
	}
	return "<invalid>"
}

// CompareOpType is the operand of CompareOp.
type CompareOpType uint32

const (
	LessThan           CompareOpType = 0
	LessThanOrEqual    CompareOpType = 1
	Equal              CompareOpType = 2
	NotEqual           CompareOpType = 3
	GreaterThan        CompareOpType = 4
	GreaterThanOrEqual CompareOpType = 5
	In                 CompareOpType = 6
	NotIn              CompareOpType = 7
	Is                 CompareOpType = 8
	IsNot              CompareOpType = 9
	ExceptionMatch     CompareOpType = 10
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
	case In:
		return "in"
	case NotIn:
		return "not in"
	case Is:
		return "is"
	case IsNot:
		return "is not"
	case ExceptionMatch:
		return "exception match"
	default:
		return ""
	}
}

// Info contains information about an opcode.
type Info struct {
	Code Code
	Name string
	// Jump is set for opcodes whose operand is a code offset.
	Jump bool
	// Absolute is set for jumps whose operand is an absolute offset rather
	// than a delta from the end of the instruction.
	Absolute bool
}

var infos [256]Info

func init() {
	type opInfo struct {
		op   Code
		name string
	}
	ops := []opInfo{
		{PopTop, "POP_TOP"},
		{RotTwo, "ROT_TWO"},
		{RotThree, "ROT_THREE"},
		{DupTop, "DUP_TOP"},
		{RotFour, "ROT_FOUR"},
		{Nop, "NOP"},
		{UnaryPositive, "UNARY_POSITIVE"},
		{UnaryNegative, "UNARY_NEGATIVE"},
		{UnaryNot, "UNARY_NOT"},
		{UnaryInvert, "UNARY_INVERT"},
		{BinaryPower, "BINARY_POWER"},
		{BinaryMultiply, "BINARY_MULTIPLY"},
		{BinaryDivide, "BINARY_DIVIDE"},
		{BinaryModulo, "BINARY_MODULO"},
		{BinaryAdd, "BINARY_ADD"},
		{BinarySubtract, "BINARY_SUBTRACT"},
		{BinarySubscr, "BINARY_SUBSCR"},
		{BinaryFloorDivide, "BINARY_FLOOR_DIVIDE"},
		{BinaryTrueDivide, "BINARY_TRUE_DIVIDE"},
		{InplaceFloorDivide, "INPLACE_FLOOR_DIVIDE"},
		{InplaceTrueDivide, "INPLACE_TRUE_DIVIDE"},
		{Slice0, "SLICE+0"},
		{Slice1, "SLICE+1"},
		{Slice2, "SLICE+2"},
		{Slice3, "SLICE+3"},
		{StoreSlice0, "STORE_SLICE+0"},
		{StoreSlice1, "STORE_SLICE+1"},
		{StoreSlice2, "STORE_SLICE+2"},
		{StoreSlice3, "STORE_SLICE+3"},
		{DeleteSlice0, "DELETE_SLICE+0"},
		{DeleteSlice1, "DELETE_SLICE+1"},
		{DeleteSlice2, "DELETE_SLICE+2"},
		{DeleteSlice3, "DELETE_SLICE+3"},
		{StoreMap, "STORE_MAP"},
		{InplaceAdd, "INPLACE_ADD"},
		{InplaceSubtract, "INPLACE_SUBTRACT"},
		{InplaceMultiply, "INPLACE_MULTIPLY"},
		{InplaceDivide, "INPLACE_DIVIDE"},
		{InplaceModulo, "INPLACE_MODULO"},
		{StoreSubscr, "STORE_SUBSCR"},
		{DeleteSubscr, "DELETE_SUBSCR"},
		{BinaryLShift, "BINARY_LSHIFT"},
		{BinaryRShift, "BINARY_RSHIFT"},
		{BinaryAnd, "BINARY_AND"},
		{BinaryXor, "BINARY_XOR"},
		{BinaryOr, "BINARY_OR"},
		{InplacePower, "INPLACE_POWER"},
		{GetIter, "GET_ITER"},
		{InplaceLShift, "INPLACE_LSHIFT"},
		{InplaceRShift, "INPLACE_RSHIFT"},
		{InplaceAnd, "INPLACE_AND"},
		{InplaceXor, "INPLACE_XOR"},
		{InplaceOr, "INPLACE_OR"},
		{BreakLoop, "BREAK_LOOP"},
		{WithCleanup, "WITH_CLEANUP"},
		{LoadLocals, "LOAD_LOCALS"},
		{ReturnValue, "RETURN_VALUE"},
		{ImportStar, "IMPORT_STAR"},
		{YieldValue, "YIELD_VALUE"},
		{PopBlock, "POP_BLOCK"},
		{EndFinally, "END_FINALLY"},
		{BuildClass, "BUILD_CLASS"},
		{StoreName, "STORE_NAME"},
		{DeleteName, "DELETE_NAME"},
		{UnpackSequence, "UNPACK_SEQUENCE"},
		{ForIter, "FOR_ITER"},
		{ListAppend, "LIST_APPEND"},
		{StoreAttr, "STORE_ATTR"},
		{DeleteAttr, "DELETE_ATTR"},
		{StoreGlobal, "STORE_GLOBAL"},
		{DeleteGlobal, "DELETE_GLOBAL"},
		{DupTopX, "DUP_TOPX"},
		{LoadConst, "LOAD_CONST"},
		{LoadName, "LOAD_NAME"},
		{BuildTuple, "BUILD_TUPLE"},
		{BuildList, "BUILD_LIST"},
		{BuildSet, "BUILD_SET"},
		{BuildMap, "BUILD_MAP"},
		{LoadAttr, "LOAD_ATTR"},
		{CompareOp, "COMPARE_OP"},
		{ImportName, "IMPORT_NAME"},
		{ImportFrom, "IMPORT_FROM"},
		{JumpForward, "JUMP_FORWARD"},
		{JumpIfFalseOrPop, "JUMP_IF_FALSE_OR_POP"},
		{JumpIfTrueOrPop, "JUMP_IF_TRUE_OR_POP"},
		{JumpAbsolute, "JUMP_ABSOLUTE"},
		{PopJumpIfFalse, "POP_JUMP_IF_FALSE"},
		{PopJumpIfTrue, "POP_JUMP_IF_TRUE"},
		{LoadGlobal, "LOAD_GLOBAL"},
		{ContinueLoop, "CONTINUE_LOOP"},
		{SetupLoop, "SETUP_LOOP"},
		{SetupExcept, "SETUP_EXCEPT"},
		{SetupFinally, "SETUP_FINALLY"},
		{LoadFast, "LOAD_FAST"},
		{StoreFast, "STORE_FAST"},
		{DeleteFast, "DELETE_FAST"},
		{RaiseVarargs, "RAISE_VARARGS"},
		{CallFunction, "CALL_FUNCTION"},
		{MakeFunction, "MAKE_FUNCTION"},
		{BuildSlice, "BUILD_SLICE"},
		{MakeClosure, "MAKE_CLOSURE"},
		{LoadClosure, "LOAD_CLOSURE"},
		{LoadDeref, "LOAD_DEREF"},
		{StoreDeref, "STORE_DEREF"},
		{CallFunctionVar, "CALL_FUNCTION_VAR"},
		{CallFunctionKw, "CALL_FUNCTION_KW"},
		{CallFunctionVarKw, "CALL_FUNCTION_VAR_KW"},
		{SetupWith, "SETUP_WITH"},
		{ExtendedArg, "EXTENDED_ARG"},
		{SetAdd, "SET_ADD"},
		{MapAdd, "MAP_ADD"},
	}
	for _, o := range ops {
		infos[o.op] = Info{Code: o.op, Name: o.name}
	}
	// Relative jumps encode the distance from the end of the instruction.
	for _, c := range []Code{JumpForward, ForIter, SetupLoop, SetupExcept, SetupFinally, SetupWith} {
		infos[c].Jump = true
	}
	for _, c := range []Code{JumpAbsolute, JumpIfFalseOrPop, JumpIfTrueOrPop, PopJumpIfFalse, PopJumpIfTrue, ContinueLoop} {
		infos[c].Jump = true
		infos[c].Absolute = true
	}
}

// GetInfo returns information about the given opcode.
func GetInfo(c Code) Info {
	return infos[c]
}

// IsValid returns true if c is a known opcode.
func IsValid(c Code) bool {
	return infos[c].Name != ""
}

// IsJump returns true if the operand of c is a code offset.
func IsJump(c Code) bool {
	return infos[c].Jump
}

// IsAbsoluteJump returns true if c jumps to an absolute code offset.
func IsAbsoluteJump(c Code) bool {
	return infos[c].Absolute
}

// IsUnconditionalJump returns true for jumps that never fall through.
func IsUnconditionalJump(c Code) bool {
	return c == JumpForward || c == JumpAbsolute
}

// IsTerminal returns true for instructions after which control never
// reaches the next instruction in the same block.
func IsTerminal(c Code) bool {
	return c == ReturnValue || c == RaiseVarargs || IsUnconditionalJump(c)
}
