package op

import "fmt"

// variableStackEffect marks opcodes whose effect depends on the operand.
const variableStackEffect = 0x7f

// stackEffect records the effect on the size of the operand stack of each
// opcode. Operand-dependent opcodes are computed by StackEffect.
var stackEffect = [256]int8{
	Nop:      0,
	PopTop:   -1,
	RotTwo:   0,
	RotThree: 0,
	RotFour:  0,
	DupTop:   +1,
	DupTopX:  variableStackEffect,

	UnaryPositive: 0,
	UnaryNegative: 0,
	UnaryNot:      0,
	UnaryInvert:   0,

	BinaryPower:        -1,
	BinaryMultiply:     -1,
	BinaryDivide:       -1,
	BinaryModulo:       -1,
	BinaryAdd:          -1,
	BinarySubtract:     -1,
	BinarySubscr:       -1,
	BinaryFloorDivide:  -1,
	BinaryTrueDivide:   -1,
	BinaryLShift:       -1,
	BinaryRShift:       -1,
	BinaryAnd:          -1,
	BinaryXor:          -1,
	BinaryOr:           -1,
	InplaceFloorDivide: -1,
	InplaceTrueDivide:  -1,
	InplaceAdd:         -1,
	InplaceSubtract:    -1,
	InplaceMultiply:    -1,
	InplaceDivide:      -1,
	InplaceModulo:      -1,
	InplacePower:       -1,
	InplaceLShift:      -1,
	InplaceRShift:      -1,
	InplaceAnd:         -1,
	InplaceXor:         -1,
	InplaceOr:          -1,

	Slice0:       0,
	Slice1:       -1,
	Slice2:       -1,
	Slice3:       -2,
	StoreSlice0:  -2,
	StoreSlice1:  -3,
	StoreSlice2:  -3,
	StoreSlice3:  -4,
	DeleteSlice0: -1,
	DeleteSlice1: -2,
	DeleteSlice2: -2,
	DeleteSlice3: -3,
	BuildSlice:   variableStackEffect,

	StoreMap:     -2,
	StoreSubscr:  -3,
	DeleteSubscr: -2,
	ListAppend:   -1,
	SetAdd:       -1,
	MapAdd:       -2,
	BuildTuple:   variableStackEffect,
	BuildList:    variableStackEffect,
	BuildSet:     variableStackEffect,
	BuildMap:     +1,

	GetIter:      0,
	ForIter:      +1,
	BreakLoop:    0,
	ContinueLoop: 0,
	SetupLoop:    0,
	SetupExcept:  0,
	SetupFinally: 0,
	SetupWith:    +1,
	WithCleanup:  -1,
	PopBlock:     0,
	EndFinally:   -3,

	LoadLocals:   +1,
	ReturnValue:  -1,
	ImportStar:   -1,
	YieldValue:   0,
	BuildClass:   -2,
	RaiseVarargs: variableStackEffect,

	StoreName:    -1,
	DeleteName:   0,
	StoreAttr:    -2,
	DeleteAttr:   -1,
	StoreGlobal:  -1,
	DeleteGlobal: 0,
	LoadConst:    +1,
	LoadName:     +1,
	LoadAttr:     0,
	LoadGlobal:   +1,
	LoadFast:     +1,
	StoreFast:    -1,
	DeleteFast:   0,
	LoadClosure:  +1,
	LoadDeref:    +1,
	StoreDeref:   -1,

	UnpackSequence: variableStackEffect,

	CompareOp:  -1,
	ImportName: -1,
	ImportFrom: +1,

	JumpForward:      0,
	JumpAbsolute:     0,
	JumpIfFalseOrPop: 0, // the fallthrough edge pops; see the stack-depth walk
	JumpIfTrueOrPop:  0,
	PopJumpIfFalse:   -1,
	PopJumpIfTrue:    -1,

	CallFunction:      variableStackEffect,
	CallFunctionVar:   variableStackEffect,
	CallFunctionKw:    variableStackEffect,
	CallFunctionVarKw: variableStackEffect,
	MakeFunction:      variableStackEffect,
	MakeClosure:       variableStackEffect,

	ExtendedArg: 0,
}

// numArgs unpacks the argument count of a call: the low byte holds the
// positional count and the next byte the keyword count. Each keyword
// argument occupies two stack slots (name and value).
func numArgs(arg uint32) int {
	return int(arg&0xff) + 2*int((arg>>8)&0xff)
}

// StackEffect returns the net change in operand stack depth caused by
// executing the given opcode with the given operand. It panics on an unknown
// opcode, which can only be produced by a defect in the compiler.
func StackEffect(c Code, arg uint32) int {
	if !IsValid(c) {
		panic(fmt.Sprintf("stack effect of unknown opcode %d", c))
	}
	effect := stackEffect[c]
	if effect != variableStackEffect {
		return int(effect)
	}
	n := int(arg)
	switch c {
	case BuildTuple, BuildList, BuildSet:
		return 1 - n
	case UnpackSequence:
		return n - 1
	case DupTopX:
		return n
	case CallFunction:
		return -numArgs(arg)
	case CallFunctionVar, CallFunctionKw:
		return -numArgs(arg) - 1
	case CallFunctionVarKw:
		return -numArgs(arg) - 2
	case MakeFunction:
		return -n
	case MakeClosure:
		return -n - 1
	case BuildSlice:
		if n == 3 {
			return -2
		}
		return -1
	case RaiseVarargs:
		return -n
	}
	panic(fmt.Sprintf("missing stack effect formula for %s", c))
}
