package op

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEveryOpcodeHasAnEffect(t *testing.T) {
	for i := 0; i < 256; i++ {
		c := Code(i)
		if !IsValid(c) {
			continue
		}
		require.NotPanics(t, func() { StackEffect(c, 2) }, c.String())
	}
}

func TestConstantEffects(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{LoadConst, 1},
		{PopTop, -1},
		{BinaryAdd, -1},
		{StoreSubscr, -3},
		{StoreAttr, -2},
		{ForIter, 1},
		{EndFinally, -3},
		{SetupWith, 1},
		{WithCleanup, -1},
		{ReturnValue, -1},
		{BuildMap, 1},
		{StoreMap, -2},
		{Slice3, -2},
		{StoreSlice3, -4},
		{DeleteSlice0, -1},
		{JumpIfTrueOrPop, 0},
	}
	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			require.Equal(t, tt.want, StackEffect(tt.code, 0))
			// Constant effects ignore the operand.
			require.Equal(t, tt.want, StackEffect(tt.code, 77))
		})
	}
}

func TestVariableEffects(t *testing.T) {
	tests := []struct {
		name string
		code Code
		arg  uint32
		want int
	}{
		{"empty tuple", BuildTuple, 0, 1},
		{"tuple of 3", BuildTuple, 3, -2},
		{"list of 1", BuildList, 1, 0},
		{"set of 4", BuildSet, 4, -3},
		{"unpack 3", UnpackSequence, 3, 2},
		{"unpack 1", UnpackSequence, 1, 0},
		{"dup 2", DupTopX, 2, 2},
		{"call 2 positional", CallFunction, 2, -2},
		{"call 1 positional 2 keyword", CallFunction, 1 | 2<<8, -5},
		{"call var", CallFunctionVar, 1, -2},
		{"call kw", CallFunctionKw, 0 | 1<<8, -3},
		{"call var kw", CallFunctionVarKw, 2, -4},
		{"function 2 defaults", MakeFunction, 2, -2},
		{"closure 0 defaults", MakeClosure, 0, -1},
		{"closure 2 defaults", MakeClosure, 2, -3},
		{"slice 2", BuildSlice, 2, -1},
		{"slice 3", BuildSlice, 3, -2},
		{"raise 0", RaiseVarargs, 0, 0},
		{"raise 3", RaiseVarargs, 3, -3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, StackEffect(tt.code, tt.arg))
		})
	}
}

func TestUnknownOpcodePanics(t *testing.T) {
	require.Panics(t, func() { StackEffect(Code(0), 0) })
}
