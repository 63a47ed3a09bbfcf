package op

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetInfo(t *testing.T) {
	info := GetInfo(LoadClosure)
	require.Equal(t, "LOAD_CLOSURE", info.Name)
	require.Equal(t, LoadClosure, info.Code)
	require.False(t, info.Jump)
}

func TestHasArg(t *testing.T) {
	tests := []struct {
		code Code
		want bool
	}{
		{PopTop, false},
		{ReturnValue, false},
		{BuildClass, false},
		{StoreName, true},
		{LoadConst, true},
		{ExtendedArg, true},
	}
	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			require.Equal(t, tt.want, tt.code.HasArg())
		})
	}
}

func TestJumpClassification(t *testing.T) {
	relative := []Code{JumpForward, ForIter, SetupLoop, SetupExcept, SetupFinally, SetupWith}
	absolute := []Code{JumpAbsolute, JumpIfFalseOrPop, JumpIfTrueOrPop, PopJumpIfFalse, PopJumpIfTrue, ContinueLoop}
	for _, c := range relative {
		require.True(t, IsJump(c), c.String())
		require.False(t, IsAbsoluteJump(c), c.String())
		require.True(t, c.HasArg(), c.String())
	}
	for _, c := range absolute {
		require.True(t, IsJump(c), c.String())
		require.True(t, IsAbsoluteJump(c), c.String())
		require.True(t, c.HasArg(), c.String())
	}
	require.False(t, IsJump(LoadConst))
	require.True(t, IsUnconditionalJump(JumpForward))
	require.True(t, IsUnconditionalJump(JumpAbsolute))
	require.False(t, IsUnconditionalJump(PopJumpIfTrue))
	require.True(t, IsTerminal(ReturnValue))
	require.True(t, IsTerminal(RaiseVarargs))
	require.False(t, IsTerminal(BreakLoop))
}

func TestInvalidOpcode(t *testing.T) {
	require.False(t, IsValid(Code(0)))
	require.False(t, IsValid(Code(250)))
	require.Equal(t, "<invalid>", Code(250).String())
}

func TestCompareOpTypeString(t *testing.T) {
	require.Equal(t, "<", LessThan.String())
	require.Equal(t, "not in", NotIn.String())
	require.Equal(t, "exception match", ExceptionMatch.String())
	require.Equal(t, "", CompareOpType(99).String())
}
