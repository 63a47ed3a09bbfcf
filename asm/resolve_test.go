package asm

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/risor-io/tessera/op"
)

func TestResolveRelativeAndAbsolute(t *testing.T) {
	end := block(instr(op.LoadConst, 0), instr(op.PopTop))
	b1 := block(instr(op.LoadConst, 1), instr(op.PopTop))
	fwd := jump(op.JumpForward, end)
	cond := jump(op.PopJumpIfFalse, end)
	b0 := block(instr(op.LoadName, 0), cond, fwd)
	blocks := chain(b0, b1, end)

	require.Equal(t, 1, ResolveJumps(blocks))
	require.Equal(t, 0, b0.Offset)
	require.Equal(t, 9, b1.Offset)
	require.Equal(t, 13, end.Offset)
	require.Equal(t, uint32(13), cond.Arg)
	// Relative to the end of the jump instruction.
	require.Equal(t, uint32(13-9), fwd.Arg)
}

func TestResolveJumpToJumpIsTransitive(t *testing.T) {
	b3 := block(instr(op.LoadConst, 0), instr(op.PopTop))
	b2 := block(jump(op.JumpForward, b3))
	b1 := block(jump(op.JumpAbsolute, b2))
	first := jump(op.JumpForward, b1)
	b0 := block(instr(op.Nop), first)
	blocks := []*Block{b0, b1, b2, b3}

	ResolveJumps(blocks)
	require.Equal(t, 10, b3.Offset)

	require.Equal(t, op.JumpAbsolute, first.Op)
	require.True(t, first.Absolute)
	require.Same(t, b3, first.Jump)
	require.Equal(t, uint32(10), first.Arg)

	second := b1.Instructions[0]
	require.Same(t, b3, second.Jump)
	require.Equal(t, uint32(10), second.Arg)

	// The last hop already targets real code and stays relative.
	third := b2.Instructions[0]
	require.Equal(t, op.JumpForward, third.Op)
	require.Equal(t, uint32(0), third.Arg)
}

func TestResolveJumpCycleTerminates(t *testing.T) {
	a := NewBlock()
	b := NewBlock()
	a.emit(jump(op.JumpAbsolute, b))
	b.emit(jump(op.JumpAbsolute, a))
	require.Equal(t, 1, ResolveJumps([]*Block{a, b}))
}

func TestResolveJumpToReturn(t *testing.T) {
	ret := block(instr(op.ReturnValue))
	j := jump(op.JumpForward, ret)
	b0 := block(instr(op.LoadConst, 0), j)
	b1 := block(instr(op.LoadConst, 1))
	blocks := chain(b0, b1, ret)

	passes := ResolveJumps(blocks)
	require.GreaterOrEqual(t, passes, 2)
	require.Equal(t, op.ReturnValue, j.Op)
	require.Nil(t, j.Jump)
	require.Equal(t, uint32(0), j.Arg)
	require.Equal(t, 1, j.Size())
	require.Equal(t, 4, b1.Offset)
	require.Equal(t, 7, ret.Offset)
}

func TestResolveConditionalJumpToReturnIsKept(t *testing.T) {
	ret := block(instr(op.ReturnValue))
	j := jump(op.JumpIfTrueOrPop, ret)
	b0 := block(instr(op.LoadName, 0), j, instr(op.LoadName, 1))
	blocks := chain(b0, ret)

	require.Equal(t, 1, ResolveJumps(blocks))
	require.Equal(t, op.JumpIfTrueOrPop, j.Op)
	require.Equal(t, uint32(9), j.Arg)
}

func TestResolveIsIdempotent(t *testing.T) {
	ret := block(instr(op.LoadConst, 0), instr(op.ReturnValue))
	early := block(instr(op.ReturnValue))
	hop := block(jump(op.JumpAbsolute, ret))
	loop := NewBlock()
	loop.emit(instr(op.LoadName, 0))
	loop.emit(jump(op.PopJumpIfFalse, hop))
	loop.emit(jump(op.JumpAbsolute, loop))
	entry := block(instr(op.LoadConst, 1), jump(op.JumpForward, early))
	blocks := chain(entry, loop, hop, early, ret)
	ResolveJumps(blocks)

	snapshot := func() []Instruction {
		var out []Instruction
		for _, b := range blocks {
			for _, in := range b.Instructions {
				out = append(out, *in)
			}
		}
		return out
	}
	before := snapshot()
	require.Equal(t, 1, ResolveJumps(blocks))
	require.Equal(t, before, snapshot())
}

func TestResolveWideOperand(t *testing.T) {
	target := block(instr(op.Nop))
	j := jump(op.PopJumpIfFalse, target)
	b0 := block(instr(op.LoadName, 0), j)
	filler := nops(0x10000)
	blocks := chain(b0, filler, target)

	require.Equal(t, 2, ResolveJumps(blocks))
	require.Equal(t, 6, j.Size())
	require.Equal(t, uint32(0x10000+9), j.Arg)
	require.Equal(t, 0x10000+9, target.Offset)
}

func TestResolveWideningCascade(t *testing.T) {
	// Widening the first jump pushes the target of the second jump from
	// exactly 0xFFFF to past 0x10000.
	far := block(instr(op.Nop))
	near := block(instr(op.Nop))
	j1 := jump(op.PopJumpIfFalse, far)
	j2 := jump(op.PopJumpIfFalse, near)
	b0 := block(instr(op.LoadName, 0), j1)
	b1 := block(instr(op.LoadName, 1), j2)
	filler := nops(0xFFFF - 12)
	blocks := chain(b0, b1, filler, near, far)

	passes := ResolveJumps(blocks)
	require.Equal(t, 3, passes)
	require.Equal(t, 6, j1.Size())
	require.Equal(t, 6, j2.Size())
	require.Equal(t, uint32(0xFFFF+6), j2.Arg)
	require.Equal(t, uint32(0xFFFF+7), j1.Arg)
	require.Equal(t, 1, ResolveJumps(blocks))
}
