package asm

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/risor-io/tessera/op"
)

func TestStackDepthStraightLineIsMaxPrefixSum(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	pushes := []*Instruction{instr(op.LoadConst, 0), instr(op.LoadName, 0), instr(op.DupTop)}
	pops := []*Instruction{instr(op.PopTop), instr(op.BinaryAdd), instr(op.BuildTuple, 2), instr(op.StoreName, 1)}

	for n := 0; n < 50; n++ {
		b := NewBlock()
		depth, want := 0, 0
		for i := 0; i < 40; i++ {
			var in Instruction
			if depth < 2 || rng.Intn(2) == 0 {
				in = *pushes[rng.Intn(len(pushes))]
			} else {
				in = *pops[rng.Intn(len(pops))]
			}
			b.emit(&in)
			depth += op.StackEffect(in.Op, in.Arg)
			if depth > want {
				want = depth
			}
		}
		got, err := StackDepth([]*Block{b})
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestStackDepthForIter(t *testing.T) {
	cleanup := block(instr(op.LoadConst, 0), instr(op.ReturnValue))
	start := NewBlock()
	start.emit(jump(op.ForIter, cleanup))
	start.emit(instr(op.StoreName, 0))
	start.emit(jump(op.JumpAbsolute, start))
	entry := block(instr(op.LoadName, 0), instr(op.GetIter))
	blocks := chain(entry, start, cleanup)

	depth, err := StackDepth(blocks)
	require.NoError(t, err)
	require.Equal(t, 2, depth)
	require.Equal(t, 0, cleanup.depth)
	require.Equal(t, 1, start.depth)
}

func TestStackDepthExceptionHandler(t *testing.T) {
	end := block(instr(op.LoadConst, 0), instr(op.ReturnValue))
	handler := block(instr(op.PopTop), instr(op.PopTop), instr(op.PopTop), jump(op.JumpForward, end))
	body := block(instr(op.LoadConst, 0), instr(op.PopTop), instr(op.PopBlock), jump(op.JumpForward, end))
	entry := block(jump(op.SetupExcept, handler))
	blocks := chain(entry, body, handler, end)

	depth, err := StackDepth(blocks)
	require.NoError(t, err)
	require.Equal(t, 3, depth)
	require.Equal(t, 3, handler.depth)
	require.Equal(t, 0, end.depth)
}

func TestStackDepthWithHandlerIgnoresEnterResult(t *testing.T) {
	cleanup := block(instr(op.WithCleanup), instr(op.EndFinally), instr(op.LoadConst, 0), instr(op.ReturnValue))
	body := block(instr(op.PopTop), instr(op.PopBlock), instr(op.LoadConst, 0))
	entry := block(instr(op.LoadName, 0), jump(op.SetupWith, cleanup))
	blocks := chain(entry, body, cleanup)

	depth, err := StackDepth(blocks)
	require.NoError(t, err)
	// ctx(1) + enter result(1) - enter result + 3 unwinding slots
	require.Equal(t, 4, cleanup.depth)
	require.Equal(t, 4, depth)
}

func TestStackDepthJumpOrPop(t *testing.T) {
	end := block(instr(op.ReturnValue))
	entry := block(instr(op.LoadName, 0), jump(op.JumpIfFalseOrPop, end), instr(op.LoadName, 1))
	blocks := chain(entry, end)

	depth, err := StackDepth(blocks)
	require.NoError(t, err)
	require.Equal(t, 1, depth)
	require.Equal(t, 1, end.depth)
}

func TestStackDepthSkipsUnreachedBlocks(t *testing.T) {
	dead := block(instr(op.PopTop), instr(op.PopTop))
	entry := block(instr(op.LoadConst, 0), instr(op.ReturnValue))
	blocks := chain(entry, dead)

	depth, err := StackDepth(blocks)
	require.NoError(t, err)
	require.Equal(t, 1, depth)
	require.Equal(t, unreached, dead.depth)
}

func TestStackDepthNegative(t *testing.T) {
	_, err := StackDepth([]*Block{block(instr(op.PopTop))})
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrStackDepth))
}

func TestStackDepthAutoReturnMustBeBalanced(t *testing.T) {
	auto := block(instr(op.LoadConst, 0), instr(op.ReturnValue))
	auto.AutoReturn = true
	entry := block(instr(op.LoadConst, 1))
	blocks := chain(entry, auto)

	_, err := StackDepth(blocks)
	require.ErrorIs(t, err, ErrStackDepth)
	require.Contains(t, err.Error(), "implicit return reached at depth 1")
}
