package asm

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/risor-io/tessera/op"
)

func resolved(blocks ...*Block) []*Block {
	ResolveJumps(blocks)
	return blocks
}

func TestLineTable(t *testing.T) {
	b := block(
		lined(instr(op.LoadConst, 0), 1),
		instr(op.PopTop),
		lined(instr(op.LoadConst, 1), 2),
		instr(op.PopTop),
		lined(instr(op.LoadConst, 2), 5),
		instr(op.ReturnValue),
	)
	require.Equal(t, []byte{4, 1, 4, 3}, EncodeLineTable(resolved(b), 1))
}

func TestLineTableAcrossBlocks(t *testing.T) {
	b0 := block(lined(instr(op.LoadConst, 0), 3), instr(op.PopTop))
	b1 := block(lined(instr(op.LoadConst, 0), 4), instr(op.ReturnValue))
	require.Equal(t, []byte{0, 2, 4, 1}, EncodeLineTable(resolved(chain(b0, b1)...), 1))
}

func TestLineTableLargeAddressDelta(t *testing.T) {
	filler := nops(600)
	filler.Instructions[0].Line = 1
	last := block(lined(instr(op.ReturnValue), 2))
	table := EncodeLineTable(resolved(chain(filler, last)...), 1)
	require.Equal(t, []byte{255, 0, 255, 0, 90, 1}, table)
}

func TestLineTableLargeLineDelta(t *testing.T) {
	b := block(
		lined(instr(op.LoadConst, 0), 1),
		lined(instr(op.ReturnValue), 301),
	)
	require.Equal(t, []byte{3, 255, 0, 45}, EncodeLineTable(resolved(b), 1))
}

func TestLineTableDropsBackwardLines(t *testing.T) {
	b := block(
		lined(instr(op.LoadConst, 0), 1),
		lined(instr(op.LoadConst, 1), 3),
		lined(instr(op.BuildTuple, 2), 2),
		lined(instr(op.ReturnValue), 4),
	)
	require.Equal(t, []byte{3, 2, 6, 1}, EncodeLineTable(resolved(b), 1))
}

func TestLineTableFirstLineOffset(t *testing.T) {
	b := block(lined(instr(op.LoadConst, 0), 10), instr(op.ReturnValue))
	require.Empty(t, EncodeLineTable(resolved(b), 10))
}
