package asm

import "github.com/risor-io/tessera/op"

// unreached is the entry depth of a block no predecessor has reached yet.
const unreached = -99

// Block is a basic block: a straight-line run of instructions with at most
// one jump out and an optional fallthrough successor.
type Block struct {
	Instructions []*Instruction
	// Next is the block control falls through to. Blocks form a graph;
	// Next is a reference, not ownership.
	Next *Block
	// HasReturn is set once a RETURN_VALUE has been emitted into the block.
	HasReturn bool
	// AutoReturn marks the implicit return appended by Assemble.
	AutoReturn bool
	// Offset is the byte offset of the block, set by ResolveJumps.
	Offset int

	// marked is 0 when unvisited, 1 when on the linearizer stack, and the
	// resume cursor plus 2 afterwards.
	marked int
	depth  int
}

// NewBlock returns an empty block.
func NewBlock() *Block {
	return &Block{}
}

func (b *Block) emit(instr *Instruction) {
	b.Instructions = append(b.Instructions, instr)
	if instr.Op == op.ReturnValue {
		b.HasReturn = true
	}
}

// CodeSize returns the encoded size of the block in bytes.
func (b *Block) CodeSize() int {
	size := 0
	for _, instr := range b.Instructions {
		size += instr.Size()
	}
	return size
}
