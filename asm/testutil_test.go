package asm

import "github.com/risor-io/tessera/op"

func instr(c op.Code, arg ...int) *Instruction {
	in := &Instruction{Op: c}
	if len(arg) > 0 {
		in.Arg = uint32(arg[0])
	}
	return in
}

func jump(c op.Code, target *Block) *Instruction {
	return &Instruction{Op: c, Jump: target, Absolute: op.IsAbsoluteJump(c)}
}

func lined(in *Instruction, line int) *Instruction {
	in.Line = line
	return in
}

func block(instrs ...*Instruction) *Block {
	b := NewBlock()
	for _, in := range instrs {
		b.emit(in)
	}
	return b
}

// chain links blocks through their fallthrough successors.
func chain(blocks ...*Block) []*Block {
	for i := 0; i+1 < len(blocks); i++ {
		blocks[i].Next = blocks[i+1]
	}
	return blocks
}

func nops(n int) *Block {
	b := NewBlock()
	b.Instructions = make([]*Instruction, n)
	for i := range b.Instructions {
		b.Instructions[i] = instr(op.Nop)
	}
	return b
}
