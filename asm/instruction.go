package asm

import (
	"fmt"

	"github.com/risor-io/tessera/op"
)

// Instruction is one abstract instruction. Jump instructions reference their
// target block; the operand is filled in by ResolveJumps.
type Instruction struct {
	Op  op.Code
	Arg uint32
	// Line is the source line that starts at this instruction, or 0 when the
	// instruction continues the current line.
	Line     int
	Jump     *Block
	Absolute bool
}

// Size returns the encoded size of the instruction in bytes.
func (i *Instruction) Size() int {
	if !i.Op.HasArg() {
		return 1
	}
	if i.Arg > 0xFFFF {
		return 6
	}
	return 3
}

// HasJump reports whether the instruction references a target block.
func (i *Instruction) HasJump() bool {
	return i.Jump != nil
}

func (i *Instruction) encode(buf []byte) []byte {
	if !i.Op.HasArg() {
		return append(buf, byte(i.Op))
	}
	arg := i.Arg
	if arg > 0xFFFF {
		buf = append(buf, byte(op.ExtendedArg), byte(arg>>16), byte(arg>>24))
		arg &= 0xFFFF
	}
	return append(buf, byte(i.Op), byte(arg), byte(arg>>8))
}

func (i *Instruction) String() string {
	if !i.Op.HasArg() {
		return i.Op.String()
	}
	return fmt.Sprintf("%s %d", i.Op, i.Arg)
}
