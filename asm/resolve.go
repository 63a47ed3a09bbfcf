package asm

import "github.com/risor-io/tessera/op"

// ResolveJumps computes block offsets and fills in jump operands, repeating
// until the layout is stable. It returns the number of passes taken.
//
// Two rewrites are applied to unconditional jumps along the way: a jump to
// a block that begins with another unconditional jump is redirected to the
// final target, and a jump to a block that begins with RETURN_VALUE becomes
// a RETURN_VALUE itself. The second rewrite shrinks the code, so it always
// forces another pass. Operands above 0xFFFF need an EXTENDED_ARG prefix,
// which grows the code; the loop ends once a pass neither rewrote anything
// nor changed the number of widened operands.
func ResolveJumps(blocks []*Block) int {
	lastWide := 0
	passes := 0
	for {
		passes++
		wide := 0
		redo := false

		offset := 0
		for _, b := range blocks {
			b.Offset = offset
			offset += b.CodeSize()
		}

		for _, b := range blocks {
			offset = b.Offset
			for _, instr := range b.Instructions {
				offset += instr.Size()
				if instr.Jump == nil {
					continue
				}
				if op.IsUnconditionalJump(instr.Op) {
					target := finalTarget(instr.Jump)
					if target != instr.Jump {
						instr.Jump = target
						instr.Op = op.JumpAbsolute
						instr.Absolute = true
					}
					if len(target.Instructions) > 0 && target.Instructions[0].Op == op.ReturnValue {
						instr.Op = op.ReturnValue
						instr.Arg = 0
						instr.Jump = nil
						instr.Absolute = false
						redo = true
						continue
					}
				}
				var arg int
				if instr.Absolute {
					arg = instr.Jump.Offset
				} else {
					arg = instr.Jump.Offset - offset
				}
				instr.Arg = uint32(arg)
				if arg > 0xFFFF {
					wide++
				}
			}
		}

		if wide == lastWide && !redo {
			return passes
		}
		lastWide = wide
	}
}

// finalTarget follows a chain of blocks that begin with an unconditional
// jump and returns the last block of the chain.
func finalTarget(target *Block) *Block {
	seen := map[*Block]bool{}
	for !seen[target] {
		seen[target] = true
		if len(target.Instructions) == 0 {
			break
		}
		first := target.Instructions[0]
		if first.Jump == nil || !op.IsUnconditionalJump(first.Op) {
			break
		}
		target = first.Jump
	}
	return target
}
