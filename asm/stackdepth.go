package asm

import (
	"errors"
	"fmt"

	"github.com/risor-io/tessera/op"
)

// ErrStackDepth is returned when the stack-depth walk finds inconsistent
// code. It always indicates a defect in code generation.
var ErrStackDepth = errors.New("stack depth computation error")

// StackDepth returns the maximum operand stack depth reached by the blocks,
// which must be in linearized order.
//
// Each block starts at the largest depth any already visited predecessor
// hands it; the entry block starts at 0. Back-edges are ignored, so a block
// is only entered after all of its forward predecessors. Blocks that are
// never reached are dead code and are skipped.
func StackDepth(blocks []*Block) (int, error) {
	if len(blocks) == 0 {
		return 0, nil
	}
	for _, b := range blocks {
		b.depth = unreached
	}
	blocks[0].depth = 0
	w := &depthWalker{}
	for i, b := range blocks {
		depth, err := w.walk(b)
		if err != nil {
			return 0, fmt.Errorf("%w: block %d: %s", ErrStackDepth, i, err)
		}
		if b.AutoReturn && depth != 0 {
			return 0, fmt.Errorf("%w: implicit return reached at depth %d", ErrStackDepth, depth)
		}
	}
	return w.max, nil
}

type depthWalker struct {
	max int
}

func (w *depthWalker) reach(b *Block, depth int) {
	if depth > b.depth {
		b.depth = depth
	}
}

func (w *depthWalker) walk(b *Block) (int, error) {
	depth := b.depth
	if depth == unreached {
		return 0, nil
	}
	for _, instr := range b.Instructions {
		depth += op.StackEffect(instr.Op, instr.Arg)
		if depth < 0 {
			return 0, fmt.Errorf("negative depth %d after %s", depth, instr)
		}
		if depth > w.max {
			w.max = depth
		}
		if instr.Jump != nil {
			target := depth
			switch instr.Op {
			case op.ForIter:
				// The exhausted iterator and the absent next value.
				target -= 2
			case op.SetupExcept, op.SetupFinally, op.SetupWith:
				if instr.Op == op.SetupWith {
					// The handler does not see the result of __enter__.
					target--
				}
				// Unwinding pushes the exception type, value and traceback.
				target += 3
				if target > w.max {
					w.max = target
				}
			case op.JumpIfTrueOrPop, op.JumpIfFalseOrPop:
				depth--
			}
			w.reach(instr.Jump, target)
			if op.IsUnconditionalJump(instr.Op) {
				return depth, nil
			}
		} else if instr.Op == op.ReturnValue || instr.Op == op.RaiseVarargs {
			return depth, nil
		}
	}
	if b.Next != nil {
		w.reach(b.Next, depth)
	}
	return depth, nil
}
