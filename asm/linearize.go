package asm

// Linearize orders the blocks reachable from entry into their final layout.
//
// The result is a reverse post-order of a depth-first walk that visits a
// block's fallthrough successor before the targets of its jumps. Edges into
// blocks already on the walk stack are loop back-edges and do not affect
// the order. The walk uses an explicit stack, and a block that jumps
// mid-sequence records a cursor so that it resumes scanning after its jump
// target has been handled.
//
// Linearize marks the blocks it visits and must run once per graph.
func Linearize(entry *Block) []*Block {
	var result []*Block
	var stack []*Block
	see := func(b *Block) {
		if b.marked == 0 {
			b.marked = 1
			stack = append(stack, b)
		}
	}
	see(entry)
	for len(stack) > 0 {
		b := stack[len(stack)-1]
		if b.marked == 1 {
			b.marked = 2
			if b.Next != nil {
				see(b.Next)
			}
			continue
		}
		i := b.marked - 2
		jumped := false
		for i < len(b.Instructions) {
			instr := b.Instructions[i]
			i++
			if instr.Jump != nil {
				b.marked = i + 2
				see(instr.Jump)
				jumped = true
				break
			}
		}
		if !jumped {
			result = append(result, b)
			stack = stack[:len(stack)-1]
		}
	}
	for l, r := 0, len(result)-1; l < r; l, r = l+1, r-1 {
		result[l], result[r] = result[r], result[l]
	}
	return result
}
