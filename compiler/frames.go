package compiler

import (
	"github.com/risor-io/tessera/asm"
	"github.com/risor-io/tessera/errz"
	"github.com/risor-io/tessera/internal/token"
)

// maxFrames is the deepest static nesting of loops, try and with blocks.
const maxFrames = 20

type frameKind int

const (
	frameLoop frameKind = iota
	frameExcept
	frameFinally
	frameFinallyEnd
)

// frame is an open control block and the block it starts at.
type frame struct {
	kind  frameKind
	block *asm.Block
}

func (g *codeGenerator) pushFrame(pos token.Position, kind frameKind, block *asm.Block) error {
	if len(g.frames) >= maxFrames {
		return errz.ContractError(pos, "too many statically nested blocks")
	}
	g.frames = append(g.frames, frame{kind: kind, block: block})
	return nil
}

func (g *codeGenerator) popFrame(kind frameKind, block *asm.Block) error {
	n := len(g.frames)
	if n == 0 || g.frames[n-1].kind != kind || g.frames[n-1].block != block {
		return errz.InternalError(g.Unit().Name, token.At(g.Line()), "mismatched frame block")
	}
	g.frames = g.frames[:n-1]
	return nil
}

// inLoop reports whether a loop frame is open.
func (g *codeGenerator) inLoop() bool {
	for _, f := range g.frames {
		if f.kind == frameLoop {
			return true
		}
	}
	return false
}
