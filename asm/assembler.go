package asm

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/risor-io/tessera/bytecode"
	"github.com/risor-io/tessera/errz"
	"github.com/risor-io/tessera/internal/token"
	"github.com/risor-io/tessera/op"
)

// Unit describes the compiled unit an Assembler produces.
type Unit struct {
	Name     string
	Filename string
	// FirstLine is the line the unit starts on. When zero it is taken from
	// the first emitted instruction.
	FirstLine int
	ArgCount  int
	Flags     bytecode.Flags
	Hidden    bool
	Varnames  []string
	CellVars  []string
	FreeVars  []string
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithLogger sets the logger used for debug events.
func WithLogger(logger zerolog.Logger) Option {
	return func(a *Assembler) {
		a.logger = logger
	}
}

// WithErrorWriter sets where the raw diagnostic of an internal stack-depth
// error is written. Defaults to os.Stderr.
func WithErrorWriter(w io.Writer) Option {
	return func(a *Assembler) {
		a.errOut = w
	}
}

// Assembler collects the instructions of one unit into a block graph and
// assembles them into a bytecode.Code.
type Assembler struct {
	unit Unit

	Consts   *ConstPool
	Names    *NameTable
	Varnames *NameTable
	CellVars *NameTable
	FreeVars *NameTable

	entry   *Block
	current *Block

	// line is the current source line; lineSet reports whether an
	// instruction has already been tagged with it.
	line    int
	lineSet bool

	logger zerolog.Logger
	errOut io.Writer
}

// New returns an Assembler for the given unit with an empty entry block.
func New(unit Unit, opts ...Option) *Assembler {
	entry := NewBlock()
	a := &Assembler{
		unit:     unit,
		Consts:   NewConstPool(),
		Names:    NewNameTable(nil, 0),
		Varnames: NewNameTable(unit.Varnames, 0),
		CellVars: NewSortedNameTable(unit.CellVars, 0),
		entry:    entry,
		current:  entry,
		logger:   zerolog.Nop(),
		errOut:   os.Stderr,
	}
	a.FreeVars = NewSortedNameTable(unit.FreeVars, a.CellVars.Len())
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Unit returns the unit description.
func (a *Assembler) Unit() Unit {
	return a.unit
}

// Entry returns the entry block.
func (a *Assembler) Entry() *Block {
	return a.entry
}

// Current returns the block instructions are emitted into.
func (a *Assembler) Current() *Block {
	return a.current
}

// UseBlock makes b the block instructions are emitted into.
func (a *Assembler) UseBlock(b *Block) {
	a.current = b
}

// UseNextBlock links b as the fallthrough successor of the current block
// and makes it current. A new block is created when b is nil.
func (a *Assembler) UseNextBlock(b *Block) *Block {
	if b == nil {
		b = NewBlock()
	}
	a.current.Next = b
	a.current = b
	return b
}

// UpdatePosition moves the current source line forward. A line before the
// current one is ignored unless force is set. The next emitted instruction
// is tagged with the line.
func (a *Assembler) UpdatePosition(line int, force bool) {
	if force || line > a.line {
		a.line = line
		a.lineSet = false
	}
}

// RetagLine makes the next emitted instruction carry the current line
// again, so a loop header gets a line entry of its own.
func (a *Assembler) RetagLine() {
	a.lineSet = false
}

// Line returns the current source line.
func (a *Assembler) Line() int {
	return a.line
}

func (a *Assembler) emit(instr *Instruction) {
	if !a.lineSet {
		instr.Line = a.line
		a.lineSet = true
	}
	a.current.emit(instr)
}

// Emit emits an instruction without an operand.
func (a *Assembler) Emit(c op.Code) {
	a.emit(&Instruction{Op: c})
}

// EmitArg emits an instruction with an operand.
func (a *Assembler) EmitArg(c op.Code, arg int) {
	a.emit(&Instruction{Op: c, Arg: uint32(arg)})
}

// EmitJump emits a jump to target. Whether the operand is absolute or
// relative follows from the opcode.
func (a *Assembler) EmitJump(c op.Code, target *Block) {
	a.emit(&Instruction{Op: c, Jump: target, Absolute: op.IsAbsoluteJump(c)})
}

// LoadConst emits a LOAD_CONST of v.
func (a *Assembler) LoadConst(v any) {
	a.EmitArg(op.LoadConst, a.Consts.Add(v))
}

// Assemble finishes the unit. If the last block does not return, an
// implicit "return None" is appended first.
func (a *Assembler) Assemble() (*bytecode.Code, error) {
	if !a.current.HasReturn {
		a.UseNextBlock(nil)
		a.LoadConst(nil)
		a.Emit(op.ReturnValue)
		a.current.AutoReturn = true
	}

	firstLine := a.unit.FirstLine
	if firstLine == 0 {
		if len(a.entry.Instructions) > 0 {
			firstLine = a.entry.Instructions[0].Line
		}
		if firstLine == 0 {
			firstLine = 1
		}
	}

	blocks := Linearize(a.entry)
	passes := ResolveJumps(blocks)
	lineTable := EncodeLineTable(blocks, firstLine)
	stackSize, err := StackDepth(blocks)
	if err != nil {
		io.WriteString(a.errOut, fmt.Sprintf("StackDepthComputationError in %s at %s:%d\n",
			a.unit.Filename, a.unit.Name, firstLine))
		cerr := errz.InternalError(a.unit.Name, token.Position{File: a.unit.Filename, Line: firstLine}, "%s", err)
		cerr.Cause = err
		return nil, cerr
	}

	var code []byte
	for _, b := range blocks {
		for _, instr := range b.Instructions {
			code = instr.encode(code)
		}
	}

	flags := a.unit.Flags
	if a.CellVars.Len() == 0 && a.FreeVars.Len() == 0 {
		flags |= bytecode.FlagNoFree
	}

	a.logger.Debug().
		Str("unit", a.unit.Name).
		Int("blocks", len(blocks)).
		Int("passes", passes).
		Int("stack_size", stackSize).
		Int("code_size", len(code)).
		Msg("assembled unit")

	return bytecode.NewCode(bytecode.CodeParams{
		ArgCount:  a.unit.ArgCount,
		NLocals:   a.Varnames.Len(),
		StackSize: stackSize,
		Flags:     flags,
		Code:      code,
		Constants: a.Consts.Values(),
		Names:     a.Names.Names(),
		Varnames:  a.Varnames.Names(),
		CellVars:  a.CellVars.Names(),
		FreeVars:  a.FreeVars.Names(),
		Filename:  a.unit.Filename,
		Name:      a.unit.Name,
		FirstLine: firstLine,
		LineTable: lineTable,
		Hidden:    a.unit.Hidden,
	}), nil
}
