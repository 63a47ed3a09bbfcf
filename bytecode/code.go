package bytecode

// Tuple is an immutable sequence constant.
type Tuple []any

// Code is one compiled unit: a module, function body, class body or
// comprehension. It is immutable after creation and safe for concurrent use.
type Code struct {
	argCount  int
	nLocals   int
	stackSize int
	flags     Flags
	code      []byte
	constants []any
	names     []string
	varnames  []string
	cellvars  []string
	freevars  []string
	filename  string
	name      string
	firstLine int
	lineTable []byte
	hidden    bool
}

// CodeParams contains parameters for creating a new Code.
type CodeParams struct {
	ArgCount  int
	NLocals   int
	StackSize int
	Flags     Flags
	Code      []byte
	Constants []any
	Names     []string
	Varnames  []string
	CellVars  []string
	FreeVars  []string
	Filename  string
	Name      string
	FirstLine int
	LineTable []byte
	// Hidden units are omitted from tracebacks and introspection.
	Hidden bool
}

// NewCode creates a new immutable Code from the given parameters.
// Input slices are copied to ensure immutability.
func NewCode(params CodeParams) *Code {
	return &Code{
		argCount:  params.ArgCount,
		nLocals:   params.NLocals,
		stackSize: params.StackSize,
		flags:     params.Flags,
		code:      copyBytes(params.Code),
		constants: copyConstants(params.Constants),
		names:     copyStrings(params.Names),
		varnames:  copyStrings(params.Varnames),
		cellvars:  copyStrings(params.CellVars),
		freevars:  copyStrings(params.FreeVars),
		filename:  params.Filename,
		name:      params.Name,
		firstLine: params.FirstLine,
		lineTable: copyBytes(params.LineTable),
		hidden:    params.Hidden,
	}
}

// Name returns the name of this unit.
func (c *Code) Name() string {
	return c.name
}

// Filename returns the source filename.
func (c *Code) Filename() string {
	return c.filename
}

// FirstLine returns the source line the unit starts on.
func (c *Code) FirstLine() int {
	return c.firstLine
}

// ArgCount returns the number of positional parameters.
func (c *Code) ArgCount() int {
	return c.argCount
}

// LocalCount returns the number of local variables, parameters included.
func (c *Code) LocalCount() int {
	return c.nLocals
}

// StackSize returns the maximum operand stack depth.
func (c *Code) StackSize() int {
	return c.stackSize
}

// Flags returns the unit's flags.
func (c *Code) Flags() Flags {
	return c.flags
}

// Hidden reports whether the unit is hidden from introspection.
func (c *Code) Hidden() bool {
	return c.hidden
}

// Bytes returns a copy of the encoded instructions.
func (c *Code) Bytes() []byte {
	return copyBytes(c.code)
}

// Len returns the length of the encoded instructions in bytes.
func (c *Code) Len() int {
	return len(c.code)
}

// ByteAt returns the instruction byte at the given offset.
func (c *Code) ByteAt(offset int) byte {
	return c.code[offset]
}

// ConstantCount returns the number of constants.
func (c *Code) ConstantCount() int {
	return len(c.constants)
}

// ConstantAt returns the constant at the given index.
func (c *Code) ConstantAt(index int) any {
	return c.constants[index]
}

// NameCount returns the number of global and attribute names.
func (c *Code) NameCount() int {
	return len(c.names)
}

// NameAt returns the name at the given index.
func (c *Code) NameAt(index int) string {
	return c.names[index]
}

// VarnameCount returns the number of local variable names.
func (c *Code) VarnameCount() int {
	return len(c.varnames)
}

// VarnameAt returns the local variable name at the given index.
func (c *Code) VarnameAt(index int) string {
	return c.varnames[index]
}

// CellVars returns a copy of the names of locals captured by nested units.
func (c *Code) CellVars() []string {
	return copyStrings(c.cellvars)
}

// FreeVars returns a copy of the names captured from enclosing units.
func (c *Code) FreeVars() []string {
	return copyStrings(c.freevars)
}

// DerefName returns the name addressed by a LOAD_DEREF, STORE_DEREF or
// LOAD_CLOSURE operand: cell variables come first, then free variables.
func (c *Code) DerefName(index int) string {
	if index < len(c.cellvars) {
		return c.cellvars[index]
	}
	return c.freevars[index-len(c.cellvars)]
}

// LineTable returns a copy of the encoded line table.
func (c *Code) LineTable() []byte {
	return copyBytes(c.lineTable)
}

// Children returns the units found in the constant pool, in pool order.
func (c *Code) Children() []*Code {
	var children []*Code
	for _, v := range c.constants {
		if child, ok := v.(*Code); ok {
			children = append(children, child)
		}
	}
	return children
}

// Flatten returns this unit and all nested units in depth-first order.
func (c *Code) Flatten() []*Code {
	codes := []*Code{c}
	for _, child := range c.Children() {
		codes = append(codes, child.Flatten()...)
	}
	return codes
}
