package ast

// BoolOp is a short-circuit "and"/"or" over two or more values.
type BoolOp struct {
	Loc
	Op     BoolOpKind
	Values []Expr
}

// BinOp is a binary arithmetic or bitwise operation.
type BinOp struct {
	Loc
	Left  Expr
	Op    Operator
	Right Expr
}

// UnaryOp is a prefix operation.
type UnaryOp struct {
	Loc
	Op      UnaryOpKind
	Operand Expr
}

// Lambda is an anonymous function expression.
type Lambda struct {
	Loc
	Args *Arguments
	Body Expr
}

// IfExp is a conditional expression "body if test else orelse".
type IfExp struct {
	Loc
	Test   Expr
	Body   Expr
	Orelse Expr
	Truth  Truth
}

// Dict is a dictionary display.
type Dict struct {
	Loc
	Keys   []Expr
	Values []Expr
}

// Set is a set display.
type Set struct {
	Loc
	Elts []Expr
}

// Comprehension is one "for ... in ... if ..." clause.
type Comprehension struct {
	Target Expr
	Iter   Expr
	Ifs    []Expr
}

// ListComp is a list comprehension. It is evaluated inline in the
// enclosing scope.
type ListComp struct {
	Loc
	Elt        Expr
	Generators []*Comprehension
}

// SetComp is a set comprehension, compiled as a nested scope.
type SetComp struct {
	Loc
	Elt        Expr
	Generators []*Comprehension
}

// DictComp is a dict comprehension, compiled as a nested scope.
type DictComp struct {
	Loc
	Key        Expr
	Value      Expr
	Generators []*Comprehension
}

// GeneratorExp is a generator expression, compiled as a nested scope.
type GeneratorExp struct {
	Loc
	Elt        Expr
	Generators []*Comprehension
}

// Yield is a "yield" expression. Value is nil for a bare yield.
type Yield struct {
	Loc
	Value Expr
}

// Compare is a possibly chained comparison "a < b < c".
type Compare struct {
	Loc
	Left        Expr
	Ops         []CmpOp
	Comparators []Expr
}

// Keyword is a keyword argument in a call.
type Keyword struct {
	Arg   string
	Value Expr
}

// Call is a function call.
type Call struct {
	Loc
	Func     Expr
	Args     []Expr
	Keywords []*Keyword
	Starargs Expr // nil when absent
	Kwargs   Expr // nil when absent
}

// Num is a numeric literal. Value is an int64, float64 or complex128.
type Num struct {
	Loc
	Value any
}

// Str is a string literal.
type Str struct {
	Loc
	Value string
}

// Constant is a value produced by constant folding: nil, a bool, a number,
// a string or a tuple ([]any) of constants.
type Constant struct {
	Loc
	Value any
}

// Attribute is an attribute reference "value.attr".
type Attribute struct {
	Loc
	Value Expr
	Attr  string
	Ctx   Ctx
}

// Subscript is "value[slice]".
type Subscript struct {
	Loc
	Value Expr
	Slice SliceExpr
	Ctx   Ctx
}

// Name is an identifier reference.
type Name struct {
	Loc
	ID  string
	Ctx Ctx
}

// List is a list display or a list unpacking target.
type List struct {
	Loc
	Elts []Expr
	Ctx  Ctx
}

// Tuple is a tuple display or a tuple unpacking target.
type Tuple struct {
	Loc
	Elts []Expr
	Ctx  Ctx
}

// Index is a plain subscript "x[i]".
type Index struct {
	Value Expr
}

// Slice is "x[lower:upper:step]". Any bound may be nil.
type Slice struct {
	Lower Expr
	Upper Expr
	Step  Expr
}

// ExtSlice is a multi-dimensional subscript "x[a:b, c]".
type ExtSlice struct {
	Dims []SliceExpr
}

func (*BoolOp) exprNode()       {}
func (*BinOp) exprNode()        {}
func (*UnaryOp) exprNode()      {}
func (*Lambda) exprNode()       {}
func (*IfExp) exprNode()        {}
func (*Dict) exprNode()         {}
func (*Set) exprNode()          {}
func (*ListComp) exprNode()     {}
func (*SetComp) exprNode()      {}
func (*DictComp) exprNode()     {}
func (*GeneratorExp) exprNode() {}
func (*Yield) exprNode()        {}
func (*Compare) exprNode()      {}
func (*Call) exprNode()         {}
func (*Num) exprNode()          {}
func (*Str) exprNode()          {}
func (*Constant) exprNode()     {}
func (*Attribute) exprNode()    {}
func (*Subscript) exprNode()    {}
func (*Name) exprNode()         {}
func (*List) exprNode()         {}
func (*Tuple) exprNode()        {}

func (*Index) sliceNode()    {}
func (*Slice) sliceNode()    {}
func (*ExtSlice) sliceNode() {}
