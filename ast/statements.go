package ast

// Module is the root of a compiled file.
type Module struct {
	Loc
	Body []Stmt
}

// Arguments is the parameter list of a function or lambda.
type Arguments struct {
	Args     []string
	Vararg   string // empty when absent
	Kwarg    string // empty when absent
	Defaults []Expr // defaults for the trailing len(Defaults) arguments
}

// FunctionDef is a "def" statement.
type FunctionDef struct {
	Loc
	Name          string
	Args          *Arguments
	Body          []Stmt
	DecoratorList []Expr
}

// ClassDef is a "class" statement.
type ClassDef struct {
	Loc
	Name          string
	Bases         []Expr
	Body          []Stmt
	DecoratorList []Expr
}

// Return is a "return" statement. Value is nil for a bare return.
type Return struct {
	Loc
	Value Expr
}

// Delete is a "del" statement.
type Delete struct {
	Loc
	Targets []Expr
}

// Assign binds Value to every target, left to right.
type Assign struct {
	Loc
	Targets []Expr
	Value   Expr
}

// AugAssign is an in-place assignment such as "x += 1".
type AugAssign struct {
	Loc
	Target Expr
	Op     Operator
	Value  Expr
}

// For is a "for" loop.
type For struct {
	Loc
	Target Expr
	Iter   Expr
	Body   []Stmt
	Orelse []Stmt
}

// While is a "while" loop.
type While struct {
	Loc
	Test   Expr
	Body   []Stmt
	Orelse []Stmt
	Truth  Truth
}

// If is an "if" statement; "elif" chains nest in Orelse.
type If struct {
	Loc
	Test   Expr
	Body   []Stmt
	Orelse []Stmt
	Truth  Truth
}

// With is a "with" statement.
type With struct {
	Loc
	ContextExpr  Expr
	OptionalVars Expr // nil when there is no "as" target
	Body         []Stmt
}

// Raise is a "raise" statement with up to three operands.
type Raise struct {
	Loc
	Type  Expr
	Inst  Expr
	Tback Expr
}

// ExceptHandler is one "except" clause of a TryExcept.
type ExceptHandler struct {
	Loc
	Type Expr // nil for a bare "except:"
	Name Expr // nil when there is no binding
	Body []Stmt
}

// TryExcept is a "try" statement with "except" clauses.
type TryExcept struct {
	Loc
	Body     []Stmt
	Handlers []*ExceptHandler
	Orelse   []Stmt
}

// TryFinally is a "try" statement with a "finally" clause.
type TryFinally struct {
	Loc
	Body      []Stmt
	Finalbody []Stmt
}

// Assert is an "assert" statement.
type Assert struct {
	Loc
	Test Expr
	Msg  Expr
}

// Alias is one name in an import statement.
type Alias struct {
	Name   string
	AsName string
}

// Import is an "import a.b as c" statement.
type Import struct {
	Loc
	Names []*Alias
}

// ImportFrom is a "from m import x" statement.
type ImportFrom struct {
	Loc
	Module string
	Names  []*Alias
	Level  int
}

// Global is a "global" declaration. It produces no code.
type Global struct {
	Loc
	Names []string
}

// ExprStmt is an expression evaluated for its side effects.
type ExprStmt struct {
	Loc
	Value Expr
}

// Pass is a "pass" statement.
type Pass struct{ Loc }

// Break is a "break" statement.
type Break struct{ Loc }

// Continue is a "continue" statement.
type Continue struct{ Loc }

func (*FunctionDef) stmtNode() {}
func (*ClassDef) stmtNode()    {}
func (*Return) stmtNode()      {}
func (*Delete) stmtNode()      {}
func (*Assign) stmtNode()      {}
func (*AugAssign) stmtNode()   {}
func (*For) stmtNode()         {}
func (*While) stmtNode()       {}
func (*If) stmtNode()          {}
func (*With) stmtNode()        {}
func (*Raise) stmtNode()       {}
func (*TryExcept) stmtNode()   {}
func (*TryFinally) stmtNode()  {}
func (*Assert) stmtNode()      {}
func (*Import) stmtNode()      {}
func (*ImportFrom) stmtNode()  {}
func (*Global) stmtNode()      {}
func (*ExprStmt) stmtNode()    {}
func (*Pass) stmtNode()        {}
func (*Break) stmtNode()       {}
func (*Continue) stmtNode()    {}
