package ast

// Visitor defines the interface for tree traversal. If Visit returns nil,
// children of the node are not visited. Otherwise, the returned Visitor
// is used to visit children.
type Visitor interface {
	Visit(node Node) (w Visitor)
}

// Walk traverses a tree in depth-first order. It starts by calling
// v.Visit(node); if the returned visitor w is not nil, Walk is invoked
// recursively with visitor w for each of the non-nil children of node.
// Comprehension clauses, keywords and subscript parts are not nodes
// themselves; their expressions are visited in place.
func Walk(v Visitor, node Node) {
	if v = v.Visit(node); v == nil {
		return
	}

	switch n := node.(type) {
	case *Module:
		walkStmts(v, n.Body)

	// Statements
	case *FunctionDef:
		walkExprs(v, n.DecoratorList)
		walkArgs(v, n.Args)
		walkStmts(v, n.Body)
	case *ClassDef:
		walkExprs(v, n.DecoratorList)
		walkExprs(v, n.Bases)
		walkStmts(v, n.Body)
	case *Return:
		walkExpr(v, n.Value)
	case *Delete:
		walkExprs(v, n.Targets)
	case *Assign:
		walkExprs(v, n.Targets)
		walkExpr(v, n.Value)
	case *AugAssign:
		walkExpr(v, n.Target)
		walkExpr(v, n.Value)
	case *For:
		walkExpr(v, n.Target)
		walkExpr(v, n.Iter)
		walkStmts(v, n.Body)
		walkStmts(v, n.Orelse)
	case *While:
		walkExpr(v, n.Test)
		walkStmts(v, n.Body)
		walkStmts(v, n.Orelse)
	case *If:
		walkExpr(v, n.Test)
		walkStmts(v, n.Body)
		walkStmts(v, n.Orelse)
	case *With:
		walkExpr(v, n.ContextExpr)
		walkExpr(v, n.OptionalVars)
		walkStmts(v, n.Body)
	case *Raise:
		walkExpr(v, n.Type)
		walkExpr(v, n.Inst)
		walkExpr(v, n.Tback)
	case *TryExcept:
		walkStmts(v, n.Body)
		for _, h := range n.Handlers {
			Walk(v, h)
		}
		walkStmts(v, n.Orelse)
	case *ExceptHandler:
		walkExpr(v, n.Type)
		walkExpr(v, n.Name)
		walkStmts(v, n.Body)
	case *TryFinally:
		walkStmts(v, n.Body)
		walkStmts(v, n.Finalbody)
	case *Assert:
		walkExpr(v, n.Test)
		walkExpr(v, n.Msg)
	case *ExprStmt:
		walkExpr(v, n.Value)
	case *Import, *ImportFrom, *Global, *Pass, *Break, *Continue:
		// no children

	// Expressions
	case *BoolOp:
		walkExprs(v, n.Values)
	case *BinOp:
		walkExpr(v, n.Left)
		walkExpr(v, n.Right)
	case *UnaryOp:
		walkExpr(v, n.Operand)
	case *Lambda:
		walkArgs(v, n.Args)
		walkExpr(v, n.Body)
	case *IfExp:
		walkExpr(v, n.Test)
		walkExpr(v, n.Body)
		walkExpr(v, n.Orelse)
	case *Dict:
		for i := range n.Keys {
			walkExpr(v, n.Keys[i])
			walkExpr(v, n.Values[i])
		}
	case *Set:
		walkExprs(v, n.Elts)
	case *ListComp:
		walkExpr(v, n.Elt)
		walkGenerators(v, n.Generators)
	case *SetComp:
		walkExpr(v, n.Elt)
		walkGenerators(v, n.Generators)
	case *DictComp:
		walkExpr(v, n.Key)
		walkExpr(v, n.Value)
		walkGenerators(v, n.Generators)
	case *GeneratorExp:
		walkExpr(v, n.Elt)
		walkGenerators(v, n.Generators)
	case *Yield:
		walkExpr(v, n.Value)
	case *Compare:
		walkExpr(v, n.Left)
		walkExprs(v, n.Comparators)
	case *Call:
		walkExpr(v, n.Func)
		walkExprs(v, n.Args)
		for _, kw := range n.Keywords {
			walkExpr(v, kw.Value)
		}
		walkExpr(v, n.Starargs)
		walkExpr(v, n.Kwargs)
	case *Attribute:
		walkExpr(v, n.Value)
	case *Subscript:
		walkExpr(v, n.Value)
		walkSlice(v, n.Slice)
	case *List:
		walkExprs(v, n.Elts)
	case *Tuple:
		walkExprs(v, n.Elts)
	case *Num, *Str, *Constant, *Name:
		// leaves
	}
}

func walkStmts(v Visitor, list []Stmt) {
	for _, s := range list {
		Walk(v, s)
	}
}

func walkExprs(v Visitor, list []Expr) {
	for _, e := range list {
		walkExpr(v, e)
	}
}

func walkExpr(v Visitor, e Expr) {
	if e != nil {
		Walk(v, e)
	}
}

func walkArgs(v Visitor, args *Arguments) {
	if args != nil {
		walkExprs(v, args.Defaults)
	}
}

func walkGenerators(v Visitor, gens []*Comprehension) {
	for _, g := range gens {
		walkExpr(v, g.Target)
		walkExpr(v, g.Iter)
		walkExprs(v, g.Ifs)
	}
}

func walkSlice(v Visitor, s SliceExpr) {
	switch s := s.(type) {
	case *Index:
		walkExpr(v, s.Value)
	case *Slice:
		walkExpr(v, s.Lower)
		walkExpr(v, s.Upper)
		walkExpr(v, s.Step)
	case *ExtSlice:
		for _, d := range s.Dims {
			walkSlice(v, d)
		}
	}
}

type inspector func(Node) bool

func (f inspector) Visit(node Node) Visitor {
	if f(node) {
		return f
	}
	return nil
}

// Inspect traverses a tree in depth-first order: It starts by calling f(node);
// if f returns true, Inspect invokes f recursively for each of the non-nil
// children of node.
func Inspect(node Node, f func(Node) bool) {
	Walk(inspector(f), node)
}
