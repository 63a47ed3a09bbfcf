package compiler

import (
	"github.com/risor-io/tessera/asm"
	"github.com/risor-io/tessera/ast"
	"github.com/risor-io/tessera/errz"
	"github.com/risor-io/tessera/op"
)

func (g *codeGenerator) compileExpr(expr ast.Expr) error {
	g.UpdatePosition(expr.Pos().Line, false)
	switch e := expr.(type) {
	case *ast.BoolOp:
		return g.compileBoolOp(e)
	case *ast.BinOp:
		return g.compileBinOp(e)
	case *ast.UnaryOp:
		return g.compileUnaryOp(e)
	case *ast.Lambda:
		return g.compileLambda(e)
	case *ast.IfExp:
		return g.compileIfExp(e)
	case *ast.Dict:
		return g.compileDict(e)
	case *ast.Set:
		return g.compileSequence(e.Elts, op.BuildSet, op.SetAdd)
	case *ast.ListComp:
		g.EmitArg(op.BuildList, 0)
		return g.compileListCompGenerator(e, 0)
	case *ast.SetComp:
		return g.compileComprehension(setComp{e}, "<setcomp>")
	case *ast.DictComp:
		return g.compileComprehension(dictComp{e}, "<dictcomp>")
	case *ast.GeneratorExp:
		return g.compileComprehension(genExp{e}, "<genexpr>")
	case *ast.Yield:
		if e.Value != nil {
			if err := g.compileExpr(e.Value); err != nil {
				return err
			}
		} else {
			g.LoadConst(nil)
		}
		g.Emit(op.YieldValue)
		return nil
	case *ast.Compare:
		return g.compileCompare(e)
	case *ast.Call:
		return g.compileCall(e)
	case *ast.Num:
		return g.loadLiteral(e.Pos(), e.Value)
	case *ast.Str:
		g.LoadConst(e.Value)
		return nil
	case *ast.Constant:
		return g.loadLiteral(e.Pos(), e.Value)
	case *ast.Attribute:
		return g.compileAttribute(e)
	case *ast.Subscript:
		return g.compileSubscript(e)
	case *ast.Name:
		return g.nameOp(e.Pos(), e.ID, e.Ctx)
	case *ast.List:
		return g.compileElements(e.Elts, e.Ctx, op.BuildList, op.ListAppend)
	case *ast.Tuple:
		return g.compileElements(e.Elts, e.Ctx, op.BuildTuple, 0)
	default:
		return errz.ContractError(expr.Pos(), "unknown expression type %T", expr)
	}
}

// compileElements compiles a list or tuple display, or a list or tuple
// used as an unpacking or deletion target.
func (g *codeGenerator) compileElements(elts []ast.Expr, ctx ast.Ctx, build, add op.Code) error {
	switch ctx {
	case ast.Store:
		g.EmitArg(op.UnpackSequence, len(elts))
		return g.compileExprs(elts)
	case ast.Del:
		return g.compileExprs(elts)
	}
	return g.compileSequence(elts, build, add)
}

// compileSequence builds a container display. Displays longer than the
// build threshold start empty and add one element at a time, keeping the
// stack shallow. A zero add opcode disables the incremental form.
func (g *codeGenerator) compileSequence(elts []ast.Expr, build, add op.Code) error {
	if add != 0 && len(elts) > g.cfg.buildThreshold {
		g.EmitArg(build, 0)
		for _, elt := range elts {
			if err := g.compileExpr(elt); err != nil {
				return err
			}
			g.EmitArg(add, 1)
		}
		return nil
	}
	if err := g.compileExprs(elts); err != nil {
		return err
	}
	g.EmitArg(build, len(elts))
	return nil
}

func (g *codeGenerator) compileDict(node *ast.Dict) error {
	if len(node.Keys) != len(node.Values) {
		return errz.ContractError(node.Pos(), "dict display has %d keys and %d values",
			len(node.Keys), len(node.Values))
	}
	size := len(node.Values)
	if size > 0xFFFF {
		size = 0xFFFF
	}
	g.EmitArg(op.BuildMap, size)
	for i, value := range node.Values {
		if err := g.compileExpr(value); err != nil {
			return err
		}
		if err := g.compileExpr(node.Keys[i]); err != nil {
			return err
		}
		g.Emit(op.StoreMap)
	}
	return nil
}

func (g *codeGenerator) compileBoolOp(node *ast.BoolOp) error {
	jump := op.JumpIfFalseOrPop
	if node.Op == ast.Or {
		jump = op.JumpIfTrueOrPop
	}
	end := asm.NewBlock()
	last := len(node.Values) - 1
	for i, value := range node.Values {
		if err := g.compileExpr(value); err != nil {
			return err
		}
		if i < last {
			g.EmitJump(jump, end)
		}
	}
	g.UseNextBlock(end)
	return nil
}

func binaryOp(o ast.Operator, trueDivision bool) op.Code {
	switch o {
	case ast.Add:
		return op.BinaryAdd
	case ast.Sub:
		return op.BinarySubtract
	case ast.Mult:
		return op.BinaryMultiply
	case ast.Div:
		if trueDivision {
			return op.BinaryTrueDivide
		}
		return op.BinaryDivide
	case ast.Mod:
		return op.BinaryModulo
	case ast.Pow:
		return op.BinaryPower
	case ast.LShift:
		return op.BinaryLShift
	case ast.RShift:
		return op.BinaryRShift
	case ast.BitOr:
		return op.BinaryOr
	case ast.BitXor:
		return op.BinaryXor
	case ast.BitAnd:
		return op.BinaryAnd
	case ast.FloorDiv:
		return op.BinaryFloorDivide
	}
	return 0
}

func (g *codeGenerator) compileBinOp(node *ast.BinOp) error {
	c := binaryOp(node.Op, g.cfg.trueDivision)
	if c == 0 {
		return errz.ContractError(node.Pos(), "unknown binary operator %d", node.Op)
	}
	if err := g.compileExpr(node.Left); err != nil {
		return err
	}
	if err := g.compileExpr(node.Right); err != nil {
		return err
	}
	g.Emit(c)
	return nil
}

func (g *codeGenerator) compileUnaryOp(node *ast.UnaryOp) error {
	var c op.Code
	switch node.Op {
	case ast.Invert:
		c = op.UnaryInvert
	case ast.Not:
		c = op.UnaryNot
	case ast.UAdd:
		c = op.UnaryPositive
	case ast.USub:
		c = op.UnaryNegative
	default:
		return errz.ContractError(node.Pos(), "unknown unary operator %d", node.Op)
	}
	if err := g.compileExpr(node.Operand); err != nil {
		return err
	}
	g.Emit(c)
	return nil
}

func (g *codeGenerator) compileLambda(node *ast.Lambda) error {
	defaults := defaultsOf(node.Args)
	if err := g.compileExprs(defaults); err != nil {
		return err
	}
	code, err := g.subScope(node, "<lambda>", func(sub *codeGenerator) error {
		// Keeps a string result from being taken for a docstring.
		sub.Consts.Add(nil)
		if err := sub.compileExpr(node.Body); err != nil {
			return err
		}
		sub.Emit(op.ReturnValue)
		return nil
	})
	if err != nil {
		return err
	}
	return g.makeFunction(code, len(defaults))
}

func (g *codeGenerator) compileIfExp(node *ast.IfExp) error {
	switch truthOf(node.Truth, node.Test) {
	case ast.AlwaysTrue:
		return g.compileExpr(node.Body)
	case ast.AlwaysFalse:
		return g.compileExpr(node.Orelse)
	}
	end := asm.NewBlock()
	otherwise := asm.NewBlock()
	if err := g.jumpIf(node.Test, false, otherwise); err != nil {
		return err
	}
	if err := g.compileExpr(node.Body); err != nil {
		return err
	}
	g.EmitJump(op.JumpForward, end)
	g.UseNextBlock(otherwise)
	if err := g.compileExpr(node.Orelse); err != nil {
		return err
	}
	g.UseNextBlock(end)
	return nil
}

// jumpIf compiles expr as a branch to target taken when its truth equals
// cond. Negations and boolean operators become jumps rather than values.
func (g *codeGenerator) jumpIf(expr ast.Expr, cond bool, target *asm.Block) error {
	switch e := expr.(type) {
	case *ast.UnaryOp:
		if e.Op == ast.Not {
			g.UpdatePosition(e.Pos().Line, false)
			return g.jumpIf(e.Operand, !cond, target)
		}
	case *ast.BoolOp:
		if len(e.Values) == 0 {
			return errz.ContractError(e.Pos(), "empty boolean operation")
		}
		g.UpdatePosition(e.Pos().Line, false)
		last := len(e.Values) - 1
		if (e.Op == ast.And) != cond {
			// "a and b" is false as soon as one value is false, and "a or b"
			// is true as soon as one value is true.
			for _, value := range e.Values {
				if err := g.jumpIf(value, cond, target); err != nil {
					return err
				}
			}
			return nil
		}
		end := asm.NewBlock()
		for _, value := range e.Values[:last] {
			if err := g.jumpIf(value, !cond, end); err != nil {
				return err
			}
		}
		if err := g.jumpIf(e.Values[last], cond, target); err != nil {
			return err
		}
		g.UseNextBlock(end)
		return nil
	}
	if err := g.compileExpr(expr); err != nil {
		return err
	}
	if cond {
		g.EmitJump(op.PopJumpIfTrue, target)
	} else {
		g.EmitJump(op.PopJumpIfFalse, target)
	}
	return nil
}

var compareOps = map[ast.CmpOp]op.CompareOpType{
	ast.Eq:    op.Equal,
	ast.NotEq: op.NotEqual,
	ast.Lt:    op.LessThan,
	ast.LtE:   op.LessThanOrEqual,
	ast.Gt:    op.GreaterThan,
	ast.GtE:   op.GreaterThanOrEqual,
	ast.Is:    op.Is,
	ast.IsNot: op.IsNot,
	ast.In:    op.In,
	ast.NotIn: op.NotIn,
}

func (g *codeGenerator) emitCompare(pos ast.Node, c ast.CmpOp) error {
	kind, ok := compareOps[c]
	if !ok {
		return errz.ContractError(pos.Pos(), "unknown comparison operator %d", c)
	}
	g.EmitArg(op.CompareOp, int(kind))
	return nil
}

// compileCompare compiles a comparison chain. Each intermediate operand is
// duplicated under its result, and the chain exits early with the first
// false result.
func (g *codeGenerator) compileCompare(node *ast.Compare) error {
	n := len(node.Ops)
	if n == 0 || n != len(node.Comparators) {
		return errz.ContractError(node.Pos(), "malformed comparison")
	}
	if err := g.compileExpr(node.Left); err != nil {
		return err
	}
	var cleanup *asm.Block
	if n > 1 {
		cleanup = asm.NewBlock()
		if err := g.compileExpr(node.Comparators[0]); err != nil {
			return err
		}
	}
	for i := 1; i < n; i++ {
		g.Emit(op.DupTop)
		g.Emit(op.RotThree)
		if err := g.emitCompare(node, node.Ops[i-1]); err != nil {
			return err
		}
		g.EmitJump(op.JumpIfFalseOrPop, cleanup)
		if i < n-1 {
			if err := g.compileExpr(node.Comparators[i]); err != nil {
				return err
			}
		}
	}
	if err := g.compileExpr(node.Comparators[n-1]); err != nil {
		return err
	}
	if err := g.emitCompare(node, node.Ops[n-1]); err != nil {
		return err
	}
	if n > 1 {
		end := asm.NewBlock()
		g.EmitJump(op.JumpForward, end)
		g.UseNextBlock(cleanup)
		g.Emit(op.RotTwo)
		g.Emit(op.PopTop)
		g.UseNextBlock(end)
	}
	return nil
}

func (g *codeGenerator) compileCall(node *ast.Call) error {
	if err := g.compileExpr(node.Func); err != nil {
		return err
	}
	if err := g.compileExprs(node.Args); err != nil {
		return err
	}
	arg := len(node.Args)
	for _, kw := range node.Keywords {
		g.LoadConst(kw.Arg)
		if err := g.compileExpr(kw.Value); err != nil {
			return err
		}
	}
	arg |= len(node.Keywords) << 8
	c := op.CallFunction
	if node.Starargs != nil {
		if err := g.compileExpr(node.Starargs); err != nil {
			return err
		}
		c = op.CallFunctionVar
	}
	if node.Kwargs != nil {
		if err := g.compileExpr(node.Kwargs); err != nil {
			return err
		}
		if c == op.CallFunctionVar {
			c = op.CallFunctionVarKw
		} else {
			c = op.CallFunctionKw
		}
	}
	g.EmitArg(c, arg)
	return nil
}

func (g *codeGenerator) compileAttribute(node *ast.Attribute) error {
	if node.Ctx != ast.AugStore {
		if err := g.compileExpr(node.Value); err != nil {
			return err
		}
	}
	switch node.Ctx {
	case ast.AugLoad:
		g.Emit(op.DupTop)
		g.emitName(op.LoadAttr, node.Attr)
	case ast.Load:
		g.emitName(op.LoadAttr, node.Attr)
	case ast.AugStore:
		g.Emit(op.RotTwo)
		g.emitName(op.StoreAttr, node.Attr)
	case ast.Store:
		g.emitName(op.StoreAttr, node.Attr)
	case ast.Del:
		g.emitName(op.DeleteAttr, node.Attr)
	}
	return nil
}
