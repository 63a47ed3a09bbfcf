package compiler

import (
	"strings"

	"github.com/risor-io/tessera/asm"
	"github.com/risor-io/tessera/ast"
	"github.com/risor-io/tessera/bytecode"
	"github.com/risor-io/tessera/errz"
	"github.com/risor-io/tessera/op"
)

func (g *codeGenerator) compileStmt(stmt ast.Stmt) error {
	g.UpdatePosition(stmt.Pos().Line, true)
	switch s := stmt.(type) {
	case *ast.FunctionDef:
		return g.compileFunctionDef(s)
	case *ast.ClassDef:
		return g.compileClassDef(s)
	case *ast.Return:
		return g.compileReturn(s)
	case *ast.Delete:
		return g.compileExprs(s.Targets)
	case *ast.Assign:
		return g.compileAssign(s)
	case *ast.AugAssign:
		return g.compileAugAssign(s)
	case *ast.For:
		return g.compileFor(s)
	case *ast.While:
		return g.compileWhile(s)
	case *ast.If:
		return g.compileIf(s)
	case *ast.With:
		return g.compileWith(s)
	case *ast.Raise:
		return g.compileRaise(s)
	case *ast.TryExcept:
		return g.compileTryExcept(s)
	case *ast.TryFinally:
		return g.compileTryFinally(s)
	case *ast.Assert:
		return g.compileAssert(s)
	case *ast.Import:
		return g.compileImport(s)
	case *ast.ImportFrom:
		return g.compileImportFrom(s)
	case *ast.ExprStmt:
		return g.compileExprStmt(s)
	case *ast.Break:
		if !g.inLoop() {
			return errz.ContractError(s.Pos(), "'break' outside loop")
		}
		g.Emit(op.BreakLoop)
		return nil
	case *ast.Continue:
		return g.compileContinue(s)
	case *ast.Global, *ast.Pass:
		return nil
	default:
		return errz.ContractError(stmt.Pos(), "unknown statement type %T", stmt)
	}
}

func defaultsOf(args *ast.Arguments) []ast.Expr {
	if args == nil {
		return nil
	}
	return args.Defaults
}

// applyDecorators calls each already loaded decorator on the value on top
// of the stack, innermost first.
func (g *codeGenerator) applyDecorators(decorators []ast.Expr) {
	for range decorators {
		g.EmitArg(op.CallFunction, 1)
	}
}

func (g *codeGenerator) compileFunctionDef(node *ast.FunctionDef) error {
	if err := g.compileExprs(node.DecoratorList); err != nil {
		return err
	}
	defaults := defaultsOf(node.Args)
	if err := g.compileExprs(defaults); err != nil {
		return err
	}
	code, err := g.subScope(node, node.Name, func(sub *codeGenerator) error {
		// The first constant of a function is its docstring, or None.
		body := node.Body
		if doc, ok := ast.Docstring(body); ok {
			sub.Consts.Add(doc)
			body = body[1:]
		} else {
			sub.Consts.Add(nil)
		}
		return sub.compileStmts(body)
	})
	if err != nil {
		return err
	}
	if err := g.makeFunction(code, len(defaults)); err != nil {
		return err
	}
	g.applyDecorators(node.DecoratorList)
	return g.nameOp(node.Pos(), node.Name, ast.Store)
}

func (g *codeGenerator) compileClassDef(node *ast.ClassDef) error {
	if err := g.compileExprs(node.DecoratorList); err != nil {
		return err
	}
	g.LoadConst(node.Name)
	if err := g.compileExprs(node.Bases); err != nil {
		return err
	}
	g.EmitArg(op.BuildTuple, len(node.Bases))
	code, err := g.subScope(node, node.Name, func(sub *codeGenerator) error {
		pos := node.Pos()
		sub.UpdatePosition(pos.Line, true)
		if err := sub.nameOp(pos, "__name__", ast.Load); err != nil {
			return err
		}
		if err := sub.nameOp(pos, "__module__", ast.Store); err != nil {
			return err
		}
		if err := sub.compileBody(node.Body); err != nil {
			return err
		}
		sub.Emit(op.LoadLocals)
		sub.Emit(op.ReturnValue)
		return nil
	})
	if err != nil {
		return err
	}
	if err := g.makeFunction(code, 0); err != nil {
		return err
	}
	g.EmitArg(op.CallFunction, 0)
	g.Emit(op.BuildClass)
	g.applyDecorators(node.DecoratorList)
	return g.nameOp(node.Pos(), node.Name, ast.Store)
}

func (g *codeGenerator) compileReturn(node *ast.Return) error {
	if node.Value != nil {
		if err := g.compileExpr(node.Value); err != nil {
			return err
		}
	} else {
		g.LoadConst(nil)
	}
	g.Emit(op.ReturnValue)
	return nil
}

func (g *codeGenerator) compileAssign(node *ast.Assign) error {
	if ok, err := g.compileUnpacking(node); ok || err != nil {
		return err
	}
	if err := g.compileExpr(node.Value); err != nil {
		return err
	}
	for i, target := range node.Targets {
		if i < len(node.Targets)-1 {
			g.Emit(op.DupTop)
		}
		if err := g.compileExpr(target); err != nil {
			return err
		}
	}
	return nil
}

func elementsOf(e ast.Expr) ([]ast.Expr, bool) {
	switch e := e.(type) {
	case *ast.Tuple:
		return e.Elts, true
	case *ast.List:
		return e.Elts, true
	}
	return nil, false
}

// compileUnpacking compiles "a, b = x, y" without building and unpacking a
// tuple. It reports false when the assignment does not have that shape.
func (g *codeGenerator) compileUnpacking(node *ast.Assign) (bool, error) {
	if len(node.Targets) != 1 {
		return false, nil
	}
	targets, ok := elementsOf(node.Targets[0])
	if !ok {
		return false, nil
	}
	values, ok := elementsOf(node.Value)
	if !ok || len(values) != len(targets) {
		return false, nil
	}
	allNames := true
	for _, target := range targets {
		if _, ok := target.(*ast.Name); !ok {
			allNames = false
			break
		}
	}
	if allNames {
		if err := g.compileExprs(values); err != nil {
			return true, err
		}
		// Store right to left; a repeated name keeps its last value.
		seen := map[string]bool{}
		for i := len(targets) - 1; i >= 0; i-- {
			name := targets[i].(*ast.Name)
			if seen[name.ID] {
				g.Emit(op.PopTop)
				continue
			}
			seen[name.ID] = true
			if err := g.nameOp(name.Pos(), name.ID, ast.Store); err != nil {
				return true, err
			}
		}
		return true, nil
	}
	if len(values) > 3 {
		return false, nil
	}
	if err := g.compileExprs(values); err != nil {
		return true, err
	}
	switch len(values) {
	case 2:
		g.Emit(op.RotTwo)
	case 3:
		g.Emit(op.RotThree)
		g.Emit(op.RotTwo)
	}
	return true, g.compileExprs(targets)
}

func inplaceOp(o ast.Operator, trueDivision bool) op.Code {
	switch o {
	case ast.Add:
		return op.InplaceAdd
	case ast.Sub:
		return op.InplaceSubtract
	case ast.Mult:
		return op.InplaceMultiply
	case ast.Div:
		if trueDivision {
			return op.InplaceTrueDivide
		}
		return op.InplaceDivide
	case ast.Mod:
		return op.InplaceModulo
	case ast.Pow:
		return op.InplacePower
	case ast.LShift:
		return op.InplaceLShift
	case ast.RShift:
		return op.InplaceRShift
	case ast.BitOr:
		return op.InplaceOr
	case ast.BitXor:
		return op.InplaceXor
	case ast.BitAnd:
		return op.InplaceAnd
	case ast.FloorDiv:
		return op.InplaceFloorDivide
	}
	return 0
}

func (g *codeGenerator) compileAugAssign(node *ast.AugAssign) error {
	inplace := inplaceOp(node.Op, g.cfg.trueDivision)
	if inplace == 0 {
		return errz.ContractError(node.Pos(), "unknown augmented operator %d", node.Op)
	}
	operate := func() error {
		if err := g.compileExpr(node.Value); err != nil {
			return err
		}
		g.Emit(inplace)
		return nil
	}
	switch target := node.Target.(type) {
	case *ast.Attribute:
		attr := &ast.Attribute{Loc: target.Loc, Value: target.Value, Attr: target.Attr, Ctx: ast.AugLoad}
		if err := g.compileExpr(attr); err != nil {
			return err
		}
		if err := operate(); err != nil {
			return err
		}
		attr.Ctx = ast.AugStore
		return g.compileExpr(attr)
	case *ast.Subscript:
		sub := &ast.Subscript{Loc: target.Loc, Value: target.Value, Slice: target.Slice, Ctx: ast.AugLoad}
		if err := g.compileExpr(sub); err != nil {
			return err
		}
		if err := operate(); err != nil {
			return err
		}
		sub.Ctx = ast.AugStore
		return g.compileExpr(sub)
	case *ast.Name:
		if err := g.nameOp(target.Pos(), target.ID, ast.Load); err != nil {
			return err
		}
		if err := operate(); err != nil {
			return err
		}
		return g.nameOp(target.Pos(), target.ID, ast.Store)
	default:
		return errz.ContractError(node.Pos(), "illegal expression for augmented assignment")
	}
}

func truthOf(hint ast.Truth, test ast.Expr) ast.Truth {
	if hint != ast.Unknown {
		return hint
	}
	return ast.ConstantTruth(test)
}

func (g *codeGenerator) compileFor(node *ast.For) error {
	start := asm.NewBlock()
	cleanup := asm.NewBlock()
	end := asm.NewBlock()
	g.EmitJump(op.SetupLoop, end)
	if err := g.pushFrame(node.Pos(), frameLoop, start); err != nil {
		return err
	}
	if err := g.compileExpr(node.Iter); err != nil {
		return err
	}
	g.Emit(op.GetIter)
	g.UseNextBlock(start)
	g.RetagLine()
	g.EmitJump(op.ForIter, cleanup)
	if err := g.compileExpr(node.Target); err != nil {
		return err
	}
	if err := g.compileStmts(node.Body); err != nil {
		return err
	}
	g.EmitJump(op.JumpAbsolute, start)
	g.UseNextBlock(cleanup)
	g.Emit(op.PopBlock)
	if err := g.popFrame(frameLoop, start); err != nil {
		return err
	}
	if err := g.compileStmts(node.Orelse); err != nil {
		return err
	}
	g.UseNextBlock(end)
	return nil
}

func (g *codeGenerator) compileWhile(node *ast.While) error {
	truth := truthOf(node.Truth, node.Test)
	if truth == ast.AlwaysFalse {
		return g.compileStmts(node.Orelse)
	}
	end := asm.NewBlock()
	var anchor *asm.Block
	if truth == ast.Unknown {
		anchor = asm.NewBlock()
	}
	g.EmitJump(op.SetupLoop, end)
	loop := asm.NewBlock()
	if err := g.pushFrame(node.Pos(), frameLoop, loop); err != nil {
		return err
	}
	g.UseNextBlock(loop)
	if anchor != nil {
		g.RetagLine()
		if err := g.jumpIf(node.Test, false, anchor); err != nil {
			return err
		}
	}
	if err := g.compileStmts(node.Body); err != nil {
		return err
	}
	g.EmitJump(op.JumpAbsolute, loop)
	if anchor != nil {
		g.UseNextBlock(anchor)
	}
	g.Emit(op.PopBlock)
	if err := g.popFrame(frameLoop, loop); err != nil {
		return err
	}
	if err := g.compileStmts(node.Orelse); err != nil {
		return err
	}
	g.UseNextBlock(end)
	return nil
}

func (g *codeGenerator) compileIf(node *ast.If) error {
	end := asm.NewBlock()
	switch truthOf(node.Truth, node.Test) {
	case ast.AlwaysFalse:
		if err := g.compileStmts(node.Orelse); err != nil {
			return err
		}
	case ast.AlwaysTrue:
		if err := g.compileStmts(node.Body); err != nil {
			return err
		}
	default:
		otherwise := end
		if len(node.Orelse) > 0 {
			otherwise = asm.NewBlock()
		}
		if err := g.jumpIf(node.Test, false, otherwise); err != nil {
			return err
		}
		if err := g.compileStmts(node.Body); err != nil {
			return err
		}
		if len(node.Orelse) > 0 {
			g.EmitJump(op.JumpForward, end)
			g.UseNextBlock(otherwise)
			if err := g.compileStmts(node.Orelse); err != nil {
				return err
			}
		}
	}
	g.UseNextBlock(end)
	return nil
}

func (g *codeGenerator) compileWith(node *ast.With) error {
	body := asm.NewBlock()
	cleanup := asm.NewBlock()
	if err := g.compileExpr(node.ContextExpr); err != nil {
		return err
	}
	g.EmitJump(op.SetupWith, cleanup)
	g.UseNextBlock(body)
	if err := g.pushFrame(node.Pos(), frameFinally, body); err != nil {
		return err
	}
	if node.OptionalVars != nil {
		if err := g.compileExpr(node.OptionalVars); err != nil {
			return err
		}
	} else {
		g.Emit(op.PopTop)
	}
	if err := g.compileStmts(node.Body); err != nil {
		return err
	}
	g.Emit(op.PopBlock)
	if err := g.popFrame(frameFinally, body); err != nil {
		return err
	}
	g.LoadConst(nil)
	g.UseNextBlock(cleanup)
	if err := g.pushFrame(node.Pos(), frameFinallyEnd, cleanup); err != nil {
		return err
	}
	g.Emit(op.WithCleanup)
	g.Emit(op.EndFinally)
	return g.popFrame(frameFinallyEnd, cleanup)
}

func (g *codeGenerator) compileRaise(node *ast.Raise) error {
	n := 0
	for _, operand := range []ast.Expr{node.Type, node.Inst, node.Tback} {
		if operand == nil {
			break
		}
		if err := g.compileExpr(operand); err != nil {
			return err
		}
		n++
	}
	g.EmitArg(op.RaiseVarargs, n)
	return nil
}

func (g *codeGenerator) compileTryExcept(node *ast.TryExcept) error {
	handlers := asm.NewBlock()
	otherwise := asm.NewBlock()
	end := asm.NewBlock()
	g.EmitJump(op.SetupExcept, handlers)
	body := g.UseNextBlock(nil)
	if err := g.pushFrame(node.Pos(), frameExcept, body); err != nil {
		return err
	}
	if err := g.compileStmts(node.Body); err != nil {
		return err
	}
	g.Emit(op.PopBlock)
	if err := g.popFrame(frameExcept, body); err != nil {
		return err
	}
	g.EmitJump(op.JumpForward, otherwise)
	g.UseNextBlock(handlers)
	for _, handler := range node.Handlers {
		g.UpdatePosition(handler.Pos().Line, true)
		next := asm.NewBlock()
		if handler.Type != nil {
			g.Emit(op.DupTop)
			if err := g.compileExpr(handler.Type); err != nil {
				return err
			}
			g.EmitArg(op.CompareOp, int(op.ExceptionMatch))
			g.EmitJump(op.PopJumpIfFalse, next)
		}
		g.Emit(op.PopTop)
		if handler.Name != nil {
			if err := g.compileExpr(handler.Name); err != nil {
				return err
			}
		} else {
			g.Emit(op.PopTop)
		}
		g.Emit(op.PopTop)
		if err := g.compileStmts(handler.Body); err != nil {
			return err
		}
		g.EmitJump(op.JumpForward, end)
		g.UseNextBlock(next)
	}
	g.Emit(op.EndFinally)
	g.UseNextBlock(otherwise)
	if err := g.compileStmts(node.Orelse); err != nil {
		return err
	}
	g.UseNextBlock(end)
	return nil
}

func (g *codeGenerator) compileTryFinally(node *ast.TryFinally) error {
	end := asm.NewBlock()
	g.EmitJump(op.SetupFinally, end)
	body := g.UseNextBlock(nil)
	if err := g.pushFrame(node.Pos(), frameFinally, body); err != nil {
		return err
	}
	if err := g.compileStmts(node.Body); err != nil {
		return err
	}
	g.Emit(op.PopBlock)
	if err := g.popFrame(frameFinally, body); err != nil {
		return err
	}
	// None on the stack tells END_FINALLY no exception is pending.
	g.LoadConst(nil)
	g.UseNextBlock(end)
	if err := g.pushFrame(node.Pos(), frameFinallyEnd, end); err != nil {
		return err
	}
	if err := g.compileStmts(node.Finalbody); err != nil {
		return err
	}
	g.Emit(op.EndFinally)
	return g.popFrame(frameFinallyEnd, end)
}

func (g *codeGenerator) compileAssert(node *ast.Assert) error {
	end := asm.NewBlock()
	if err := g.jumpIf(node.Test, true, end); err != nil {
		return err
	}
	g.emitName(op.LoadGlobal, "AssertionError")
	if node.Msg != nil {
		if err := g.compileExpr(node.Msg); err != nil {
			return err
		}
		g.EmitArg(op.CallFunction, 1)
	}
	g.EmitArg(op.RaiseVarargs, 1)
	g.UseNextBlock(end)
	return nil
}

// importLevel is the level operand of IMPORT_NAME. Level zero means an
// implicit relative import, encoded as -1, unless absolute imports are on.
func (g *codeGenerator) importLevel(level int) int64 {
	if level == 0 && !g.cfg.absoluteImport {
		return -1
	}
	return int64(level)
}

func (g *codeGenerator) compileImport(node *ast.Import) error {
	for _, alias := range node.Names {
		g.LoadConst(g.importLevel(0))
		g.LoadConst(nil)
		g.emitName(op.ImportName, alias.Name)
		if alias.AsName == "" {
			// "import a.b" binds the top-level package a.
			root, _, _ := strings.Cut(alias.Name, ".")
			if err := g.nameOp(node.Pos(), root, ast.Store); err != nil {
				return err
			}
			continue
		}
		// "import a.b.c as d" binds the innermost module.
		parts := strings.Split(alias.Name, ".")
		for _, attr := range parts[1:] {
			g.emitName(op.LoadAttr, attr)
		}
		if err := g.nameOp(node.Pos(), alias.AsName, ast.Store); err != nil {
			return err
		}
	}
	return nil
}

func (g *codeGenerator) compileImportFrom(node *ast.ImportFrom) error {
	if len(node.Names) == 0 {
		return errz.ContractError(node.Pos(), "import from %q names nothing", node.Module)
	}
	g.LoadConst(g.importLevel(node.Level))
	fromList := make(bytecode.Tuple, len(node.Names))
	for i, alias := range node.Names {
		fromList[i] = alias.Name
	}
	g.LoadConst(fromList)
	g.emitName(op.ImportName, node.Module)
	if len(node.Names) == 1 && node.Names[0].Name == "*" {
		g.Emit(op.ImportStar)
		return nil
	}
	for _, alias := range node.Names {
		g.emitName(op.ImportFrom, alias.Name)
		name := alias.AsName
		if name == "" {
			name = alias.Name
		}
		if err := g.nameOp(node.Pos(), name, ast.Store); err != nil {
			return err
		}
	}
	g.Emit(op.PopTop)
	return nil
}

func (g *codeGenerator) compileExprStmt(node *ast.ExprStmt) error {
	switch node.Value.(type) {
	case *ast.Num, *ast.Str, *ast.Constant:
		// A bare literal has no effect.
		return nil
	}
	if err := g.compileExpr(node.Value); err != nil {
		return err
	}
	g.Emit(op.PopTop)
	return nil
}

func (g *codeGenerator) compileContinue(node *ast.Continue) error {
	if len(g.frames) == 0 {
		return errz.ContractError(node.Pos(), "'continue' not properly in loop")
	}
	top := g.frames[len(g.frames)-1]
	switch top.kind {
	case frameLoop:
		g.EmitJump(op.JumpAbsolute, top.block)
		return nil
	case frameFinallyEnd:
		return errz.ContractError(node.Pos(), "'continue' not supported inside 'finally' clause")
	}
	for i := len(g.frames) - 2; i >= 0; i-- {
		switch g.frames[i].kind {
		case frameLoop:
			g.EmitJump(op.ContinueLoop, g.frames[i].block)
			return nil
		case frameFinallyEnd:
			return errz.ContractError(node.Pos(), "'continue' not supported inside 'finally' clause")
		}
	}
	return errz.ContractError(node.Pos(), "'continue' not properly in loop")
}
