package compiler

import (
	"github.com/risor-io/tessera/asm"
	"github.com/risor-io/tessera/ast"
	"github.com/risor-io/tessera/errz"
	"github.com/risor-io/tessera/op"
)

// comprehension is a comprehension compiled into a unit of its own. The
// three variants share the loop structure and differ only in the result
// container and in what the innermost loop does with each element.
type comprehension interface {
	node() ast.Expr
	generators() []*ast.Comprehension
	// buildContainer emits the empty result container and reports whether
	// the unit returns it.
	buildContainer(g *codeGenerator) bool
	// acceptIteration emits the innermost step. depth is the stack offset
	// of the container below the produced element.
	acceptIteration(g *codeGenerator, depth int) error
}

type genExp struct{ *ast.GeneratorExp }

func (c genExp) node() ast.Expr                     { return c.GeneratorExp }
func (c genExp) generators() []*ast.Comprehension   { return c.Generators }
func (c genExp) buildContainer(*codeGenerator) bool { return false }

func (c genExp) acceptIteration(g *codeGenerator, _ int) error {
	if err := g.compileExpr(c.Elt); err != nil {
		return err
	}
	g.Emit(op.YieldValue)
	g.Emit(op.PopTop)
	return nil
}

type setComp struct{ *ast.SetComp }

func (c setComp) node() ast.Expr                   { return c.SetComp }
func (c setComp) generators() []*ast.Comprehension { return c.Generators }

func (c setComp) buildContainer(g *codeGenerator) bool {
	g.EmitArg(op.BuildSet, 0)
	return true
}

func (c setComp) acceptIteration(g *codeGenerator, depth int) error {
	if err := g.compileExpr(c.Elt); err != nil {
		return err
	}
	g.EmitArg(op.SetAdd, depth)
	return nil
}

type dictComp struct{ *ast.DictComp }

func (c dictComp) node() ast.Expr                   { return c.DictComp }
func (c dictComp) generators() []*ast.Comprehension { return c.Generators }

func (c dictComp) buildContainer(g *codeGenerator) bool {
	g.EmitArg(op.BuildMap, 0)
	return true
}

func (c dictComp) acceptIteration(g *codeGenerator, depth int) error {
	if err := g.compileExpr(c.Value); err != nil {
		return err
	}
	if err := g.compileExpr(c.Key); err != nil {
		return err
	}
	g.EmitArg(op.MapAdd, depth)
	return nil
}

// compileComprehension compiles the comprehension into a nested unit and
// calls it with the iterator of the outermost iterable, which is evaluated
// in the enclosing scope.
func (g *codeGenerator) compileComprehension(comp comprehension, name string) error {
	node := comp.node()
	gens := comp.generators()
	if len(gens) == 0 {
		return errz.ContractError(node.Pos(), "%s without generators", name)
	}
	code, err := g.subScope(node, name, func(sub *codeGenerator) error {
		sub.UpdatePosition(node.Pos().Line, false)
		returns := comp.buildContainer(sub)
		if err := sub.compileComprehensionLoop(comp, 0); err != nil {
			return err
		}
		if returns {
			sub.Emit(op.ReturnValue)
		}
		return nil
	})
	if err != nil {
		return err
	}
	g.UpdatePosition(node.Pos().Line, false)
	if err := g.makeFunction(code, 0); err != nil {
		return err
	}
	if err := g.compileExpr(gens[0].Iter); err != nil {
		return err
	}
	g.Emit(op.GetIter)
	g.EmitArg(op.CallFunction, 1)
	return nil
}

// comprehensionLoop emits one "for" clause around body. Filters that fail
// jump back to the loop header.
func (g *codeGenerator) comprehensionLoop(gen *ast.Comprehension, loadIter func() error, body func() error) error {
	start := asm.NewBlock()
	ifCleanup := asm.NewBlock()
	anchor := asm.NewBlock()
	if err := loadIter(); err != nil {
		return err
	}
	g.UseNextBlock(start)
	g.EmitJump(op.ForIter, anchor)
	g.UseNextBlock(nil)
	if err := g.compileExpr(gen.Target); err != nil {
		return err
	}
	for _, cond := range gen.Ifs {
		if err := g.jumpIf(cond, false, ifCleanup); err != nil {
			return err
		}
		g.UseNextBlock(nil)
	}
	if err := body(); err != nil {
		return err
	}
	g.UseNextBlock(ifCleanup)
	g.EmitJump(op.JumpAbsolute, start)
	g.UseNextBlock(anchor)
	return nil
}

// compileComprehensionLoop emits clause index of a nested comprehension.
// The outermost iterator arrives as the implicit argument ".0".
func (g *codeGenerator) compileComprehensionLoop(comp comprehension, index int) error {
	gens := comp.generators()
	gen := gens[index]
	loadIter := func() error {
		if index == 0 {
			g.EmitArg(op.LoadFast, 0)
			return nil
		}
		if err := g.compileExpr(gen.Iter); err != nil {
			return err
		}
		g.Emit(op.GetIter)
		return nil
	}
	return g.comprehensionLoop(gen, loadIter, func() error {
		if index+1 < len(gens) {
			return g.compileComprehensionLoop(comp, index+1)
		}
		return comp.acceptIteration(g, index+2)
	})
}

// compileListCompGenerator emits clause index of a list comprehension,
// which runs inline in the enclosing unit.
func (g *codeGenerator) compileListCompGenerator(node *ast.ListComp, index int) error {
	if len(node.Generators) == 0 {
		return errz.ContractError(node.Pos(), "list comprehension without generators")
	}
	gen := node.Generators[index]
	loadIter := func() error {
		if err := g.compileExpr(gen.Iter); err != nil {
			return err
		}
		g.Emit(op.GetIter)
		return nil
	}
	return g.comprehensionLoop(gen, loadIter, func() error {
		if index+1 < len(node.Generators) {
			return g.compileListCompGenerator(node, index+1)
		}
		if err := g.compileExpr(node.Elt); err != nil {
			return err
		}
		g.EmitArg(op.ListAppend, index+2)
		return nil
	})
}
