package compiler

import (
	"github.com/risor-io/tessera/ast"
	"github.com/risor-io/tessera/errz"
	"github.com/risor-io/tessera/op"
)

// The operands of an augmented subscript assignment are evaluated once in
// the AugLoad pass and duplicated. The AugStore pass then rotates the new
// value under the duplicated operands instead of evaluating them again.

func (g *codeGenerator) compileSubscript(node *ast.Subscript) error {
	if node.Ctx != ast.AugStore {
		if err := g.compileExpr(node.Value); err != nil {
			return err
		}
	}
	switch slc := node.Slice.(type) {
	case *ast.Index:
		if node.Ctx != ast.AugStore {
			if err := g.compileExpr(slc.Value); err != nil {
				return err
			}
		}
	case *ast.Slice:
		if slc.Step == nil {
			return g.compileSimpleSlice(slc, node.Ctx)
		}
		if node.Ctx != ast.AugStore {
			if err := g.compileSliceObject(slc); err != nil {
				return err
			}
		}
	case *ast.ExtSlice:
		if node.Ctx != ast.AugStore {
			for _, dim := range slc.Dims {
				if err := g.compileDimension(node, dim); err != nil {
					return err
				}
			}
			g.EmitArg(op.BuildTuple, len(slc.Dims))
		}
	default:
		return errz.ContractError(node.Pos(), "unknown subscript type %T", node.Slice)
	}
	switch node.Ctx {
	case ast.AugLoad:
		g.EmitArg(op.DupTopX, 2)
		g.Emit(op.BinarySubscr)
	case ast.AugStore:
		g.Emit(op.RotThree)
		g.Emit(op.StoreSubscr)
	case ast.Store:
		g.Emit(op.StoreSubscr)
	case ast.Del:
		g.Emit(op.DeleteSubscr)
	default:
		g.Emit(op.BinarySubscr)
	}
	return nil
}

// compileSimpleSlice compiles "x[a:b]" with the SLICE family, whose
// opcode offset encodes which bounds are present.
func (g *codeGenerator) compileSimpleSlice(slc *ast.Slice, ctx ast.Ctx) error {
	offset, count := 0, 0
	if slc.Lower != nil {
		offset++
		count++
		if ctx != ast.AugStore {
			if err := g.compileExpr(slc.Lower); err != nil {
				return err
			}
		}
	}
	if slc.Upper != nil {
		offset += 2
		count++
		if ctx != ast.AugStore {
			if err := g.compileExpr(slc.Upper); err != nil {
				return err
			}
		}
	}
	switch ctx {
	case ast.AugLoad:
		if count == 0 {
			g.Emit(op.DupTop)
		} else {
			g.EmitArg(op.DupTopX, count+1)
		}
	case ast.AugStore:
		g.Emit([]op.Code{op.RotTwo, op.RotThree, op.RotFour}[count])
	}
	base := op.Slice0
	switch ctx {
	case ast.Store, ast.AugStore:
		base = op.StoreSlice0
	case ast.Del:
		base = op.DeleteSlice0
	}
	g.Emit(base + op.Code(offset))
	return nil
}

// compileSliceObject builds a slice object from the bounds, loading None
// for absent ones.
func (g *codeGenerator) compileSliceObject(slc *ast.Slice) error {
	for _, bound := range []ast.Expr{slc.Lower, slc.Upper} {
		if bound == nil {
			g.LoadConst(nil)
			continue
		}
		if err := g.compileExpr(bound); err != nil {
			return err
		}
	}
	n := 2
	if slc.Step != nil {
		if err := g.compileExpr(slc.Step); err != nil {
			return err
		}
		n++
	}
	g.EmitArg(op.BuildSlice, n)
	return nil
}

func (g *codeGenerator) compileDimension(node *ast.Subscript, dim ast.SliceExpr) error {
	switch dim := dim.(type) {
	case *ast.Slice:
		return g.compileSliceObject(dim)
	case *ast.Index:
		return g.compileExpr(dim.Value)
	}
	return errz.ContractError(node.Pos(), "invalid extended slice dimension %T", dim)
}
