// Package compiler translates a validated syntax tree into bytecode for a
// CPython 2.7 style stack machine.
//
// # Units
//
// Every scope found by the symbol table (the module, each function, lambda,
// class body and comprehension other than list comprehensions) becomes its
// own unit. A unit is generated into a graph of basic blocks by a
// codeGenerator and handed to the assembler, which lays the blocks out,
// resolves jumps and computes the stack size. Nested units are compiled
// depth first and stored as constants of their parent.
//
// # Names
//
// The symbol table decides how each identifier is addressed:
//
//   - Locals of optimized scopes use LOAD_FAST and friends
//   - Cell and free variables use LOAD_DEREF and STORE_DEREF
//   - Explicit globals, and implicit globals of optimized scopes, use
//     LOAD_GLOBAL and friends
//   - Everything else uses LOAD_NAME and friends
//
// # Control flow
//
// Loops, try blocks and with blocks push a frame on a small stack so that
// "break" and "continue" can be validated and compiled. Conditions are
// compiled directly into jumps where possible, so "if not a and b" never
// materializes a boolean.
package compiler

import (
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"

	"github.com/risor-io/tessera/asm"
	"github.com/risor-io/tessera/ast"
	"github.com/risor-io/tessera/bytecode"
	"github.com/risor-io/tessera/errz"
	"github.com/risor-io/tessera/internal/token"
	"github.com/risor-io/tessera/op"
	"github.com/risor-io/tessera/symtable"
)

// Compile generates the bytecode of a module whose scopes were already
// analyzed into scope.
func Compile(mod *ast.Module, scope *symtable.Scope, opts ...Option) (*bytecode.Code, error) {
	if mod == nil {
		return nil, errz.ContractError(token.NoPos, "nil module")
	}
	if scope == nil || scope.Type != symtable.ModuleScope {
		return nil, errz.ContractError(mod.Pos(), "module scope required")
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	session, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	logger := cfg.logger.With().Str("session", session.String()).Logger()

	firstLine := 1
	if len(mod.Body) > 0 {
		firstLine = mod.Body[0].Pos().Line
	}
	g := newCodeGenerator(cfg, scope, "<module>", firstLine, logger)
	if err := g.compileBody(mod.Body); err != nil {
		return nil, err
	}
	code, err := g.Assemble()
	if err != nil {
		return nil, err
	}
	logger.Debug().
		Str("filename", cfg.filename).
		Int("units", len(code.Flatten())).
		Msg("compiled module")
	return code, nil
}

// CompileModule builds the symbol table of mod and compiles it.
func CompileModule(mod *ast.Module, opts ...Option) (*bytecode.Code, error) {
	scope, err := symtable.Build(mod)
	if err != nil {
		return nil, err
	}
	return Compile(mod, scope, opts...)
}

// codeGenerator emits the blocks of a single unit.
type codeGenerator struct {
	*asm.Assembler

	cfg    *config
	scope  *symtable.Scope
	frames []frame
	logger zerolog.Logger
}

func newCodeGenerator(cfg *config, scope *symtable.Scope, name string, firstLine int, logger zerolog.Logger) *codeGenerator {
	var flags bytecode.Flags
	if scope.Type == symtable.FunctionScope {
		flags |= bytecode.FlagNewLocals
		if scope.Optimized {
			flags |= bytecode.FlagOptimized
		}
	}
	if scope.Nested {
		flags |= bytecode.FlagNested
	}
	if scope.Generator {
		flags |= bytecode.FlagGenerator
	}
	if scope.HasVarargs {
		flags |= bytecode.FlagVarArgs
	}
	if scope.HasKwargs {
		flags |= bytecode.FlagVarKeywords
	}
	if cfg.trueDivision {
		flags |= bytecode.FlagTrueDivision
	}
	if cfg.absoluteImport {
		flags |= bytecode.FlagAbsoluteImport
	}
	unit := asm.Unit{
		Name:      name,
		Filename:  cfg.filename,
		FirstLine: firstLine,
		ArgCount:  scope.ArgCount,
		Flags:     flags,
		Hidden:    cfg.hidden,
		Varnames:  scope.Varnames,
		CellVars:  scope.CellVars(),
		FreeVars:  scope.FreeVars(),
	}
	return &codeGenerator{
		Assembler: asm.New(unit, asm.WithLogger(logger), asm.WithErrorWriter(cfg.errOut)),
		cfg:       cfg,
		scope:     scope,
		logger:    logger,
	}
}

// subScope compiles the unit introduced by node with the given body
// generator and returns the assembled code.
func (g *codeGenerator) subScope(node ast.Node, name string, compile func(*codeGenerator) error) (*bytecode.Code, error) {
	scope := g.scope.Child(node)
	if scope == nil {
		return nil, errz.ContractError(node.Pos(), "no scope recorded for %s", name)
	}
	sub := newCodeGenerator(g.cfg, scope, name, node.Pos().Line, g.logger)
	if err := compile(sub); err != nil {
		return nil, err
	}
	return sub.Assemble()
}

// makeFunction turns a code constant into a function object, passing the
// closure cells it needs from this unit.
func (g *codeGenerator) makeFunction(code *bytecode.Code, defaults int) error {
	free := code.FreeVars()
	if len(free) == 0 {
		g.LoadConst(code)
		g.EmitArg(op.MakeFunction, defaults)
		return nil
	}
	for _, name := range free {
		index, ok := g.CellVars.Lookup(name)
		if !ok {
			index, ok = g.FreeVars.Lookup(name)
		}
		if !ok {
			return errz.InternalError(g.Unit().Name, token.At(g.Line()),
				"closure variable %q of %s is not available", name, code.Name())
		}
		g.EmitArg(op.LoadClosure, index)
	}
	g.EmitArg(op.BuildTuple, len(free))
	g.LoadConst(code)
	g.EmitArg(op.MakeClosure, defaults)
	return nil
}

// compileBody compiles a module or class body. A leading string literal is
// stored as __doc__.
func (g *codeGenerator) compileBody(body []ast.Stmt) error {
	start := 0
	if _, ok := ast.Docstring(body); ok {
		start = 1
		doc := body[0].(*ast.ExprStmt)
		g.UpdatePosition(doc.Pos().Line, true)
		if err := g.compileExpr(doc.Value); err != nil {
			return err
		}
		if err := g.nameOp(doc.Pos(), "__doc__", ast.Store); err != nil {
			return err
		}
	}
	return g.compileStmts(body[start:])
}

func (g *codeGenerator) compileStmts(body []ast.Stmt) error {
	var result error
	for _, stmt := range body {
		depth := len(g.frames)
		if err := g.compileStmt(stmt); err != nil {
			g.frames = g.frames[:depth]
			if errz.IsInternal(err) {
				return err
			}
			result = multierror.Append(result, err)
		}
	}
	return result
}

func (g *codeGenerator) compileExprs(exprs []ast.Expr) error {
	for _, expr := range exprs {
		if err := g.compileExpr(expr); err != nil {
			return err
		}
	}
	return nil
}

// emitName emits op with the index of name in the names table.
func (g *codeGenerator) emitName(c op.Code, name string) {
	g.EmitArg(c, g.Names.Add(g.scope.Mangle(name)))
}

type nameOps struct {
	load, store, del op.Code
}

var (
	fastOps   = nameOps{op.LoadFast, op.StoreFast, op.DeleteFast}
	derefOps  = nameOps{op.LoadDeref, op.StoreDeref, 0}
	globalOps = nameOps{op.LoadGlobal, op.StoreGlobal, op.DeleteGlobal}
	plainOps  = nameOps{op.LoadName, op.StoreName, op.DeleteName}
)

func (ops nameOps) forCtx(ctx ast.Ctx) op.Code {
	switch ctx {
	case ast.Store, ast.AugStore:
		return ops.store
	case ast.Del:
		return ops.del
	default:
		return ops.load
	}
}

// nameOp emits the load, store or delete of an identifier, choosing the
// instruction family from the identifier's resolved scope.
func (g *codeGenerator) nameOp(pos token.Position, name string, ctx ast.Ctx) error {
	name = g.scope.Mangle(name)
	var table *asm.NameTable
	ops := plainOps
	switch g.scope.Lookup(name) {
	case symtable.Local:
		if g.scope.Optimized {
			ops, table = fastOps, g.Varnames
		}
	case symtable.Free:
		ops, table = derefOps, g.FreeVars
	case symtable.Cell:
		ops, table = derefOps, g.CellVars
	case symtable.GlobalImplicit:
		if g.scope.Optimized {
			ops = globalOps
		}
	case symtable.GlobalExplicit:
		ops = globalOps
	}
	c := ops.forCtx(ctx)
	if c == 0 {
		return errz.ContractError(pos, "can not delete variable %q referenced in nested scope", name)
	}
	if table == nil {
		table = g.Names
	}
	g.EmitArg(c, table.Add(name))
	return nil
}

// constant converts a literal value of the syntax tree into the value
// stored in the constant pool.
func constant(v any) (any, error) {
	switch v := v.(type) {
	case nil, bool, int64, float64, complex128, string, *bytecode.Code:
		return v, nil
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case float32:
		return float64(v), nil
	case bytecode.Tuple:
		return v, nil
	case []any:
		t := make(bytecode.Tuple, len(v))
		for i, item := range v {
			c, err := constant(item)
			if err != nil {
				return nil, err
			}
			t[i] = c
		}
		return t, nil
	default:
		return nil, fmt.Errorf("unsupported constant type %T", v)
	}
}

func (g *codeGenerator) loadLiteral(pos token.Position, v any) error {
	c, err := constant(v)
	if err != nil {
		return errz.ContractError(pos, "%s", err)
	}
	g.LoadConst(c)
	return nil
}
