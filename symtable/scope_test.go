package symtable

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/risor-io/tessera/ast"
)

func name(id string) *ast.Name { return &ast.Name{ID: id} }

func store(id string) *ast.Name { return &ast.Name{ID: id, Ctx: ast.Store} }

func assign(target string, value ast.Expr) *ast.Assign {
	return &ast.Assign{Targets: []ast.Expr{store(target)}, Value: value}
}

func one() ast.Expr { return &ast.Num{Value: int64(1)} }

func TestModuleNames(t *testing.T) {
	mod := &ast.Module{Body: []ast.Stmt{
		assign("x", one()),
		&ast.ExprStmt{Value: &ast.Call{Func: name("print"), Args: []ast.Expr{name("x")}}},
	}}
	root, err := Build(mod)
	require.NoError(t, err)
	require.Equal(t, Local, root.Lookup("x"))
	require.Equal(t, GlobalImplicit, root.Lookup("print"))
	require.False(t, root.Optimized)
	require.Empty(t, root.Varnames)
}

func TestFunctionLocalsAndParams(t *testing.T) {
	fn := &ast.FunctionDef{
		Name: "f",
		Args: &ast.Arguments{Args: []string{"a", "b"}, Vararg: "rest"},
		Body: []ast.Stmt{
			assign("c", name("a")),
			&ast.Return{Value: name("len")},
		},
	}
	root, err := Build(&ast.Module{Body: []ast.Stmt{fn}})
	require.NoError(t, err)
	require.Equal(t, Local, root.Lookup("f"))

	f := root.Child(fn)
	require.NotNil(t, f)
	require.Equal(t, []string{"a", "b", "rest", "c"}, f.Varnames)
	require.Equal(t, 2, f.ArgCount)
	require.True(t, f.HasVarargs)
	require.False(t, f.HasKwargs)
	require.True(t, f.Optimized)
	require.False(t, f.Nested)
	require.Equal(t, GlobalImplicit, f.Lookup("len"))
	require.Equal(t, Local, f.Lookup("c"))
}

func TestClosureCellAndFree(t *testing.T) {
	// def outer():
	//     x = 1
	//     def inner():
	//         return x
	inner := &ast.FunctionDef{
		Name: "inner",
		Args: &ast.Arguments{},
		Body: []ast.Stmt{&ast.Return{Value: name("x")}},
	}
	outer := &ast.FunctionDef{
		Name: "outer",
		Args: &ast.Arguments{},
		Body: []ast.Stmt{assign("x", one()), inner},
	}
	root, err := Build(&ast.Module{Body: []ast.Stmt{outer}})
	require.NoError(t, err)

	o := root.Child(outer)
	i := o.Child(inner)
	require.Equal(t, Cell, o.Lookup("x"))
	require.Equal(t, []string{"x"}, o.CellVars())
	require.Empty(t, o.FreeVars())
	// Captured locals live in cells, not in fast local slots.
	require.Equal(t, []string{"inner"}, o.Varnames)

	require.Equal(t, Free, i.Lookup("x"))
	require.Equal(t, []string{"x"}, i.FreeVars())
	require.True(t, i.Nested)
}

func TestFreeVariablePassesThroughMiddleScope(t *testing.T) {
	// def a():
	//     v = 1
	//     def b():
	//         def c():
	//             return v
	c := &ast.FunctionDef{Name: "c", Args: &ast.Arguments{}, Body: []ast.Stmt{&ast.Return{Value: name("v")}}}
	b := &ast.FunctionDef{Name: "b", Args: &ast.Arguments{}, Body: []ast.Stmt{c}}
	a := &ast.FunctionDef{Name: "a", Args: &ast.Arguments{}, Body: []ast.Stmt{assign("v", one()), b}}
	root, err := Build(&ast.Module{Body: []ast.Stmt{a}})
	require.NoError(t, err)

	sa := root.Child(a)
	sb := sa.Child(b)
	sc := sb.Child(c)
	require.Equal(t, Cell, sa.Lookup("v"))
	require.Equal(t, Free, sb.Lookup("v"))
	require.Equal(t, Free, sc.Lookup("v"))
}

func TestExplicitGlobal(t *testing.T) {
	fn := &ast.FunctionDef{
		Name: "f",
		Args: &ast.Arguments{},
		Body: []ast.Stmt{
			&ast.Global{Names: []string{"counter"}},
			assign("counter", one()),
		},
	}
	root, err := Build(&ast.Module{Body: []ast.Stmt{fn}})
	require.NoError(t, err)
	f := root.Child(fn)
	require.Equal(t, GlobalExplicit, f.Lookup("counter"))
	require.Empty(t, f.Varnames)
}

func TestGeneratorDetection(t *testing.T) {
	gen := &ast.FunctionDef{
		Name: "g",
		Args: &ast.Arguments{},
		Body: []ast.Stmt{&ast.ExprStmt{Value: &ast.Yield{Value: one()}}},
	}
	genexp := &ast.GeneratorExp{
		Elt:        name("i"),
		Generators: []*ast.Comprehension{{Target: store("i"), Iter: name("items")}},
	}
	root, err := Build(&ast.Module{Body: []ast.Stmt{gen, &ast.ExprStmt{Value: genexp}}})
	require.NoError(t, err)
	require.True(t, root.Child(gen).Generator)

	ge := root.Child(genexp)
	require.True(t, ge.Generator)
	require.Equal(t, []string{".0", "i"}, ge.Varnames)
	require.Equal(t, 1, ge.ArgCount)
	require.Equal(t, GlobalImplicit, root.Lookup("items"))
	require.Equal(t, Unknown, ge.Lookup("items"))
}

func TestImportStarDisablesOptimization(t *testing.T) {
	fn := &ast.FunctionDef{
		Name: "f",
		Args: &ast.Arguments{},
		Body: []ast.Stmt{&ast.ImportFrom{Module: "os", Names: []*ast.Alias{{Name: "*"}}}},
	}
	root, err := Build(&ast.Module{Body: []ast.Stmt{fn}})
	require.NoError(t, err)
	require.False(t, root.Child(fn).Optimized)
}

func TestImportBindsFirstComponent(t *testing.T) {
	mod := &ast.Module{Body: []ast.Stmt{
		&ast.Import{Names: []*ast.Alias{{Name: "os.path"}, {Name: "sys", AsName: "system"}}},
	}}
	root, err := Build(mod)
	require.NoError(t, err)
	require.Equal(t, Local, root.Lookup("os"))
	require.Equal(t, Local, root.Lookup("system"))
	require.Equal(t, Unknown, root.Lookup("sys"))
}

func TestMangle(t *testing.T) {
	tests := []struct {
		private, name, want string
	}{
		{"", "__x", "__x"},
		{"C", "__x", "_C__x"},
		{"_C", "__x", "_C__x"},
		{"C", "__init__", "__init__"},
		{"C", "_x", "_x"},
		{"C", "__a.b", "__a.b"},
		{"___", "__x", "__x"},
	}
	for _, tt := range tests {
		t.Run(tt.private+"/"+tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Mangle(tt.private, tt.name))
		})
	}
}

func TestClassMangling(t *testing.T) {
	method := &ast.FunctionDef{
		Name: "m",
		Args: &ast.Arguments{Args: []string{"self"}},
		Body: []ast.Stmt{assign("__secret", one())},
	}
	class := &ast.ClassDef{Name: "Box", Body: []ast.Stmt{method}}
	root, err := Build(&ast.Module{Body: []ast.Stmt{class}})
	require.NoError(t, err)
	m := root.Child(class).Child(method)
	require.Equal(t, "Box", m.Private)
	require.Equal(t, Local, m.Lookup("_Box__secret"))
	require.Equal(t, []string{"self", "_Box__secret"}, m.Varnames)
}

func TestConflictsAreCollected(t *testing.T) {
	fn := &ast.FunctionDef{
		Loc:  ast.At(3),
		Name: "f",
		Args: &ast.Arguments{Args: []string{"a", "a"}},
		Body: []ast.Stmt{&ast.Global{Loc: ast.At(4), Names: []string{"a"}}},
	}
	mod := &ast.Module{Body: []ast.Stmt{fn, &ast.Return{Loc: ast.At(5)}}}
	_, err := Build(mod)
	require.Error(t, err)
	require.Contains(t, err.Error(), "3 errors occurred")
	require.Contains(t, err.Error(), `duplicate argument "a"`)
	require.Contains(t, err.Error(), `name "a" is parameter and global`)
	require.Contains(t, err.Error(), "5:0: 'return' outside function")
}

func TestComprehensionWithoutGenerators(t *testing.T) {
	mod := &ast.Module{Body: []ast.Stmt{
		&ast.ExprStmt{Value: &ast.GeneratorExp{Elt: name("x")}},
	}}
	_, err := Build(mod)
	require.ErrorContains(t, err, "<genexpr> without generators")
}
