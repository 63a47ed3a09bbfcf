package symtable

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/risor-io/tessera/ast"
	"github.com/risor-io/tessera/internal/token"
)

// Build resolves every name in the module and returns its scope tree. All
// binding conflicts found in the tree are reported together.
func Build(mod *ast.Module) (*Scope, error) {
	c := &collector{}
	root := newScope("<module>", ModuleScope, 1, nil)
	c.cur = root
	c.visitStmts(mod.Body)
	if err := c.errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	root.analyze(map[string]bool{})
	return root, nil
}

type collector struct {
	cur  *Scope
	errs *multierror.Error
}

func (c *collector) errorf(pos token.Position, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if pos.IsValid() {
		msg = fmt.Sprintf("%s: %s", pos, msg)
	}
	c.errs = multierror.Append(c.errs, fmt.Errorf("symtable: %s", msg))
}

func (c *collector) push(node ast.Node, name string, typ Type) *Scope {
	child := newScope(name, typ, node.Pos().Line, c.cur)
	c.cur.addChild(node, child)
	c.cur = child
	return child
}

func (c *collector) pop() {
	c.cur = c.cur.parent
}

func (c *collector) define(name string, flag int) {
	c.cur.note(c.cur.Mangle(name), flag)
}

func (c *collector) param(pos token.Position, name string) {
	name = c.cur.Mangle(name)
	if c.cur.flags[name]&defParam != 0 {
		c.errorf(pos, "duplicate argument %q in function definition", name)
		return
	}
	c.cur.note(name, defParam)
	c.cur.Varnames = append(c.cur.Varnames, name)
}

func (c *collector) arguments(pos token.Position, args *ast.Arguments) {
	if args == nil {
		return
	}
	for _, a := range args.Args {
		c.param(pos, a)
	}
	c.cur.ArgCount = len(args.Args)
	if args.Vararg != "" {
		c.param(pos, args.Vararg)
		c.cur.HasVarargs = true
	}
	if args.Kwarg != "" {
		c.param(pos, args.Kwarg)
		c.cur.HasKwargs = true
	}
}

func (c *collector) visitStmts(body []ast.Stmt) {
	for _, s := range body {
		c.visit(s)
	}
}

func (c *collector) visitExprs(list []ast.Expr) {
	for _, e := range list {
		if e != nil {
			c.visit(e)
		}
	}
}

func (c *collector) visit(node ast.Node) {
	ast.Inspect(node, func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.FunctionDef:
			c.define(n.Name, defLocal)
			c.visitExprs(n.DecoratorList)
			if n.Args != nil {
				c.visitExprs(n.Args.Defaults)
			}
			c.push(n, n.Name, FunctionScope)
			c.arguments(n.Pos(), n.Args)
			c.visitStmts(n.Body)
			c.pop()
			return false
		case *ast.Lambda:
			if n.Args != nil {
				c.visitExprs(n.Args.Defaults)
			}
			c.push(n, "<lambda>", FunctionScope)
			c.arguments(n.Pos(), n.Args)
			c.visit(n.Body)
			c.pop()
			return false
		case *ast.ClassDef:
			c.define(n.Name, defLocal)
			c.visitExprs(n.DecoratorList)
			c.visitExprs(n.Bases)
			scope := c.push(n, n.Name, ClassScope)
			scope.Private = n.Name
			c.visitStmts(n.Body)
			c.pop()
			return false
		case *ast.GeneratorExp:
			scope := c.comprehension(n, "<genexpr>", n.Generators, n.Elt)
			scope.Generator = true
			return false
		case *ast.SetComp:
			c.comprehension(n, "<setcomp>", n.Generators, n.Elt)
			return false
		case *ast.DictComp:
			c.comprehension(n, "<dictcomp>", n.Generators, n.Value, n.Key)
			return false
		case *ast.Return:
			if c.cur.Type != FunctionScope {
				c.errorf(n.Pos(), "'return' outside function")
			}
		case *ast.Yield:
			if c.cur.Type != FunctionScope {
				c.errorf(n.Pos(), "'yield' outside function")
			}
			c.cur.Generator = true
		case *ast.Global:
			for _, name := range n.Names {
				name = c.cur.Mangle(name)
				if c.cur.flags[name]&defParam != 0 {
					c.errorf(n.Pos(), "name %q is parameter and global", name)
					continue
				}
				c.cur.note(name, defGlobal)
			}
		case *ast.Import:
			for _, alias := range n.Names {
				name := alias.AsName
				if name == "" {
					name, _, _ = strings.Cut(alias.Name, ".")
				}
				c.define(name, defLocal)
			}
		case *ast.ImportFrom:
			for _, alias := range n.Names {
				if alias.Name == "*" {
					c.cur.importAll = true
					continue
				}
				name := alias.AsName
				if name == "" {
					name = alias.Name
				}
				c.define(name, defLocal)
			}
		case *ast.AugAssign:
			if name, ok := n.Target.(*ast.Name); ok {
				c.define(name.ID, used)
			}
		case *ast.Name:
			if n.Ctx == ast.Load {
				c.define(n.ID, used)
			} else {
				c.define(n.ID, defLocal)
			}
		}
		return true
	})
}

// comprehension records a comprehension compiled as its own scope. The
// outermost iterable is evaluated in the enclosing scope and passed in as
// the implicit parameter ".0".
func (c *collector) comprehension(node ast.Expr, name string, gens []*ast.Comprehension, elts ...ast.Expr) *Scope {
	if len(gens) == 0 {
		c.errorf(node.Pos(), "%s without generators", name)
		scope := c.push(node, name, FunctionScope)
		c.pop()
		return scope
	}
	c.visit(gens[0].Iter)
	scope := c.push(node, name, FunctionScope)
	c.cur.note(".0", defParam)
	c.cur.Varnames = append(c.cur.Varnames, ".0")
	c.cur.ArgCount = 1
	for i, g := range gens {
		c.visit(g.Target)
		if i > 0 {
			c.visit(g.Iter)
		}
		c.visitExprs(g.Ifs)
	}
	c.visitExprs(elts)
	c.pop()
	return scope
}

// analyze assigns a Kind to every name of s and its children. enclosing
// holds the names bound by enclosing function scopes.
func (s *Scope) analyze(enclosing map[string]bool) {
	for _, name := range s.order {
		f := s.flags[name]
		switch {
		case f&defGlobal != 0:
			s.kinds[name] = GlobalExplicit
		case f&(defLocal|defParam) != 0:
			s.kinds[name] = Local
		case enclosing[name]:
			s.kinds[name] = Free
		default:
			s.kinds[name] = GlobalImplicit
		}
	}

	visible := enclosing
	if s.Type == FunctionScope {
		visible = make(map[string]bool, len(enclosing)+len(s.kinds))
		for name := range enclosing {
			visible[name] = true
		}
		for name, k := range s.kinds {
			switch k {
			case Local:
				visible[name] = true
			case GlobalExplicit:
				delete(visible, name)
			}
		}
	}

	for _, child := range s.children {
		child.analyze(visible)
		for _, name := range child.FreeVars() {
			switch k := s.kinds[name]; {
			case k == Cell || k == Free:
			case k == Local && s.Type == FunctionScope:
				s.kinds[name] = Cell
			case k == Local:
				s.passFree[name] = true
			default:
				s.kinds[name] = Free
			}
		}
	}

	if s.Type == FunctionScope {
		for _, name := range s.order {
			k := s.kinds[name]
			if k == Local && s.flags[name]&defParam == 0 {
				s.Varnames = append(s.Varnames, name)
			}
		}
		s.Optimized = !s.importAll
	}
}
