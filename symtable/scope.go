// Package symtable classifies every identifier of a syntax tree as local,
// global, cell or free, and records the per-scope facts the code generator
// needs: parameter layout, closure variables, and whether local variables
// can be addressed by index.
package symtable

import (
	"sort"
	"strings"

	"github.com/risor-io/tessera/ast"
)

// Kind is the resolved scope of a name within one Scope.
type Kind int

const (
	Unknown Kind = iota
	Local
	GlobalImplicit
	GlobalExplicit
	Free
	Cell
)

func (k Kind) String() string {
	switch k {
	case Local:
		return "local"
	case GlobalImplicit:
		return "global_implicit"
	case GlobalExplicit:
		return "global_explicit"
	case Free:
		return "free"
	case Cell:
		return "cell"
	default:
		return "unknown"
	}
}

// Type is the kind of construct that introduces a scope.
type Type int

const (
	ModuleScope Type = iota
	FunctionScope
	ClassScope
)

// Flags recorded while collecting a scope.
const (
	defLocal = 1 << iota
	defParam
	defGlobal
	used
)

// Scope describes one compilation unit: a module, a function, a lambda, a
// class body or a comprehension.
type Scope struct {
	Name string
	Type Type
	Line int

	// Varnames lists parameters first, in declaration order, followed by the
	// remaining locals in order of first binding. Locals captured by nested
	// scopes are cells and are only listed when they are parameters. Only
	// function scopes have varnames.
	Varnames   []string
	ArgCount   int
	HasVarargs bool
	HasKwargs  bool

	// Optimized reports that the full set of locals is known at compile
	// time, so locals may be addressed by index.
	Optimized bool
	Nested    bool
	Generator bool

	// Private is the name of the innermost enclosing class, used to mangle
	// private identifiers.
	Private string

	parent    *Scope
	children  []*Scope
	byNode    map[ast.Node]*Scope
	flags     map[string]int
	order     []string
	kinds     map[string]Kind
	passFree  map[string]bool
	importAll bool
}

func newScope(name string, typ Type, line int, parent *Scope) *Scope {
	s := &Scope{
		Name:     name,
		Type:     typ,
		Line:     line,
		parent:   parent,
		byNode:   map[ast.Node]*Scope{},
		flags:    map[string]int{},
		kinds:    map[string]Kind{},
		passFree: map[string]bool{},
	}
	if parent != nil {
		s.Private = parent.Private
		s.Nested = parent.Type == FunctionScope || parent.Nested
	}
	return s
}

// Parent returns the enclosing scope, or nil for the module scope.
func (s *Scope) Parent() *Scope {
	return s.parent
}

// Children returns the directly nested scopes in source order.
func (s *Scope) Children() []*Scope {
	return s.children
}

// Child returns the scope introduced by the given node, which must be a
// FunctionDef, ClassDef, Lambda, GeneratorExp, SetComp or DictComp.
func (s *Scope) Child(node ast.Node) *Scope {
	return s.byNode[node]
}

// Lookup returns the resolved kind of an already mangled name.
func (s *Scope) Lookup(name string) Kind {
	return s.kinds[name]
}

// Mangle applies private name mangling: inside a class C, an identifier
// "__x" that does not end in "__" is rewritten to "_C__x".
func (s *Scope) Mangle(name string) string {
	return Mangle(s.Private, name)
}

// Mangle rewrites a private identifier for the given class name.
func Mangle(private, name string) string {
	if private == "" || !strings.HasPrefix(name, "__") {
		return name
	}
	if strings.HasSuffix(name, "__") || strings.Contains(name, ".") {
		return name
	}
	class := strings.TrimLeft(private, "_")
	if class == "" {
		return name
	}
	return "_" + class + name
}

// CellVars returns the sorted names of locals captured by nested scopes.
func (s *Scope) CellVars() []string {
	var names []string
	for name, k := range s.kinds {
		if k == Cell {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// FreeVars returns the sorted names this scope captures from enclosing
// scopes, including names it only passes through to nested scopes.
func (s *Scope) FreeVars() []string {
	var names []string
	for name, k := range s.kinds {
		if k == Free || s.passFree[name] {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func (s *Scope) note(name string, flag int) {
	if _, ok := s.flags[name]; !ok {
		s.order = append(s.order, name)
	}
	s.flags[name] |= flag
}

func (s *Scope) addChild(node ast.Node, child *Scope) {
	s.children = append(s.children, child)
	s.byNode[node] = child
}

func (s *Scope) bindsLocally(name string) bool {
	f := s.flags[name]
	return f&(defLocal|defParam) != 0 && f&defGlobal == 0
}
