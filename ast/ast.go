// Package ast defines the syntax tree consumed by the compiler. The tree is
// produced by the parser and validated by the scope resolver before it
// reaches code generation.
//
// The node set is closed: every node kind implements an unexported marker
// method, so the compiler can dispatch over a type switch knowing it has
// seen every case.
package ast

import (
	"github.com/risor-io/tessera/bytecode"
	"github.com/risor-io/tessera/internal/token"
)

// Node represents a portion of the syntax tree. All nodes have position
// information indicating where they appear in the source code.
type Node interface {
	// Pos returns the position of the first character belonging to the node.
	Pos() token.Position
}

// Stmt represents a statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Expr represents an expression node. Expressions evaluate to a value
// and may be embedded within other expressions.
type Expr interface {
	Node
	exprNode()
}

// SliceExpr is the subscript part of a Subscript node: an Index, a Slice or
// an ExtSlice.
type SliceExpr interface {
	sliceNode()
}

// Ctx describes how a name-like expression is used.
type Ctx int

const (
	Load Ctx = iota
	Store
	Del
	// AugLoad and AugStore are the two halves of an augmented assignment
	// to an attribute or subscript. The compiler derives them from a Store
	// target; the parser never produces them.
	AugLoad
	AugStore
)

// String returns the name of the context.
func (c Ctx) String() string {
	switch c {
	case Load:
		return "Load"
	case Store:
		return "Store"
	case Del:
		return "Del"
	case AugLoad:
		return "AugLoad"
	case AugStore:
		return "AugStore"
	default:
		return "?"
	}
}

// BoolOpKind is the operator of a BoolOp.
type BoolOpKind int

const (
	And BoolOpKind = iota
	Or
)

// Operator is a binary arithmetic or bitwise operator.
type Operator int

const (
	Add Operator = iota
	Sub
	Mult
	Div
	Mod
	Pow
	LShift
	RShift
	BitOr
	BitXor
	BitAnd
	FloorDiv
)

// UnaryOpKind is the operator of a UnaryOp.
type UnaryOpKind int

const (
	Invert UnaryOpKind = iota
	Not
	UAdd
	USub
)

// CmpOp is a comparison operator.
type CmpOp int

const (
	Eq CmpOp = iota
	NotEq
	Lt
	LtE
	Gt
	GtE
	Is
	IsNot
	In
	NotIn
)

// Truth is a statically known truth value for a branch condition. Constant
// folding attaches it to If, While and IfExp nodes when it can prove the
// outcome of the test.
type Truth int8

const (
	Unknown Truth = iota
	AlwaysTrue
	AlwaysFalse
)

// ConstantTruth returns the statically known truth value of a literal
// expression, or Unknown when the expression is not a literal.
func ConstantTruth(e Expr) Truth {
	var v any
	switch e := e.(type) {
	case *Num:
		v = e.Value
	case *Str:
		v = e.Value
	case *Constant:
		v = e.Value
	default:
		return Unknown
	}
	if truthy(v) {
		return AlwaysTrue
	}
	return AlwaysFalse
}

func truthy(v any) bool {
	switch v := v.(type) {
	case nil:
		return false
	case bool:
		return v
	case int64:
		return v != 0
	case int:
		return v != 0
	case int32:
		return v != 0
	case float64:
		return v != 0
	case float32:
		return v != 0
	case complex128:
		return v != 0
	case string:
		return v != ""
	case []any:
		return len(v) > 0
	case bytecode.Tuple:
		return len(v) > 0
	}
	return true
}

// Docstring returns the documentation string of a body: the value of a
// leading expression statement consisting of a single string literal.
func Docstring(body []Stmt) (string, bool) {
	if len(body) == 0 {
		return "", false
	}
	if es, ok := body[0].(*ExprStmt); ok {
		if s, ok := es.Value.(*Str); ok {
			return s.Value, true
		}
	}
	return "", false
}

// Loc records the source position of a node. It is embedded in every node
// type and provides the Pos method.
type Loc struct {
	Position token.Position
}

// Pos returns the position of the node.
func (l Loc) Pos() token.Position { return l.Position }

// Line returns the 1-indexed source line of the node, or 0 when unknown.
func (l Loc) Line() int { return l.Position.Line }

// At returns a Loc on the given line.
func At(line int) Loc { return Loc{Position: token.At(line)} }
