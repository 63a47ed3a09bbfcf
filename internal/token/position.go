// Package token defines source positions attached to syntax tree nodes.
package token

import "fmt"

// Position points to a particular location in a source file.
type Position struct {
	Line   int    // 1-indexed line number, 0 when unknown
	Column int    // 0-indexed column number
	File   string // filename
}

// IsValid returns true if this position has been set.
func (p Position) IsValid() bool {
	return p.Line > 0
}

// String returns "file:line:col", omitting the filename when it is empty.
func (p Position) String() string {
	if p.File == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// At is shorthand for a position on the given line with no column.
func At(line int) Position {
	return Position{Line: line}
}

// NoPos is the zero value Position, representing an invalid/unset position.
var NoPos = Position{}
