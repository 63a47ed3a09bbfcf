// Package errz defines the errors raised by the code generator and the
// assembler.
//
// Input reaching the compiler has already been validated, so neither kind
// is a user diagnostic. An InternalError means the compiler produced
// inconsistent code. A ContractError means the input broke an assumption
// the validating passes should have enforced.
package errz

import (
	"errors"
	"fmt"

	"github.com/risor-io/tessera/internal/token"
)

// ErrorKind represents the category of an error.
type ErrorKind int

const (
	// ErrInternal indicates a defect in the compiler itself.
	ErrInternal ErrorKind = iota
	// ErrContract indicates input that should have been rejected earlier.
	ErrContract
)

// String returns the string representation of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case ErrInternal:
		return "internal compiler error"
	case ErrContract:
		return "contract violation"
	default:
		return "error"
	}
}

// CompilerError is an error raised while compiling one unit.
type CompilerError struct {
	Kind     ErrorKind
	Message  string
	Unit     string
	Position token.Position
	Cause    error
}

// Error implements the error interface.
func (e *CompilerError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	if e.Unit != "" {
		msg = fmt.Sprintf("%s (in %s)", msg, e.Unit)
	}
	if e.Position.IsValid() {
		msg = fmt.Sprintf("%s at %s", msg, e.Position)
	}
	return msg
}

// Unwrap returns the underlying cause of the error.
func (e *CompilerError) Unwrap() error {
	return e.Cause
}

// InternalError returns an ErrInternal error for the named unit.
func InternalError(unit string, pos token.Position, format string, args ...any) *CompilerError {
	return &CompilerError{
		Kind:     ErrInternal,
		Message:  fmt.Sprintf(format, args...),
		Unit:     unit,
		Position: pos,
	}
}

// ContractError returns an ErrContract error at the given position.
func ContractError(pos token.Position, format string, args ...any) *CompilerError {
	return &CompilerError{
		Kind:     ErrContract,
		Message:  fmt.Sprintf(format, args...),
		Position: pos,
	}
}

// IsInternal reports whether err wraps an ErrInternal error.
func IsInternal(err error) bool {
	return hasKind(err, ErrInternal)
}

// IsContract reports whether err wraps an ErrContract error.
func IsContract(err error) bool {
	return hasKind(err, ErrContract)
}

func hasKind(err error, kind ErrorKind) bool {
	var ce *CompilerError
	return errors.As(err, &ce) && ce.Kind == kind
}
