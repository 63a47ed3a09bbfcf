package errz

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/risor-io/tessera/internal/token"
)

func TestInternalError(t *testing.T) {
	err := InternalError("f", token.Position{File: "a.py", Line: 3}, "stack depth %d", -1)
	require.Equal(t, "internal compiler error: stack depth -1 (in f) at a.py:3:0", err.Error())
	require.True(t, IsInternal(err))
	require.False(t, IsContract(err))
}

func TestContractError(t *testing.T) {
	err := ContractError(token.NoPos, "'break' outside loop")
	require.Equal(t, "contract violation: 'break' outside loop", err.Error())

	wrapped := fmt.Errorf("compiling f: %w", err)
	require.True(t, IsContract(wrapped))
	require.False(t, IsInternal(wrapped))
	require.False(t, IsContract(errors.New("other")))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := &CompilerError{Kind: ErrInternal, Message: "x", Cause: cause}
	require.ErrorIs(t, err, cause)
}
