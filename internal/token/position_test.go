package token

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPosition(t *testing.T) {
	require.False(t, NoPos.IsValid())
	require.True(t, At(3).IsValid())
	require.Equal(t, "3:0", At(3).String())
	require.Equal(t, "a.py:2:4", Position{Line: 2, Column: 4, File: "a.py"}.String())
}
