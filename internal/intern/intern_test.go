package intern

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsIdentifierLike(t *testing.T) {
	require.True(t, IsIdentifierLike("abc_123"))
	require.True(t, IsIdentifierLike(""))
	require.False(t, IsIdentifierLike("a b"))
	require.False(t, IsIdentifierLike("é"))
}

func TestString(t *testing.T) {
	require.Equal(t, "hello_intern", String("hello_intern"))
	require.True(t, Interned("hello_intern"))

	require.Equal(t, "not interned!", String("not interned!"))
	require.False(t, Interned("not interned!"))
}

func TestConcurrentString(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				String("shared_name")
			}
		}()
	}
	wg.Wait()
	require.True(t, Interned("shared_name"))
}
