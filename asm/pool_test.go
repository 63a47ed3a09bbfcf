package asm

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/risor-io/tessera/bytecode"
)

func TestConstPoolKeepsTypesApart(t *testing.T) {
	p := NewConstPool()
	i := p.Add(int64(1))
	f := p.Add(1.0)
	b := p.Add(true)
	c := p.Add(complex(1, 0))
	require.Equal(t, []int{0, 1, 2, 3}, []int{i, f, b, c})

	zero := p.Add(int64(0))
	require.NotEqual(t, zero, p.Add(false))
	require.NotEqual(t, zero, p.Add(nil))
	require.NotEqual(t, p.Add(0.0), p.Add(math.Copysign(0, -1)))
}

func TestConstPoolDeduplicates(t *testing.T) {
	p := NewConstPool()
	a := p.Add("hello")
	p.Add(int64(5))
	require.Equal(t, a, p.Add("hello"))
	require.Equal(t, 1, p.Add(int64(5)))
	require.Equal(t, 2, p.Len())
	require.Equal(t, []any{"hello", int64(5)}, p.Values())
}

func TestConstPoolTuples(t *testing.T) {
	p := NewConstPool()
	a := p.Add(bytecode.Tuple{int64(1), "a", bytecode.Tuple{nil}})
	require.Equal(t, a, p.Add(bytecode.Tuple{int64(1), "a", bytecode.Tuple{nil}}))
	require.NotEqual(t, a, p.Add(bytecode.Tuple{1.0, "a", bytecode.Tuple{nil}}))
	require.NotEqual(t, a, p.Add(bytecode.Tuple{int64(1), "a"}))
	require.NotEqual(t, p.Add(bytecode.Tuple{"a,b"}), p.Add(bytecode.Tuple{"a", "b"}))
}

func TestConstPoolCodeByIdentity(t *testing.T) {
	p := NewConstPool()
	c1 := bytecode.NewCode(bytecode.CodeParams{Name: "f"})
	c2 := bytecode.NewCode(bytecode.CodeParams{Name: "f"})
	i1 := p.Add(c1)
	i2 := p.Add(c2)
	require.NotEqual(t, i1, i2)
	require.Equal(t, i1, p.Add(c1))
}

func TestConstPoolRejectsUnknownType(t *testing.T) {
	require.Panics(t, func() { NewConstPool().Add(3) })
}

func TestNameTable(t *testing.T) {
	names := NewNameTable([]string{"b", "a"}, 0)
	require.Equal(t, 0, names.Add("b"))
	require.Equal(t, 2, names.Add("c"))
	require.Equal(t, []string{"b", "a", "c"}, names.Names())

	free := NewSortedNameTable([]string{"z", "y"}, 3)
	i, ok := free.Lookup("y")
	require.True(t, ok)
	require.Equal(t, 3, i)
	i, ok = free.Lookup("z")
	require.True(t, ok)
	require.Equal(t, 4, i)
	_, ok = free.Lookup("x")
	require.False(t, ok)
	require.Equal(t, []string{"y", "z"}, free.Names())
}
