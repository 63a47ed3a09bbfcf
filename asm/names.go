package asm

import "sort"

// NameTable maps names to operand indexes in insertion order.
type NameTable struct {
	names  []string
	index  map[string]int
	offset int
}

// NewNameTable returns a table preloaded with names. Every index the table
// hands out is shifted by offset.
func NewNameTable(names []string, offset int) *NameTable {
	t := &NameTable{index: map[string]int{}, offset: offset}
	for _, name := range names {
		t.Add(name)
	}
	return t
}

// NewSortedNameTable returns a table preloaded with names in sorted order.
func NewSortedNameTable(names []string, offset int) *NameTable {
	sorted := make([]string, len(names))
	copy(sorted, names)
	sort.Strings(sorted)
	return NewNameTable(sorted, offset)
}

// Add returns the index of name, adding it if necessary.
func (t *NameTable) Add(name string) int {
	if i, ok := t.index[name]; ok {
		return i + t.offset
	}
	i := len(t.names)
	t.names = append(t.names, name)
	t.index[name] = i
	return i + t.offset
}

// Lookup returns the index of name if present.
func (t *NameTable) Lookup(name string) (int, bool) {
	i, ok := t.index[name]
	if !ok {
		return 0, false
	}
	return i + t.offset, true
}

// Len returns the number of names.
func (t *NameTable) Len() int {
	return len(t.names)
}

// Names returns the names in index order.
func (t *NameTable) Names() []string {
	names := make([]string, len(t.names))
	copy(names, t.names)
	return names
}
