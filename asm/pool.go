package asm

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/risor-io/tessera/bytecode"
	"github.com/risor-io/tessera/internal/intern"
)

type constTag uint8

const (
	tagNone constTag = iota
	tagBool
	tagInt
	tagFloat
	tagComplex
	tagString
	tagTuple
	tagCode
)

// constKey identifies a constant by its type and value, so that values that
// compare equal across types (1 and 1.0) get separate entries.
type constKey struct {
	tag constTag
	val any
}

// ConstPool is an insertion-ordered, deduplicated constant pool.
type ConstPool struct {
	values []any
	index  map[constKey]int
}

// NewConstPool returns an empty pool.
func NewConstPool() *ConstPool {
	return &ConstPool{index: map[constKey]int{}}
}

// Add returns the index of v in the pool, adding it if necessary. Supported
// values are nil, bool, int64, float64, complex128, string, bytecode.Tuple
// and *bytecode.Code. Units are never merged with each other, even when
// they are identical.
func (p *ConstPool) Add(v any) int {
	if s, ok := v.(string); ok {
		v = intern.String(s)
	}
	key := keyOf(v)
	if i, ok := p.index[key]; ok {
		return i
	}
	i := len(p.values)
	p.values = append(p.values, v)
	p.index[key] = i
	return i
}

// Len returns the number of constants.
func (p *ConstPool) Len() int {
	return len(p.values)
}

// Values returns the constants in index order.
func (p *ConstPool) Values() []any {
	values := make([]any, len(p.values))
	copy(values, p.values)
	return values
}

func keyOf(v any) constKey {
	switch v := v.(type) {
	case nil:
		return constKey{tag: tagNone}
	case bool:
		return constKey{tag: tagBool, val: v}
	case int64:
		return constKey{tag: tagInt, val: v}
	case float64:
		return constKey{tag: tagFloat, val: math.Float64bits(v)}
	case complex128:
		return constKey{tag: tagComplex, val: [2]uint64{math.Float64bits(real(v)), math.Float64bits(imag(v))}}
	case string:
		return constKey{tag: tagString, val: v}
	case bytecode.Tuple:
		var sb strings.Builder
		writeTupleKey(&sb, v)
		return constKey{tag: tagTuple, val: sb.String()}
	case *bytecode.Code:
		return constKey{tag: tagCode, val: v}
	default:
		panic(fmt.Sprintf("asm: unsupported constant type %T", v))
	}
}

func writeTupleKey(sb *strings.Builder, t bytecode.Tuple) {
	sb.WriteByte('(')
	for _, item := range t {
		k := keyOf(item)
		sb.WriteString(strconv.Itoa(int(k.tag)))
		sb.WriteByte(':')
		switch val := k.val.(type) {
		case *bytecode.Code:
			fmt.Fprintf(sb, "%p", val)
		case string:
			if k.tag == tagTuple {
				sb.WriteString(val)
			} else {
				sb.WriteString(strconv.Quote(val))
			}
		default:
			fmt.Fprintf(sb, "%v", val)
		}
		sb.WriteByte(',')
	}
	sb.WriteByte(')')
}
