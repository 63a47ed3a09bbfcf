package bytecode

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

var encMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("bytecode: failed to create CBOR enc mode: %v", err))
	}
	encMode = em
}

// Marshal serializes a unit and every nested unit to canonical CBOR.
func Marshal(code *Code) ([]byte, error) {
	state, err := stateFromCode(code)
	if err != nil {
		return nil, err
	}
	return encMode.Marshal(state)
}

// Unmarshal deserializes a unit produced by Marshal.
func Unmarshal(data []byte) (*Code, error) {
	var state codeState
	if err := cbor.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("bytecode: unmarshal: %w", err)
	}
	return codeFromState(&state)
}

// Serialization types

const (
	constNone    = "none"
	constBool    = "bool"
	constInt     = "int"
	constFloat   = "float"
	constComplex = "complex"
	constString  = "str"
	constTuple   = "tuple"
	constCode    = "code"
)

type constantDef struct {
	Type    string        `cbor:"t"`
	Bool    bool          `cbor:"b,omitempty"`
	Int     int64         `cbor:"i,omitempty"`
	// Float and Imag are always written so that negative zero survives.
	Float   float64       `cbor:"f"`
	Imag    float64       `cbor:"j"`
	Str     string        `cbor:"s,omitempty"`
	Items   []constantDef `cbor:"x,omitempty"`
	CodeIdx int           `cbor:"c,omitempty"`
}

type codeDef struct {
	ArgCount  int           `cbor:"argcount"`
	NLocals   int           `cbor:"nlocals"`
	StackSize int           `cbor:"stacksize"`
	Flags     Flags         `cbor:"flags"`
	Code      []byte        `cbor:"code"`
	Constants []constantDef `cbor:"consts"`
	Names     []string      `cbor:"names"`
	Varnames  []string      `cbor:"varnames"`
	CellVars  []string      `cbor:"cellvars"`
	FreeVars  []string      `cbor:"freevars"`
	Filename  string        `cbor:"filename"`
	Name      string        `cbor:"name"`
	FirstLine int           `cbor:"firstlineno"`
	LineTable []byte        `cbor:"lnotab"`
	Hidden    bool          `cbor:"hidden,omitempty"`
}

// codeState stores units in post-order, so every nested unit precedes the
// unit that references it and the root is last.
type codeState struct {
	Codes []*codeDef `cbor:"codes"`
}

func stateFromCode(root *Code) (*codeState, error) {
	state := &codeState{}
	index := map[*Code]int{}
	var add func(c *Code) error
	add = func(c *Code) error {
		if _, ok := index[c]; ok {
			return nil
		}
		for _, child := range c.Children() {
			if err := add(child); err != nil {
				return err
			}
		}
		consts := make([]constantDef, len(c.constants))
		for i, v := range c.constants {
			def, err := marshalConstant(v, index)
			if err != nil {
				return fmt.Errorf("bytecode: %s: constant %d: %w", c.name, i, err)
			}
			consts[i] = def
		}
		index[c] = len(state.Codes)
		state.Codes = append(state.Codes, &codeDef{
			ArgCount:  c.argCount,
			NLocals:   c.nLocals,
			StackSize: c.stackSize,
			Flags:     c.flags,
			Code:      c.code,
			Constants: consts,
			Names:     c.names,
			Varnames:  c.varnames,
			CellVars:  c.cellvars,
			FreeVars:  c.freevars,
			Filename:  c.filename,
			Name:      c.name,
			FirstLine: c.firstLine,
			LineTable: c.lineTable,
			Hidden:    c.hidden,
		})
		return nil
	}
	if err := add(root); err != nil {
		return nil, err
	}
	return state, nil
}

func marshalConstant(v any, index map[*Code]int) (constantDef, error) {
	switch v := v.(type) {
	case nil:
		return constantDef{Type: constNone}, nil
	case bool:
		return constantDef{Type: constBool, Bool: v}, nil
	case int64:
		return constantDef{Type: constInt, Int: v}, nil
	case float64:
		return constantDef{Type: constFloat, Float: v}, nil
	case complex128:
		return constantDef{Type: constComplex, Float: real(v), Imag: imag(v)}, nil
	case string:
		return constantDef{Type: constString, Str: v}, nil
	case Tuple:
		items := make([]constantDef, len(v))
		for i, item := range v {
			def, err := marshalConstant(item, index)
			if err != nil {
				return constantDef{}, err
			}
			items[i] = def
		}
		return constantDef{Type: constTuple, Items: items}, nil
	case *Code:
		return constantDef{Type: constCode, CodeIdx: index[v]}, nil
	default:
		return constantDef{}, fmt.Errorf("unsupported constant type %T", v)
	}
}

func codeFromState(state *codeState) (*Code, error) {
	if len(state.Codes) == 0 {
		return nil, fmt.Errorf("bytecode: unmarshal: no code units")
	}
	codes := make([]*Code, len(state.Codes))
	for i, def := range state.Codes {
		consts := make([]any, len(def.Constants))
		for j, cdef := range def.Constants {
			v, err := unmarshalConstant(cdef, codes[:i])
			if err != nil {
				return nil, fmt.Errorf("bytecode: %s: constant %d: %w", def.Name, j, err)
			}
			consts[j] = v
		}
		codes[i] = NewCode(CodeParams{
			ArgCount:  def.ArgCount,
			NLocals:   def.NLocals,
			StackSize: def.StackSize,
			Flags:     def.Flags,
			Code:      def.Code,
			Constants: consts,
			Names:     def.Names,
			Varnames:  def.Varnames,
			CellVars:  def.CellVars,
			FreeVars:  def.FreeVars,
			Filename:  def.Filename,
			Name:      def.Name,
			FirstLine: def.FirstLine,
			LineTable: def.LineTable,
			Hidden:    def.Hidden,
		})
	}
	return codes[len(codes)-1], nil
}

func unmarshalConstant(def constantDef, codes []*Code) (any, error) {
	switch def.Type {
	case constNone:
		return nil, nil
	case constBool:
		return def.Bool, nil
	case constInt:
		return def.Int, nil
	case constFloat:
		return def.Float, nil
	case constComplex:
		return complex(def.Float, def.Imag), nil
	case constString:
		return def.Str, nil
	case constTuple:
		items := make(Tuple, len(def.Items))
		for i, item := range def.Items {
			v, err := unmarshalConstant(item, codes)
			if err != nil {
				return nil, err
			}
			items[i] = v
		}
		return items, nil
	case constCode:
		if def.CodeIdx < 0 || def.CodeIdx >= len(codes) {
			return nil, fmt.Errorf("invalid code index %d", def.CodeIdx)
		}
		return codes[def.CodeIdx], nil
	default:
		return nil, fmt.Errorf("unknown constant type %q", def.Type)
	}
}
