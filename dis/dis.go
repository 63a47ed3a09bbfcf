// Package dis supports analysis of compiled units by disassembling them.
// This works with the opcodes defined in the `op` package and the encoding
// produced by the `asm` package.
package dis

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/risor-io/tessera/bytecode"
	"github.com/risor-io/tessera/internal/table"
	"github.com/risor-io/tessera/op"
)

// Instruction represents a single decoded instruction. An EXTENDED_ARG
// prefix is folded into the instruction it extends.
type Instruction struct {
	Offset int
	Size   int
	// Line is the source line that starts at this instruction, or 0.
	Line       int
	Opcode     op.Code
	Name       string
	HasArg     bool
	Arg        int
	Target     int // jump destination, or -1
	Annotation string
	Constant   any
}

// Disassemble returns a parsed representation of the given unit.
func Disassemble(code *bytecode.Code) ([]Instruction, error) {
	raw := code.Bytes()
	lineStarts := map[int]int{}
	for _, ls := range code.LineStarts() {
		lineStarts[ls.Offset] = ls.Line
	}
	var instructions []Instruction
	for offset := 0; offset < len(raw); {
		start := offset
		c := op.Code(raw[offset])
		offset++
		ext := 0
		if c == op.ExtendedArg {
			if offset+3 > len(raw) {
				return nil, fmt.Errorf("truncated EXTENDED_ARG at offset %d", start)
			}
			ext = int(raw[offset])<<16 | int(raw[offset+1])<<24
			c = op.Code(raw[offset+2])
			offset += 3
			if !c.HasArg() {
				return nil, fmt.Errorf("EXTENDED_ARG before %s at offset %d", c, start)
			}
		}
		if !op.IsValid(c) {
			return nil, fmt.Errorf("invalid opcode %d at offset %d", c, offset-1)
		}
		instr := Instruction{
			Offset: start,
			Line:   lineStarts[start],
			Opcode: c,
			Name:   c.String(),
			Target: -1,
		}
		if c.HasArg() {
			if offset+2 > len(raw) {
				return nil, fmt.Errorf("truncated operand of %s at offset %d", c, start)
			}
			instr.HasArg = true
			instr.Arg = ext | int(raw[offset]) | int(raw[offset+1])<<8
			offset += 2
		}
		instr.Size = offset - start
		if err := annotate(code, &instr); err != nil {
			return nil, err
		}
		instructions = append(instructions, instr)
	}
	return instructions, nil
}

func annotate(code *bytecode.Code, instr *Instruction) error {
	arg := instr.Arg
	switch c := instr.Opcode; {
	case c == op.LoadConst:
		if arg >= code.ConstantCount() {
			return fmt.Errorf("constant index out of range: %d", arg)
		}
		instr.Constant = code.ConstantAt(arg)
		instr.Annotation = FormatConstant(instr.Constant)
	case usesName(c):
		if arg >= code.NameCount() {
			return fmt.Errorf("name index out of range: %d", arg)
		}
		instr.Annotation = code.NameAt(arg)
	case c == op.LoadFast || c == op.StoreFast || c == op.DeleteFast:
		if arg >= code.VarnameCount() {
			return fmt.Errorf("local variable index out of range: %d", arg)
		}
		instr.Annotation = code.VarnameAt(arg)
	case c == op.LoadClosure || c == op.LoadDeref || c == op.StoreDeref:
		if arg >= len(code.CellVars())+len(code.FreeVars()) {
			return fmt.Errorf("closure variable index out of range: %d", arg)
		}
		instr.Annotation = code.DerefName(arg)
	case c == op.CompareOp:
		instr.Annotation = op.CompareOpType(arg).String()
	case op.IsJump(c):
		if op.IsAbsoluteJump(c) {
			instr.Target = arg
		} else {
			instr.Target = instr.Offset + instr.Size + arg
		}
		instr.Annotation = fmt.Sprintf("to %d", instr.Target)
	case c == op.CallFunction || c == op.CallFunctionVar || c == op.CallFunctionKw || c == op.CallFunctionVarKw:
		instr.Annotation = fmt.Sprintf("%d positional, %d keyword", arg&0xff, (arg>>8)&0xff)
	}
	return nil
}

func usesName(c op.Code) bool {
	switch c {
	case op.LoadName, op.StoreName, op.DeleteName,
		op.LoadAttr, op.StoreAttr, op.DeleteAttr,
		op.LoadGlobal, op.StoreGlobal, op.DeleteGlobal,
		op.ImportName, op.ImportFrom:
		return true
	}
	return false
}

// FormatConstant returns a Python-like representation of a constant.
func FormatConstant(v any) string {
	switch v := v.(type) {
	case nil:
		return "None"
	case bool:
		if v {
			return "True"
		}
		return "False"
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		s := strconv.FormatFloat(v, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eEnN") {
			s += ".0"
		}
		return s
	case complex128:
		return fmt.Sprintf("(%gj)", v)
	case string:
		return strconv.Quote(v)
	case bytecode.Tuple:
		items := make([]string, len(v))
		for i, item := range v {
			items[i] = FormatConstant(item)
		}
		if len(items) == 1 {
			return "(" + items[0] + ",)"
		}
		return "(" + strings.Join(items, ", ") + ")"
	case *bytecode.Code:
		return fmt.Sprintf("<code %s, line %d>", v.Name(), v.FirstLine())
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Print a string representation of the given instructions to the given writer.
func Print(instructions []Instruction, writer io.Writer) error {
	bold := color.New(color.Bold).SprintFunc()
	var lines [][]string
	for _, instr := range instructions {
		var values []string
		if instr.Line > 0 {
			values = append(values, strconv.Itoa(instr.Line))
		} else {
			values = append(values, "")
		}
		values = append(values, strconv.Itoa(instr.Offset))
		values = append(values, bold(instr.Name))
		if instr.HasArg {
			values = append(values, strconv.Itoa(instr.Arg))
		} else {
			values = append(values, "")
		}
		values = append(values, colorize(instr))
		lines = append(lines, values)
	}

	return table.NewTable(writer).
		WithHeader([]string{"LINE", "OFFSET", "OPCODE", "ARG", "INFO"}).
		WithColumnAlignment([]table.Alignment{
			table.AlignRight,
			table.AlignRight,
			table.AlignLeft,
			table.AlignRight,
			table.AlignLeft,
		}).
		WithHeaderAlignment([]table.Alignment{
			table.AlignCenter,
			table.AlignCenter,
			table.AlignCenter,
			table.AlignCenter,
			table.AlignCenter,
		}).
		WithRows(lines).
		Render()
}

func colorize(instr Instruction) string {
	if instr.Annotation == "" {
		return ""
	}
	if instr.Opcode != op.LoadConst {
		return color.CyanString("%s", instr.Annotation)
	}
	switch c := instr.Constant.(type) {
	case int64, float64, complex128:
		return color.YellowString("%s", instr.Annotation)
	case string:
		s := instr.Annotation
		if len(c) > 80 {
			s = strconv.Quote(c[:77] + "...")
		}
		return color.GreenString("%s", s)
	case *bytecode.Code:
		return color.MagentaString("%s", instr.Annotation)
	default:
		return instr.Annotation
	}
}

// PrintCode disassembles a unit and every unit nested in it.
func PrintCode(code *bytecode.Code, writer io.Writer) error {
	for i, unit := range code.Flatten() {
		if i > 0 {
			if _, err := io.WriteString(writer, "\n"); err != nil {
				return err
			}
		}
		header := fmt.Sprintf("Disassembly of %s (%s:%d) flags=%s stacksize=%d\n",
			unit.Name(), unit.Filename(), unit.FirstLine(), unit.Flags(), unit.StackSize())
		if _, err := io.WriteString(writer, header); err != nil {
			return err
		}
		instructions, err := Disassemble(unit)
		if err != nil {
			return fmt.Errorf("%s: %w", unit.Name(), err)
		}
		if err := Print(instructions, writer); err != nil {
			return err
		}
	}
	return nil
}
