package asm

// EncodeLineTable builds the line table for blocks in their final order.
// Offsets must already be resolved.
//
// The table is a sequence of (address delta, line delta) byte pairs, one
// per instruction that starts a new line. Address deltas above 255 are
// split with (255, 0) pairs and line deltas above 255 with (addr, 255)
// pairs. An instruction whose line lies before the current line is not
// recorded; the table only moves forward.
func EncodeLineTable(blocks []*Block, firstLine int) []byte {
	var table []byte
	currentLine := firstLine
	currentOff := 0
	for _, b := range blocks {
		offset := b.Offset
		for _, instr := range b.Instructions {
			if instr.Line != 0 {
				line := instr.Line - currentLine
				if line >= 0 {
					addr := offset - currentOff
					if line > 0 || addr > 0 {
						for addr > 255 {
							table = append(table, 255, 0)
							addr -= 255
						}
						for line > 255 {
							table = append(table, byte(addr), 255)
							line -= 255
							addr = 0
						}
						table = append(table, byte(addr), byte(line))
						currentLine = instr.Line
						currentOff = offset
					}
				}
			}
			offset += instr.Size()
		}
	}
	return table
}
