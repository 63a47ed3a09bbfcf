package bytecode

// LineStart marks the first instruction of a source line.
type LineStart struct {
	Offset int
	Line   int
}

// LineForOffset returns the source line of the instruction at the given
// byte offset, decoded from the line table.
func (c *Code) LineForOffset(offset int) int {
	line := c.firstLine
	addr := 0
	for i := 0; i+1 < len(c.lineTable); i += 2 {
		addr += int(c.lineTable[i])
		if addr > offset {
			break
		}
		line += int(c.lineTable[i+1])
	}
	return line
}

// LineStarts returns the offsets at which a new source line begins.
func (c *Code) LineStarts() []LineStart {
	var starts []LineStart
	line := c.firstLine
	lastLine := -1
	addr := 0
	for i := 0; i+1 < len(c.lineTable); i += 2 {
		addrIncr := int(c.lineTable[i])
		lineIncr := int(c.lineTable[i+1])
		if addrIncr > 0 {
			if line != lastLine {
				starts = append(starts, LineStart{Offset: addr, Line: line})
				lastLine = line
			}
			addr += addrIncr
		}
		line += lineIncr
	}
	if line != lastLine {
		starts = append(starts, LineStart{Offset: addr, Line: line})
	}
	return starts
}
