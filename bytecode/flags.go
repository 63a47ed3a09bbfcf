package bytecode

import "strings"

// Flags describe properties of a compiled unit.
type Flags uint32

const (
	// FlagOptimized reports that locals are fully known at compile time and
	// are addressed by index.
	FlagOptimized Flags = 0x1
	// FlagNewLocals requests a fresh locals namespace on every call.
	FlagNewLocals      Flags = 0x2
	FlagVarArgs        Flags = 0x4
	FlagVarKeywords    Flags = 0x8
	FlagNested         Flags = 0x10
	FlagGenerator      Flags = 0x20
	FlagNoFree         Flags = 0x40
	FlagTrueDivision   Flags = 0x2000
	FlagAbsoluteImport Flags = 0x4000
)

var flagNames = []struct {
	flag Flags
	name string
}{
	{FlagOptimized, "OPTIMIZED"},
	{FlagNewLocals, "NEWLOCALS"},
	{FlagVarArgs, "VARARGS"},
	{FlagVarKeywords, "VARKEYWORDS"},
	{FlagNested, "NESTED"},
	{FlagGenerator, "GENERATOR"},
	{FlagNoFree, "NOFREE"},
	{FlagTrueDivision, "TRUE_DIVISION"},
	{FlagAbsoluteImport, "ABSOLUTE_IMPORT"},
}

// Has reports whether all bits of f2 are set in f.
func (f Flags) Has(f2 Flags) bool {
	return f&f2 == f2
}

// String returns the set flag names joined with "|".
func (f Flags) String() string {
	var names []string
	for _, fn := range flagNames {
		if f&fn.flag != 0 {
			names = append(names, fn.name)
		}
	}
	if len(names) == 0 {
		return "0"
	}
	return strings.Join(names, "|")
}
