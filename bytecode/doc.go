// Package bytecode provides the immutable compiled unit produced by the
// assembler.
//
// A [Code] holds the raw instruction bytes of one scope together with its
// constant pool, name tables, flags and line table. Nested scopes appear in
// the constant pool as further *Code values.
//
// # Instruction encoding
//
// Opcodes below [op.HaveArgument] occupy one byte. Opcodes at or above it
// are followed by a 16-bit little-endian operand. Operands that do not fit
// in 16 bits are preceded by an EXTENDED_ARG instruction carrying the high
// 16 bits.
//
// # Immutability Guarantees
//
// Code is immutable after construction:
//
//   - All fields are unexported
//   - NewCode copies input slices to prevent caller mutation
//   - Accessors return values or copies, never internal slices
//
// Index-based access is used for the constant pool and name tables:
//
//	code.ConstantAt(0)
//	code.NameAt(2)
package bytecode
