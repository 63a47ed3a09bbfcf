// Package asm turns a graph of basic blocks into a bytecode.Code.
//
// The code generator emits instructions into blocks through an Assembler.
// Assemble then orders the blocks, resolves jump operands to a fixpoint,
// encodes the line table, computes the maximum stack depth and serializes
// the instructions.
package asm
