// Package bytecode provides the flat instruction model and stack machine
// for executing stax programs.
//
// A stax program is an ordered, index-addressable sequence of instructions
// plus a table mapping function names to their entry indices. There is no
// byte encoding: an instruction's position in the sequence IS its address,
// and every jump target is an instruction index resolved by the parser
// before execution begins.
//
// The package consists of:
//
//   - Opcodes: the instruction kinds, with a metadata table describing the
//     stack effect of each one (used by the disassembler and the static
//     checker)
//
//   - Program: the resolved instruction sequence and function table. Built
//     once by the compiler package and immutable afterwards.
//
//   - Machine: the interpreter. Holds a value stack of signed 32-bit
//     integers and a call stack of return addresses, and accumulates the
//     values emitted by print instructions. Created fresh state per
//     execution call.
//
//   - Check: an optional straight-line stack-depth pre-check that rejects
//     programs which would underflow, without running them. It does not
//     model control flow; see its documentation for the exact limits.
//
// All failure modes are returned as tagged error values carrying the
// source position and line of the offending instruction wherever one
// exists. Execution halts on the first error; there is no recovery.
package bytecode
