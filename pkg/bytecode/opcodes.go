package bytecode

import "fmt"

// Opcode identifies an instruction kind.
type Opcode int

const (
	OpPush Opcode = iota // Push literal operand onto the stack
	OpPop                // Pop and discard top of stack
	OpAdd                // Pop a, pop b, push a+b
	OpSub                // Pop a, pop b, push b-a
	OpMul                // Pop a, pop b, push a*b
	OpDiv                // Pop a, pop b, push b/a (truncating)
	OpPrint              // Pop top of stack and emit it
	OpDup                // Duplicate top of stack
	OpSwap               // Swap top two stack elements
	OpRot                // Rotate top three: a b c -> b c a
	OpOver               // Copy second-from-top to the top
	OpNip                // Remove second-from-top

	OpWhile    // Peek; jump to target when zero (loop exit)
	OpEndWhile // Peek; jump back to target when non-zero (loop re-entry)
	OpIf       // Peek; jump to target when zero (skip then-branch)
	OpElse     // Unconditional jump to target (past the matching end)
	OpEndIf    // No-op marker closing an if

	OpCall // Push return address, jump to function entry
	OpRet  // Pop return address; with an empty call stack, end execution
)

// OpcodeInfo describes an instruction kind for disassembly and validation.
type OpcodeInfo struct {
	Name      string // Human-readable name
	StackPop  int    // Values consumed from the stack
	StackPush int    // Values produced onto the stack
	MinDepth  int    // Minimum stack depth required (covers peeks)
	HasTarget bool   // Instruction carries a jump/entry index
}

// opcodeInfoTable maps opcodes to their metadata.
var opcodeInfoTable = map[Opcode]OpcodeInfo{
	OpPush:  {"PUSH", 0, 1, 0, false},
	OpPop:   {"POP", 1, 0, 1, false},
	OpAdd:   {"ADD", 2, 1, 2, false},
	OpSub:   {"SUB", 2, 1, 2, false},
	OpMul:   {"MUL", 2, 1, 2, false},
	OpDiv:   {"DIV", 2, 1, 2, false},
	OpPrint: {"PRINT", 1, 0, 1, false},
	OpDup:   {"DUP", 1, 2, 1, false},
	OpSwap:  {"SWAP", 2, 2, 2, false},
	OpRot:   {"ROT", 3, 3, 3, false},
	OpOver:  {"OVER", 2, 3, 2, false},
	OpNip:   {"NIP", 2, 1, 2, false},

	OpWhile:    {"WHILE", 0, 0, 1, true},
	OpEndWhile: {"END_WHILE", 0, 0, 1, true},
	OpIf:       {"IF", 0, 0, 1, true},
	OpElse:     {"ELSE", 0, 0, 0, true},
	OpEndIf:    {"END_IF", 0, 0, 0, false},

	OpCall: {"CALL", 0, 0, 0, true},
	OpRet:  {"RET", 0, 0, 0, false},
}

// GetOpcodeInfo returns metadata for an opcode.
// Returns a zero OpcodeInfo with name "UNKNOWN" if the opcode is not recognized.
func GetOpcodeInfo(op Opcode) OpcodeInfo {
	if info, ok := opcodeInfoTable[op]; ok {
		return info
	}
	return OpcodeInfo{Name: fmt.Sprintf("UNKNOWN(%d)", int(op))}
}

// String returns the human-readable name of an opcode.
func (op Opcode) String() string {
	return GetOpcodeInfo(op).Name
}

// HasTarget returns true if this opcode carries a jump or entry index.
func (op Opcode) HasTarget() bool {
	return GetOpcodeInfo(op).HasTarget
}

// IsJump returns true if this opcode may transfer control to its target.
func (op Opcode) IsJump() bool {
	return op >= OpWhile && op <= OpElse
}

// IsControlFlow returns true for control-flow and call/return opcodes,
// the kinds the static checker declines to model.
func (op Opcode) IsControlFlow() bool {
	return op >= OpWhile && op <= OpRet
}

// AllOpcodes returns a slice of all defined opcodes.
// Useful for testing that all opcodes have metadata.
func AllOpcodes() []Opcode {
	opcodes := make([]Opcode, 0, len(opcodeInfoTable))
	for op := range opcodeInfoTable {
		opcodes = append(opcodes, op)
	}
	return opcodes
}

// OpcodeCount returns the number of defined opcodes.
func OpcodeCount() int {
	return len(opcodeInfoTable)
}
