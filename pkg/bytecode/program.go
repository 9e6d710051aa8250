package bytecode

import "sort"

// Instruction is one resolved operation in the flat executable sequence.
// Arg carries the literal for OpPush. Target carries the jump target
// (an instruction index) for the control-flow opcodes and the function
// entry index for OpCall; it is meaningless for everything else.
// Pos and Line point at the source token the instruction came from
// (1-based column and line).
type Instruction struct {
	Op     Opcode
	Arg    int32
	Target int
	Pos    int
	Line   int
}

// Program is a resolved instruction sequence plus the function table
// mapping each declared name to its entry instruction index. Built once
// by the parser; immutable during execution.
type Program struct {
	Instructions []Instruction
	Functions    map[string]int
}

// NewProgram creates an empty program.
func NewProgram() *Program {
	return &Program{
		Instructions: make([]Instruction, 0, 64),
		Functions:    make(map[string]int),
	}
}

// Append adds an instruction and returns its index.
func (p *Program) Append(in Instruction) int {
	idx := len(p.Instructions)
	p.Instructions = append(p.Instructions, in)
	return idx
}

// Patch rewrites the target of an already-emitted instruction.
// This is the back-patch half of control-flow resolution: jump targets
// are emitted as placeholders and overwritten once the partner
// instruction's index is known.
func (p *Program) Patch(index, target int) {
	p.Instructions[index].Target = target
}

// Len returns the number of instructions.
func (p *Program) Len() int {
	return len(p.Instructions)
}

// EntryNames returns the function names whose entry point is the given
// instruction index, sorted for deterministic output.
func (p *Program) EntryNames(index int) []string {
	var names []string
	for name, entry := range p.Functions {
		if entry == index {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
