package bytecode

import (
	"fmt"
	"strings"
)

// Disassemble returns a human-readable listing of the program.
// Function entry points are shown as labels, jump targets as annotated
// indices, and each instruction carries its source line:column.
func (p *Program) Disassemble() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("; %d instructions, %d functions\n", len(p.Instructions), len(p.Functions)))

	for idx := range p.Instructions {
		for _, name := range p.EntryNames(idx) {
			sb.WriteString(fmt.Sprintf("%s:\n", name))
		}
		sb.WriteString(fmt.Sprintf("%4d  %s\n", idx, p.DisassembleInstruction(idx)))
	}

	// Entry points past the last instruction (empty function bodies).
	for _, name := range p.EntryNames(len(p.Instructions)) {
		sb.WriteString(fmt.Sprintf("%s:\n", name))
	}

	return sb.String()
}

// DisassembleInstruction returns a human-readable representation of the
// instruction at the given index.
func (p *Program) DisassembleInstruction(idx int) string {
	if idx < 0 || idx >= len(p.Instructions) {
		return "<end of code>"
	}

	in := &p.Instructions[idx]
	var text string
	switch {
	case in.Op == OpPush:
		text = fmt.Sprintf("%-10s %d", in.Op, in.Arg)
	case in.Op == OpCall:
		name := ""
		if names := p.EntryNames(in.Target); len(names) > 0 {
			name = " ; " + names[0]
		}
		text = fmt.Sprintf("%-10s %d%s", in.Op, in.Target, name)
	case in.Op.HasTarget():
		text = fmt.Sprintf("%-10s -> %d", in.Op, in.Target)
	default:
		text = in.Op.String()
	}

	return fmt.Sprintf("%-24s ; line %d:%d", text, in.Line, in.Pos)
}
