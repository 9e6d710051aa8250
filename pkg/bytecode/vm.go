package bytecode

import (
	"fmt"
	"os"
)

// MainFunction is the entry point Execute looks up in the function table.
const MainFunction = "main"

// Machine interprets a resolved Program against an explicit value stack.
// The value stack, call stack, and output accumulator are created fresh
// for each execution call; a Machine may be reused sequentially but must
// not be shared across concurrent executions.
type Machine struct {
	stack []int32 // Value stack
	calls []int   // Call stack of return addresses
	out   []int32 // Values emitted by PRINT, in execution order

	// Trace prints each instruction to stderr as it executes.
	Trace bool
}

// NewMachine creates a new machine.
func NewMachine() *Machine {
	return &Machine{
		stack: make([]int32, 0, 64),
		calls: make([]int, 0, 16),
	}
}

// Execute runs the program from its "main" entry point and returns the
// emitted values. A missing "main" is reported before any instruction runs.
func (m *Machine) Execute(prog *Program) ([]int32, error) {
	return m.ExecuteFrom(prog, MainFunction)
}

// ExecuteFrom runs the program from the named function's entry point.
func (m *Machine) ExecuteFrom(prog *Program, entry string) ([]int32, error) {
	idx, ok := prog.Functions[entry]
	if !ok {
		return nil, &FunctionNotFoundError{Name: entry}
	}

	m.stack = m.stack[:0]
	m.calls = m.calls[:0]
	m.out = nil

	for idx < len(prog.Instructions) {
		in := &prog.Instructions[idx]

		if m.Trace {
			fmt.Fprintf(os.Stderr, "[%4d] %-10s depth=%d\n", idx, in.Op, len(m.stack))
		}

		switch in.Op {
		// ============ Literals and stack shuffling ============
		case OpPush:
			m.push(in.Arg)

		case OpPop:
			if _, err := m.pop(in); err != nil {
				return nil, err
			}

		case OpDup:
			a, err := m.pop(in)
			if err != nil {
				return nil, err
			}
			m.push(a)
			m.push(a)

		case OpSwap:
			a, b, err := m.pop2(in)
			if err != nil {
				return nil, err
			}
			m.push(a)
			m.push(b)

		case OpRot:
			a, b, err := m.pop2(in)
			if err != nil {
				return nil, err
			}
			c, err := m.pop(in)
			if err != nil {
				return nil, err
			}
			m.push(b)
			m.push(a)
			m.push(c)

		case OpOver:
			a, b, err := m.pop2(in)
			if err != nil {
				return nil, err
			}
			m.push(b)
			m.push(a)
			m.push(b)

		case OpNip:
			a, _, err := m.pop2(in)
			if err != nil {
				return nil, err
			}
			m.push(a)

		// ============ Arithmetic ============
		case OpAdd:
			a, b, err := m.pop2(in)
			if err != nil {
				return nil, err
			}
			m.push(a + b)

		case OpSub:
			a, b, err := m.pop2(in)
			if err != nil {
				return nil, err
			}
			m.push(b - a)

		case OpMul:
			a, b, err := m.pop2(in)
			if err != nil {
				return nil, err
			}
			m.push(a * b)

		case OpDiv:
			a, b, err := m.pop2(in)
			if err != nil {
				return nil, err
			}
			if a == 0 {
				return nil, &DivisionByZeroError{Pos: in.Pos, Line: in.Line}
			}
			m.push(b / a)

		// ============ Output ============
		case OpPrint:
			a, err := m.pop(in)
			if err != nil {
				return nil, err
			}
			m.out = append(m.out, a)

		// ============ Control flow ============
		// Jumps set idx to the instruction's target and then take the
		// default increment, so a target always names the partner
		// instruction itself, never the slot after it.
		case OpWhile:
			top, err := m.peek(in)
			if err != nil {
				return nil, err
			}
			if top == 0 {
				idx = in.Target
			}

		case OpEndWhile:
			top, err := m.peek(in)
			if err != nil {
				return nil, err
			}
			if top != 0 {
				idx = in.Target
			}

		case OpIf:
			top, err := m.peek(in)
			if err != nil {
				return nil, err
			}
			if top == 0 {
				idx = in.Target
			}

		case OpElse:
			idx = in.Target

		case OpEndIf:
			// Marker only.

		// ============ Calls ============
		case OpCall:
			m.calls = append(m.calls, idx)
			idx = in.Target
			continue

		case OpRet:
			if len(m.calls) == 0 {
				// Returning from main ends execution.
				return m.out, nil
			}
			idx = m.calls[len(m.calls)-1] + 1
			m.calls = m.calls[:len(m.calls)-1]
			continue

		default:
			return nil, fmt.Errorf("unknown opcode %d at index %d", in.Op, idx)
		}

		idx++
	}

	return m.out, nil
}

// Stack helpers

func (m *Machine) push(v int32) {
	m.stack = append(m.stack, v)
}

func (m *Machine) pop(in *Instruction) (int32, error) {
	if len(m.stack) == 0 {
		return 0, &StackEmptyError{Word: in.Op.String(), Pos: in.Pos, Line: in.Line}
	}
	v := m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]
	return v, nil
}

func (m *Machine) pop2(in *Instruction) (int32, int32, error) {
	a, err := m.pop(in)
	if err != nil {
		return 0, 0, err
	}
	b, err := m.pop(in)
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}

func (m *Machine) peek(in *Instruction) (int32, error) {
	if len(m.stack) == 0 {
		return 0, &StackEmptyError{Word: in.Op.String(), Pos: in.Pos, Line: in.Line}
	}
	return m.stack[len(m.stack)-1], nil
}
