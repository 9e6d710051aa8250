package bytecode

import (
	"errors"
	"reflect"
	"testing"
)

// Test helpers for building programs by hand. All instructions carry a
// fixed source position unless the test needs to assert on it.

func mainProg(instrs ...Instruction) *Program {
	return &Program{
		Instructions: instrs,
		Functions:    map[string]int{"main": 0},
	}
}

func push(n int32) Instruction {
	return Instruction{Op: OpPush, Arg: n, Pos: 1, Line: 1}
}

func op(o Opcode) Instruction {
	return Instruction{Op: o, Pos: 1, Line: 1}
}

func jump(o Opcode, target int) Instruction {
	return Instruction{Op: o, Target: target, Pos: 1, Line: 1}
}

func execute(t *testing.T, prog *Program) []int32 {
	t.Helper()
	out, err := NewMachine().Execute(prog)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	return out
}

func TestPushPrint(t *testing.T) {
	out := execute(t, mainProg(push(42), op(OpPrint)))
	if !reflect.DeepEqual(out, []int32{42}) {
		t.Errorf("output = %v, want [42]", out)
	}
}

func TestArithmetic(t *testing.T) {
	tests := []struct {
		name string
		x, y int32
		op   Opcode
		want int32
	}{
		{"add", 2, 3, OpAdd, 5},
		{"add negative", -2, 3, OpAdd, 1},
		{"sub", 10, 4, OpSub, 6},
		{"sub negative result", 4, 10, OpSub, -6},
		{"mul", 6, 7, OpMul, 42},
		{"div", 12, 4, OpDiv, 3},
		{"div truncates", 7, 2, OpDiv, 3},
		{"div truncates toward zero", -7, 2, OpDiv, -3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := execute(t, mainProg(push(tt.x), push(tt.y), op(tt.op), op(OpPrint)))
			if !reflect.DeepEqual(out, []int32{tt.want}) {
				t.Errorf("%d %s %d = %v, want [%d]", tt.x, tt.op, tt.y, out, tt.want)
			}
		})
	}
}

func TestDivisionByZero(t *testing.T) {
	prog := mainProg(push(1), push(0), Instruction{Op: OpDiv, Pos: 5, Line: 2})

	_, err := NewMachine().Execute(prog)
	var divErr *DivisionByZeroError
	if !errors.As(err, &divErr) {
		t.Fatalf("error = %v, want DivisionByZeroError", err)
	}
	if divErr.Pos != 5 || divErr.Line != 2 {
		t.Errorf("error position = %d:%d, want 2:5", divErr.Line, divErr.Pos)
	}
}

func TestPrintConsumesValue(t *testing.T) {
	// After PRINT only one of the two values remains, so ADD underflows.
	prog := mainProg(
		push(2),
		push(2),
		op(OpPrint),
		Instruction{Op: OpAdd, Pos: 7, Line: 1},
	)

	_, err := NewMachine().Execute(prog)
	var emptyErr *StackEmptyError
	if !errors.As(err, &emptyErr) {
		t.Fatalf("error = %v, want StackEmptyError", err)
	}
	if emptyErr.Word != "ADD" {
		t.Errorf("error word = %q, want ADD", emptyErr.Word)
	}
	if emptyErr.Pos != 7 || emptyErr.Line != 1 {
		t.Errorf("error position = %d:%d, want 1:7", emptyErr.Line, emptyErr.Pos)
	}
}

func TestStackShuffles(t *testing.T) {
	tests := []struct {
		name   string
		instrs []Instruction
		want   []int32 // printed top-down by draining with PRINT
	}{
		{
			"dup",
			[]Instruction{push(7), op(OpDup)},
			[]int32{7, 7},
		},
		{
			"swap",
			[]Instruction{push(1), push(2), op(OpSwap)},
			[]int32{1, 2},
		},
		{
			"rot",
			[]Instruction{push(1), push(2), push(3), op(OpRot)},
			[]int32{1, 3, 2},
		},
		{
			"over",
			[]Instruction{push(1), push(2), op(OpOver)},
			[]int32{1, 2, 1},
		},
		{
			"nip",
			[]Instruction{push(0), push(1), push(2), op(OpNip)},
			[]int32{2, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			instrs := tt.instrs
			for range tt.want {
				instrs = append(instrs, op(OpPrint))
			}
			out := execute(t, mainProg(instrs...))
			if !reflect.DeepEqual(out, tt.want) {
				t.Errorf("output = %v, want %v", out, tt.want)
			}
		})
	}
}

func TestPopDiscards(t *testing.T) {
	out := execute(t, mainProg(push(1), push(2), op(OpPop), op(OpPrint)))
	if !reflect.DeepEqual(out, []int32{1}) {
		t.Errorf("output = %v, want [1]", out)
	}
}

func TestWhileLoop(t *testing.T) {
	// 3 while 5 print 1 - end
	prog := mainProg(
		push(3),
		jump(OpWhile, 6),
		push(5),
		op(OpPrint),
		push(1),
		op(OpSub),
		jump(OpEndWhile, 1),
	)

	out := execute(t, prog)
	if !reflect.DeepEqual(out, []int32{5, 5, 5}) {
		t.Errorf("output = %v, want [5 5 5]", out)
	}
}

func TestWhileConditionIsPeeked(t *testing.T) {
	// A zero condition skips the loop but stays on the stack.
	prog := mainProg(
		push(0),
		jump(OpWhile, 2),
		jump(OpEndWhile, 1),
		op(OpPrint),
	)

	out := execute(t, prog)
	if !reflect.DeepEqual(out, []int32{0}) {
		t.Errorf("output = %v, want [0]", out)
	}
}

func TestWhileOnEmptyStack(t *testing.T) {
	prog := mainProg(jump(OpWhile, 1), jump(OpEndWhile, 0))

	_, err := NewMachine().Execute(prog)
	var emptyErr *StackEmptyError
	if !errors.As(err, &emptyErr) {
		t.Fatalf("error = %v, want StackEmptyError", err)
	}
	if emptyErr.Word != "WHILE" {
		t.Errorf("error word = %q, want WHILE", emptyErr.Word)
	}
}

func TestIfElse(t *testing.T) {
	// c if 10 print else 20 print end
	build := func(c int32) *Program {
		return mainProg(
			push(c),
			jump(OpIf, 4),
			push(10),
			op(OpPrint),
			jump(OpElse, 7),
			push(20),
			op(OpPrint),
			op(OpEndIf),
		)
	}

	if out := execute(t, build(1)); !reflect.DeepEqual(out, []int32{10}) {
		t.Errorf("then-branch output = %v, want [10]", out)
	}
	if out := execute(t, build(0)); !reflect.DeepEqual(out, []int32{20}) {
		t.Errorf("else-branch output = %v, want [20]", out)
	}
}

func TestIfWithoutElse(t *testing.T) {
	// c if 99 print end
	build := func(c int32) *Program {
		return mainProg(
			push(c),
			jump(OpIf, 4),
			push(99),
			op(OpPrint),
			op(OpEndIf),
		)
	}

	if out := execute(t, build(5)); !reflect.DeepEqual(out, []int32{99}) {
		t.Errorf("taken output = %v, want [99]", out)
	}
	if out := execute(t, build(0)); len(out) != 0 {
		t.Errorf("skipped output = %v, want []", out)
	}
}

func TestCallRet(t *testing.T) {
	// fun double dup + ret   fun main 21 double print
	prog := &Program{
		Instructions: []Instruction{
			op(OpDup),          // 0: double
			op(OpAdd),          // 1
			op(OpRet),          // 2
			push(21),           // 3: main
			jump(OpCall, 0),    // 4
			op(OpPrint),        // 5
		},
		Functions: map[string]int{"double": 0, "main": 3},
	}

	out := execute(t, prog)
	if !reflect.DeepEqual(out, []int32{42}) {
		t.Errorf("output = %v, want [42]", out)
	}
}

func TestNestedCalls(t *testing.T) {
	// fun inc 1 + ret   fun inc2 inc inc ret   fun main 40 inc2 print
	prog := &Program{
		Instructions: []Instruction{
			push(1),         // 0: inc
			op(OpAdd),       // 1
			op(OpRet),       // 2
			jump(OpCall, 0), // 3: inc2
			jump(OpCall, 0), // 4
			op(OpRet),       // 5
			push(40),        // 6: main
			jump(OpCall, 3), // 7
			op(OpPrint),     // 8
		},
		Functions: map[string]int{"inc": 0, "inc2": 3, "main": 6},
	}

	out := execute(t, prog)
	if !reflect.DeepEqual(out, []int32{42}) {
		t.Errorf("output = %v, want [42]", out)
	}
}

func TestRetFromMainEndsExecution(t *testing.T) {
	prog := mainProg(
		push(1),
		op(OpPrint),
		op(OpRet),
		push(2),
		op(OpPrint),
	)

	out := execute(t, prog)
	if !reflect.DeepEqual(out, []int32{1}) {
		t.Errorf("output = %v, want [1]", out)
	}
}

func TestFallingOffTheEndEndsExecution(t *testing.T) {
	out := execute(t, mainProg(push(9), op(OpPrint)))
	if !reflect.DeepEqual(out, []int32{9}) {
		t.Errorf("output = %v, want [9]", out)
	}
}

func TestMissingMain(t *testing.T) {
	prog := &Program{
		Instructions: []Instruction{push(1)},
		Functions:    map[string]int{},
	}

	_, err := NewMachine().Execute(prog)
	var notFound *FunctionNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("error = %v, want FunctionNotFoundError", err)
	}
	if notFound.Name != "main" {
		t.Errorf("error name = %q, want main", notFound.Name)
	}
	if notFound.Pos != 0 || notFound.Line != 0 {
		t.Errorf("error position = %d:%d, want zeroed", notFound.Line, notFound.Pos)
	}
}

func TestExecuteFrom(t *testing.T) {
	prog := &Program{
		Instructions: []Instruction{
			push(1), op(OpPrint), op(OpRet), // 0: one
			push(2), op(OpPrint), // 3: two
		},
		Functions: map[string]int{"one": 0, "two": 3},
	}

	out, err := NewMachine().ExecuteFrom(prog, "two")
	if err != nil {
		t.Fatalf("ExecuteFrom failed: %v", err)
	}
	if !reflect.DeepEqual(out, []int32{2}) {
		t.Errorf("output = %v, want [2]", out)
	}
}

func TestMachineReuseResetsState(t *testing.T) {
	m := NewMachine()

	// First run leaves values on the stack and in the output.
	first := mainProg(push(1), push(2), op(OpPrint))
	out, err := m.Execute(first)
	if err != nil {
		t.Fatalf("first Execute failed: %v", err)
	}
	if !reflect.DeepEqual(out, []int32{2}) {
		t.Errorf("first output = %v, want [2]", out)
	}

	// Second run must not see the leftover 1 or the old output.
	second := mainProg(push(7), op(OpPrint))
	out, err = m.Execute(second)
	if err != nil {
		t.Fatalf("second Execute failed: %v", err)
	}
	if !reflect.DeepEqual(out, []int32{7}) {
		t.Errorf("second output = %v, want [7]", out)
	}

	// And an underflow proves the stack really is empty.
	third := mainProg(op(OpPop))
	if _, err := m.Execute(third); err == nil {
		t.Error("expected underflow on fresh stack, got nil")
	}
}

func BenchmarkCountdownLoop(b *testing.B) {
	// 1000 while 1 - end pop
	prog := mainProg(
		push(1000),
		jump(OpWhile, 4),
		push(1),
		op(OpSub),
		jump(OpEndWhile, 1),
		op(OpPop),
	)

	m := NewMachine()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := m.Execute(prog); err != nil {
			b.Fatal(err)
		}
	}
}
