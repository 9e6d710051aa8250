package bytecode

import "fmt"

// StackEmptyError reports a pop or peek on an empty value stack.
// Word names the instruction that needed the value; Pos and Line point at
// its source token (1-based).
type StackEmptyError struct {
	Word string
	Pos  int
	Line int
}

func (e *StackEmptyError) Error() string {
	return fmt.Sprintf("stack empty: %q at %d:%d needs a value", e.Word, e.Line, e.Pos)
}

// FunctionNotFoundError reports a call to a function with no recorded
// entry point. Pos and Line are zero when the lookup has no source token
// (the machine's own "main" lookup).
type FunctionNotFoundError struct {
	Name string
	Pos  int
	Line int
}

func (e *FunctionNotFoundError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("function not found: %q", e.Name)
	}
	return fmt.Sprintf("function not found: %q at %d:%d", e.Name, e.Line, e.Pos)
}

// DivisionByZeroError reports a DIV whose divisor was zero.
type DivisionByZeroError struct {
	Pos  int
	Line int
}

func (e *DivisionByZeroError) Error() string {
	return fmt.Sprintf("division by zero at %d:%d", e.Line, e.Pos)
}

// CheckError reports a static stack-safety violation found by Check.
type CheckError struct {
	Word    string
	Pos     int
	Line    int
	Comment string
}

func (e *CheckError) Error() string {
	if e.Word == "" {
		return fmt.Sprintf("stack check failed: %s", e.Comment)
	}
	return fmt.Sprintf("stack check failed: %q at %d:%d: %s", e.Word, e.Line, e.Pos, e.Comment)
}
