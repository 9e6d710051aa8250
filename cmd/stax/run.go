package main

import (
	"fmt"
	"io"
	"os"

	"github.com/chazu/stax/compiler"
	"github.com/chazu/stax/pkg/bytecode"
)

// runOptions controls a single program execution.
type runOptions struct {
	entry string // entry function, "main" by default
	check bool   // run the static stack-safety check first
	trace bool   // per-instruction trace on stderr
}

// loadProgram reads a source file and compiles it to a resolved program.
func loadProgram(path string) (*bytecode.Program, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	prog, err := compiler.Compile(string(content))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return prog, nil
}

// runProgram executes a compiled program and returns its emitted values.
func runProgram(prog *bytecode.Program, opts runOptions) ([]int32, error) {
	if opts.check {
		if err := bytecode.Check(prog.Instructions); err != nil {
			return nil, err
		}
	}

	machine := bytecode.NewMachine()
	machine.Trace = opts.trace

	entry := opts.entry
	if entry == "" {
		entry = bytecode.MainFunction
	}
	return machine.ExecuteFrom(prog, entry)
}

// printValues writes emitted values one per line.
func printValues(w io.Writer, values []int32) {
	for _, v := range values {
		fmt.Fprintln(w, v)
	}
}
