package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/chazu/stax/compiler"
	"github.com/chazu/stax/pkg/bytecode"
)

// runREPL starts an interactive read-eval-print loop.
//
// Lines starting with "fun" accumulate into a session prelude so later
// expressions can call them. Any other line is wrapped as the body of
// main, compiled together with the prelude, and executed on a fresh
// machine; its emitted values are printed one per line.
func runREPL() {
	fmt.Println("stax REPL (type 'exit' to quit, ':help' for commands)")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	var prelude strings.Builder

	for {
		fmt.Print(">> ")
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue

		case line == "exit" || line == "quit":
			fmt.Println()
			return

		case strings.HasPrefix(line, ":"):
			handleREPLCommand(&prelude, line)

		case strings.HasPrefix(line, "fun ") || line == "fun":
			// Validate the declaration before keeping it.
			if _, err := compiler.Compile(prelude.String() + "\n" + line); err != nil {
				fmt.Printf("Error: %v\n", err)
				continue
			}
			prelude.WriteString(line)
			prelude.WriteString("\n")

		default:
			evalAndPrint(prelude.String(), line)
		}
	}

	fmt.Println()
}

// handleREPLCommand handles REPL meta-commands.
func handleREPLCommand(prelude *strings.Builder, cmd string) {
	switch {
	case cmd == ":help" || cmd == ":h" || cmd == ":?":
		fmt.Println("REPL Commands:")
		fmt.Println("  :help, :h, :?     Show this help")
		fmt.Println("  :disasm <code>    Show the instruction listing for <code>")
		fmt.Println("  :funs             List session function declarations")
		fmt.Println("  :clear            Forget session function declarations")
		fmt.Println("  exit, quit        Exit REPL")

	case strings.HasPrefix(cmd, ":disasm"):
		body := strings.TrimSpace(strings.TrimPrefix(cmd, ":disasm"))
		prog, err := compileLine(prelude.String(), body)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		fmt.Print(prog.Disassemble())

	case cmd == ":funs":
		if prelude.Len() == 0 {
			fmt.Println("No functions declared")
			return
		}
		fmt.Print(prelude.String())

	case cmd == ":clear":
		prelude.Reset()

	default:
		fmt.Printf("Unknown command: %s (type :help for commands)\n", cmd)
	}
}

// compileLine wraps an expression line as the body of main and compiles
// it together with the session prelude.
func compileLine(prelude, line string) (*bytecode.Program, error) {
	return compiler.Compile(prelude + "\nfun main\n" + line)
}

// evalAndPrint compiles and executes an expression line, printing the
// emitted values.
func evalAndPrint(prelude, line string) {
	prog, err := compileLine(prelude, line)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	out, err := bytecode.NewMachine().Execute(prog)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	printValues(os.Stdout, out)
}
