// stax CLI - the main entry point for running stax programs
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/chazu/stax/manifest"
	"github.com/chazu/stax/server"
)

func main() {
	verbose := flag.Bool("v", false, "Verbose output")
	interactive := flag.Bool("i", false, "Start interactive REPL")
	entry := flag.String("m", "main", "Entry function to execute")
	check := flag.Bool("check", false, "Run the static stack-safety check before executing")
	disasm := flag.Bool("disasm", false, "Print the resolved instruction listing instead of executing")
	trace := flag.Bool("trace", false, "Trace each instruction during execution")
	lspMode := flag.Bool("lsp", false, "Start the language server on stdio")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: stax [options] [file.stax]\n\n")
		fmt.Fprintf(os.Stderr, "Runs a stax program and prints its emitted values, one per line.\n")
		fmt.Fprintf(os.Stderr, "With no file argument, looks for a stax.toml project manifest; with no\n")
		fmt.Fprintf(os.Stderr, "manifest either, starts the REPL.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  stax program.stax           # Run program.stax\n")
		fmt.Fprintf(os.Stderr, "  stax -disasm program.stax   # Show the resolved instruction listing\n")
		fmt.Fprintf(os.Stderr, "  stax -check program.stax    # Stack-safety check, then run\n")
		fmt.Fprintf(os.Stderr, "  stax -m countdown loops.stax  # Run the 'countdown' function\n")
		fmt.Fprintf(os.Stderr, "  stax -i                     # Start REPL\n")
		fmt.Fprintf(os.Stderr, "  stax -lsp                   # Start the language server on stdio\n")
	}
	flag.Parse()

	if *lspMode {
		if err := server.NewLSP().Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *interactive {
		runREPL()
		return
	}

	opts := runOptions{entry: *entry, check: *check, trace: *trace}

	var path string
	if args := flag.Args(); len(args) > 0 {
		path = args[0]
	} else {
		m, err := manifest.FindAndLoad(".")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if m == nil {
			runREPL()
			return
		}
		path = m.EntryPath()
		if opts.entry == "main" {
			opts.entry = m.Run.Entry
		}
		opts.check = opts.check || m.Run.Check
		opts.trace = opts.trace || m.Run.Trace
		if *verbose {
			fmt.Printf("Project %s: running %s\n", m.Project.Name, path)
		}
	}

	prog, err := loadProgram(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *verbose {
		fmt.Printf("Parsed %d instructions, %d functions\n", prog.Len(), len(prog.Functions))
	}

	if *disasm {
		fmt.Print(prog.Disassemble())
		return
	}

	out, err := runProgram(prog, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	printValues(os.Stdout, out)
}
