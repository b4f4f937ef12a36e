package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"insh/compiler"
)

// emitCmd implements the "emit" verb: compiles a script and writes its
// disassembly, without executing it (SPEC_FULL §6/§13, grounded in the
// teacher's cmd_emit_bytecode.go).
type emitCmd struct {
	out string
}

func (*emitCmd) Name() string     { return "emit" }
func (*emitCmd) Synopsis() string { return "Emit the bytecode disassembly of a source file" }
func (*emitCmd) Usage() string {
	return `emit <file>:
  Compile a script and write its disassembly to stdout or -out.
`
}

func (cmd *emitCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&cmd.out, "out", "", "file path to write the disassembly to (default: stdout)")
}

func (cmd *emitCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "💥 no file provided\n")
		return subcommands.ExitUsageError
	}
	filename := args[0]

	data, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 failed to read %s: %v\n", filename, err)
		return subcommands.ExitFailure
	}

	ch, err := compiler.New(string(data)).Compile()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	disassembly := ch.Disassemble(filename)

	if cmd.out == "" {
		fmt.Print(disassembly)
		return subcommands.ExitSuccess
	}

	if err := os.WriteFile(cmd.out, []byte(disassembly), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "💥 failed to write %s: %v\n", cmd.out, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
