package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"insh/compiler"
	"insh/runtime"
	"insh/vm"
)

// runCmd implements the "run" verb (SPEC_FULL §6/§13).
type runCmd struct {
	trace bool
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "Execute insh source files" }
func (*runCmd) Usage() string {
	return `run <file> [<file> ...]:
  Compile and execute each script path in order against a single shared VM.
`
}

func (r *runCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&r.trace, "trace", false, "print one line per executed opcode to stderr")
}

func (r *runCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "💥 no file provided\n")
		return subcommands.ExitUsageError
	}

	machine := vm.New(runtime.NewOSHost())
	machine.SetDebug(r.trace)

	for _, filename := range args {
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

		if _, err := machine.Run(ctx, ch); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
	}

	return subcommands.ExitSuccess
}
