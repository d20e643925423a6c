package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"titan/compiler"
	"titan/disasm"
	"titan/internal/clix"
)

// disasmCmd implements `titan disasm <file>`: compile a file and print
// its instruction listing, without executing it. Mirrors the teacher's
// emitBytecodeCmd, minus the AST-era bytecode dump (that collaborator
// is run's -dump-bytecode flag instead).
type disasmCmd struct {
	outPath string
}

func (*disasmCmd) Name() string     { return "disasm" }
func (*disasmCmd) Synopsis() string { return "Compile a file and print its bytecode listing" }
func (*disasmCmd) Usage() string {
	return `disasm <file>:
  Compile Titan source and print a human-readable instruction listing.
`
}

func (d *disasmCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&d.outPath, "o", "", "write the listing to this path instead of stdout")
}

func (d *disasmCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "💥 usage: titan disasm <file>")
		return subcommands.ExitUsageError
	}
	path := args[0]

	src, err := clix.ReadSource(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return subcommands.ExitFailure
	}

	prog, err := compiler.Compile(src)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return ExitCompileError
	}

	listing := disasm.Disassemble(prog, path)
	if d.outPath == "" {
		fmt.Print(listing)
		return ExitOK
	}
	if err := os.WriteFile(d.outPath, []byte(listing), 0o644); err != nil {
		fmt.Fprintln(os.Stderr, "💥 Failed to write listing:", err)
		return subcommands.ExitFailure
	}
	return ExitOK
}
