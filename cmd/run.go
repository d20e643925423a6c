package cmd

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"titan/disasm"
	"titan/internal/clix"
	"titan/vm"
)

// runCmd implements `titan run <file>`: compile the file and execute it
// to completion against a fresh VM.
type runCmd struct {
	disassemble  bool
	dumpBytecode bool
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "Compile and execute a Titan source file" }
func (*runCmd) Usage() string {
	return `run <file>:
  Compile and execute Titan source from a file.
`
}

func (r *runCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&r.disassemble, "disasm", false, "print the disassembled bytecode to stdout after running")
	f.BoolVar(&r.dumpBytecode, "dump-bytecode", false, "write the encoded bytecode as hex to <file>.tnc")
}

func (r *runCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "💥 File not provided")
		return subcommands.ExitUsageError
	}
	if len(args) > 1 {
		fmt.Fprintln(os.Stderr, "💥 usage: titan run <file>")
		return ExitTooManyArgs
	}

	status := r.runPathWithOptions(args[0])
	return status
}

// runPath runs a file via the bare-shorthand calling convention
// (`titan <path>`), with no disassembly or bytecode-dump flags.
func runPath(path string) subcommands.ExitStatus {
	return (&runCmd{}).runPathWithOptions(path)
}

func (r *runCmd) runPathWithOptions(path string) subcommands.ExitStatus {
	src, err := clix.ReadSource(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return subcommands.ExitFailure
	}

	m := vm.New()
	prog, runErr := clix.CompileAndRun(m, src)

	if prog != nil && r.disassemble {
		fmt.Print(disasm.Disassemble(prog, path))
	}
	if prog != nil && r.dumpBytecode {
		if err := dumpBytecode(prog.Code, path+".tnc"); err != nil {
			fmt.Fprintln(os.Stderr, "💥 Dump bytecode error:", err)
		}
	}

	if runErr != nil {
		fmt.Fprintln(os.Stderr, runErr.Error())
		if clix.IsCompileError(runErr) {
			return ExitCompileError
		}
		return ExitRuntimeError
	}
	return ExitOK
}

func dumpBytecode(code []byte, path string) error {
	return os.WriteFile(path, []byte(hex.EncodeToString(code)), 0o644)
}
