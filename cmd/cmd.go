// Package cmd wires Titan's subcommands onto github.com/google/subcommands,
// following the shape of the teacher's cmd_run.go/cmd_repl.go/
// cmd_emit_bytecode.go, just collected under one importable package so
// main.go stays a two-line entry point.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

// Exit codes per the source language's external-interface contract:
// sign is preserved, exact magnitudes are nominal.
const (
	ExitOK           = subcommands.ExitStatus(0)
	ExitTooManyArgs  = subcommands.ExitStatus(-1)
	ExitCompileError = subcommands.ExitStatus(-2)
	ExitRuntimeError = subcommands.ExitStatus(-3)
)

var verbs = map[string]bool{
	"run": true, "repl": true, "disasm": true,
	"help": true, "flags": true, "commands": true,
}

// Main is the whole of the CLI entry point. It registers the three
// subcommands, then reconciles two calling conventions: the explicit
// `titan run <file>` / `titan repl` / `titan disasm <file>` subcommand
// form, and the source language's own bare-file shorthand
// (`titan <path>`, `titan` with no args at all for the REPL).
func Main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	subcommands.Register(&runCmd{}, "")
	subcommands.Register(&replCmd{}, "")
	subcommands.Register(&disasmCmd{}, "")

	flag.Parse()

	if flag.NArg() == 0 {
		os.Exit(int((&replCmd{}).Execute(context.Background(), flag.CommandLine)))
	}

	if !verbs[flag.Arg(0)] {
		if flag.NArg() > 1 {
			fmt.Fprintln(os.Stderr, "💥 usage: titan [run|repl|disasm] [path]")
			os.Exit(int(ExitTooManyArgs))
		}
		os.Exit(int(runPath(flag.Arg(0))))
	}

	os.Exit(int(subcommands.Execute(context.Background())))
}
