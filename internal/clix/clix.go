// Package clix holds the small pieces of plumbing shared by every
// subcommand in cmd/: reading a source file and running the
// compile+execute pipeline against it. Keeping this here instead of
// duplicating it in run.go/repl.go/disasm.go mirrors how the teacher's
// own cmd_*.go files each hand-rolled the same os.ReadFile/compile/run
// sequence — Titan pulls that sequence out once.
package clix

import (
	"fmt"
	"os"

	"titan/compiler"
	"titan/program"
	"titan/vm"
)

// ReadSource reads the file at path, wrapping the error with the
// teacher's "💥 Failed to read file" phrasing.
func ReadSource(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("💥 Failed to read file: %w", err)
	}
	return string(data), nil
}

// CompileAndRun compiles src and, if compilation succeeds, runs it on
// m. It returns the compiled Program (nil on a compile error, useful
// for callers that still want to disassemble it) and whichever of the
// two stages failed.
func CompileAndRun(m *vm.VM, src string) (*program.Program, error) {
	prog, err := compiler.Compile(src)
	if err != nil {
		return nil, err
	}
	if err := m.Run(prog); err != nil {
		return prog, err
	}
	return prog, nil
}

// IsCompileError reports whether err came from the compile stage, as
// opposed to the VM's RuntimeError — callers use this to pick an exit
// code.
func IsCompileError(err error) bool {
	_, ok := err.(*compiler.CompileError)
	return ok
}
