package compiler

import "fmt"

// CompileError is returned from Compile when one or more errors were
// reported during compilation. Individual diagnostics are written to
// stderr as they're found (so a single source file can report more than
// one mistake); CompileError is the aggregate failure signal the caller
// checks.
type CompileError struct {
	Count int
}

func (e *CompileError) Error() string {
	if e.Count == 1 {
		return "💥 CompileError: 1 error"
	}
	return fmt.Sprintf("💥 CompileError: %d errors", e.Count)
}
