package vm

import "fmt"

// RuntimeError is returned from Run when execution hits a type mismatch,
// an undefined global, or another condition the spec defines as fatal
// at runtime. Line is the source line computed from the Program's line
// map at the failing instruction.
type RuntimeError struct {
	Message string
	Line    int32
}

func (e RuntimeError) Error() string {
	return fmt.Sprintf("💥 RuntimeError: [Line %d] %s", e.Line, e.Message)
}
