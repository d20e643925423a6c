// Package program holds the compiled artifact a Compiler writes into and
// a VM reads from: the bytecode buffer, the constant pool, and the
// per-instruction source-line map.
package program

import "titan/value"

// Program is append-only during compilation and read-only during
// execution. The compile call owns it exclusively; the VM only reads it.
type Program struct {
	Code      []byte
	Constants []value.Value
	Lines     []int32
}

// New returns an empty Program ready for a compile pass.
func New() *Program {
	return &Program{
		Code:      make([]byte, 0, 256),
		Constants: make([]value.Value, 0, 16),
		Lines:     make([]int32, 0, 256),
	}
}

// AddOp appends one byte to Code and records its source line, keeping
// Code and Lines aligned 1:1 as the data model requires.
func (p *Program) AddOp(b byte, line int32) {
	p.Code = append(p.Code, b)
	p.Lines = append(p.Lines, line)
}

// AddConstant appends v to the constant pool and returns its index. No
// deduplication is performed: repeated identical constants each get
// their own slot, matching the source's behavior.
func (p *Program) AddConstant(v value.Value) int {
	p.Constants = append(p.Constants, v)
	return len(p.Constants) - 1
}

// Len returns the current length of the code buffer, i.e. the byte
// offset the next emitted instruction will occupy.
func (p *Program) Len() int {
	return len(p.Code)
}
