// Package disasm renders a compiled Program back into a readable
// instruction listing, the same shape the source's Debug.cpp prints:
// one line per instruction, offset, source line (or "|" when it repeats
// the previous line), opcode name, and any operand.
package disasm

import (
	"fmt"
	"io"
	"strings"

	"titan/opcode"
	"titan/program"
	"titan/value"
)

// Disassemble renders a full listing of prog under the given name,
// one instruction per line.
func Disassemble(prog *program.Program, name string) string {
	var out strings.Builder
	WriteTo(&out, prog, name)
	return out.String()
}

// WriteTo writes a full listing of prog to w under the given name.
func WriteTo(w io.Writer, prog *program.Program, name string) {
	fmt.Fprintf(w, "== %s ==\n", name)
	for offset := 0; offset < len(prog.Code); {
		offset = Instruction(w, prog, offset)
	}
}

// Instruction prints the single instruction at offset and returns the
// offset of the next one, per opcode.Length.
func Instruction(w io.Writer, prog *program.Program, offset int) int {
	fmt.Fprintf(w, "%04d ", offset)

	if offset > 0 && prog.Lines[offset] == prog.Lines[offset-1] {
		fmt.Fprint(w, "   | ")
	} else {
		fmt.Fprintf(w, "%4d ", prog.Lines[offset])
	}

	op := opcode.Opcode(prog.Code[offset])
	length := opcode.Length(op)

	switch {
	case isConstantFamily(op):
		idx := readOperand(prog.Code, offset+1, opcode.OperandWidth(op))
		var v value.Value
		if idx < len(prog.Constants) {
			v = prog.Constants[idx]
		}
		fmt.Fprintf(w, "%-20s %4d '%s'\n", op, idx, v.String())

	case isJumpFamily(op):
		jumpOffset := readOperand(prog.Code, offset+1, opcode.OperandWidth(op))
		target := jumpTarget(op, offset, length, jumpOffset)
		fmt.Fprintf(w, "%-20s %4d -> %d\n", op, jumpOffset, target)

	case opcode.OperandWidth(op) > 0:
		v := readOperand(prog.Code, offset+1, opcode.OperandWidth(op))
		fmt.Fprintf(w, "%-20s %4d\n", op, v)

	default:
		fmt.Fprintf(w, "%s\n", op)
	}

	return offset + length
}

func isConstantFamily(op opcode.Opcode) bool {
	switch op {
	case opcode.Constant, opcode.ConstantW2, opcode.ConstantW4,
		opcode.DefineGlobal, opcode.DefineGlobalW2, opcode.DefineGlobalW4,
		opcode.GetGlobal, opcode.GetGlobalW2, opcode.GetGlobalW4,
		opcode.SetGlobal, opcode.SetGlobalW2, opcode.SetGlobalW4:
		return true
	}
	return false
}

func isJumpFamily(op opcode.Opcode) bool {
	switch op {
	case opcode.Jump, opcode.JumpBack, opcode.JumpIfFalse, opcode.JumpIfFalsePop:
		return true
	}
	return false
}

// jumpTarget mirrors the VM's own pc arithmetic: forward jumps add the
// offset to the address right after the operand, JumpBack subtracts it.
func jumpTarget(op opcode.Opcode, offset, length, jumpOffset int) int {
	next := offset + length
	if op == opcode.JumpBack {
		return next - jumpOffset
	}
	return next + jumpOffset
}

func readOperand(code []byte, pos, width int) int {
	v := 0
	for i := 0; i < width; i++ {
		v |= int(code[pos+i]) << (8 * i)
	}
	return v
}
