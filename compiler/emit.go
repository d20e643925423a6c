package compiler

import (
	"titan/opcode"
	"titan/value"
)

// emitOp appends a single 0-operand instruction.
func (c *Compiler) emitOp(op opcode.Opcode, line int32) {
	c.prog.AddOp(byte(op), line)
}

// emitOperandBytes writes v as a width-byte little-endian operand,
// immediately following whatever opcode byte was just emitted. Emit and
// read sites must agree on width and byte order — see opcode.Length.
func (c *Compiler) emitOperandBytes(v int, width int, line int32) {
	for i := 0; i < width; i++ {
		c.prog.AddOp(byte(v>>(8*i)), line)
	}
}

// emitIndexed picks the narrowest opcode in family that can carry index
// a and emits it followed by its little-endian operand. Indices that
// overflow even the 32-bit wide form are a compile error.
func (c *Compiler) emitIndexed(family opcode.Family, a int, line int32) {
	op, width, ok := family.Select(a)
	if !ok {
		c.error("too many constants or variables for this program")
		return
	}
	c.emitOp(op, line)
	c.emitOperandBytes(a, width, line)
}

func (c *Compiler) emitConstant(v value.Value, line int32) {
	idx := c.prog.AddConstant(v)
	c.emitIndexed(opcode.ConstantFamily, idx, line)
}

// jumpSite records where a forward jump's operand byte(s) were written,
// so patchJump can come back and fill in the real offset once the
// target position is known.
type jumpSite struct {
	offsetPos int
	width     int
}

// emitJump emits a jump opcode followed by a placeholder operand and
// returns the site to patch later. All four jump opcodes share a fixed
// 1-byte operand — see opcode.Length.
func (c *Compiler) emitJump(op opcode.Opcode) jumpSite {
	line := c.line()
	c.emitOp(op, line)
	width := opcode.OperandWidth(op)
	site := jumpSite{offsetPos: c.prog.Len(), width: width}
	c.emitOperandBytes(0, width, line)
	return site
}

// patchJump computes the forward offset from the byte immediately after
// the operand to the current code position, and writes it in place.
// Overflowing the operand's width is a compile error.
func (c *Compiler) patchJump(site jumpSite) {
	offset := c.prog.Len() - site.offsetPos - site.width
	if !fitsWidth(offset, site.width) {
		c.error("too much code to jump over")
		return
	}
	c.patchOperandBytes(site.offsetPos, offset, site.width)
}

// emitLoop emits a JumpBack targeting loopStart. Unlike emitJump, the
// target is already known, so the offset is computed and written in one
// step rather than patched later.
func (c *Compiler) emitLoop(loopStart int) {
	line := c.line()
	c.emitOp(opcode.JumpBack, line)
	width := opcode.OperandWidth(opcode.JumpBack)
	site := c.prog.Len()
	offset := site + width - loopStart
	if !fitsWidth(offset, width) {
		c.error("loop body too large")
		offset = 0
	}
	c.emitOperandBytes(offset, width, line)
}

func (c *Compiler) patchOperandBytes(pos int, v int, width int) {
	for i := 0; i < width; i++ {
		c.prog.Code[pos+i] = byte(v >> (8 * i))
	}
}

func fitsWidth(v int, width int) bool {
	if v < 0 {
		return false
	}
	switch width {
	case 1:
		return v <= 0xFF
	case 2:
		return v <= 0xFFFF
	case 4:
		return v <= 0xFFFFFFFF
	default:
		return false
	}
}
