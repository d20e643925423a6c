// Package opcode is the single source of truth for Titan's instruction
// encoding: one Opcode byte followed by zero or more inline operand bytes.
// The compiler consults Length when back-patching jumps; the VM consults
// it (through OperandWidth) when reading each instruction's operand; the
// disassembler consults it when stepping through a Program. Keeping the
// length table in one place is what keeps those three call sites honest.
package opcode

import "fmt"

// Opcode is a single VM instruction.
type Opcode byte

const (
	// 0-operand instructions (total encoded length 1).
	Add Opcode = iota
	Sub
	Mul
	Div
	Equal
	NotEqual
	Greater
	GreaterEqual
	Less
	LessEqual
	Not
	Negate
	True
	False
	Null
	Pop
	Print
	Return

	// 1-byte operand instructions (total encoded length 2).
	PopN
	Constant
	DefineGlobal
	GetGlobal
	SetGlobal
	GetLocal
	SetLocal

	// jump family: 1-byte unsigned offset operand (total encoded length
	// 2), same as the other short forms. There are no _W2/_W4 jump
	// variants: a jump or loop body spanning more than 255 bytes is a
	// compile error (back-patch overflow), not a wider encoding.
	Jump
	JumpBack
	JumpIfFalse
	JumpIfFalsePop

	// wide forms: 16-bit operand (total encoded length 3).
	ConstantW2
	DefineGlobalW2
	GetGlobalW2
	SetGlobalW2
	GetLocalW2
	SetLocalW2

	// wide forms: 32-bit operand (total encoded length 5).
	ConstantW4
	DefineGlobalW4
	GetGlobalW4
	SetGlobalW4
	GetLocalW4
	SetLocalW4
)

var names = map[Opcode]string{
	Add: "OP_ADD", Sub: "OP_SUBTRACT", Mul: "OP_MULTIPLY", Div: "OP_DIVIDE",
	Equal: "OP_EQUAL", NotEqual: "OP_NOT_EQUAL", Greater: "OP_GREATER",
	GreaterEqual: "OP_GREATER_EQUAL", Less: "OP_LESS", LessEqual: "OP_LESS_EQUAL",
	Not: "OP_NOT", Negate: "OP_NEGATE", True: "OP_TRUE", False: "OP_FALSE",
	Null: "OP_NULL", Pop: "OP_POP", Print: "OP_PRINT", Return: "OP_RETURN",
	PopN: "OP_POP_N",
	Constant: "OP_CONSTANT", DefineGlobal: "OP_DEFINE_GLOBAL",
	GetGlobal: "OP_GET_GLOBAL", SetGlobal: "OP_SET_GLOBAL",
	GetLocal: "OP_GET_LOCAL", SetLocal: "OP_SET_LOCAL",
	Jump: "OP_JUMP", JumpBack: "OP_JUMP_BACK",
	JumpIfFalse: "OP_JUMP_IF_FALSE", JumpIfFalsePop: "OP_JUMP_IF_FALSE_POP",
	ConstantW2: "OP_CONSTANT_W2", DefineGlobalW2: "OP_DEFINE_GLOBAL_W2",
	GetGlobalW2: "OP_GET_GLOBAL_W2", SetGlobalW2: "OP_SET_GLOBAL_W2",
	GetLocalW2: "OP_GET_LOCAL_W2", SetLocalW2: "OP_SET_LOCAL_W2",
	ConstantW4: "OP_CONSTANT_W4", DefineGlobalW4: "OP_DEFINE_GLOBAL_W4",
	GetGlobalW4: "OP_GET_GLOBAL_W4", SetGlobalW4: "OP_SET_GLOBAL_W4",
	GetLocalW4: "OP_GET_LOCAL_W4", SetLocalW4: "OP_SET_LOCAL_W4",
}

func (op Opcode) String() string {
	if n, ok := names[op]; ok {
		return n
	}
	return fmt.Sprintf("OP_UNKNOWN(%d)", byte(op))
}

// zeroOperand is the set of instructions with no inline operand.
var zeroOperand = map[Opcode]bool{
	Add: true, Sub: true, Mul: true, Div: true, Equal: true, NotEqual: true,
	Greater: true, GreaterEqual: true, Less: true, LessEqual: true,
	Not: true, Negate: true, True: true, False: true, Null: true,
	Pop: true, Print: true, Return: true,
}

// oneByteOperand is the set of "short form" instructions: a single
// operand byte (an address, slot index, or count that happens to fit in
// 8 bits).
var oneByteOperand = map[Opcode]bool{
	PopN: true, Constant: true, DefineGlobal: true, GetGlobal: true,
	SetGlobal: true, GetLocal: true, SetLocal: true,
	Jump: true, JumpBack: true, JumpIfFalse: true, JumpIfFalsePop: true,
}

var wide2Operand = map[Opcode]bool{
	ConstantW2: true, DefineGlobalW2: true, GetGlobalW2: true,
	SetGlobalW2: true, GetLocalW2: true, SetLocalW2: true,
}

var wide4Operand = map[Opcode]bool{
	ConstantW4: true, DefineGlobalW4: true, GetGlobalW4: true,
	SetGlobalW4: true, GetLocalW4: true, SetLocalW4: true,
}

// Length returns the total encoded length of op, including its opcode
// byte, per the contract in the data model: the compiler and VM must
// agree on this value for every opcode position to stay in sync.
func Length(op Opcode) int {
	switch {
	case zeroOperand[op]:
		return 1
	case oneByteOperand[op]:
		return 2
	case wide2Operand[op]:
		return 3
	case wide4Operand[op]:
		return 5
	default:
		return 1
	}
}

// OperandWidth returns the number of inline operand bytes op carries
// (Length(op) - 1), or 0 for 0-operand instructions.
func OperandWidth(op Opcode) int {
	return Length(op) - 1
}

// Family groups the short/_W2/_W4 variants of the same logical
// instruction (e.g. Constant, ConstantW2, ConstantW4 all encode "push a
// constant"), so the compiler can pick the narrowest encoding that fits
// the operand without hand-writing a switch at every emit site.
type Family struct {
	Short, Wide2, Wide4 Opcode
}

var (
	ConstantFamily     = Family{Constant, ConstantW2, ConstantW4}
	DefineGlobalFamily = Family{DefineGlobal, DefineGlobalW2, DefineGlobalW4}
	GetGlobalFamily    = Family{GetGlobal, GetGlobalW2, GetGlobalW4}
	SetGlobalFamily    = Family{SetGlobal, SetGlobalW2, SetGlobalW4}
	GetLocalFamily     = Family{GetLocal, GetLocalW2, GetLocalW4}
	SetLocalFamily     = Family{SetLocal, SetLocalW2, SetLocalW4}
)

// Select picks the narrowest opcode in the family that can carry operand
// value a, per the spec's operand-width rule: a<=0xFF short, a<=0xFFFF
// _W2, a<=0xFFFFFFFF _W4, otherwise the caller must report a compile
// error (Select returns ok=false).
func (f Family) Select(a int) (op Opcode, width int, ok bool) {
	switch {
	case a < 0:
		return 0, 0, false
	case a <= 0xFF:
		return f.Short, 1, true
	case a <= 0xFFFF:
		return f.Wide2, 2, true
	case a <= 0xFFFFFFFF:
		return f.Wide4, 4, true
	default:
		return 0, 0, false
	}
}
