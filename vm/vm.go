// Package vm implements Titan's stack-based interpreter: a dispatch
// loop that fetches one opcode at a time from a compiled Program,
// decodes its operand per opcode.Length, and mutates a value stack and
// a global-variable table.
package vm

import (
	"fmt"
	"io"
	"os"

	"titan/opcode"
	"titan/program"
	"titan/value"
)

// VM is the runtime environment bytecode executes in. A single VM
// instance may run more than one Program in sequence (the REPL keeps
// one VM alive across lines so globals persist); each Run resets the
// value stack and program counter but keeps the existing globals table.
type VM struct {
	stack   Stack
	globals *globalTable
	prog    *program.Program
	pc      int

	Stdout io.Writer
}

// New returns a VM with an empty value stack and an empty global table.
func New() *VM {
	return &VM{
		stack:   newStack(),
		globals: newGlobalTable(),
		Stdout:  os.Stdout,
	}
}

// Run executes prog to completion. It returns nil on a clean Return,
// or a RuntimeError if execution hit a type mismatch, an undefined
// global, or another fatal runtime condition. Non-RuntimeError errors
// indicate an internal decoding problem and should not occur against a
// Program produced by this module's compiler.
func (vm *VM) Run(prog *program.Program) error {
	vm.prog = prog
	vm.pc = 0
	vm.stack.Clear()

	for {
		instrPC := vm.pc
		op := opcode.Opcode(prog.Code[vm.pc])
		vm.pc++

		switch op {
		case opcode.Return:
			return nil

		case opcode.True:
			vm.stack.Push(value.FromBool(true))
		case opcode.False:
			vm.stack.Push(value.FromBool(false))
		case opcode.Null:
			vm.stack.Push(value.FromNil())

		case opcode.Constant, opcode.ConstantW2, opcode.ConstantW4:
			idx := vm.readOperand(op)
			vm.stack.Push(prog.Constants[idx])

		case opcode.Add:
			if err := vm.add(instrPC); err != nil {
				return err
			}
		case opcode.Sub:
			if err := vm.sub(instrPC); err != nil {
				return err
			}
		case opcode.Mul:
			if err := vm.numericBinary(instrPC, func(a, b float64) float64 { return a * b }); err != nil {
				return err
			}
		case opcode.Div:
			if err := vm.numericBinary(instrPC, func(a, b float64) float64 { return a / b }); err != nil {
				return err
			}

		case opcode.Greater:
			if err := vm.comparison(instrPC, func(a, b float64) bool { return a > b }); err != nil {
				return err
			}
		case opcode.GreaterEqual:
			if err := vm.comparison(instrPC, func(a, b float64) bool { return a >= b }); err != nil {
				return err
			}
		case opcode.Less:
			if err := vm.comparison(instrPC, func(a, b float64) bool { return a < b }); err != nil {
				return err
			}
		case opcode.LessEqual:
			if err := vm.comparison(instrPC, func(a, b float64) bool { return a <= b }); err != nil {
				return err
			}

		case opcode.Equal:
			rhs, lhs := vm.stack.Pop(), vm.stack.Pop()
			vm.stack.Push(value.FromBool(lhs.Equal(rhs)))
		case opcode.NotEqual:
			rhs, lhs := vm.stack.Pop(), vm.stack.Pop()
			vm.stack.Push(value.FromBool(!lhs.Equal(rhs)))

		case opcode.Negate:
			top := vm.stack.Pop()
			if !top.IsNumber() {
				return vm.runtimeError(instrPC, "operand must be a number")
			}
			vm.stack.Push(value.FromNumber(-top.AsNumber()))

		case opcode.Not:
			top := vm.stack.Pop()
			vm.stack.Push(value.FromBool(top.IsFalsey()))

		case opcode.Print:
			top := vm.stack.Pop()
			fmt.Fprintln(vm.Stdout, top.String())

		case opcode.Pop:
			vm.stack.Pop()
		case opcode.PopN:
			n := vm.readOperand(op)
			for i := 0; i < n; i++ {
				vm.stack.Pop()
			}

		case opcode.DefineGlobal, opcode.DefineGlobalW2, opcode.DefineGlobalW4:
			idx := vm.readOperand(op)
			name := prog.Constants[idx].AsString()
			vm.globals.define(name, vm.stack.Pop())

		case opcode.GetGlobal, opcode.GetGlobalW2, opcode.GetGlobalW4:
			idx := vm.readOperand(op)
			name := prog.Constants[idx].AsString()
			v, ok := vm.globals.get(name)
			if !ok {
				return vm.runtimeError(instrPC, "undefined variable '%s'", name)
			}
			vm.stack.Push(v)

		case opcode.SetGlobal, opcode.SetGlobalW2, opcode.SetGlobalW4:
			idx := vm.readOperand(op)
			name := prog.Constants[idx].AsString()
			if !vm.globals.set(name, vm.stack.Peek()) {
				return vm.runtimeError(instrPC, "undefined variable '%s'", name)
			}

		case opcode.GetLocal, opcode.GetLocalW2, opcode.GetLocalW4:
			slot := vm.readOperand(op)
			vm.stack.Push(vm.stack.At(slot))

		case opcode.SetLocal, opcode.SetLocalW2, opcode.SetLocalW4:
			slot := vm.readOperand(op)
			vm.stack.SetAt(slot, vm.stack.Peek())

		case opcode.Jump:
			offset := vm.readOperand(op)
			vm.pc += offset
		case opcode.JumpBack:
			offset := vm.readOperand(op)
			vm.pc -= offset
		case opcode.JumpIfFalse:
			offset := vm.readOperand(op)
			if vm.stack.Peek().IsFalsey() {
				vm.pc += offset
			}
		case opcode.JumpIfFalsePop:
			offset := vm.readOperand(op)
			v := vm.stack.Pop()
			if v.IsFalsey() {
				vm.pc += offset
			}

		default:
			return vm.runtimeError(instrPC, "unknown opcode %s", op)
		}
	}
}

// readOperand decodes the little-endian operand belonging to op,
// starting at the current pc, and advances pc past it.
func (vm *VM) readOperand(op opcode.Opcode) int {
	width := opcode.OperandWidth(op)
	v := 0
	for i := 0; i < width; i++ {
		v |= int(vm.prog.Code[vm.pc+i]) << (8 * i)
	}
	vm.pc += width
	return v
}

func (vm *VM) add(instrPC int) error {
	rhs, lhs := vm.stack.Pop(), vm.stack.Pop()
	switch {
	case lhs.IsNumber() && rhs.IsNumber():
		vm.stack.Push(value.FromNumber(lhs.AsNumber() + rhs.AsNumber()))
	case lhs.IsString() && rhs.IsString():
		vm.stack.Push(value.FromString(lhs.AsString() + rhs.AsString()))
	case lhs.IsMatrix() && rhs.IsMatrix():
		sum, err := lhs.AsMatrix().Add(rhs.AsMatrix())
		if err != nil {
			return vm.runtimeError(instrPC, "matrix operands must have the same shape")
		}
		vm.stack.Push(value.FromMatrix(sum))
	default:
		return vm.runtimeError(instrPC, "operands must be two numbers, two strings, or two matrices")
	}
	return nil
}

func (vm *VM) sub(instrPC int) error {
	rhs, lhs := vm.stack.Pop(), vm.stack.Pop()
	switch {
	case lhs.IsNumber() && rhs.IsNumber():
		vm.stack.Push(value.FromNumber(lhs.AsNumber() - rhs.AsNumber()))
	case lhs.IsMatrix() && rhs.IsMatrix():
		diff, err := lhs.AsMatrix().Sub(rhs.AsMatrix())
		if err != nil {
			return vm.runtimeError(instrPC, "matrix operands must have the same shape")
		}
		vm.stack.Push(value.FromMatrix(diff))
	default:
		return vm.runtimeError(instrPC, "operands must be two numbers or two matrices")
	}
	return nil
}

func (vm *VM) numericBinary(instrPC int, f func(a, b float64) float64) error {
	rhs, lhs := vm.stack.Pop(), vm.stack.Pop()
	if !lhs.IsNumber() || !rhs.IsNumber() {
		return vm.runtimeError(instrPC, "operands must be numbers")
	}
	vm.stack.Push(value.FromNumber(f(lhs.AsNumber(), rhs.AsNumber())))
	return nil
}

func (vm *VM) comparison(instrPC int, f func(a, b float64) bool) error {
	rhs, lhs := vm.stack.Pop(), vm.stack.Pop()
	if !lhs.IsNumber() || !rhs.IsNumber() {
		return vm.runtimeError(instrPC, "operands must be numbers")
	}
	vm.stack.Push(value.FromBool(f(lhs.AsNumber(), rhs.AsNumber())))
	return nil
}

// runtimeError reports a fatal runtime condition: print is left to the
// caller (cmd/run.go, cmd/repl.go write RuntimeError.Error() to
// stderr), but the stack is cleared here since a runtime error always
// halts execution.
func (vm *VM) runtimeError(instrPC int, format string, args ...any) error {
	line := int32(0)
	if instrPC < len(vm.prog.Lines) {
		line = vm.prog.Lines[instrPC]
	}
	vm.stack.Clear()
	return RuntimeError{Message: fmt.Sprintf(format, args...), Line: line}
}
