package compiler

import (
	"testing"

	"titan/opcode"
)

func TestCompileArithmeticPrecedence(t *testing.T) {
	prog, err := Compile("1 + 2 * 3;")
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	want := []opcode.Opcode{
		opcode.Constant, // 1
		opcode.Constant, // 2
		opcode.Constant, // 3
		opcode.Mul,
		opcode.Add,
		opcode.Pop,
		opcode.Return,
	}
	assertOpcodeSequence(t, prog.Code, want)
}

func TestCompileGroupingOverridesPrecedence(t *testing.T) {
	prog, err := Compile("(1 + 2) * 3;")
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	want := []opcode.Opcode{
		opcode.Constant,
		opcode.Constant,
		opcode.Add,
		opcode.Constant,
		opcode.Mul,
		opcode.Pop,
		opcode.Return,
	}
	assertOpcodeSequence(t, prog.Code, want)
}

func TestCompileGlobalVarDeclarationAndPrint(t *testing.T) {
	prog, err := Compile("var x = 10; print x;")
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	want := []opcode.Opcode{
		opcode.Constant,     // 10
		opcode.DefineGlobal, // x
		opcode.GetGlobal,    // x
		opcode.Print,
		opcode.Return,
	}
	assertOpcodeSequence(t, prog.Code, want)
}

func TestCompileLocalsUseGetSetLocal(t *testing.T) {
	prog, err := Compile("{ var x = 1; x = 2; }")
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	want := []opcode.Opcode{
		opcode.Constant, // 1 (initializer)
		opcode.Constant, // 2
		opcode.SetLocal,
		opcode.Pop, // expression statement pop
		opcode.Pop, // end of scope pop for x
		opcode.Return,
	}
	assertOpcodeSequence(t, prog.Code, want)
}

func TestCompileIfElseEmitsJumps(t *testing.T) {
	prog, err := Compile(`if (true) print 1; else print 2;`)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	want := []opcode.Opcode{
		opcode.True,
		opcode.JumpIfFalse,
		opcode.Pop,
		opcode.Constant,
		opcode.Print,
		opcode.Jump,
		opcode.Pop,
		opcode.Constant,
		opcode.Print,
		opcode.Return,
	}
	assertOpcodeSequence(t, prog.Code, want)
}

func TestCompileWhileEmitsJumpBack(t *testing.T) {
	prog, err := Compile(`while (true) print 1;`)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	want := []opcode.Opcode{
		opcode.True,
		opcode.JumpIfFalse,
		opcode.Pop,
		opcode.Constant,
		opcode.Print,
		opcode.JumpBack,
		opcode.Pop,
		opcode.Return,
	}
	assertOpcodeSequence(t, prog.Code, want)
}

func TestCompileErrorOnMissingSemicolon(t *testing.T) {
	_, err := Compile("print 1")
	if err == nil {
		t.Fatalf("expected a compile error for missing ';'")
	}
}

func TestCompileErrorOnSelfReferentialLocalInitializer(t *testing.T) {
	_, err := Compile("{ var a = a; }")
	if err == nil {
		t.Fatalf("expected a compile error for self-referential initializer")
	}
}

func TestCompileShadowingLocalsDoNotCollide(t *testing.T) {
	_, err := Compile("var a = 10; { var a = 1; print a; } print a;")
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
}

func TestCompileRedeclareLocalSameScopeIsError(t *testing.T) {
	_, err := Compile("{ var a = 1; var a = 2; }")
	if err == nil {
		t.Fatalf("expected a compile error for redeclared local")
	}
}

// assertOpcodeSequence walks code decoding only opcode bytes (skipping
// operand bytes per opcode.Length) and compares against want.
func assertOpcodeSequence(t *testing.T, code []byte, want []opcode.Opcode) {
	t.Helper()
	var got []opcode.Opcode
	for ip := 0; ip < len(code); {
		op := opcode.Opcode(code[ip])
		got = append(got, op)
		ip += opcode.Length(op)
	}
	if len(got) != len(want) {
		t.Fatalf("opcode sequence = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("opcode[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}
