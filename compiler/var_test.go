package compiler

import (
	"strings"
	"testing"

	"titan/opcode"
)

func TestVariableBindingBehavior(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		hasError bool
	}{
		{"global declared then used", "var a = 1; print a;", false},
		{"global redeclaration is allowed (overwrite)", "var a = 1; var a = 2; print a;", false},
		{"assignment to existing global", "var a = 1; a = 2;", false},
		{"local redeclared in same scope is an error", "{ var a = 1; var a = 2; }", true},
		{"local self-reference in initializer is an error", "{ var a = a; }", true},
		{"inner local shadows outer without collision", "var a = 1; { var a = 2; print a; } print a;", false},
		{"assignment target must be a variable", "1 = 2;", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.src)
			if tt.hasError && err == nil {
				t.Errorf("expected a compile error, got nil")
			}
			if !tt.hasError && err != nil {
				t.Errorf("unexpected compile error: %v", err)
			}
		})
	}
}

func TestManyGlobalsForceWideEncoding(t *testing.T) {
	var src string
	for i := 0; i < 300; i++ {
		src += "var g" + itoa(i) + " = " + itoa(i) + ";"
	}
	prog, err := Compile(src)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if len(prog.Constants) < 600 {
		t.Errorf("expected at least 600 constants (name + value per global), got %d", len(prog.Constants))
	}
}

// TestManyGlobalsForceW4Encoding seeds the boundary the source's own
// test suite checks by declaring 70000 globals: well past the 65536
// threshold where DefineGlobal/GetGlobal must fall back to their
// 32-bit _W4 forms.
func TestManyGlobalsForceW4Encoding(t *testing.T) {
	const count = 70000
	var src strings.Builder
	for i := 0; i < count; i++ {
		src.WriteString("var g")
		src.WriteString(itoa(i))
		src.WriteString(" = ")
		src.WriteString(itoa(i))
		src.WriteString(";")
	}
	src.WriteString("print g")
	src.WriteString(itoa(count - 1))
	src.WriteString(";")

	prog, err := Compile(src.String())
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	sawW4 := false
	for ip := 0; ip < len(prog.Code); {
		op := opcode.Opcode(prog.Code[ip])
		if op == opcode.DefineGlobalW4 || op == opcode.GetGlobalW4 {
			sawW4 = true
		}
		ip += opcode.Length(op)
	}
	if !sawW4 {
		t.Errorf("expected at least one _W4 global opcode past the 65536-constant threshold")
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}
