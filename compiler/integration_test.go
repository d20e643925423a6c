package compiler

import (
	"testing"

	"titan/opcode"
)

// TestFullPipeline exercises the complete scan -> parse -> emit pipeline
// for small real programs, checking the data-model invariants the spec
// calls out.
func TestFullPipeline(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"arithmetic", "print 1 + 2 * 3;"},
		{"string concat", `print "hi" + " " + "there";`},
		{"globals and scoping", "var x = 10; { var x = 1; print x; } print x;"},
		{"while loop", "var i = 0; while (i < 3) { print i; i = i + 1; }"},
		{"for loop", "for (var i = 0; i < 3; i = i + 1) print i;"},
		{"logical operators", "print true and false; print nil or 5;"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog, err := Compile(tt.src)
			if err != nil {
				t.Fatalf("Compile() error = %v", err)
			}
			assertInvariants(t, prog.Code, prog.Lines)
		})
	}
}

// assertInvariants checks invariants 1 and 2 from the data model: code
// and lines stay aligned, and every opcode position's declared length
// fits within the code buffer.
func assertInvariants(t *testing.T, code []byte, lines []int32) {
	t.Helper()
	if len(code) != len(lines) {
		t.Fatalf("code.len() = %d, lines.len() = %d, want equal", len(code), len(lines))
	}
	for ip := 0; ip < len(code); {
		op := opcode.Opcode(code[ip])
		length := opcode.Length(op)
		if ip+length > len(code) {
			t.Fatalf("opcode %s at %d has length %d, overruns code.len() = %d", op, ip, length, len(code))
		}
		ip += length
	}
}

func TestCompileErrorsDoNotHaltAtFirstMistake(t *testing.T) {
	// Two independent mistakes in one source: a missing ';' and an
	// invalid assignment target. The second statement starts with
	// `print`, so synchronize stops there and both should be reported.
	_, err := Compile("print 1\nprint 1 = 2;")
	if err == nil {
		t.Fatalf("expected a compile error")
	}
	ce, ok := err.(*CompileError)
	if !ok {
		t.Fatalf("err is %T, want *CompileError", err)
	}
	if ce.Count != 2 {
		t.Errorf("Count = %d, want 2", ce.Count)
	}
}
