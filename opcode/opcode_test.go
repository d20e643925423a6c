package opcode

import "testing"

func TestLength(t *testing.T) {
	tests := []struct {
		name string
		op   Opcode
		want int
	}{
		{"Add", Add, 1},
		{"Not", Not, 1},
		{"Return", Return, 1},
		{"PopN", PopN, 2},
		{"Constant", Constant, 2},
		{"GetLocal", GetLocal, 2},
		{"Jump", Jump, 2},
		{"JumpBack", JumpBack, 2},
		{"JumpIfFalse", JumpIfFalse, 2},
		{"JumpIfFalsePop", JumpIfFalsePop, 2},
		{"ConstantW2", ConstantW2, 3},
		{"SetGlobalW2", SetGlobalW2, 3},
		{"ConstantW4", ConstantW4, 5},
		{"GetLocalW4", GetLocalW4, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Length(tt.op); got != tt.want {
				t.Errorf("Length(%s) = %d, want %d", tt.op, got, tt.want)
			}
		})
	}
}

func TestOperandWidth(t *testing.T) {
	if w := OperandWidth(Return); w != 0 {
		t.Errorf("OperandWidth(Return) = %d, want 0", w)
	}
	if w := OperandWidth(Constant); w != 1 {
		t.Errorf("OperandWidth(Constant) = %d, want 1", w)
	}
	if w := OperandWidth(ConstantW4); w != 4 {
		t.Errorf("OperandWidth(ConstantW4) = %d, want 4", w)
	}
}

func TestFamilySelect(t *testing.T) {
	tests := []struct {
		name      string
		a         int
		wantOp    Opcode
		wantWidth int
	}{
		{"fits short", 0x10, Constant, 1},
		{"short boundary", 0xFF, Constant, 1},
		{"needs wide2", 0x100, ConstantW2, 2},
		{"wide2 boundary", 0xFFFF, ConstantW2, 2},
		{"needs wide4", 0x10000, ConstantW4, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op, width, ok := ConstantFamily.Select(tt.a)
			if !ok {
				t.Fatalf("Select(%d) reported not ok", tt.a)
			}
			if op != tt.wantOp || width != tt.wantWidth {
				t.Errorf("Select(%d) = (%s, %d), want (%s, %d)", tt.a, op, width, tt.wantOp, tt.wantWidth)
			}
		})
	}
}

func TestFamilySelectOverflow(t *testing.T) {
	if _, _, ok := ConstantFamily.Select(-1); ok {
		t.Errorf("Select(-1) should not be ok")
	}
}

func TestStringUnknown(t *testing.T) {
	var bogus Opcode = 255
	if got := bogus.String(); got != "OP_UNKNOWN(255)" {
		t.Errorf("String() = %q, want OP_UNKNOWN(255)", got)
	}
}
