package token

import (
	"testing"
)

func TestCreateToken(t *testing.T) {
	tests := []struct {
		name      string
		tokenType TokenType
		lexeme    string
		want      Token
	}{
		{
			name:      "Create ASSIGN token",
			tokenType: ASSIGN,
			lexeme:    "=",
			want:      Token{TokenType: ASSIGN, Lexeme: "="},
		},
		{
			name:      "Create LCUR token",
			tokenType: LCUR,
			lexeme:    "{",
			want:      Token{TokenType: LCUR, Lexeme: "{"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CreateToken(tt.tokenType, tt.lexeme, 0, 0)
			if got != tt.want {
				t.Errorf("CreateToken() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCreateLiteralToken(t *testing.T) {
	got := CreateLiteralToken(NUMBER, 42.0, "42", 3, 1)
	if got.Literal != 42.0 {
		t.Errorf("Literal = %v, want 42.0", got.Literal)
	}
	if got.Lexeme != "42" {
		t.Errorf("Lexeme = %q, want %q", got.Lexeme, "42")
	}
	if got.Line != 3 || got.Column != 1 {
		t.Errorf("position = (%d,%d), want (3,1)", got.Line, got.Column)
	}
}

func TestKeyWordsIncludesNilAndNull(t *testing.T) {
	if KeyWords["nil"] != NULL || KeyWords["null"] != NULL {
		t.Errorf("expected both 'nil' and 'null' to map to NULL")
	}
}
