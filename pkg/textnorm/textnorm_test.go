package textnorm

import "testing"

func TestDecodeEscapes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"no escapes", "plain text", "plain text"},
		{"single emoji", `sunny \u{1F600} day`, "sunny 😀 day"},
		{"adjacent escapes", `\u{1F3D6}\u{1F30A}`, "🏖🌊"},
		{"bmp codepoint", `caf\u{e9}`, "café"},
		{"empty braces", `\u{}`, `\u{}`},
		{"not hex", `\u{zz}`, `\u{zz}`},
		{"unterminated", `tail \u{1F600`, `tail \u{1F600`},
		{"too many digits", `\u{000000001}`, `\u{000000001}`},
		{"surrogate is invalid", `\u{D800}`, `\u{D800}`},
		{"malformed then valid", `\u{x}\u{41}`, `\u{x}A`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DecodeEscapes(tt.input); got != tt.expected {
				t.Errorf("DecodeEscapes(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestContentNormalizesToNFC(t *testing.T) {
	decomposed := "cafe\u0301"
	if got := Content(decomposed); got != "café" {
		t.Errorf("expected composed form, got %q", got)
	}
	if got := Content(`cafe\u{301}`); got != "café" {
		t.Errorf("expected decoded combining accent to compose, got %q", got)
	}
}
