package util

import "testing"

func TestTruncateString(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{"short string unchanged", "hello", 10, "hello"},
		{"exact length unchanged", "hello", 5, "hello"},
		{"truncated with ellipsis", "hello world", 8, "hello..."},
		{"tiny budget", "hello", 3, "..."},
		{"empty string", "", 10, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TruncateString(tt.input, tt.maxLen); got != tt.want {
				t.Errorf("TruncateString(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestTruncateANSI(t *testing.T) {
	styled := "\x1b[31mred text here\x1b[0m"

	if got := TruncateANSI(styled, 50); got != styled {
		t.Errorf("string within width should be unchanged, got %q", got)
	}
	if got := TruncateANSI(styled, 3); got != "..." {
		t.Errorf("tiny budget should yield ellipsis, got %q", got)
	}
}

func TestMaskToken(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  string
	}{
		{"long token keeps prefix", "sk-abcdef123456", "sk-a****"},
		{"short token fully masked", "abc", "***"},
		{"boundary token fully masked", "12345678", "***"},
		{"empty token", "", "***"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaskToken(tt.token); got != tt.want {
				t.Errorf("MaskToken(%q) = %q, want %q", tt.token, got, tt.want)
			}
		})
	}
}
