package internal

import "testing"

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"already normal", "Quest Complete", "Quest Complete"},
		{"leading and trailing", "  Quest Complete\t", "Quest Complete"},
		{"inner runs", "Quest   \n Complete", "Quest Complete"},
		{"case preserved", "QUEST complete", "QUEST complete"},
		{"only whitespace", " \t\r\n ", ""},
		{"empty", "", ""},
		{"unicode spaces", "Hello 　World", "Hello World"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeText(tt.input); got != tt.want {
				t.Errorf("NormalizeText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestTruncateText(t *testing.T) {
	if got := TruncateText("こんにちは世界", 5); got != "こんにちは…" {
		t.Errorf("TruncateText() = %q", got)
	}
	if got := TruncateText("short", 10); got != "short" {
		t.Errorf("TruncateText() = %q", got)
	}
	if got := TruncateText("abc", 0); got != "" {
		t.Errorf("TruncateText() = %q, want empty", got)
	}
}

func TestNewRunID(t *testing.T) {
	a := NewRunID()
	b := NewRunID()

	if len(a) != 8 {
		t.Errorf("Expected 8 character run ID, got %q", a)
	}
	if a == b {
		t.Errorf("Expected distinct run IDs, got %q twice", a)
	}
}
