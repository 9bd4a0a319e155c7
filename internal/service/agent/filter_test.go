package agent

import "testing"

func TestFactFilter_Accept(t *testing.T) {
	f := DefaultFactFilter(0)

	tests := []struct {
		text string
		want bool
	}{
		{"My name is Dana", true},
		{"I live in Berlin", true},
		{"<fact>", false},
		{"I like <fact> a lot", false},
		{"Save this command for me", false},
		{"COMMAND received ok", false},
		{"short", false},
		{"123456789", false},
		{"1234567890", true},
		{"   padded   ", false},
		{"", false},
		{"Мою сестру зовут Аня", true},
	}
	for _, tt := range tests {
		if got := f.Accept(tt.text); got != tt.want {
			t.Errorf("Accept(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestFactFilter_CustomMinLength(t *testing.T) {
	f := DefaultFactFilter(3)
	if !f.Accept("abc") {
		t.Error("expected 3-rune fact to pass with MinLength 3")
	}
	if f.Accept("ab") {
		t.Error("expected 2-rune fact to be rejected with MinLength 3")
	}
}
