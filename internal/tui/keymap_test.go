package tui

import "testing"

func TestIsGlobalKey(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"q", true},
		{"ctrl+c", true},
		{"f", true},
		{"j", false},
		{"pgup", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsGlobalKey(tt.key); got != tt.want {
			t.Errorf("IsGlobalKey(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}
