package model

import "testing"

func TestTextLength(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"password", 8},
		{"ééééééé", 7},
		{"😀", 2},
		{"😀😀😀😀", 8},
		{"a😀b", 4},
		{"\xff", 1},
	}

	for _, tt := range tests {
		if got := TextLength(tt.in); got != tt.want {
			t.Errorf("TextLength(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
