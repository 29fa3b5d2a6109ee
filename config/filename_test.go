package config

import "testing"

func TestCleanFileName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "Widget 1.0", want: "Widget 1.0"},
		{in: "a/b", want: "ab"},
		{in: "line\nbreak\ttab", want: "linebreaktab"},
		{in: ".hidden", want: "hidden"},
		{in: "trailing. . ", want: "trailing"},
		{in: "Größe", want: "Größe"},
		{in: "", want: badFileName},
		{in: "...", want: badFileName},
		{in: "/", want: badFileName},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := CleanFileName(tt.in); got != tt.want {
				t.Errorf("CleanFileName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
