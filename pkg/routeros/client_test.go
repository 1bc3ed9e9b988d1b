package routeros

import "testing"

func TestParseCounter(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"", 0},
		{"0", 0},
		{"42", 42},
		{"not-a-number", 0},
	}
	for _, tt := range tests {
		if got := parseCounter(tt.in); got != tt.want {
			t.Errorf("parseCounter(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestFormatAddress(t *testing.T) {
	if got := FormatAddress("10.0.0.1", 0); got != "10.0.0.1:8728" {
		t.Errorf("FormatAddress default port = %q", got)
	}
	if got := FormatAddress("10.0.0.1", 8729); got != "10.0.0.1:8729" {
		t.Errorf("FormatAddress explicit port = %q", got)
	}
}
