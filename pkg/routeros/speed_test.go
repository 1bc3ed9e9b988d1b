package routeros

import "testing"

func TestNormalizeSpeed(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"10Gbps", "10Gbps"},
		{"2.5Gbps", "2.5Gbps"},
		{"5Gbps", "5Gbps"},
		{"1Gbps", "1Gbps"},
		{"1000mbps", "1Gbps"},
		{"gbit", "1Gbps"},
		{"100Mbps", "100Mbps"},
		{"100-full", "100Mbps"},
		{"10Mbps", "10Mbps"},
		{"10-half", "10Mbps"},
		{"  1GBPS  ", "1Gbps"},
		{"weird-rate", "weird-rate"},
	}

	for _, tt := range tests {
		if got := NormalizeSpeed(tt.in); got != tt.want {
			t.Errorf("NormalizeSpeed(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeSpeedIdempotent(t *testing.T) {
	inputs := []string{"10Gbps", "2.5Gbps", "5Gbps", "1Gbps", "100Mbps", "10Mbps", "weird", ""}
	for _, in := range inputs {
		once := NormalizeSpeed(in)
		twice := NormalizeSpeed(once)
		if once != twice {
			t.Errorf("NormalizeSpeed not idempotent for %q: %q vs %q", in, once, twice)
		}
	}
}

func TestNormalizeSpeedNeverAliases(t *testing.T) {
	if NormalizeSpeed("2.5Gbps") == NormalizeSpeed("5Gbps") {
		t.Error("2.5Gbps and 5Gbps must never normalize to the same value")
	}
}
