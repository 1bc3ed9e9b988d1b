package inventory

import "testing"

func TestResolveAddress_IPv4Passthrough(t *testing.T) {
	got := ResolveAddress("10.0.0.5")
	if got != "10.0.0.5" {
		t.Errorf("ResolveAddress(ipv4 literal) = %q, want unchanged", got)
	}
}

func TestResolveAddress_UnresolvableHostname(t *testing.T) {
	name := "this-host-does-not-exist.invalid"
	got := ResolveAddress(name)
	if got != name {
		t.Errorf("ResolveAddress(unresolvable) = %q, want original %q", got, name)
	}
}
