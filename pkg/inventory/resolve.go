package inventory

import (
	"net"

	"github.com/fleetwatch/fleetwatch/pkg/util"
)

// ResolveAddress returns address unchanged if it is already a dotted-quad
// IPv4 literal; otherwise it resolves the name through the system resolver
// and returns the first IPv4 result. On resolution failure it logs a
// warning and returns the original string — the caller keeps the device in
// its output, permanently offline, rather than dropping it.
func ResolveAddress(address string) string {
	if ip := net.ParseIP(address); ip != nil && ip.To4() != nil {
		return address
	}

	addrs, err := net.LookupHost(address)
	if err != nil || len(addrs) == 0 {
		util.WithField("address", address).Warnf("resolving device address: %v", err)
		return address
	}
	for _, a := range addrs {
		if ip := net.ParseIP(a); ip != nil && ip.To4() != nil {
			return a
		}
	}
	return addrs[0]
}
