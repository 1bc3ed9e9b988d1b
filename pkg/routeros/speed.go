package routeros

import "strings"

// NormalizeSpeed maps a free-form RouterOS rate string to a canonical form.
// Classification is case-insensitive, whitespace-trimmed, and applies
// ordered substring tests; order matters and is fixed, since e.g. "2.5g"
// also contains "5g" and must be checked first.
func NormalizeSpeed(speed string) string {
	s := strings.ToLower(strings.TrimSpace(speed))
	if s == "" {
		return ""
	}

	switch {
	case strings.Contains(s, "10g"):
		return "10Gbps"
	case strings.Contains(s, "2.5g"):
		return "2.5Gbps"
	case strings.Contains(s, "5g"):
		return "5Gbps"
	case strings.Contains(s, "1g"), strings.Contains(s, "gbps"), strings.Contains(s, "gbit"):
		return "1Gbps"
	case strings.Contains(s, "100m"), strings.Contains(s, "100-"):
		return "100Mbps"
	case strings.Contains(s, "10m"), strings.Contains(s, "10-"):
		return "10Mbps"
	default:
		return s
	}
}
