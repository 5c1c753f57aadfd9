package dns

import (
	"fmt"
	"net/netip"
	"strconv"
	"strings"
)

// ParseIPv6 parses an IPv6 address in expanded ("2001:0db8:0000:...") or
// compressed ("2001:db8::1") form. Zones and IPv4 addresses are rejected.
func ParseIPv6(text string) (netip.Addr, error) {
	addr, err := netip.ParseAddr(strings.TrimSpace(text))
	if err != nil {
		return netip.Addr{}, fmt.Errorf("%w: invalid IPv6 address %q", ErrValue, text)
	}
	if !addr.Is6() || addr.Zone() != "" {
		return netip.Addr{}, fmt.Errorf("%w: not an IPv6 address: %q", ErrValue, text)
	}
	return addr, nil
}

// FormatIPv6 renders 16 address octets per RFC 5952: lowercase hex groups
// without leading zeros, and the longest run of two or more zero groups
// collapsed to "::" (the first run wins a tie). The tail is always hex, even
// for IPv4-mapped addresses, so AAAA data renders uniformly.
func FormatIPv6(b [16]byte) string {
	var groups [8]uint16
	for i := range groups {
		groups[i] = uint16(b[2*i])<<8 | uint16(b[2*i+1])
	}

	bestStart, bestLen := -1, 0
	for i := 0; i < len(groups); {
		if groups[i] != 0 {
			i++
			continue
		}
		j := i
		for j < len(groups) && groups[j] == 0 {
			j++
		}
		if j-i > bestLen {
			bestStart, bestLen = i, j-i
		}
		i = j
	}
	if bestLen < 2 {
		bestStart = -1
	}

	var sb strings.Builder
	for i := 0; i < len(groups); i++ {
		if i == bestStart {
			sb.WriteString("::")
			i += bestLen - 1
			continue
		}
		if i > 0 && i != bestStart+bestLen {
			sb.WriteByte(':')
		}
		sb.WriteString(strconv.FormatUint(uint64(groups[i]), 16))
	}
	return sb.String()
}

// CompressIPv6 rewrites any valid IPv6 text into its canonical compressed
// form. The numeric value is preserved; only the notation changes.
func CompressIPv6(text string) (string, error) {
	addr, err := ParseIPv6(text)
	if err != nil {
		return "", err
	}
	return FormatIPv6(addr.As16()), nil
}

// ExpandIPv6 rewrites any valid IPv6 text into eight four-digit groups.
func ExpandIPv6(text string) (string, error) {
	addr, err := ParseIPv6(text)
	if err != nil {
		return "", err
	}
	b := addr.As16()
	parts := make([]string, 8)
	for i := range parts {
		parts[i] = fmt.Sprintf("%02x%02x", b[2*i], b[2*i+1])
	}
	return strings.Join(parts, ":"), nil
}
