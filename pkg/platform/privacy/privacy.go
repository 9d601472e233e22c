// Package privacy reduces personal identifiers to forms safe for logs.
package privacy

import (
	"net/netip"
	"strings"
)

// AnonymizeIP zeroes the host part of an address: the last octet of IPv4,
// everything past the /48 prefix of IPv6. Unparseable input is replaced
// wholesale.
func AnonymizeIP(ip string) string {
	addr, err := netip.ParseAddr(strings.TrimSpace(ip))
	if err != nil {
		if ip == "" {
			return ""
		}
		return "invalid"
	}
	bits := 24
	if addr.Is6() && !addr.Is4In6() {
		bits = 48
	} else {
		addr = addr.Unmap()
	}
	prefix, err := addr.Prefix(bits)
	if err != nil {
		return "invalid"
	}
	return prefix.Addr().String()
}

// EmailDomain returns the lowercased domain of an address, or "" when there
// is none. Local parts never reach the logs.
func EmailDomain(email string) string {
	at := strings.LastIndexByte(email, '@')
	if at < 0 || at == len(email)-1 {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(email[at+1:]))
}
