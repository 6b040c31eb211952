package validators

import (
	"net"
	"strings"
)

// IsEmailDomainValid checks that the address's domain resolves to a mail
// host (MX first, A/AAAA as a fallback). Syntax alone is not enough to
// keep junk out of reminder delivery.
func IsEmailDomainValid(email string) bool {
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}

	domain := email[at+1:]
	if strings.ContainsAny(domain, " \t") {
		return false
	}

	if mx, err := net.LookupMX(domain); err == nil && len(mx) > 0 {
		return true
	}

	if ips, err := net.LookupIP(domain); err == nil && len(ips) > 0 {
		return true
	}

	return false
}
