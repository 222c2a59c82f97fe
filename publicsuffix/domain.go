// Package publicsuffix resolves registrable domains (eTLD+1) using the
// public suffix list from golang.org/x/net.
package publicsuffix

import (
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// Domain returns the registrable domain of a host, e.g. "shop.example.co.uk"
// becomes "example.co.uk". IP addresses and hosts without a registrable
// domain (such as "localhost") are returned unchanged, lowercased.
func Domain(host string) string {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.Trim(host, "[]")
	if host == "" || net.ParseIP(host) != nil {
		return host
	}
	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return domain
}

// URLDomain returns the registrable domain of rawURL's host.
// Returns an empty string if rawURL cannot be parsed.
func URLDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return Domain(u.Host)
}

// SameSite reports whether a and b share a registrable domain.
func SameSite(a, b string) bool {
	da := URLDomain(a)
	return da != "" && da == URLDomain(b)
}
