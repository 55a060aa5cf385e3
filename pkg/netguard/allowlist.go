// Package netguard contains the outbound-request guards: a fixed host
// allowlist for download origins and a private/reserved address check used
// by the status proxy. Together they are the only thing standing between
// the redemption and proxy handlers and becoming open SSRF vectors, so
// both are re-checked at request time rather than trusted from issuance.
package netguard

import (
	"net/url"
	"strings"
)

// Allowlist is a fixed set of hosts that download hrefs may point at.
type Allowlist struct {
	hosts map[string]struct{}
}

// NewAllowlist builds an allowlist from exact host entries. Entries are
// matched case-insensitively and must include any non-default port.
func NewAllowlist(hosts ...string) *Allowlist {
	set := make(map[string]struct{}, len(hosts))
	for _, h := range hosts {
		h = strings.ToLower(strings.TrimSpace(h))
		if h != "" {
			set[h] = struct{}{}
		}
	}
	return &Allowlist{hosts: set}
}

// AllowsHref reports whether href is an http(s) URL whose host exactly
// matches an allowlisted entry. Malformed URLs are rejected.
func (a *Allowlist) AllowsHref(href string) bool {
	u, err := url.Parse(href)
	if err != nil {
		return false
	}

	switch u.Scheme {
	case "http", "https":
	default:
		return false
	}

	if u.Host == "" {
		return false
	}

	_, ok := a.hosts[strings.ToLower(u.Host)]
	return ok
}

// Hosts returns the configured entries, for diagnostics.
func (a *Allowlist) Hosts() []string {
	out := make([]string, 0, len(a.hosts))
	for h := range a.hosts {
		out = append(out, h)
	}
	return out
}
