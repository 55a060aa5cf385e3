package netguard

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrBlockedAddress reports that a target resolves to a private or reserved
// address and must not be fetched.
var ErrBlockedAddress = errors.New("netguard: target resolves to a blocked address")

// reservedNetworks contains pre-parsed reserved CIDR ranges that the stdlib
// net.IP predicates do not cover.
var reservedNetworks []*net.IPNet

func init() {
	cidrs := []string{
		"100.64.0.0/10",   // Carrier-grade NAT (RFC 6598)
		"192.0.0.0/24",    // IETF Protocol Assignments
		"192.0.2.0/24",    // TEST-NET-1
		"198.51.100.0/24", // TEST-NET-2
		"203.0.113.0/24",  // TEST-NET-3
		"224.0.0.0/4",     // Multicast
		"240.0.0.0/4",     // Reserved for future use
		"fc00::/7",        // IPv6 unique-local
	}
	for _, cidr := range cidrs {
		_, network, err := net.ParseCIDR(cidr)
		if err == nil {
			reservedNetworks = append(reservedNetworks, network)
		}
	}
}

// IsPrivateOrReserved reports whether ip belongs to a private, loopback,
// link-local or otherwise reserved range.
func IsPrivateOrReserved(ip net.IP) bool {
	// Normalise IPv4-mapped IPv6 for consistent checking
	if v4 := ip.To4(); v4 != nil {
		ip = v4
	}

	if ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() {
		return true
	}
	if ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() {
		return true
	}

	for _, network := range reservedNetworks {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// LookupFunc resolves a hostname to addresses. Injectable so tests can
// simulate hostnames that resolve into private ranges.
type LookupFunc func(ctx context.Context, host string) ([]net.IP, error)

// Guard validates that an outbound target cannot reach private
// infrastructure. Checking the resolved addresses, not just the literal
// host string, closes the DNS-rebinding gap.
type Guard struct {
	lookup LookupFunc
}

// NewGuard returns a Guard using the default system resolver.
func NewGuard() *Guard {
	return NewGuardWithLookup(func(ctx context.Context, host string) ([]net.IP, error) {
		addrs, err := net.DefaultResolver.LookupIPAddr(ctx, host)
		if err != nil {
			return nil, err
		}
		ips := make([]net.IP, 0, len(addrs))
		for _, a := range addrs {
			ips = append(ips, a.IP)
		}
		return ips, nil
	})
}

// NewGuardWithLookup returns a Guard with a custom resolver.
func NewGuardWithLookup(lookup LookupFunc) *Guard {
	return &Guard{lookup: lookup}
}

// CheckHost rejects host if it is a private/reserved IP literal, or if ANY
// of its resolved addresses falls into a private/reserved range.
func (g *Guard) CheckHost(ctx context.Context, host string) error {
	if ip := net.ParseIP(host); ip != nil {
		if IsPrivateOrReserved(ip) {
			return fmt.Errorf("%w: %s", ErrBlockedAddress, host)
		}
		return nil
	}

	ips, err := g.lookup(ctx, host)
	if err != nil {
		return fmt.Errorf("netguard: resolving %q: %w", host, err)
	}
	if len(ips) == 0 {
		return fmt.Errorf("netguard: %q resolved to no addresses", host)
	}

	for _, ip := range ips {
		if IsPrivateOrReserved(ip) {
			return fmt.Errorf("%w: %s -> %s", ErrBlockedAddress, host, ip)
		}
	}
	return nil
}
