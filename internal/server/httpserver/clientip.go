package httpserver

import (
	"fmt"
	"net"
	"net/http"
	"strings"
)

// ClientIPResolver derives the client address used as the rate-limit
// key and in audit logs. Forwarding headers are only honored when the
// direct peer is a trusted proxy.
type ClientIPResolver struct {
	trusted []*net.IPNet
}

// NewClientIPResolver parses the trusted proxy list. Entries are IPs or
// CIDR blocks. An empty list trusts no proxy.
func NewClientIPResolver(trusted []string) (*ClientIPResolver, error) {
	r := &ClientIPResolver{}
	for _, entry := range trusted {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		ipNet, err := parseTrustedEntry(entry)
		if err != nil {
			return nil, err
		}
		r.trusted = append(r.trusted, ipNet)
	}
	return r, nil
}

func parseTrustedEntry(entry string) (*net.IPNet, error) {
	if strings.Contains(entry, "/") {
		_, ipNet, err := net.ParseCIDR(entry)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", entry, err)
		}
		return ipNet, nil
	}

	ip := net.ParseIP(entry)
	if ip == nil {
		return nil, fmt.Errorf("invalid trusted proxy %q", entry)
	}
	if ip4 := ip.To4(); ip4 != nil {
		return &net.IPNet{IP: ip4, Mask: net.CIDRMask(32, 32)}, nil
	}
	return &net.IPNet{IP: ip, Mask: net.CIDRMask(128, 128)}, nil
}

func (c *ClientIPResolver) isTrusted(addr string) bool {
	ip := net.ParseIP(addr)
	if ip == nil {
		return false
	}
	for _, ipNet := range c.trusted {
		if ipNet.Contains(ip) {
			return true
		}
	}
	return false
}

// ClientIP returns the client address of r. Without trusted proxies, or
// when the peer is not one, this is the peer address. Behind a trusted
// proxy it is the right-most X-Forwarded-For hop that is not itself
// trusted, then X-Real-IP.
func (c *ClientIPResolver) ClientIP(r *http.Request) string {
	peer := remoteHost(r.RemoteAddr)
	if c == nil || len(c.trusted) == 0 || !c.isTrusted(peer) {
		return peer
	}

	if values := r.Header.Values("X-Forwarded-For"); len(values) > 0 {
		hops := strings.Split(strings.Join(values, ","), ",")
		first := ""
		for i := len(hops) - 1; i >= 0; i-- {
			hop := strings.TrimSpace(hops[i])
			if hop == "" {
				continue
			}
			if !c.isTrusted(hop) {
				return hop
			}
			first = hop
		}
		// Every hop is a trusted proxy.
		if first != "" {
			return first
		}
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	return peer
}

// remoteHost strips the port from a RemoteAddr, handling IPv6 forms
// like [::1]:8080.
func remoteHost(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}
