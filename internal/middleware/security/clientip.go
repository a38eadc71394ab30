package security

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
)

// ClientResolver determines the originating client address of a request.
// Forwarding headers are only honoured when the direct peer is a trusted
// proxy.
type ClientResolver struct {
	mu      sync.RWMutex
	trusted []*net.IPNet
}

// NewClientResolver trusts loopback and private networks by default.
func NewClientResolver() *ClientResolver {
	return &ClientResolver{
		trusted: []*net.IPNet{
			mustCIDR("127.0.0.0/8"),
			mustCIDR("10.0.0.0/8"),
			mustCIDR("172.16.0.0/12"),
			mustCIDR("192.168.0.0/16"),
			mustCIDR("::1/128"),
		},
	}
}

func mustCIDR(cidr string) *net.IPNet {
	_, network, err := net.ParseCIDR(cidr)
	if err != nil {
		panic(fmt.Sprintf("invalid trusted proxy CIDR %s: %v", cidr, err))
	}
	return network
}

// AddTrustedProxy adds a network whose forwarding headers are believed.
func (c *ClientResolver) AddTrustedProxy(cidr string) error {
	_, network, err := net.ParseCIDR(cidr)
	if err != nil {
		return fmt.Errorf("invalid CIDR %s: %w", cidr, err)
	}
	c.mu.Lock()
	c.trusted = append(c.trusted, network)
	c.mu.Unlock()
	return nil
}

// ClientIP returns the client address for r.
func (c *ClientResolver) ClientIP(r *http.Request) string {
	direct, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		direct = r.RemoteAddr
	}
	ip := net.ParseIP(direct)
	if ip == nil || !c.isTrusted(ip) {
		return direct
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first := strings.TrimSpace(strings.Split(xff, ",")[0])
		if net.ParseIP(first) != nil {
			return first
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); net.ParseIP(xri) != nil {
		return xri
	}
	return direct
}

func (c *ClientResolver) isTrusted(ip net.IP) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, network := range c.trusted {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}
