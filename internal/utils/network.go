package utils

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

var privateRanges = func() []*net.IPNet {
	var nets []*net.IPNet
	for _, cidr := range []string{"10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16", "fc00::/7"} {
		_, subnet, _ := net.ParseCIDR(cidr)
		nets = append(nets, subnet)
	}
	return nets
}()

// GetRealIP returns the browser's address for session records.
//
// X-Real-IP wins when it is public, then the first public hop of
// X-Forwarded-For, then the first hop even if private, then gin's ClientIP.
func GetRealIP(c *gin.Context) string {
	if realIP := strings.TrimSpace(c.GetHeader("X-Real-IP")); realIP != "" {
		if ip := net.ParseIP(realIP); ip != nil && !isPrivateIP(ip) {
			return realIP
		}
	}

	if forwarded := c.GetHeader("X-Forwarded-For"); forwarded != "" {
		hops := strings.Split(forwarded, ",")
		for _, hop := range hops {
			hop = strings.TrimSpace(hop)
			ip := net.ParseIP(hop)
			if ip != nil && !isPrivateIP(ip) && !IsLocalhost(hop) {
				return hop
			}
		}
		if first := strings.TrimSpace(hops[0]); net.ParseIP(first) != nil {
			return first
		}
	}

	return c.ClientIP()
}

// IsLocalhost checks if an IP address is loopback
func IsLocalhost(ip string) bool {
	if ip == "localhost" {
		return true
	}
	parsed := net.ParseIP(ip)
	return parsed != nil && parsed.IsLoopback()
}

func isPrivateIP(ip net.IP) bool {
	if ip == nil {
		return false
	}
	for _, subnet := range privateRanges {
		if subnet.Contains(ip) {
			return true
		}
	}
	return false
}
