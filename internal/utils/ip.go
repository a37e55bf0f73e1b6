package utils

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP returns the address the request came from.
//
// With trustProxy set, the first entry of X-Forwarded-For wins, then
// X-Real-IP. Otherwise, and when both are absent, the host part of
// RemoteAddr is used. Returns "unknown" when nothing usable is found.
func ClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
		if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if host == "" {
		return "unknown"
	}

	return host
}
