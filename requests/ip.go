package requests

import (
	"net"
	"net/http"
	"strings"
)

// GetClientIP returns the caller's address. Forwarding headers are honoured
// only when trustProxy is set, i.e. the server sits behind a reverse proxy.
func GetClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		// Prefer X-Forwarded-For (first entry)
		if xForwaredFor := r.Header.Get("X-Forwarded-For"); xForwaredFor != "" {
			first, _, _ := strings.Cut(xForwaredFor, ",")
			if first = strings.TrimSpace(first); first != "" {
				return first
			}
		}
		// Fallback to X-Real-IP
		if xRealIP := r.Header.Get("X-Real-IP"); xRealIP != "" {
			return strings.TrimSpace(xRealIP)
		}
	}
	hostIP, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return hostIP
}
