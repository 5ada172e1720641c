package http

import (
	"net"
	"net/http"
	"strings"

	"github.com/accountd/accountd/models"
)

// originFromRequest captures the client origin recorded in audit events and
// sessions. The transport layer is the only place these values are derived;
// the core consumes them as given.
//
// The client IP honours X-Forwarded-For (first hop) and X-Real-IP before
// falling back to the connection's remote address.
func originFromRequest(r *http.Request) models.Origin {
	return models.Origin{
		IPAddress: clientIP(r),
		UserAgent: r.UserAgent(),
	}
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		// the first entry is the originating client
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}

	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
