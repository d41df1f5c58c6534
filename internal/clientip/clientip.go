package clientip

import (
	"net"
	"net/http"
	"strings"
)

// Headers checked for the client's public IP, in order of preference.
// Fly-Client-IP is set by the edge proxy and checked first; X-Forwarded-For
// may carry a chain of addresses, of which the first is the original client.
var preferredHeaders = []string{
	"Fly-Client-IP",
	"X-Forwarded-For",
	"X-Real-IP",
}

// Info describes where a request came from.
type Info struct {
	// PublicIP is the best guess at the client's public address: the first
	// proxy header that parses as an IP, falling back to the peer address.
	PublicIP string
	// PeerIP is the address of the direct connection, usually the proxy.
	PeerIP string
	// Forwarded is the raw X-Forwarded-For value, or "none".
	Forwarded string
	// UserAgent is the User-Agent value, or "unknown".
	UserAgent string
}

// FromRequest resolves client info for an incoming net/http request.
func FromRequest(r *http.Request) Info {
	return FromHeaders(r.Header.Get, peerIP(r.RemoteAddr))
}

// FromHeaders resolves client info from a header lookup function and the
// peer address. The lookup must be case-insensitive on header names, as
// http.Header.Get is.
func FromHeaders(header func(name string) string, peerAddr string) Info {
	info := Info{
		PublicIP:  peerAddr,
		PeerIP:    peerAddr,
		Forwarded: "none",
		UserAgent: "unknown",
	}

	for _, name := range preferredHeaders {
		candidate := header(name)
		if name == "X-Forwarded-For" {
			// May be a comma-separated chain; the first entry is the client.
			candidate, _, _ = strings.Cut(candidate, ",")
		}
		candidate = strings.TrimSpace(candidate)
		if candidate != "" && net.ParseIP(candidate) != nil {
			info.PublicIP = candidate
			break
		}
	}

	if forwarded := strings.TrimSpace(header("X-Forwarded-For")); forwarded != "" {
		info.Forwarded = forwarded
	}
	if ua := strings.TrimSpace(header("User-Agent")); ua != "" {
		info.UserAgent = ua
	}

	return info
}

// peerIP strips the port from a net/http RemoteAddr. RemoteAddr is normally
// "host:port" but bare hosts show up in tests and custom listeners.
func peerIP(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
