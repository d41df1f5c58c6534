package client

import "time"

// IPInfo represents the server's view of the caller's connection.
type IPInfo struct {
	PublicIP  string `json:"public_ip"`
	PeerIP    string `json:"peer_ip"`
	Forwarded string `json:"forwarded"`
	UserAgent string `json:"user_agent"`
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Description string `json:"description"`
}

// Config holds client configuration.
type Config struct {
	ServerURL string
	Timeout   time.Duration
}
