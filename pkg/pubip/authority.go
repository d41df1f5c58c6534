package pubip

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// maxBodySize bounds how much of an authority response is read. A plain-text
// IP is tiny; anything bigger is not the response we asked for.
const maxBodySize = 256

// Authority queries an external public IP service that answers with the
// caller's address as plain text.
type Authority struct {
	httpClient *http.Client
	endpoint   string
}

// NewAuthority creates an authority client for the given endpoint.
func NewAuthority(endpoint string) *Authority {
	return &Authority{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: time.Second * 2,
		},
	}
}

// IP performs one lookup against the authority and returns the reported
// address. Any transport, status, or parse failure is an error; there are
// no retries.
func (a *Authority) IP(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("unable to create request: %w", err)
	}
	req.Header.Set("User-Agent", "grocky: whatip")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s responded with status %d", a.endpoint, resp.StatusCode)
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", fmt.Errorf("unable to read body: %w", err)
	}

	ip := strings.TrimSpace(string(b))
	if net.ParseIP(ip) == nil {
		return "", fmt.Errorf("%s returned an unparsable address: %q", a.endpoint, ip)
	}

	return ip, nil
}
