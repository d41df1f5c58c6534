package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	DefaultServerURL = "http://localhost:8080"
	DefaultTimeout   = 10 * time.Second
)

// Client is the whatip API client.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// New creates a new whatip API client.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	baseURL := cfg.ServerURL
	if baseURL == "" {
		baseURL = DefaultServerURL
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
	}
}

// RateLimitError indicates the request was rate limited.
type RateLimitError struct {
	RetryAfter string
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter != "" {
		return fmt.Sprintf("rate limited, retry after %s seconds", e.RetryAfter)
	}
	return "rate limited"
}

// GetIPInfo asks the server how the caller's connection looks from outside.
func (c *Client) GetIPInfo(ctx context.Context) (*IPInfo, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/ip", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("User-Agent", "whatip-client/1.0")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter := resp.Header.Get("Retry-After")
		return nil, &RateLimitError{RetryAfter: retryAfter}
	}

	if resp.StatusCode != http.StatusOK {
		var errResp ErrorResponse
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Description != "" {
			return nil, fmt.Errorf("API error (%d): %s", resp.StatusCode, errResp.Description)
		}
		return nil, fmt.Errorf("API error: status %d", resp.StatusCode)
	}

	var info IPInfo
	if err := json.Unmarshal(respBody, &info); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return &info, nil
}
