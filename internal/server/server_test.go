package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/grocky/whatip-service/internal/config"
	"gotest.tools/assert"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T, mutate func(*config.Config)) *Server {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(&cfg)
	}
	assert.NilError(t, cfg.Validate())
	return New(cfg, newTestLogger())
}

func TestHandler_Index(t *testing.T) {
	s := newTestServer(t, nil)
	w := httptest.NewRecorder()

	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Assert(t, strings.Contains(w.Body.String(), `fetch("/ip")`),
		"page should wire the button to the lookup endpoint")
}

func TestHandler_IPInfo(t *testing.T) {
	s := newTestServer(t, nil)
	w := httptest.NewRecorder()

	r := httptest.NewRequest(http.MethodGet, "/ip", nil)
	r.RemoteAddr = "203.0.113.50:41234"
	r.Header.Set("User-Agent", "curl/8.5.0")
	s.Handler().ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t,
		`{"public_ip":"203.0.113.50","peer_ip":"203.0.113.50","forwarded":"none","user_agent":"curl/8.5.0"}`,
		w.Body.String())
}

func TestHandler_IPInfo_BehindProxy(t *testing.T) {
	s := newTestServer(t, nil)
	w := httptest.NewRecorder()

	r := httptest.NewRequest(http.MethodGet, "/ip", nil)
	r.RemoteAddr = "10.0.0.2:80"
	r.Header.Set("Fly-Client-IP", "198.51.100.25")
	s.Handler().ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Assert(t, strings.Contains(w.Body.String(), `"public_ip":"198.51.100.25"`))
	assert.Assert(t, strings.Contains(w.Body.String(), `"peer_ip":"10.0.0.2"`))
}

func TestHandler_NotFound(t *testing.T) {
	s := newTestServer(t, nil)

	for _, path := range []string{"/nope", "/ip/extra", "/index.html"} {
		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

		assert.Equal(t, http.StatusNotFound, w.Code, "path %s", path)
		assert.Equal(t, `{"description":"not found"}`, w.Body.String())
	}
}

func TestHandler_RateLimit(t *testing.T) {
	s := newTestServer(t, func(cfg *config.Config) {
		cfg.RateLimit.MaxRequests = 3
		cfg.RateLimit.WindowSeconds = 60
	})
	handler := s.Handler()

	var w *httptest.ResponseRecorder
	for i := 0; i < 4; i++ {
		w = httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/ip", nil)
		r.RemoteAddr = "203.0.113.50:41234"
		handler.ServeHTTP(w, r)
	}

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, `{"description":"rate limit exceeded"}`, w.Body.String())

	retryAfter, err := strconv.Atoi(w.Header().Get("Retry-After"))
	assert.NilError(t, err)
	assert.Assert(t, retryAfter > 0 && retryAfter <= 60, "unexpected Retry-After: %d", retryAfter)
}

func TestHandler_RateLimit_PerPeer(t *testing.T) {
	s := newTestServer(t, func(cfg *config.Config) {
		cfg.RateLimit.MaxRequests = 1
	})
	handler := s.Handler()

	first := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/ip", nil)
	r.RemoteAddr = "203.0.113.50:41234"
	handler.ServeHTTP(first, r)

	// A spoofed forwarded header must not reset the limit for the peer.
	denied := httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodGet, "/ip", nil)
	r.RemoteAddr = "203.0.113.50:55555"
	r.Header.Set("X-Forwarded-For", "198.51.100.25")
	handler.ServeHTTP(denied, r)

	other := httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodGet, "/ip", nil)
	r.RemoteAddr = "198.51.100.25:41234"
	handler.ServeHTTP(other, r)

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, denied.Code)
	assert.Equal(t, http.StatusOK, other.Code)
}

func TestHandler_RateLimitDisabled(t *testing.T) {
	s := newTestServer(t, func(cfg *config.Config) {
		cfg.RateLimit.Enabled = false
	})
	handler := s.Handler()

	for i := 0; i < 100; i++ {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/ip", nil)
		r.RemoteAddr = "203.0.113.50:41234"
		handler.ServeHTTP(w, r)
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestRun_GracefulShutdown(t *testing.T) {
	s := newTestServer(t, func(cfg *config.Config) {
		cfg.Server.ListenAddr = "127.0.0.1:0"
	})

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx)
	}()

	// Give the listener a moment, then ask for shutdown.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NilError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestActivityCounters(t *testing.T) {
	s := newTestServer(t, func(cfg *config.Config) {
		cfg.RateLimit.MaxRequests = 1
	})
	handler := s.Handler()

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/ip", nil)
		r.RemoteAddr = "203.0.113.50:41234"
		handler.ServeHTTP(w, r)
	}

	assert.Equal(t, int64(3), s.activity.requests.Load())
	assert.Equal(t, int64(2), s.activity.limited.Load())
}
