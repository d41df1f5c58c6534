package server

import (
	"context"
	"embed"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/grocky/whatip-service/internal/clientip"
	"github.com/grocky/whatip-service/internal/config"
	"github.com/grocky/whatip-service/internal/handlers"
	"github.com/grocky/whatip-service/internal/ratelimit"
	"github.com/grocky/whatip-service/internal/response"
)

//go:embed web
var webFS embed.FS

const (
	indexPath = "web/index.html"
	// sweepInterval controls how often idle limiter entries are pruned.
	sweepInterval = 5 * time.Minute
	// statsInterval controls how often activity counters are logged.
	statsInterval = time.Minute
)

// Server is the whatip HTTP server.
type Server struct {
	httpServer *http.Server
	limiter    *ratelimit.Limiter
	activity   *activity
	logger     *slog.Logger
	indexPage  []byte
}

// New creates a server from the given configuration.
func New(cfg config.Config, logger *slog.Logger) *Server {
	s := &Server{
		activity: newActivity(),
		logger:   logger,
	}

	if cfg.RateLimit.Enabled {
		s.limiter = ratelimit.New(cfg.RateLimit.Window(), cfg.RateLimit.MaxRequests)
	}

	index, err := webFS.ReadFile(indexPath)
	if err != nil {
		// The page is compiled into the binary; a missing file is a build
		// defect, not a runtime condition.
		panic(err)
	}
	s.indexPage = index

	s.httpServer = &http.Server{
		Addr:         cfg.Server.ListenAddr,
		Handler:      s.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout(),
		WriteTimeout: cfg.Server.WriteTimeout(),
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}

	return s
}

// Handler returns the server's route tree wrapped in its middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /ip", s.handleIPInfo)
	mux.HandleFunc("/", s.handleNotFound)

	return s.withLogging(s.withRateLimit(mux))
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("starting server", "addr", s.httpServer.Addr)

	go s.maintenanceLoop(ctx)

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down", "requests", s.activity.requests.Load())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// maintenanceLoop prunes the limiter and logs activity counters until ctx
// is cancelled.
func (s *Server) maintenanceLoop(ctx context.Context) {
	sweep := time.NewTicker(sweepInterval)
	defer sweep.Stop()
	stats := time.NewTicker(statsInterval)
	defer stats.Stop()

	for {
		select {
		case <-sweep.C:
			if s.limiter != nil {
				removed := s.limiter.Sweep(time.Now())
				if removed > 0 {
					s.logger.Debug("swept idle limiter entries",
						"removed", removed,
						"tracked", s.limiter.Tracked(),
					)
				}
			}

		case <-stats.C:
			s.activity.log(s.logger)

		case <-ctx.Done():
			return
		}
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(s.indexPage)
}

func (s *Server) handleIPInfo(w http.ResponseWriter, r *http.Request) {
	resp, reqErr := handlers.GetIPInfo(r, s.logger)
	if reqErr != nil {
		response.WriteError(w, reqErr, s.logger)
		return
	}
	response.WriteJSON(w, resp.Status, resp.Body, s.logger)
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	response.WriteError(w, &response.RequestError{
		Status:      http.StatusNotFound,
		Description: "not found",
	}, s.logger)
}

// withRateLimit rejects requests from peers that exceed the sliding window
// limit. The limit is keyed on the peer address, not forwarded headers, so
// a spoofed header cannot dodge it.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	if s.limiter == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		peer := clientip.FromRequest(r).PeerIP

		result := s.limiter.Check(peer, time.Now())
		if !result.Allowed {
			s.activity.limited.Add(1)
			s.logger.Warn("rate limit exceeded", "peerIP", peer, "retryAfter", result.RetryAfter)
			response.WriteError(w, &response.RequestError{
				Status:      http.StatusTooManyRequests,
				Description: "rate limit exceeded",
				RetryAfter:  int(math.Ceil(result.RetryAfter.Seconds())),
			}, s.logger)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withLogging counts and logs each request.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.activity.requests.Add(1)
		start := time.Now()

		next.ServeHTTP(w, r)

		s.logger.Debug("request served",
			"method", r.Method,
			"path", r.URL.Path,
			"peer", r.RemoteAddr,
			"duration", time.Since(start),
		)
	})
}
