package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/grocky/whatip-service/internal/config"
	"github.com/grocky/whatip-service/internal/server"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	listenAddr := flag.String("listen", "", "listen address (overrides config)")
	verbose := flag.Bool("verbose", false, "enable verbose logging")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Flags take precedence over file and environment values.
	if *listenAddr != "" {
		cfg.Server.ListenAddr = *listenAddr
	}
	if *verbose {
		cfg.Logging.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.Logging.SlogLevel(),
	}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.New(cfg, logger).Run(ctx); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func init() {
	flag.Usage = func() {
		fmt.Println(`whatip-server - public IP echo server

Serves a single page with a lookup button and a GET /ip endpoint that
reports how the caller's connection looks from outside.

Usage:
  whatip-server [flags]

Environment Variables:
  WHATIP_LISTEN_ADDR                listen address
  WHATIP_LOG_LEVEL                  debug, info, warn, or error
  WHATIP_RATE_LIMIT_MAX             requests allowed per window per client
  WHATIP_RATE_LIMIT_WINDOW_SECONDS  sliding window length

Flags:`)
		flag.PrintDefaults()
		fmt.Println(`
Examples:
  # Defaults (listen on :8080)
  whatip-server

  # Config file with a flag override
  whatip-server --config /etc/whatip.yaml --listen :9090`)
	}
}
