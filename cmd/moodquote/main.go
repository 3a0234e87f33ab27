// Package main is the entry point for the moodquote server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"moodquote/internal/cache"
	"moodquote/internal/config"
	"moodquote/internal/fallback"
	httpserver "moodquote/internal/http"
	"moodquote/internal/provider"
	"moodquote/internal/quote"
	"moodquote/internal/resilience"
	"moodquote/internal/telemetry"
)

func main() {
	configPath := flag.String("config", "config.toml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Telemetry.LogLevel),
	}))
	slog.SetDefault(logger)

	slog.Info("Starting moodquote",
		"version", "0.1.0",
		"http_port", cfg.Server.HTTPPort,
		"cache_ttl", cfg.Cache.TTL,
	)

	metrics := telemetry.NewMetrics(nil)

	// Provider selection happens once; absence of credentials pins the
	// process to fallback mode.
	gen, err := provider.FromConfig(cfg)
	if err != nil {
		slog.Error("Failed to initialize provider", "error", err)
		os.Exit(1)
	}
	if gen != nil {
		slog.Info("Generation provider configured", "provider", gen.Provider())
	} else {
		slog.Info("No generation provider configured, serving fallback quotes")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	qc := cache.New(cfg.Cache.TTL, metrics)
	go qc.Run(ctx, cfg.Cache.EffectiveSweepInterval())

	service := quote.NewService(
		qc,
		fallback.NewTable(),
		gen,
		cfg.Provider.Timeout,
		resilience.DefaultRetryConfig(cfg.Provider.MaxRetries),
		metrics,
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		slog.Info("Received shutdown signal", "signal", sig)
		cancel()
	}()

	addr := fmt.Sprintf("%s:%d", cfg.Server.BindAddress, cfg.Server.HTTPPort)
	server := httpserver.NewServer(cfg, service, metrics)

	slog.Info("moodquote ready",
		"api_endpoint", fmt.Sprintf("http://localhost:%d/api/quote", cfg.Server.HTTPPort),
		"health_endpoint", fmt.Sprintf("http://localhost:%d/api/health", cfg.Server.HTTPPort),
		"metrics_endpoint", fmt.Sprintf("http://localhost:%d/metrics", cfg.Server.HTTPPort),
	)

	if err := server.Start(ctx, addr); err != nil && err != http.ErrServerClosed {
		slog.Error("HTTP server error", "error", err)
		os.Exit(1)
	}

	slog.Info("moodquote stopped")
}

// parseLogLevel maps a config string to a slog level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
