// Package main implements the entry point for the itemstore service: an
// HTTP item API backed by a NATS JetStream key-value bucket.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/c360/itemstore/config"
	"github.com/c360/itemstore/health"
	"github.com/c360/itemstore/itemapi"
	"github.com/c360/itemstore/metric"
	"github.com/c360/itemstore/natsclient"
	"github.com/c360/itemstore/storage/natskv"
)

// Build information constants
const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "itemstore"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(); err != nil {
		slog.Error("Application failed", "error", err, "exit_code", 1)
		os.Exit(1)
	}
}

func run() error {
	// Parse and validate CLI flags
	cliCfg, logger, shouldExit, err := initializeCLI()
	if shouldExit || err != nil {
		return err
	}

	// Load and validate configuration
	cfg, err := config.Load(cliCfg.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if cliCfg.Validate {
		slog.Info("Configuration is valid")
		return nil
	}

	ctx := context.Background()

	// Connect NATS and open the record bucket
	natsClient, bucket, err := setupStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = natsClient.Close(closeCtx)
	}()

	registry := metric.NewRegistry()
	registry.Metrics.NATSConnected.Set(1)

	store := natskv.New(bucket, logger)
	handler := itemapi.NewHandler(store,
		itemapi.WithLogger(logger),
		itemapi.WithMetrics(registry.Metrics),
		itemapi.WithMaxBodyBytes(cfg.HTTP.MaxBodyBytes),
	)

	apiServer := buildAPIServer(cfg, handler, registry.Metrics, natsClient, logger)
	metricsServer := buildMetricsServer(cfg, registry)

	return serve(ctx, cliCfg.ShutdownTimeout, apiServer, metricsServer)
}

// initializeCLI parses flags and sets up logging
func initializeCLI() (*CLIConfig, *slog.Logger, bool, error) {
	cliCfg := parseFlags()
	if err := validateFlags(cliCfg); err != nil {
		return nil, nil, false, fmt.Errorf("invalid flags: %w", err)
	}

	if cliCfg.ShowVersion {
		fmt.Printf("%s version %s\n", appName, Version)
		return nil, nil, true, nil
	}

	if cliCfg.ShowHelp {
		printDetailedHelp()
		return nil, nil, true, nil
	}

	logger := setupLogger(cliCfg.LogLevel, cliCfg.LogFormat)
	slog.SetDefault(logger)

	slog.Info("Starting itemstore",
		"version", Version,
		"build_time", BuildTime,
		"config_path", cliCfg.ConfigPath)

	return cliCfg, logger, false, nil
}

// setupStorage connects to NATS and opens the configured KV bucket
func setupStorage(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
) (*natsclient.Client, jetstream.KeyValue, error) {
	natsClient, err := natsclient.NewClient(cfg.NATS.URL,
		natsclient.WithLogger(logger),
		natsclient.WithName(cfg.NATS.Name),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("create NATS client: %w", err)
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := natsClient.Connect(connectCtx); err != nil {
		return nil, nil, fmt.Errorf("connect to NATS: %w", err)
	}

	bucket, err := natsClient.KeyValueBucket(ctx, jetstream.KeyValueConfig{
		Bucket:      cfg.Storage.Bucket,
		Description: cfg.Storage.Description,
		History:     cfg.Storage.History,
	})
	if err != nil {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer closeCancel()
		_ = natsClient.Close(closeCtx)
		return nil, nil, fmt.Errorf("open KV bucket %s: %w", cfg.Storage.Bucket, err)
	}

	return natsClient, bucket, nil
}

// buildAPIServer assembles the public listener: item routes, health
// endpoint, and the shared rate limiter.
func buildAPIServer(
	cfg *config.Config,
	handler *itemapi.Handler,
	metrics *metric.Metrics,
	natsClient *natsclient.Client,
	logger *slog.Logger,
) *http.Server {
	mux := http.NewServeMux()
	handler.Register(mux)
	mux.Handle("/healthz", health.Handler(logger, health.Check{
		Name: "nats",
		Probe: func(context.Context) error {
			if !natsClient.IsHealthy() {
				return natsclient.ErrNotConnected
			}
			return nil
		},
	}))

	var limiter *rate.Limiter
	if cfg.HTTP.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.HTTP.RateLimit), cfg.HTTP.RateBurst)
	}

	return &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           itemapi.RateLimit(limiter, metrics, mux),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// buildMetricsServer assembles the Prometheus listener, nil when disabled
func buildMetricsServer(cfg *config.Config, registry *metric.Registry) *http.Server {
	if cfg.Metrics.Addr == "" {
		return nil
	}

	path := cfg.Metrics.Path
	if path == "" {
		path = "/metrics"
	}

	mux := http.NewServeMux()
	mux.Handle(path, registry.Handler())

	return &http.Server{
		Addr:              cfg.Metrics.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// serve runs the listeners until a shutdown signal arrives, then drains
// them within the shutdown timeout.
func serve(ctx context.Context, shutdownTimeout time.Duration, servers ...*http.Server) error {
	signalCtx, signalCancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer signalCancel()

	group, groupCtx := errgroup.WithContext(signalCtx)

	for _, server := range servers {
		if server == nil {
			continue
		}
		server := server
		group.Go(func() error {
			slog.Info("Listening", "addr", server.Addr)
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return fmt.Errorf("listen on %s: %w", server.Addr, err)
			}
			return nil
		})
	}

	group.Go(func() error {
		<-groupCtx.Done()
		slog.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		var firstErr error
		for _, server := range servers {
			if server == nil {
				continue
			}
			if err := server.Shutdown(shutdownCtx); err != nil && firstErr == nil {
				firstErr = fmt.Errorf("shutdown %s: %w", server.Addr, err)
			}
		}
		return firstErr
	})

	if err := group.Wait(); err != nil {
		return err
	}

	slog.Info("itemstore shutdown complete")
	return nil
}
