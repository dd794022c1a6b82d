package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/gofrs/flock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/royaltysplit/internal/auth"
	"github.com/mmynk/royaltysplit/internal/authoring"
	"github.com/mmynk/royaltysplit/internal/config"
	"github.com/mmynk/royaltysplit/internal/engine"
	"github.com/mmynk/royaltysplit/internal/middleware"
	"github.com/mmynk/royaltysplit/internal/service"
	"github.com/mmynk/royaltysplit/internal/storage/sqlite"
	"github.com/mmynk/royaltysplit/pkg/api/apiconnect"
	"github.com/mmynk/royaltysplit/pkg/logging"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "", "path to config.toml")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := logging.Setup(cfg.Logging.Format, cfg.Logging.Level); err != nil {
		return err
	}
	slog.Info("Configuration loaded", "path", resolved, "file_found", exists)

	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	// One server per database.
	lock := flock.New(cfg.Storage.LockPath)
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire lock %s: %w", cfg.Storage.LockPath, err)
	}
	if !locked {
		return fmt.Errorf("database %s is in use by another server (lock %s)", cfg.Storage.DBPath, cfg.Storage.LockPath)
	}
	defer lock.Unlock()

	store, err := sqlite.New(cfg.Storage.DBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.Storage.DBPath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	tracker := engine.NewTracker(store, engine.Options{
		Workers:    cfg.Engine.Workers,
		QueueSize:  cfg.Engine.QueueSize,
		ClockSpec:  cfg.Engine.ClockSpec,
		Registerer: registry,
		Logger:     slog.Default().With("component", "engine"),
	})
	if _, err := tracker.Load(ctx); err != nil {
		return err
	}
	if err := tracker.Start(ctx); err != nil {
		return fmt.Errorf("failed to start tracker: %w", err)
	}
	defer tracker.Stop()

	sessions := authoring.NewRegistry(cfg.SessionTTL(), slog.Default().With("component", "authoring"))

	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.TokenDuration())
	authInterceptor := middleware.RequireAuth(jwtManager)
	if !cfg.Auth.Required {
		slog.Warn("Authentication is optional; unauthenticated requests act as the dev artist", "dev_artist", cfg.Auth.DevArtist)
		authInterceptor = middleware.OptionalAuth(jwtManager, cfg.Auth.DevArtist)
	}
	// auth runs first so the logging interceptor sees the artist
	interceptors := connect.WithInterceptors(authInterceptor, middleware.LoggingInterceptor(slog.Default()))

	mux := http.NewServeMux()
	mux.Handle(apiconnect.NewCatalogServiceHandler(service.NewCatalogService(store, tracker), interceptors))
	mux.Handle(apiconnect.NewConditionalServiceHandler(service.NewConditionalService(store, tracker), interceptors))
	mux.Handle(apiconnect.NewAuthoringServiceHandler(service.NewAuthoringService(store, tracker, sessions), interceptors))
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Wrap with h2c for HTTP/2 without TLS (required for Connect)
	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           h2c.NewHandler(corsMiddleware(mux), &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Connect server starting", "address", cfg.Server.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen on %s: %w", cfg.Server.Addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}

// corsMiddleware adds CORS headers for browser access
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, Connect-Protocol-Version, Connect-Timeout-Ms")
		w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
