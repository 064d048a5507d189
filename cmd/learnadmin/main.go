// Package main is the entry point for the learnadmin API server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"learnadmin/internal/backend"
	"learnadmin/internal/cache"
	"learnadmin/internal/config"
	"learnadmin/internal/handlers"
	"learnadmin/internal/middleware"
	"learnadmin/internal/router"
	"learnadmin/internal/session"
	"learnadmin/internal/storage"
)

func main() {
	// A missing .env file is fine; the environment may already be set.
	_ = godotenv.Load()

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Structured logger: JSON in production, text in development.
	var logHandler slog.Handler
	if cfg.IsDev() {
		logHandler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		logHandler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	slog.SetDefault(slog.New(logHandler))

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"backend", cfg.APIBaseURL,
		"auth_required", cfg.AuthRequired,
	)

	ctx := context.Background()

	// Connect to Valkey (session store). Required when authentication is on.
	var (
		sessions    *session.Store
		healthCheck router.HealthCheck
	)
	valkeyClient, err := cache.ConnectValkey(ctx, cache.Options{
		Host:     cfg.ValkeyHost,
		Port:     cfg.ValkeyPort,
		Password: cfg.ValkeyPassword,
	})
	switch {
	case err == nil:
		defer valkeyClient.Close()
		sessions = session.NewStore(valkeyClient, cfg.SessionTTL, !cfg.IsDev())
		healthCheck = func(ctx context.Context) error { return cache.Ping(ctx, valkeyClient) }
	case cfg.AuthRequired:
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	default:
		slog.Warn("valkey unavailable, running without sessions", "error", err)
	}

	// Connect to S3-compatible object storage (optional; uploads are
	// forwarded to the backend without it).
	var uploader handlers.Uploader
	if cfg.StorageEnabled() {
		storageClient, err := storage.New(storage.Options{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
			PublicURL: cfg.S3PublicURL,
		})
		if err != nil {
			slog.Error("failed to initialize S3 storage", "error", err)
			os.Exit(1)
		}
		uploader = storageClient
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
	} else {
		slog.Warn("s3 storage not configured, uploads go to the content backend")
	}

	// Content backend client.
	fwd := backend.New(backend.Options{
		BaseURL:       cfg.APIBaseURL,
		Token:         cfg.APIToken,
		Timeout:       cfg.RequestTimeout,
		UploadTimeout: cfg.UploadTimeout,
	})

	loginLimiter := middleware.NewRateLimiter(10, time.Minute, middleware.ByLoginEmail)
	defer loginLimiter.Stop()

	opts := router.Options{
		API:          handlers.NewAPI(fwd, uploader, cfg.UploadTimeout),
		AuthRequired: cfg.AuthRequired,
		CORSOrigins:  cfg.CORSOrigins,
		HSTS:         !cfg.IsDev(),
		LoginLimiter: loginLimiter,
		Health:       healthCheck,
	}
	if sessions != nil {
		opts.Sessions = sessions
		opts.Auth = handlers.NewAuth(fwd, sessions)
	} else {
		opts.Auth = handlers.NewAuth(fwd, nil)
	}

	// Create the HTTP server. WriteTimeout must cover the upload timeout.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router.New(opts),
		ReadTimeout:  cfg.UploadTimeout,
		WriteTimeout: cfg.UploadTimeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	// Give active requests up to 30 seconds to complete.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
