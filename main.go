package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/msomdec/irhis/internal/config"
	"github.com/msomdec/irhis/internal/domain"
	"github.com/msomdec/irhis/internal/handler"
	"github.com/msomdec/irhis/internal/repository/memory"
	"github.com/msomdec/irhis/internal/repository/sqlite"
	"github.com/msomdec/irhis/internal/service"
)

func main() {
	level := new(slog.LevelVar)
	logOpts := &slog.HandlerOptions{Level: level}
	logger := slog.New(slog.NewMultiHandler(
		slog.NewTextHandler(os.Stdout, logOpts),
		slog.NewJSONHandler(os.Stderr, logOpts),
	))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	level.Set(cfg.LogLevel)

	store, err := openStore(cfg)
	if err != nil {
		slog.Error("failed to open store", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	if err := store.Migrate(context.Background()); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("store ready", "driver", cfg.StoreDriver)

	hasher := service.NewPasswordHasher(cfg.PasswordHash, cfg.BcryptCost, service.DefaultArgon2Params)
	codec := service.NewCredentialCodec(cfg.JWTSecret, cfg.CredentialTTL)

	authService := service.NewAuthService(store.Users(), store.Patients(), hasher, codec)
	patientService := service.NewPatientService(store.Patients())
	assignmentService := service.NewAssignmentService(store.Assignments(), store.Patients())

	if cfg.SeedDemo {
		if err := service.SeedDemo(context.Background(), store, hasher, cfg.SeedPassword); err != nil {
			slog.Error("failed to seed demo data", "error", err)
			os.Exit(1)
		}
		slog.Info("demo data seeded")
	}

	limiter := newLimiter(cfg)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, authService, patientService, assignmentService, limiter)

	stack := chi.Chain(
		middleware.RequestID,
		middleware.RealIP,
		handler.RequestLogger,
		middleware.Recoverer,
		cors.Handler(cors.Options{
			AllowedOrigins: cfg.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
			AllowedHeaders: []string{"Authorization", "Content-Type"},
			MaxAge:         300,
		}),
		handler.SecurityHeaders,
	)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           stack.Handler(mux),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

func openStore(cfg *config.Config) (domain.Store, error) {
	if cfg.StoreDriver == config.StoreSQLite {
		return sqlite.New(cfg.DatabasePath)
	}
	return memory.New(), nil
}

// newLimiter shares the credential-endpoint budget through Redis when it is
// configured and reachable, and keeps it per process otherwise.
func newLimiter(cfg *config.Config) service.RateLimiter {
	if cfg.RedisURL != "" {
		client, err := service.NewRedisClient(context.Background(), cfg.RedisURL)
		if err == nil {
			slog.Info("rate limiter using redis")
			limit := service.WindowLimit(cfg.AuthRatePerSec, cfg.AuthRateBurst, time.Minute)
			return service.NewRedisLimiter(client, "irhis:auth:", limit, time.Minute)
		}
		slog.Warn("redis unavailable, using in-memory rate limiter", "error", err)
	}
	return service.NewTokenBucket(cfg.AuthRatePerSec, cfg.AuthRateBurst)
}
