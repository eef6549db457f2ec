package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yourorg/adminstate/internal/domain"
	"github.com/yourorg/adminstate/internal/infrastructure/clock"
	"github.com/yourorg/adminstate/internal/infrastructure/logger"
	"github.com/yourorg/adminstate/internal/observability/tracing"
	"github.com/yourorg/adminstate/internal/security/auth"
	"github.com/yourorg/adminstate/internal/security/ratelimit"
	"github.com/yourorg/adminstate/internal/service"
	"github.com/yourorg/adminstate/internal/snapshot"
	"github.com/yourorg/adminstate/internal/validation"
	"github.com/yourorg/adminstate/pkg/config"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize structured logger
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("starting adminstate", slog.String("environment", cfg.Environment))

	ctx := context.Background()

	// 3. Initialize tracing (no-op without an OTLP endpoint)
	shutdownTracing, err := tracing.Init(ctx, log, "adminstate", cfg.Environment)
	if err != nil {
		log.Error("failed to initialize tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer shutdownTracing(context.Background())

	// 4. Open the snapshot blob store
	blobs, closeBlobs, err := openBlobStore(ctx, cfg, log)
	if err != nil {
		log.Error("failed to open snapshot store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeBlobs()

	// 5. Restore state (empty store when no snapshot exists)
	sysClock := clock.NewSystem()
	mgr := snapshot.NewManager(blobs, log)
	state, err := mgr.Restore(ctx, sysClock)
	if err != nil {
		log.Error("failed to restore state", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 6. Wire the service
	limiter := ratelimit.NewLimiter(cfg.RateLimitMax, domain.Timestamp(cfg.RateLimitWindow.Nanoseconds()))
	svc := service.New(state, service.Deps{
		Clock:     sysClock,
		OracleTTL: cfg.OracleCacheTTL,
		Limiter:   limiter,
		Validator: validation.New(),
		Logger:    log,
	})

	// 7. Seed bootstrap controllers (also enrolled as admins)
	bootControllers := make([]domain.Identity, 0, len(cfg.BootControllers))
	for _, id := range cfg.BootControllers {
		bootControllers = append(bootControllers, domain.Identity(id))
	}
	svc.Bootstrap(bootControllers)

	// 8. Optional metrics and ops listener
	var metricsServer *http.Server
	if cfg.MetricsAddr != "" {
		resolver := auth.NewResolver(cfg.IdentityJWTSecret, cfg.IdentityJWTIssuer)
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			io.WriteString(w, "ok")
		})
		mux.HandleFunc("GET /whoami", func(w http.ResponseWriter, r *http.Request) {
			token, err := auth.ExtractToken(r.Header.Get("Authorization"))
			if err != nil {
				http.Error(w, err.Error(), http.StatusUnauthorized)
				return
			}
			id, err := resolver.Resolve(token)
			if err != nil {
				http.Error(w, err.Error(), http.StatusUnauthorized)
				return
			}
			io.WriteString(w, string(id))
		})
		metricsServer = &http.Server{
			Addr:         cfg.MetricsAddr,
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 5 * time.Second,
		}
		go func() {
			log.Info("metrics listener starting", slog.String("addr", cfg.MetricsAddr))
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("metrics listener error", slog.String("error", err.Error()))
			}
		}()
	}

	// 9. Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	log.Info("shutdown signal received")

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			log.Error("metrics shutdown error", slog.String("error", err.Error()))
		}
		cancel()
	}

	// 10. Commit the snapshot. A failed commit aborts the clean shutdown:
	// exiting zero here would silently lose state.
	saveCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := svc.Snapshot(saveCtx, mgr); err != nil {
		log.Error("snapshot commit failed, refusing clean shutdown", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("adminstate stopped")
}

// openBlobStore builds the configured snapshot backend.
func openBlobStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (domain.BlobStore, func(), error) {
	switch cfg.SnapshotBackend {
	case "redis":
		store, err := snapshot.NewRedisStore(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		log.Info("snapshot backend ready", slog.String("backend", "redis"))
		return store, func() { store.Close() }, nil
	default:
		store, err := snapshot.NewBadgerStore(snapshot.BadgerConfig{Dir: cfg.BadgerDir, Logger: log})
		if err != nil {
			return nil, nil, err
		}
		log.Info("snapshot backend ready",
			slog.String("backend", "badger"),
			slog.String("dir", cfg.BadgerDir),
		)
		return store, func() { store.Close() }, nil
	}
}
