// Package main is the entry point for the RideRent search API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/pkordes/riderent/backend/internal/config"
	"github.com/pkordes/riderent/backend/internal/handler"
	"github.com/pkordes/riderent/backend/internal/history"
	"github.com/pkordes/riderent/backend/internal/middleware"
	"github.com/pkordes/riderent/backend/internal/rentalapi"
	"github.com/pkordes/riderent/backend/internal/repo"
	"github.com/pkordes/riderent/backend/internal/service"
	"github.com/pkordes/riderent/backend/migrations"
	"github.com/pkordes/riderent/backend/spec"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// --- Logger -----------------------------------------------------------
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- History storage --------------------------------------------------
	store, closeStore, err := openHistoryStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	// --- Services ---------------------------------------------------------
	// One HTTP client for every call to the rental API. The per-session city
	// fetch has its own, shorter deadline on top of this.
	api := rentalapi.New(cfg.APIBaseURL, &http.Client{Timeout: 15 * time.Second})

	sessions := service.NewSessionService(
		api,
		history.NewRecorder(store, logger, time.Now),
		logger,
		service.SessionConfig{
			Variant:      cfg.SearchVariant,
			Location:     cfg.Timezone,
			TTL:          cfg.SessionTTL,
			FetchTimeout: cfg.CityFetchTimeout,
		},
		time.Now,
	)
	defer sessions.Shutdown()

	results := service.NewResultsService(api)
	bookings := service.NewBookingService(time.Now, cfg.Timezone)

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer
	// → CORS → rate limit → body cap.
	// RealIP must run before the rate limiter so buckets are keyed by the
	// client address rather than the proxy's.
	limiter := middleware.NewIPRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, logger)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(limiter.Handler)
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))

	srv := handler.NewServer(sessions, results, bookings, spec.OpenAPI, logger)
	r.Mount("/", srv.Routes())

	// --- HTTP Server ------------------------------------------------------
	// Explicit timeouts prevent slowloris and resource exhaustion attacks.
	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 20 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("server starting", "addr", httpSrv.Addr, "variant", cfg.SearchVariant, "history", cfg.HistoryBackend)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	// Idle sessions are swept at a quarter of their TTL.
	g.Go(func() error {
		return sessions.RunSweeper(gctx, cfg.SessionTTL/4)
	})

	g.Go(func() error {
		t := time.NewTicker(time.Minute)
		defer t.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-t.C:
				if n := limiter.Prune(10 * time.Minute); n > 0 {
					slog.Debug("pruned idle rate limiters", "count", n)
				}
			}
		}
	})

	// Graceful shutdown: wait for OS signal (or a failed goroutine), then give
	// in-flight requests up to 15 seconds to complete.
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info("server stopped")
	return nil
}

// openHistoryStore builds the configured recent-location store and returns a
// func that releases its connections.
func openHistoryStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (history.Store, func(), error) {
	switch cfg.HistoryBackend {
	case config.HistoryRedis:
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("connect to redis: %w", err)
		}
		logger.Info("redis connection established")
		return history.NewRedisStore(client), func() { _ = client.Close() }, nil

	case config.HistoryPostgres:
		// pgxpool manages a pool of Postgres connections.
		// New() does not open connections immediately; the first query does.
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("create database pool: %w", err)
		}
		// Verify the DB is reachable before accepting traffic.
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}
		if err := migrate(ctx, pool, logger); err != nil {
			pool.Close()
			return nil, nil, err
		}
		logger.Info("database connection established")
		return repo.NewHistoryRepo(pool), pool.Close, nil

	default:
		return history.NewMemoryStore(), func() {}, nil
	}
}

// migrate applies pending goose migrations through a database/sql view of the pool.
func migrate(ctx context.Context, pool *pgxpool.Pool, logger *slog.Logger) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}
	applied, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("migrate up: %w", err)
	}
	for _, res := range applied {
		logger.Info("migration applied", "version", res.Source.Version, "duration", res.Duration)
	}
	return nil
}
