// Package main is the entry point for the daily tasks API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/pkordes/daily-tasks/backend/internal/cache"
	"github.com/pkordes/daily-tasks/backend/internal/config"
	"github.com/pkordes/daily-tasks/backend/internal/handler"
	"github.com/pkordes/daily-tasks/backend/internal/middleware"
	"github.com/pkordes/daily-tasks/backend/internal/repo"
	"github.com/pkordes/daily-tasks/backend/internal/service"
)

func main() {
	// --- Config -----------------------------------------------------------
	// A .env file is optional; real environment variables take precedence.
	envFileErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		// Logged with the default handler, before ours is configured.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
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
	if envFileErr != nil {
		slog.Debug("no .env file loaded", "error", envFileErr)
	}

	ctx := context.Background()

	// --- Store ------------------------------------------------------------
	todoRepo, closeRepo, err := repo.Open(ctx, cfg.DatabaseURL, cfg.MigrateOnStart)
	if err != nil {
		slog.Error("failed to open todo store", "error", err)
		os.Exit(1)
	}
	defer closeRepo()

	// --- Service ----------------------------------------------------------
	opts := []service.Option{service.WithLogger(logger)}
	if cfg.RedisURL != "" {
		rdb, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			slog.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer rdb.Close()
		opts = append(opts, service.WithCache(cache.NewListCache(rdb, "todos:list", cfg.CacheTTL)))
		slog.Info("list cache enabled", "ttl", cfg.CacheTTL.String())
	}
	todoService := service.NewTodoService(todoRepo, opts...)

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer
	// → CORS → MaxBodySize.
	// Recoverer sits inside the logger so a recovered panic is logged as a 500.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))

	r.Mount("/", handler.NewServer(todoService, logger).Routes())

	// --- HTTP Server ------------------------------------------------------
	// Explicit timeouts prevent slowloris and resource exhaustion attacks.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", srv.Addr, "memory_store", cfg.UsesMemoryStore())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
