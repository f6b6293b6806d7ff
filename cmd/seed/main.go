// Package main inserts fake todos through the service layer into the store
// selected by DATABASE_URL. With no DATABASE_URL the in-memory store is used,
// which only exercises the generator.
package main

import (
	"context"
	"flag"
	"log/slog"
	"math/rand/v2"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/pkordes/daily-tasks/backend/internal/config"
	"github.com/pkordes/daily-tasks/backend/internal/repo"
	"github.com/pkordes/daily-tasks/backend/internal/seed"
	"github.com/pkordes/daily-tasks/backend/internal/service"
)

func main() {
	n := flag.Int("n", 100, "number of todos to insert")
	seedValue := flag.Uint64("seed", uint64(time.Now().UnixNano()), "random seed")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	ctx := context.Background()
	todoRepo, closeRepo, err := repo.Open(ctx, cfg.DatabaseURL, cfg.MigrateOnStart)
	if err != nil {
		slog.Error("failed to open todo store", "error", err)
		os.Exit(1)
	}
	defer closeRepo()

	svc := service.NewTodoService(todoRepo)
	today := time.Now()
	plans := seed.Generate(rand.New(rand.NewPCG(*seedValue, *seedValue>>1)), today, *n)

	slog.Info("inserting fake todos", "count", *n, "seed", *seedValue)
	stats, err := seed.Run(ctx, svc, plans, today)
	if err != nil {
		slog.Error("seeding failed", "inserted", stats.Inserted, "error", err)
		closeRepo()
		os.Exit(1)
	}

	slog.Info("seeding complete",
		"inserted", stats.Inserted,
		"completed", stats.Completed,
		"overdue", stats.Overdue,
		"personal", stats.ByTag["personal"],
		"groceries", stats.ByTag["groceries"],
		"course", stats.ByTag["course"],
		"work", stats.ByTag["work"],
	)
}
