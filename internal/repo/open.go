package repo

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql

	"github.com/pkordes/daily-tasks/backend/migrations"
)

// Open returns the TodoRepo selected by dsn and a func that releases it.
// An empty dsn selects the in-memory store. Otherwise a pgx pool is opened
// and pinged, and pending migrations are applied first when migrate is set.
func Open(ctx context.Context, dsn string, migrate bool) (TodoRepo, func(), error) {
	if dsn == "" {
		slog.Warn("DATABASE_URL not set; using in-memory store, data is lost on exit")
		return NewMemoryTodoRepo(), func() {}, nil
	}

	if migrate {
		n, err := runMigrations(ctx, dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("repo.Open: %w", err)
		}
		slog.Info("migrations applied", "count", n)
	}

	// pgxpool.New does not open connections immediately; the ping does.
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("repo.Open: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("repo.Open: ping: %w", err)
	}
	slog.Info("database connection established")

	return NewTodoRepo(pool), pool.Close, nil
}

// runMigrations goes through database/sql because goose requires it.
func runMigrations(ctx context.Context, dsn string) (int, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return 0, fmt.Errorf("open migration db: %w", err)
	}
	defer db.Close()

	return migrations.Up(ctx, db)
}
