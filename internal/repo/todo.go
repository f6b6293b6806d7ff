// Package repo contains all storage access logic for the daily tasks API.
// TodoRepo has two implementations: Postgres (durable) and in-memory.
// No business logic lives here, only persistence and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/daily-tasks/backend/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup. Begin on a pgx.Tx opens a
// savepoint, so Mutate works the same way inside a test transaction.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// MutateFunc receives the current record and returns its replacement.
// Returning an error aborts the mutation and leaves the stored record untouched.
type MutateFunc func(current domain.Todo) (domain.Todo, error)

// TodoRepo defines the persistence operations for Todos.
// The service layer depends on this interface, not a concrete implementation,
// so the filter and mutation logic never knows which store is active.
type TodoRepo interface {
	// Insert stores a fully-populated todo and returns the persisted record.
	Insert(ctx context.Context, todo domain.Todo) (domain.Todo, error)

	// GetByID retrieves a single todo.
	// Returns domain.ErrNotFound if no todo with that ID exists.
	GetByID(ctx context.Context, id string) (domain.Todo, error)

	// Delete removes a todo by ID. Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id string) error

	// List returns every todo in a deterministic order.
	List(ctx context.Context) ([]domain.Todo, error)

	// Mutate performs an atomic read-modify-write on one todo. The lookup
	// happens first: domain.ErrNotFound is returned before fn runs.
	// Concurrent Mutate calls on the same ID are serialized.
	Mutate(ctx context.Context, id string, fn MutateFunc) (domain.Todo, error)

	// Count returns the number of stored todos.
	Count(ctx context.Context) (int, error)
}

// pgTodoRepo is the Postgres implementation of TodoRepo.
type pgTodoRepo struct {
	db db
}

// NewTodoRepo constructs a TodoRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewTodoRepo(db db) TodoRepo {
	return &pgTodoRepo{db: db}
}

const todoColumns = `id, text, completed, due_date, tags, created_at`

// Insert writes a new todo row and returns the full persisted record.
func (r *pgTodoRepo) Insert(ctx context.Context, todo domain.Todo) (domain.Todo, error) {
	const q = `
		INSERT INTO todos (id, text, completed, due_date, tags, created_at)
		VALUES (@id, @text, @completed, @due_date, @tags, @created_at)
		RETURNING ` + todoColumns

	row := r.db.QueryRow(ctx, q, todoArgs(todo))
	result, err := scanTodo(row)
	if err != nil {
		return domain.Todo{}, fmt.Errorf("repo.TodoRepo.Insert: %w", err)
	}
	return result, nil
}

// GetByID retrieves a todo by primary key.
func (r *pgTodoRepo) GetByID(ctx context.Context, id string) (domain.Todo, error) {
	const q = `SELECT ` + todoColumns + ` FROM todos WHERE id = @id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	result, err := scanTodo(row)
	if err != nil {
		return domain.Todo{}, fmt.Errorf("repo.TodoRepo.GetByID: %w", err)
	}
	return result, nil
}

// Delete removes a todo by primary key.
func (r *pgTodoRepo) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM todos WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.TodoRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TodoRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// List returns all todos newest first, with id as the tie-breaker.
// Tag filtering happens in the service after this scan; array containment
// operators are not portable across relational backends.
func (r *pgTodoRepo) List(ctx context.Context) ([]domain.Todo, error) {
	const q = `SELECT ` + todoColumns + ` FROM todos ORDER BY created_at DESC, id`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.TodoRepo.List: %w", err)
	}
	defer rows.Close()

	todos := []domain.Todo{}
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.TodoRepo.List: scan: %w", err)
		}
		todos = append(todos, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.TodoRepo.List: rows: %w", err)
	}
	return todos, nil
}

// Mutate locks the row with SELECT ... FOR UPDATE, applies fn, and writes the
// result back in the same transaction. id and created_at are never rewritten.
func (r *pgTodoRepo) Mutate(ctx context.Context, id string, fn MutateFunc) (domain.Todo, error) {
	const (
		sel = `SELECT ` + todoColumns + ` FROM todos WHERE id = @id FOR UPDATE`
		upd = `
			UPDATE todos
			SET text      = @text,
			    completed = @completed,
			    due_date  = @due_date,
			    tags      = @tags
			WHERE id = @id
			RETURNING ` + todoColumns
	)

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return domain.Todo{}, fmt.Errorf("repo.TodoRepo.Mutate: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	current, err := scanTodo(tx.QueryRow(ctx, sel, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Todo{}, fmt.Errorf("repo.TodoRepo.Mutate: %w", err)
	}

	next, err := fn(current)
	if err != nil {
		return domain.Todo{}, err
	}
	next.ID = current.ID

	result, err := scanTodo(tx.QueryRow(ctx, upd, todoArgs(next)))
	if err != nil {
		return domain.Todo{}, fmt.Errorf("repo.TodoRepo.Mutate: update: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.Todo{}, fmt.Errorf("repo.TodoRepo.Mutate: commit: %w", err)
	}
	return result, nil
}

// Count returns the number of rows in todos.
func (r *pgTodoRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM todos`).Scan(&n); err != nil {
		return 0, fmt.Errorf("repo.TodoRepo.Count: %w", err)
	}
	return n, nil
}

// todoArgs maps a domain.Todo onto the named parameters used by the queries above.
func todoArgs(t domain.Todo) pgx.NamedArgs {
	tags := t.Tags
	if tags == nil {
		tags = []string{}
	}
	return pgx.NamedArgs{
		"id":         t.ID,
		"text":       t.Text,
		"completed":  t.Completed,
		"due_date":   t.DueDate, // nil becomes NULL
		"tags":       tags,
		"created_at": t.CreatedAt,
	}
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing scanTodo to be
// reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// scanTodo maps a single database row into a domain.Todo.
func scanTodo(s scanner) (domain.Todo, error) {
	var (
		t   domain.Todo
		due pgtype.Timestamptz
	)

	err := s.Scan(&t.ID, &t.Text, &t.Completed, &due, &t.Tags, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Todo{}, domain.ErrNotFound
		}
		return domain.Todo{}, err
	}

	if due.Valid {
		d := due.Time
		t.DueDate = &d
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	return t, nil
}
