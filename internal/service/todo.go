// Package service contains the business logic for the daily tasks API.
// Services validate inputs, enforce business rules, and orchestrate repo calls.
// No SQL lives here; services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/pkordes/daily-tasks/backend/internal/domain"
	"github.com/pkordes/daily-tasks/backend/internal/repo"
)

// ListCache is the optional read-through cache for List results.
// cache.ListCache implements it against Redis.
type ListCache interface {
	Generation(ctx context.Context) (int64, error)
	Get(ctx context.Context, gen int64, key string) ([]domain.Todo, bool, error)
	Set(ctx context.Context, gen int64, key string, todos []domain.Todo) error
	Invalidate(ctx context.Context) error
}

// TodoService implements the list, create, update, delete and toggle operations.
type TodoService struct {
	repo  repo.TodoRepo
	cache ListCache
	sf    singleflight.Group
	newID func() string
	now   func() time.Time
	log   *slog.Logger
}

// Option configures a TodoService.
type Option func(*TodoService)

// WithCache enables list caching. Cache failures are logged and bypassed.
func WithCache(c ListCache) Option {
	return func(s *TodoService) { s.cache = c }
}

// WithIDGenerator replaces the random UUID generator.
func WithIDGenerator(fn func() string) Option {
	return func(s *TodoService) { s.newID = fn }
}

// WithClock replaces the wall clock used for CreatedAt.
func WithClock(fn func() time.Time) Option {
	return func(s *TodoService) { s.now = fn }
}

// WithLogger sets the logger used for cache warnings. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *TodoService) { s.log = l }
}

// NewTodoService constructs a TodoService backed by the provided TodoRepo.
func NewTodoService(r repo.TodoRepo, opts ...Option) *TodoService {
	s := &TodoService{
		repo:  r,
		newID: uuid.NewString,
		now:   defaultClock,
		log:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// defaultClock truncates to microseconds, the resolution Postgres stores,
// so both stores report identical CreatedAt values.
func defaultClock() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// List returns the todos matching q, newest first.
// Returns a *domain.ValidationError if q.DueBefore does not parse.
func (s *TodoService) List(ctx context.Context, q domain.ListQuery) ([]domain.Todo, error) {
	f, err := domain.ParseTodoFilter(q)
	if err != nil {
		return nil, fmt.Errorf("service.TodoService.List: %w", err)
	}
	if s.cache == nil {
		return s.scan(ctx, f)
	}
	return s.cachedList(ctx, f)
}

func (s *TodoService) scan(ctx context.Context, f domain.TodoFilter) ([]domain.Todo, error) {
	todos, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.TodoService.List: %w", err)
	}
	return f.Apply(todos), nil
}

// cachedList serves from the cache, coalescing concurrent misses for the same
// generation and filter into one store scan.
func (s *TodoService) cachedList(ctx context.Context, f domain.TodoFilter) ([]domain.Todo, error) {
	gen, err := s.cache.Generation(ctx)
	if err != nil {
		s.log.WarnContext(ctx, "list cache unavailable", "error", err)
		return s.scan(ctx, f)
	}
	key := f.Key()

	// The shared load outlives any single caller, so it must not inherit
	// the first caller's cancellation.
	v, err, _ := s.sf.Do(strconv.FormatInt(gen, 10)+":"+key, func() (any, error) {
		loadCtx := context.WithoutCancel(ctx)
		cached, ok, err := s.cache.Get(loadCtx, gen, key)
		if err != nil {
			s.log.WarnContext(loadCtx, "list cache read failed", "error", err)
		} else if ok {
			return cached, nil
		}

		todos, err := s.scan(loadCtx, f)
		if err != nil {
			return nil, err
		}
		if err := s.cache.Set(loadCtx, gen, key, todos); err != nil {
			s.log.WarnContext(loadCtx, "list cache write failed", "error", err)
		}
		return todos, nil
	})
	if err != nil {
		return nil, err
	}
	return slices.Clone(v.([]domain.Todo)), nil
}

// GetByID returns a single todo.
// Returns domain.ErrNotFound if it does not exist.
func (s *TodoService) GetByID(ctx context.Context, id string) (domain.Todo, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Todo{}, fmt.Errorf("service.TodoService.GetByID: %w", err)
	}
	return t, nil
}

// Create validates in and persists a new todo with a fresh ID, the current
// time as CreatedAt, and Completed false. Nil tags become an empty list.
func (s *TodoService) Create(ctx context.Context, in domain.NewTodo) (domain.Todo, error) {
	if err := domain.ValidateText(in.Text); err != nil {
		return domain.Todo{}, fmt.Errorf("service.TodoService.Create: %w", err)
	}

	tags := slices.Clone(in.Tags)
	if tags == nil {
		tags = []string{}
	}
	todo := domain.Todo{
		ID:        s.newID(),
		Text:      in.Text,
		Completed: false,
		DueDate:   in.DueDate,
		Tags:      tags,
		CreatedAt: s.now(),
	}

	created, err := s.repo.Insert(ctx, todo.Clone())
	if err != nil {
		return domain.Todo{}, fmt.Errorf("service.TodoService.Create: %w", err)
	}
	s.invalidate(ctx)
	return created, nil
}

// Update applies patch to the todo with the given id.
// Checks run in this order: existence (domain.ErrNotFound), empty patch,
// then per-field constraints. Nothing is written unless all pass.
func (s *TodoService) Update(ctx context.Context, id string, patch domain.TodoPatch) (domain.Todo, error) {
	updated, err := s.repo.Mutate(ctx, id, func(cur domain.Todo) (domain.Todo, error) {
		if patch.IsEmpty() {
			return domain.Todo{}, domain.NewValidationError(domain.KindEmptyUpdate, "",
				"at least one field must be provided for update")
		}
		if err := patch.Validate(); err != nil {
			return domain.Todo{}, err
		}
		return patch.Apply(cur), nil
	})
	if err != nil {
		return domain.Todo{}, fmt.Errorf("service.TodoService.Update: %w", err)
	}
	s.invalidate(ctx)
	return updated, nil
}

// Toggle flips Completed. Applying it twice restores the original value.
func (s *TodoService) Toggle(ctx context.Context, id string) (domain.Todo, error) {
	updated, err := s.repo.Mutate(ctx, id, func(cur domain.Todo) (domain.Todo, error) {
		cur.Completed = !cur.Completed
		return cur, nil
	})
	if err != nil {
		return domain.Todo{}, fmt.Errorf("service.TodoService.Toggle: %w", err)
	}
	s.invalidate(ctx)
	return updated, nil
}

// Delete removes a todo. Deleting a missing todo returns domain.ErrNotFound,
// including the second time the same id is deleted.
func (s *TodoService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.TodoService.Delete: %w", err)
	}
	s.invalidate(ctx)
	return nil
}

// Count returns the number of stored todos.
func (s *TodoService) Count(ctx context.Context) (int, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("service.TodoService.Count: %w", err)
	}
	return n, nil
}

func (s *TodoService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.WarnContext(ctx, "list cache invalidation failed", "error", err)
	}
}
