package repo

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/pkordes/daily-tasks/backend/internal/domain"
)

// memTodoRepo is the in-process implementation of TodoRepo.
// order records insertion order so List is deterministic; Go map iteration is not.
// Records are cloned on the way in and out, so callers never share state with the store.
type memTodoRepo struct {
	mu    sync.RWMutex
	todos map[string]domain.Todo
	order []string
}

// NewMemoryTodoRepo constructs an empty in-memory TodoRepo.
// Contents are lost when the process exits.
func NewMemoryTodoRepo() TodoRepo {
	return &memTodoRepo{todos: make(map[string]domain.Todo)}
}

func (r *memTodoRepo) Insert(_ context.Context, todo domain.Todo) (domain.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.todos[todo.ID]; exists {
		return domain.Todo{}, fmt.Errorf("repo.memTodoRepo.Insert: duplicate id %q", todo.ID)
	}
	stored := todo.Clone()
	r.todos[todo.ID] = stored
	r.order = append(r.order, todo.ID)
	return stored.Clone(), nil
}

func (r *memTodoRepo) GetByID(_ context.Context, id string) (domain.Todo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.todos[id]
	if !ok {
		return domain.Todo{}, fmt.Errorf("repo.memTodoRepo.GetByID: %w", domain.ErrNotFound)
	}
	return t.Clone(), nil
}

func (r *memTodoRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.todos[id]; !ok {
		return fmt.Errorf("repo.memTodoRepo.Delete: %w", domain.ErrNotFound)
	}
	delete(r.todos, id)
	if i := slices.Index(r.order, id); i >= 0 {
		r.order = slices.Delete(r.order, i, i+1)
	}
	return nil
}

// List returns todos in insertion order.
func (r *memTodoRepo) List(_ context.Context) ([]domain.Todo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Todo, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.todos[id].Clone())
	}
	return out, nil
}

// Mutate holds the write lock for the whole read-modify-write, which serializes
// every mutation, not only those on the same ID.
func (r *memTodoRepo) Mutate(_ context.Context, id string, fn MutateFunc) (domain.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.todos[id]
	if !ok {
		return domain.Todo{}, fmt.Errorf("repo.memTodoRepo.Mutate: %w", domain.ErrNotFound)
	}

	next, err := fn(current.Clone())
	if err != nil {
		return domain.Todo{}, err
	}
	next.ID = current.ID
	next.CreatedAt = current.CreatedAt

	stored := next.Clone()
	r.todos[id] = stored
	return stored.Clone(), nil
}

func (r *memTodoRepo) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.todos), nil
}
