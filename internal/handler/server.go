// Package handler implements the HTTP handlers for the daily tasks API.
// All handlers are methods on Server. Methods are split into files by concern
// (health.go, todo.go, body.go) but share the same Server struct so they can
// access its dependencies.
package handler

import (
	"context"
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/pkordes/daily-tasks/backend/internal/domain"
)

// TodoServicer defines the business operations the todo handlers depend on.
// Defining the interface here (in the consumer package) lets handler tests
// inject a mock without touching any store.
type TodoServicer interface {
	List(ctx context.Context, q domain.ListQuery) ([]domain.Todo, error)
	GetByID(ctx context.Context, id string) (domain.Todo, error)
	Create(ctx context.Context, in domain.NewTodo) (domain.Todo, error)
	Update(ctx context.Context, id string, patch domain.TodoPatch) (domain.Todo, error)
	Delete(ctx context.Context, id string) error
	Toggle(ctx context.Context, id string) (domain.Todo, error)
	Count(ctx context.Context) (int, error)
}

// Server holds the dependencies shared by every handler.
type Server struct {
	todos TodoServicer
	log   *slog.Logger
}

// NewServer constructs the Server. A nil logger falls back to slog.Default().
func NewServer(todos TodoServicer, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{todos: todos, log: log}
}

// Routes returns a chi router with every API endpoint registered.
// Mount it in main.go behind the shared middleware chain.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/health", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)

	r.Route("/api/todos", func(r chi.Router) {
		r.Get("/", s.ListTodos)
		r.Post("/", s.CreateTodo)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetTodo)
			r.Patch("/", s.UpdateTodo)
			r.Delete("/", s.DeleteTodo)
			r.Post("/toggle", s.ToggleTodo)
		})
	})

	return r
}
