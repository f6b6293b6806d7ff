package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"

	"github.com/pkordes/daily-tasks/backend/internal/domain"
)

// todoResponse is the JSON representation of a domain.Todo.
// dueDate is always present, null when unset.
type todoResponse struct {
	ID        string     `json:"id"`
	Text      string     `json:"text"`
	Completed bool       `json:"completed"`
	DueDate   *time.Time `json:"dueDate"`
	Tags      []string   `json:"tags"`
	CreatedAt time.Time  `json:"createdAt"`
}

// ListTodos handles GET /api/todos.
// Supports ?dueBefore= (inclusive ISO 8601 ceiling) and ?tags= (comma list, AND).
func (s *Server) ListTodos(w http.ResponseWriter, r *http.Request) {
	var q domain.ListQuery
	if err := runtime.BindQueryParameter("form", true, false, "dueBefore", r.URL.Query(), &q.DueBefore); err != nil {
		s.writeError(w, r, domain.NewValidationError(domain.KindInvalidQuery, "dueBefore", "%v", err))
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "tags", r.URL.Query(), &q.Tags); err != nil {
		s.writeError(w, r, domain.NewValidationError(domain.KindInvalidQuery, "tags", "%v", err))
		return
	}

	todos, err := s.todos.List(r.Context(), q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := make([]todoResponse, len(todos))
	for i, t := range todos {
		resp[i] = todoToResponse(t)
	}
	writeJSON(w, http.StatusOK, resp)
}

// CreateTodo handles POST /api/todos.
func (s *Server) CreateTodo(w http.ResponseWriter, r *http.Request) {
	raw, err := decodeBody(r, createSchema, nil)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var body createTodoRequest
	if err := jsonUnmarshal(raw, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	in, err := body.toNewTodo()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	created, err := s.todos.Create(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, todoToResponse(created))
}

// GetTodo handles GET /api/todos/{id}.
func (s *Server) GetTodo(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	todo, err := s.todos.GetByID(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, todoToResponse(todo))
}

// UpdateTodo handles PATCH /api/todos/{id}.
// Body-level problems are reported before the lookup; the service reports
// a missing todo before an empty or invalid patch.
func (s *Server) UpdateTodo(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	raw, err := decodeBody(r, updateSchema, domain.PatchFields)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	patch, err := decodePatch(raw)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	updated, err := s.todos.Update(r.Context(), id, patch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, todoToResponse(updated))
}

// DeleteTodo handles DELETE /api/todos/{id}.
func (s *Server) DeleteTodo(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.todos.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ToggleTodo handles POST /api/todos/{id}/toggle.
func (s *Server) ToggleTodo(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	toggled, err := s.todos.Toggle(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, todoToResponse(toggled))
}

// --- mapping helpers --------------------------------------------------------

// pathID binds the {id} path segment, unescaping it.
func pathID(r *http.Request) (string, error) {
	var id string
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{
			ParamLocation: runtime.ParamLocationPath,
			Explode:       false,
			Required:      true,
		})
	if err != nil {
		return "", domain.NewValidationError(domain.KindInvalidQuery, "id", "%v", err)
	}
	return id, nil
}

// todoToResponse converts a domain.Todo into its JSON shape.
// Tags is never null in the output.
func todoToResponse(t domain.Todo) todoResponse {
	resp := todoResponse{
		ID:        t.ID,
		Text:      t.Text,
		Completed: t.Completed,
		Tags:      t.Tags,
		CreatedAt: t.CreatedAt,
	}
	if resp.Tags == nil {
		resp.Tags = []string{}
	}
	if t.DueDate != nil {
		d := *t.DueDate
		resp.DueDate = &d
	}
	return resp
}
