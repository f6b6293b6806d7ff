package handler

import (
	"net/http"

	"github.com/pkordes/daily-tasks/backend/api"
)

type healthResponse struct {
	Status     string `json:"status"`
	TodosCount int    `json:"todos_count"`
}

// GetHealth handles GET /health.
// It returns HTTP 200 with {"status":"ok","todos_count":n} when the store is reachable.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	n, err := s.todos.Count(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", TodosCount: n})
}

// GetOpenAPI handles GET /openapi.yaml by serving the embedded API document.
func (s *Server) GetOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(api.OpenAPI)
}
