package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pkordes/daily-tasks/backend/internal/domain"
)

// errorResponse is the JSON body of every non-2xx response.
type errorResponse struct {
	Error   string        `json:"error"`
	Message string        `json:"message"`
	Details *errorDetails `json:"details,omitempty"`
}

type errorDetails struct {
	Kind   string `json:"kind"`
	Field  string `json:"field,omitempty"`
	Reason string `json:"reason"`
}

const (
	codeValidation = "VALIDATION_ERROR"
	codeNotFound   = "NOT_FOUND"
	codeTooLarge   = "PAYLOAD_TOO_LARGE"
	codeInternal   = "INTERNAL_ERROR"
)

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err onto a status code and error body.
// Unrecognised errors are logged and reported as 500 without detail.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if ve, ok := domain.AsValidationError(err); ok {
		writeJSON(w, validationStatus(ve.Kind), errorResponse{
			Error:   codeValidation,
			Message: ve.Message,
			Details: &errorDetails{Kind: string(ve.Kind), Field: ve.Field, Reason: ve.Message},
		})
		return
	}

	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: codeNotFound, Message: "Todo not found"})
	case errors.As(err, &tooLarge):
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: codeTooLarge, Message: "request body too large"})
	default:
		s.log.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: codeInternal, Message: "internal server error"})
	}
}

// validationStatus separates requests that are malformed as a whole (400)
// from well-formed requests carrying a bad field (422).
func validationStatus(kind domain.ValidationKind) int {
	switch kind {
	case domain.KindInvalidQuery, domain.KindEmptyUpdate, domain.KindMalformedBody:
		return http.StatusBadRequest
	default:
		return http.StatusUnprocessableEntity
	}
}
