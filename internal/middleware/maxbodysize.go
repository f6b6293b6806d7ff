package middleware

import (
	"net/http"
)

// NewMaxBodySizeHandler returns a middleware that caps request bodies at limit
// bytes. A declared Content-Length over the limit is rejected with 413 before
// the next handler runs. Otherwise the body is wrapped in http.MaxBytesReader,
// so a streaming body fails with *http.MaxBytesError once it crosses the limit.
// A limit <= 0 disables the check.
func NewMaxBodySizeHandler(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limit <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusRequestEntityTooLarge)
				_, _ = w.Write([]byte(`{"error":"PAYLOAD_TOO_LARGE","message":"request body too large"}` + "\n"))
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
