package middleware

import (
	"net/http"

	"github.com/Togather-Foundation/booking/internal/api/problem"
)

// DefaultMaxBodySize bounds every JSON request body.
const DefaultMaxBodySize int64 = 1 << 20

// RequestSize caps request bodies at maxBytes. A declared Content-Length over
// the cap is refused up front; otherwise the body is wrapped so decoders fail
// with *http.MaxBytesError, which problem.FromError maps to 413.
func RequestSize(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				problem.FromError(w, r, &http.MaxBytesError{Limit: maxBytes}, "")
				return
			}
			if r.Body != nil && r.Body != http.NoBody {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
