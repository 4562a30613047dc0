package middleware

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Togather-Foundation/booking/internal/domain/ids"
)

const requestIDHeader = "X-Request-ID"

const requestIDKey contextKey = "request_id"

// CorrelationID tags each request with an id: the caller's X-Request-ID
// when it is short printable ASCII, otherwise a fresh ULID. The id is
// echoed on the response, set on the active span and attached to a
// request-scoped logger.
func CorrelationID(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(requestIDHeader)
			if !usableRequestID(id) {
				id = newRequestID()
			}
			w.Header().Set(requestIDHeader, id)
			trace.SpanFromContext(r.Context()).SetAttributes(attribute.String("request_id", id))

			ctx := context.WithValue(r.Context(), requestIDKey, id)
			ctx = logger.With().Str("request_id", id).Logger().WithContext(ctx)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func usableRequestID(id string) bool {
	if id == "" || len(id) > 128 {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}

func newRequestID() string {
	if id, err := ids.NewULID(); err == nil {
		return id
	}
	return ids.NewUUID()
}

// GetRequestID returns the id CorrelationID assigned, or "".
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// LoggerFromContext returns the request logger, or a disabled logger
// outside a request.
func LoggerFromContext(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	nop := zerolog.Nop()
	return &nop
}
