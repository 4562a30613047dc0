package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/Togather-Foundation/booking/internal/access"
)

type responseWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *responseWriter) WriteHeader(statusCode int) {
	w.status = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *responseWriter) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(p)
	w.bytes += n
	return n, err
}

func (w *responseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// statusCode is what the client saw; a handler that never wrote sent 200.
func (w *responseWriter) statusCode() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

// RequestLogging writes one line per request through the request-scoped
// logger. 5xx log at error, 4xx at warn.
func RequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w}

		// Authenticate runs further down the chain and records the actor here.
		holder := &actorHolder{}
		next.ServeHTTP(rw, r.WithContext(withActorHolder(r.Context(), holder)))

		status := rw.statusCode()
		event := LoggerFromContext(r.Context()).WithLevel(levelFor(status))
		if holder.user != nil {
			event = event.Str("user_id", holder.user.ID).Str("role", string(holder.user.Role))
		}
		event.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("bytes", rw.bytes).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

func levelFor(status int) zerolog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return zerolog.ErrorLevel
	case status >= http.StatusBadRequest:
		return zerolog.WarnLevel
	}
	return zerolog.InfoLevel
}

type actorHolder struct {
	user *access.User
}

const actorHolderKey contextKey = "actor_holder"

func withActorHolder(ctx context.Context, h *actorHolder) context.Context {
	return context.WithValue(ctx, actorHolderKey, h)
}

func recordActor(ctx context.Context, user access.User) {
	if h, ok := ctx.Value(actorHolderKey).(*actorHolder); ok {
		h.user = &user
	}
}
