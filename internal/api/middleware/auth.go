package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Togather-Foundation/booking/internal/access"
	"github.com/Togather-Foundation/booking/internal/api/problem"
	"github.com/Togather-Foundation/booking/internal/auth"
	"github.com/Togather-Foundation/booking/internal/domain/booking"
)

// SessionCookieName holds the JWT for browser sessions.
const SessionCookieName = "booking_token"

// UserResolver loads the current profile for a token subject.
type UserResolver interface {
	Resolve(ctx context.Context, profileID string) (access.User, error)
}

// Authenticate attaches the caller to the context when a token is present.
// The Authorization header wins over the session cookie. Anonymous requests
// pass through; a bad token is rejected with 401.
func Authenticate(jwt *auth.JWTManager, resolver UserResolver, env string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := sessionToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := jwt.Validate(token)
			if err != nil {
				problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "Invalid or expired token", err, env)
				return
			}

			user, err := resolver.Resolve(r.Context(), claims.Subject)
			if err != nil {
				if errors.Is(err, booking.ErrNotFound) {
					problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "Unknown account", err, env)
					return
				}
				problem.FromError(w, r, err, env)
				return
			}

			trace.SpanFromContext(r.Context()).SetAttributes(
				attribute.String("user.id", user.ID),
				attribute.String("user.role", string(user.Role)),
			)
			recordActor(r.Context(), user)

			ctx := access.WithUser(r.Context(), user)
			logger := LoggerFromContext(ctx).With().Str("user_id", user.ID).Logger()
			ctx = logger.WithContext(ctx)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth rejects anonymous requests with 401.
func RequireAuth(env string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := access.UserFrom(r.Context()); !ok {
				problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "Authentication required", problem.ErrUnauthorized, env)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole admits only the listed roles: 401 when anonymous, 403 otherwise.
func RequireRole(env string, roles ...auth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := access.UserFrom(r.Context())
			if !ok {
				problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "Authentication required", problem.ErrUnauthorized, env)
				return
			}
			for _, role := range roles {
				if user.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			problem.Write(w, r, http.StatusForbidden, problem.TypeForbidden, "Insufficient role", problem.ErrForbidden, env)
		})
	}
}

func sessionToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		token, err := auth.TokenFromHeader(header)
		if err != nil {
			// A malformed header must not fall back to the cookie.
			return header
		}
		return token
	}
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

func hasBearer(r *http.Request) bool {
	return strings.HasPrefix(strings.ToLower(r.Header.Get("Authorization")), "bearer ")
}
