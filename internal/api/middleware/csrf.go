package middleware

import (
	"errors"
	"net/http"

	"github.com/gorilla/csrf"

	"github.com/Togather-Foundation/booking/internal/api/problem"
)

// CSRFHeader carries the token returned by GET /api/v1/auth/csrf.
const CSRFHeader = "X-CSRF-Token"

// CSRFProtection guards cookie-authenticated sessions with gorilla/csrf.
// Bearer requests and unsafe requests without a session cookie skip the
// check, since the browser cannot attach those credentials on its own.
// When secure is false the request is marked plaintext so the Referer
// check is skipped for local http origins.
func CSRFProtection(authKey []byte, secure bool, trustedOrigins []string, env string) func(http.Handler) http.Handler {
	opts := []csrf.Option{
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.HttpOnly(true),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.RequestHeader(CSRFHeader),
		csrf.ErrorHandler(csrfErrorHandler(env)),
	}
	if len(trustedOrigins) > 0 {
		opts = append(opts, csrf.TrustedOrigins(trustedOrigins))
	}
	protect := csrf.Protect(authKey, opts...)

	return func(next http.Handler) http.Handler {
		protected := protect(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if hasBearer(r) || (!isSafeMethod(r.Method) && !hasSessionCookie(r)) {
				next.ServeHTTP(w, r)
				return
			}
			if !secure {
				r = csrf.PlaintextHTTPRequest(r)
			}
			protected.ServeHTTP(w, r)
		})
	}
}

func csrfErrorHandler(env string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reason := csrf.FailureReason(r)
		if reason == nil {
			reason = errors.New("csrf validation failed")
		}
		problem.Write(w, r, http.StatusForbidden, problem.TypeCSRF, "CSRF token validation failed", reason, env)
	})
}

// CSRFToken returns the masked token for the current request.
func CSRFToken(r *http.Request) string {
	return csrf.Token(r)
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}

func hasSessionCookie(r *http.Request) bool {
	_, err := r.Cookie(SessionCookieName)
	return err == nil
}
