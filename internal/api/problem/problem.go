// Package problem writes RFC 7807 error responses.
package problem

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/Togather-Foundation/booking/internal/domain/booking"
)

const contentType = "application/problem+json"

// Problem type URIs.
const (
	TypeBase         = "https://booking.agency/problems/"
	TypeValidation   = TypeBase + "validation-error"
	TypeNotFound     = TypeBase + "not-found"
	TypeUnauthorized = TypeBase + "unauthorized"
	TypeForbidden    = TypeBase + "forbidden"
	TypeConflict     = TypeBase + "conflict"
	TypeTooLarge     = TypeBase + "payload-too-large"
	TypeRateLimited  = TypeBase + "rate-limited"
	TypeCSRF         = TypeBase + "csrf-failure"
	TypeServerError  = TypeBase + "server-error"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

type ProblemDetails struct {
	Type     string            `json:"type"`
	Title    string            `json:"title"`
	Status   int               `json:"status"`
	Detail   string            `json:"detail,omitempty"`
	Instance string            `json:"instance,omitempty"`
	Errors   map[string]string `json:"errors,omitempty"`
}

type Option func(*ProblemDetails)

func WithDetail(detail string) Option {
	return func(p *ProblemDetails) { p.Detail = detail }
}

// WithErrors attaches per-field messages keyed by JSON field name.
func WithErrors(errs map[string]string) Option {
	return func(p *ProblemDetails) { p.Errors = errs }
}

// Write sends a problem response. err's text becomes the detail only in
// development and test; elsewhere the status text is used.
func Write(w http.ResponseWriter, r *http.Request, status int, typ, title string, err error, env string, opts ...Option) {
	p := ProblemDetails{Type: typ, Title: title, Status: status}
	for _, opt := range opts {
		opt(&p)
	}
	if p.Detail == "" && err != nil {
		p.Detail = http.StatusText(status)
		if verbose(env) {
			p.Detail = err.Error()
		}
	}
	if r != nil {
		if p.Instance == "" {
			p.Instance = r.URL.Path
		}
		if err != nil {
			logProblem(r, p, err)
		}
	}
	render(w, p)
}

func verbose(env string) bool {
	return env == "development" || env == "test"
}

func logProblem(r *http.Request, p ProblemDetails, err error) {
	logger := zerolog.Ctx(r.Context())
	event := logger.Warn()
	if p.Status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Err(err).
		Int("status", p.Status).
		Str("type", p.Type).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Msg(p.Title)
}

// sentinels maps service errors onto responses, first match wins.
var sentinels = []struct {
	target error
	status int
	typ    string
	title  string
}{
	{booking.ErrNotFound, http.StatusNotFound, TypeNotFound, "Not found"},
	{booking.ErrForbidden, http.StatusForbidden, TypeForbidden, "Forbidden"},
	{booking.ErrInvalidCredentials, http.StatusUnauthorized, TypeUnauthorized, "Invalid credentials"},
	{booking.ErrConflict, http.StatusConflict, TypeConflict, "Conflict"},
	{booking.ErrInvalidReference, http.StatusUnprocessableEntity, TypeValidation, "Referenced record does not exist"},
}

// FromError maps a service error to its problem. Validation errors carry
// their field messages; unknown errors are 500s.
func FromError(w http.ResponseWriter, r *http.Request, err error, env string) {
	if verr, ok := booking.IsValidation(err); ok {
		Write(w, r, http.StatusBadRequest, TypeValidation, "Invalid request", err, env,
			WithDetail("one or more fields are invalid"), WithErrors(verr.Fields))
		return
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		Write(w, r, http.StatusRequestEntityTooLarge, TypeTooLarge, "Request body too large", err, env)
		return
	}
	for _, s := range sentinels {
		if errors.Is(err, s.target) {
			Write(w, r, s.status, s.typ, s.title, err, env)
			return
		}
	}
	Write(w, r, http.StatusInternalServerError, TypeServerError, "Server error", err, env)
}

func render(w http.ResponseWriter, p ProblemDetails) {
	body, err := json.Marshal(p)
	if err != nil {
		p = ProblemDetails{Type: "about:blank", Title: http.StatusText(http.StatusInternalServerError), Status: http.StatusInternalServerError}
		body, _ = json.Marshal(p)
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(p.Status)
	_, _ = w.Write(body)
}
