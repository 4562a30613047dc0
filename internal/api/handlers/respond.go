package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Togather-Foundation/booking/internal/access"
	"github.com/Togather-Foundation/booking/internal/domain/booking"
	"github.com/Togather-Foundation/booking/internal/domain/ids"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	writeTyped(w, status, payload, "application/json")
}

func writeTyped(w http.ResponseWriter, status int, payload any, contentType string) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// listResponse wraps collections so clients can rely on a stable envelope.
type listResponse[T any] struct {
	Items []T `json:"items"`
	Count int `json:"count"`
}

func newList[T any](items []T) listResponse[T] {
	if items == nil {
		items = []T{}
	}
	return listResponse[T]{Items: items, Count: len(items)}
}

// decodeJSON reads one JSON object into dst. Malformed or unknown-field
// bodies come back as validation errors; a body over the size limit keeps
// its *http.MaxBytesError so it maps to 413.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	err := dec.Decode(dst)
	if err == nil {
		if dec.More() {
			return booking.FieldError("body", "must contain a single JSON object")
		}
		return nil
	}

	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
		tooLarge  *http.MaxBytesError
	)
	switch {
	case errors.As(err, &tooLarge):
		return err
	case errors.Is(err, io.EOF):
		return booking.FieldError("body", "is required")
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return booking.FieldError("body", "is not valid JSON")
	case errors.As(err, &typeErr):
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		return booking.FieldError(field, fmt.Sprintf("must be %s", typeErr.Type.String()))
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		name := strings.Trim(strings.TrimPrefix(err.Error(), "json: unknown field "), `"`)
		return booking.FieldError(name, "is not a recognised field")
	default:
		return booking.FieldError("body", err.Error())
	}
}

// pathID returns the {name} path value in canonical UUID form.
func pathID(r *http.Request, name string) (string, error) {
	raw := strings.TrimSpace(r.PathValue(name))
	if raw == "" {
		return "", booking.FieldError(name, "is required")
	}
	id, err := ids.ParseUUID(raw)
	if err != nil {
		return "", booking.FieldError(name, "must be a UUID")
	}
	return id, nil
}

// currentUser is only called behind RequireAuth; the zero User has no
// permissions, so a missing user fails closed in the services.
func currentUser(r *http.Request) access.User {
	user, _ := access.UserFrom(r.Context())
	return user
}
