package middleware

import (
	"context"
	"mime"
	"net/http"
	"strconv"
	"strings"
)

type contextKey string

const contentTypeKey contextKey = "negotiatedContentType"

const (
	ContentJSONLD = "application/ld+json"
	ContentJSON   = "application/json"
)

// offers maps each acceptable media range to the representation it gets.
var offers = map[string]string{
	ContentJSONLD:   ContentJSONLD,
	ContentJSON:     ContentJSON,
	"application/*": ContentJSON,
	"*/*":           ContentJSON,
}

// ContentNegotiation records whether the caller asked for plain JSON or
// JSON-LD. Only event reads currently honour JSON-LD.
func ContentNegotiation(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Accept")
		ctx := context.WithValue(r.Context(), contentTypeKey, negotiateContentType(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func NegotiatedContentType(r *http.Request) string {
	if r == nil {
		return ContentJSON
	}
	if ct, ok := r.Context().Value(contentTypeKey).(string); ok {
		return ct
	}
	return negotiateContentType(r)
}

// WantsJSONLD reports whether JSON-LD won negotiation.
func WantsJSONLD(r *http.Request) bool {
	return NegotiatedContentType(r) == ContentJSONLD
}

// negotiateContentType lets ?format= override Accept. Among Accept entries
// the highest q wins; ties go to the earlier entry.
func negotiateContentType(r *http.Request) string {
	switch strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format"))) {
	case "jsonld", "ld+json", ContentJSONLD:
		return ContentJSONLD
	case "json", ContentJSON:
		return ContentJSON
	}

	chosen, bestQ := ContentJSON, 0.0
	for _, entry := range strings.Split(r.Header.Get("Accept"), ",") {
		mediaType, params, err := mime.ParseMediaType(strings.TrimSpace(entry))
		if err != nil {
			continue
		}
		offer, ok := offers[mediaType]
		if !ok {
			continue
		}
		q := 1.0
		if raw, ok := params["q"]; ok {
			if q, err = strconv.ParseFloat(raw, 64); err != nil {
				continue
			}
		}
		if q > bestQ {
			chosen, bestQ = offer, q
		}
	}
	return chosen
}
