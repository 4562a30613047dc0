package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNegotiatedContentType_Defaults(t *testing.T) {
	assert.Equal(t, ContentJSON, NegotiatedContentType(nil))

	req := httptest.NewRequest(http.MethodGet, "http://example.com/api/v1/events/1", nil)
	assert.Equal(t, ContentJSON, NegotiatedContentType(req))
}

func TestContentNegotiation(t *testing.T) {
	tests := []struct {
		name   string
		url    string
		accept string
		want   string
	}{
		{"format override", "/api/v1/events/1?format=jsonld", "application/json", ContentJSONLD},
		{"format json", "/api/v1/events/1?format=json", "application/ld+json", ContentJSON},
		{"accept ld", "/api/v1/events/1", "application/ld+json", ContentJSONLD},
		{"quality wins", "/api/v1/events/1", "application/json;q=0.5, application/ld+json;q=0.9", ContentJSONLD},
		{"wildcard", "/api/v1/events/1", "*/*", ContentJSON},
		{"unsupported only", "/api/v1/events/1", "text/turtle", ContentJSON},
		{"zero quality ignored", "/api/v1/events/1", "application/ld+json;q=0, application/json", ContentJSON},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			req.Header.Set("Accept", tt.accept)
			assert.Equal(t, tt.want, negotiateContentType(req))
		})
	}
}

func TestContentNegotiation_MiddlewareSetsContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://example.com/api/v1/events/1", nil)
	req.Header.Set("Accept", "application/ld+json")
	res := httptest.NewRecorder()

	var wants bool
	ContentNegotiation(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wants = WantsJSONLD(r)
	})).ServeHTTP(res, req)

	assert.True(t, wants)
	assert.Equal(t, "Accept", res.Header().Get("Vary"))
}
