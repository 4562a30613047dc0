package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/Togather-Foundation/booking/internal/config"
)

func corsRequest(t *testing.T, cfg config.CORSConfig, method, origin string) *httptest.ResponseRecorder {
	t.Helper()
	handler := CORS(cfg, zerolog.Nop())(okHandler())
	req := httptest.NewRequest(method, "/api/v1/djs", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	if method == http.MethodOptions {
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestCORS_DevelopmentMode(t *testing.T) {
	rec := corsRequest(t, config.CORSConfig{AllowAllOrigins: true}, http.MethodGet, "http://localhost:5173")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	assert.Contains(t, rec.Header().Get("Access-Control-Expose-Headers"), CSRFHeader)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Methods"), "simple requests carry no preflight headers")
}

func TestCORS_ProductionAllowedOrigin(t *testing.T) {
	cfg := config.CORSConfig{AllowedOrigins: []string{"https://portal.example/"}}
	rec := corsRequest(t, cfg, http.MethodGet, "https://Portal.example")
	assert.Equal(t, "https://Portal.example", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_ProductionBlockedOrigin(t *testing.T) {
	cfg := config.CORSConfig{AllowedOrigins: []string{"https://portal.example"}}
	rec := corsRequest(t, cfg, http.MethodGet, "https://evil.example")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_NoOriginHeader(t *testing.T) {
	rec := corsRequest(t, config.CORSConfig{AllowAllOrigins: true}, http.MethodGet, "")
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rec.Header().Get("Vary"))
}

func TestCORS_PreflightRequest(t *testing.T) {
	handler := CORS(config.CORSConfig{AllowAllOrigins: true}, zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called for preflight")
	}))
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/djs", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "86400", rec.Header().Get("Access-Control-Max-Age"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPut)
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), CSRFHeader)
}

func TestCORS_PreflightFromBlockedOrigin(t *testing.T) {
	cfg := config.CORSConfig{AllowedOrigins: []string{"https://portal.example"}}
	rec := corsRequest(t, cfg, http.MethodOptions, "https://evil.example")

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Origin", rec.Header().Get("Vary"))
}
