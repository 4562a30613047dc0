package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func respondWith(status int, body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	})
}

func TestMethodMux(t *testing.T) {
	mux := methodMux(map[string]http.Handler{
		http.MethodGet:  respondWith(http.StatusOK, "list"),
		http.MethodPost: respondWith(http.StatusCreated, "created"),
	})

	tests := []struct {
		method     string
		wantStatus int
		wantBody   string
		wantAllow  string
	}{
		{method: http.MethodGet, wantStatus: http.StatusOK, wantBody: "list"},
		{method: http.MethodPost, wantStatus: http.StatusCreated, wantBody: "created"},
		{method: http.MethodHead, wantStatus: http.StatusOK},
		{method: http.MethodPut, wantStatus: http.StatusMethodNotAllowed, wantAllow: "GET, HEAD, POST"},
		{method: http.MethodDelete, wantStatus: http.StatusMethodNotAllowed, wantAllow: "GET, HEAD, POST"},
		{method: http.MethodOptions, wantStatus: http.StatusMethodNotAllowed, wantAllow: "GET, HEAD, POST"},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(tt.method, "/api/v1/djs", nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, w.Body.String())
			}
			assert.Equal(t, tt.wantAllow, w.Header().Get("Allow"))
		})
	}
}

func TestAllowedMethods(t *testing.T) {
	h := respondWith(http.StatusOK, "")
	tests := []struct {
		name     string
		byMethod map[string]http.Handler
		want     string
	}{
		{name: "none", byMethod: map[string]http.Handler{}, want: ""},
		{name: "post only", byMethod: map[string]http.Handler{http.MethodPost: h}, want: "POST"},
		{name: "get implies head", byMethod: map[string]http.Handler{http.MethodGet: h}, want: "GET, HEAD"},
		{
			name:     "sorted",
			byMethod: map[string]http.Handler{http.MethodPut: h, http.MethodDelete: h, http.MethodGet: h},
			want:     "DELETE, GET, HEAD, PUT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, allowedMethods(tt.byMethod))
		})
	}
}

func TestMethodMuxWithoutHandlers(t *testing.T) {
	w := httptest.NewRecorder()
	methodMux(nil).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
