package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Togather-Foundation/booking/internal/access"
	"github.com/Togather-Foundation/booking/internal/auth"
)

func TestRequestLogging(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		actor     *access.User
		wantLevel string
	}{
		{name: "anonymous ok", status: 0, wantLevel: "info"},
		{name: "client error", status: http.StatusNotFound, wantLevel: "warn"},
		{name: "server error", status: http.StatusBadGateway, wantLevel: "error"},
		{name: "signed in", status: http.StatusCreated, wantLevel: "info",
			actor: &access.User{ID: "u1", Role: auth.RoleProdutor}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := zerolog.New(&buf)

			h := RequestLogging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.actor != nil {
					recordActor(r.Context(), *tt.actor)
				}
				if tt.status != 0 {
					w.WriteHeader(tt.status)
				}
				_, _ = w.Write([]byte("hello"))
			}))
			req := httptest.NewRequest(http.MethodGet, "/api/v1/djs", nil)
			req = req.WithContext(logger.WithContext(req.Context()))
			h.ServeHTTP(httptest.NewRecorder(), req)

			var entry map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
			assert.Equal(t, tt.wantLevel, entry["level"])
			assert.Equal(t, "/api/v1/djs", entry["path"])
			assert.EqualValues(t, 5, entry["bytes"])
			if tt.status == 0 {
				assert.EqualValues(t, http.StatusOK, entry["status"])
			}
			if tt.actor != nil {
				assert.Equal(t, "u1", entry["user_id"])
				assert.Equal(t, "produtor", entry["role"])
			} else {
				assert.NotContains(t, entry, "user_id")
			}
		})
	}
}

func TestRequestLoggingWithoutLogger(t *testing.T) {
	h := RequestLogging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	w := httptest.NewRecorder()
	assert.NotPanics(t, func() { h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil)) })
	assert.Equal(t, http.StatusNoContent, w.Code)
}
