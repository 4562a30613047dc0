package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func healthServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestPerformHealthCheck(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		strict   bool
		wantCode int // 0 means success
		wantOut  string
	}{
		{
			name:    "healthy server",
			status:  http.StatusOK,
			body:    `{"status":"healthy","checks":{"database":{"status":"pass"},"migrations":{"status":"pass"}}}`,
			wantOut: "healthy (2 checks)",
		},
		{
			name:    "degraded passes by default",
			status:  http.StatusOK,
			body:    `{"status":"degraded","checks":{"database":{"status":"pass"},"realtime":{"status":"warn"}}}`,
			wantOut: "degraded (2 checks)",
		},
		{
			name:     "degraded fails when strict",
			status:   http.StatusOK,
			body:     `{"status":"degraded"}`,
			strict:   true,
			wantCode: exitUnhealthy,
		},
		{
			name:     "unhealthy server (503)",
			status:   http.StatusServiceUnavailable,
			body:     `{"status":"unhealthy","checks":{"database":{"status":"fail"}}}`,
			wantCode: exitUnhealthy,
		},
		{
			name:     "503 without a body",
			status:   http.StatusServiceUnavailable,
			body:     ``,
			wantCode: exitUnhealthy,
		},
		{
			name:     "invalid response",
			status:   http.StatusOK,
			body:     `<html>oops</html>`,
			wantCode: exitInvalidResponse,
		},
		{
			name:     "missing status",
			status:   http.StatusOK,
			body:     `{"checks":{}}`,
			wantCode: exitInvalidResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := healthServer(t, tt.status, tt.body)
			var out bytes.Buffer
			err := performHealthCheck(context.Background(), &out, healthcheckOptions{
				url:     srv.URL + "/health",
				timeout: time.Second,
				strict:  tt.strict,
			})

			if tt.wantCode == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if !strings.Contains(out.String(), tt.wantOut) {
					t.Errorf("expected output to contain %q, got %q", tt.wantOut, out.String())
				}
				return
			}
			if err == nil {
				t.Fatal("expected error but got none")
			}
			if got := exitCode(err); got != tt.wantCode {
				t.Errorf("exit code = %d, want %d (err: %v)", got, tt.wantCode, err)
			}
		})
	}
}

func TestPerformHealthCheckUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL + "/health"
	srv.Close()

	err := performHealthCheck(context.Background(), &bytes.Buffer{}, healthcheckOptions{url: url, timeout: time.Second})
	if err == nil {
		t.Fatal("expected error for unreachable server")
	}
	if got := exitCode(err); got != exitUnhealthy {
		t.Errorf("exit code = %d, want %d", got, exitUnhealthy)
	}
}

func TestPerformHealthCheckTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	}))
	defer srv.Close()

	start := time.Now()
	err := performHealthCheck(context.Background(), &bytes.Buffer{}, healthcheckOptions{url: srv.URL, timeout: 50 * time.Millisecond})
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("timeout not honoured: took %v", elapsed)
	}
}

func TestDefaultHealthURL(t *testing.T) {
	t.Setenv("SERVER_PORT", "")
	if got := defaultHealthURL(); got != "http://localhost:8080/health" {
		t.Errorf("default url = %q", got)
	}
	t.Setenv("SERVER_PORT", "9191")
	if got := defaultHealthURL(); got != "http://localhost:9191/health" {
		t.Errorf("url with SERVER_PORT = %q", got)
	}
}

func TestHealthcheckCommandFlags(t *testing.T) {
	cmd := newHealthcheckCommand()
	for _, flag := range []string{"url", "timeout", "strict"} {
		if cmd.Flags().Lookup(flag) == nil {
			t.Errorf("expected flag %q", flag)
		}
	}
	if got := cmd.Flags().Lookup("timeout").DefValue; got != "5s" {
		t.Errorf("timeout default = %s, want 5s", got)
	}
}
