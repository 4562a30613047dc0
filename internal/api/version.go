package api

import (
	"encoding/json"
	"net/http"
	"runtime"
)

// BuildInfo is served at /version. Values come from ldflags at build time.
type BuildInfo struct {
	Service    string `json:"service"`
	Version    string `json:"version"`
	GitCommit  string `json:"git_commit"`
	BuildDate  string `json:"build_date"`
	GoVersion  string `json:"go_version"`
	APIVersion string `json:"api_version"`
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

// NewBuildInfo fills blanks with "dev" and "unknown".
func NewBuildInfo(version, gitCommit, buildDate string) BuildInfo {
	return BuildInfo{
		Service:    "booking",
		Version:    orDefault(version, "dev"),
		GitCommit:  orDefault(gitCommit, "unknown"),
		BuildDate:  orDefault(buildDate, "unknown"),
		GoVersion:  runtime.Version(),
		APIVersion: "v1",
	}
}

// VersionHandler is public; probes and the portal footer read it.
func VersionHandler(version, gitCommit, buildDate string) http.Handler {
	body, _ := json.Marshal(NewBuildInfo(version, gitCommit, buildDate))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-cache")
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodGet {
			_, _ = w.Write(body)
		}
	})
}
