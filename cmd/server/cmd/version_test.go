package cmd

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/Togather-Foundation/booking/internal/api"
)

func setVersion(t *testing.T, version, commit, date string) {
	t.Helper()
	origVersion, origCommit, origDate := Version, GitCommit, BuildDate
	t.Cleanup(func() {
		Version, GitCommit, BuildDate = origVersion, origCommit, origDate
	})
	Version, GitCommit, BuildDate = version, commit, date
}

func TestVersionCommand(t *testing.T) {
	setVersion(t, "1.0.0", "abc123", "2026-01-27T12:00:00Z")

	output, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version command failed: %v", err)
	}

	expected := []string{
		"Booking Portal",
		"Version:    1.0.0",
		"Git commit: abc123",
		"Build date: 2026-01-27T12:00:00Z",
		"Go version:",
		"Platform:",
	}
	for _, want := range expected {
		if !strings.Contains(output, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, output)
		}
	}
}

func TestVersionCommandDefaultValues(t *testing.T) {
	setVersion(t, "dev", "unknown", "unknown")

	output, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version command failed: %v", err)
	}
	for _, want := range []string{"Version:    dev", "Git commit: unknown", "Build date: unknown"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, output)
		}
	}
}

func TestVersionCommandHelp(t *testing.T) {
	output, err := execute(t, "version", "--help")
	if err != nil {
		t.Fatalf("version command --help failed: %v", err)
	}
	if !strings.Contains(output, "Print the version number") {
		t.Errorf("expected help text to contain version description, got:\n%s", output)
	}
}

func TestVersionCommandJSON(t *testing.T) {
	setVersion(t, "2.1.0", "def456", "")

	output, err := execute(t, "version", "--json")
	if err != nil {
		t.Fatalf("version --json failed: %v", err)
	}
	var info api.BuildInfo
	if err := json.Unmarshal([]byte(output), &info); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, output)
	}
	if info.Version != "2.1.0" || info.GitCommit != "def456" || info.BuildDate != "unknown" {
		t.Errorf("unexpected build info: %+v", info)
	}
}
