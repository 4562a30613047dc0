package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// Healthcheck exit codes.
const (
	exitUnhealthy       = 1
	exitInvalidResponse = 2
)

type healthcheckOptions struct {
	url     string
	timeout time.Duration
	// strict fails on "degraded" too. Disabled jobs or realtime report
	// degraded, so the container check passes them by default.
	strict bool
}

func newHealthcheckCommand() *cobra.Command {
	var opts healthcheckOptions
	cmd := &cobra.Command{
		Use:   "healthcheck",
		Short: "Check if the server is healthy",
		Long: `Performs a health check by calling the /health endpoint.

This command is used by Docker HEALTHCHECK to monitor container health.
It exits with code 0 if the server is healthy, non-zero otherwise.

Exit codes:
  0 - Server is healthy (or degraded, unless --strict)
  1 - Server is unhealthy or unreachable
  2 - Invalid response from server`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.url == "" {
				opts.url = defaultHealthURL()
			}
			return performHealthCheck(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.url, "url", "", "health check URL (default: http://localhost:{SERVER_PORT}/health)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 5*time.Second, "request timeout")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "treat a degraded status as unhealthy")
	return cmd
}

func defaultHealthURL() string {
	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}
	return fmt.Sprintf("http://localhost:%s/health", port)
}

// healthResponse is the part of the /health body the check reads.
type healthResponse struct {
	Status string                     `json:"status"`
	Checks map[string]json.RawMessage `json:"checks,omitempty"`
}

func performHealthCheck(ctx context.Context, out io.Writer, opts healthcheckOptions) error {
	if opts.timeout <= 0 {
		opts.timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, opts.url, nil)
	if err != nil {
		return withExitCode(exitUnhealthy, fmt.Errorf("create request: %w", err))
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return withExitCode(exitUnhealthy, fmt.Errorf("health check failed: %w", err))
	}
	defer resp.Body.Close()

	// /health answers 503 with a body when unhealthy; read it either way.
	var health healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		if resp.StatusCode != http.StatusOK {
			return withExitCode(exitUnhealthy, fmt.Errorf("health check returned status %d", resp.StatusCode))
		}
		return withExitCode(exitInvalidResponse, fmt.Errorf("parse health response: %w", err))
	}

	switch {
	case health.Status == "healthy":
	case health.Status == "degraded" && !opts.strict:
	case health.Status == "":
		return withExitCode(exitInvalidResponse, fmt.Errorf("health response has no status"))
	default:
		return withExitCode(exitUnhealthy, fmt.Errorf("server status: %s", health.Status))
	}
	fmt.Fprintf(out, "%s (%d checks)\n", health.Status, len(health.Checks))
	return nil
}
