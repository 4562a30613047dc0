package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/Togather-Foundation/booking/internal/metrics"
)

// HealthCheck is the body of GET /health.
type HealthCheck struct {
	Status    string                 `json:"status"`
	Version   string                 `json:"version"`
	GitCommit string                 `json:"git_commit"`
	Checks    map[string]CheckResult `json:"checks"`
	Timestamp string                 `json:"timestamp"`
}

type CheckResult struct {
	Status    string         `json:"status"`
	Message   string         `json:"message,omitempty"`
	LatencyMs int64          `json:"latency_ms,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}

const (
	checkPass = "pass"
	checkWarn = "warn"
	checkFail = "fail"

	queryTimeout = 2 * time.Second
	noPool       = "Database pool not initialized"
)

// HealthDB is the slice of *pgxpool.Pool the checks use.
type HealthDB interface {
	Ping(ctx context.Context) error
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// SubscriberCounter reports open change-feed streams.
type SubscriberCounter interface {
	Subscribers() int
}

type HealthChecker struct {
	db          HealthDB
	jobsEnabled bool
	realtime    SubscriberCounter
	version     string
	gitCommit   string
	now         func() time.Time
}

// NewHealthChecker builds the checker. realtime may be nil when the change
// feed is disabled.
func NewHealthChecker(db HealthDB, jobsEnabled bool, realtime SubscriberCounter, version, gitCommit string) *HealthChecker {
	return &HealthChecker{
		db:          db,
		jobsEnabled: jobsEnabled,
		realtime:    realtime,
		version:     version,
		gitCommit:   gitCommit,
		now:         time.Now,
	}
}

type namedCheck struct {
	name string
	run  func(context.Context) CheckResult
}

func (h *HealthChecker) checks() []namedCheck {
	return []namedCheck{
		{"database", h.checkDatabase},
		{"migrations", h.checkMigrations},
		{"job_queue", h.checkJobQueue},
		{"realtime", func(context.Context) CheckResult { return h.checkRealtime() }},
	}
}

// Health runs the checks concurrently. Any fail makes the service unhealthy
// (503); warnings alone make it degraded. Each result is also exported as
// a gauge.
func (h *HealthChecker) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Context().Err() != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "shutting_down"})
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		checks := h.checks()
		results := make([]CheckResult, len(checks))
		var g errgroup.Group
		for i, c := range checks {
			g.Go(func() error {
				results[i] = c.run(ctx)
				return nil
			})
		}
		_ = g.Wait()

		report := HealthCheck{
			Status:    "healthy",
			Version:   h.version,
			GitCommit: h.gitCommit,
			Checks:    make(map[string]CheckResult, len(checks)),
			Timestamp: h.now().UTC().Format(time.RFC3339),
		}
		code := http.StatusOK
		for i, c := range checks {
			res := results[i]
			report.Checks[c.name] = res
			metrics.RecordHealth(c.name, res.Status, res.LatencyMs)

			switch {
			case res.Status == checkFail:
				report.Status, code = "unhealthy", http.StatusServiceUnavailable
			case res.Status == checkWarn && report.Status == "healthy":
				report.Status = "degraded"
			}
		}
		writeJSON(w, code, report)
	}
}

// Readyz answers 200 once the database accepts queries.
func (h *HealthChecker) Readyz() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
		defer cancel()
		if h.db == nil || h.db.Ping(ctx) != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not_ready"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

// Healthz is the liveness probe; it never touches dependencies.
func Healthz() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}

// scan runs a single-row query under queryTimeout and reports its latency.
func (h *HealthChecker) scan(ctx context.Context, sql string, args []any, dest ...any) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	start := time.Now()
	err := h.db.QueryRow(ctx, sql, args...).Scan(dest...)
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		err = fmt.Errorf("timed out after %s: %w", queryTimeout, err)
	}
	return time.Since(start).Milliseconds(), err
}

// failed builds a fail result. A missing relation points at the migrate
// command; anything else keeps the fallback message.
func failed(err error, latency int64, fallback, missingTable string) CheckResult {
	msg := fallback
	switch text := err.Error(); {
	case missingTable != "" && strings.Contains(text, "does not exist"):
		msg = missingTable
	case strings.HasPrefix(text, "timed out"):
		msg = fallback + " (" + strings.SplitN(text, ":", 2)[0] + ")"
	case strings.Contains(text, "connection refused"):
		msg = "Database connection refused"
	case strings.Contains(text, "authentication failed"):
		msg = "Database authentication failed"
	}
	return CheckResult{Status: checkFail, Message: msg, LatencyMs: latency, Details: map[string]any{"error": err.Error()}}
}

func (h *HealthChecker) checkDatabase(ctx context.Context) CheckResult {
	if h.db == nil {
		return CheckResult{Status: checkFail, Message: noPool}
	}
	var one int
	latency, err := h.scan(ctx, "SELECT 1", nil, &one)
	if err != nil {
		return failed(err, latency, "Database query failed", "")
	}

	res := CheckResult{Status: checkPass, Message: "PostgreSQL connection successful", LatencyMs: latency}
	if pool, ok := h.db.(*pgxpool.Pool); ok {
		st := pool.Stat()
		res.Details = map[string]any{
			"max_connections":      st.MaxConns(),
			"total_connections":    st.TotalConns(),
			"idle_connections":     st.IdleConns(),
			"acquired_connections": st.AcquiredConns(),
		}
	}
	return res
}

// checkMigrations fails on a missing or dirty golang-migrate state.
func (h *HealthChecker) checkMigrations(ctx context.Context) CheckResult {
	if h.db == nil {
		return CheckResult{Status: checkFail, Message: noPool}
	}
	var (
		version int64
		dirty   bool
	)
	latency, err := h.scan(ctx, `SELECT version, dirty FROM schema_migrations ORDER BY version DESC LIMIT 1`, nil, &version, &dirty)
	switch {
	case err != nil:
		return failed(err, latency, "Failed to query migration version", "Migrations table not found; run `booking migrate up`")
	case dirty:
		return CheckResult{Status: checkFail, Message: "Database in dirty migration state", LatencyMs: latency,
			Details: map[string]any{"version": version, "dirty": true}}
	}
	return CheckResult{Status: checkPass, Message: fmt.Sprintf("Migrations applied (version %d)", version), LatencyMs: latency,
		Details: map[string]any{"version": version}}
}

// checkJobQueue counts runnable River jobs. Disabled workers only warn.
func (h *HealthChecker) checkJobQueue(ctx context.Context) CheckResult {
	switch {
	case !h.jobsEnabled:
		return CheckResult{Status: checkWarn, Message: "Background jobs disabled"}
	case h.db == nil:
		return CheckResult{Status: checkFail, Message: noPool}
	}
	var active int64
	latency, err := h.scan(ctx, `SELECT COUNT(*) FROM river_job WHERE state = ANY($1)`,
		[]any{[]string{"available", "running", "retryable"}}, &active)
	if err != nil {
		return failed(err, latency, "Failed to query job queue", "River tables not found; run `booking migrate up`")
	}
	return CheckResult{Status: checkPass, Message: "River job queue operational", LatencyMs: latency,
		Details: map[string]any{"active_jobs": active}}
}

func (h *HealthChecker) checkRealtime() CheckResult {
	if h.realtime == nil {
		return CheckResult{Status: checkWarn, Message: "Change feed disabled"}
	}
	return CheckResult{Status: checkPass, Message: "Change feed running",
		Details: map[string]any{"subscribers": h.realtime.Subscribers()}}
}
