package jobs

import (
	"log/slog"
	"math"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivertype"

	"github.com/Togather-Foundation/booking/internal/config"
	"github.com/Togather-Foundation/booking/internal/metrics"
)

const (
	JobKindRecalculateFinancials = "recalculate_dj_financials"
	JobKindAccessCodeEmail       = "send_access_code_email"
	JobKindRollupFinancials      = "rollup_financials"
)

const (
	RecalculateMaxAttempts = 5
	EmailMaxAttempts       = 3
	RollupMaxAttempts      = 1
)

// QueueEmail keeps outbound mail off the default queue so a slow provider
// never delays financial recalculation.
const QueueEmail = "email"

// DefaultRollupInterval applies when the config leaves it unset.
const DefaultRollupInterval = 24 * time.Hour

// RetryConfig controls per-kind retry behavior.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// RetryPolicy implements River's ClientRetryPolicy with per-kind exponential backoff.
type RetryPolicy struct {
	Default RetryConfig
	ByKind  map[string]RetryConfig
}

// NewRetryPolicy returns the retry policy, with attempt counts taken from
// cfg when set.
func NewRetryPolicy(cfg config.JobsConfig) *RetryPolicy {
	financials := RecalculateMaxAttempts
	if cfg.RetryFinancials > 0 {
		financials = cfg.RetryFinancials
	}
	email := EmailMaxAttempts
	if cfg.RetryEmail > 0 {
		email = cfg.RetryEmail
	}
	return &RetryPolicy{
		Default: RetryConfig{
			MaxAttempts: RecalculateMaxAttempts,
			BaseDelay:   30 * time.Second,
			MaxDelay:    30 * time.Minute,
		},
		ByKind: map[string]RetryConfig{
			JobKindRecalculateFinancials: {
				MaxAttempts: financials,
				BaseDelay:   10 * time.Second,
				MaxDelay:    10 * time.Minute,
			},
			JobKindAccessCodeEmail: {
				MaxAttempts: email,
				BaseDelay:   1 * time.Minute,
				MaxDelay:    30 * time.Minute,
			},
			JobKindRollupFinancials: {
				MaxAttempts: RollupMaxAttempts,
			},
		},
	}
}

// NextRetry determines the next retry time for a failed job.
func (p *RetryPolicy) NextRetry(job *rivertype.JobRow) time.Time {
	cfg := p.configFor(job.Kind)
	if cfg.BaseDelay == 0 {
		return time.Now()
	}

	attempt := max(job.Attempt, 1)
	delay := time.Duration(float64(cfg.BaseDelay) * math.Pow(2, float64(attempt-1)))
	if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
		delay = cfg.MaxDelay
	}

	if job.AttemptedAt != nil {
		return job.AttemptedAt.Add(delay)
	}
	return time.Now().Add(delay)
}

// InsertOpts returns the insert options for a job kind. Financial
// recalculation is unique by args so a burst of edits to one DJ collapses
// into a single pending job.
func (p *RetryPolicy) InsertOpts(kind string) river.InsertOpts {
	opts := river.InsertOpts{MaxAttempts: p.configFor(kind).MaxAttempts}
	switch kind {
	case JobKindRecalculateFinancials:
		opts.UniqueOpts = river.UniqueOpts{ByArgs: true}
	case JobKindAccessCodeEmail:
		opts.Queue = QueueEmail
	case JobKindRollupFinancials:
		opts.UniqueOpts = river.UniqueOpts{ByPeriod: time.Hour}
	}
	return opts
}

// NewClientConfig builds a River client configuration with retry policy.
func NewClientConfig(cfg config.JobsConfig, workers *river.Workers, logger *slog.Logger, hooks []rivertype.Hook, periodicJobs []*river.PeriodicJob) *river.Config {
	policy := NewRetryPolicy(cfg)
	maxWorkers := cfg.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 10
	}
	rc := &river.Config{
		Workers:      workers,
		RetryPolicy:  policy,
		MaxAttempts:  policy.Default.MaxAttempts,
		PeriodicJobs: periodicJobs,
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: maxWorkers},
			QueueEmail:         {MaxWorkers: 2},
		},
		Hooks: hooks,
	}
	if logger != nil {
		rc.Logger = logger
		rc.ErrorHandler = NewAlertingErrorHandler(logger, metrics.RecordJobFailure)
	}
	return rc
}

// NewClient creates a River client using pgx v5.
func NewClient(pool *pgxpool.Pool, cfg config.JobsConfig, workers *river.Workers, logger *slog.Logger, hooks []rivertype.Hook, periodicJobs []*river.PeriodicJob) (*river.Client[pgx.Tx], error) {
	return river.NewClient(riverpgxv5.New(pool), NewClientConfig(cfg, workers, logger, hooks, periodicJobs))
}

// NewInsertOnlyClient builds a client with no workers, for commands that
// enqueue jobs without running them.
func NewInsertOnlyClient(pool *pgxpool.Pool, logger *slog.Logger) (*river.Client[pgx.Tx], error) {
	rc := &river.Config{}
	if logger != nil {
		rc.Logger = logger
	}
	return river.NewClient(riverpgxv5.New(pool), rc)
}

// NewPeriodicJobs schedules the financial rollup. It does not run on start;
// every mutation already enqueues its own recalculation.
func NewPeriodicJobs(interval time.Duration) []*river.PeriodicJob {
	if interval <= 0 {
		interval = DefaultRollupInterval
	}
	policy := NewRetryPolicy(config.JobsConfig{})
	return []*river.PeriodicJob{
		river.NewPeriodicJob(
			river.PeriodicInterval(interval),
			func() (river.JobArgs, *river.InsertOpts) {
				opts := policy.InsertOpts(JobKindRollupFinancials)
				return RollupFinancialsArgs{}, &opts
			},
			&river.PeriodicJobOpts{RunOnStart: false},
		),
	}
}

func (p *RetryPolicy) configFor(kind string) RetryConfig {
	if p == nil {
		return RetryConfig{MaxAttempts: RecalculateMaxAttempts, BaseDelay: 30 * time.Second, MaxDelay: 30 * time.Minute}
	}
	if cfg, ok := p.ByKind[kind]; ok {
		return cfg
	}
	return p.Default
}
