package jobs

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Togather-Foundation/booking/internal/config"
)

func TestNewRetryPolicy(t *testing.T) {
	policy := NewRetryPolicy(config.JobsConfig{})

	tests := []struct {
		kind        string
		maxAttempts int
		baseDelay   time.Duration
		maxDelay    time.Duration
	}{
		{JobKindRecalculateFinancials, RecalculateMaxAttempts, 10 * time.Second, 10 * time.Minute},
		{JobKindAccessCodeEmail, EmailMaxAttempts, time.Minute, 30 * time.Minute},
		{JobKindRollupFinancials, RollupMaxAttempts, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			cfg, ok := policy.ByKind[tt.kind]
			require.True(t, ok)
			assert.Equal(t, tt.maxAttempts, cfg.MaxAttempts)
			assert.Equal(t, tt.baseDelay, cfg.BaseDelay)
			assert.Equal(t, tt.maxDelay, cfg.MaxDelay)
		})
	}
}

func TestRetryPolicyConfigOverrides(t *testing.T) {
	policy := NewRetryPolicy(config.JobsConfig{RetryFinancials: 8, RetryEmail: 1})
	assert.Equal(t, 8, policy.ByKind[JobKindRecalculateFinancials].MaxAttempts)
	assert.Equal(t, 1, policy.ByKind[JobKindAccessCodeEmail].MaxAttempts)
}

func TestNextRetryBackoff(t *testing.T) {
	policy := NewRetryPolicy(config.JobsConfig{})
	attemptedAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 10 * time.Second},
		{1, 10 * time.Second},
		{2, 20 * time.Second},
		{4, 80 * time.Second},
		{12, 10 * time.Minute},
	}
	for _, tt := range tests {
		job := &rivertype.JobRow{Kind: JobKindRecalculateFinancials, Attempt: tt.attempt, AttemptedAt: &attemptedAt}
		assert.Equal(t, attemptedAt.Add(tt.want), policy.NextRetry(job), "attempt %d", tt.attempt)
	}
}

func TestNextRetryWithoutDelayIsImmediate(t *testing.T) {
	policy := NewRetryPolicy(config.JobsConfig{})
	before := time.Now()
	next := policy.NextRetry(&rivertype.JobRow{Kind: JobKindRollupFinancials, Attempt: 1})
	assert.False(t, next.Before(before))
	assert.WithinDuration(t, before, next, time.Second)
}

func TestInsertOpts(t *testing.T) {
	policy := NewRetryPolicy(config.JobsConfig{})

	recalc := policy.InsertOpts(JobKindRecalculateFinancials)
	assert.Equal(t, RecalculateMaxAttempts, recalc.MaxAttempts)
	assert.True(t, recalc.UniqueOpts.ByArgs)

	mail := policy.InsertOpts(JobKindAccessCodeEmail)
	assert.Equal(t, EmailMaxAttempts, mail.MaxAttempts)
	assert.Equal(t, QueueEmail, mail.Queue)
	assert.False(t, mail.UniqueOpts.ByArgs)

	unknown := policy.InsertOpts("something_else")
	assert.Equal(t, policy.Default.MaxAttempts, unknown.MaxAttempts)
}

func TestNewClientConfig(t *testing.T) {
	cfg := NewClientConfig(config.JobsConfig{MaxWorkers: 4}, river.NewWorkers(), slog.Default(), nil, NewPeriodicJobs(0))
	assert.Equal(t, 4, cfg.Queues[river.QueueDefault].MaxWorkers)
	assert.Equal(t, 2, cfg.Queues[QueueEmail].MaxWorkers)
	assert.Len(t, cfg.PeriodicJobs, 1)
	assert.NotNil(t, cfg.ErrorHandler)

	defaults := NewClientConfig(config.JobsConfig{}, river.NewWorkers(), nil, nil, nil)
	assert.Equal(t, 10, defaults.Queues[river.QueueDefault].MaxWorkers)
	assert.Nil(t, defaults.ErrorHandler)
}

func TestAlertingErrorHandler(t *testing.T) {
	type alert struct {
		kind  string
		final bool
		err   string
	}
	var got []alert
	h := NewAlertingErrorHandler(slog.New(slog.DiscardHandler), func(_ context.Context, job *rivertype.JobRow, err error, final bool) {
		got = append(got, alert{job.Kind, final, err.Error()})
	})

	h.HandleError(context.Background(), &rivertype.JobRow{Kind: JobKindAccessCodeEmail, Attempt: 1, MaxAttempts: 3}, errors.New("smtp"))
	h.HandlePanic(context.Background(), &rivertype.JobRow{Kind: JobKindRecalculateFinancials, Attempt: 5, MaxAttempts: 5}, "boom", "trace")

	assert.Equal(t, []alert{
		{JobKindAccessCodeEmail, false, "smtp"},
		{JobKindRecalculateFinancials, true, "panic: boom"},
	}, got)
}
