package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/riverqueue/river"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Togather-Foundation/booking/internal/domain/booking"
	"github.com/Togather-Foundation/booking/internal/email"
	"github.com/Togather-Foundation/booking/internal/storage"
	"github.com/Togather-Foundation/booking/internal/telemetry"
)

// Recalculator rebuilds one DJ's financial rollup.
type Recalculator interface {
	Recalculate(ctx context.Context, djID string) (*booking.FinancialData, error)
}

// AccessCodeMailer delivers a producer's access code.
type AccessCodeMailer interface {
	SendAccessCode(ctx context.Context, to, companyName, accessCode string) error
}

type RecalculateFinancialsArgs struct {
	DJID string `json:"dj_id"`
}

func (RecalculateFinancialsArgs) Kind() string { return JobKindRecalculateFinancials }

type AccessCodeEmailArgs struct {
	ProducerID string `json:"producer_id"`
}

func (AccessCodeEmailArgs) Kind() string { return JobKindAccessCodeEmail }

type RollupFinancialsArgs struct{}

func (RollupFinancialsArgs) Kind() string { return JobKindRollupFinancials }

// RecalculateFinancialsWorker rebuilds financial_data and monthly_earnings
// for one DJ after any change to its events or contracts.
type RecalculateFinancialsWorker struct {
	river.WorkerDefaults[RecalculateFinancialsArgs]
	Financials Recalculator
	Logger     zerolog.Logger
}

func (w RecalculateFinancialsWorker) Work(ctx context.Context, job *river.Job[RecalculateFinancialsArgs]) error {
	if w.Financials == nil {
		return fmt.Errorf("financials service not configured")
	}
	if job.Args.DJID == "" {
		return river.JobCancel(errors.New("dj_id is required"))
	}

	ctx, span := telemetry.StartSpan(ctx, "jobs.recalculate_financials",
		attribute.String("dj_id", job.Args.DJID),
		attribute.Int("attempt", job.Attempt),
	)
	defer span.End()

	data, err := w.Financials.Recalculate(ctx, job.Args.DJID)
	if err != nil {
		span.RecordError(err)
	}
	if errors.Is(err, storage.ErrNotFound) {
		// The DJ was deleted between enqueue and work.
		return river.JobCancel(fmt.Errorf("dj %s: %w", job.Args.DJID, err))
	}
	if err != nil {
		return fmt.Errorf("recalculate dj %s: %w", job.Args.DJID, err)
	}

	w.Logger.Info().
		Str("dj_id", job.Args.DJID).
		Int("attempt", job.Attempt).
		Float64("total_earnings", data.TotalEarnings).
		Msg("financials recalculated")
	return nil
}

// AccessCodeEmailWorker mails a producer its current access code. The code
// is read at work time, so a regenerated code is never sent stale.
type AccessCodeEmailWorker struct {
	river.WorkerDefaults[AccessCodeEmailArgs]
	Producers storage.ProducerRepository
	Mailer    AccessCodeMailer
	Logger    zerolog.Logger
}

// RateLimitBackoff is how long an email job waits after the provider
// rejects it for rate limiting.
const RateLimitBackoff = time.Minute

func (w AccessCodeEmailWorker) Work(ctx context.Context, job *river.Job[AccessCodeEmailArgs]) error {
	if w.Producers == nil || w.Mailer == nil {
		return fmt.Errorf("access code email worker not configured")
	}

	producer, err := w.Producers.Get(ctx, job.Args.ProducerID)
	if errors.Is(err, storage.ErrNotFound) {
		return river.JobCancel(fmt.Errorf("producer %s: %w", job.Args.ProducerID, err))
	}
	if err != nil {
		return fmt.Errorf("load producer %s: %w", job.Args.ProducerID, err)
	}
	if producer.AccessCode == nil || *producer.AccessCode == "" {
		return river.JobCancel(fmt.Errorf("producer %s has no access code", producer.ID))
	}

	company := producer.Name
	if producer.CompanyName != nil && *producer.CompanyName != "" {
		company = *producer.CompanyName
	}

	err = w.Mailer.SendAccessCode(ctx, producer.Email, company, *producer.AccessCode)
	switch {
	case errors.Is(err, email.ErrRateLimited):
		w.Logger.Warn().Str("producer_id", producer.ID).Msg("email provider rate limited, snoozing")
		return river.JobSnooze(RateLimitBackoff)
	case errors.Is(err, email.ErrInvalidRecipient):
		return river.JobCancel(err)
	case err != nil:
		return fmt.Errorf("send access code to producer %s: %w", producer.ID, err)
	}

	w.Logger.Info().Str("producer_id", producer.ID).Msg("access code email sent")
	return nil
}

// RollupFinancialsWorker fans out one recalculation job per active DJ.
type RollupFinancialsWorker struct {
	river.WorkerDefaults[RollupFinancialsArgs]
	DJs storage.DJRepository
	// Enqueuer overrides the client taken from the work context.
	Enqueuer booking.Enqueuer
	Logger   zerolog.Logger
}

func (w RollupFinancialsWorker) Work(ctx context.Context, job *river.Job[RollupFinancialsArgs]) error {
	if w.DJs == nil {
		return fmt.Errorf("dj repository not configured")
	}

	enqueuer := w.Enqueuer
	if enqueuer == nil {
		client, err := river.ClientFromContextSafely[pgx.Tx](ctx)
		if err != nil {
			return fmt.Errorf("river client: %w", err)
		}
		enqueuer = NewEnqueuer(client, nil)
	}

	start := time.Now()
	ids, err := w.DJs.ActiveIDs(ctx)
	if err != nil {
		return fmt.Errorf("list active djs: %w", err)
	}
	if err := enqueuer.EnqueueFinancials(ctx, ids...); err != nil {
		return fmt.Errorf("enqueue recalculations: %w", err)
	}

	w.Logger.Info().
		Int("djs", len(ids)).
		Dur("duration", time.Since(start)).
		Msg("financial rollup enqueued")
	return nil
}

// Deps are the services the workers call into.
type Deps struct {
	Financials Recalculator
	Producers  storage.ProducerRepository
	DJs        storage.DJRepository
	Mailer     AccessCodeMailer
	Logger     zerolog.Logger
}

func NewWorkers(deps Deps) *river.Workers {
	logger := deps.Logger.With().Str("component", "jobs").Logger()
	workers := river.NewWorkers()
	river.AddWorker[RecalculateFinancialsArgs](workers, RecalculateFinancialsWorker{
		Financials: deps.Financials,
		Logger:     logger,
	})
	river.AddWorker[AccessCodeEmailArgs](workers, AccessCodeEmailWorker{
		Producers: deps.Producers,
		Mailer:    deps.Mailer,
		Logger:    logger,
	})
	river.AddWorker[RollupFinancialsArgs](workers, RollupFinancialsWorker{
		DJs:    deps.DJs,
		Logger: logger,
	})
	return workers
}
