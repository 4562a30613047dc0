package booking

import "context"

// Enqueuer schedules background work after a mutation has been stored.
type Enqueuer interface {
	EnqueueFinancials(ctx context.Context, djIDs ...string) error
	EnqueueAccessCodeEmail(ctx context.Context, producerID string) error
}

// NopEnqueuer drops every job. It backs services when workers are disabled.
type NopEnqueuer struct{}

func (NopEnqueuer) EnqueueFinancials(context.Context, ...string) error { return nil }

func (NopEnqueuer) EnqueueAccessCodeEmail(context.Context, string) error { return nil }
