package jobs

import (
	"context"
	"fmt"

	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"

	"github.com/Togather-Foundation/booking/internal/config"
	"github.com/Togather-Foundation/booking/internal/domain/booking"
)

// Inserter is the part of the River client the enqueuer uses.
type Inserter interface {
	Insert(ctx context.Context, args river.JobArgs, opts *river.InsertOpts) (*rivertype.JobInsertResult, error)
	InsertMany(ctx context.Context, params []river.InsertManyParams) ([]*rivertype.JobInsertResult, error)
}

// Enqueuer inserts booking jobs into River.
type Enqueuer struct {
	client Inserter
	policy *RetryPolicy
}

var _ booking.Enqueuer = (*Enqueuer)(nil)

// NewEnqueuer wraps a River client. A nil policy uses the defaults.
func NewEnqueuer(client Inserter, policy *RetryPolicy) *Enqueuer {
	if policy == nil {
		policy = NewRetryPolicy(config.JobsConfig{})
	}
	return &Enqueuer{client: client, policy: policy}
}

// EnqueueFinancials inserts one recalculation per distinct non-empty id.
func (e *Enqueuer) EnqueueFinancials(ctx context.Context, djIDs ...string) error {
	opts := e.policy.InsertOpts(JobKindRecalculateFinancials)
	seen := make(map[string]struct{}, len(djIDs))
	params := make([]river.InsertManyParams, 0, len(djIDs))
	for _, id := range djIDs {
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		params = append(params, river.InsertManyParams{
			Args:       RecalculateFinancialsArgs{DJID: id},
			InsertOpts: &opts,
		})
	}
	if len(params) == 0 {
		return nil
	}
	if _, err := e.client.InsertMany(ctx, params); err != nil {
		return fmt.Errorf("insert financial jobs: %w", err)
	}
	return nil
}

func (e *Enqueuer) EnqueueAccessCodeEmail(ctx context.Context, producerID string) error {
	if producerID == "" {
		return fmt.Errorf("producer id is required")
	}
	opts := e.policy.InsertOpts(JobKindAccessCodeEmail)
	if _, err := e.client.Insert(ctx, AccessCodeEmailArgs{ProducerID: producerID}, &opts); err != nil {
		return fmt.Errorf("insert access code email job: %w", err)
	}
	return nil
}
