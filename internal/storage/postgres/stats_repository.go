package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Togather-Foundation/booking/internal/domain/booking"
	"github.com/Togather-Foundation/booking/internal/legacy"
	"github.com/Togather-Foundation/booking/internal/storage"
)

var _ storage.StatsRepository = (*StatsRepository)(nil)

type StatsRepository struct {
	conn
}

// Platform counts across every table in one round trip. Revenue and
// commission come from signed or concluded contracts; pending payments from
// contracts still awaiting a signature.
func (r *StatsRepository) Platform(ctx context.Context, now time.Time) (booking.PlatformStats, error) {
	var stats booking.PlatformStats
	err := r.queryer().QueryRow(ctx, `
WITH contract_states AS (
  SELECT fee,
         COALESCE(commission_amount, fee * COALESCE(commission_rate, 0) / 100) AS commission,
         CASE
           WHEN status = $3 THEN 'completed'
           WHEN status = $4 THEN 'cancelled'
           WHEN is_signed_by_producer AND is_signed_by_dj THEN 'signed'
           ELSE 'pending'
         END AS state
    FROM contracts
)
SELECT
  (SELECT COUNT(*) FROM djs WHERE is_active),
  (SELECT COUNT(*) FROM djs WHERE is_active AND status = $2),
  (SELECT COUNT(*) FROM events),
  (SELECT COUNT(*) FROM events WHERE event_date >= $1 AND status <> $5),
  (SELECT COUNT(*) FROM producers),
  (SELECT COUNT(*) FROM contract_states),
  (SELECT COUNT(*) FROM contract_states WHERE state = 'signed'),
  (SELECT COALESCE(SUM(fee), 0)::float8 FROM contract_states WHERE state IN ('signed', 'completed')),
  (SELECT COALESCE(SUM(commission), 0)::float8 FROM contract_states WHERE state IN ('signed', 'completed')),
  (SELECT COALESCE(SUM(fee), 0)::float8 FROM contract_states WHERE state = 'pending'),
  (SELECT COUNT(*) FROM profiles),
  (SELECT COUNT(*) FROM profiles WHERE role = 'produtor')`,
		now,
		legacy.DJDisponivel,
		legacy.ContractConcluido,
		legacy.ContractCancelado,
		legacy.EventCancelado,
	).Scan(
		&stats.TotalDJs,
		&stats.ActiveDJs,
		&stats.TotalEvents,
		&stats.UpcomingEvents,
		&stats.TotalProducers,
		&stats.TotalContracts,
		&stats.SignedContracts,
		&stats.TotalRevenue,
		&stats.TotalCommission,
		&stats.PendingPayments,
		&stats.TotalUsers,
		&stats.ProducerUsers,
	)
	if err != nil {
		return booking.PlatformStats{}, fmt.Errorf("platform stats: %w", err)
	}
	stats.TotalRevenue = roundCents(stats.TotalRevenue)
	stats.TotalCommission = roundCents(stats.TotalCommission)
	stats.PendingPayments = roundCents(stats.PendingPayments)
	return stats, nil
}
