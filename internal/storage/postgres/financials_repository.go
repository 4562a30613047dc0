package postgres

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/jackc/pgx/v5"

	"github.com/Togather-Foundation/booking/internal/domain/booking"
	"github.com/Togather-Foundation/booking/internal/legacy"
	"github.com/Togather-Foundation/booking/internal/storage"
)

var _ storage.FinancialRepository = (*FinancialRepository)(nil)

type FinancialRepository struct {
	conn
}

func (r *FinancialRepository) Get(ctx context.Context, djID string) (*booking.FinancialData, error) {
	if !validID(djID) {
		return nil, storage.ErrNotFound
	}
	return r.load(ctx, r.queryer(), djID)
}

func (r *FinancialRepository) load(ctx context.Context, q queryer, djID string) (*booking.FinancialData, error) {
	var data booking.FinancialData
	err := q.QueryRow(ctx, `
SELECT dj_id, total_earnings::float8, pending_payments::float8, completed_events, average_event_value::float8,
       commission_rate::float8, net_earnings::float8, created_at, updated_at
  FROM financial_data
 WHERE dj_id = $1`, djID).Scan(
		&data.DJID,
		&data.TotalEarnings,
		&data.PendingPayments,
		&data.CompletedEvents,
		&data.AverageEventValue,
		&data.CommissionRate,
		&data.NetEarnings,
		&data.CreatedAt,
		&data.UpdatedAt,
	)
	if err != nil {
		return nil, mapError("get financial data", err)
	}

	rows, err := q.Query(ctx, `
SELECT year, month, amount::float8, events_count
  FROM monthly_earnings
 WHERE dj_id = $1
 ORDER BY year ASC, month ASC`, djID)
	if err != nil {
		return nil, fmt.Errorf("list monthly earnings: %w", err)
	}
	defer rows.Close()

	data.MonthlyEarnings = make([]booking.MonthlyEarning, 0)
	for rows.Next() {
		var m booking.MonthlyEarning
		if err := rows.Scan(&m.Year, &m.Month, &m.Amount, &m.EventsCount); err != nil {
			return nil, fmt.Errorf("scan monthly earning: %w", err)
		}
		data.MonthlyEarnings = append(data.MonthlyEarnings, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate monthly earnings: %w", err)
	}
	return &data, nil
}

// Recalculate derives earnings from the DJ's events: concluded events are
// earned, pending and confirmed ones are pending payment. The commission rate
// comes from the DJ's most recent contract that carries one.
func (r *FinancialRepository) Recalculate(ctx context.Context, djID string, defaultRate float64, timeZone string) (*booking.FinancialData, error) {
	if !validID(djID) {
		return nil, storage.ErrNotFound
	}
	if timeZone == "" {
		timeZone = legacy.DefaultLocation.String()
	}
	if r.tx != nil {
		return r.recalculate(ctx, r.tx, djID, defaultRate, timeZone)
	}

	var result *booking.FinancialData
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var err error
		result, err = r.recalculate(ctx, tx, djID, defaultRate, timeZone)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *FinancialRepository) recalculate(ctx context.Context, tx pgx.Tx, djID string, defaultRate float64, timeZone string) (*booking.FinancialData, error) {
	var locked string
	if err := tx.QueryRow(ctx, `SELECT id FROM djs WHERE id = $1 FOR UPDATE`, djID).Scan(&locked); err != nil {
		return nil, mapError("lock dj", err)
	}

	var (
		total     float64
		pending   float64
		completed int
	)
	err := tx.QueryRow(ctx, `
SELECT COALESCE(SUM(fee) FILTER (WHERE status = $2), 0)::float8,
       COALESCE(SUM(fee) FILTER (WHERE status IN ($3, $4)), 0)::float8,
       COUNT(*) FILTER (WHERE status = $2)
  FROM events
 WHERE dj_id = $1`,
		djID, legacy.EventConcluido, legacy.EventPendente, legacy.EventConfirmado,
	).Scan(&total, &pending, &completed)
	if err != nil {
		return nil, fmt.Errorf("sum dj events: %w", err)
	}

	rate := defaultRate
	var contractRate *float64
	err = tx.QueryRow(ctx, `
SELECT commission_rate::float8
  FROM contracts
 WHERE dj_id = $1 AND commission_rate IS NOT NULL
 ORDER BY created_at DESC
 LIMIT 1`, djID).Scan(&contractRate)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("load commission rate: %w", err)
	}
	if contractRate != nil {
		rate = *contractRate
	}

	summary := summarizeEarnings(total, pending, completed, rate)

	_, err = tx.Exec(ctx, `
INSERT INTO financial_data (dj_id, total_earnings, pending_payments, completed_events, average_event_value,
                            commission_rate, net_earnings)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (dj_id) DO UPDATE
   SET total_earnings = EXCLUDED.total_earnings,
       pending_payments = EXCLUDED.pending_payments,
       completed_events = EXCLUDED.completed_events,
       average_event_value = EXCLUDED.average_event_value,
       commission_rate = EXCLUDED.commission_rate,
       net_earnings = EXCLUDED.net_earnings`,
		djID,
		summary.TotalEarnings,
		summary.PendingPayments,
		summary.CompletedEvents,
		summary.AverageEventValue,
		summary.CommissionRate,
		summary.NetEarnings,
	)
	if err != nil {
		return nil, mapError("upsert financial data", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM monthly_earnings WHERE dj_id = $1`, djID); err != nil {
		return nil, fmt.Errorf("clear monthly earnings: %w", err)
	}
	_, err = tx.Exec(ctx, `
INSERT INTO monthly_earnings (dj_id, year, month, amount, events_count)
SELECT dj_id,
       EXTRACT(YEAR FROM event_date AT TIME ZONE $3)::int,
       EXTRACT(MONTH FROM event_date AT TIME ZONE $3)::int,
       COALESCE(SUM(fee), 0),
       COUNT(*)
  FROM events
 WHERE dj_id = $1 AND status = $2
 GROUP BY 1, 2, 3`,
		djID, legacy.EventConcluido, timeZone,
	)
	if err != nil {
		return nil, fmt.Errorf("rebuild monthly earnings: %w", err)
	}

	return r.load(ctx, tx, djID)
}

// summarizeEarnings applies the commission to the earned total. Money is
// rounded to cents to match the numeric(14,2) columns.
func summarizeEarnings(total, pending float64, completed int, rate float64) booking.FinancialData {
	var average float64
	if completed > 0 {
		average = total / float64(completed)
	}
	commission := total * rate / 100
	return booking.FinancialData{
		TotalEarnings:     roundCents(total),
		PendingPayments:   roundCents(pending),
		CompletedEvents:   completed,
		AverageEventValue: roundCents(average),
		CommissionRate:    rate,
		NetEarnings:       roundCents(total - commission),
	}
}

func roundCents(value float64) float64 {
	return math.Round(value*100) / 100
}
