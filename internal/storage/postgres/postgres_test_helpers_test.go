package postgres

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/Togather-Foundation/booking/internal/testutil/pgtest"
)

// newTestRepository hands out the package's shared database with every
// table emptied.
func newTestRepository(t *testing.T) (*Repository, *pgxpool.Pool) {
	t.Helper()
	db := pgtest.Shared(t, func(url string) error { return MigrateUp(url, "") })
	repo, err := NewRepository(db.Pool)
	require.NoError(t, err)
	return repo, db.Pool
}

func insertProducer(t *testing.T, ctx context.Context, pool *pgxpool.Pool, company string) string {
	t.Helper()
	var id string
	err := pool.QueryRow(ctx,
		`INSERT INTO producers (company_name, contact_email, notes) VALUES ($1, $2, $3) RETURNING id`,
		company, strings.ToLower(strings.ReplaceAll(company, " ", ""))+"@example.com", "Cidade: Recife, Estado: PE",
	).Scan(&id)
	require.NoError(t, err)
	return id
}

func insertDJ(t *testing.T, ctx context.Context, pool *pgxpool.Pool, artist string, status string, price float64, genres ...string) string {
	t.Helper()
	if genres == nil {
		genres = []string{}
	}
	var id string
	err := pool.QueryRow(ctx,
		`INSERT INTO djs (artist_name, status, base_price, genres) VALUES ($1, $2, $3, $4) RETURNING id`,
		artist, status, price, genres,
	).Scan(&id)
	require.NoError(t, err)
	return id
}

func insertEvent(t *testing.T, ctx context.Context, pool *pgxpool.Pool, name string, date time.Time, djID, producerID *string, status string, fee float64) string {
	t.Helper()
	var id string
	err := pool.QueryRow(ctx, `
INSERT INTO events (event_name, event_date, venue, address, state, dj_id, producer_id, status, fee)
VALUES ($1, $2, 'Galpao', 'Recife', 'PE', $3, $4, $5, $6)
RETURNING id`,
		name, date, djID, producerID, status, fee,
	).Scan(&id)
	require.NoError(t, err)
	return id
}

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }
