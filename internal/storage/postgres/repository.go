package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Togather-Foundation/booking/internal/storage"
)

var _ storage.Repository = (*Repository)(nil)

// Repository implements storage.Repository with PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

func NewRepository(pool *pgxpool.Pool) (*Repository, error) {
	if pool == nil {
		return nil, fmt.Errorf("postgres repository: pool is nil")
	}
	return &Repository{pool: pool}, nil
}

func (r *Repository) conn() conn {
	return conn{pool: r.pool, tx: r.tx}
}

func (r *Repository) DJs() storage.DJRepository {
	return &DJRepository{conn: r.conn()}
}

func (r *Repository) Events() storage.EventRepository {
	return &EventRepository{conn: r.conn()}
}

func (r *Repository) Contracts() storage.ContractRepository {
	return &ContractRepository{conn: r.conn()}
}

func (r *Repository) Producers() storage.ProducerRepository {
	return &ProducerRepository{conn: r.conn()}
}

func (r *Repository) Media() storage.MediaRepository {
	return &MediaRepository{conn: r.conn()}
}

func (r *Repository) Financials() storage.FinancialRepository {
	return &FinancialRepository{conn: r.conn()}
}

func (r *Repository) Profiles() storage.ProfileRepository {
	return &ProfileRepository{conn: r.conn()}
}

func (r *Repository) Stats() storage.StatsRepository {
	return &StatsRepository{conn: r.conn()}
}

// WithTx runs fn inside a transaction that commits when fn returns nil.
// Nested calls join the outer transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, storage.Repository) error) error {
	if r.tx != nil {
		return fn(ctx, r)
	}
	var fnErr error
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		fnErr = fn(ctx, &Repository{pool: r.pool, tx: tx})
		return fnErr
	})
	if err != nil && fnErr == nil {
		return fmt.Errorf("transaction: %w", err)
	}
	return err
}
