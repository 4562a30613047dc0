// Package pgtest starts throwaway PostgreSQL servers for integration tests.
// Tests that use it skip themselves under -short.
package pgtest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const image = "postgres:16-alpine"

// MigrateFunc brings a fresh database to the schema a test needs.
type MigrateFunc func(databaseURL string) error

// DB is a running server with a pool already connected to it.
type DB struct {
	URL  string
	Pool *pgxpool.Pool
}

// Start runs a dedicated server for one test and tears it down afterwards.
// A nil migrate leaves the database empty.
func Start(t testing.TB, migrate MigrateFunc) DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}
	db, stop, err := start(migrate)
	require.NoError(t, err, "start postgres")
	t.Cleanup(stop)
	return db
}

var shared struct {
	once sync.Once
	db   DB
	err  error
}

// Shared returns a server reused by every test in the process, emptied of
// rows before it is handed out. The container is reaped when the test
// binary exits.
func Shared(t testing.TB, migrate MigrateFunc) DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}
	shared.once.Do(func() {
		shared.db, _, shared.err = start(migrate)
	})
	require.NoError(t, shared.err, "start shared postgres")
	Truncate(t, shared.db.Pool)
	return shared.db
}

func start(migrate MigrateFunc) (DB, func(), error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	container, err := postgres.Run(ctx, image,
		postgres.WithDatabase("booking"),
		postgres.WithUsername("booking"),
		postgres.WithPassword("booking_dev"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute)),
	)
	if err != nil {
		return DB{}, nil, err
	}
	terminate := func() { _ = testcontainers.TerminateContainer(container) }

	url, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		terminate()
		return DB{}, nil, err
	}
	if migrate != nil {
		if err := retry(ctx, func() error { return migrate(url) }); err != nil {
			terminate()
			return DB{}, nil, fmt.Errorf("migrate: %w", err)
		}
	}
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		terminate()
		return DB{}, nil, err
	}
	return DB{URL: url, Pool: pool}, func() { pool.Close(); terminate() }, nil
}

// retry covers the window where the server logs readiness but still
// refuses the first connections.
func retry(ctx context.Context, fn func() error) error {
	for {
		err := fn()
		if err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return err
		case <-time.After(500 * time.Millisecond):
		}
	}
}

// Truncate empties every table in the public schema except the
// migration bookkeeping.
func Truncate(t testing.TB, pool *pgxpool.Pool) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var tables []string
	rows, err := pool.Query(ctx, `
SELECT quote_ident(tablename)
  FROM pg_tables
 WHERE schemaname = 'public' AND tablename <> 'schema_migrations'`)
	require.NoError(t, err)
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		tables = append(tables, "public."+name)
	}
	require.NoError(t, rows.Err())
	if len(tables) == 0 {
		return
	}
	_, err = pool.Exec(ctx, "TRUNCATE TABLE "+strings.Join(tables, ", ")+" RESTART IDENTITY CASCADE")
	require.NoError(t, err)
}
