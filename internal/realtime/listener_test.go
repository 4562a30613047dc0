package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Togather-Foundation/booking/internal/storage/postgres"
	"github.com/Togather-Foundation/booking/internal/testutil/pgtest"
)

func TestListenerPublishesRowChanges(t *testing.T) {
	dbURL := pgtest.Start(t, func(url string) error { return postgres.MigrateUp(url, "") }).URL
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	hub := NewHub(8, nil)
	sub := hub.Subscribe(nil)
	listener := NewListener(dbURL, "", hub, zerolog.Nop())

	runCtx, stop := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- listener.Run(runCtx) }()

	writer, err := pgx.Connect(ctx, dbURL)
	require.NoError(t, err)
	defer writer.Close(context.Background())

	// The listener may not have issued LISTEN yet; keep inserting until a
	// change arrives.
	var got Change
	require.Eventually(t, func() bool {
		_, err := writer.Exec(ctx, `INSERT INTO djs (artist_name) VALUES ('Anna')`)
		if err != nil {
			return false
		}
		select {
		case got = <-sub.C():
			return true
		case <-time.After(200 * time.Millisecond):
			return false
		}
	}, 20*time.Second, 100*time.Millisecond)

	assert.Equal(t, "djs", got.Table)
	assert.Equal(t, "insert", got.Op)
	assert.NotEmpty(t, got.RecordID)

	stop()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("listener did not stop")
	}
}
