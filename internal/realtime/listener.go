package realtime

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

const (
	minBackoff = 500 * time.Millisecond
	maxBackoff = 30 * time.Second
)

// Listener holds one dedicated connection running LISTEN and publishes every
// notification to a Hub. It reconnects with exponential backoff.
type Listener struct {
	databaseURL string
	channel     string
	hub         *Hub
	logger      zerolog.Logger

	// Overridable in tests.
	now        func() time.Time
	minBackoff time.Duration
	maxBackoff time.Duration
}

func NewListener(databaseURL, channel string, hub *Hub, logger zerolog.Logger) *Listener {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Listener{
		databaseURL: databaseURL,
		channel:     channel,
		hub:         hub,
		logger:      logger.With().Str("component", "realtime").Str("channel", channel).Logger(),
		now:         time.Now,
		minBackoff:  minBackoff,
		maxBackoff:  maxBackoff,
	}
}

// Run blocks until ctx is cancelled.
func (l *Listener) Run(ctx context.Context) error {
	backoff := l.minBackoff
	for {
		started := l.now()
		err := l.listen(ctx)
		if ctx.Err() != nil {
			return nil
		}
		// A connection that stayed up for a while earns a fresh backoff.
		if l.now().Sub(started) > l.maxBackoff {
			backoff = l.minBackoff
		}
		l.logger.Warn().Err(err).Dur("retry_in", backoff).Msg("change listener disconnected")

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
		backoff = min(backoff*2, l.maxBackoff)
	}
}

func (l *Listener) listen(ctx context.Context) error {
	conn, err := pgx.Connect(ctx, l.databaseURL)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = conn.Close(closeCtx)
	}()

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{l.channel}.Sanitize()); err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	l.logger.Info().Msg("listening for row changes")

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			return fmt.Errorf("wait for notification: %w", err)
		}
		change, err := Decode(n.Payload, l.now())
		if err != nil {
			l.logger.Warn().Err(err).Str("payload", n.Payload).Msg("skipping malformed change")
			continue
		}
		l.hub.Publish(change)
	}
}
