package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
	"github.com/rs/zerolog"

	"github.com/Togather-Foundation/booking/internal/api"
	"github.com/Togather-Foundation/booking/internal/audit"
	"github.com/Togather-Foundation/booking/internal/auth"
	"github.com/Togather-Foundation/booking/internal/config"
	"github.com/Togather-Foundation/booking/internal/domain/booking"
	"github.com/Togather-Foundation/booking/internal/domain/contracts"
	"github.com/Togather-Foundation/booking/internal/domain/dashboard"
	"github.com/Togather-Foundation/booking/internal/domain/djs"
	"github.com/Togather-Foundation/booking/internal/domain/events"
	"github.com/Togather-Foundation/booking/internal/domain/financials"
	"github.com/Togather-Foundation/booking/internal/domain/media"
	"github.com/Togather-Foundation/booking/internal/domain/producers"
	"github.com/Togather-Foundation/booking/internal/domain/users"
	"github.com/Togather-Foundation/booking/internal/email"
	"github.com/Togather-Foundation/booking/internal/jobs"
	"github.com/Togather-Foundation/booking/internal/mcp"
	"github.com/Togather-Foundation/booking/internal/metrics"
	"github.com/Togather-Foundation/booking/internal/storage/postgres"
)

// jobMode says what the app's River client may do.
type jobMode int

const (
	// jobsOff never touches River; mutations skip their follow-up jobs.
	jobsOff jobMode = iota
	// jobsInsert enqueues for a running server to pick up.
	jobsInsert
	// jobsWork also runs the workers and the periodic rollup.
	jobsWork
)

// app holds the services every command shares.
type app struct {
	cfg      config.Config
	logger   zerolog.Logger
	location *time.Location

	pool  *pgxpool.Pool
	repo  *postgres.Repository
	jwt   *auth.JWTManager
	river *river.Client[pgx.Tx]

	users      *users.Service
	djs        *djs.Service
	financials *financials.Service
	events     *events.Service
	contracts  *contracts.Service
	producers  *producers.Service
	media      *media.Service
	dashboard  *dashboard.Service
}

func openApp(ctx context.Context, cfg config.Config, logger zerolog.Logger, mode jobMode) (*app, error) {
	loc, err := time.LoadLocation(cfg.Server.Timezone)
	if err != nil {
		return nil, fmt.Errorf("agency timezone: %w", err)
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	pool, err := postgres.NewPool(connectCtx, cfg.Database.URL, cfg.Database.MaxConnections,
		postgres.WithQueryTracer(metrics.QueryTracer{}))
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	a := &app{cfg: cfg, logger: logger, location: loc, pool: pool}
	if err := a.wire(mode); err != nil {
		pool.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) wire(mode jobMode) error {
	cfg, logger := a.cfg, a.logger

	repo, err := postgres.NewRepository(a.pool)
	if err != nil {
		return fmt.Errorf("repository initialization failed: %w", err)
	}
	a.repo = repo
	keys, err := auth.DeriveKeys([]byte(cfg.Auth.JWTSecret))
	if err != nil {
		return fmt.Errorf("derive auth keys: %w", err)
	}
	a.jwt = auth.NewJWTManager(keys.Session, cfg.Auth.JWTExpiry, "booking")

	mailer, err := email.NewService(cfg.Email, logger)
	if err != nil {
		return fmt.Errorf("email service: %w", err)
	}
	a.financials = financials.NewService(repo, cfg.Jobs.DefaultCommission, a.location, logger)

	var enqueuer booking.Enqueuer = booking.NopEnqueuer{}
	if cfg.Jobs.Enabled && mode != jobsOff {
		riverLogger := config.SlogBridge(logger, "river")
		if mode == jobsWork {
			workers := jobs.NewWorkers(jobs.Deps{
				Financials: a.financials,
				Producers:  repo.Producers(),
				DJs:        repo.DJs(),
				Mailer:     mailer,
				Logger:     logger,
			})
			hooks := []rivertype.Hook{metrics.NewRiverMetricsHook()}
			a.river, err = jobs.NewClient(a.pool, cfg.Jobs, workers, riverLogger, hooks, jobs.NewPeriodicJobs(cfg.Jobs.RollupInterval))
		} else {
			a.river, err = jobs.NewInsertOnlyClient(a.pool, riverLogger)
		}
		if err != nil {
			return fmt.Errorf("river client: %w", err)
		}
		enqueuer = jobs.NewEnqueuer(a.river, jobs.NewRetryPolicy(cfg.Jobs))
	}

	a.users = users.NewService(repo, a.jwt, mailer, audit.NewLogger(logger), logger)
	a.djs = djs.NewService(repo, logger)
	a.events = events.NewService(repo, enqueuer, a.location, logger)
	a.contracts = contracts.NewService(repo, enqueuer, logger)
	a.producers = producers.NewService(repo, enqueuer, logger)
	a.media = media.NewService(repo, logger)
	a.dashboard = dashboard.NewService(dashboard.Sources{
		DJs:       a.djs,
		Events:    a.events,
		Contracts: a.contracts,
		Producers: a.producers,
		Stats:     repo.Stats(),
	}, logger)
	return nil
}

func (a *app) services() api.Services {
	return api.Services{
		Users:      a.users,
		DJs:        a.djs,
		Financials: a.financials,
		Events:     a.events,
		Contracts:  a.contracts,
		Producers:  a.producers,
		Media:      a.media,
		Dashboard:  a.dashboard,
	}
}

func (a *app) Close() {
	a.pool.Close()
}

func (a *app) mcpServer() *mcp.Server {
	return mcp.NewServer(mcp.Config{
		Name:     "booking",
		Version:  Version,
		BaseURL:  a.cfg.Server.BaseURL,
		Location: a.location,
	}, mcp.Services{
		DJs:        a.djs,
		Financials: a.financials,
		Events:     a.events,
		Contracts:  a.contracts,
		Dashboard:  a.dashboard,
	})
}
