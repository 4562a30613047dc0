package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/Togather-Foundation/booking/internal/api"
	"github.com/Togather-Foundation/booking/internal/api/handlers"
	"github.com/Togather-Foundation/booking/internal/config"
	"github.com/Togather-Foundation/booking/internal/jsonld"
	"github.com/Togather-Foundation/booking/internal/mcp"
	"github.com/Togather-Foundation/booking/internal/metrics"
	"github.com/Togather-Foundation/booking/internal/realtime"
	"github.com/Togather-Foundation/booking/internal/telemetry"
)

const shutdownTimeout = 10 * time.Second

type serveOptions struct {
	host string
	port int
}

func newServeCommand() *cobra.Command {
	var opts serveOptions
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the booking portal HTTP server",
		Long: `Start the HTTP API, the background job workers and the realtime feed.

The server will:
- Load configuration from environment variables (or --config file if provided)
- Bootstrap the first admin account if ADMIN_* env vars are set
- Run River workers for financial recalculation and access code emails
- Relay database change notifications to /api/v1/stream subscribers
- Handle graceful shutdown on SIGINT/SIGTERM

Examples:
  # Start with default configuration (from env vars)
  booking serve

  # Start on a specific host and port
  booking serve --host 127.0.0.1 --port 9090

  # Start with debug logging
  booking serve --log-level debug`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.host, "host", "", "server host address (default: 0.0.0.0)")
	cmd.Flags().IntVar(&opts.port, "port", 0, "server port (default: 8080)")
	return cmd
}

func runServer(ctx context.Context, opts serveOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if opts.host != "" {
		cfg.Server.Host = opts.host
	}
	if opts.port != 0 {
		cfg.Server.Port = opts.port
	}

	logger := config.NewLogger(cfg.Logging)
	logger.Info().Str("version", Version).Str("environment", cfg.Environment).Msg("starting booking server")
	metrics.Init(Version, GitCommit, BuildDate)

	shutdownTracing, err := telemetry.InitTracing(ctx, cfg.Tracing, Version, cfg.Environment)
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	defer func() {
		tctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(tctx); err != nil {
			logger.Warn().Err(err).Msg("tracing shutdown error")
		}
	}()

	a, err := openApp(ctx, cfg, logger, jobsWork)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := metrics.Registry.Register(metrics.NewPoolCollector(a.pool)); err != nil {
		logger.Warn().Err(err).Msg("pool metrics not registered")
	}

	bootstrapAdmin(ctx, a)

	if a.river != nil {
		// A canceled start context hard-stops River; Stop below drains it instead.
		if err := a.river.Start(context.WithoutCancel(ctx)); err != nil {
			return fmt.Errorf("river workers failed to start: %w", err)
		}
		logger.Info().Msg("river background job workers started")
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := a.river.Stop(stopCtx); err != nil {
				logger.Error().Err(err).Msg("river workers shutdown error")
			} else {
				logger.Info().Msg("river workers stopped")
			}
		}()
	} else {
		logger.Warn().Msg("jobs disabled; financials are only recalculated on demand")
	}

	var hub *realtime.Hub
	if cfg.Realtime.Enabled {
		hub = realtime.NewHub(cfg.Realtime.SubscriberBuffer, metrics.RealtimeDrop)
		listener := realtime.NewListener(cfg.Database.URL, cfg.Realtime.Channel, hub, logger)
		go func() {
			if err := listener.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error().Err(err).Msg("realtime listener stopped")
			}
		}()
	}

	// A nil *Hub must not reach the checker as a non-nil interface.
	var subscribers handlers.SubscriberCounter
	if hub != nil {
		subscribers = hub
	}
	health := handlers.NewHealthChecker(a.pool, cfg.Jobs.Enabled, subscribers, Version, GitCommit)

	router, err := api.NewRouter(api.Deps{
		Config:     cfg,
		Logger:     logger,
		JWT:        a.jwt,
		Services:   a.services(),
		Serializer: jsonld.NewSerializer(nil),
		Location:   a.location,
		Hub:        hub,
		Health:     health,
		MCP:        mcp.NewHTTPHandler(a.mcpServer()),
		Version:    Version,
		GitCommit:  GitCommit,
		BuildDate:  BuildDate,
	})
	if err != nil {
		return fmt.Errorf("router: %w", err)
	}

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second, // the stream handler lifts this per connection
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}

// bootstrapAdmin creates or promotes the configured admin when no admin
// exists yet. Failures are logged; the server still starts.
func bootstrapAdmin(ctx context.Context, a *app) {
	b := a.cfg.AdminBootstrap
	if b.Email == "" || b.Password == "" {
		a.logger.Debug().Msg("admin bootstrap env vars not set; skipping")
		return
	}
	bctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	changed, err := a.users.BootstrapAdmin(bctx, b.Email, b.Password, b.FullName)
	if err != nil {
		a.logger.Error().Err(err).Msg("admin bootstrap failed")
		return
	}
	if !changed {
		return
	}
	// Keep the address out of production logs.
	event := a.logger.Info()
	if a.cfg.Environment != "production" {
		event = event.Str("email", b.Email)
	}
	event.Msg("bootstrapped admin user")
}
