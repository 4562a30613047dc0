package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/Togather-Foundation/booking/internal/access"
	"github.com/Togather-Foundation/booking/internal/config"
)

var errNotAdmin = errors.New("mcp is limited to admin accounts")

func newMCPCommand() *cobra.Command {
	var as string
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the MCP tools over stdio",
		Long: `Run the Model Context Protocol server on stdin/stdout for a local agent.

Every tool call runs as the admin account given by --as, with the same
visibility rules as the HTTP API. Logs go to stderr; stdout carries only
protocol messages.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("config error: %w", err)
			}
			logger := config.NewStderrLogger(cfg.Logging)
			a, err := openApp(cmd.Context(), cfg, logger, jobsOff)
			if err != nil {
				return err
			}
			defer a.Close()

			profile, err := a.repo.Profiles().GetByEmail(cmd.Context(), as)
			if err != nil {
				return fmt.Errorf("account %s: %w", as, err)
			}
			user := access.UserFromProfile(*profile)
			if !user.IsAdmin() {
				return errNotAdmin
			}

			stdio := server.NewStdioServer(a.mcpServer().MCPServer())
			stdio.SetContextFunc(func(ctx context.Context) context.Context {
				return access.WithUser(ctx, user)
			})
			logger.Info().Str("as", user.ID).Msg("mcp stdio server started")
			if err := stdio.Listen(cmd.Context(), os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&as, "as", "", "email of the admin account tool calls run as")
	_ = cmd.MarkFlagRequired("as")
	return cmd
}
