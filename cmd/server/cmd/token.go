package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Togather-Foundation/booking/internal/access"
	"github.com/Togather-Foundation/booking/internal/config"
)

func newTokenCommand() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for an existing account",
		Long: `Print a signed session token for the account with --email.

Useful for scripts and local testing:
  curl -H "Authorization: Bearer $(booking token --email admin@example.com)" \
    http://localhost:8080/api/v1/dashboard`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("config error: %w", err)
			}
			a, err := openApp(cmd.Context(), cfg, config.NewStderrLogger(cfg.Logging), jobsOff)
			if err != nil {
				return err
			}
			defer a.Close()

			profile, err := a.repo.Profiles().GetByEmail(cmd.Context(), email)
			if err != nil {
				return fmt.Errorf("account %s: %w", email, err)
			}
			user := access.UserFromProfile(*profile)
			token, err := a.jwt.Generate(user.ID, user.Role)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
