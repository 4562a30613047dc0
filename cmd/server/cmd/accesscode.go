package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Togather-Foundation/booking/internal/config"
)

func newAccessCodeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "access-code <producer-id>",
		Short: "Generate a new access code for a producer",
		Long: `Generate a fresh access code for a producer and print it.

The previous code stops working immediately. With jobs enabled the code is
also mailed to the producer by the next running server.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("config error: %w", err)
			}
			a, err := openApp(cmd.Context(), cfg, config.NewStderrLogger(cfg.Logging), jobsInsert)
			if err != nil {
				return err
			}
			defer a.Close()

			code, err := a.producers.AssignAccessCode(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("producer %s: %w", args[0], err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), code)
			return nil
		},
	}
}
