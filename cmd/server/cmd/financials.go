package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Togather-Foundation/booking/internal/config"
)

func newFinancialsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "financials",
		Short: "Maintain the per-DJ financial rollups",
	}

	var djID string
	recalc := &cobra.Command{
		Use:   "recalc",
		Short: "Recalculate financials now",
		Long: `Rebuild financial rollups from signed contracts and event fees.

Without --dj every DJ is recalculated. This runs in-process and does not
need the job workers.`,
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

			out := cmd.OutOrStdout()
			if djID != "" {
				data, err := a.financials.Recalculate(cmd.Context(), djID)
				if err != nil {
					return fmt.Errorf("dj %s: %w", djID, err)
				}
				fmt.Fprintf(out, "dj %s: %d completed event(s), total %.2f, pending %.2f, net %.2f (%.1f%% commission)\n",
					djID, data.CompletedEvents, data.TotalEarnings, data.PendingPayments, data.NetEarnings, data.CommissionRate)
				return nil
			}
			n, err := a.financials.RecalculateAll(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "recalculated financials for %d DJ(s)\n", n)
			return nil
		},
	}
	recalc.Flags().StringVar(&djID, "dj", "", "recalculate a single DJ")

	cmd.AddCommand(recalc)
	return cmd
}
