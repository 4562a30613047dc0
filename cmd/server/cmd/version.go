package cmd

import (
	"encoding/json"
	"fmt"
	"runtime"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Togather-Foundation/booking/internal/api"
)

// Set with -ldflags "-X .../cmd.Version=..." at build time.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func newVersionCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print the version number, git commit, build date and Go runtime of this binary.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := api.NewBuildInfo(Version, GitCommit, BuildDate)
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			}

			fmt.Fprintln(out, "Booking Portal")
			tw := tabwriter.NewWriter(out, 0, 0, 1, ' ', 0)
			fmt.Fprintf(tw, "Version:\t%s\n", info.Version)
			fmt.Fprintf(tw, "Git commit:\t%s\n", info.GitCommit)
			fmt.Fprintf(tw, "Build date:\t%s\n", info.BuildDate)
			fmt.Fprintf(tw, "Go version:\t%s\n", info.GoVersion)
			fmt.Fprintf(tw, "Platform:\t%s/%s\n", runtime.GOOS, runtime.GOARCH)
			fmt.Fprintf(tw, "API:\t%s\n", info.APIVersion)
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON, the same document GET /version serves")
	return cmd
}
