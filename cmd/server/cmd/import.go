package cmd

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/Togather-Foundation/booking/internal/config"
	"github.com/Togather-Foundation/booking/internal/legacy"
	"github.com/Togather-Foundation/booking/internal/storage"
)

type importOptions struct {
	file        string
	dryRun      bool
	recalculate bool
}

func newImportCommand() *cobra.Command {
	var opts importOptions
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import an export of the previous hosted backend",
		Long: `Load producers, DJs, events, contracts and media from a JSON or YAML export.

Rows keep their original IDs and legacy field names are mapped on the way in.
Everything is written in one transaction: a failing row leaves the database
untouched. Financials are recalculated for every DJ afterwards.

Examples:
  booking import --file export.json
  booking import --file export.yaml --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "export file (JSON or YAML)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "parse and count rows without writing")
	cmd.Flags().BoolVar(&opts.recalculate, "recalculate", true, "recalculate every DJ's financials after the import")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func runImport(ctx context.Context, out io.Writer, opts importOptions) error {
	export, err := legacy.ReadExport(opts.file)
	if err != nil {
		return err
	}
	if opts.dryRun {
		printCounts(out, "would import", export.Counts())
		return nil
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	logger := config.NewStderrLogger(cfg.Logging)

	a, err := openApp(ctx, cfg, logger, jobsOff)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.repo.WithTx(ctx, func(ctx context.Context, repo storage.Repository) error {
		return importExport(ctx, repo, export)
	}); err != nil {
		return fmt.Errorf("import: %w", err)
	}
	printCounts(out, "imported", export.Counts())

	if opts.recalculate {
		n, err := a.financials.RecalculateAll(ctx)
		if err != nil {
			return fmt.Errorf("recalculate financials: %w", err)
		}
		fmt.Fprintf(out, "recalculated financials for %d DJ(s)\n", n)
	}
	return nil
}

// importExport writes parents before children so foreign keys resolve.
func importExport(ctx context.Context, repo storage.Repository, export legacy.Export) error {
	for _, row := range export.Producers {
		if _, err := repo.Producers().Create(ctx, legacy.ProducerFromRow(row)); err != nil {
			return fmt.Errorf("producer %s: %w", row.ID, err)
		}
	}
	for _, row := range export.DJs {
		if _, err := repo.DJs().Create(ctx, legacy.DJFromRow(row)); err != nil {
			return fmt.Errorf("dj %s: %w", row.ID, err)
		}
	}
	for _, row := range export.Events {
		if _, err := repo.Events().Create(ctx, legacy.EventFromRow(row)); err != nil {
			return fmt.Errorf("event %s: %w", row.ID, err)
		}
	}
	for _, row := range export.Contracts {
		if _, err := repo.Contracts().Create(ctx, legacy.ContractFromRow(row)); err != nil {
			return fmt.Errorf("contract %s: %w", row.ID, err)
		}
	}
	for _, m := range export.Media {
		if _, err := repo.Media().Create(ctx, m); err != nil {
			return fmt.Errorf("media %s: %w", m.ID, err)
		}
	}
	return nil
}

func printCounts(out io.Writer, verb string, counts map[string]int) {
	tables := make([]string, 0, len(counts))
	for table := range counts {
		tables = append(tables, table)
	}
	sort.Strings(tables)
	for _, table := range tables {
		fmt.Fprintf(out, "%s %d %s\n", verb, counts[table], table)
	}
}
