package main

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"importlens/internal/analysis"
	"importlens/internal/index"
	"importlens/internal/pipeline"
)

func newScanCmd(a *app) *cobra.Command {
	var (
		since  string
		dbPath string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "scan [DIR]",
		Short: "Reconstruct the imports of every Python file and report drift from the last scan",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			if cmd.Flags().Changed("db") {
				a.cfg.Database = dbPath
			}
			w := cmd.OutOrStdout()
			ctx := cmd.Context()

			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			idx, err := a.newIndexer()
			if err != nil {
				return err
			}

			fmt.Fprintf(w, "📂 Scanning directory: %s\n", dir)
			res, err := pipeline.NewSync(idx, store, w, a.logger).Run(ctx, dir, since)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "✅ Indexed %d files, %d statements in %v\n",
				len(res.Report.Files), res.Report.Statements(), res.Duration.Round(time.Millisecond))

			printDrift(w, res.Drift)

			if out != "" {
				if err := index.SaveReport(res.Report, out); err != nil {
					return err
				}
			}
			fmt.Fprintf(w, "💾 Report saved to %s\n", a.cfg.Database)
			return nil
		},
	}

	cmd.Flags().StringVar(&since, "since", "", "Only rescan Python files changed since this git ref")
	cmd.Flags().StringVarP(&dbPath, "db", "d", "", "Path to the report database (SQLite)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Also write the report as JSON to this file")
	return cmd
}

func printDrift(w io.Writer, drift *analysis.DriftReport) {
	if drift.Empty() {
		fmt.Fprintln(w, "No import drift.")
		return
	}
	bold := color.New(color.Bold)
	added := color.New(color.FgGreen)
	removed := color.New(color.FgRed)
	for _, f := range drift.Files {
		bold.Fprintln(w, f.Path)
		for _, s := range f.Removed {
			removed.Fprintf(w, "  - %s\n", s)
		}
		for _, s := range f.Added {
			added.Fprintf(w, "  + %s\n", s)
		}
	}
}
