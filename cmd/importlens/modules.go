package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"importlens/internal/graph"
	"importlens/internal/index"
)

func newModulesCmd(a *app) *cobra.Command {
	var (
		dbPath    string
		from      string
		file      string
		wildcards bool
	)

	cmd := &cobra.Command{
		Use:   "modules [MODULE]",
		Short: "Rank modules by the number of files importing them, or list the importers of one",
		Long: `Without arguments, modules ranks every imported module. With MODULE it lists
the files importing it, with --file the modules one file imports and with
--wildcards every from-import collapsed into '*'.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("db") {
				a.cfg.Database = dbPath
			}

			var report *index.Report
			if from != "" {
				r, err := index.LoadReport(from)
				if err != nil {
					return err
				}
				report = r
			} else {
				store, err := a.openStore()
				if err != nil {
					return err
				}
				defer store.Close()
				report, err = store.LoadReport(cmd.Context())
				if err != nil {
					return err
				}
			}

			w := cmd.OutOrStdout()
			g := graph.FromReport(report)
			switch {
			case wildcards:
				for _, e := range g.Wildcards() {
					fmt.Fprintf(w, "%s: from %s import *\n", e.From, e.To)
				}
				return nil
			case file != "":
				for _, module := range g.Dependencies(file) {
					fmt.Fprintln(w, module)
				}
				return nil
			}
			if len(args) == 1 {
				for _, file := range g.Importers(args[0]) {
					fmt.Fprintln(w, file)
				}
				return nil
			}
			for _, m := range g.Modules() {
				fmt.Fprintf(w, "%5d  %s\n", len(m.Importers), m.Module)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&dbPath, "db", "d", "", "Path to the report database (SQLite)")
	cmd.Flags().StringVar(&from, "from", "", "Read the report from a JSON file written by scan --out")
	cmd.Flags().StringVar(&file, "file", "", "List the modules imported by this file")
	cmd.Flags().BoolVar(&wildcards, "wildcards", false, "List the from-imports collapsed into '*'")
	cmd.MarkFlagsMutuallyExclusive("file", "wildcards")
	return cmd
}
