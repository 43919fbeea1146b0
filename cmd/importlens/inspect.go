package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"importlens/internal/reconstruct"
)

func newInspectCmd(a *app) *cobra.Command {
	var (
		maxObj   int
		ignore   []string
		resolve  string
		verifyIt bool
		timeout  time.Duration
		symtabs  []string
		scope    string
	)

	cmd := &cobra.Command{
		Use:   "inspect FILE",
		Short: "Print the import statements that reproduce a Python file's imported names",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if flags.Changed("max-obj") {
				a.cfg.MaxObj = maxObj
			}
			if flags.Changed("ignore") {
				a.cfg.Ignore = append(a.cfg.Ignore, ignore...)
			}
			if flags.Changed("resolver") {
				a.cfg.Resolver = resolve
			}
			if flags.Changed("timeout") {
				a.cfg.Timeout = timeout
			}
			if flags.Changed("symtab") {
				a.cfg.Symtab = append(a.cfg.Symtab, symtabs...)
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}

			idx, err := a.newIndexer()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			insp, err := idx.Inspect(ctx, args[0], scope)
			if err != nil {
				return err
			}
			for _, stage := range insp.Stages {
				a.logger.Debug("resolver stage",
					zap.String("resolver", stage.Resolver),
					zap.Int("attempted", stage.Stats.Attempted),
					zap.Int("resolved", stage.Stats.Resolved),
					zap.Int("skipped", stage.Stats.Skipped),
					zap.Error(stage.Err))
			}
			a.logger.Debug("frame resolved",
				zap.String("scope", scope),
				zap.Strings("bindings", insp.Snapshot.Names()))

			stmts := insp.Report.Statements
			var invalid []string
			if verifyIt {
				v, closeStore := a.newVerifier(cmd.ErrOrStderr())
				defer closeStore()

				res, err := v.Verify(ctx, stmts)
				if err != nil {
					return err
				}
				if res.Warning != nil {
					color.New(color.FgYellow).Fprintf(cmd.ErrOrStderr(), "warning: %v\n", res.Warning)
				}
				invalid = res.Invalid
				stmts = res.Valid(stmts)
			}

			if listing := reconstruct.Listing(stmts, a.cfg.MaxObj); listing != "" {
				fmt.Fprintln(cmd.OutOrStdout(), listing)
			}
			if len(invalid) > 0 {
				red := color.New(color.FgRed)
				red.Fprintf(cmd.ErrOrStderr(), "# Removed %d invalid import statement(s):\n", len(invalid))
				for _, s := range invalid {
					red.Fprintf(cmd.ErrOrStderr(), "#   %s\n", s)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&maxObj, "max-obj", reconstruct.DefaultMaxObj, "Collapse a from-import into '*' when it would list more names than this")
	cmd.Flags().StringSliceVar(&ignore, "ignore", nil, "Names, modules or module.object pairs to leave out")
	cmd.Flags().StringVar(&resolve, "resolver", "static", "How to resolve imports: static or probe")
	cmd.Flags().BoolVar(&verifyIt, "verify", false, "Drop statements that fail to import in a fresh interpreter")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "Deadline for verification")
	cmd.Flags().BoolVar(&a.noCache, "no-cache", false, "Always ask the interpreter, ignoring cached verification outcomes")
	cmd.Flags().StringSliceVar(&symtabs, "symtab", nil, "Extra symbol table files layered over the built-in one")
	cmd.Flags().StringVar(&scope, "scope", "", "Reconstruct the frame of this def or class (e.g. main or Model.fit)")
	return cmd
}
