package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newVerifyCmd(a *app) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "verify [STATEMENT...]",
		Short: "Print the import statements that fail in a fresh interpreter",
		Long:  "Statements are taken from the arguments, or one per line from stdin when none are given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("timeout") {
				a.cfg.Timeout = timeout
				if err := a.cfg.Validate(); err != nil {
					return err
				}
			}

			stmts := args
			if len(stmts) == 0 {
				var err error
				stmts, err = readStatements(cmd.InOrStdin())
				if err != nil {
					return err
				}
			}

			v, closeStore := a.newVerifier(cmd.ErrOrStderr())
			defer closeStore()

			res, err := v.Verify(cmd.Context(), stmts)
			if err != nil {
				return err
			}
			if res.Warning != nil {
				color.New(color.FgYellow).Fprintf(cmd.ErrOrStderr(), "warning: %v\n", res.Warning)
			}
			red := color.New(color.FgRed)
			for _, s := range res.Invalid {
				red.Fprintln(cmd.OutOrStdout(), s)
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "Deadline for verification")
	cmd.Flags().BoolVar(&a.noCache, "no-cache", false, "Always ask the interpreter, ignoring cached verification outcomes")
	return cmd
}

// readStatements returns the non-blank lines of r, trimmed.
func readStatements(r io.Reader) ([]string, error) {
	var stmts []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		stmts = append(stmts, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read statements: %w", err)
	}
	return stmts, nil
}
