package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lisle/internal/fixture"
)

func (a *app) newConformCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "conform [flags] <dir|file.yaml>...",
		Short: "Run YAML scenario files against the runtime",
		Long: `Conform loads every *.yaml scenario file, runs each scenario in a fresh
session and compares output, results, exit codes and errors with the
expectations. It exits with status 1 when a scenario fails.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var files []*fixture.File
			for _, root := range args {
				loaded, err := fixture.LoadDir(root)
				if err != nil {
					return err
				}
				files = append(files, loaded...)
			}

			out := cmd.OutOrStdout()
			var sum fixture.Summary
			for _, f := range files {
				outcomes, err := fixture.RunFile(cmd.Context(), f)
				if err != nil {
					return err
				}
				for _, o := range outcomes {
					sum.Add(o)
					switch {
					case o.Skipped:
						if verbose {
							fmt.Fprintf(out, "SKIP %s: %s\n", o.File, o.Name)
						}
					case o.Passed():
						if verbose {
							fmt.Fprintf(out, "ok   %s: %s\n", o.File, o.Name)
						}
					default:
						fmt.Fprintf(out, "FAIL %s: %s\n", o.File, o.Name)
						for _, msg := range o.Failures {
							fmt.Fprintf(out, "     %s\n", msg)
						}
					}
				}
			}
			if !a.opts.quiet {
				fmt.Fprintln(out, sum.String())
			}
			if sum.Failed > 0 {
				return silentExit(cmd, 1)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "list passing and skipped scenarios too")
	return cmd
}
