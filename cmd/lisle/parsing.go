package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lisle/internal/diagfmt"
	"lisle/internal/driver"
)

func (a *app) newParseCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "parse [flags] file.lis",
		Short: "Print the statements of a Lisle file with their nesting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "pretty" && format != "json" {
				return fmt.Errorf("unknown format: %s", format)
			}
			opts := driver.Options{MaxDiagnostics: a.opts.maxDiagnostics, Timer: a.timer}
			res, err := a.load(cmd, args[0], opts)
			if err != nil {
				return err
			}
			a.printTimings(cmd)
			if format == "json" {
				return diagfmt.FormatProgramJSON(cmd.OutOrStdout(), res.Program)
			}
			return diagfmt.FormatProgramPretty(cmd.OutOrStdout(), res.Program)
		},
	}
	cmd.Flags().StringVar(&format, "format", "pretty", "output format (pretty|json)")
	return cmd
}
