package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lisle/internal/diagfmt"
	"lisle/internal/driver"
)

func (a *app) newTokenizeCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "tokenize [flags] file.lis",
		Short: "Print the tokens of a Lisle file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "pretty" && format != "json" {
				return fmt.Errorf("unknown format: %s", format)
			}
			opts := driver.Options{MaxDiagnostics: a.opts.maxDiagnostics, Timer: a.timer, TokensOnly: true}
			res, loadErr := a.load(cmd, args[0], opts)
			if res == nil {
				return loadErr
			}
			a.printTimings(cmd)

			// токены печатаем даже при ошибках: битые строки просто пустые
			var err error
			if format == "json" {
				err = diagfmt.FormatTokensJSON(cmd.OutOrStdout(), res.Tokens)
			} else {
				err = diagfmt.FormatTokensPretty(cmd.OutOrStdout(), res.Tokens)
			}
			if err != nil {
				return err
			}
			return loadErr
		},
	}
	cmd.Flags().StringVar(&format, "format", "pretty", "output format (pretty|json)")
	return cmd
}
