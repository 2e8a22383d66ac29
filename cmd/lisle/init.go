package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lisle/internal/project"
)

func (a *app) newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init [dir]",
		Short: "Create a new Lisle project",
		Long: `Init writes lisle.toml and a hello-world main.lis into dir (default: the
current directory). The directory is created when missing. An existing
lisle.toml is never overwritten.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			res, err := project.Init(dir)
			if err != nil {
				return err
			}
			if a.opts.quiet {
				return nil
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "created %s\n", res.Manifest)
			if res.CreatedMain {
				fmt.Fprintf(out, "created %s\n", res.Main)
			} else {
				fmt.Fprintf(out, "kept existing %s\n", res.Main)
			}
			return nil
		},
	}
}
