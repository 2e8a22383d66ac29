package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"lisle/internal/format"
	"lisle/internal/linestore"
	"lisle/internal/project"
)

type fmtOptions struct {
	write  bool
	check  bool
	indent int
	tabs   bool
}

func (a *app) newFmtCmd() *cobra.Command {
	var fo fmtOptions
	cmd := &cobra.Command{
		Use:   "fmt [flags] file.lis...",
		Short: "Print Lisle files in canonical form",
		Long: `Fmt re-renders each file from its tokens: canonical spacing and block
indentation. Indentation follows [format] of the nearest lisle.toml unless
--indent or --tabs is given.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			changed := 0
			for _, path := range args {
				opt, err := formatOptionsFor(cmd, path, fo)
				if err != nil {
					return err
				}
				same, err := a.formatFile(cmd, path, opt, fo)
				if err != nil {
					return err
				}
				if !same {
					changed++
				}
			}
			if fo.check && changed > 0 {
				return silentExit(cmd, 1)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&fo.write, "write", "w", false, "rewrite files in place")
	cmd.Flags().BoolVar(&fo.check, "check", false, "list files that are not formatted and fail")
	cmd.Flags().IntVar(&fo.indent, "indent", 0, "spaces per nesting level (default 4)")
	cmd.Flags().BoolVar(&fo.tabs, "tabs", false, "indent with tabs")
	cmd.MarkFlagsMutuallyExclusive("write", "check")
	return cmd
}

func formatOptionsFor(cmd *cobra.Command, path string, fo fmtOptions) (format.Options, error) {
	m, _, err := project.Discover(filepath.Dir(path))
	if err != nil {
		return format.Options{}, err
	}
	opt := m.FormatOptions()
	if cmd.Flags().Changed("indent") {
		opt.IndentWidth = fo.indent
	}
	if cmd.Flags().Changed("tabs") {
		opt.UseTabs = fo.tabs
	}
	return opt, nil
}

// formatFile reports whether path already was in canonical form.
func (a *app) formatFile(cmd *cobra.Command, path string, opt format.Options, fo fmtOptions) (bool, error) {
	res, err := a.load(cmd, path, a.lexOnlyOptions())
	if err != nil {
		return false, err
	}
	store := linestore.FromTokens(opt, res.Tokens)
	out := store.Render()

	orig, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	same := string(orig) == out

	switch {
	case fo.check:
		if !same {
			fmt.Fprintln(cmd.OutOrStdout(), path)
		}
	case fo.write:
		if !same {
			info, err := os.Stat(path)
			if err != nil {
				return false, err
			}
			if err := os.WriteFile(path, []byte(out), info.Mode().Perm()); err != nil {
				return false, err
			}
			if !a.opts.quiet {
				fmt.Fprintf(cmd.ErrOrStderr(), "formatted %s\n", path)
			}
		}
	default:
		fmt.Fprint(cmd.OutOrStdout(), out)
	}
	return same, nil
}
