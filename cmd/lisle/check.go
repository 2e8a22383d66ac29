package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"lisle/internal/diag"
	"lisle/internal/diagfmt"
	"lisle/internal/driver"
	"lisle/internal/source"
)

type checkOptions struct {
	jobs     int
	format   string
	ui       string
	pathMode string
}

func (a *app) newCheckCmd() *cobra.Command {
	var co checkOptions
	cmd := &cobra.Command{
		Use:   "check [flags] <file.lis|dir>...",
		Short: "Tokenize and build Lisle files without running them",
		Long: `Check validates every given file, and every *.lis file below given
directories, in parallel. It exits with status 1 when any file has errors.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCheck(cmd, args, co)
		},
	}
	cmd.Flags().IntVar(&co.jobs, "jobs", 0, "max parallel workers (0=auto)")
	cmd.Flags().StringVar(&co.format, "format", "pretty", "output format (pretty|json|short)")
	cmd.Flags().StringVar(&co.ui, "ui", "auto", "progress view (auto|on|off)")
	cmd.Flags().StringVar(&co.pathMode, "path-mode", "auto", "how paths are printed (auto|absolute|relative|basename)")
	return cmd
}

func (a *app) runCheck(cmd *cobra.Command, args []string, co checkOptions) error {
	switch co.format {
	case "pretty", "json", "short":
	default:
		return fmt.Errorf("unknown format: %s", co.format)
	}
	pathMode, ok := diagfmt.ParsePathMode(co.pathMode)
	if !ok {
		return fmt.Errorf("invalid --path-mode value %q", co.pathMode)
	}
	mode, err := readUIMode(co.ui)
	if err != nil {
		return err
	}

	files, err := driver.ExpandPaths(args)
	if err != nil {
		return &exitError{code: 1, err: err}
	}
	opts := driver.CheckOptions{Options: a.driverOptions(cmd.Context()), Jobs: co.jobs}

	var results []driver.CheckResult
	if co.format == "pretty" && !a.opts.quiet && shouldUseTUI(mode, cmd.OutOrStdout()) {
		results, err = runCheckWithUI(cmd, files, opts)
	} else {
		results, err = driver.CheckFiles(cmd.Context(), files, opts)
	}
	if err != nil {
		return &exitError{code: 1, err: err}
	}

	bag := driver.MergeResults(results, a.opts.maxDiagnostics)
	bag.Sort()
	failed := 0
	for _, r := range results {
		if r.Failed() {
			failed++
		}
	}

	out := cmd.OutOrStdout()
	switch co.format {
	case "json":
		if a.timer != nil {
			driver.AppendTimings(bag, "check", "", a.timer)
		}
		payload := diagfmt.BuildDiagnosticsOutput(bag, diagfmt.JSONOpts{PathMode: pathMode, IncludeNotes: true})
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(payload); err != nil {
			return err
		}
	case "short":
		for _, d := range bag.Items() {
			fmt.Fprintf(out, "%s:%d:%d: %s %s\n", d.Path, d.Line, d.Primary.Col(), d.Code.ID(), d.Message)
		}
	default:
		a.printDiagnostics(out, bag, reloadFailed(results))
		a.printTimings(cmd)
		if !a.opts.quiet {
			fmt.Fprintf(out, "checked %d file(s): %d ok, %d with errors\n", len(results), len(results)-failed, failed)
		}
	}
	if failed > 0 {
		return silentExit(cmd, 1)
	}
	return nil
}

// reloadFailed reads the failing files again so diagnostics get snippets.
func reloadFailed(results []driver.CheckResult) *source.FileSet {
	fs := source.NewFileSet()
	for _, r := range results {
		if !r.Failed() || hasIOError(r.Bag) {
			continue
		}
		_, _ = fs.Load(r.Path)
	}
	return fs
}

func hasIOError(bag *diag.Bag) bool {
	for _, d := range bag.Items() {
		if strings.HasPrefix(d.Code.ID(), "IO") {
			return true
		}
	}
	return false
}
