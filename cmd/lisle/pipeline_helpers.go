package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"lisle/internal/diag"
	"lisle/internal/diagfmt"
	"lisle/internal/driver"
	"lisle/internal/source"
	"lisle/internal/trace"
)

const cacheApp = "lisle"

// driverOptions translates the global flags. A cache that cannot be opened
// is skipped.
func (a *app) driverOptions(ctx context.Context) driver.Options {
	opts := driver.Options{MaxDiagnostics: a.opts.maxDiagnostics, Timer: a.timer}
	if !a.opts.noCache {
		cache, err := driver.OpenDiskCache(cacheApp)
		if err != nil {
			trace.Point(trace.FromContext(ctx), trace.ScopeDriver, "cache disabled", err.Error(), trace.CurrentSpan(ctx).SpanID)
		} else {
			opts.Cache = cache
		}
	}
	return opts
}

// load runs the front end on path and prints its diagnostics to stderr.
// It returns a silent exit error when the file has errors.
func (a *app) load(cmd *cobra.Command, path string, opts driver.Options) (*driver.Result, error) {
	res, err := driver.Load(cmd.Context(), path, opts)
	if err != nil {
		return nil, &exitError{code: 1, err: err}
	}
	a.printDiagnostics(cmd.ErrOrStderr(), res.Bag, res.FileSet)
	if res.Bag.HasErrors() {
		return res, silentExit(cmd, 1)
	}
	return res, nil
}

func (a *app) printDiagnostics(w io.Writer, bag *diag.Bag, fs *source.FileSet) {
	if bag == nil || bag.Len() == 0 {
		return
	}
	bag.Sort()
	diagfmt.Pretty(w, bag, fs, diagfmt.PrettyOpts{
		Color:     a.useColor(w),
		Context:   1,
		ShowNotes: true,
	})
}

// printTimings writes the phase table to stderr when --timings is set.
func (a *app) printTimings(cmd *cobra.Command) {
	if a.timer == nil || a.opts.quiet {
		return
	}
	fmt.Fprint(cmd.ErrOrStderr(), a.timer.Summary())
}

// lexOnlyOptions is driverOptions for commands that only need tokens.
func (a *app) lexOnlyOptions() driver.Options {
	return driver.Options{MaxDiagnostics: a.opts.maxDiagnostics, Timer: a.timer, TokensOnly: true}
}
