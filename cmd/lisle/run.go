package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"lisle/internal/driver"
	"lisle/internal/vm"
	"lisle/internal/version"
)

type runOptions struct {
	entry        string
	vmTrace      bool
	leakCheck    bool
	record       string
	replay       string
	maxCallDepth int
}

func (a *app) newRunCmd() *cobra.Command {
	var ro runOptions
	cmd := &cobra.Command{
		Use:   "run [file.lis|dir]",
		Short: "Run a Lisle program",
		Long: `Run executes a program. Without an argument the [run].main file of the
nearest lisle.toml is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := ""
			if len(args) == 1 {
				target = args[0]
			}
			return a.runProgram(cmd, target, ro)
		},
	}
	cmd.Flags().StringVar(&ro.entry, "entry", "", "call this function instead of running the top level")
	cmd.Flags().BoolVar(&ro.vmTrace, "vm-trace", false, "print every executed statement to stderr")
	cmd.Flags().BoolVar(&ro.leakCheck, "leak-check", false, "fail when heap objects outlive the program")
	cmd.Flags().StringVar(&ro.record, "record", "", "record host calls to an NDJSON log")
	cmd.Flags().StringVar(&ro.replay, "replay", "", "replay host calls from a recorded log")
	cmd.Flags().IntVar(&ro.maxCallDepth, "max-call-depth", 0, "limit nested function calls (0 = manifest or default)")
	cmd.MarkFlagsMutuallyExclusive("record", "replay")
	return cmd
}

func (a *app) runProgram(cmd *cobra.Command, target string, ro runOptions) (err error) {
	path, manifest, err := resolveRunTarget(target)
	if err != nil {
		return &exitError{code: 1, err: err}
	}
	res, err := a.load(cmd, path, a.driverOptions(cmd.Context()))
	if err != nil {
		return err
	}

	vmOpts := manifest.VMOptions()
	if ro.maxCallDepth > 0 {
		vmOpts.MaxCallDepth = ro.maxCallDepth
	}
	if ro.leakCheck {
		vmOpts.LeakCheck = true
	}
	if ro.vmTrace {
		vmOpts.Tracer = vm.NewTracer(cmd.ErrOrStderr(), res.Lines())
	}
	entry := ro.entry
	if entry == "" && manifest != nil {
		entry = manifest.Config.Run.Entry
	}

	host, finishHost, err := a.buildHost(cmd, path, ro)
	if err != nil {
		return &exitError{code: 1, err: err}
	}
	vmOpts.Host = host

	idx := a.timer.Begin("run")
	outcome, runErr := driver.Run(cmd.Context(), res, driver.RunOptions{VM: vmOpts, Entry: entry})
	a.timer.End(idx, path)
	hostErr := finishHost(outcome, runErr)
	a.printTimings(cmd)

	if entry != "" && runErr == nil && !outcome.Exited {
		fmt.Fprintln(cmd.OutOrStdout(), outcome.Result)
	}
	if runErr != nil {
		reportRunError(cmd.ErrOrStderr(), runErr)
		return silentExit(cmd, 1)
	}
	if hostErr != nil {
		return &exitError{code: 1, err: hostErr}
	}
	if outcome.Exited {
		return silentExit(cmd, outcome.ExitCode)
	}
	return nil
}

// buildHost picks the standard, recording or replaying host. The returned
// function finalizes the log once the program stopped.
func (a *app) buildHost(cmd *cobra.Command, path string, ro runOptions) (vm.Host, func(driver.Outcome, error) error, error) {
	std := vm.NewStdHost(cmd.OutOrStdout(), cmd.InOrStdin())
	switch {
	case ro.record != "":
		f, err := os.Create(ro.record)
		if err != nil {
			return nil, nil, fmt.Errorf("record: %w", err)
		}
		rec := vm.NewRecorder(f, version.Version, path)
		finish := func(out driver.Outcome, runErr error) error {
			var vmErr *vm.VMError
			switch {
			case errors.As(runErr, &vmErr):
				rec.RecordError(vmErr)
			case out.Exited:
				rec.RecordExit(out.ExitCode)
			}
			return errors.Join(rec.Err(), f.Close())
		}
		return vm.NewRecordingHost(std, rec), finish, nil

	case ro.replay != "":
		f, err := os.Open(ro.replay)
		if err != nil {
			return nil, nil, fmt.Errorf("replay: %w", err)
		}
		defer f.Close()
		rp := vm.NewReplayer(f)
		if err := rp.Validate(); err != nil {
			return nil, nil, fmt.Errorf("replay %s: %w", ro.replay, err)
		}
		finish := func(driver.Outcome, error) error {
			if n := rp.Remaining(); n > 0 {
				return fmt.Errorf("replay: %d recorded event(s) were not consumed", n)
			}
			return nil
		}
		return vm.NewReplayHost(rp, cmd.OutOrStdout()), finish, nil
	}
	return std, func(driver.Outcome, error) error { return nil }, nil
}

// reportRunError prints runtime panics with their backtrace and any other
// error (a leak report from Close) on its own line.
func reportRunError(w io.Writer, err error) {
	errs := []error{err}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs = joined.Unwrap()
	}
	for _, e := range errs {
		var vmErr *vm.VMError
		if errors.As(e, &vmErr) {
			fmt.Fprint(w, vmErr.Format())
			continue
		}
		fmt.Fprintf(w, "error: %v\n", e)
	}
}
