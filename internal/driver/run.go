package driver

import (
	"context"
	"errors"
	"fmt"

	"lisle/internal/diag"
	"lisle/internal/trace"
	"lisle/internal/vm"
)

// RunOptions configure Run.
type RunOptions struct {
	VM vm.Options
	// Entry names a function to call instead of running the top level.
	// Dotted names reach into modules.
	Entry string
}

// Outcome describes a finished run.
type Outcome struct {
	// ExitCode is the code passed to exit(), or 0.
	ExitCode int
	Exited   bool
	// Result is the rendered return value of Entry.
	Result string
	// Leaks lists objects still alive after the session closed. Close only
	// fails on them with LeakCheck.
	Leaks []vm.Leak
}

// Run executes a loaded program in a new session. Runtime errors come back
// as *vm.VMError; a leak report from Close is joined to them.
func Run(ctx context.Context, res *Result, opts RunOptions) (Outcome, error) {
	var out Outcome
	if res == nil || res.Program == nil {
		if err := FirstError(res.bagOrNil()); err != nil {
			return out, err
		}
		return out, errors.New("driver: no program to run")
	}

	tr := trace.FromContext(ctx)
	span := trace.Begin(tr, trace.ScopeDriver, "execute "+res.File.Path, trace.CurrentSpan(ctx).SpanID)
	ctx = trace.WithSpanContext(ctx, trace.SpanContext{SpanID: span.ID()})

	s := vm.NewSession(opts.VM)
	var runErr error
	if opts.Entry == "" {
		runErr = s.Run(ctx, res.Program)
	} else {
		ret, err := s.RunFunction(ctx, res.Program, opts.Entry, nil)
		if err == nil {
			out.Result, err = s.ToString(ctx, ret)
			s.Release(ret)
		}
		runErr = err
	}
	out.ExitCode, out.Exited = s.ExitCode()

	closeErr := s.Close()
	out.Leaks = s.Leaks()
	span.End(fmt.Sprintf("exit=%d", out.ExitCode))
	return out, errors.Join(runErr, closeErr)
}

func (r *Result) bagOrNil() *diag.Bag {
	if r == nil {
		return nil
	}
	return r.Bag
}
