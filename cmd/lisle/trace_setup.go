package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"lisle/internal/trace"
)

// setupTracing builds the tracer from the --trace* flags and attaches it to
// the command context.
func (a *app) setupTracing(cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	level, err := trace.ParseLevel(a.opts.traceLevel)
	if err != nil {
		return err
	}
	// --trace без уровня включает фазы
	if level == trace.LevelOff && a.opts.trace != "" {
		level = trace.LevelPhase
	}
	if level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(ctx, trace.Nop))
		return nil
	}

	mode, err := trace.ParseMode(a.opts.traceMode)
	if err != nil {
		return err
	}
	if a.opts.trace != "" && mode == trace.ModeRing {
		mode = trace.ModeBoth
	}
	format, err := trace.ParseFormat(a.opts.traceFormat)
	if err != nil {
		return err
	}
	cfg := trace.Config{
		Level:      level,
		Mode:       mode,
		Format:     format,
		OutputPath: a.opts.trace,
		RingSize:   a.opts.traceRingSize,
	}
	if a.opts.trace == "" || a.opts.trace == "-" {
		cfg.Output = nopWriteCloser{cmd.ErrOrStderr()}
	}
	tracer, err := trace.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create tracer: %w", err)
	}

	root := trace.Begin(tracer, trace.ScopeDriver, cmd.CommandPath(), 0)
	ctx = trace.WithTracer(ctx, tracer)
	ctx = trace.WithSpanContext(ctx, trace.SpanContext{SpanID: root.ID()})
	cmd.SetContext(ctx)

	heartbeat := trace.StartHeartbeat(tracer, a.opts.traceHeartbeat)
	a.tracer = tracer
	a.cleanup = append(a.cleanup, func() error {
		heartbeat.Stop()
		root.End("")
		if err := tracer.Flush(); err != nil {
			return fmt.Errorf("trace: flush: %w", err)
		}
		return tracer.Close()
	})
	return nil
}

// dumpTrace writes the trace ring, if any, after a failed command.
func (a *app) dumpTrace(w io.Writer) {
	ring := trace.Ring(a.tracer)
	if ring == nil {
		return
	}
	fmt.Fprintln(w, "--- trace (most recent events) ---")
	if err := ring.Dump(w, trace.FormatText); err != nil {
		fmt.Fprintf(w, "trace: dump: %v\n", err)
	}
}

// nopWriteCloser keeps the tracer from closing the command's stderr.
type nopWriteCloser struct{ io.Writer }
