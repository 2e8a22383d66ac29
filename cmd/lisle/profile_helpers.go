package main

import (
	"fmt"

	"lisle/internal/prof"
)

// setupProfiling starts the profilers named by the persistent flags.
func (a *app) setupProfiling() error {
	opts := prof.Options{
		CPUProfile:   a.opts.cpuProfile,
		MemProfile:   a.opts.memProfile,
		RuntimeTrace: a.opts.runtimeTrace,
	}
	if opts == (prof.Options{}) {
		return nil
	}
	session, err := prof.Start(opts)
	if err != nil {
		return fmt.Errorf("failed to start profiling: %w", err)
	}
	a.cleanup = append(a.cleanup, session.Stop)
	return nil
}
