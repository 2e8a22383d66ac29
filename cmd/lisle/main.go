package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"lisle/internal/observ"
	"lisle/internal/trace"
	"lisle/internal/version"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	color          string
	quiet          bool
	timings        bool
	maxDiagnostics int
	noCache        bool

	trace          string
	traceLevel     string
	traceMode      string
	traceFormat    string
	traceRingSize  int
	traceHeartbeat time.Duration

	cpuProfile   string
	memProfile   string
	runtimeTrace string
}

// app holds the state of one CLI invocation.
type app struct {
	opts    globalOptions
	timer   *observ.Timer
	tracer  trace.Tracer
	cleanup []func() error
}

// exitError carries a process exit code; Err, when set, has already been
// reported or is printed by main.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

// silentExit stops with code after diagnostics were already printed.
func silentExit(cmd *cobra.Command, code int) error {
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	return &exitError{code: code}
}

func newRootCmd() (*cobra.Command, *app) {
	a := &app{}
	root := &cobra.Command{
		Use:           "lisle",
		Short:         "Lisle scripting language runtime",
		Long:          `Lisle runs line-oriented scripts and ships tools to tokenize, format and check them`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	// Глобальные флаги
	pf := root.PersistentFlags()
	pf.StringVar(&a.opts.color, "color", "auto", "colorize output (auto|on|off)")
	pf.BoolVar(&a.opts.quiet, "quiet", false, "suppress non-essential output")
	pf.BoolVar(&a.opts.timings, "timings", false, "show timing information")
	pf.IntVar(&a.opts.maxDiagnostics, "max-diagnostics", 100, "maximum number of diagnostics per file")
	pf.BoolVar(&a.opts.noCache, "no-cache", false, "disable the on-disk program image cache")
	pf.StringVar(&a.opts.trace, "trace", "", "write trace events to file (- for stderr)")
	pf.StringVar(&a.opts.traceLevel, "trace-level", "off", "trace level (off|error|phase|detail|debug)")
	pf.StringVar(&a.opts.traceMode, "trace-mode", "ring", "trace mode (stream|ring|both)")
	pf.StringVar(&a.opts.traceFormat, "trace-format", "auto", "trace format (auto|text|ndjson)")
	pf.IntVar(&a.opts.traceRingSize, "trace-ring-size", 4096, "events kept by the trace ring")
	pf.DurationVar(&a.opts.traceHeartbeat, "trace-heartbeat", 0, "emit heartbeat events at this interval (0 disables)")
	pf.StringVar(&a.opts.cpuProfile, "cpuprofile", "", "write CPU profile to file")
	pf.StringVar(&a.opts.memProfile, "memprofile", "", "write heap profile to file")
	pf.StringVar(&a.opts.runtimeTrace, "runtime-trace", "", "write Go runtime trace to file")

	root.AddCommand(
		a.newRunCmd(),
		a.newTokenizeCmd(),
		a.newParseCmd(),
		a.newFmtCmd(),
		a.newCheckCmd(),
		a.newEncodeCmd(),
		a.newDecodeCmd(),
		a.newConformCmd(),
		a.newInitCmd(),
		a.newVersionCmd(),
	)
	return root, a
}

// setup runs before every command: colour, tracing, profiling, timings.
func (a *app) setup(cmd *cobra.Command) error {
	if err := applyColorMode(a.opts.color); err != nil {
		return err
	}
	if err := a.setupTracing(cmd); err != nil {
		return err
	}
	if err := a.setupProfiling(); err != nil {
		return err
	}
	if a.opts.timings {
		a.timer = observ.NewTimer()
	}
	return nil
}

// finish releases everything setup acquired, in reverse order.
func (a *app) finish() error {
	var errs []error
	for i := len(a.cleanup) - 1; i >= 0; i-- {
		if err := a.cleanup[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.cleanup = nil
	return errors.Join(errs...)
}

func execute(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	root, a := newRootCmd()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	if err != nil {
		a.dumpTrace(stderr)
	}
	if ferr := a.finish(); ferr != nil {
		fmt.Fprintf(stderr, "lisle: %v\n", ferr)
	}
	if err == nil {
		return 0
	}
	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			fmt.Fprintf(stderr, "lisle: %v\n", ee.err)
		}
		return ee.code
	}
	fmt.Fprintf(stderr, "lisle: %v\n", err)
	return 1
}

func main() {
	os.Exit(execute(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// isTerminal проверяет, является ли writer терминалом
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd())) // #nosec G115 -- descriptor fits int
}
