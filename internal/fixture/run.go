package fixture

import (
	"context"
	"errors"
	"fmt"

	"lisle/internal/diag"
	"lisle/internal/driver"
	"lisle/internal/vm"
)

// Outcome is the verdict for one scenario.
type Outcome struct {
	File     string
	Name     string
	Skipped  bool
	Failures []string
	Stdout   string
}

// Passed reports whether the scenario ran and met every expectation.
func (o Outcome) Passed() bool { return !o.Skipped && len(o.Failures) == 0 }

// Summary counts outcomes.
type Summary struct {
	Passed, Failed, Skipped int
}

// Add tallies o.
func (s *Summary) Add(o Outcome) {
	switch {
	case o.Skipped:
		s.Skipped++
	case o.Passed():
		s.Passed++
	default:
		s.Failed++
	}
}

func (s Summary) String() string {
	return fmt.Sprintf("%d passed, %d failed, %d skipped", s.Passed, s.Failed, s.Skipped)
}

// RunFile runs every scenario of f in order.
func RunFile(ctx context.Context, f *File) ([]Outcome, error) {
	out := make([]Outcome, 0, len(f.Scenarios))
	for _, sc := range f.Scenarios {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		o := Run(ctx, sc)
		o.File = f.Path
		out = append(out, o)
	}
	return out, nil
}

// Run executes one scenario in a fresh session with a capturing host.
func Run(ctx context.Context, sc Scenario) Outcome {
	o := Outcome{Name: sc.Name}
	if sc.Skip != "" {
		o.Skipped = true
		return o
	}
	fail := func(format string, args ...any) {
		o.Failures = append(o.Failures, fmt.Sprintf(format, args...))
	}

	res, err := driver.LoadSource(ctx, sc.Name+".lis", []byte(sc.Source), driver.Options{})
	if err != nil {
		fail("load: %v", err)
		return o
	}

	host := vm.NewTestHost(sc.Input)
	var outcome driver.Outcome
	runErr := driver.FirstError(res.Bag)
	if runErr == nil {
		outcome, runErr = driver.Run(ctx, res, driver.RunOptions{
			Entry: sc.Entry,
			VM:    vm.Options{Host: host, MaxCallDepth: sc.MaxCallDepth},
		})
	}
	o.Stdout = host.Output()

	exp := sc.Expect
	checkError(exp, runErr, fail)
	if exp.Stdout != nil && o.Stdout != *exp.Stdout {
		fail("stdout = %q, want %q", o.Stdout, *exp.Stdout)
	}
	if exp.Result != nil && outcome.Result != *exp.Result {
		fail("result = %q, want %q", outcome.Result, *exp.Result)
	}
	if exp.Exit != nil && outcome.ExitCode != *exp.Exit {
		fail("exit code = %d, want %d", outcome.ExitCode, *exp.Exit)
	}
	if exp.Leaks != nil && len(outcome.Leaks) != *exp.Leaks {
		fail("leaks = %v, want %d", outcome.Leaks, *exp.Leaks)
	}
	return o
}

func checkError(exp Expect, err error, fail func(string, ...any)) {
	if exp.Error == "" && exp.Code == "" {
		if err != nil {
			fail("unexpected error: %v", err)
		}
		return
	}
	if err == nil {
		fail("expected %s, program ran cleanly", firstNonEmpty(exp.Error, exp.Code))
		return
	}
	if exp.Error != "" {
		if kind := diag.KindOf(err).String(); kind != exp.Error {
			fail("error kind = %s, want %s (%v)", kind, exp.Error, err)
		}
	}
	code, line := errorLocation(err)
	if exp.Code != "" && code != exp.Code {
		fail("error code = %s, want %s (%v)", code, exp.Code, err)
	}
	if exp.Line != 0 && line != exp.Line {
		fail("error line = %d, want %d (%v)", line, exp.Line, err)
	}
}

func errorLocation(err error) (string, uint32) {
	var de *diag.Error
	if errors.As(err, &de) {
		return de.Code.ID(), de.Line
	}
	var ve *vm.VMError
	if errors.As(err, &ve) {
		return ve.Code.String(), ve.Line
	}
	return "", 0
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
