package vm

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"fortio.org/safecast"
)

// ErrUnknownFunction is returned (wrapped) by a Host that has no binding for
// the requested name.
var ErrUnknownFunction = errors.New("unknown function")

// Host is the single call interface to the standard-library binding layer.
// Invoke is synchronous; the returned Value is owned by the caller. Any
// error surfaces as a HostError, except *ExitRequest which stops the
// program.
type Host interface {
	Invoke(ctx context.Context, call *HostCall) (Value, error)
}

// HostFunc adapts a function to Host.
type HostFunc func(ctx context.Context, call *HostCall) (Value, error)

// Invoke calls f.
func (f HostFunc) Invoke(ctx context.Context, call *HostCall) (Value, error) {
	return f(ctx, call)
}

// HostCall describes one call. Args are borrowed for the duration of the
// call; a host that keeps a collection must Retain it through Session.
type HostCall struct {
	Name    string
	Args    []Value
	Line    uint32
	Session *Session
}

// Render converts argument i to display text, the same way print shows it.
func (c *HostCall) Render(ctx context.Context, i int) (string, error) {
	if i < 0 || i >= len(c.Args) {
		return "", fmt.Errorf("%s: missing argument %d", c.Name, i+1)
	}
	if c.Session == nil {
		return renderScalar(c.Args[i]), nil
	}
	return c.Session.ToString(ctx, c.Args[i])
}

// Join renders every argument separated by single spaces.
func (c *HostCall) Join(ctx context.Context) (string, error) {
	parts := make([]string, len(c.Args))
	for i := range c.Args {
		s, err := c.Render(ctx, i)
		if err != nil {
			return "", err
		}
		parts[i] = s
	}
	return strings.Join(parts, " "), nil
}

// IntArg returns argument i as an Integer.
func (c *HostCall) IntArg(i int) (int32, error) {
	if i >= len(c.Args) {
		return 0, fmt.Errorf("%s: expected %d argument(s), got %d", c.Name, i+1, len(c.Args))
	}
	v := c.Args[i]
	switch v.Kind {
	case VKInt:
		return v.Int, nil
	case VKFloat:
		return int32(v.Float), nil
	}
	return 0, fmt.Errorf("%s: argument %d must be int, got %s", c.Name, i+1, v.Kind)
}

// StdHost binds the default functions: print, getclock, sleep, input, exit.
type StdHost struct {
	out   io.Writer
	in    *bufio.Reader
	start time.Time
	now   func() time.Time
	mu    sync.Mutex
}

// NewStdHost creates a host writing to out and reading from in. Nil streams
// default to os.Stdout and os.Stdin.
func NewStdHost(out io.Writer, in io.Reader) *StdHost {
	if out == nil {
		out = os.Stdout
	}
	if in == nil {
		in = os.Stdin
	}
	return &StdHost{
		out:   out,
		in:    bufio.NewReader(in),
		start: time.Now(),
		now:   time.Now,
	}
}

// Invoke implements Host.
func (h *StdHost) Invoke(ctx context.Context, call *HostCall) (Value, error) {
	switch call.Name {
	case "print":
		line, err := call.Join(ctx)
		if err != nil {
			return NilValue(), err
		}
		h.mu.Lock()
		_, err = fmt.Fprintln(h.out, line)
		h.mu.Unlock()
		return NilValue(), err

	case "getclock":
		ms := h.now().Sub(h.start).Milliseconds()
		n, err := safecast.Conv[int32](ms)
		if err != nil {
			// счётчик миллисекунд переполняется примерно через 24 дня
			n = int32(ms % (1 << 31)) // #nosec G115 -- reduced into range above
		}
		return IntValue(n), nil

	case "sleep":
		ms, err := call.IntArg(0)
		if err != nil {
			return NilValue(), err
		}
		if ms <= 0 {
			return NilValue(), nil
		}
		timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return NilValue(), ctx.Err()
		case <-timer.C:
			return NilValue(), nil
		}

	case "input":
		if len(call.Args) > 0 {
			prompt, err := call.Render(ctx, 0)
			if err != nil {
				return NilValue(), err
			}
			h.mu.Lock()
			_, _ = io.WriteString(h.out, prompt)
			h.mu.Unlock()
		}
		line, err := h.in.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return NilValue(), err
		}
		if err != nil && line == "" {
			return NilValue(), nil
		}
		return OwnedString(strings.TrimRight(line, "\r\n")), nil

	case "exit":
		code := int32(0)
		if len(call.Args) > 0 {
			c, err := call.IntArg(0)
			if err != nil {
				return NilValue(), err
			}
			code = c
		}
		return NilValue(), &ExitRequest{Code: int(code)}
	}
	return NilValue(), fmt.Errorf("%w %q", ErrUnknownFunction, call.Name)
}

// TestHost is a StdHost with captured output, scripted input and a fixed
// clock.
type TestHost struct {
	*StdHost
	buf *strings.Builder
}

// NewTestHost creates a host reading stdin from input.
func NewTestHost(input string) *TestHost {
	buf := &strings.Builder{}
	h := NewStdHost(buf, strings.NewReader(input))
	fixed := h.start
	h.now = func() time.Time { return fixed }
	return &TestHost{StdHost: h, buf: buf}
}

// Output returns everything printed so far.
func (h *TestHost) Output() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.buf.String()
}
