package vm

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

type replayEvent struct {
	Kind string
	Host *LogHostEvent
	Exit *LogExitEvent
}

// Replayer reads a log written by Recorder.
type Replayer struct {
	header   LogHeader
	events   []replayEvent
	next     int
	parseErr error
}

// NewReplayer parses the whole log from rd.
func NewReplayer(rd io.Reader) *Replayer {
	r := &Replayer{}
	r.parse(rd)
	return r
}

// Validate checks the header and reports parse failures.
func (r *Replayer) Validate() error {
	if r == nil {
		return fmt.Errorf("nil replayer")
	}
	if r.parseErr != nil {
		return r.parseErr
	}
	if r.header.Kind != "header" {
		return fmt.Errorf("missing header")
	}
	if r.header.V != 1 {
		return fmt.Errorf("unsupported log version %d", r.header.V)
	}
	return nil
}

// Header returns the parsed header.
func (r *Replayer) Header() LogHeader { return r.header }

// Remaining returns the number of unconsumed events.
func (r *Replayer) Remaining() int {
	if r == nil || r.next >= len(r.events) {
		return 0
	}
	return len(r.events) - r.next
}

func (r *Replayer) parse(rd io.Reader) {
	sc := bufio.NewScanner(rd)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var probe struct {
			Kind string `json:"kind"`
		}
		if err := json.Unmarshal([]byte(line), &probe); err != nil {
			r.parseErr = fmt.Errorf("log line %d: %w", lineNo, err)
			return
		}
		switch probe.Kind {
		case "header":
			if err := json.Unmarshal([]byte(line), &r.header); err != nil {
				r.parseErr = fmt.Errorf("log line %d: %w", lineNo, err)
				return
			}
		case "host":
			var ev LogHostEvent
			if err := json.Unmarshal([]byte(line), &ev); err != nil {
				r.parseErr = fmt.Errorf("log line %d: %w", lineNo, err)
				return
			}
			r.events = append(r.events, replayEvent{Kind: probe.Kind, Host: &ev})
		case "exit":
			var ev LogExitEvent
			if err := json.Unmarshal([]byte(line), &ev); err != nil {
				r.parseErr = fmt.Errorf("log line %d: %w", lineNo, err)
				return
			}
			r.events = append(r.events, replayEvent{Kind: probe.Kind, Exit: &ev})
		case "error":
			// terminal record, nothing to replay
		default:
			r.parseErr = fmt.Errorf("log line %d: unknown event kind %q", lineNo, probe.Kind)
			return
		}
	}
	if err := sc.Err(); err != nil {
		r.parseErr = err
	}
}

// ReplayHost answers host calls from a recorded log instead of the real
// host, so clock and input reads repeat exactly. print is re-rendered to
// Out from the current arguments.
type ReplayHost struct {
	r   *Replayer
	out io.Writer
}

// NewReplayHost creates a replaying host; out may be nil to drop output.
func NewReplayHost(r *Replayer, out io.Writer) *ReplayHost {
	if out == nil {
		out = io.Discard
	}
	return &ReplayHost{r: r, out: out}
}

// Invoke implements Host.
func (h *ReplayHost) Invoke(ctx context.Context, call *HostCall) (Value, error) {
	if h.r.next >= len(h.r.events) {
		return NilValue(), fmt.Errorf("replay: log exhausted at %s", call.Name)
	}
	ev := h.r.events[h.r.next]
	h.r.next++
	if ev.Exit != nil {
		if call.Name != "exit" {
			return NilValue(), fmt.Errorf("replay: expected exit, got %s", call.Name)
		}
		return NilValue(), &ExitRequest{Code: ev.Exit.Code}
	}
	if ev.Host.Name != call.Name {
		return NilValue(), fmt.Errorf("replay: expected %s, got %s", ev.Host.Name, call.Name)
	}
	if call.Name == "print" {
		line, err := call.Join(ctx)
		if err != nil {
			return NilValue(), err
		}
		if _, err := fmt.Fprintln(h.out, line); err != nil {
			return NilValue(), err
		}
	}
	if ev.Host.Err != "" {
		return NilValue(), errors.New(ev.Host.Err)
	}
	return DecodeLogValue(ev.Host.Ret)
}
