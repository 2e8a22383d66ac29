package vm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
)

// Recorder writes a deterministic NDJSON log of host calls.
type Recorder struct {
	mu   sync.Mutex
	enc  *json.Encoder
	err  error
	done bool
}

// NewRecorder writes the header immediately.
func NewRecorder(w io.Writer, version, program string) *Recorder {
	r := &Recorder{enc: json.NewEncoder(w)}
	r.enc.SetEscapeHTML(false)
	r.mu.Lock()
	r.recordLocked(NewLogHeader(version, program))
	r.mu.Unlock()
	return r
}

func (r *Recorder) Err() error {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

func (r *Recorder) Done() bool {
	if r == nil {
		return true
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.done
}

func (r *Recorder) RecordHost(ev LogHostEvent) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.done || r.err != nil {
		return
	}
	ev.Kind = "host"
	r.recordLocked(ev)
}

func (r *Recorder) RecordExit(code int) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.done || r.err != nil {
		return
	}
	r.recordLocked(LogExitEvent{Kind: "exit", Code: code})
	r.done = true
}

func (r *Recorder) RecordError(vmErr *VMError) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.done || r.err != nil {
		return
	}
	r.recordLocked(NewLogErrorEvent(vmErr))
	r.done = true
}

func (r *Recorder) recordLocked(v any) {
	if r.enc == nil || r.err != nil {
		return
	}
	if err := r.enc.Encode(v); err != nil {
		r.err = err
	}
}

// RecordingHost forwards calls to Inner and logs each one.
type RecordingHost struct {
	Inner Host
	Rec   *Recorder
}

// NewRecordingHost wraps inner.
func NewRecordingHost(inner Host, rec *Recorder) *RecordingHost {
	return &RecordingHost{Inner: inner, Rec: rec}
}

// Invoke implements Host.
func (h *RecordingHost) Invoke(ctx context.Context, call *HostCall) (Value, error) {
	ev := LogHostEvent{Name: call.Name, Line: call.Line}
	for _, a := range call.Args {
		ev.Args = append(ev.Args, EncodeLogValue(ctx, call.Session, a))
	}
	v, err := h.Inner.Invoke(ctx, call)
	var exit *ExitRequest
	if errors.As(err, &exit) {
		h.Rec.RecordExit(exit.Code)
		return v, err
	}
	ev.Ret = EncodeLogValue(ctx, call.Session, v)
	if err != nil {
		ev.Err = err.Error()
	}
	h.Rec.RecordHost(ev)
	return v, err
}
