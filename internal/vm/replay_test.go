package vm_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"lisle/internal/vm"
)

func TestRecordReplayRoundTrip(t *testing.T) {
	src := `
var name = input()
var t = getclock()
print("hello", name, vec(1, 2))
exit(4)
`
	prog := compileSource(t, src)

	var log bytes.Buffer
	rec := vm.NewRecorder(&log, "test", "prog.lis")
	inner := vm.NewTestHost("bob\n")
	s := vm.NewSession(vm.Options{Host: vm.NewRecordingHost(inner, rec)})
	if err := s.Run(context.Background(), prog); err != nil {
		t.Fatal(err)
	}
	if err := rec.Err(); err != nil {
		t.Fatal(err)
	}
	if !rec.Done() {
		t.Fatal("recorder should be done after exit")
	}
	want := "hello bob [1, 2]\n"
	if inner.Output() != want {
		t.Fatalf("recorded run printed %q", inner.Output())
	}

	r := vm.NewReplayer(strings.NewReader(log.String()))
	if err := r.Validate(); err != nil {
		t.Fatal(err)
	}
	if h := r.Header(); h.Lisle != "test" || h.Program != "prog.lis" {
		t.Fatalf("header = %+v", h)
	}
	if r.Remaining() != 4 {
		t.Fatalf("remaining = %d, want 4", r.Remaining())
	}

	var out bytes.Buffer
	s2 := vm.NewSession(vm.Options{Host: vm.NewReplayHost(r, &out)})
	if err := s2.Run(context.Background(), prog); err != nil {
		t.Fatal(err)
	}
	if out.String() != want {
		t.Fatalf("replay printed %q, want %q", out.String(), want)
	}
	if code, ok := s2.ExitCode(); !ok || code != 4 {
		t.Fatalf("exit = %d, %v", code, ok)
	}
	if r.Remaining() != 0 {
		t.Fatalf("remaining after replay = %d", r.Remaining())
	}
}

func TestReplayDivergence(t *testing.T) {
	var log bytes.Buffer
	rec := vm.NewRecorder(&log, "test", "")
	s := vm.NewSession(vm.Options{Host: vm.NewRecordingHost(vm.NewTestHost(""), rec)})
	if err := s.Run(context.Background(), compileSource(t, `print("a")`)); err != nil {
		t.Fatal(err)
	}

	r := vm.NewReplayer(strings.NewReader(log.String()))
	s2 := vm.NewSession(vm.Options{Host: vm.NewReplayHost(r, nil)})
	err := s2.Run(context.Background(), compileSource(t, `var x = getclock()`))
	if err == nil || !strings.Contains(err.Error(), "expected print") {
		t.Fatalf("want divergence error, got %v", err)
	}
}

func TestReplayerRejectsBadLogs(t *testing.T) {
	tests := []struct {
		name string
		log  string
	}{
		{"empty", ""},
		{"not json", "nope\n"},
		{"unknown kind", `{"v":1,"kind":"header","lisle":"x"}` + "\n" + `{"kind":"mystery"}` + "\n"},
		{"bad version", `{"v":9,"kind":"header","lisle":"x"}` + "\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := vm.NewReplayer(strings.NewReader(tt.log)).Validate(); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}
