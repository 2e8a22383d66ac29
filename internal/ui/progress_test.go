package ui

import (
	"strings"
	"testing"

	"lisle/internal/driver"
)

func TestProgressModelTracksEvents(t *testing.T) {
	m := NewProgressModel("checking", []string{"a.lis", "b.lis"}, nil).(*progressModel)
	m.Update(eventMsg{File: "a.lis", Stage: driver.StageChecking})
	if m.rows[0].state != stateChecking {
		t.Fatalf("state = %v", m.rows[0].state)
	}
	m.Update(eventMsg{File: "a.lis", Stage: driver.StageDone, Lines: 3, Cached: true})
	m.Update(eventMsg{File: "b.lis", Stage: driver.StageDone, Failed: true, Lines: 1})
	m.Update(eventMsg{File: "b.lis", Stage: driver.StageDone, Failed: true})
	m.Update(eventMsg{File: "other.lis", Stage: driver.StageDone})

	if m.finished != 2 || m.failed != 1 {
		t.Fatalf("finished=%d failed=%d", m.finished, m.failed)
	}
	_, cmd := m.Update(doneMsg{})
	if cmd == nil || !m.done {
		t.Fatal("done message must quit")
	}
	view := m.View()
	for _, want := range []string{"done: checking 2/2, 1 failed", "b.lis", "3 lines, cached", "1 lines"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view lacks %q:\n%s", want, view)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short.lis", 20, "short.lis"},
		{"very/long/path/to/file.lis", 10, "very/lo..."},
		{"日本語.lis", 5, "日..."},
		{"abcdef", 2, "ab"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}
