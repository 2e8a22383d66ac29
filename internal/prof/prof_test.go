package prof_test

import (
	"os"
	"path/filepath"
	"testing"

	"lisle/internal/prof"
)

func TestMemProfileWrittenOnStop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mem.out")
	s, err := prof.Start(prof.Options{MemProfile: path})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Stop(); err != nil {
		t.Fatal(err)
	}
	if st, err := os.Stat(path); err != nil || st.Size() == 0 {
		t.Fatalf("heap profile missing: %v", err)
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("second Stop: %v", err)
	}
}

func TestStartFailsOnBadPath(t *testing.T) {
	bad := filepath.Join(t.TempDir(), "missing", "cpu.out")
	if _, err := prof.Start(prof.Options{CPUProfile: bad}); err == nil {
		t.Fatal("expected error")
	}
}
