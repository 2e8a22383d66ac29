package version

import (
	"strings"
	"testing"

	"github.com/fatih/color"
)

func withVersion(t *testing.T, v, commit string) {
	t.Helper()
	oldV, oldC, oldNoColor := Version, GitCommit, color.NoColor
	Version, GitCommit, color.NoColor = v, commit, true
	t.Cleanup(func() { Version, GitCommit, color.NoColor = oldV, oldC, oldNoColor })
}

func TestPretty(t *testing.T) {
	tests := []struct {
		version string
		want    string
	}{
		{"0.1.0-dev", "0.1.0-dev"},
		{"1.2.3", "1.2.3"},
		{"nightly", "nightly"},
	}
	for _, tt := range tests {
		withVersion(t, tt.version, "")
		if got := Pretty(); got != tt.want {
			t.Errorf("Pretty() with %q = %q, want %q", tt.version, got, tt.want)
		}
	}
}

func TestFullIncludesCommit(t *testing.T) {
	withVersion(t, "1.0.0", "abc123")
	full := Full()
	if !strings.HasPrefix(full, "lisle 1.0.0\n") || !strings.Contains(full, "commit: abc123") {
		t.Fatalf("Full() = %q", full)
	}
	if info := Current(); info.GoVersion == "" || info.Platform == "" {
		t.Fatalf("Current() = %+v", info)
	}
}
