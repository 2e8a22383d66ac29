package testkit

import (
	"os"
	"path/filepath"
	"testing"
)

// UpdateGoldenEnv set to a non-empty value rewrites golden files instead of
// comparing against them.
const UpdateGoldenEnv = "LISLE_UPDATE_GOLDEN"

// Golden compares got with the file at path.
func Golden(tb testing.TB, path, got string) {
	tb.Helper()
	if os.Getenv(UpdateGoldenEnv) != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			tb.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(got), 0o600); err != nil {
			tb.Fatal(err)
		}
		return
	}
	want, err := os.ReadFile(path)
	if err != nil {
		tb.Fatalf("read golden %s: %v (set %s=1 to create it)", path, err, UpdateGoldenEnv)
	}
	if string(want) != got {
		tb.Fatalf("%s mismatch:\n--- want\n%s\n--- got\n%s", filepath.Base(path), want, got)
	}
}
