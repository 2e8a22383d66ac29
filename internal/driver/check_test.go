package driver_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"lisle/internal/diag"
	"lisle/internal/driver"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func TestCheckFiles(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.lis":       "print(1)\n",
		"lib/b.lis":   "fn f()\nreturn 1\n",
		"lib/c.lis":   "var x = $\n",
		"notes.txt":   "not a program",
		"lib/d/e.lis": "loop\nbreak\nend\n",
	})
	files, err := driver.ExpandPaths([]string{root})
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 4 {
		t.Fatalf("files = %v", files)
	}

	events := make(chan driver.Event, 64)
	results, err := driver.CheckFiles(context.Background(), files, driver.CheckOptions{Jobs: 2, Events: events})
	if err != nil {
		t.Fatal(err)
	}
	close(events)

	failed := map[string]diag.Code{}
	for _, r := range results {
		if r.Failed() {
			failed[filepath.Base(r.Path)] = r.Bag.Items()[0].Code
		}
	}
	if len(failed) != 2 || failed["b.lis"] != diag.StrMissingEnd || failed["c.lis"] != diag.LexUnknownChar {
		t.Fatalf("failed = %v", failed)
	}
	for i := range files {
		if results[i].Path != files[i] {
			t.Fatalf("result %d is for %s, want %s", i, results[i].Path, files[i])
		}
	}

	done := 0
	for ev := range events {
		if ev.Stage == driver.StageDone {
			done++
		}
	}
	if done != len(files) {
		t.Fatalf("got %d done events", done)
	}
	if merged := driver.MergeResults(results, 0); merged.Len() != 2 {
		t.Fatalf("merged %d diagnostics", merged.Len())
	}
}

func TestCheckFilesMissingFile(t *testing.T) {
	results, err := driver.CheckFiles(context.Background(), []string{filepath.Join(t.TempDir(), "gone.lis")}, driver.CheckOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if !results[0].Failed() || results[0].Bag.Items()[0].Code != diag.IOLoadFileError {
		t.Fatalf("result = %+v", results[0])
	}
}

func TestCheckFilesCanceled(t *testing.T) {
	root := writeTree(t, map[string]string{"a.lis": "print(1)\n"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := driver.CheckFiles(ctx, []string{filepath.Join(root, "a.lis")}, driver.CheckOptions{}); err == nil {
		t.Fatal("expected cancellation error")
	}
}
