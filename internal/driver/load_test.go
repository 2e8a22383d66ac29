package driver_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lisle/internal/diag"
	"lisle/internal/driver"
	"lisle/internal/observ"
	"lisle/internal/vm"
)

const greetSrc = `# greeting
fn greet(name)
    return format("hi {}", name)
end

print(greet("ann"))
`

func TestLoadSourceBuildsProgram(t *testing.T) {
	timer := observ.NewTimer()
	res, err := driver.LoadSource(context.Background(), "greet.lis", []byte(greetSrc), driver.Options{Timer: timer})
	if err != nil {
		t.Fatal(err)
	}
	if res.Bag.Len() != 0 || res.Program == nil {
		t.Fatalf("diagnostics: %+v", res.Bag.Items())
	}
	if res.Program.Len() != len(res.Lines()) {
		t.Fatalf("program has %d statements for %d lines", res.Program.Len(), len(res.Lines()))
	}
	var names []string
	for _, p := range timer.Phases() {
		names = append(names, p.Name)
	}
	if strings.Join(names, ",") != "tokenize,build" {
		t.Fatalf("phases = %v", names)
	}
}

func TestLoadReportsEveryBadLine(t *testing.T) {
	src := "var a = $\nprint(1)\nvar b = 12abc\n"
	res, err := driver.LoadSource(context.Background(), "bad.lis", []byte(src), driver.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if res.Program != nil {
		t.Fatal("program built despite lex errors")
	}
	items := res.Bag.Items()
	if len(items) != 2 {
		t.Fatalf("got %d diagnostics: %+v", len(items), items)
	}
	if items[0].Code != diag.LexUnknownChar || items[0].Line != 1 || items[0].Path != "bad.lis" {
		t.Fatalf("first = %+v", items[0])
	}
	if items[1].Code != diag.LexBadNumber || items[1].Line != 3 {
		t.Fatalf("second = %+v", items[1])
	}
}

func TestLoadReportsParseAndStructureErrors(t *testing.T) {
	res, err := driver.LoadSource(context.Background(), "p.lis", []byte("var x = 1\nprint(x\nvar y = (2\n"), driver.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if n := res.Bag.Len(); n != 2 {
		t.Fatalf("want one diagnostic per bad line, got %d", n)
	}

	res, err = driver.LoadSource(context.Background(), "s.lis", []byte("if true\nprint(1)\n"), driver.Options{})
	if err != nil {
		t.Fatal(err)
	}
	items := res.Bag.Items()
	if len(items) != 1 || items[0].Code != diag.StrMissingEnd || items[0].Line != 1 {
		t.Fatalf("got %+v", items)
	}
	if driver.FirstError(res.Bag) == nil {
		t.Fatal("FirstError = nil")
	}
}

func TestTokensOnly(t *testing.T) {
	res, err := driver.LoadSource(context.Background(), "t.lis", []byte("if true\n"), driver.Options{TokensOnly: true})
	if err != nil {
		t.Fatal(err)
	}
	if res.Program != nil || res.Bag.Len() != 0 || len(res.Tokens[0]) != 2 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestDiskCacheReusesImage(t *testing.T) {
	cache, err := driver.OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "main.lis")
	if err := os.WriteFile(path, []byte(greetSrc), 0o600); err != nil {
		t.Fatal(err)
	}

	first, err := driver.Load(context.Background(), path, driver.Options{Cache: cache})
	if err != nil || first.Cached || first.Program == nil {
		t.Fatalf("first load: cached=%v err=%v", first.Cached, err)
	}
	second, err := driver.Load(context.Background(), path, driver.Options{Cache: cache})
	if err != nil || !second.Cached || second.Program == nil {
		t.Fatalf("second load: cached=%v err=%v", second.Cached, err)
	}
	if second.Program.Len() != first.Program.Len() {
		t.Fatalf("cached program has %d statements, want %d", second.Program.Len(), first.Program.Len())
	}

	host := vm.NewTestHost("")
	if _, err := driver.Run(context.Background(), second, driver.RunOptions{VM: vm.Options{Host: host}}); err != nil {
		t.Fatal(err)
	}
	if host.Output() != "hi ann\n" {
		t.Fatalf("output = %q", host.Output())
	}

	if err := cache.DropAll(); err != nil {
		t.Fatal(err)
	}
	third, err := driver.Load(context.Background(), path, driver.Options{Cache: cache})
	if err != nil || third.Cached {
		t.Fatalf("after DropAll: cached=%v err=%v", third.Cached, err)
	}
}

func TestCacheKeyDependsOnSource(t *testing.T) {
	a := driver.CacheKey([32]byte{1})
	b := driver.CacheKey([32]byte{2})
	if a == b || a != driver.CacheKey([32]byte{1}) {
		t.Fatal("cache keys are not a function of the source hash")
	}
	if len(a.String()) != 64 {
		t.Fatalf("key string = %q", a.String())
	}
}
