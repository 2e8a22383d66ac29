package vm_test

import (
	"context"
	"strings"
	"testing"

	"lisle/internal/ast"
	"lisle/internal/format"
	"lisle/internal/linestore"
	"lisle/internal/parser"
	"lisle/internal/vm"
)

func compileSource(t *testing.T, src string) *ast.Program {
	t.Helper()
	lines := strings.Split(strings.Trim(src, "\n"), "\n")
	store, err := linestore.FromLines(format.Options{}, lines)
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	prog, err := parser.Build(store.Tokens())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return prog
}

type runResult struct {
	out     string
	err     error
	session *vm.Session
}

func runSource(t *testing.T, src string, opts vm.Options) runResult {
	t.Helper()
	prog := compileSource(t, src)
	host := vm.NewTestHost("")
	if opts.Host == nil {
		opts.Host = host
	}
	s := vm.NewSession(opts)
	err := s.Run(context.Background(), prog)
	return runResult{out: host.Output(), err: err, session: s}
}

// mustRun runs src, closes the session and fails on errors or leaked heap
// objects.
func mustRun(t *testing.T, src string) string {
	t.Helper()
	res := runSource(t, src, vm.Options{LeakCheck: true})
	if res.err != nil {
		t.Fatalf("run: %v", res.err)
	}
	if err := res.session.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	return res.out
}
