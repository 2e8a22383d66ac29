// Package driver wires the front end together: it loads program files,
// tokenizes and builds them, caches encoded images and checks many files in
// parallel.
package driver

import (
	"context"
	"fmt"

	"fortio.org/safecast"

	"lisle/internal/ast"
	"lisle/internal/diag"
	"lisle/internal/lexer"
	"lisle/internal/observ"
	"lisle/internal/parser"
	"lisle/internal/source"
	"lisle/internal/token"
	"lisle/internal/trace"
)

// DefaultMaxDiagnostics is the per-file diagnostic limit.
const DefaultMaxDiagnostics = 100

// Options control Load and CheckFiles.
type Options struct {
	// MaxDiagnostics limits the bag of each file; 0 means DefaultMaxDiagnostics.
	MaxDiagnostics int
	// Timer, when set, receives tokenize/build phases.
	Timer *observ.Timer
	// Cache skips tokenizing for sources whose image is already stored.
	Cache *DiskCache
	// TokensOnly stops after tokenizing.
	TokensOnly bool
}

// Result holds everything produced for one file. Program is nil when the
// bag has errors or TokensOnly was set.
type Result struct {
	FileSet *source.FileSet
	File    *source.File
	Tokens  [][]token.Token
	Program *ast.Program
	Bag     *diag.Bag
	Cached  bool
}

// Lines returns the source lines of the file.
func (r *Result) Lines() []string {
	if r == nil || r.File == nil {
		return nil
	}
	return r.File.Lines
}

// Load reads path and runs the front end on it. Program errors end up in
// the bag; the returned error is reserved for I/O failures and
// cancellation.
func Load(ctx context.Context, path string, opts Options) (*Result, error) {
	fs := source.NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return process(ctx, fs, fs.Get(id), opts)
}

// LoadSource is Load for in-memory content.
func LoadSource(ctx context.Context, name string, content []byte, opts Options) (*Result, error) {
	fs := source.NewFileSet()
	id := fs.AddVirtual(name, content)
	return process(ctx, fs, fs.Get(id), opts)
}

func process(ctx context.Context, fs *source.FileSet, file *source.File, opts Options) (*Result, error) {
	limit := opts.MaxDiagnostics
	if limit <= 0 {
		limit = DefaultMaxDiagnostics
	}
	res := &Result{FileSet: fs, File: file, Bag: diag.NewBag(limit)}

	tr := trace.FromContext(ctx)
	span := trace.Begin(tr, trace.ScopeModule, "load "+file.Path, trace.CurrentSpan(ctx).SpanID)
	defer func() { span.End(fmt.Sprintf("%d diagnostics", res.Bag.Len())) }()
	ctx = trace.WithSpanContext(ctx, trace.SpanContext{SpanID: span.ID()})

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := CacheKey(file.Hash)
	if !opts.TokensOnly && opts.Cache != nil {
		var payload CachePayload
		hit, err := opts.Cache.Get(key, &payload)
		if err == nil && hit {
			if lines, derr := token.DecodeImage(payload.Image); derr == nil && len(lines) == len(file.Lines) {
				res.Tokens = lines
				res.Cached = true
				trace.Point(tr, trace.ScopeModule, "cache hit", file.Path, span.ID())
			}
		}
	}

	if !res.Cached {
		idx := opts.Timer.Begin("tokenize")
		pass := trace.Begin(tr, trace.ScopePass, "tokenize", span.ID())
		res.Tokens = tokenizeLines(file, res.Bag)
		pass.End("")
		opts.Timer.End(idx, file.Path)
	}
	if opts.TokensOnly || res.Bag.HasErrors() {
		return res, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	idx := opts.Timer.Begin("build")
	pass := trace.Begin(tr, trace.ScopePass, "build", span.ID())
	res.Program = buildProgram(res.Tokens, res.Bag, file.Path)
	pass.End("")
	opts.Timer.End(idx, file.Path)

	if res.Program != nil && !res.Cached && opts.Cache != nil {
		// строки с неподдерживаемыми токенами просто не кешируются
		if img, err := token.EncodeImage(res.Tokens); err == nil {
			if err := opts.Cache.Put(key, &CachePayload{Path: file.Path, Lines: len(res.Tokens), Image: img}); err != nil {
				trace.Point(tr, trace.ScopeModule, "cache write failed", err.Error(), span.ID())
			}
		}
	}
	return res, nil
}

// tokenizeLines lexes every line, reporting each lexical error into bag.
// Lines that fail to lex come back empty.
func tokenizeLines(file *source.File, bag *diag.Bag) [][]token.Token {
	reporter := diag.BagReporter{Bag: bag, Path: file.Path}
	out := make([][]token.Token, len(file.Lines))
	for i, line := range file.Lines {
		toks, err := lexer.TokenizeWith(line, lexer.Options{Line: lineNumber(i), Reporter: reporter})
		if err != nil {
			continue
		}
		out[i] = toks
	}
	return out
}

// buildProgram parses each line separately so one bad line does not hide
// the next, then links block structure when every line parsed.
func buildProgram(lines [][]token.Token, bag *diag.Bag, path string) *ast.Program {
	reporter := diag.BagReporter{Bag: bag, Path: path}
	stmts := make([]ast.Stmt, len(lines))
	failed := false
	for i, toks := range lines {
		st, err := parser.ParseLine(toks)
		if err != nil {
			failed = true
			if de, ok := err.(*diag.Error); ok {
				err = de.AtLine(lineNumber(i))
			}
			diag.ReportErr(reporter, err)
			continue
		}
		st.Line = lineNumber(i)
		stmts[i] = st
	}
	if failed {
		return nil
	}
	prog, err := parser.Link(stmts)
	if err != nil {
		diag.ReportErr(reporter, err)
		return nil
	}
	return prog
}

func lineNumber(i int) uint32 {
	n, err := safecast.Conv[uint32](i + 1)
	if err != nil {
		panic(fmt.Errorf("line number overflow: %w", err))
	}
	return n
}

// FirstError returns the first error diagnostic of bag as an error value,
// or nil.
func FirstError(bag *diag.Bag) error {
	if bag == nil {
		return nil
	}
	for _, d := range bag.Items() {
		if d.Severity.AtLeast(diag.SevError) {
			return &diag.Error{Code: d.Code, Msg: d.Message, Line: d.Line, Span: d.Primary}
		}
	}
	return nil
}
