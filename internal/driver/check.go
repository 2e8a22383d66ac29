package driver

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"lisle/internal/diag"
	"lisle/internal/source"
	"lisle/internal/trace"
)

// Stage is the step a file is in while being checked.
type Stage uint8

const (
	StageQueued Stage = iota
	StageChecking
	StageDone
)

func (s Stage) String() string {
	switch s {
	case StageQueued:
		return "queued"
	case StageChecking:
		return "checking"
	case StageDone:
		return "done"
	}
	return "unknown"
}

// Event reports the progress of one file. Failed, Lines and Cached are
// only set with StageDone.
type Event struct {
	File   string
	Stage  Stage
	Failed bool
	Lines  int
	Cached bool
}

// CheckResult is the outcome for one file.
type CheckResult struct {
	Path   string
	Bag    *diag.Bag
	Lines  int
	Cached bool
}

// Failed reports whether the file has error diagnostics.
func (r CheckResult) Failed() bool { return r.Bag != nil && r.Bag.HasErrors() }

// CheckOptions extend Options for CheckFiles.
type CheckOptions struct {
	Options
	// Jobs limits parallelism; <= 0 means GOMAXPROCS.
	Jobs int
	// Events, when set, receives progress events. CheckFiles never closes it.
	Events chan<- Event
}

// ExpandPaths turns files and directories into a sorted list of *.lis
// files. Directories are walked recursively.
func ExpandPaths(paths []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			add(p)
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.HasSuffix(path, ".lis") {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	// Сортируем для детерминированного порядка
	sort.Strings(files)
	return files, nil
}

// CheckFiles tokenizes and builds every file concurrently. Results are in
// the order of files. A file that cannot be read gets an IO diagnostic; the
// returned error is only set on cancellation.
func CheckFiles(ctx context.Context, files []string, opts CheckOptions) ([]CheckResult, error) {
	results := make([]CheckResult, len(files))
	if len(files) == 0 {
		return results, nil
	}
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	tr := trace.FromContext(ctx)
	span := trace.Begin(tr, trace.ScopeDriver, "check", trace.CurrentSpan(ctx).SpanID).
		WithExtra("files", fmt.Sprint(len(files)))
	defer span.End("")
	ctx = trace.WithSpanContext(ctx, trace.SpanContext{SpanID: span.ID()})

	emit := func(ev Event) {
		if opts.Events == nil {
			return
		}
		select {
		case opts.Events <- ev:
		case <-ctx.Done():
		}
	}
	for _, path := range files {
		emit(Event{File: path, Stage: StageQueued})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))
	for i, path := range files {
		g.Go(func() error {
			// Проверка отмены
			if err := gctx.Err(); err != nil {
				return err
			}
			emit(Event{File: path, Stage: StageChecking})
			res, err := Load(gctx, path, opts.Options)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				bag := diag.NewBag(1)
				bag.Add(diag.NewError(diag.IOLoadFileError, 0, source.Span{}, err.Error()).WithPath(path))
				results[i] = CheckResult{Path: path, Bag: bag}
				emit(Event{File: path, Stage: StageDone, Failed: true})
				return nil
			}
			res.Bag.Sort()
			res.Bag.Dedup()
			// индексы уникальны для каждой горутины, мьютекс не нужен
			results[i] = CheckResult{Path: path, Bag: res.Bag, Lines: len(res.Tokens), Cached: res.Cached}
			emit(Event{File: path, Stage: StageDone, Failed: res.Bag.HasErrors(), Lines: len(res.Tokens), Cached: res.Cached})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// MergeResults collects the diagnostics of every result into one bag.
func MergeResults(results []CheckResult, max int) *diag.Bag {
	if max <= 0 {
		max = DefaultMaxDiagnostics
	}
	out := diag.NewBag(max)
	for _, r := range results {
		out.Merge(r.Bag)
	}
	return out
}
