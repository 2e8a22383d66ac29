package vm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"lisle/internal/ast"
	"lisle/internal/trace"
)

const (
	// DefaultMaxCallDepth bounds nested user function calls.
	DefaultMaxCallDepth = 256

	globalsName = "globals"
)

// Options configure a Session.
type Options struct {
	// Host resolves calls that are neither user functions nor intrinsics.
	// Defaults to a StdHost on the process streams.
	Host Host
	// Tracer, when set, receives the execution trace.
	Tracer *Tracer
	// MaxCallDepth defaults to DefaultMaxCallDepth.
	MaxCallDepth int
	// LeakCheck makes Close fail when heap objects outlive the session.
	LeakCheck bool
}

type activation struct {
	fn       *Function
	base     int    // index of the function's first frame
	callLine uint32 // line of the call site
}

// Session owns the heap, the globals map and the host binding of one
// running program. It is not safe for concurrent use.
type Session struct {
	heap      *Heap
	globals   Handle
	host      Host
	tracer    *Tracer
	maxDepth  int
	leakCheck bool

	prog    *ast.Program
	frames  []*Frame
	acts    []activation
	ret     Value // pending value of a SigReturn
	curLine uint32
	curStmt ast.StmtKind

	exitCode int
	exited   bool
	closed   bool
}

// NewSession creates a session with an empty globals map.
func NewSession(opts Options) *Session {
	s := &Session{
		heap:      NewHeap(),
		host:      opts.Host,
		tracer:    opts.Tracer,
		maxDepth:  opts.MaxCallDepth,
		leakCheck: opts.LeakCheck,
	}
	if s.host == nil {
		s.host = NewStdHost(nil, nil)
	}
	if s.maxDepth <= 0 {
		s.maxDepth = DefaultMaxCallDepth
	}
	s.heap.trace = s.tracer
	g := s.heap.NewMap()
	s.globals = g.H
	return s
}

// Heap exposes the session heap.
func (s *Session) Heap() *Heap { return s.heap }

// Globals returns the globals Map value (borrowed).
func (s *Session) Globals() Value { return handleValue(VKMap, s.globals) }

// ExitCode returns the code passed to exit(), and whether exit was called.
func (s *Session) ExitCode() (int, bool) { return s.exitCode, s.exited }

// Run executes the top-level statements of prog in a fresh root frame.
// Globals persist across runs of the same session.
func (s *Session) Run(ctx context.Context, prog *ast.Program) (err error) {
	if s.closed {
		return errors.New("vm: session is closed")
	}
	tr := trace.FromContext(ctx)
	span := trace.Begin(tr, trace.ScopePass, "run", trace.CurrentSpan(ctx).SpanID)
	ctx = trace.WithSpanContext(ctx, trace.SpanContext{SpanID: span.ID()})

	if tr.Level().ShouldEmit(trace.ScopeNode) {
		s.heap.events, s.heap.span = tr, span.ID()
	}

	s.enter(prog)
	defer func() {
		err = s.leave(recover(), err)
		s.heap.events = nil
		span.End(statusOf(err))
	}()

	sig, err := s.execRange(ctx, 0, prog.Len())
	if err != nil {
		return s.finish(err)
	}
	return s.stray(sig)
}

// RunFunction defines the top-level functions, classes and modules of prog
// without running other top-level statements, then calls name with args.
// Ownership of args moves to the call; the result is owned by the caller.
// name may be dotted ("geometry.area").
func (s *Session) RunFunction(ctx context.Context, prog *ast.Program, name string, args []Value) (ret Value, err error) {
	if s.closed {
		return NilValue(), errors.New("vm: session is closed")
	}
	s.enter(prog)
	defer func() {
		if err != nil {
			s.heap.ReleaseValue(ret)
			ret = NilValue()
		}
		err = s.leave(recover(), err)
	}()

	if err := s.hoist(ctx); err != nil {
		s.releaseAll(args)
		return NilValue(), s.finish(err)
	}
	callee, err := s.resolvePath(name)
	if err != nil {
		s.releaseAll(args)
		return NilValue(), err
	}
	if callee.Kind != VKFunc {
		s.heap.ReleaseValue(callee)
		s.releaseAll(args)
		return NilValue(), s.errorf(PanicFunctionNotFound, "function not found: %s", name)
	}
	ret, err = s.callFunction(ctx, callee.Fn, args)
	if err != nil {
		return NilValue(), s.finish(err)
	}
	return ret, nil
}

func (s *Session) enter(prog *ast.Program) {
	s.prog = prog
	s.frames = s.frames[:0]
	s.acts = s.acts[:0]
	s.ret = NilValue()
	s.pushFrame(FrameRoot, 0)
}

// leave tears down every frame and turns a heap integrity panic into an
// error.
func (s *Session) leave(rec any, err error) error {
	if rec != nil {
		vmErr, ok := rec.(*VMError)
		if !ok {
			panic(rec)
		}
		s.locate(vmErr)
		err = vmErr
	}
	s.acts = s.acts[:0]
	s.heap.ReleaseValue(s.ret)
	s.ret = NilValue()
	s.popFramesTo(0)
	return err
}

// finish maps an exit request to a clean stop.
func (s *Session) finish(err error) error {
	var exit *ExitRequest
	if errors.As(err, &exit) {
		s.exitCode = exit.Code
		s.exited = true
		return nil
	}
	return err
}

// stray reports a control signal that escaped to the root frame.
func (s *Session) stray(sig Signal) error {
	switch sig {
	case SigBreak:
		return s.errorf(PanicBreakOutside, "'break' outside 'for' or 'loop'")
	case SigReturn:
		s.heap.ReleaseValue(s.ret)
		s.ret = NilValue()
		return s.errorf(PanicReturnOutside, "'return' outside a function")
	}
	return nil
}

// hoist runs only the definition statements at the top level.
func (s *Session) hoist(ctx context.Context) error {
	stmts := s.prog.Stmts
	for i := 0; i < len(stmts); {
		st := &stmts[i]
		switch st.Kind {
		case ast.StmtFn, ast.StmtClass, ast.StmtModule:
			s.at(st)
			if err := s.execDefinition(ctx, i); err != nil {
				return err
			}
			i = s.prog.End[i] + 1
		default:
			if st.Kind.Opens() && s.prog.End[i] != ast.NoIndex {
				i = s.prog.End[i] + 1
				continue
			}
			i++
		}
	}
	return nil
}

// resolvePath looks up a possibly dotted name and returns an owned value.
func (s *Session) resolvePath(path string) (Value, error) {
	parts := strings.Split(path, ".")
	sl, ok := s.resolve(parts[0])
	if !ok {
		return NilValue(), s.errorf(PanicFunctionNotFound, "function not found: %s", path)
	}
	cur := sl.get()
	for _, part := range parts[1:] {
		if !cur.IsHeap() || cur.Kind == VKVector {
			return NilValue(), s.errorf(PanicFunctionNotFound, "function not found: %s", path)
		}
		next, ok := s.heap.Get(cur.H).Map.Get(part)
		if !ok {
			return NilValue(), s.errorf(PanicFunctionNotFound, "function not found: %s", path)
		}
		cur = next
	}
	s.heap.RetainValue(cur)
	return cur, nil
}

// Close releases the globals map. With LeakCheck it reports objects that
// are still alive afterwards.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.heap.Release(s.globals)
	if !s.leakCheck {
		return nil
	}
	if leaks := s.heap.Leaks(); len(leaks) > 0 {
		parts := make([]string, len(leaks))
		for i, l := range leaks {
			parts[i] = l.String()
		}
		return fmt.Errorf("vm: %d leaked object(s): %s", len(leaks), strings.Join(parts, ", "))
	}
	return nil
}

// Leaks lists heap objects currently alive.
func (s *Session) Leaks() []Leak { return s.heap.Leaks() }

// Retain keeps a collection alive beyond a host call.
func (s *Session) Retain(v Value) { s.heap.RetainValue(v) }

// Release drops a reference obtained from the session.
func (s *Session) Release(v Value) { s.heap.ReleaseValue(v) }

func (s *Session) releaseAll(vals []Value) {
	for _, v := range vals {
		s.heap.ReleaseValue(v)
	}
}

// at records the statement being executed for error locations.
func (s *Session) at(st *ast.Stmt) {
	s.curLine = st.Line
	s.curStmt = st.Kind
}

// errorf builds a located runtime error with the current backtrace.
func (s *Session) errorf(code PanicCode, format string, args ...any) *VMError {
	e := newVMError(code, fmt.Sprintf(format, args...))
	s.locate(e)
	return e
}

func (s *Session) locate(e *VMError) {
	if e.Line == 0 {
		e.Line = s.curLine
		e.Stmt = s.curStmt.String()
	}
	if e.Backtrace != nil {
		return
	}
	line := s.curLine
	for i := len(s.acts) - 1; i >= 0; i-- {
		a := s.acts[i]
		e.Backtrace = append(e.Backtrace, BacktraceFrame{FuncName: a.fn.Name, Line: line})
		line = a.callLine
	}
	if len(s.acts) > 0 {
		e.Backtrace = append(e.Backtrace, BacktraceFrame{FuncName: "<main>", Line: line})
	}
}

func statusOf(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
