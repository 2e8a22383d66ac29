package vm

import (
	"context"
	"errors"
	"strconv"

	"lisle/internal/ast"
	"lisle/internal/trace"
)

// callFunction runs a user function. Ownership of args moves into the
// parameters; the result is owned by the caller.
func (s *Session) callFunction(ctx context.Context, fn *Function, args []Value) (Value, error) {
	if err := s.checkCanceled(ctx); err != nil {
		s.releaseAll(args)
		return NilValue(), err
	}
	if len(s.acts) >= s.maxDepth {
		s.releaseAll(args)
		return NilValue(), s.errorf(PanicCallDepth, "call depth exceeded (%d)", s.maxDepth)
	}
	n := len(fn.Params)
	if len(args) < n || (!fn.Variadic && len(args) > n) {
		s.releaseAll(args)
		want := strconv.Itoa(n)
		if fn.Variadic {
			want = "at least " + want
		}
		return NilValue(), s.errorf(PanicArity, "%s expects %s argument(s), got %d", fn.Name, want, len(args))
	}

	if tr := trace.FromContext(ctx); tr.Enabled() {
		span := trace.Begin(tr, trace.ScopeModule, "call "+fn.Name, trace.CurrentSpan(ctx).SpanID)
		ctx = trace.WithSpanContext(ctx, trace.SpanContext{SpanID: span.ID()})
		defer span.End("")
	}
	s.tracer.Call(fn, len(args))

	prevProg, prevLine, prevStmt := s.prog, s.curLine, s.curStmt
	if fn.Prog != nil {
		s.prog = fn.Prog
	}
	base := len(s.frames)
	s.acts = append(s.acts, activation{fn: fn, base: base, callLine: s.curLine})
	f := s.pushFrame(FrameFunction, 0)
	for i, p := range fn.Params {
		f.binds = append(f.binds, binding{name: p, val: args[i]})
	}
	if fn.Variadic {
		tail := append([]Value(nil), args[n:]...)
		f.binds = append(f.binds, binding{name: "args", val: s.heap.NewVector(tail)})
	}

	sig, err := s.execRange(ctx, fn.Start, fn.End)
	ret := NilValue()
	if err == nil {
		switch sig {
		case SigReturn:
			ret, s.ret = s.ret, NilValue()
		case SigBreak:
			err = s.errorf(PanicBreakOutside, "'break' outside 'for' or 'loop'")
		}
	}

	s.popFramesTo(base)
	s.acts = s.acts[:len(s.acts)-1]
	s.prog, s.curLine, s.curStmt = prevProg, prevLine, prevStmt
	return ret, err
}

// callValue calls a callee value with owned args.
func (s *Session) callValue(ctx context.Context, callee Value, args []Value) (Value, error) {
	if callee.Kind == VKFunc {
		return s.callFunction(ctx, callee.Fn, args)
	}
	s.heap.ReleaseValue(callee)
	s.releaseAll(args)
	return NilValue(), s.errorf(PanicNotCallable, "cannot call a %s value", callee.Kind)
}

// callHost forwards a call to the host binding layer.
func (s *Session) callHost(ctx context.Context, name string, args []Value) (Value, error) {
	s.tracer.HostCall(name, len(args))
	call := &HostCall{Name: name, Args: args, Line: s.curLine, Session: s}
	v, err := s.host.Invoke(ctx, call)
	s.releaseAll(args)
	if err == nil {
		return v, nil
	}
	s.heap.ReleaseValue(v)

	var (
		exit  *ExitRequest
		vmErr *VMError
	)
	switch {
	case errors.As(err, &exit):
		return NilValue(), err
	case errors.As(err, &vmErr):
		return NilValue(), vmErr
	case errors.Is(err, ErrUnknownFunction):
		e := s.errorf(PanicUnknownFunction, "unknown function '%s'", name)
		e.Cause = err
		return NilValue(), e
	}
	e := s.errorf(PanicHostFailed, "%s: %v", name, err)
	e.Cause = err
	return NilValue(), e
}

// evalArgs evaluates call arguments left to right into owned values.
func (s *Session) evalArgs(ctx context.Context, exprs []*ast.Expr, extra int) ([]Value, error) {
	args := make([]Value, extra, len(exprs)+extra)
	for _, e := range exprs {
		v, err := s.eval(ctx, e)
		if err != nil {
			s.releaseAll(args[extra:])
			return nil, err
		}
		args = append(args, v)
	}
	return args, nil
}

// evalCall resolves the callee of a call expression: a bound name, an
// intrinsic, a host function, a method or any function-valued expression.
func (s *Session) evalCall(ctx context.Context, e *ast.Expr) (Value, error) {
	switch e.X.Kind {
	case ast.ExprIdent:
		name := e.X.Name
		if name != globalsName {
			if sl, ok := s.resolve(name); ok {
				callee := sl.get()
				s.heap.RetainValue(callee)
				args, err := s.evalArgs(ctx, e.Args, 0)
				if err != nil {
					s.heap.ReleaseValue(callee)
					return NilValue(), err
				}
				return s.callValue(ctx, callee, args)
			}
		}
		args, err := s.evalArgs(ctx, e.Args, 0)
		if err != nil {
			return NilValue(), err
		}
		if fn, ok := intrinsics[name]; ok {
			v, err := fn(ctx, s, args)
			s.releaseAll(args)
			return v, err
		}
		return s.callHost(ctx, name, args)

	case ast.ExprAttr:
		recv, err := s.eval(ctx, e.X.X)
		if err != nil {
			return NilValue(), err
		}
		// slot 0 is reserved for the receiver
		args, err := s.evalArgs(ctx, e.Args, 1)
		if err != nil {
			s.heap.ReleaseValue(recv)
			return NilValue(), err
		}
		return s.dispatch(ctx, recv, e.X.Name, args)
	}

	callee, err := s.eval(ctx, e.X)
	if err != nil {
		return NilValue(), err
	}
	args, err := s.evalArgs(ctx, e.Args, 0)
	if err != nil {
		s.heap.ReleaseValue(callee)
		return NilValue(), err
	}
	return s.callValue(ctx, callee, args)
}
