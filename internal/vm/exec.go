package vm

import (
	"context"
	"math"

	"lisle/internal/ast"
)

// Signal is the non-error outcome of executing statements.
type Signal uint8

const (
	SigNormal Signal = iota
	SigBreak
	SigReturn // value pending in Session.ret
)

func (sig Signal) String() string {
	switch sig {
	case SigBreak:
		return "break"
	case SigReturn:
		return "return"
	}
	return "normal"
}

// execRange runs the statements in [start, end), following the jump tables
// for blocks.
func (s *Session) execRange(ctx context.Context, start, end int) (Signal, error) {
	stmts := s.prog.Stmts
	for i := start; i < end; {
		st := &stmts[i]
		s.at(st)
		s.tracer.Stmt(len(s.frames), st)

		switch st.Kind {
		case ast.StmtEmpty, ast.StmtEnd:
			i++

		case ast.StmtExpr:
			v, err := s.eval(ctx, st.X)
			if err != nil {
				return SigNormal, err
			}
			s.heap.ReleaseValue(v)
			i++

		case ast.StmtVar:
			v := NilValue()
			if st.X != nil {
				var err error
				if v, err = s.eval(ctx, st.X); err != nil {
					return SigNormal, err
				}
			}
			if err := s.declare(st.Name, v); err != nil {
				return SigNormal, err
			}
			i++

		case ast.StmtLet:
			if err := s.execLet(ctx, st); err != nil {
				return SigNormal, err
			}
			i++

		case ast.StmtIf:
			sig, err := s.execIf(ctx, i)
			if err != nil || sig != SigNormal {
				return sig, err
			}
			i = s.prog.End[i] + 1

		case ast.StmtElif, ast.StmtElse:
			// only reached by falling out of a clause body
			i = s.clauseEnd(i) + 1

		case ast.StmtFor:
			sig, err := s.execFor(ctx, i)
			if err != nil || sig != SigNormal {
				return sig, err
			}
			i = s.prog.End[i] + 1

		case ast.StmtLoop:
			sig, err := s.execLoop(ctx, i)
			if err != nil || sig != SigNormal {
				return sig, err
			}
			i = s.prog.End[i] + 1

		case ast.StmtBreak:
			return SigBreak, nil

		case ast.StmtReturn:
			v := NilValue()
			if st.X != nil {
				var err error
				if v, err = s.eval(ctx, st.X); err != nil {
					return SigNormal, err
				}
			}
			s.heap.ReleaseValue(s.ret)
			s.ret = v
			return SigReturn, nil

		case ast.StmtFn, ast.StmtClass, ast.StmtModule:
			if err := s.execDefinition(ctx, i); err != nil {
				return SigNormal, err
			}
			i = s.prog.End[i] + 1

		default:
			return SigNormal, s.errorf(PanicTypeMismatch, "unexpected statement %s", st.Kind)
		}
	}
	return SigNormal, nil
}

func (s *Session) clauseEnd(i int) int {
	for s.prog.Stmts[i].Kind != ast.StmtEnd {
		i = s.prog.Next[i]
	}
	return i
}

// execBlock runs [start, end) inside a new frame and tears it down on every
// path.
func (s *Session) execBlock(ctx context.Context, kind FrameKind, ns Handle, start, end int, bind func(*Frame) error) (Signal, error) {
	depth := len(s.frames)
	s.pushFrame(kind, ns)
	defer s.popFramesTo(depth)
	if bind != nil {
		if err := bind(s.frames[depth]); err != nil {
			return SigNormal, err
		}
	}
	return s.execRange(ctx, start, end)
}

func (s *Session) execIf(ctx context.Context, i int) (Signal, error) {
	stmts := s.prog.Stmts
	for clause := i; ; clause = s.prog.Next[clause] {
		st := &stmts[clause]
		s.at(st)
		switch st.Kind {
		case ast.StmtIf, ast.StmtElif:
			ok, err := s.guard(ctx, st.X)
			if err != nil {
				return SigNormal, err
			}
			if !ok {
				continue
			}
		case ast.StmtElse:
		default:
			return SigNormal, nil
		}
		start, end := s.prog.ClauseBody(clause)
		return s.execBlock(ctx, FrameIf, 0, start, end, nil)
	}
}

func (s *Session) guard(ctx context.Context, x *ast.Expr) (bool, error) {
	v, err := s.eval(ctx, x)
	if err != nil {
		return false, err
	}
	ok := s.truthy(v)
	s.heap.ReleaseValue(v)
	return ok, nil
}

// forBounds evaluates a numeric for-header operand.
func (s *Session) forBound(ctx context.Context, x *ast.Expr, what string) (Value, error) {
	v, err := s.eval(ctx, x)
	if err != nil {
		return NilValue(), err
	}
	if !v.IsNumber() {
		s.heap.ReleaseValue(v)
		return NilValue(), s.errorf(PanicTypeMismatch, "for %s must be a number, got %s", what, v.Kind)
	}
	return v, nil
}

func (s *Session) execFor(ctx context.Context, i int) (Signal, error) {
	st := &s.prog.Stmts[i]
	if st.Name == globalsName {
		return SigNormal, s.errorf(PanicReservedName, "'%s' cannot be rebound", globalsName)
	}
	from, err := s.forBound(ctx, st.From, "start")
	if err != nil {
		return SigNormal, err
	}
	to, err := s.forBound(ctx, st.To, "limit")
	if err != nil {
		return SigNormal, err
	}
	step := IntValue(1)
	if st.Step != nil {
		if step, err = s.forBound(ctx, st.Step, "step"); err != nil {
			return SigNormal, err
		}
	}

	var (
		count int64
		at    func(k int64) Value
	)
	if from.Kind == VKInt && to.Kind == VKInt && step.Kind == VKInt {
		a, b, d := int64(from.Int), int64(to.Int), int64(step.Int)
		if d == 0 {
			return SigNormal, s.errorf(PanicZeroStep, "step must be non-zero")
		}
		if (d > 0 && a <= b) || (d < 0 && a >= b) {
			count = (b-a)/d + 1
		}
		at = func(k int64) Value { return IntValue(int32(a + k*d)) } // #nosec G115 -- a+k*d stays between a and b
	} else {
		a, b, d := float64(from.asFloat()), float64(to.asFloat()), float64(step.asFloat())
		if d == 0 {
			return SigNormal, s.errorf(PanicZeroStep, "step must be non-zero")
		}
		index := func(k int64) float32 { return float32(a + float64(k)*d) }
		past := func(k int64) bool {
			if d > 0 {
				return index(k) > to.asFloat()
			}
			return index(k) < to.asFloat()
		}
		if (d > 0 && a <= b) || (d < 0 && a >= b) {
			count = int64(math.Floor((b-a)/d)) + 1
			// the estimate is in float64, the index is float32: settle the
			// count on the last index that has not passed the limit
			for n := 0; n < 4 && count > 1 && past(count-1); n++ {
				count--
			}
			for n := 0; n < 4 && !past(count); n++ {
				count++
			}
		}
		at = func(k int64) Value { return FloatValue(index(k)) }
	}

	start, end := s.prog.BodyRange(i)
	for k := int64(0); k < count; k++ {
		if err := s.checkCanceled(ctx); err != nil {
			return SigNormal, err
		}
		idx := at(k)
		sig, err := s.execBlock(ctx, FrameFor, 0, start, end, func(f *Frame) error {
			f.binds = append(f.binds, binding{name: st.Name, val: idx})
			return nil
		})
		if err != nil {
			return SigNormal, err
		}
		switch sig {
		case SigBreak:
			return SigNormal, nil
		case SigReturn:
			return sig, nil
		}
	}
	return SigNormal, nil
}

func (s *Session) execLoop(ctx context.Context, i int) (Signal, error) {
	start, end := s.prog.BodyRange(i)
	for {
		if err := s.checkCanceled(ctx); err != nil {
			return SigNormal, err
		}
		sig, err := s.execBlock(ctx, FrameLoop, 0, start, end, nil)
		if err != nil {
			return SigNormal, err
		}
		switch sig {
		case SigBreak:
			return SigNormal, nil
		case SigReturn:
			return sig, nil
		}
	}
}

func (s *Session) checkCanceled(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		e := s.errorf(PanicCanceled, "execution canceled: %v", err)
		e.Cause = err
		return e
	}
	return nil
}

// execDefinition handles fn, class and module statements.
func (s *Session) execDefinition(ctx context.Context, i int) error {
	st := &s.prog.Stmts[i]
	start, end := s.prog.BodyRange(i)
	switch st.Kind {
	case ast.StmtFn:
		for _, p := range st.Params {
			if p == globalsName {
				return s.errorf(PanicReservedName, "parameter '%s' cannot be rebound", globalsName)
			}
		}
		fn := &Function{
			Name:     st.Name,
			Params:   append([]string(nil), st.Params...),
			Variadic: st.Variadic,
			Start:    start,
			End:      end,
			Line:     st.Line,
			Scope:    s.nsChain(),
			Prog:     s.prog,
		}
		return s.declare(st.Name, FuncValue(fn))

	case ast.StmtClass, ast.StmtModule:
		kind, frame := OKClass, FrameClass
		if st.Kind == ast.StmtModule {
			kind, frame = OKModule, FrameModule
		}
		h, _ := s.heap.Alloc(kind, st.Name)
		if err := s.declare(st.Name, handleValue(kind.valueKind(), h)); err != nil {
			return err
		}
		sig, err := s.execBlock(ctx, frame, h, start, end, nil)
		if err != nil {
			return err
		}
		return s.stray(sig)
	}
	return nil
}

// execLet assigns to a name, an attribute or an index.
func (s *Session) execLet(ctx context.Context, st *ast.Stmt) error {
	v, err := s.eval(ctx, st.X)
	if err != nil {
		return err
	}
	target := st.Target
	switch target.Kind {
	case ast.ExprIdent:
		if target.Name == globalsName {
			s.heap.ReleaseValue(v)
			return s.errorf(PanicReservedName, "'%s' cannot be rebound", globalsName)
		}
		sl, ok := s.resolve(target.Name)
		if !ok {
			s.heap.ReleaseValue(v)
			return s.errorf(PanicUnboundName, "assignment to unbound name '%s'", target.Name)
		}
		if s.tracer.enabled() {
			s.tracer.Bind(target.Name, describe(v))
		}
		s.heap.ReleaseValue(sl.set(v))
		return nil

	case ast.ExprAttr:
		recv, err := s.eval(ctx, target.X)
		if err != nil {
			s.heap.ReleaseValue(v)
			return err
		}
		defer s.heap.ReleaseValue(recv)
		return s.setAttr(recv, target.Name, v)

	case ast.ExprIndex:
		recv, err := s.eval(ctx, target.X)
		if err != nil {
			s.heap.ReleaseValue(v)
			return err
		}
		defer s.heap.ReleaseValue(recv)
		key, err := s.eval(ctx, target.Y)
		if err != nil {
			s.heap.ReleaseValue(v)
			return err
		}
		defer s.heap.ReleaseValue(key)
		return s.setIndex(recv, key, v)
	}
	s.heap.ReleaseValue(v)
	return s.errorf(PanicTypeMismatch, "cannot assign to %s", target.Kind)
}
