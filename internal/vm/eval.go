package vm

import (
	"context"

	"lisle/internal/ast"
	"lisle/internal/token"
)

// eval evaluates e and returns an owned value: the caller must release it
// or move it into a binding.
func (s *Session) eval(ctx context.Context, e *ast.Expr) (Value, error) {
	switch e.Kind {
	case ast.ExprInt:
		return IntValue(e.Int), nil
	case ast.ExprFloat:
		return FloatValue(e.Float), nil
	case ast.ExprString:
		return StringValue(e.Str), nil
	case ast.ExprBool:
		return BoolValue(e.Bool), nil
	case ast.ExprNil:
		return NilValue(), nil

	case ast.ExprIdent:
		return s.readName(e.Name)

	case ast.ExprUnary:
		x, err := s.eval(ctx, e.X)
		if err != nil {
			return NilValue(), err
		}
		return s.unary(e.Op, x)

	case ast.ExprBinary:
		if e.Op == token.KwAnd || e.Op == token.KwOr {
			return s.logical(ctx, e)
		}
		x, err := s.eval(ctx, e.X)
		if err != nil {
			return NilValue(), err
		}
		y, err := s.eval(ctx, e.Y)
		if err != nil {
			s.heap.ReleaseValue(x)
			return NilValue(), err
		}
		return s.binary(e.Op, x, y)

	case ast.ExprCall:
		return s.evalCall(ctx, e)

	case ast.ExprIndex:
		recv, err := s.eval(ctx, e.X)
		if err != nil {
			return NilValue(), err
		}
		key, err := s.eval(ctx, e.Y)
		if err != nil {
			s.heap.ReleaseValue(recv)
			return NilValue(), err
		}
		v, err := s.index(recv, key)
		s.heap.ReleaseValue(key)
		s.heap.ReleaseValue(recv)
		return v, err

	case ast.ExprAttr:
		recv, err := s.eval(ctx, e.X)
		if err != nil {
			return NilValue(), err
		}
		v, err := s.getAttr(recv, e.Name)
		s.heap.ReleaseValue(recv)
		return v, err
	}
	return NilValue(), s.errorf(PanicTypeMismatch, "cannot evaluate %s expression", e.Kind)
}

// readName resolves an identifier used as a value.
func (s *Session) readName(name string) (Value, error) {
	if name == globalsName {
		s.heap.Retain(s.globals)
		return s.Globals(), nil
	}
	sl, ok := s.resolve(name)
	if !ok {
		if _, builtin := intrinsics[name]; builtin {
			return NilValue(), s.errorf(PanicUnboundName, "'%s' is a built-in function and can only be called", name)
		}
		return NilValue(), s.errorf(PanicUnboundName, "unbound name '%s'", name)
	}
	v := sl.get()
	s.heap.RetainValue(v)
	return v, nil
}

// logical evaluates 'and'/'or' with short-circuit; the result is a Boolean.
func (s *Session) logical(ctx context.Context, e *ast.Expr) (Value, error) {
	left, err := s.guard(ctx, e.X)
	if err != nil {
		return NilValue(), err
	}
	if e.Op == token.KwAnd && !left {
		return BoolValue(false), nil
	}
	if e.Op == token.KwOr && left {
		return BoolValue(true), nil
	}
	right, err := s.guard(ctx, e.Y)
	if err != nil {
		return NilValue(), err
	}
	return BoolValue(right), nil
}
