package vm

import (
	"math"
	"strings"

	"lisle/internal/token"
)

// unary applies '-' or 'not' to an owned operand.
func (s *Session) unary(op token.Kind, x Value) (Value, error) {
	defer s.heap.ReleaseValue(x)
	switch op {
	case token.KwNot:
		return BoolValue(!s.truthy(x)), nil
	case token.Minus:
		switch x.Kind {
		case VKInt:
			return IntValue(-x.Int), nil
		case VKFloat:
			return FloatValue(-x.Float), nil
		}
		return NilValue(), s.errorf(PanicTypeMismatch, "bad operand for unary -: %s", x.Kind)
	}
	return NilValue(), s.errorf(PanicTypeMismatch, "unknown unary operator %s", op)
}

// binary applies an arithmetic or comparison operator. Both operands are
// owned and released here.
func (s *Session) binary(op token.Kind, x, y Value) (Value, error) {
	defer s.heap.ReleaseValue(y)
	defer s.heap.ReleaseValue(x)

	switch op {
	case token.EqEq:
		return BoolValue(equal(x, y)), nil
	case token.BangEq:
		return BoolValue(!equal(x, y)), nil
	case token.Lt, token.LtEq, token.Gt, token.GtEq:
		return s.compare(op, x, y)
	}

	if x.Kind == VKString || y.Kind == VKString {
		return s.stringOp(op, x, y)
	}
	if !x.IsNumber() || !y.IsNumber() {
		return NilValue(), s.operandError(op, x, y)
	}
	if x.Kind == VKInt && y.Kind == VKInt {
		return s.intOp(op, x.Int, y.Int)
	}
	return s.floatOp(op, x.asFloat(), y.asFloat())
}

// intOp: 32-bit arithmetic wraps on overflow.
func (s *Session) intOp(op token.Kind, a, b int32) (Value, error) {
	switch op {
	case token.Plus:
		return IntValue(a + b), nil
	case token.Minus:
		return IntValue(a - b), nil
	case token.Star:
		return IntValue(a * b), nil
	case token.Slash:
		if b == 0 {
			return NilValue(), s.errorf(PanicDivisionByZero, "division by zero")
		}
		return IntValue(a / b), nil
	case token.Percent:
		if b == 0 {
			return NilValue(), s.errorf(PanicDivisionByZero, "modulo by zero")
		}
		return IntValue(a % b), nil
	}
	return NilValue(), s.errorf(PanicTypeMismatch, "unknown operator %s", op.Spelling())
}

func (s *Session) floatOp(op token.Kind, a, b float32) (Value, error) {
	switch op {
	case token.Plus:
		return FloatValue(a + b), nil
	case token.Minus:
		return FloatValue(a - b), nil
	case token.Star:
		return FloatValue(a * b), nil
	case token.Slash:
		if b == 0 {
			return NilValue(), s.errorf(PanicDivisionByZero, "division by zero")
		}
		return FloatValue(a / b), nil
	case token.Percent:
		if b == 0 {
			return NilValue(), s.errorf(PanicDivisionByZero, "modulo by zero")
		}
		return FloatValue(float32(math.Mod(float64(a), float64(b)))), nil
	}
	return NilValue(), s.errorf(PanicTypeMismatch, "unknown operator %s", op.Spelling())
}

// stringOp: concatenation and repetition.
func (s *Session) stringOp(op token.Kind, x, y Value) (Value, error) {
	switch {
	case op == token.Plus && x.Kind == VKString && y.Kind == VKString:
		return OwnedString(x.Str + y.Str), nil
	case op == token.Star && x.Kind == VKString && y.Kind == VKInt:
		return s.repeat(x.Str, y.Int)
	case op == token.Star && x.Kind == VKInt && y.Kind == VKString:
		return s.repeat(y.Str, x.Int)
	}
	return NilValue(), s.operandError(op, x, y)
}

func (s *Session) repeat(str string, n int32) (Value, error) {
	if n < 0 {
		return NilValue(), s.errorf(PanicTypeMismatch, "negative repeat count %d", n)
	}
	return OwnedString(strings.Repeat(str, int(n))), nil
}

func (s *Session) operandError(op token.Kind, x, y Value) error {
	return s.errorf(PanicTypeMismatch, "unsupported operand types for %s: %s and %s", op.Spelling(), x.Kind, y.Kind)
}

func (s *Session) compare(op token.Kind, x, y Value) (Value, error) {
	var c int
	switch {
	case x.Kind == VKInt && y.Kind == VKInt:
		c = cmp3(x.Int, y.Int)
	case x.IsNumber() && y.IsNumber():
		c = cmp3(x.asFloat(), y.asFloat())
	case x.Kind == VKString && y.Kind == VKString:
		c = strings.Compare(x.Str, y.Str)
	default:
		return NilValue(), s.operandError(op, x, y)
	}
	switch op {
	case token.Lt:
		return BoolValue(c < 0), nil
	case token.LtEq:
		return BoolValue(c <= 0), nil
	case token.Gt:
		return BoolValue(c > 0), nil
	default:
		return BoolValue(c >= 0), nil
	}
}

func cmp3[T int32 | float32](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// equal: numbers compare across Int/Float, collections by identity,
// values of different kinds are never equal.
func equal(x, y Value) bool {
	if x.IsNumber() && y.IsNumber() {
		if x.Kind == VKInt && y.Kind == VKInt {
			return x.Int == y.Int
		}
		return x.asFloat() == y.asFloat()
	}
	if x.Kind != y.Kind {
		return false
	}
	switch x.Kind {
	case VKNil:
		return true
	case VKBool:
		return x.Bool == y.Bool
	case VKString:
		return x.Str == y.Str
	case VKFunc:
		return x.Fn == y.Fn
	}
	return x.H == y.H
}
