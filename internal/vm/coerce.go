package vm

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"lisle/internal/lexer"
	"lisle/internal/token"
)

// truthy implements bool(v).
func (s *Session) truthy(v Value) bool {
	switch v.Kind {
	case VKNil:
		return false
	case VKBool:
		return v.Bool
	case VKInt:
		return v.Int != 0
	case VKFloat:
		return v.Float != 0
	case VKString:
		return v.Str != ""
	case VKVector:
		return len(s.heap.Get(v.H).Vec) > 0
	case VKMap:
		return s.heap.Get(v.H).Map.Len() > 0
	}
	return true
}

// ToInt implements int(v).
func (s *Session) ToInt(v Value) (Value, error) {
	switch v.Kind {
	case VKInt:
		return v, nil
	case VKFloat:
		return IntValue(int32(int64(v.Float))), nil // #nosec G115 -- wraps like integer arithmetic
	case VKBool:
		if v.Bool {
			return IntValue(1), nil
		}
		return IntValue(0), nil
	case VKString:
		n, err := parseIntString(v.Str)
		if err != nil {
			e := s.errorf(PanicConversion, "cannot convert %q to int", v.Str)
			e.Cause = err
			return NilValue(), e
		}
		return IntValue(n), nil
	case VKNil:
		return NilValue(), s.errorf(PanicConversion, "cannot convert nil to int")
	}
	return NilValue(), s.errorf(PanicTypeMismatch, "cannot convert a %s value to int", v.Kind)
}

// parseIntString accepts an optional sign followed by a decimal, 0x or 0b
// literal.
func parseIntString(str string) (int32, error) {
	t := strings.TrimSpace(str)
	neg := false
	switch {
	case strings.HasPrefix(t, "-"):
		neg, t = true, t[1:]
	case strings.HasPrefix(t, "+"):
		t = t[1:]
	}
	if t == "" || t[0] == '-' || t[0] == '+' {
		return 0, strconv.ErrSyntax
	}
	lower := strings.ToLower(t)
	if strings.HasPrefix(lower, "0x") || strings.HasPrefix(lower, "0b") {
		n, err := token.ParseIntLit(lower)
		if err != nil {
			return 0, err
		}
		if neg {
			n = -n
		}
		return n, nil
	}
	if neg {
		t = "-" + t
	}
	n, err := strconv.ParseInt(t, 10, 32)
	if err != nil {
		return 0, err
	}
	return int32(n), nil
}

// ToFloat implements float(v).
func (s *Session) ToFloat(v Value) (Value, error) {
	switch v.Kind {
	case VKFloat:
		return v, nil
	case VKInt:
		return FloatValue(float32(v.Int)), nil
	case VKBool:
		if v.Bool {
			return FloatValue(1), nil
		}
		return FloatValue(0), nil
	case VKString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 32)
		if err != nil {
			e := s.errorf(PanicConversion, "cannot convert %q to float", v.Str)
			e.Cause = err
			return NilValue(), e
		}
		return FloatValue(float32(f)), nil
	case VKNil:
		return NilValue(), s.errorf(PanicConversion, "cannot convert nil to float")
	}
	return NilValue(), s.errorf(PanicTypeMismatch, "cannot convert a %s value to float", v.Kind)
}

// ToString implements string(v). Objects whose class defines
// to_string(self) render through it.
func (s *Session) ToString(ctx context.Context, v Value) (string, error) {
	if v.Kind == VKString {
		return v.Str, nil
	}
	var sb strings.Builder
	r := renderer{s: s, ctx: ctx, sb: &sb, seen: map[Handle]bool{}}
	if err := r.value(v, false); err != nil {
		return "", err
	}
	return sb.String(), nil
}

type renderer struct {
	s    *Session
	ctx  context.Context
	sb   *strings.Builder
	seen map[Handle]bool // collections on the current path
}

func (r *renderer) value(v Value, nested bool) error {
	switch v.Kind {
	case VKString:
		if nested {
			r.sb.WriteString(lexer.Quote(v.Str))
		} else {
			r.sb.WriteString(v.Str)
		}
		return nil
	case VKClass, VKModule:
		if obj, ok := r.s.heap.Lookup(v.H); ok {
			fmt.Fprintf(r.sb, "<%s %s>", v.Kind, obj.Name)
			return nil
		}
		r.sb.WriteString(renderScalar(v))
		return nil
	case VKVector, VKMap, VKObject:
	default:
		r.sb.WriteString(renderScalar(v))
		return nil
	}

	if r.seen[v.H] {
		r.sb.WriteString("...")
		return nil
	}
	r.seen[v.H] = true
	defer delete(r.seen, v.H)

	obj := r.s.heap.Get(v.H)
	switch v.Kind {
	case VKVector:
		r.sb.WriteByte('[')
		for i, e := range obj.Vec {
			if i > 0 {
				r.sb.WriteString(", ")
			}
			if err := r.value(e, true); err != nil {
				return err
			}
		}
		r.sb.WriteByte(']')
		return nil
	case VKObject:
		if cls, ok := r.s.heap.Lookup(obj.Class); ok {
			if m, ok := cls.Map.Get("to_string"); ok && m.Kind == VKFunc {
				return r.custom(v, m.Fn)
			}
		}
	}
	return r.entries(obj.Map)
}

func (r *renderer) entries(m *OrderedMap) error {
	r.sb.WriteByte('{')
	i := 0
	var err error
	m.Each(func(key string, val Value) {
		if err != nil {
			return
		}
		if i > 0 {
			r.sb.WriteString(", ")
		}
		i++
		r.sb.WriteString(key)
		r.sb.WriteString(": ")
		err = r.value(val, true)
	})
	if err != nil {
		return err
	}
	r.sb.WriteByte('}')
	return nil
}

// custom renders an object through its class's to_string method.
func (r *renderer) custom(self Value, fn *Function) error {
	r.s.heap.Retain(self.H)
	out, err := r.s.callFunction(r.ctx, fn, []Value{self})
	if err != nil {
		return err
	}
	defer r.s.heap.ReleaseValue(out)
	if out.Kind == VKString {
		r.sb.WriteString(out.Str)
		return nil
	}
	return r.value(out, false)
}

// renderScalar renders values that need no heap access.
func renderScalar(v Value) string {
	switch v.Kind {
	case VKNil:
		return "nil"
	case VKInt:
		return strconv.FormatInt(int64(v.Int), 10)
	case VKFloat:
		return token.FormatFloat(v.Float)
	case VKBool:
		return strconv.FormatBool(v.Bool)
	case VKString:
		return v.Str
	case VKFunc:
		return v.Fn.String()
	}
	return fmt.Sprintf("<%s#%d>", v.Kind, v.H)
}

// describe is the trace form of a value: scalars in full, collections by
// handle.
func describe(v Value) string {
	if v.Kind == VKString {
		return lexer.Quote(v.Str)
	}
	return renderScalar(v)
}
