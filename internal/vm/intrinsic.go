package vm

import (
	"context"
	"strings"
)

// intrinsicFunc implements a built-in that works on the value model. Args
// are borrowed; the result is owned by the caller.
type intrinsicFunc func(ctx context.Context, s *Session, args []Value) (Value, error)

var intrinsics map[string]intrinsicFunc

func init() {
	intrinsics = map[string]intrinsicFunc{
		"vec":     builtinVec,
		"map":     builtinMap,
		"push":    builtinPush,
		"pop":     builtinPop,
		"delete":  builtinDelete,
		"len":     builtinLen,
		"keys":    builtinKeys,
		"has":     builtinHas,
		"string":  builtinString,
		"int":     builtinInt,
		"float":   builtinFloat,
		"bool":    builtinBool,
		"type":    builtinType,
		"classof": builtinClassOf,
		"format":  builtinFormat,
	}
}

// IsIntrinsic reports whether name is resolved by the engine itself.
func IsIntrinsic(name string) bool {
	_, ok := intrinsics[name]
	return ok
}

func (s *Session) arity(name string, args []Value, want int) error {
	if len(args) != want {
		return s.errorf(PanicArity, "%s expects %d argument(s), got %d", name, want, len(args))
	}
	return nil
}

func (s *Session) expectKind(name string, v Value, kinds ...ValueKind) error {
	for _, k := range kinds {
		if v.Kind == k {
			return nil
		}
	}
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.String()
	}
	return s.errorf(PanicTypeMismatch, "%s expects %s, got %s", name, strings.Join(names, " or "), v.Kind)
}

// vec(a, b, ...) builds a Vector of its arguments.
func builtinVec(_ context.Context, s *Session, args []Value) (Value, error) {
	elems := make([]Value, len(args))
	for i, a := range args {
		s.heap.RetainValue(a)
		elems[i] = a
	}
	return s.heap.NewVector(elems), nil
}

// map("k1", v1, "k2", v2, ...) builds a Map from key/value pairs.
func builtinMap(_ context.Context, s *Session, args []Value) (Value, error) {
	if len(args)%2 != 0 {
		return NilValue(), s.errorf(PanicArity, "map expects key/value pairs, got %d argument(s)", len(args))
	}
	for i := 0; i < len(args); i += 2 {
		if err := s.expectKind("map key", args[i], VKString); err != nil {
			return NilValue(), err
		}
	}
	m := s.heap.NewMap()
	obj := s.heap.Get(m.H)
	for i := 0; i < len(args); i += 2 {
		s.heap.RetainValue(args[i+1])
		if old, replaced := obj.Map.Set(args[i].Str, args[i+1]); replaced {
			s.heap.ReleaseValue(old)
		}
	}
	return m, nil
}

// push(v, x) appends x to the Vector v.
func builtinPush(_ context.Context, s *Session, args []Value) (Value, error) {
	if err := s.arity("push", args, 2); err != nil {
		return NilValue(), err
	}
	if err := s.expectKind("push", args[0], VKVector); err != nil {
		return NilValue(), err
	}
	s.heap.RetainValue(args[1])
	obj := s.heap.Get(args[0].H)
	obj.Vec = append(obj.Vec, args[1])
	return NilValue(), nil
}

// pop(v) removes and returns the last element of v.
func builtinPop(_ context.Context, s *Session, args []Value) (Value, error) {
	if err := s.arity("pop", args, 1); err != nil {
		return NilValue(), err
	}
	if err := s.expectKind("pop", args[0], VKVector); err != nil {
		return NilValue(), err
	}
	obj := s.heap.Get(args[0].H)
	if len(obj.Vec) == 0 {
		return NilValue(), s.errorf(PanicOutOfBounds, "pop from empty vector")
	}
	last := obj.Vec[len(obj.Vec)-1]
	obj.Vec[len(obj.Vec)-1] = Value{}
	obj.Vec = obj.Vec[:len(obj.Vec)-1]
	// ownership of the element moves to the caller
	return last, nil
}

// delete(m, key) removes a Map key; delete(v, i) removes a Vector element.
func builtinDelete(_ context.Context, s *Session, args []Value) (Value, error) {
	if err := s.arity("delete", args, 2); err != nil {
		return NilValue(), err
	}
	switch args[0].Kind {
	case VKMap, VKObject:
		if err := s.expectKind("delete key", args[1], VKString); err != nil {
			return NilValue(), err
		}
		if old, ok := s.heap.Get(args[0].H).Map.Delete(args[1].Str); ok {
			s.heap.ReleaseValue(old)
		}
		return NilValue(), nil
	case VKVector:
		obj := s.heap.Get(args[0].H)
		i, err := s.vectorIndex(args[1], len(obj.Vec))
		if err != nil {
			return NilValue(), err
		}
		old := obj.Vec[i]
		copy(obj.Vec[i:], obj.Vec[i+1:])
		obj.Vec[len(obj.Vec)-1] = Value{}
		obj.Vec = obj.Vec[:len(obj.Vec)-1]
		s.heap.ReleaseValue(old)
		return NilValue(), nil
	}
	return NilValue(), s.expectKind("delete", args[0], VKMap, VKVector)
}

func builtinLen(_ context.Context, s *Session, args []Value) (Value, error) {
	if err := s.arity("len", args, 1); err != nil {
		return NilValue(), err
	}
	n, err := s.length(args[0])
	if err != nil {
		return NilValue(), err
	}
	return IntValue(n), nil
}

// keys(m) returns the keys of a Map (or an object's attributes) in
// insertion order.
func builtinKeys(_ context.Context, s *Session, args []Value) (Value, error) {
	if err := s.arity("keys", args, 1); err != nil {
		return NilValue(), err
	}
	switch args[0].Kind {
	case VKMap, VKObject, VKClass, VKModule:
	default:
		return NilValue(), s.expectKind("keys", args[0], VKMap, VKObject)
	}
	keys := s.heap.Get(args[0].H).Map.Keys()
	elems := make([]Value, len(keys))
	for i, k := range keys {
		elems[i] = OwnedString(k)
	}
	return s.heap.NewVector(elems), nil
}

// has(m, key) reports whether a Map has key; for a Vector, whether it
// contains an equal element.
func builtinHas(_ context.Context, s *Session, args []Value) (Value, error) {
	if err := s.arity("has", args, 2); err != nil {
		return NilValue(), err
	}
	switch args[0].Kind {
	case VKMap, VKObject, VKClass, VKModule:
		if err := s.expectKind("has key", args[1], VKString); err != nil {
			return NilValue(), err
		}
		_, ok := s.heap.Get(args[0].H).Map.Get(args[1].Str)
		return BoolValue(ok), nil
	case VKVector:
		for _, e := range s.heap.Get(args[0].H).Vec {
			if equal(e, args[1]) {
				return BoolValue(true), nil
			}
		}
		return BoolValue(false), nil
	}
	return NilValue(), s.expectKind("has", args[0], VKMap, VKVector)
}

func builtinString(ctx context.Context, s *Session, args []Value) (Value, error) {
	if err := s.arity("string", args, 1); err != nil {
		return NilValue(), err
	}
	if args[0].Kind == VKString {
		return args[0], nil
	}
	str, err := s.ToString(ctx, args[0])
	if err != nil {
		return NilValue(), err
	}
	return OwnedString(str), nil
}

func builtinInt(_ context.Context, s *Session, args []Value) (Value, error) {
	if err := s.arity("int", args, 1); err != nil {
		return NilValue(), err
	}
	return s.ToInt(args[0])
}

func builtinFloat(_ context.Context, s *Session, args []Value) (Value, error) {
	if err := s.arity("float", args, 1); err != nil {
		return NilValue(), err
	}
	return s.ToFloat(args[0])
}

func builtinBool(_ context.Context, s *Session, args []Value) (Value, error) {
	if err := s.arity("bool", args, 1); err != nil {
		return NilValue(), err
	}
	return BoolValue(s.truthy(args[0])), nil
}

// type(v) returns the kind name of v; for objects, the class name.
func builtinType(_ context.Context, s *Session, args []Value) (Value, error) {
	if err := s.arity("type", args, 1); err != nil {
		return NilValue(), err
	}
	if args[0].Kind == VKObject {
		return OwnedString(s.heap.Get(args[0].H).Name), nil
	}
	return StringValue(args[0].Kind.String()), nil
}

func builtinClassOf(_ context.Context, s *Session, args []Value) (Value, error) {
	if err := s.arity("classof", args, 1); err != nil {
		return NilValue(), err
	}
	if err := s.expectKind("classof", args[0], VKObject); err != nil {
		return NilValue(), err
	}
	cls := s.heap.Get(args[0].H).Class
	if !s.heap.Alive(cls) {
		return NilValue(), nil
	}
	s.heap.Retain(cls)
	return handleValue(VKClass, cls), nil
}

// format("x={} y={}", x, y) substitutes "{}" placeholders in order; "{{"
// and "}}" are literal braces.
func builtinFormat(ctx context.Context, s *Session, args []Value) (Value, error) {
	if len(args) == 0 {
		return NilValue(), s.errorf(PanicArity, "format expects a format string")
	}
	if err := s.expectKind("format", args[0], VKString); err != nil {
		return NilValue(), err
	}
	tmpl := args[0].Str
	next := 1
	var sb strings.Builder
	for i := 0; i < len(tmpl); i++ {
		switch {
		case strings.HasPrefix(tmpl[i:], "{{"):
			sb.WriteByte('{')
			i++
		case strings.HasPrefix(tmpl[i:], "}}"):
			sb.WriteByte('}')
			i++
		case strings.HasPrefix(tmpl[i:], "{}"):
			if next >= len(args) {
				return NilValue(), s.errorf(PanicArity, "format: not enough arguments for %q", tmpl)
			}
			str, err := s.ToString(ctx, args[next])
			if err != nil {
				return NilValue(), err
			}
			sb.WriteString(str)
			next++
			i++
		default:
			sb.WriteByte(tmpl[i])
		}
	}
	if next < len(args) {
		return NilValue(), s.errorf(PanicArity, "format: %d unused argument(s)", len(args)-next)
	}
	return OwnedString(sb.String()), nil
}
