package vm

import (
	"unicode/utf8"

	"fortio.org/safecast"
)

// getAttr evaluates recv.name. recv is borrowed; the result is owned.
//
// Objects fall back to their class. Unknown keys on objects, classes and
// maps read as Nil; an unknown module member is a NameError.
func (s *Session) getAttr(recv Value, name string) (Value, error) {
	var (
		v  Value
		ok bool
	)
	switch recv.Kind {
	case VKObject:
		v, ok = s.objectAttr(s.heap.Get(recv.H), name)
	case VKClass, VKMap:
		v, ok = s.heap.Get(recv.H).Map.Get(name)
	case VKModule:
		mod := s.heap.Get(recv.H)
		if v, ok = mod.Map.Get(name); !ok {
			return NilValue(), s.errorf(PanicUnboundName, "module %s has no member '%s'", mod.Name, name)
		}
	default:
		return NilValue(), s.errorf(PanicTypeMismatch, "cannot read attribute '%s' of a %s value", name, recv.Kind)
	}
	if !ok {
		return NilValue(), nil
	}
	s.heap.RetainValue(v)
	return v, nil
}

// setAttr performs recv.name = v. Ownership of v moves into the receiver.
// Writes through an object never touch its class.
func (s *Session) setAttr(recv Value, name string, v Value) error {
	switch recv.Kind {
	case VKObject, VKClass, VKMap, VKModule:
		if recv.H == s.globals && name == globalsName {
			s.heap.ReleaseValue(v)
			return s.errorf(PanicReservedName, "'%s' cannot be rebound", globalsName)
		}
		old, replaced := s.heap.Get(recv.H).Map.Set(name, v)
		if replaced {
			s.heap.ReleaseValue(old)
		}
		return nil
	}
	s.heap.ReleaseValue(v)
	return s.errorf(PanicTypeMismatch, "cannot set attribute '%s' on a %s value", name, recv.Kind)
}

// vectorIndex validates key as a position in a sequence of length n.
func (s *Session) vectorIndex(key Value, n int) (int, error) {
	if key.Kind != VKInt {
		return 0, s.errorf(PanicTypeMismatch, "index must be int, got %s", key.Kind)
	}
	i := int(key.Int)
	if i < 0 || i >= n {
		return 0, s.errorf(PanicOutOfBounds, "index %d out of range [0, %d)", key.Int, n)
	}
	return i, nil
}

// index evaluates recv[key]; both are borrowed.
func (s *Session) index(recv, key Value) (Value, error) {
	switch recv.Kind {
	case VKVector:
		obj := s.heap.Get(recv.H)
		i, err := s.vectorIndex(key, len(obj.Vec))
		if err != nil {
			return NilValue(), err
		}
		v := obj.Vec[i]
		s.heap.RetainValue(v)
		return v, nil

	case VKMap:
		if key.Kind != VKString {
			return NilValue(), s.errorf(PanicTypeMismatch, "map key must be string, got %s", key.Kind)
		}
		v, ok := s.heap.Get(recv.H).Map.Get(key.Str)
		if !ok {
			return NilValue(), nil
		}
		s.heap.RetainValue(v)
		return v, nil

	case VKString:
		n := utf8.RuneCountInString(recv.Str)
		i, err := s.vectorIndex(key, n)
		if err != nil {
			return NilValue(), err
		}
		for _, r := range recv.Str {
			if i == 0 {
				return OwnedString(string(r)), nil
			}
			i--
		}
	}
	return NilValue(), s.errorf(PanicTypeMismatch, "cannot index a %s value", recv.Kind)
}

// setIndex performs recv[key] = v. Ownership of v moves into recv.
func (s *Session) setIndex(recv, key, v Value) error {
	switch recv.Kind {
	case VKVector:
		obj := s.heap.Get(recv.H)
		i, err := s.vectorIndex(key, len(obj.Vec))
		if err != nil {
			s.heap.ReleaseValue(v)
			return err
		}
		old := obj.Vec[i]
		obj.Vec[i] = v
		s.heap.ReleaseValue(old)
		return nil

	case VKMap:
		if key.Kind != VKString {
			s.heap.ReleaseValue(v)
			return s.errorf(PanicTypeMismatch, "map key must be string, got %s", key.Kind)
		}
		old, replaced := s.heap.Get(recv.H).Map.Set(key.Str, v)
		if replaced {
			s.heap.ReleaseValue(old)
		}
		return nil
	}
	s.heap.ReleaseValue(v)
	return s.errorf(PanicTypeMismatch, "cannot assign by index into a %s value", recv.Kind)
}

// length implements len() for strings and collections.
func (s *Session) length(v Value) (int32, error) {
	var n int
	switch v.Kind {
	case VKString:
		n = utf8.RuneCountInString(v.Str)
	case VKVector:
		n = len(s.heap.Get(v.H).Vec)
	case VKMap, VKObject, VKClass, VKModule:
		n = s.heap.Get(v.H).Map.Len()
	default:
		return 0, s.errorf(PanicTypeMismatch, "len of a %s value", v.Kind)
	}
	out, err := safecast.Conv[int32](n)
	if err != nil {
		return 0, s.errorf(PanicOutOfBounds, "length %d does not fit an int", n)
	}
	return out, nil
}
