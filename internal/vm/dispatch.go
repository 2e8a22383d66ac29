package vm

import "context"

// dispatch performs recv.name(args...). args[0] is a free slot that
// receives the object for instance methods; the remaining args are owned.
func (s *Session) dispatch(ctx context.Context, recv Value, name string, args []Value) (Value, error) {
	switch recv.Kind {
	case VKObject:
		obj := s.heap.Get(recv.H)
		m, ok := s.objectAttr(obj, name)
		if !ok {
			s.heap.ReleaseValue(recv)
			s.releaseAll(args[1:])
			return NilValue(), s.errorf(PanicTypeMismatch, "object of class %s has no method '%s'", obj.Name, name)
		}
		if m.Kind != VKFunc {
			s.heap.ReleaseValue(recv)
			s.releaseAll(args[1:])
			return NilValue(), s.errorf(PanicNotCallable, "attribute '%s' of %s is a %s, not a function", name, obj.Name, m.Kind)
		}
		args[0] = recv
		return s.callFunction(ctx, m.Fn, args)

	case VKClass:
		cls := s.heap.Get(recv.H)
		m, ok := cls.Map.Get(name)
		if !ok && name == "new" {
			v, err := s.instantiate(ctx, recv.H, args)
			s.heap.ReleaseValue(recv)
			return v, err
		}
		if !ok {
			s.heap.ReleaseValue(recv)
			s.releaseAll(args[1:])
			return NilValue(), s.errorf(PanicTypeMismatch, "class %s has no function '%s'", cls.Name, name)
		}
		return s.callMember(ctx, recv, m, args)

	case VKModule:
		mod := s.heap.Get(recv.H)
		m, ok := mod.Map.Get(name)
		if !ok {
			s.heap.ReleaseValue(recv)
			s.releaseAll(args[1:])
			return NilValue(), s.errorf(PanicUnboundName, "module %s has no member '%s'", mod.Name, name)
		}
		return s.callMember(ctx, recv, m, args)

	case VKMap:
		m, ok := s.heap.Get(recv.H).Map.Get(name)
		if !ok {
			s.heap.ReleaseValue(recv)
			s.releaseAll(args[1:])
			return NilValue(), s.errorf(PanicTypeMismatch, "map has no function '%s'", name)
		}
		return s.callMember(ctx, recv, m, args)
	}
	s.heap.ReleaseValue(recv)
	s.releaseAll(args[1:])
	return NilValue(), s.errorf(PanicTypeMismatch, "cannot call method '%s' on a %s value", name, recv.Kind)
}

// callMember calls a function stored in a namespace without a receiver.
func (s *Session) callMember(ctx context.Context, recv, member Value, args []Value) (Value, error) {
	s.heap.RetainValue(member)
	s.heap.ReleaseValue(recv)
	return s.callValue(ctx, member, args[1:])
}

// instantiate implements Class.new(args...). args[0] is the free self slot.
func (s *Session) instantiate(ctx context.Context, class Handle, args []Value) (Value, error) {
	cls := s.heap.Get(class)
	h, obj := s.heap.Alloc(OKObject, cls.Name)
	obj.Class = class
	self := handleValue(VKObject, h)

	initFn, ok := cls.Map.Get("init")
	if !ok || initFn.Kind != VKFunc {
		if len(args) > 1 {
			s.releaseAll(args[1:])
			s.heap.ReleaseValue(self)
			return NilValue(), s.errorf(PanicArity, "class %s has no init and takes no arguments, got %d", cls.Name, len(args)-1)
		}
		return self, nil
	}
	s.heap.Retain(h)
	args[0] = self
	ret, err := s.callFunction(ctx, initFn.Fn, args)
	if err != nil {
		s.heap.ReleaseValue(self)
		return NilValue(), err
	}
	s.heap.ReleaseValue(ret)
	return self, nil
}

// objectAttr looks name up on the object, then on its class. The result is
// borrowed.
func (s *Session) objectAttr(obj *Object, name string) (Value, bool) {
	if v, ok := obj.Map.Get(name); ok {
		return v, true
	}
	if cls, ok := s.heap.Lookup(obj.Class); ok {
		return cls.Map.Get(name)
	}
	return Value{}, false
}
