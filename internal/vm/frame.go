package vm

// FrameKind selects which control signals a frame intercepts.
type FrameKind uint8

const (
	FrameRoot FrameKind = iota
	FrameFunction
	FrameFor
	FrameLoop
	FrameIf
	FrameModule
	FrameClass
)

func (k FrameKind) String() string {
	switch k {
	case FrameRoot:
		return "root"
	case FrameFunction:
		return "function"
	case FrameFor:
		return "for"
	case FrameLoop:
		return "loop"
	case FrameIf:
		return "if"
	case FrameModule:
		return "module"
	case FrameClass:
		return "class"
	}
	return "?"
}

type binding struct {
	name string
	val  Value
}

// Frame is one block scope. Module and class frames store their bindings in
// the namespace object instead of binds.
type Frame struct {
	Kind  FrameKind
	binds []binding
	ns    Handle
}

// find returns the index of the newest binding of name.
func (f *Frame) find(name string) int {
	for i := len(f.binds) - 1; i >= 0; i-- {
		if f.binds[i].name == name {
			return i
		}
	}
	return -1
}

// slot is a resolved binding location: a frame entry or a namespace key.
type slot struct {
	frame *Frame
	idx   int
	obj   *Object
	key   string
}

func (sl slot) get() Value {
	if sl.frame != nil {
		return sl.frame.binds[sl.idx].val
	}
	v, _ := sl.obj.Map.Get(sl.key)
	return v
}

// set stores v and returns the value it replaced; the caller releases it.
func (sl slot) set(v Value) Value {
	if sl.frame != nil {
		old := sl.frame.binds[sl.idx].val
		sl.frame.binds[sl.idx].val = v
		return old
	}
	old, _ := sl.obj.Map.Set(sl.key, v)
	return old
}

func (s *Session) pushFrame(kind FrameKind, ns Handle) *Frame {
	f := &Frame{Kind: kind, ns: ns}
	s.frames = append(s.frames, f)
	return f
}

// popFrame tears down the innermost frame, releasing its bindings newest
// first.
func (s *Session) popFrame() {
	n := len(s.frames)
	if n == 0 {
		return
	}
	f := s.frames[n-1]
	s.frames[n-1] = nil
	s.frames = s.frames[:n-1]
	for i := len(f.binds) - 1; i >= 0; i-- {
		s.heap.ReleaseValue(f.binds[i].val)
	}
	f.binds = nil
}

// popFramesTo unwinds until only n frames remain.
func (s *Session) popFramesTo(n int) {
	for len(s.frames) > n {
		s.popFrame()
	}
}

// lookupIn finds name in frame f.
func (s *Session) lookupIn(f *Frame, name string) (slot, bool) {
	if f.ns != 0 {
		if obj, ok := s.heap.Lookup(f.ns); ok {
			if _, ok := obj.Map.Get(name); ok {
				return slot{obj: obj, key: name}, true
			}
		}
		return slot{}, false
	}
	if i := f.find(name); i >= 0 {
		return slot{frame: f, idx: i}, true
	}
	return slot{}, false
}

// resolve finds the binding name refers to from the current position.
//
// Top-level code sees every active frame. A function body sees its own
// frames, the namespaces it was defined in, then the root frame.
func (s *Session) resolve(name string) (slot, bool) {
	lo := 0
	var act *activation
	if n := len(s.acts); n > 0 {
		act = &s.acts[n-1]
		lo = act.base
	}
	for i := len(s.frames) - 1; i >= lo; i-- {
		if sl, ok := s.lookupIn(s.frames[i], name); ok {
			return sl, true
		}
	}
	if act == nil {
		return slot{}, false
	}
	for _, h := range act.fn.Scope {
		obj, ok := s.heap.Lookup(h)
		if !ok {
			continue
		}
		if _, ok := obj.Map.Get(name); ok {
			return slot{obj: obj, key: name}, true
		}
	}
	if lo > 0 && len(s.frames) > 0 {
		return s.lookupIn(s.frames[0], name)
	}
	return slot{}, false
}

// declare binds name in the innermost frame, taking ownership of v.
func (s *Session) declare(name string, v Value) error {
	if name == globalsName {
		s.heap.ReleaseValue(v)
		return s.errorf(PanicReservedName, "'%s' cannot be rebound", globalsName)
	}
	f := s.frames[len(s.frames)-1]
	if s.tracer.enabled() {
		s.tracer.Bind(name, describe(v))
	}
	if f.ns != 0 {
		obj := s.heap.Get(f.ns)
		old, replaced := obj.Map.Set(name, v)
		if replaced {
			s.heap.ReleaseValue(old)
		}
		return nil
	}
	f.binds = append(f.binds, binding{name: name, val: v})
	return nil
}

// nsChain returns the namespaces enclosing the current position, innermost
// first. Function definitions capture it as their Scope.
func (s *Session) nsChain() []Handle {
	lo := 0
	var outer []Handle
	if n := len(s.acts); n > 0 {
		lo = s.acts[n-1].base
		outer = s.acts[n-1].fn.Scope
	}
	var out []Handle
	for i := len(s.frames) - 1; i >= lo; i-- {
		if s.frames[i].ns != 0 {
			out = append(out, s.frames[i].ns)
		}
	}
	return append(out, outer...)
}
