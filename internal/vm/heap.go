package vm

import (
	"fmt"
	"sort"

	"lisle/internal/trace"
)

// Heap stores all reference-counted runtime objects of a session.
// Handles are monotonically increasing and never reused: a handle below the
// allocation watermark that is missing from objs has been freed, which is
// how use-after-free is told apart from a bogus handle.
type Heap struct {
	next        Handle
	nextAllocID uint64
	objs        map[Handle]*Object
	live        int

	trace  *Tracer
	events trace.Tracer // node-scope alloc/free events, nil when off
	span   uint64
}

// NewHeap returns an empty heap.
func NewHeap() *Heap {
	h := &Heap{}
	h.initIfNeeded()
	return h
}

func (h *Heap) initIfNeeded() {
	if h.objs == nil {
		h.objs = make(map[Handle]*Object, 128)
	}
	if h.next == 0 {
		h.next = 1
	}
	if h.nextAllocID == 0 {
		h.nextAllocID = 1
	}
}

// Alloc creates an object with a reference count of one.
func (h *Heap) Alloc(kind ObjectKind, name string) (Handle, *Object) {
	h.initIfNeeded()
	handle := h.next
	h.next++
	allocID := h.nextAllocID
	h.nextAllocID++
	obj := &Object{
		Kind:     kind,
		Alive:    true,
		AllocID:  allocID,
		RefCount: 1,
		Name:     name,
	}
	if kind != OKVector {
		obj.Map = NewOrderedMap()
	}
	h.objs[handle] = obj
	h.live++
	h.trace.HeapAlloc(handle, obj)
	if h.events != nil {
		trace.Point(h.events, trace.ScopeNode, "alloc", fmt.Sprintf("%s#%d", kind, handle), h.span)
	}
	return handle, obj
}

// NewVector allocates a Vector owning elems and returns an owned Value.
func (h *Heap) NewVector(elems []Value) Value {
	handle, obj := h.Alloc(OKVector, "")
	obj.Vec = elems
	return handleValue(VKVector, handle)
}

// NewMap allocates an empty Map and returns an owned Value.
func (h *Heap) NewMap() Value {
	handle, _ := h.Alloc(OKMap, "")
	return handleValue(VKMap, handle)
}

// Get returns the live object behind handle. Invalid or freed handles panic
// with a *VMError.
func (h *Heap) Get(handle Handle) *Object {
	obj, ok := h.objs[handle]
	if !ok || obj == nil {
		if h.wasFreed(handle) {
			panic(newVMError(PanicUseAfterFree, fmt.Sprintf("use after free: handle %d", handle)))
		}
		panic(newVMError(PanicInvalidHandle, fmt.Sprintf("invalid handle %d", handle)))
	}
	return obj
}

func (h *Heap) wasFreed(handle Handle) bool {
	return handle > 0 && handle < h.next
}

// Lookup returns the object behind handle if it is still alive.
func (h *Heap) Lookup(handle Handle) (*Object, bool) {
	obj, ok := h.objs[handle]
	if !ok || obj == nil {
		return nil, false
	}
	return obj, true
}

// Retain increments the reference count of handle.
func (h *Heap) Retain(handle Handle) {
	obj := h.Get(handle)
	obj.RefCount++
}

// Release decrements the reference count of handle and frees the object,
// recursively releasing everything it contains, when the count drops to
// zero. Releasing a dead object panics with a double-free *VMError.
func (h *Heap) Release(handle Handle) {
	obj, ok := h.objs[handle]
	if !ok || obj == nil {
		if h.wasFreed(handle) {
			panic(newVMError(PanicDoubleFree, fmt.Sprintf("double release: handle %d", handle)))
		}
		panic(newVMError(PanicInvalidHandle, fmt.Sprintf("invalid handle %d", handle)))
	}
	if obj.RefCount <= 0 {
		panic(newVMError(PanicRefcountUnderflow, fmt.Sprintf("refcount underflow: %s#%d", obj.Kind, handle)))
	}
	obj.RefCount--
	if obj.RefCount > 0 {
		return
	}

	// worklist instead of recursion: nested vectors may be deep
	work := []Handle{handle}
	for len(work) > 0 {
		cur := work[len(work)-1]
		work = work[:len(work)-1]
		o := h.objs[cur]
		children := h.free(cur, o)
		for _, v := range children {
			if !v.IsHeap() {
				continue
			}
			child, ok := h.objs[v.H]
			if !ok || child == nil {
				panic(newVMError(PanicDoubleFree, fmt.Sprintf("double release: handle %d", v.H)))
			}
			child.RefCount--
			if child.RefCount == 0 {
				work = append(work, v.H)
			}
		}
	}
}

// free marks o dead, drops it from the heap and returns the values it owned.
func (h *Heap) free(handle Handle, o *Object) []Value {
	var owned []Value
	switch o.Kind {
	case OKVector:
		owned = o.Vec
		o.Vec = nil
	default:
		owned = o.Map.drain()
	}
	o.Alive = false
	delete(h.objs, handle)
	h.live--
	h.trace.HeapFree(handle, o)
	if h.events != nil {
		trace.Point(h.events, trace.ScopeNode, "free", fmt.Sprintf("%s#%d", o.Kind, handle), h.span)
	}
	return owned
}

// RetainValue retains v if it is a collection.
func (h *Heap) RetainValue(v Value) {
	if v.IsHeap() {
		h.Retain(v.H)
	}
}

// ReleaseValue releases v if it is a collection.
func (h *Heap) ReleaseValue(v Value) {
	if v.IsHeap() {
		h.Release(v.H)
	}
}

// RefCount returns the current count of handle, or 0 for dead handles.
func (h *Heap) RefCount(handle Handle) int32 {
	obj, ok := h.Lookup(handle)
	if !ok {
		return 0
	}
	return obj.RefCount
}

// Alive reports whether handle refers to a live object.
func (h *Heap) Alive(handle Handle) bool {
	_, ok := h.Lookup(handle)
	return ok
}

// Live returns the number of live objects.
func (h *Heap) Live() int { return h.live }

// Tracked returns how many objects the heap still holds entries for. It
// equals Live unless the bookkeeping is broken.
func (h *Heap) Tracked() int { return len(h.objs) }

// Leak describes an object still alive when a session ends.
type Leak struct {
	Handle   Handle
	Kind     ObjectKind
	Name     string
	RefCount int32
	AllocID  uint64
}

func (l Leak) String() string {
	name := ""
	if l.Name != "" {
		name = " " + l.Name
	}
	return fmt.Sprintf("%s#%d%s rc=%d alloc=%d", l.Kind, l.Handle, name, l.RefCount, l.AllocID)
}

// Leaks lists live objects ordered by allocation.
func (h *Heap) Leaks() []Leak {
	var out []Leak
	for handle, obj := range h.objs {
		if obj == nil {
			continue
		}
		out = append(out, Leak{
			Handle:   handle,
			Kind:     obj.Kind,
			Name:     obj.Name,
			RefCount: obj.RefCount,
			AllocID:  obj.AllocID,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AllocID < out[j].AllocID })
	return out
}
