package vm

import (
	"errors"
	"testing"
)

func expectVMPanic(t *testing.T, code PanicCode, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		rec := recover()
		err, ok := rec.(error)
		if !ok {
			t.Fatalf("expected %s panic, got %v", code, rec)
		}
		var vmErr *VMError
		if !errors.As(err, &vmErr) || vmErr.Code != code {
			t.Fatalf("expected %s, got %v", code, rec)
		}
	}()
	fn()
}

func TestHeapRetainRelease(t *testing.T) {
	h := NewHeap()
	v := h.NewVector(nil)
	h.Retain(v.H)
	if got := h.RefCount(v.H); got != 2 {
		t.Fatalf("refcount = %d, want 2", got)
	}
	h.Release(v.H)
	if !h.Alive(v.H) {
		t.Fatal("object freed too early")
	}
	h.Release(v.H)
	if h.Alive(v.H) {
		t.Fatal("object still alive")
	}
	if h.Live() != 0 {
		t.Fatalf("live = %d", h.Live())
	}
}

func TestHeapIntegrityPanics(t *testing.T) {
	h := NewHeap()
	v := h.NewVector(nil)
	h.Release(v.H)

	expectVMPanic(t, PanicDoubleFree, func() { h.Release(v.H) })
	expectVMPanic(t, PanicUseAfterFree, func() { h.Get(v.H) })
	expectVMPanic(t, PanicInvalidHandle, func() { h.Get(999) })
}

func TestHeapRecursiveFree(t *testing.T) {
	h := NewHeap()
	inner := h.NewMap()
	leaf := h.NewVector([]Value{IntValue(1), OwnedString("x")})
	h.Get(inner.H).Map.Set("leaf", leaf)
	outer := h.NewVector([]Value{inner})

	if h.Live() != 3 {
		t.Fatalf("live = %d, want 3", h.Live())
	}
	h.ReleaseValue(outer)
	if h.Live() != 0 {
		t.Fatalf("live = %d after release, want 0", h.Live())
	}
	for _, handle := range []Handle{outer.H, inner.H, leaf.H} {
		if h.Alive(handle) {
			t.Errorf("handle %d still alive", handle)
		}
	}
}

func TestHeapSharedChildSurvives(t *testing.T) {
	h := NewHeap()
	child := h.NewMap()
	h.RetainValue(child)
	a := h.NewVector([]Value{child})
	h.ReleaseValue(a)
	if !h.Alive(child.H) || h.RefCount(child.H) != 1 {
		t.Fatalf("child alive=%v rc=%d", h.Alive(child.H), h.RefCount(child.H))
	}
	h.ReleaseValue(child)
}

func TestHeapLeaksOrdered(t *testing.T) {
	h := NewHeap()
	a := h.NewVector(nil)
	h.Alloc(OKClass, "Point")
	b := h.NewMap()
	h.ReleaseValue(a)

	leaks := h.Leaks()
	if len(leaks) != 2 {
		t.Fatalf("leaks = %v", leaks)
	}
	if leaks[0].Kind != OKClass || leaks[0].Name != "Point" || leaks[1].Handle != b.H {
		t.Fatalf("unexpected leaks: %v", leaks)
	}
}

func TestHandlesAreNotReused(t *testing.T) {
	h := NewHeap()
	a := h.NewVector(nil)
	h.ReleaseValue(a)
	b := h.NewVector(nil)
	if a.H == b.H {
		t.Fatalf("handle %d reused", a.H)
	}
}

func TestOrderedMap(t *testing.T) {
	m := NewOrderedMap()
	m.Set("b", IntValue(1))
	m.Set("a", IntValue(2))
	if old, replaced := m.Set("b", IntValue(3)); !replaced || old.Int != 1 {
		t.Fatalf("replace: %v %v", old, replaced)
	}
	if _, ok := m.Delete("a"); !ok {
		t.Fatal("delete a")
	}
	m.Set("c", IntValue(4))
	keys := m.Keys()
	if len(keys) != 2 || keys[0] != "b" || keys[1] != "c" {
		t.Fatalf("keys = %v", keys)
	}
	if v, ok := m.Get("c"); !ok || v.Int != 4 {
		t.Fatalf("get c = %v %v", v, ok)
	}
}

func TestHeapDropsFreedObjects(t *testing.T) {
	h := NewHeap()
	keep := h.NewMap()
	for i := 0; i < 10000; i++ {
		m := h.NewMap()
		h.Get(m.H).Map.Set("k", IntValue(int32(i)))
		v := h.NewVector([]Value{IntValue(int32(i)), m})
		h.ReleaseValue(v)
	}
	if h.Live() != 1 || h.Tracked() != 1 {
		t.Fatalf("live = %d, tracked = %d, want 1/1", h.Live(), h.Tracked())
	}
	h.ReleaseValue(keep)
	if h.Tracked() != 0 {
		t.Fatalf("tracked = %d after last release", h.Tracked())
	}
}

func TestFreedMapDropsIndex(t *testing.T) {
	m := NewOrderedMap()
	m.Set("a", IntValue(1))
	if got := m.drain(); len(got) != 1 || m.index != nil || m.Len() != 0 {
		t.Fatalf("drain = %v, index = %v", got, m.index)
	}
	// a drained map is still usable
	m.Set("b", IntValue(2))
	if v, ok := m.Get("b"); !ok || v.Int != 2 {
		t.Fatalf("get after drain = %v, %v", v, ok)
	}
}
