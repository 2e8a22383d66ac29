package vm

// Handle addresses an object in the Heap. Handles are never reused within a
// session.
type Handle uint32

// ObjectKind is the kind of a heap object.
type ObjectKind uint8

const (
	OKVector ObjectKind = iota + 1
	OKMap
	OKClass
	OKObject
	OKModule
)

func (k ObjectKind) String() string {
	switch k {
	case OKVector:
		return "vector"
	case OKMap:
		return "map"
	case OKClass:
		return "class"
	case OKObject:
		return "object"
	case OKModule:
		return "module"
	default:
		return "?"
	}
}

// valueKind returns the Value tag used to refer to objects of kind k.
func (k ObjectKind) valueKind() ValueKind {
	switch k {
	case OKVector:
		return VKVector
	case OKMap:
		return VKMap
	case OKClass:
		return VKClass
	case OKObject:
		return VKObject
	case OKModule:
		return VKModule
	}
	return VKNil
}

// Object is a reference-counted heap cell.
//
// Vectors use Vec. Maps, classes, objects and modules use Map. An Object
// keeps a non-owning Class back reference.
type Object struct {
	Kind     ObjectKind
	Alive    bool
	AllocID  uint64
	RefCount int32
	Name     string // class or module name
	Vec      []Value
	Map      *OrderedMap
	Class    Handle
}

type mapEntry struct {
	Key   string
	Value Value
}

// OrderedMap is a string-keyed map preserving insertion order.
type OrderedMap struct {
	entries []mapEntry
	index   map[string]int
}

// NewOrderedMap returns an empty map.
func NewOrderedMap() *OrderedMap {
	return &OrderedMap{index: make(map[string]int)}
}

// Len returns the number of keys.
func (m *OrderedMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

// Get returns the value stored under key.
func (m *OrderedMap) Get(key string) (Value, bool) {
	if m == nil {
		return Value{}, false
	}
	i, ok := m.index[key]
	if !ok {
		return Value{}, false
	}
	return m.entries[i].Value, true
}

// Set stores v under key and returns the previous value, if any. Ownership
// of v moves into the map; ownership of the returned value moves to the
// caller.
func (m *OrderedMap) Set(key string, v Value) (Value, bool) {
	if i, ok := m.index[key]; ok {
		old := m.entries[i].Value
		m.entries[i].Value = v
		return old, true
	}
	if m.index == nil {
		m.index = make(map[string]int)
	}
	m.index[key] = len(m.entries)
	m.entries = append(m.entries, mapEntry{Key: key, Value: v})
	return Value{}, false
}

// Delete removes key and returns its value.
func (m *OrderedMap) Delete(key string) (Value, bool) {
	i, ok := m.index[key]
	if !ok {
		return Value{}, false
	}
	old := m.entries[i].Value
	copy(m.entries[i:], m.entries[i+1:])
	m.entries = m.entries[:len(m.entries)-1]
	delete(m.index, key)
	for j := i; j < len(m.entries); j++ {
		m.index[m.entries[j].Key] = j
	}
	return old, true
}

// Keys returns the keys in insertion order.
func (m *OrderedMap) Keys() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.Key
	}
	return out
}

// Each calls fn for every entry in insertion order.
func (m *OrderedMap) Each(fn func(key string, v Value)) {
	if m == nil {
		return
	}
	for _, e := range m.entries {
		fn(e.Key, e.Value)
	}
}

// drain empties the map and returns its values in insertion order.
func (m *OrderedMap) drain() []Value {
	if m == nil {
		return nil
	}
	out := make([]Value, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.Value
	}
	m.entries = nil
	m.index = nil
	return out
}
