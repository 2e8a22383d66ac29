package vm

import (
	"fmt"

	"lisle/internal/ast"
)

// ValueKind is the runtime tag of a Value.
type ValueKind uint8

const (
	VKNil ValueKind = iota
	VKInt
	VKFloat
	VKBool
	VKString
	VKVector
	VKMap
	VKClass
	VKObject
	VKFunc
	VKModule
)

func (k ValueKind) String() string {
	switch k {
	case VKNil:
		return "nil"
	case VKInt:
		return "int"
	case VKFloat:
		return "float"
	case VKBool:
		return "bool"
	case VKString:
		return "string"
	case VKVector:
		return "vector"
	case VKMap:
		return "map"
	case VKClass:
		return "class"
	case VKObject:
		return "object"
	case VKFunc:
		return "function"
	case VKModule:
		return "module"
	default:
		return fmt.Sprintf("kind(%d)", k)
	}
}

// Value is a tagged runtime value. Scalars (Nil, Int, Float, Bool, String,
// Func) are copied by value; collections are handles into the Heap and
// participate in reference counting.
type Value struct {
	Kind  ValueKind
	Int   int32
	Float float32
	Bool  bool
	Str   string
	// Owned marks a string built at runtime rather than taken from a literal.
	Owned bool
	H     Handle
	Fn    *Function
}

// IsHeap reports whether v refers to a heap object.
func (v Value) IsHeap() bool {
	switch v.Kind {
	case VKVector, VKMap, VKClass, VKObject, VKModule:
		return true
	}
	return false
}

// IsNumber reports whether v is an Int or a Float.
func (v Value) IsNumber() bool { return v.Kind == VKInt || v.Kind == VKFloat }

// NilValue returns the Nil value.
func NilValue() Value { return Value{Kind: VKNil} }

// IntValue returns an Integer.
func IntValue(n int32) Value { return Value{Kind: VKInt, Int: n} }

// FloatValue returns a Float.
func FloatValue(f float32) Value { return Value{Kind: VKFloat, Float: f} }

// BoolValue returns a Boolean.
func BoolValue(b bool) Value { return Value{Kind: VKBool, Bool: b} }

// StringValue returns a literal String.
func StringValue(s string) Value { return Value{Kind: VKString, Str: s} }

// OwnedString returns a runtime-built String.
func OwnedString(s string) Value { return Value{Kind: VKString, Str: s, Owned: true} }

// FuncValue wraps a function definition.
func FuncValue(fn *Function) Value { return Value{Kind: VKFunc, Fn: fn} }

func handleValue(kind ValueKind, h Handle) Value { return Value{Kind: kind, H: h} }

// asFloat widens a numeric value.
func (v Value) asFloat() float32 {
	if v.Kind == VKInt {
		return float32(v.Int)
	}
	return v.Float
}

// Function is a user-defined function. Scope lists the namespaces (module or
// class objects) the definition was nested in, innermost first; these are
// non-owning references.
type Function struct {
	Name     string
	Params   []string
	Variadic bool
	Start    int // first body statement
	End      int // index of the closing 'end'
	Line     uint32
	Scope    []Handle
	Prog     *ast.Program
}

func (fn *Function) String() string {
	if fn == nil {
		return "<fn ?>"
	}
	return "<fn " + fn.Name + ">"
}
