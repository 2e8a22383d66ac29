package vm

import (
	"fmt"
	"io"
	"strings"

	"lisle/internal/ast"
)

// Tracer writes an execution trace: one line per executed statement plus
// heap and call events.
//
//	[depth=1] line 4 Let
//	[heap] alloc vector#3
//	[call] f(2 args)
type Tracer struct {
	w     io.Writer
	lines []string // source text by line, optional
}

// NewTracer creates a tracer writing to w. lines, when given, are printed
// next to each executed statement.
func NewTracer(w io.Writer, lines []string) *Tracer {
	return &Tracer{w: w, lines: lines}
}

func (t *Tracer) enabled() bool { return t != nil && t.w != nil }

// Stmt traces execution of one statement.
func (t *Tracer) Stmt(depth int, st *ast.Stmt) {
	if !t.enabled() {
		return
	}
	text := ""
	if idx := int(st.Line) - 1; idx >= 0 && idx < len(t.lines) {
		text = "  " + strings.TrimSpace(t.lines[idx])
	}
	fmt.Fprintf(t.w, "[depth=%d] line %d %s%s\n", depth, st.Line, st.Kind, text)
}

// Bind traces a binding write.
func (t *Tracer) Bind(name string, v string) {
	if !t.enabled() {
		return
	}
	fmt.Fprintf(t.w, "    write %s = %s\n", name, v)
}

// Call traces entry into a user function.
func (t *Tracer) Call(fn *Function, argc int) {
	if !t.enabled() {
		return
	}
	fmt.Fprintf(t.w, "[call] %s(%d args)\n", fn.Name, argc)
}

// HostCall traces a call resolved outside the program.
func (t *Tracer) HostCall(name string, argc int) {
	if !t.enabled() {
		return
	}
	fmt.Fprintf(t.w, "[host] %s(%d args)\n", name, argc)
}

// HeapAlloc traces an allocation.
func (t *Tracer) HeapAlloc(h Handle, obj *Object) {
	if !t.enabled() {
		return
	}
	if obj.Name != "" {
		fmt.Fprintf(t.w, "[heap] alloc %s#%d %s\n", obj.Kind, h, obj.Name)
		return
	}
	fmt.Fprintf(t.w, "[heap] alloc %s#%d\n", obj.Kind, h)
}

// HeapFree traces a deallocation.
func (t *Tracer) HeapFree(h Handle, obj *Object) {
	if !t.enabled() {
		return
	}
	fmt.Fprintf(t.w, "[heap] free %s#%d\n", obj.Kind, h)
}
