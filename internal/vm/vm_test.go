package vm_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"lisle/internal/diag"
	"lisle/internal/trace"
	"lisle/internal/vm"
)

func TestSharedMapThroughVector(t *testing.T) {
	out := mustRun(t, `
var m = map()
let m.k = 1
var v = vec()
push(v, m)
delete(m, "k")
print(string(v))
`)
	if out != "[{}]\n" {
		t.Fatalf("got %q, want %q", out, "[{}]\n")
	}
}

func TestScalarArgumentIsCopied(t *testing.T) {
	out := mustRun(t, `
fn f(x)
    let x = x + 1
    return x
end
var a = 5
var b = f(a)
print(a, b)
`)
	if out != "5 6\n" {
		t.Fatalf("got %q, want %q", out, "5 6\n")
	}
}

func TestForTripCount(t *testing.T) {
	tests := []struct {
		from, to, step string
		want           int
	}{
		{"1", "10", "1", 10},
		{"1", "10", "3", 4},
		{"10", "1", "-1", 10},
		{"10", "1", "-3", 4},
		{"1", "10", "-1", 0},
		{"10", "1", "1", 0},
		{"0", "0", "1", 1},
		{"1", "2", "5", 1},
		{"0.0", "1.0", "0.25", 5},
		{"0", "1", "0.5", 3},
		{"0", "1", "0.1", 11},
		{"0.0", "0.3", "0.1", 4},
		{"1", "0", "-0.1", 10},
	}
	for _, tt := range tests {
		name := fmt.Sprintf("%s_to_%s_step_%s", tt.from, tt.to, tt.step)
		t.Run(name, func(t *testing.T) {
			src := fmt.Sprintf(`
var n = 0
for i = %s to %s step %s
    let n = n + 1
end
print(n)
`, tt.from, tt.to, tt.step)
			out := mustRun(t, src)
			if want := fmt.Sprintf("%d\n", tt.want); out != want {
				t.Fatalf("got %q, want %q", out, want)
			}
		})
	}
}

func TestForDefaultStepAndIndexValues(t *testing.T) {
	out := mustRun(t, `
var v = vec()
for i = 1 to 3
    push(v, i)
end
for x = 0.5 to 1.5
    push(v, x)
end
print(v)
`)
	if out != "[1, 2, 3, 0.5, 1.5]\n" {
		t.Fatalf("got %q", out)
	}
}

func TestBreakInNestedIfLeavesOnlyFor(t *testing.T) {
	out := mustRun(t, `
var outer = 0
var inner = 0
loop
    let outer = outer + 1
    for i = 1 to 10
        if i == 3
            if true
                break
            end
        end
        let inner = inner + 1
    end
    if outer == 2
        break
    end
end
print(outer, inner)
`)
	if out != "2 4\n" {
		t.Fatalf("got %q, want %q", out, "2 4\n")
	}
}

func TestIfElifElse(t *testing.T) {
	out := mustRun(t, `
fn grade(n)
    if n >= 90
        return "A"
    elif n >= 50
        return "B"
    else
        return "C"
    end
end
print(grade(95), grade(60), grade(10))
`)
	if out != "A B C\n" {
		t.Fatalf("got %q", out)
	}
}

func TestClassVariableSharedInstanceAttributeNot(t *testing.T) {
	out := mustRun(t, `
class Counter
    var count = 0
    fn init(self, name)
        let self.name = name
    end
end
var a = Counter.new("a")
var b = Counter.new("b")
let classof(a).count = 5
print(a.count, b.count)
let a.count = 9
print(a.count, b.count, Counter.count)
print(a.name, b.name, a.missing)
`)
	want := "5 5\n9 5 5\na b nil\n"
	if out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestMethodsAndToString(t *testing.T) {
	out := mustRun(t, `
class Point
    fn init(self, x, y)
        let self.x = x
        let self.y = y
    end
    fn sum(self)
        return self.x + self.y
    end
    fn to_string(self)
        return format("P({}, {})", self.x, self.y)
    end
end
class Bare
end
var p = Point.new(3, 4)
print(p.sum())
print(p)
print(vec(p, "s", 1.5, nil, true))
var b = Bare.new()
let b.tag = "t"
print(b, Point, type(p), type(b), type(1))
`)
	want := "7\nP(3, 4)\n[P(3, 4), \"s\", 1.5, nil, true]\n{tag: \"t\"} <class Point> Point Bare int\n"
	if out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestModules(t *testing.T) {
	out := mustRun(t, `
module geo
    var unit = 10
    fn area(w, h)
        return w * h * unit
    end
    module inner
        fn twice(x)
            return x * 2
        end
    end
end
print(geo.area(2, 3), geo.inner.twice(4), geo.unit, geo)
`)
	if out != "60 8 10 <module geo>\n" {
		t.Fatalf("got %q", out)
	}
}

func TestGlobalsVisibleFromFunctions(t *testing.T) {
	out := mustRun(t, `
fn setg()
    let globals.count = 7
end
setg()
print(globals.count)
`)
	if out != "7\n" {
		t.Fatalf("got %q", out)
	}
}

func TestFunctionsDoNotSeeCallerLocals(t *testing.T) {
	res := runSource(t, `
fn peek()
    return hidden
end
fn outer()
    var hidden = 1
    return peek()
end
outer()
`, vm.Options{})
	if diag.KindOf(res.err) != diag.KindName {
		t.Fatalf("want NameError, got %v", res.err)
	}
}

func TestVariadicTail(t *testing.T) {
	out := mustRun(t, `
fn count(first, ...)
    return len(args)
end
print(count(1, 2, 3), count(1))
`)
	if out != "2 0\n" {
		t.Fatalf("got %q", out)
	}
}

func TestCoercions(t *testing.T) {
	out := mustRun(t, `
print(string(1.0), int("0x10"), int(" -7 "), float("2.5"), bool(""), bool(vec(1)))
print(int(3.9), int(true), float(2), 7 / 2, 7.0 / 2, 7 % 3)
print(2147483647 + 1, "ab" * 3, "x" + "y", 1 == 1.0, "a" < "b")
`)
	want := "1.0 16 -7 2.5 false true\n3 1 2.0 3 3.5 1\n-2147483648 ababab xy true true\n"
	if out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestCollectionsBuiltins(t *testing.T) {
	out := mustRun(t, `
var m = map("a", 1, "b", 2)
let m["c"] = 3
delete(m, "a")
print(keys(m), has(m, "b"), has(m, "a"), len(m), m["zz"])
var v = vec(1, 2, 3)
let v[0] = 10
print(pop(v), v, len(v), has(v, 10))
delete(v, 0)
print(v, len("héllo"), "héllo"[1])
`)
	want := "[\"b\", \"c\"] true false 2 nil\n3 [10, 2] 2 true\n[2] 5 é\n"
	if out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestRuntimeErrorKinds(t *testing.T) {
	tests := []struct {
		name string
		src  string
		kind diag.Kind
	}{
		{"unbound read", "print(x)", diag.KindName},
		{"let unbound", "let y = 1", diag.KindName},
		{"rebind globals", "var globals = 1", diag.KindName},
		{"vector index", "var v = vec()\nprint(v[3])", diag.KindIndex},
		{"pop empty", "pop(vec())", diag.KindIndex},
		{"division", "print(1 / 0)", diag.KindArithmetic},
		{"modulo", "print(1.5 % 0)", diag.KindArithmetic},
		{"int conversion", `print(int("12x"))`, diag.KindConversion},
		{"float conversion", `print(float("abc"))`, diag.KindConversion},
		{"add string", `print(1 + "a")`, diag.KindType},
		{"index scalar", "var x = 5\nprint(x[0])", diag.KindType},
		{"zero step", "for i = 1 to 5 step 0\nend", diag.KindType},
		{"arity", "fn f(a)\nend\nf(1, 2)", diag.KindType},
		{"not callable", "var x = 1\nx()", diag.KindType},
		{"unknown host fn", "nosuch(1)", diag.KindHost},
		{"missing module member", "module m\nend\nm.f()", diag.KindName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := runSource(t, tt.src, vm.Options{})
			if res.err == nil {
				t.Fatalf("expected %s, got success", tt.kind)
			}
			if got := diag.KindOf(res.err); got != tt.kind {
				t.Fatalf("kind = %s, want %s (err: %v)", got, tt.kind, res.err)
			}
		})
	}
}

func TestRuntimeErrorLocation(t *testing.T) {
	res := runSource(t, `
fn div(a, b)
    return a / b
end
var x = div(4, 0)
`, vm.Options{})
	var vmErr *vm.VMError
	if !errors.As(res.err, &vmErr) {
		t.Fatalf("want *vm.VMError, got %v", res.err)
	}
	if vmErr.Code != vm.PanicDivisionByZero || vmErr.Line != 2 || vmErr.Stmt != "Return" {
		t.Fatalf("unexpected error: %+v", vmErr)
	}
	if len(vmErr.Backtrace) != 2 || vmErr.Backtrace[0].FuncName != "div" || vmErr.Backtrace[1].Line != 4 {
		t.Fatalf("unexpected backtrace: %+v", vmErr.Backtrace)
	}
	if !strings.Contains(vmErr.Format(), "panic VM2401") {
		t.Fatalf("format: %s", vmErr.Format())
	}
}

func TestCallDepthLimit(t *testing.T) {
	res := runSource(t, `
fn r(n)
    return r(n + 1)
end
r(0)
`, vm.Options{MaxCallDepth: 16})
	if diag.KindOf(res.err) != diag.KindControlFlow {
		t.Fatalf("want ControlFlowError, got %v", res.err)
	}
}

func TestCancellation(t *testing.T) {
	prog := compileSource(t, "loop\nend")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := vm.NewSession(vm.Options{Host: vm.NewTestHost("")})
	err := s.Run(ctx, prog)
	if diag.KindOf(err) != diag.KindHost || !errors.Is(err, context.Canceled) {
		t.Fatalf("want canceled HostError, got %v", err)
	}
}

func TestExit(t *testing.T) {
	res := runSource(t, "print(1)\nexit(3)\nprint(2)", vm.Options{})
	if res.err != nil {
		t.Fatal(res.err)
	}
	if res.out != "1\n" {
		t.Fatalf("got %q", res.out)
	}
	if code, ok := res.session.ExitCode(); !ok || code != 3 {
		t.Fatalf("exit code = %d, %v", code, ok)
	}
}

func TestInput(t *testing.T) {
	prog := compileSource(t, `
var name = input("who? ")
print("hi", name)
`)
	host := vm.NewTestHost("ann\n")
	s := vm.NewSession(vm.Options{Host: host})
	if err := s.Run(context.Background(), prog); err != nil {
		t.Fatal(err)
	}
	if host.Output() != "who? hi ann\n" {
		t.Fatalf("got %q", host.Output())
	}
}

func TestRunFunction(t *testing.T) {
	prog := compileSource(t, `
print("top level")
fn add(a, b)
    return a + b
end
module util
    fn neg(x)
        return -x
    end
end
`)
	host := vm.NewTestHost("")
	s := vm.NewSession(vm.Options{Host: host, LeakCheck: true})
	ret, err := s.RunFunction(context.Background(), prog, "add", []vm.Value{vm.IntValue(2), vm.IntValue(3)})
	if err != nil {
		t.Fatal(err)
	}
	if ret.Kind != vm.VKInt || ret.Int != 5 {
		t.Fatalf("ret = %+v", ret)
	}
	ret, err = s.RunFunction(context.Background(), prog, "util.neg", []vm.Value{vm.IntValue(4)})
	if err != nil || ret.Int != -4 {
		t.Fatalf("util.neg = %+v, %v", ret, err)
	}
	if host.Output() != "" {
		t.Fatalf("top level ran: %q", host.Output())
	}
	_, err = s.RunFunction(context.Background(), prog, "missing", nil)
	if diag.KindOf(err) != diag.KindName {
		t.Fatalf("want NameError, got %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestGlobalsPersistAcrossRuns(t *testing.T) {
	host := vm.NewTestHost("")
	s := vm.NewSession(vm.Options{Host: host, LeakCheck: true})
	ctx := context.Background()
	if err := s.Run(ctx, compileSource(t, "let globals.items = vec(1)")); err != nil {
		t.Fatal(err)
	}
	if err := s.Run(ctx, compileSource(t, "push(globals.items, 2)\nprint(globals.items)")); err != nil {
		t.Fatal(err)
	}
	if host.Output() != "[1, 2]\n" {
		t.Fatalf("got %q", host.Output())
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestCycleIsReportedAsLeak(t *testing.T) {
	res := runSource(t, "var v = vec()\npush(v, v)", vm.Options{LeakCheck: true})
	if res.err != nil {
		t.Fatal(res.err)
	}
	if err := res.session.Close(); err == nil {
		t.Fatal("expected leak error from Close")
	}
	leaks := res.session.Leaks()
	if len(leaks) != 1 || leaks[0].Kind != vm.OKVector {
		t.Fatalf("leaks = %v, want one vector", leaks)
	}
}

func TestVMTracer(t *testing.T) {
	var sb strings.Builder
	src := "fn f(x)\n    return x\nend\nvar a = f(vec())"
	res := runSource(t, src, vm.Options{Tracer: vm.NewTracer(&sb, strings.Split(src, "\n"))})
	if res.err != nil {
		t.Fatal(res.err)
	}
	trace := sb.String()
	for _, want := range []string{"[depth=1] line 4 Var", "[call] f(1 args)", "[heap] alloc vector#", "write a = <vector#"} {
		if !strings.Contains(trace, want) {
			t.Errorf("trace misses %q:\n%s", want, trace)
		}
	}
}

func TestRunEmitsTraceEvents(t *testing.T) {
	ring := trace.NewRingTracer(256, trace.LevelDebug)
	ctx := trace.WithTracer(context.Background(), ring)
	prog := compileSource(t, "fn f(x)\n    return len(x)\nend\nvar n = f(vec(1))")
	s := vm.NewSession(vm.Options{Host: vm.NewTestHost("")})
	if err := s.Run(ctx, prog); err != nil {
		t.Fatal(err)
	}
	seen := map[string]bool{}
	for _, ev := range ring.Snapshot() {
		seen[ev.Kind.String()+" "+ev.Name] = true
	}
	for _, want := range []string{"begin run", "end run", "begin call f", "point alloc", "point free"} {
		if !seen[want] {
			t.Errorf("missing %q in %v", want, seen)
		}
	}
}

func TestAllocatingLoopKeepsHeapSmall(t *testing.T) {
	res := runSource(t, `
var keep = map()
for i = 1 to 20000
    var v = vec(i, map())
end
print(len(keep))
`, vm.Options{LeakCheck: true})
	if res.err != nil {
		t.Fatalf("run: %v", res.err)
	}
	if res.out != "0\n" {
		t.Fatalf("got %q", res.out)
	}
	heap := res.session.Heap()
	if heap.Tracked() > 2 {
		t.Fatalf("heap tracks %d objects, live %d", heap.Tracked(), heap.Live())
	}
	if err := res.session.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestMinIntLiteral(t *testing.T) {
	out := mustRun(t, `
var x = -2147483648
print(x, x + 1)
`)
	if out != "-2147483648 -2147483647\n" {
		t.Fatalf("got %q", out)
	}
}
