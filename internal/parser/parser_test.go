package parser_test

import (
	"strconv"
	"strings"
	"testing"

	"lisle/internal/ast"
	"lisle/internal/diag"
	"lisle/internal/format"
	"lisle/internal/lexer"
	"lisle/internal/parser"
	"lisle/internal/token"
)

func toks(t *testing.T, line string) []token.Token {
	t.Helper()
	out, err := lexer.Tokenize(line)
	if err != nil {
		t.Fatalf("Tokenize(%q): %v", line, err)
	}
	return out
}

func parse(t *testing.T, line string) ast.Stmt {
	t.Helper()
	st, err := parser.ParseLine(toks(t, line))
	if err != nil {
		t.Fatalf("ParseLine(%q): %v", line, err)
	}
	return st
}

// sexpr renders an expression tree for compact assertions.
func sexpr(e *ast.Expr) string {
	if e == nil {
		return "<nil>"
	}
	switch e.Kind {
	case ast.ExprInt:
		return strconv.FormatInt(int64(e.Int), 10)
	case ast.ExprFloat:
		return token.FormatFloat(e.Float)
	case ast.ExprString:
		return lexer.Quote(e.Str)
	case ast.ExprBool:
		if e.Bool {
			return "true"
		}
		return "false"
	case ast.ExprNil:
		return "nil"
	case ast.ExprIdent:
		return e.Name
	case ast.ExprUnary:
		return "(" + e.Op.Spelling() + " " + sexpr(e.X) + ")"
	case ast.ExprBinary:
		return "(" + e.Op.Spelling() + " " + sexpr(e.X) + " " + sexpr(e.Y) + ")"
	case ast.ExprAttr:
		return "(. " + sexpr(e.X) + " " + e.Name + ")"
	case ast.ExprIndex:
		return "([] " + sexpr(e.X) + " " + sexpr(e.Y) + ")"
	case ast.ExprCall:
		parts := []string{"call", sexpr(e.X)}
		for _, a := range e.Args {
			parts = append(parts, sexpr(a))
		}
		return "(" + strings.Join(parts, " ") + ")"
	}
	return "?"
}

func TestExpressionPrecedence(t *testing.T) {
	tests := map[string]string{
		"1 + 2 * 3":               "(+ 1 (* 2 3))",
		"(1 + 2) * 3":             "(* (+ 1 2) 3)",
		"a - b - c":               "(- (- a b) c)",
		"-a * b":                  "(* (- a) b)",
		"-3 + x":                  "(+ -3 x)",
		"not a and b or c":        "(or (and (not a) b) c)",
		"a < b == c >= d":         "(>= (== (< a b) c) d)",
		"x % 2 == 0 and y != nil": "(and (== (% x 2) 0) (!= y nil))",
		"obj.method(1, 2)[0].x":   "(. ([] (call (. obj method) 1 2) 0) x)",
		`f()("s")`:                `(call (call f) "s")`,
		"a.b.c":                   "(. (. a b) c)",
		"-2.5":                    "-2.5",
		"-2147483648":             "-2147483648",
		"x * -2147483648":         "(* x -2147483648)",
		"-2147483648 + 1":         "(+ -2147483648 1)",
	}
	for in, want := range tests {
		e, err := parser.ParseExpr(toks(t, in))
		if err != nil {
			t.Fatalf("ParseExpr(%q): %v", in, err)
		}
		if got := sexpr(e); got != want {
			t.Errorf("ParseExpr(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestParseStatements(t *testing.T) {
	tests := []struct {
		line string
		kind ast.StmtKind
	}{
		{"", ast.StmtEmpty},
		{"# note", ast.StmtEmpty},
		{"fn f(a, b)", ast.StmtFn},
		{"if x > 1", ast.StmtIf},
		{"elif x", ast.StmtElif},
		{"else", ast.StmtElse},
		{"for i = 1 to 10 step 2", ast.StmtFor},
		{"loop", ast.StmtLoop},
		{"break", ast.StmtBreak},
		{"return", ast.StmtReturn},
		{"return x + 1", ast.StmtReturn},
		{"let x = 1", ast.StmtLet},
		{"x = 1", ast.StmtLet},
		{"m[\"k\"] = 2", ast.StmtLet},
		{"var x = 1", ast.StmtVar},
		{"var x", ast.StmtVar},
		{"module util", ast.StmtModule},
		{"class Point", ast.StmtClass},
		{"end # done", ast.StmtEnd},
		{"print(1)", ast.StmtExpr},
	}
	for _, tt := range tests {
		if got := parse(t, tt.line).Kind; got != tt.kind {
			t.Errorf("ParseLine(%q).Kind = %v, want %v", tt.line, got, tt.kind)
		}
	}
}

func TestParseFnParams(t *testing.T) {
	st := parse(t, "fn log(level, ...)")
	if st.Name != "log" || len(st.Params) != 1 || st.Params[0] != "level" || !st.Variadic {
		t.Fatalf("unexpected fn stmt %+v", st)
	}
	st = parse(t, "fn all(...)")
	if len(st.Params) != 0 || !st.Variadic {
		t.Fatalf("unexpected fn stmt %+v", st)
	}
	st = parse(t, "fn none()")
	if len(st.Params) != 0 || st.Variadic {
		t.Fatalf("unexpected fn stmt %+v", st)
	}
}

func TestParseFor(t *testing.T) {
	st := parse(t, "for i = 10 to 1 step -3")
	if st.Name != "i" || sexpr(st.From) != "10" || sexpr(st.To) != "1" || sexpr(st.Step) != "-3" {
		t.Fatalf("unexpected for stmt: %s %s %s", sexpr(st.From), sexpr(st.To), sexpr(st.Step))
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		line string
		code diag.Code
	}{
		{"fn (a)", diag.SynExpectIdentifier},
		{"fn f(a, a)", diag.SynDuplicateParam},
		{"fn f(..., a)", diag.SynVariadicNotLast},
		{"fn f(a", diag.SynUnclosedParen},
		{"let 1 = 2", diag.SynBadAssignTarget},
		{"let f() = 2", diag.SynBadAssignTarget},
		{"x + 1 = 2", diag.SynBadAssignTarget},
		{"print(1", diag.SynUnclosedParen},
		{"v[1", diag.SynUnclosedBracket},
		{"var = 3", diag.SynExpectIdentifier},
		{"for i 1 to 2", diag.SynForBadHeader},
		{"for i = 1 2", diag.SynForBadHeader},
		{"if", diag.SynExpectExpression},
		{"else x", diag.SynTrailingTokens},
		{"return 1 2", diag.SynTrailingTokens},
		{"x = ", diag.SynExpectExpression},
		{"a.", diag.SynExpectIdentifier},
	}
	for _, tt := range tests {
		_, err := parser.ParseLine(toks(t, tt.line))
		if err == nil {
			t.Errorf("ParseLine(%q): expected error", tt.line)
			continue
		}
		de, ok := err.(*diag.Error)
		if !ok {
			t.Errorf("ParseLine(%q): %T is not *diag.Error", tt.line, err)
			continue
		}
		if de.Code != tt.code {
			t.Errorf("ParseLine(%q): code %s, want %s (%v)", tt.line, de.Code.ID(), tt.code.ID(), err)
		}
		if de.Kind() != diag.KindParse {
			t.Errorf("ParseLine(%q): kind %v", tt.line, de.Kind())
		}
	}
}

func build(t *testing.T, src string) (*ast.Program, error) {
	t.Helper()
	var lines [][]token.Token
	for _, l := range strings.Split(src, "\n") {
		lines = append(lines, toks(t, l))
	}
	return parser.Build(lines)
}

func TestBuildJumpTables(t *testing.T) {
	src := strings.Join([]string{
		"fn f(n)", // 0
		"if n > 1", // 1
		"return 1", // 2
		"elif n == 1", // 3
		"return 2", // 4
		"else", // 5
		"return 3", // 6
		"end", // 7
		"end", // 8
		"loop", // 9
		"break", // 10
		"end", // 11
	}, "\n")
	prog, err := build(t, src)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	checks := []struct {
		name      string
		got, want int
	}{
		{"End[fn]", prog.End[0], 8},
		{"End[if]", prog.End[1], 7},
		{"Next[if]", prog.Next[1], 3},
		{"Next[elif]", prog.Next[3], 5},
		{"Next[else]", prog.Next[5], 7},
		{"End[loop]", prog.End[9], 11},
		{"End[stmt]", prog.End[2], ast.NoIndex},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %d, want %d", c.name, c.got, c.want)
		}
	}
	if prog.Stmts[10].Line != 11 {
		t.Fatalf("line numbers not assigned: %d", prog.Stmts[10].Line)
	}
}

func TestBuildStructureErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code diag.Code
		line uint32
	}{
		{"unmatched end", "x = 1\nend", diag.StrUnmatchedEnd, 2},
		{"missing end", "fn f()\nif x\nend", diag.StrMissingEnd, 1},
		{"stray else", "else\nend", diag.StrStrayClause, 1},
		{"elif in loop", "loop\nelif x\nend", diag.StrStrayClause, 2},
		{"elif after else", "if a\nelse\nelif b\nend", diag.StrClauseAfterElse, 3},
		{"else after else", "if a\nelse\nelse\nend", diag.StrClauseAfterElse, 3},
		{"break outside", "if a\nbreak\nend", diag.StrBreakOutside, 2},
		{"break in fn in loop", "loop\nfn f()\nbreak\nend\nend", diag.StrBreakOutside, 3},
		{"return outside", "for i = 1 to 2\nreturn 1\nend", diag.StrReturnOutside, 2},
		{"class body", "class A\nprint(1)\nend", diag.StrBadClassBody, 2},
		{"module body", "module m\nx = 1\nend", diag.StrBadModuleBody, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := build(t, tt.src)
			de, ok := err.(*diag.Error)
			if !ok {
				t.Fatalf("expected *diag.Error, got %v", err)
			}
			if de.Code != tt.code || de.Line != tt.line {
				t.Fatalf("got %s line %d, want %s line %d (%v)", de.Code.ID(), de.Line, tt.code.ID(), tt.line, err)
			}
			if de.Kind() != diag.KindStructure {
				t.Fatalf("kind = %v", de.Kind())
			}
		})
	}
}

func TestBuildParseErrorHasLine(t *testing.T) {
	_, err := build(t, "var x = 1\nprint(x")
	de, ok := err.(*diag.Error)
	if !ok || de.Line != 2 || de.Stmt != "ExprStmt" {
		t.Fatalf("unexpected error %#v", err)
	}
}

func TestBuildAllowsNestedDefinitions(t *testing.T) {
	src := "module geo\nclass Point\nvar count = 0\nfn init(self, x)\nreturn nil\nend\nend\nfn origin()\nreturn 0\nend\nend"
	if _, err := build(t, src); err != nil {
		t.Fatalf("Build: %v", err)
	}
}

// tokenize -> render -> re-tokenize -> parse yields the same statements.
func TestRenderRoundTrip(t *testing.T) {
	src := []string{
		"fn fib(n)",
		"if n<2",
		"return n",
		"end",
		"return fib(n-1)+fib(n-2)",
		"end",
		"var xs=vec()",
		"for i=0 to 10 step 2",
		"push(xs,fib(i)) # collect",
		"end",
		`print(string(xs), "done", -1.5)`,
	}
	var lines [][]token.Token
	for _, l := range src {
		lines = append(lines, toks(t, l))
	}
	first, err := parser.Build(lines)
	if err != nil {
		t.Fatal(err)
	}
	rendered := format.Render(lines, format.Options{})
	var again [][]token.Token
	for _, l := range strings.Split(strings.TrimSuffix(rendered, "\n"), "\n") {
		again = append(again, toks(t, l))
	}
	second, err := parser.Build(again)
	if err != nil {
		t.Fatalf("re-parse: %v", err)
	}
	if len(first.Stmts) != len(second.Stmts) {
		t.Fatalf("statement count changed")
	}
	for i := range first.Stmts {
		a, b := first.Stmts[i], second.Stmts[i]
		if a.Kind != b.Kind || a.Name != b.Name || sexpr(a.X) != sexpr(b.X) || sexpr(a.Target) != sexpr(b.Target) {
			t.Fatalf("statement %d differs: %v %s vs %v %s", i, a.Kind, sexpr(a.X), b.Kind, sexpr(b.X))
		}
	}
}
