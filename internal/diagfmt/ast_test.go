package diagfmt_test

import (
	"bytes"
	"strings"
	"testing"

	"lisle/internal/diagfmt"
	"lisle/internal/lexer"
	"lisle/internal/parser"
	"lisle/internal/token"
)

func build(t *testing.T, src string) [][]token.Token {
	t.Helper()
	var lines [][]token.Token
	for _, text := range strings.Split(src, "\n") {
		toks, err := lexer.Tokenize(text)
		if err != nil {
			t.Fatal(err)
		}
		lines = append(lines, toks)
	}
	return lines
}

func TestFormatProgramPretty(t *testing.T) {
	lines := build(t, "fn add(a, ...)\n    return a + b * 2\nend\nif not x\nelse\nend")
	prog, err := parser.Build(lines)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := diagfmt.FormatProgramPretty(&buf, prog); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"FnDef add(a, ...)",
		"    Return (a + (b * 2))",
		"If (not x)",
		"end=3",
		"next=5",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q:\n%s", want, out)
		}
	}
}

func TestFormatTokens(t *testing.T) {
	lines := build(t, `var s = "a"`)
	var pretty, js bytes.Buffer
	if err := diagfmt.FormatTokensPretty(&pretty, lines); err != nil {
		t.Fatal(err)
	}
	if err := diagfmt.FormatTokensJSON(&js, lines); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(pretty.String(), "KwVar") || !strings.Contains(js.String(), `"kind": "StringLit"`) {
		t.Fatalf("pretty:\n%s\njson:\n%s", pretty.String(), js.String())
	}
}
