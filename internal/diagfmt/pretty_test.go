package diagfmt_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"lisle/internal/diag"
	"lisle/internal/diagfmt"
	"lisle/internal/source"
)

func sampleBag(t *testing.T, path string) (*diag.Bag, *source.FileSet) {
	t.Helper()
	fs := source.NewFileSet()
	fs.AddVirtual(path, []byte("var a = 1\nvar s = \"héllo\" + (2\nprint(a)\n"))
	bag := diag.NewBag(10)
	d := diag.NewError(diag.SynUnclosedParen, 2, source.Span{Start: 19, End: 21}, "unclosed '('").
		WithPath(path).
		WithNote(1, source.Span{Start: 4, End: 5}, "a declared here")
	bag.Add(d)
	return bag, fs
}

func TestPrettySnippet(t *testing.T) {
	bag, fs := sampleBag(t, "main.lis")
	var buf bytes.Buffer
	diagfmt.Pretty(&buf, bag, fs, diagfmt.PrettyOpts{Context: 1, ShowNotes: true})
	out := buf.String()

	for _, want := range []string{
		"main.lis:2:19: ERROR SYN2004: unclosed '('",
		"1 | var a = 1",
		"2 | var s = \"héllo\" + (2",
		"note: a declared here",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output misses %q:\n%s", want, out)
		}
	}
	// caret under "(2": the é is one column wide
	if !strings.Contains(out, "\n | "+strings.Repeat(" ", 18)+"^~\n") {
		t.Errorf("caret misplaced:\n%s", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("colour escapes with Color=false:\n%s", out)
	}
}

func TestPrettyRuntimeDiagnosticHasNoCode(t *testing.T) {
	bag := diag.NewBag(4)
	bag.Add(diag.NewError(diag.UnknownCode, 0, source.Span{}, "TypeError VM2101: bad operands").WithPath("x.lis"))
	var buf bytes.Buffer
	diagfmt.Pretty(&buf, bag, nil, diagfmt.PrettyOpts{})
	if got := buf.String(); got != "x.lis: ERROR: TypeError VM2101: bad operands\n" {
		t.Fatalf("got %q", got)
	}
}

func TestPathModes(t *testing.T) {
	long := "/very/long/absolute/path/to/some/nested/directory/file.lis"
	tests := []struct {
		name string
		path string
		mode diagfmt.PathMode
		base string
		want string
	}{
		{"auto short", "main.lis", diagfmt.PathModeAuto, "", "main.lis:"},
		{"auto long", long, diagfmt.PathModeAuto, "", "file.lis:"},
		{"basename", "/home/u/p/src/a.lis", diagfmt.PathModeBasename, "", "a.lis:"},
		{"relative", "/home/u/p/src/a.lis", diagfmt.PathModeRelative, "/home/u/p", "src/a.lis:"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bag, fs := sampleBag(t, tt.path)
			var buf bytes.Buffer
			diagfmt.Pretty(&buf, bag, fs, diagfmt.PrettyOpts{PathMode: tt.mode, BaseDir: tt.base})
			if !strings.HasPrefix(buf.String(), tt.want) {
				t.Fatalf("got %q, want prefix %q", buf.String(), tt.want)
			}
		})
	}
}

func TestJSON(t *testing.T) {
	bag, _ := sampleBag(t, "main.lis")
	bag.Add(diag.NewError(diag.StrMissingEnd, 3, source.Span{}, "missing end").WithPath("main.lis"))

	var buf bytes.Buffer
	if err := diagfmt.JSON(&buf, bag, diagfmt.JSONOpts{Max: 1, IncludeNotes: true}); err != nil {
		t.Fatal(err)
	}
	var out diagfmt.DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if out.Count != 2 || len(out.Diagnostics) != 1 {
		t.Fatalf("count=%d len=%d", out.Count, len(out.Diagnostics))
	}
	d := out.Diagnostics[0]
	if d.Code != "SYN2004" || d.Kind != "ParseError" || d.Location.Line != 2 || d.Location.Col != 20 {
		t.Fatalf("unexpected diagnostic: %+v", d)
	}
	if len(d.Notes) != 1 || d.Notes[0].Location.Line != 1 {
		t.Fatalf("notes = %+v", d.Notes)
	}
}
