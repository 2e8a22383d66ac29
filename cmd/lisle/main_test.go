package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type cliResult struct {
	code   int
	stdout string
	stderr string
}

func runCLI(t *testing.T, stdin string, args ...string) cliResult {
	t.Helper()
	var out, errOut bytes.Buffer
	args = append([]string{"--color=off", "--no-cache"}, args...)
	code := execute(args, strings.NewReader(stdin), &out, &errOut)
	return cliResult{code: code, stdout: out.String(), stderr: errOut.String()}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunCommand(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name   string
		src    string
		args   []string
		stdin  string
		code   int
		stdout string
	}{
		{name: "print", src: "print(\"hi\")\n", stdout: "hi\n"},
		{name: "input", src: "var s = input()\nprint(s + \"!\")\n", stdin: "ann\n", stdout: "ann!\n"},
		{name: "exit code", src: "print(1)\nexit(3)\nprint(2)\n", code: 3, stdout: "1\n"},
		{name: "entry", src: "print(\"top\")\nfn main()\n    return 6 * 7\nend\n", args: []string{"--entry", "main"}, stdout: "42\n"},
		{name: "runtime error", src: "var a = 1\nprint(b)\n", code: 1},
		{name: "build error", src: "fn f()\n", code: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, strings.ReplaceAll(tt.name, " ", "_")+".lis", tt.src)
			args := append([]string{"run"}, tt.args...)
			args = append(args, path)
			res := runCLI(t, tt.stdin, args...)
			if res.code != tt.code {
				t.Fatalf("code = %d, want %d\nstderr: %s", res.code, tt.code, res.stderr)
			}
			if res.stdout != tt.stdout {
				t.Fatalf("stdout = %q, want %q", res.stdout, tt.stdout)
			}
			if tt.code == 1 && res.stderr == "" {
				t.Fatal("expected an error report on stderr")
			}
		})
	}
}

func TestRunRecordReplay(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "echo.lis", "var s = input()\nprint(\"got\", s)\n")
	log := filepath.Join(dir, "echo.ndjson")

	rec := runCLI(t, "abc\n", "run", "--record", log, path)
	if rec.code != 0 || rec.stdout != "got abc\n" {
		t.Fatalf("record: %+v", rec)
	}
	rep := runCLI(t, "", "run", "--replay", log, path)
	if rep.code != 0 || rep.stdout != "got abc\n" {
		t.Fatalf("replay: %+v", rep)
	}
}

func TestInitThenRun(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "hello")
	res := runCLI(t, "", "init", dir)
	if res.code != 0 || !strings.Contains(res.stdout, "lisle.toml") {
		t.Fatalf("init: %+v", res)
	}
	res = runCLI(t, "", "run", dir)
	if res.code != 0 || res.stdout != "Hello, Lisle!\n" {
		t.Fatalf("run: %+v", res)
	}
	if again := runCLI(t, "", "init", dir); again.code == 0 {
		t.Fatal("second init should fail")
	}
}

func TestCheckCommand(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ok.lis", "var x = 1\nprint(x)\n")
	writeFile(t, dir, "sub/bad.lis", "var y = $\n")
	writeFile(t, dir, "notes.txt", "ignored\n")

	res := runCLI(t, "", "check", "--ui=off", dir)
	if res.code != 1 {
		t.Fatalf("code = %d\n%s%s", res.code, res.stdout, res.stderr)
	}
	if !strings.Contains(res.stdout, "LEX1001") {
		t.Fatalf("missing lexical diagnostic:\n%s", res.stdout)
	}
	if !strings.Contains(res.stdout, "checked 2 file(s): 1 ok, 1 with errors") {
		t.Fatalf("missing summary:\n%s", res.stdout)
	}

	res = runCLI(t, "", "check", "--ui=off", "--format=json", dir)
	var payload struct {
		Diagnostics []struct {
			Code string `json:"code"`
		} `json:"diagnostics"`
	}
	if err := json.Unmarshal([]byte(res.stdout), &payload); err != nil {
		t.Fatalf("json: %v\n%s", err, res.stdout)
	}
	if len(payload.Diagnostics) != 1 || payload.Diagnostics[0].Code != "LEX1001" {
		t.Fatalf("diagnostics = %+v", payload.Diagnostics)
	}

	if res := runCLI(t, "", "check", "--ui=bogus", dir); res.code != 1 {
		t.Fatalf("bad --ui accepted: %+v", res)
	}
}

func TestFmtIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "messy.lis", "fn  f(a,b)\nreturn a+b\n   end\nprint( f(1,2) )\n")

	first := runCLI(t, "", "fmt", path)
	if first.code != 0 || first.stdout == "" {
		t.Fatalf("fmt: %+v", first)
	}
	if res := runCLI(t, "", "fmt", "--check", path); res.code != 1 || !strings.Contains(res.stdout, "messy.lis") {
		t.Fatalf("check on messy file: %+v", res)
	}
	if res := runCLI(t, "", "fmt", "-w", path); res.code != 0 {
		t.Fatalf("write: %+v", res)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != first.stdout {
		t.Fatalf("written %q, printed %q", got, first.stdout)
	}
	if res := runCLI(t, "", "fmt", "--check", path); res.code != 0 {
		t.Fatalf("formatted file reported: %+v", res)
	}
}

func TestEncodeDecode(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "prog.lis", "var x = 1\nif x == 1\n    print(\"one\")\nend\n")
	img := filepath.Join(dir, "prog.lisc")

	if res := runCLI(t, "", "encode", "-o", img, path); res.code != 0 {
		t.Fatalf("encode: %+v", res)
	}
	dec := runCLI(t, "", "decode", img)
	if dec.code != 0 {
		t.Fatalf("decode: %+v", dec)
	}
	want := runCLI(t, "", "fmt", path)
	if dec.stdout != want.stdout {
		t.Fatalf("decoded %q, formatted %q", dec.stdout, want.stdout)
	}

	bad := writeFile(t, dir, "bad.lisc", "nope")
	res := runCLI(t, "", "decode", bad)
	if res.code != 1 || !strings.Contains(res.stderr, "IO4004") {
		t.Fatalf("bad image: %+v", res)
	}
}

func TestTokenizeAndParse(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "t.lis", "var x = 1\n")

	res := runCLI(t, "", "tokenize", "--format=json", path)
	var toks []struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal([]byte(res.stdout), &toks); err != nil || len(toks) == 0 {
		t.Fatalf("tokens: %v %+v", err, res)
	}

	if res := runCLI(t, "", "parse", path); res.code != 0 || res.stdout == "" {
		t.Fatalf("parse: %+v", res)
	}
}

func TestConformCommand(t *testing.T) {
	res := runCLI(t, "", "conform", filepath.Join("..", "..", "internal", "fixture", "testdata"))
	if res.code != 0 || !strings.Contains(res.stdout, " 0 failed") {
		t.Fatalf("conform: %+v", res)
	}
}

func TestVersionJSON(t *testing.T) {
	res := runCLI(t, "", "version", "--format=json")
	var payload struct {
		Tool    string `json:"tool"`
		Version string `json:"version"`
	}
	if err := json.Unmarshal([]byte(res.stdout), &payload); err != nil {
		t.Fatal(err)
	}
	if payload.Tool != "lisle" || payload.Version == "" {
		t.Fatalf("payload = %+v", payload)
	}
}
