package fixture_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"lisle/internal/fixture"
)

func TestScenarios(t *testing.T) {
	files, err := fixture.LoadDir("testdata")
	if err != nil {
		t.Fatal(err)
	}
	if len(files) == 0 {
		t.Fatal("no scenario files found")
	}
	for _, f := range files {
		for _, sc := range f.Scenarios {
			t.Run(filepath.Base(f.Path)+"/"+sc.Name, func(t *testing.T) {
				o := fixture.Run(context.Background(), sc)
				if o.Skipped {
					t.Skip(sc.Skip)
				}
				for _, msg := range o.Failures {
					t.Error(msg)
				}
			})
		}
	}
}

func TestDecodeRejects(t *testing.T) {
	tests := []struct {
		name, doc, want string
	}{
		{"unknown key", "scenarios:\n  - name: a\n    sauce: x\n", "sauce"},
		{"no name", "scenarios:\n  - source: x\n", "no name"},
		{"duplicate", "scenarios:\n  - name: a\n  - name: a\n", "duplicate"},
		{"empty", "", "empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fixture.Decode(strings.NewReader(tt.doc))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestFailuresAreReported(t *testing.T) {
	want := "nope\n"
	o := fixture.Run(context.Background(), fixture.Scenario{
		Name:   "wrong",
		Source: "print(1)\n",
		Expect: fixture.Expect{Stdout: &want, Error: "NameError"},
	})
	if o.Passed() || len(o.Failures) != 2 {
		t.Fatalf("failures = %v", o.Failures)
	}

	var sum fixture.Summary
	sum.Add(o)
	sum.Add(fixture.Outcome{Skipped: true})
	sum.Add(fixture.Run(context.Background(), fixture.Scenario{Name: "ok", Source: "print(1)\n"}))
	if sum.String() != "1 passed, 1 failed, 1 skipped" {
		t.Fatalf("summary = %s", sum)
	}
}
