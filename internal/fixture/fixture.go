// Package fixture loads YAML conformance scenarios and runs them against
// the engine.
//
// A scenario file holds a list of programs with their expected behaviour:
//
//	scenarios:
//	  - name: shared map
//	    source: |
//	      var m = map()
//	      print(string(vec(m)))
//	    expect:
//	      stdout: "[{}]\n"
package fixture

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// File is one scenario file.
type File struct {
	Path      string     `yaml:"-"`
	Scenarios []Scenario `yaml:"scenarios"`
}

// Scenario is a program plus what running it must produce.
type Scenario struct {
	Name   string `yaml:"name"`
	Source string `yaml:"source"`
	// Input is fed to input() line by line.
	Input string `yaml:"input,omitempty"`
	// Entry calls a function instead of running the top level.
	Entry string `yaml:"entry,omitempty"`
	// MaxCallDepth overrides the session limit when positive.
	MaxCallDepth int    `yaml:"max_call_depth,omitempty"`
	Skip         string `yaml:"skip,omitempty"`
	Expect       Expect `yaml:"expect"`
}

// Expect lists the checked outcomes. Zero fields are not checked, except
// that a scenario without Error must run cleanly.
type Expect struct {
	Stdout *string `yaml:"stdout,omitempty"`
	Result *string `yaml:"result,omitempty"`
	Exit   *int    `yaml:"exit,omitempty"`
	// Error is a kind name such as "NameError".
	Error string `yaml:"error,omitempty"`
	// Code is a diagnostic or panic id such as "SYN2001" or "VM2401".
	Code string `yaml:"code,omitempty"`
	// Line is the 1-based line the error points at.
	Line  uint32 `yaml:"line,omitempty"`
	Leaks *int   `yaml:"leaks,omitempty"`
}

// LoadFile parses one YAML scenario file. Unknown keys are errors.
func LoadFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("fixture: open %s: %w", path, err)
	}
	defer f.Close()
	file, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("fixture: parse %s: %w", path, err)
	}
	file.Path = path
	return file, nil
}

// Decode reads a scenario file from r.
func Decode(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var file File
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty scenario file")
		}
		return nil, err
	}
	seen := make(map[string]bool, len(file.Scenarios))
	for i, sc := range file.Scenarios {
		name := strings.TrimSpace(sc.Name)
		if name == "" {
			return nil, fmt.Errorf("scenario #%d has no name", i+1)
		}
		if seen[name] {
			return nil, fmt.Errorf("duplicate scenario %q", name)
		}
		seen[name] = true
	}
	return &file, nil
}

// Collect returns every *.yaml / *.yml file below root, sorted.
func Collect(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch filepath.Ext(path) {
		case ".yaml", ".yml":
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

// LoadDir loads every scenario file below root.
func LoadDir(root string) ([]*File, error) {
	paths, err := Collect(root)
	if err != nil {
		return nil, err
	}
	files := make([]*File, 0, len(paths))
	for _, p := range paths {
		f, err := LoadFile(p)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}
