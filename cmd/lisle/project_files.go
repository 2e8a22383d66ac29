package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"lisle/internal/project"
)

// resolveRunTarget picks the program to run. With no argument the
// manifest above the working directory names it; a directory argument must
// hold a lisle.toml; a file argument is used as is, picking up the
// manifest above it when there is one.
func resolveRunTarget(arg string) (string, *project.Manifest, error) {
	if arg == "" {
		m, ok, err := project.Discover(".")
		if err != nil {
			return "", nil, err
		}
		if !ok {
			return "", nil, fmt.Errorf("no %s found; pass a file or run `lisle init`", project.ManifestName)
		}
		main, err := m.MainPath()
		return main, m, err
	}

	info, err := os.Stat(arg)
	if err != nil {
		return "", nil, err
	}
	if info.IsDir() {
		manifestPath := filepath.Join(arg, project.ManifestName)
		if _, err := os.Stat(manifestPath); errors.Is(err, os.ErrNotExist) {
			return "", nil, fmt.Errorf("%s: no %s in directory", arg, project.ManifestName)
		}
		m, err := project.Load(manifestPath)
		if err != nil {
			return "", nil, err
		}
		main, err := m.MainPath()
		return main, m, err
	}

	m, _, err := project.Discover(filepath.Dir(arg))
	if err != nil {
		return "", nil, err
	}
	return arg, m, nil
}
