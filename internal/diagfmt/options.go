package diagfmt

import (
	"path/filepath"
	"strings"
)

// PathMode selects how file paths are printed.
type PathMode uint8

const (
	PathModeAuto PathMode = iota
	PathModeAbsolute
	PathModeRelative
	PathModeBasename
)

// ParsePathMode parses auto|absolute|relative|basename.
func ParsePathMode(s string) (PathMode, bool) {
	switch strings.ToLower(s) {
	case "", "auto":
		return PathModeAuto, true
	case "absolute", "abs":
		return PathModeAbsolute, true
	case "relative", "rel":
		return PathModeRelative, true
	case "basename", "base":
		return PathModeBasename, true
	}
	return PathModeAuto, false
}

// PrettyOpts configures Pretty.
type PrettyOpts struct {
	Color     bool
	Context   int // source lines shown above the failing one
	PathMode  PathMode
	BaseDir   string // for PathModeRelative
	Width     int    // snippet truncation width, 0 = unlimited
	ShowNotes bool
}

// JSONOpts configures JSON.
type JSONOpts struct {
	PathMode     PathMode
	BaseDir      string
	Max          int // 0 = all
	IncludeNotes bool
}

// autoPathLimit is the longest path printed as-is in PathModeAuto.
const autoPathLimit = 40

func formatPath(path string, mode PathMode, base string) string {
	if path == "" {
		return "<input>"
	}
	switch mode {
	case PathModeAbsolute:
		if abs, err := filepath.Abs(path); err == nil {
			return filepath.ToSlash(abs)
		}
	case PathModeRelative:
		if base == "" {
			base, _ = filepath.Abs(".")
		}
		if rel, err := filepath.Rel(base, path); err == nil && !strings.HasPrefix(rel, "..") {
			return filepath.ToSlash(rel)
		}
	case PathModeBasename:
		return filepath.Base(path)
	case PathModeAuto:
		if filepath.IsAbs(path) && len(path) > autoPathLimit {
			return filepath.Base(path)
		}
	}
	return filepath.ToSlash(path)
}
