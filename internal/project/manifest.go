// Package project loads and writes lisle.toml manifests.
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"lisle/internal/format"
	"lisle/internal/vm"
)

// ManifestName is the file that marks a project root.
const ManifestName = "lisle.toml"

// SourceExt is the extension of program files.
const SourceExt = ".lis"

// Config mirrors lisle.toml.
type Config struct {
	Package PackageConfig `toml:"package"`
	Run     RunConfig     `toml:"run"`
	Format  FormatConfig  `toml:"format"`
	Runtime RuntimeConfig `toml:"runtime"`
}

type PackageConfig struct {
	Name    string `toml:"name"`
	Version string `toml:"version,omitempty"`
}

type RunConfig struct {
	Main  string `toml:"main"`
	Entry string `toml:"entry,omitempty"`
}

type FormatConfig struct {
	IndentWidth int  `toml:"indent_width"`
	UseTabs     bool `toml:"use_tabs"`
}

type RuntimeConfig struct {
	MaxCallDepth int  `toml:"max_call_depth"`
	LeakCheck    bool `toml:"leak_check"`
}

// Manifest is a loaded lisle.toml.
type Manifest struct {
	Path   string // absolute path of lisle.toml
	Root   string // directory holding it
	Config Config
}

// DefaultConfig is what `lisle init` writes.
func DefaultConfig(name string) Config {
	return Config{
		Package: PackageConfig{Name: name, Version: "0.1.0"},
		Run:     RunConfig{Main: "main" + SourceExt},
		Format:  FormatConfig{IndentWidth: 4},
		Runtime: RuntimeConfig{MaxCallDepth: vm.DefaultMaxCallDepth},
	}
}

// FindManifest walks up from startDir looking for lisle.toml.
func FindManifest(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false, nil
		}
		dir = parent
	}
}

// Discover finds and loads the manifest above startDir. ok is false when
// there is none.
func Discover(startDir string) (m *Manifest, ok bool, err error) {
	path, ok, err := FindManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	m, err = Load(path)
	return m, true, err
}

// Load parses and validates the manifest at path.
func Load(path string) (*Manifest, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig("")
	cfg.Package.Version = ""
	cfg.Run.Main = ""
	meta, err := toml.DecodeFile(abs, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid TOML: %w", abs, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%s: unknown keys: %s", abs, strings.Join(keys, ", "))
	}
	if !meta.IsDefined("package", "name") || strings.TrimSpace(cfg.Package.Name) == "" {
		return nil, fmt.Errorf("%s: missing [package].name", abs)
	}
	if !meta.IsDefined("run", "main") || strings.TrimSpace(cfg.Run.Main) == "" {
		return nil, fmt.Errorf("%s: missing [run].main", abs)
	}
	if cfg.Format.IndentWidth < 1 || cfg.Format.IndentWidth > 16 {
		return nil, fmt.Errorf("%s: [format].indent_width must be between 1 and 16", abs)
	}
	if cfg.Runtime.MaxCallDepth < 1 {
		return nil, fmt.Errorf("%s: [runtime].max_call_depth must be positive", abs)
	}
	return &Manifest{Path: abs, Root: filepath.Dir(abs), Config: cfg}, nil
}

// MainPath resolves [run].main against the project root.
func (m *Manifest) MainPath() (string, error) {
	main := filepath.Join(m.Root, filepath.FromSlash(strings.TrimSpace(m.Config.Run.Main)))
	info, err := os.Stat(main)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%s: [run].main does not exist: %s", m.Path, main)
		}
		return "", fmt.Errorf("%s: stat [run].main: %w", m.Path, err)
	}
	if info.IsDir() || filepath.Ext(main) != SourceExt {
		return "", fmt.Errorf("%s: [run].main must be a %s file", m.Path, SourceExt)
	}
	return main, nil
}

// FormatOptions converts the [format] table.
func (m *Manifest) FormatOptions() format.Options {
	if m == nil {
		return format.Options{}
	}
	return format.Options{IndentWidth: m.Config.Format.IndentWidth, UseTabs: m.Config.Format.UseTabs}
}

// VMOptions converts the [runtime] table. Host and tracer are left to the
// caller.
func (m *Manifest) VMOptions() vm.Options {
	if m == nil {
		return vm.Options{}
	}
	return vm.Options{MaxCallDepth: m.Config.Runtime.MaxCallDepth, LeakCheck: m.Config.Runtime.LeakCheck}
}
