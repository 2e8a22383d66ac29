package project

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
)

// InitResult lists what Init wrote.
type InitResult struct {
	Dir         string
	Manifest    string
	Main        string
	CreatedMain bool
}

var nameSanitizer = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// Init creates dir if needed and writes lisle.toml plus a hello-world
// main.lis. An existing manifest is an error; an existing main.lis is kept.
func Init(dir string) (InitResult, error) {
	target, err := filepath.Abs(dir)
	if err != nil {
		return InitResult{}, err
	}
	if st, err := os.Stat(target); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return InitResult{}, err
		}
		if err := os.MkdirAll(target, 0o755); err != nil {
			return InitResult{}, fmt.Errorf("create directory %q: %w", target, err)
		}
	} else if !st.IsDir() {
		return InitResult{}, fmt.Errorf("%q is not a directory", target)
	}

	name := strings.Trim(nameSanitizer.ReplaceAllString(filepath.Base(target), "-"), "-")
	if name == "" {
		name = "lisle-project"
	}

	res := InitResult{Dir: target, Manifest: filepath.Join(target, ManifestName)}
	if _, err := os.Stat(res.Manifest); err == nil {
		return InitResult{}, fmt.Errorf("project already initialized: %s exists", res.Manifest)
	}
	cfg := DefaultConfig(name)
	var buf bytes.Buffer
	buf.WriteString("# Lisle project manifest\n")
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return InitResult{}, fmt.Errorf("encode manifest: %w", err)
	}
	if err := os.WriteFile(res.Manifest, buf.Bytes(), 0o600); err != nil {
		return InitResult{}, fmt.Errorf("write manifest: %w", err)
	}

	res.Main = filepath.Join(target, cfg.Run.Main)
	if _, err := os.Stat(res.Main); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(res.Main, []byte(helloProgram), 0o600); err != nil {
			return InitResult{}, fmt.Errorf("write %s: %w", cfg.Run.Main, err)
		}
		res.CreatedMain = true
	}
	return res, nil
}

const helloProgram = `# hello world
fn greet(name)
    return format("Hello, {}!", name)
end

print(greet("Lisle"))
`
