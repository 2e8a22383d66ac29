package source

import (
	"crypto/sha256"
	"fmt"
	"os"

	"fortio.org/safecast"
)

// FileSet holds the program files loaded by one command. Adding a path
// again creates a new file and makes GetByPath return it.
type FileSet struct {
	files  []File
	byPath map[string]FileID
}

func NewFileSet() *FileSet {
	return &FileSet{byPath: make(map[string]FileID)}
}

// Load reads path from disk and adds it.
func (fs *FileSet) Load(path string) (FileID, error) {
	content, err := os.ReadFile(path) // #nosec G304 -- path is provided by the caller
	if err != nil {
		return 0, err
	}
	return fs.add(path, content, 0), nil
}

// AddVirtual adds in-memory content under name.
func (fs *FileSet) AddVirtual(name string, content []byte) FileID {
	return fs.add(name, content, FileVirtual)
}

func (fs *FileSet) add(path string, content []byte, flags FileFlags) FileID {
	content, changed := normalize(content)
	n, err := safecast.Conv[uint32](len(fs.files))
	if err != nil {
		panic(fmt.Errorf("too many files: %w", err))
	}
	id := FileID(n)
	key := normalizePath(path)
	fs.files = append(fs.files, File{
		ID:    id,
		Path:  key,
		Lines: SplitLines(string(content)),
		Hash:  sha256.Sum256(content),
		Flags: flags | changed,
	})
	// последняя версия файла побеждает
	fs.byPath[key] = id
	return id
}

func (fs *FileSet) Get(id FileID) *File { return &fs.files[id] }

// GetByPath returns the most recent file added under path.
func (fs *FileSet) GetByPath(path string) (*File, bool) {
	id, ok := fs.byPath[normalizePath(path)]
	if !ok {
		return nil, false
	}
	return &fs.files[id], true
}

func (fs *FileSet) Len() int { return len(fs.files) }
