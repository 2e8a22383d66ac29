package source

// FileID identifies a file within a FileSet.
type FileID uint32

// FileFlags records what loading did to a file's bytes.
type FileFlags uint8

const (
	FileVirtual FileFlags = 1 << iota // added from memory: tests, stdin, fixtures
	FileHadBOM
	FileNormalizedCRLF
	FileNormalizedNFC
)

// File is a loaded program split into lines. Lines never contain the
// trailing newline; Hash is taken over the normalized content and keys the
// image cache.
type File struct {
	ID    FileID
	Path  string
	Lines []string
	Hash  [32]byte
	Flags FileFlags
}

// GetLine returns the 1-based line n, or "" when there is no such line.
func (f *File) GetLine(n uint32) string {
	if n == 0 || int(n) > len(f.Lines) {
		return ""
	}
	return f.Lines[n-1]
}
