package fs

import (
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
)

// Writer writes output files atomically: content goes to a temporary file
// in the target directory which is then renamed over the target. A target
// that already holds identical content is left untouched.
type Writer struct {
	perm os.FileMode
}

// NewWriter creates a new Writer creating files with mode 0644.
func NewWriter() *Writer {
	return &Writer{perm: 0o644}
}

// Write stores content at path, creating parent directories as needed.
// It reports whether the file was written.
func (w *Writer) Write(path, content string) (bool, error) {
	if existing, err := os.ReadFile(path); err == nil && xxhash.Sum64(existing) == xxhash.Sum64String(content) && len(existing) == len(content) {
		return false, nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false, err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return false, err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return false, err
	}
	if err := tmp.Chmod(w.perm); err != nil {
		tmp.Close()
		return false, err
	}
	if err := tmp.Close(); err != nil {
		return false, err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return false, err
	}
	return true, nil
}
