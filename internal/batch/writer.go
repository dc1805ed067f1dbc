package batch

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrWrite is returned when a rendered document cannot be stored.
var ErrWrite = errors.New("write failed")

// WriteError wraps a storage failure for one document.
type WriteError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *WriteError) Error() string {
	return fmt.Sprintf("%v: %s: %v", ErrWrite, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *WriteError) Unwrap() error {
	return e.Err
}

// Is matches ErrWrite.
func (e *WriteError) Is(target error) bool {
	return target == ErrWrite
}

// Writer stores a rendered document under a file name.
type Writer interface {
	Write(name string, data []byte) (string, error)
}

// DirWriter writes documents into a directory, replacing existing files.
type DirWriter struct {
	Dir  string
	Perm os.FileMode
}

// NewDirWriter returns a DirWriter for dir. An empty dir means the working
// directory.
func NewDirWriter(dir string) *DirWriter {
	if dir == "" {
		dir = "."
	}
	return &DirWriter{Dir: dir, Perm: 0o644}
}

// Write stores data as Dir/name and returns the path written. The directory
// is created when missing.
func (w *DirWriter) Write(name string, data []byte) (string, error) {
	path := filepath.Join(w.Dir, filepath.Base(name))

	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return path, &WriteError{Path: path, Err: err}
	}
	if err := os.WriteFile(path, data, w.Perm); err != nil {
		return path, &WriteError{Path: path, Err: err}
	}
	return path, nil
}
